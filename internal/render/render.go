// Package render turns a stored order detail into the printable service
// sheet. Rendering is a pure function of the detail: the same input always
// produces byte-identical output.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Abel-cordero/ORDEN/internal/models"
)

// Line caps for the free-text fields, same as the printed form has always
// had: whatever wraps within the cap is kept, the rest is cut.
const (
	maxFaultLines  = 5
	maxDetailLines = 6
)

// TextRenderer writes the plain-text service sheet.
type TextRenderer struct {
	// Width is the sheet width in characters. Zero means 78.
	Width int
}

func (r *TextRenderer) width() int {
	if r.Width > 0 {
		return r.Width
	}
	return 78
}

// Render writes the sheet for d to w. Field order and labels are fixed;
// optional fields that were never filled in render as empty values.
func (r *TextRenderer) Render(d models.OrderDetail, w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Orden de Servicio N° %s\n", FormatNumber(d.Number))
	fmt.Fprintf(&b, "Fecha de ingreso: %s\n", d.IntakeAt.Format("2006-01-02 15:04"))
	delivered := ""
	if d.DeliveredAt != nil {
		delivered = d.DeliveredAt.Format("2006-01-02 15:04")
	}
	fmt.Fprintf(&b, "Fecha de entrega: %s\n", delivered)
	b.WriteString("\n")

	section(&b, "Cliente")
	kv(&b, 11, "Nombre", d.CustomerName)
	kv(&b, 11, "Dirección", d.Address)
	kv(&b, 11, "Celular", d.Phone)
	kv(&b, 11, "DNI", d.NationalID)
	b.WriteString("\n")

	section(&b, "Equipo")
	kv(&b, 11, "Tipo", d.Type)
	kv(&b, 11, "Marca", d.Brand)
	kv(&b, 11, "Modelo", d.Model)
	kv(&b, 11, "N° Serie", d.SerialNumber)
	b.WriteString("\n")

	section(&b, "Estado del equipo")
	kv(&b, 15, "Estado", string(d.Status))
	kv(&b, 15, "Técnico", d.Technician)
	wrapped(&b, r.width(), 15, "Falla reportada", d.Fault, maxFaultLines)
	wrapped(&b, r.width(), 15, "Diagnóstico", d.Diagnosis, maxDetailLines)
	wrapped(&b, r.width(), 15, "Solución", d.Resolution, maxDetailLines)
	b.WriteString("\n")

	section(&b, "Costos y garantía")
	kv(&b, 18, "Mano de obra (S/.)", fmt.Sprintf("%.2f", d.LaborCost))
	kv(&b, 18, "Repuestos (S/.)", fmt.Sprintf("%.2f", d.PartsCost))
	kv(&b, 18, "Total (S/.)", fmt.Sprintf("%.2f", d.TotalCost))
	kv(&b, 18, "Garantía (días)", strconv.Itoa(d.WarrantyDays))
	b.WriteString("\n")

	if d.Notes == "" {
		b.WriteString("Observaciones: ________________________________\n")
	} else {
		wrapped(&b, r.width(), 13, "Observaciones", d.Notes, maxDetailLines)
	}
	b.WriteString("\n")
	b.WriteString("Firma Cliente: __________________   Firma Técnico: __________________\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderFile writes <number>.txt under dir. The sheet goes to a temp file
// first and is renamed into place only once fully written, so a failed
// render never leaves a partial file that looks valid.
func (r *TextRenderer) RenderFile(d models.OrderDetail, dir string) (string, error) {
	path := filepath.Join(dir, FormatNumber(d.Number)+".txt")
	tmp, err := os.CreateTemp(dir, ".orden-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	if err := r.Render(d, tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("flush output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("place output file: %w", err)
	}
	return path, nil
}

// FormatNumber zero-pads purely numeric order numbers to five digits, the
// way the printed sheets have always shown them. Formatted numbers
// (CS-2025-00001) pass through untouched.
func FormatNumber(number string) string {
	if n, err := strconv.Atoi(number); err == nil {
		return fmt.Sprintf("%05d", n)
	}
	return number
}

func section(b *strings.Builder, title string) {
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", utf8.RuneCountInString(title)))
	b.WriteString("\n")
}

// kv writes "label      : value". Padding counts runes, not bytes, so
// accented labels line up.
func kv(b *strings.Builder, width int, label, value string) {
	b.WriteString(padLabel(label, width))
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

func padLabel(label string, width int) string {
	if n := width - utf8.RuneCountInString(label); n > 0 {
		return label + strings.Repeat(" ", n)
	}
	return label
}

// wrapped writes a labelled free-text field, word-wrapped to the sheet
// width. The first line shares the label's row; continuation lines are
// indented under the value column.
func wrapped(b *strings.Builder, sheetWidth, labelWidth int, label, value string, maxLines int) {
	indent := labelWidth + 2
	lines := Wrap(value, sheetWidth-indent, maxLines)
	if len(lines) == 0 {
		kv(b, labelWidth, label, "")
		return
	}
	kv(b, labelWidth, label, lines[0])
	for _, line := range lines[1:] {
		b.WriteString(strings.Repeat(" ", indent))
		b.WriteString(line)
		b.WriteString("\n")
	}
}

// Wrap greedily fills lines of at most width runes and stops after maxLines.
// Text beyond the cap is dropped, but only after everything that fits has
// been wrapped in.
func Wrap(text string, width, maxLines int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := ""
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if utf8.RuneCountInString(candidate) > width && line != "" {
			lines = append(lines, line)
			line = word
			if len(lines) >= maxLines {
				return lines
			}
		} else {
			line = candidate
		}
	}
	if line != "" && len(lines) < maxLines {
		lines = append(lines, line)
	}
	return lines
}
