package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Abel-cordero/ORDEN/internal/models"
	"github.com/go-pdf/fpdf"
)

// PDFRenderer writes the A4 service sheet handed to the customer. Same
// blocks as the text sheet, laid out the way the shop's printed form looks.
type PDFRenderer struct {
	// ShopName appears in the header. Zero value uses the default.
	ShopName string
}

const (
	pdfMargin = 15.0 // mm
	lineH     = 5.5  // mm
	labelW    = 42.0 // mm
)

func (p *PDFRenderer) shopName() string {
	if p.ShopName != "" {
		return p.ShopName
	}
	return "Compucell-Services"
}

// RenderFile writes <number>.pdf under dir via a temp file, so an error
// mid-render leaves nothing behind.
func (p *PDFRenderer) RenderFile(d models.OrderDetail, dir string) (string, error) {
	path := filepath.Join(dir, FormatNumber(d.Number)+".pdf")
	tmp, err := os.CreateTemp(dir, ".orden-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	if err := p.render(d, tmp); err != nil {
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

func (p *PDFRenderer) render(d models.OrderDetail, out *os.File) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()

	y := pdfMargin
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(pdfMargin, y+6, tr(p.shopName()))
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pdfMargin, y+12, tr("Orden de Servicio"))
	pdf.SetFont("Helvetica", "B", 10)
	num := tr(fmt.Sprintf("N° %s", FormatNumber(d.Number)))
	pdf.Text(pageW-pdfMargin-pdf.GetStringWidth(num), y+6, num)
	pdf.SetFont("Helvetica", "", 9)
	date := d.IntakeAt.Format("02/01/2006 15:04")
	pdf.Text(pageW-pdfMargin-pdf.GetStringWidth(date), y+12, date)

	y += 18
	pdf.SetLineWidth(0.7)
	pdf.Line(pdfMargin, y, pageW-pdfMargin, y)
	y += 6

	y = p.title(pdf, tr, y, "Datos del cliente")
	y = p.label(pdf, tr, y, "Nombre", d.CustomerName)
	y = p.label(pdf, tr, y, "Dirección", d.Address)
	y = p.label(pdf, tr, y, "Celular", d.Phone)
	y = p.label(pdf, tr, y, "DNI", d.NationalID)
	y += 3

	y = p.title(pdf, tr, y, "Datos del equipo")
	y = p.label(pdf, tr, y, "Tipo", d.Type)
	y = p.label(pdf, tr, y, "Marca", d.Brand)
	y = p.label(pdf, tr, y, "Modelo", d.Model)
	y = p.label(pdf, tr, y, "N° Serie", d.SerialNumber)
	y += 3

	y = p.title(pdf, tr, y, "Estado del equipo")
	y = p.label(pdf, tr, y, "Estado", string(d.Status))
	y = p.label(pdf, tr, y, "Técnico", d.Technician)
	y = p.multiline(pdf, tr, y, "Falla reportada", d.Fault, maxFaultLines)
	y = p.multiline(pdf, tr, y, "Diagnóstico", d.Diagnosis, maxDetailLines)
	y = p.multiline(pdf, tr, y, "Solución", d.Resolution, maxDetailLines)
	y += 3

	y = p.title(pdf, tr, y, "Costos y garantía")
	y = p.label(pdf, tr, y, "Mano de obra (S/.)", fmt.Sprintf("%.2f", d.LaborCost))
	y = p.label(pdf, tr, y, "Repuestos (S/.)", fmt.Sprintf("%.2f", d.PartsCost))
	y = p.label(pdf, tr, y, "Total (S/.)", fmt.Sprintf("%.2f", d.TotalCost))
	y = p.label(pdf, tr, y, "Garantía (días)", strconv.Itoa(d.WarrantyDays))
	y += 3

	y = p.title(pdf, tr, y, "Observaciones")
	p.multiline(pdf, tr, y, "", d.Notes, maxDetailLines)

	// Signature lines pinned near the page bottom
	pdf.SetLineWidth(0.3)
	pdf.Line(pdfMargin+10, 262, pdfMargin+70, 262)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(pdfMargin+25, 267, tr("Firma del Cliente"))
	pdf.Line(pageW-pdfMargin-70, 262, pageW-pdfMargin-10, 262)
	pdf.Text(pageW-pdfMargin-55, 267, tr("Firma del Técnico"))

	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (p *PDFRenderer) title(pdf *fpdf.Fpdf, tr func(string) string, y float64, text string) float64 {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Text(pdfMargin, y+4, tr(text))
	return y + 8
}

func (p *PDFRenderer) label(pdf *fpdf.Fpdf, tr func(string) string, y float64, label, value string) float64 {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.Text(pdfMargin, y, tr(label+":"))
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(pdfMargin+labelW, y, tr(value))
	return y + lineH
}

func (p *PDFRenderer) multiline(pdf *fpdf.Fpdf, tr func(string) string, y float64, label, value string, maxLines int) float64 {
	if label != "" {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.Text(pdfMargin, y, tr(label+":"))
		y += lineH
	}
	pdf.SetFont("Helvetica", "", 9)
	// ~90 chars fit the usable width at 9pt Helvetica
	for _, line := range Wrap(value, 90, maxLines) {
		pdf.Text(pdfMargin+2, y, tr(line))
		y += lineH
	}
	if value == "" {
		y += lineH
	}
	return y
}
