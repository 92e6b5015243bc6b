package handlers

import (
	"net/http"

	"github.com/Abel-cordero/ORDEN/internal/registry"
	"github.com/Abel-cordero/ORDEN/internal/render"
	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	reg    *registry.Registry
	outDir string
	text   *render.TextRenderer
	pdf    *render.PDFRenderer
}

func NewDocumentHandler(reg *registry.Registry, outDir string) *DocumentHandler {
	return &DocumentHandler{
		reg:    reg,
		outDir: outDir,
		text:   &render.TextRenderer{},
		pdf:    &render.PDFRenderer{},
	}
}

// GenerateDocument renders the service sheet for an order into the output
// directory and returns the file path. The detail is fetched before any file
// is touched, so an unknown order number leaves nothing on disk.
func (h *DocumentHandler) GenerateDocument(c *gin.Context) {
	detail, err := h.reg.FetchOrderDetail(c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	format := c.DefaultQuery("format", "txt")
	var path string
	switch format {
	case "txt":
		path, err = h.text.RenderFile(detail, h.outDir)
	case "pdf":
		path, err = h.pdf.RenderFile(detail, h.outDir)
	default:
		badRequest(c, "format must be txt or pdf")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"path": path, "format": format})
}
