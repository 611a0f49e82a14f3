package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/service"
)

type DocumentHandler struct {
	documentService service.DocumentService
	logger          *logger.Logger
}

func NewDocumentHandler(documentService service.DocumentService, logger *logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// @Summary Download invoice PDF
// @Description Render an invoice with its payments as an A4 PDF
// @Tags Documents
// @Produce application/pdf
// @Security ApiKeyAuth
// @Param id path string true "Invoice ID"
// @Success 200 {file} file
// @Failure 401 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /invoices/{id}/pdf [get]
func (h *DocumentHandler) GetInvoicePDF(c *gin.Context) {
	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}

	out, filename, err := h.documentService.RenderInvoicePDF(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", out)
}

// @Summary Print view
// @Description Render an invoice as a printable HTML page
// @Tags Documents
// @Produce html
// @Security ApiKeyAuth
// @Param id path string true "Invoice ID"
// @Success 200 {string} string
// @Failure 401 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id}/print [get]
func (h *DocumentHandler) GetInvoicePrint(c *gin.Context) {
	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}

	html, err := h.documentService.RenderInvoiceHTML(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
