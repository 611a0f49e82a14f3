package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/mkrhub/controlhub/internal/domain/pdf"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/logger"
)

const (
	pageMargin = 50.0
	fontFamily = "Helvetica"
)

type fpdfGenerator struct {
	fontDir string
	logger  *logger.Logger
}

// NewFpdfGenerator renders invoices in process with the fpdf core fonts
func NewFpdfGenerator(fontDir string, log *logger.Logger) Generator {
	return &fpdfGenerator{
		fontDir: fontDir,
		logger:  log,
	}
}

func (g *fpdfGenerator) Name() string {
	return "fpdf"
}

func (g *fpdfGenerator) RenderInvoicePdf(ctx context.Context, data *pdf.InvoiceData) ([]byte, error) {
	if data == nil {
		return nil, ierr.NewError("invoice data is required").
			WithHint("Failed to render the invoice").
			Mark(ierr.ErrValidation)
	}

	doc := fpdf.New("P", "pt", "A4", g.fontDir)
	// core fonts are cp1252, which covers the pound sign and bullet
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.SetTitle("Invoice "+data.Ref, true)
	doc.SetCreator(data.BusinessName, true)
	if !data.GeneratedAt.IsZero() {
		doc.SetCreationDate(data.GeneratedAt)
	}
	doc.SetFooterFunc(func() {
		doc.SetY(-pageMargin)
		doc.SetFont(fontFamily, "", 9)
		doc.SetTextColor(119, 119, 119)
		doc.CellFormat(0, 12, tr(data.Footer), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	pageWidth, _ := doc.GetPageSize()
	contentWidth := pageWidth - 2*pageMargin

	// header
	doc.SetFont(fontFamily, "B", 20)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(contentWidth, 24, tr(data.BusinessName), "", 1, "L", false, 0, "")
	doc.SetFont(fontFamily, "", 11)
	doc.SetTextColor(85, 85, 85)
	doc.CellFormat(contentWidth, 14, "Invoice", "", 1, "L", false, 0, "")
	doc.Ln(12)

	// identity
	doc.SetTextColor(0, 0, 0)
	doc.SetFont(fontFamily, "", 14)
	doc.CellFormat(contentWidth, 18, tr("Invoice Ref: "+data.Ref), "", 1, "L", false, 0, "")
	doc.SetFont(fontFamily, "", 11)
	line := func(text string) {
		doc.MultiCell(contentWidth, 14, tr(text), "", "L", false)
	}
	line("Client: " + data.ClientName)
	line("Event Date: " + pdf.OrDash(data.EventDate))
	line("Status: " + statusOrDraft(data.Status))
	doc.Ln(12)

	// summary
	heading(doc, contentWidth, "Summary")
	line("Total: " + data.Money(data.Total))
	line("Deposit: " + data.Money(data.Deposit))
	line("Payments: " + data.Money(data.PaymentsTotal))
	doc.Ln(4)
	y := doc.GetY()
	doc.SetDrawColor(234, 234, 234)
	doc.Line(pageMargin, y, pageMargin+contentWidth, y)
	doc.Ln(6)
	doc.SetFont(fontFamily, "B", 12)
	doc.CellFormat(contentWidth, 16, tr("Balance Due: "+data.Money(data.Balance)), "", 1, "L", false, 0, "")
	doc.SetFont(fontFamily, "", 11)

	if strings.TrimSpace(data.Notes) != "" {
		doc.Ln(12)
		heading(doc, contentWidth, "Notes")
		line(data.Notes)
	}

	doc.Ln(12)
	heading(doc, contentWidth, "Payments")
	if len(data.Payments) == 0 {
		doc.SetTextColor(85, 85, 85)
		line("No payments recorded.")
		doc.SetTextColor(0, 0, 0)
	}
	for i, p := range data.Payments {
		line(fmt.Sprintf("%d. %s (Date: %s • Method: %s)",
			i+1, data.Money(p.Amount), pdf.OrDash(p.PaidAt), pdf.OrDash(p.Method)))
		if p.Notes != "" {
			doc.SetTextColor(85, 85, 85)
			doc.SetX(pageMargin + 14)
			doc.MultiCell(contentWidth-14, 14, tr("Notes: "+p.Notes), "", "L", false)
			doc.SetTextColor(0, 0, 0)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, ierr.WithError(err).
			WithMessagef("failed to render invoice %s", data.ID).
			WithHint("Failed to render the invoice").
			Mark(ierr.ErrSystem)
	}

	g.logger.WithContext(ctx).Debugw("rendered invoice pdf",
		"invoice_id", data.ID,
		"renderer", g.Name(),
		"size_bytes", buf.Len(),
	)
	return buf.Bytes(), nil
}

func heading(doc *fpdf.Fpdf, width float64, title string) {
	doc.SetFont(fontFamily, "U", 12)
	doc.CellFormat(width, 16, title, "", 1, "L", false, 0, "")
	doc.SetFont(fontFamily, "", 11)
}

func statusOrDraft(status string) string {
	if status == "" {
		return "Draft"
	}
	return status
}
