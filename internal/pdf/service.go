package pdf

import (
	"context"

	"github.com/mkrhub/controlhub/internal/config"
	"github.com/mkrhub/controlhub/internal/domain/pdf"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/typst"
	"github.com/mkrhub/controlhub/internal/types"
)

// Generator defines the interface for PDF generation operations
type Generator interface {
	// RenderInvoicePdf renders one reconciled invoice and its payments
	RenderInvoicePdf(ctx context.Context, data *pdf.InvoiceData) ([]byte, error)
	// Name identifies the renderer in logs and traces
	Name() string
}

// NewGenerator returns the generator configured in pdf.renderer. fpdf renders
// in process; typst shells out to the typst binary with the bundled template.
func NewGenerator(cfg *config.Configuration, log *logger.Logger) Generator {
	switch cfg.PDF.Renderer {
	case types.PDFRendererTypst:
		compiler := typst.NewCompiler(
			log,
			cfg.PDF.TypstBinary,
			cfg.PDF.FontDir,
			cfg.PDF.TemplateDir,
			"",
		)
		return NewTypstGenerator(compiler, log)
	default:
		return NewFpdfGenerator(cfg.PDF.FontDir, log)
	}
}
