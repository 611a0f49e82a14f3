package pdf

import (
	"context"
	"encoding/json"

	"github.com/mkrhub/controlhub/internal/domain/pdf"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/typst"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/samber/lo"
)

const invoiceTemplate = "invoice.typ"

type typstGenerator struct {
	typst  typst.Compiler
	logger *logger.Logger
}

// NewTypstGenerator renders invoices through the typst invoice template
func NewTypstGenerator(compiler typst.Compiler, log *logger.Logger) Generator {
	return &typstGenerator{
		typst:  compiler,
		logger: log,
	}
}

func (g *typstGenerator) Name() string {
	return "typst"
}

// typstInvoice is the JSON document read by templates/invoice.typ. Typst has
// no decimal type so money arrives pre-formatted.
type typstInvoice struct {
	BusinessName  string         `json:"business_name"`
	Footer        string         `json:"footer"`
	Ref           string         `json:"ref"`
	ClientName    string         `json:"client_name"`
	EventDate     string         `json:"event_date"`
	Status        string         `json:"status"`
	Notes         string         `json:"notes"`
	Total         string         `json:"total"`
	Deposit       string         `json:"deposit"`
	PaymentsTotal string         `json:"payments_total"`
	Balance       string         `json:"balance"`
	Payments      []typstPayment `json:"payments"`
}

type typstPayment struct {
	Index  int    `json:"index"`
	Amount string `json:"amount"`
	PaidAt string `json:"paid_at"`
	Method string `json:"method"`
	Notes  string `json:"notes"`
}

func toTypstInvoice(data *pdf.InvoiceData) typstInvoice {
	return typstInvoice{
		BusinessName:  data.BusinessName,
		Footer:        data.Footer,
		Ref:           data.Ref,
		ClientName:    data.ClientName,
		EventDate:     pdf.OrDash(data.EventDate),
		Status:        statusOrDraft(data.Status),
		Notes:         data.Notes,
		Total:         data.Money(data.Total),
		Deposit:       data.Money(data.Deposit),
		PaymentsTotal: data.Money(data.PaymentsTotal),
		Balance:       data.Money(data.Balance),
		Payments: lo.Map(data.Payments, func(p pdf.PaymentData, i int) typstPayment {
			return typstPayment{
				Index:  i + 1,
				Amount: data.Money(p.Amount),
				PaidAt: pdf.OrDash(p.PaidAt),
				Method: pdf.OrDash(p.Method),
				Notes:  p.Notes,
			}
		}),
	}
}

func (g *typstGenerator) RenderInvoicePdf(ctx context.Context, data *pdf.InvoiceData) ([]byte, error) {
	if data == nil {
		return nil, ierr.NewError("invoice data is required").
			WithHint("Failed to render the invoice").
			Mark(ierr.ErrValidation)
	}

	jsonData, err := json.Marshal(toTypstInvoice(data))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to marshal invoice data").
			Mark(ierr.ErrSystem)
	}

	out, err := g.typst.CompileTemplate(
		ctx,
		invoiceTemplate,
		jsonData,
		typst.WithOutputFile(types.GenerateUUIDWithPrefix("invoice")+".pdf"),
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to compile invoice template").
			Mark(ierr.ErrSystem)
	}

	g.logger.WithContext(ctx).Debugw("rendered invoice pdf",
		"invoice_id", data.ID,
		"renderer", g.Name(),
		"size_bytes", len(out),
	)
	return out, nil
}
