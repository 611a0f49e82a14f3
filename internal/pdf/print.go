package pdf

import (
	"bytes"
	"context"
	"html/template"

	"github.com/mkrhub/controlhub/internal/domain/pdf"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/shopspring/decimal"
)

// PrintRenderer renders the browser print view of an invoice
type PrintRenderer interface {
	RenderInvoiceHTML(ctx context.Context, data *pdf.InvoiceData) (string, error)
}

const invoicePrintTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.Ref}}</title>
  <style>
    body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; color: #111; margin: 0; }
    .page { max-width: 800px; margin: 40px auto; padding: 0 24px; }
    .muted { color: #555; }
    h1 { font-size: 28px; margin: 0; }
    h2 { font-size: 16px; margin: 24px 0 8px; }
    table { width: 100%; border-collapse: collapse; }
    th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #e5e5e5; font-size: 14px; }
    .summary div { margin: 2px 0; }
    .balance { border-top: 1px solid #eaeaea; margin-top: 8px; padding-top: 8px; font-weight: 600; }
    .footer { margin-top: 40px; text-align: center; font-size: 12px; color: #777; }
    @media print { .page { margin: 0 auto; } }
  </style>
</head>
<body>
  <div class="page">
    <h1>{{.BusinessName}}</h1>
    <div class="muted">Invoice</div>

    <h2>Invoice Ref: {{.Ref}}</h2>
    <div>Client: {{.ClientName}}</div>
    <div>Event Date: {{orDash .EventDate}}</div>
    <div>Status: {{status .Status}}</div>

    <h2>Summary</h2>
    <div class="summary">
      <div>Total: {{money .Total}}</div>
      <div>Deposit: {{money .Deposit}}</div>
      <div>Payments: {{money .PaymentsTotal}}</div>
      <div class="balance">Balance Due: {{money .Balance}}</div>
    </div>

    {{if .Notes}}
    <h2>Notes</h2>
    <div>{{.Notes}}</div>
    {{end}}

    <h2>Payments</h2>
    {{if .Payments}}
    <table>
      <thead>
        <tr>
          <th>Amount</th>
          <th>Date</th>
          <th>Method</th>
          <th>Notes</th>
        </tr>
      </thead>
      <tbody>
        {{range .Payments}}
        <tr>
          <td>{{money .Amount}}</td>
          <td>{{orDash .PaidAt}}</td>
          <td>{{orDash .Method}}</td>
          <td>{{.Notes}}</td>
        </tr>
        {{end}}
        <tr>
          <td><strong>{{money .PaymentsTotal}}</strong></td>
          <td colspan="3"><strong>Total payments</strong></td>
        </tr>
      </tbody>
    </table>
    {{else}}
    <div class="muted">No payments recorded.</div>
    {{end}}

    <div class="footer">{{.Footer}}</div>
  </div>
</body>
</html>
`

type htmlRenderer struct {
	tpl *template.Template
}

// NewPrintRenderer returns the HTML print view renderer
func NewPrintRenderer() PrintRenderer {
	return &htmlRenderer{
		tpl: template.Must(template.New("invoice").Funcs(template.FuncMap{
			// money is rebound per render so the document currency applies
			"money":  func(decimal.Decimal) string { return "" },
			"orDash": pdf.OrDash,
			"status": statusOrDraft,
		}).Parse(invoicePrintTemplate)),
	}
}

func (r *htmlRenderer) RenderInvoiceHTML(ctx context.Context, data *pdf.InvoiceData) (string, error) {
	if data == nil {
		return "", ierr.NewError("invoice data is required").
			WithHint("Failed to render the invoice").
			Mark(ierr.ErrValidation)
	}

	tpl, err := r.tpl.Clone()
	if err != nil {
		return "", ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	tpl.Funcs(template.FuncMap{"money": data.Money})

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", ierr.WithError(err).
			WithMessagef("failed to render print view for invoice %s", data.ID).
			WithHint("Failed to render the invoice").
			Mark(ierr.ErrSystem)
	}
	return buf.String(), nil
}
