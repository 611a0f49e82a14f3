package pdf

import (
	"strings"
	"time"

	"github.com/mkrhub/controlhub/internal/types"
	"github.com/shopspring/decimal"
)

// InvoiceData is everything a document renderer needs for one invoice. It is
// built from an already reconciled invoice; renderers do no arithmetic.
type InvoiceData struct {
	BusinessName   string `json:"business_name"`
	Footer         string `json:"footer"`
	CurrencySymbol string `json:"currency_symbol"`

	ID         string `json:"id"`
	Ref        string `json:"ref"`
	ClientName string `json:"client_name"`
	EventDate  string `json:"event_date"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`

	Total         decimal.Decimal `json:"total"`
	Deposit       decimal.Decimal `json:"deposit"`
	PaymentsTotal decimal.Decimal `json:"payments_total"`
	Balance       decimal.Decimal `json:"balance"`

	// Payments in ascending created_at order
	Payments []PaymentData `json:"payments"`

	GeneratedAt time.Time `json:"generated_at"`
}

// PaymentData represents one itemized payment line
type PaymentData struct {
	Amount decimal.Decimal `json:"amount"`
	PaidAt string          `json:"paid_at"`
	Method string          `json:"method"`
	Notes  string          `json:"notes"`
}

// Money formats an amount with the document currency symbol
func (d *InvoiceData) Money(amount decimal.Decimal) string {
	return types.FormatAmount(d.CurrencySymbol, amount)
}

// Filename is the suggested download name
func (d *InvoiceData) Filename() string {
	ref := d.Ref
	if ref == "" {
		ref = d.ID
	}
	return "invoice-" + strings.Map(filenameRune, ref) + ".pdf"
}

// filenameRune keeps refs safe to place in a Content-Disposition header
func filenameRune(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return r
	case r == '-' || r == '_' || r == '.':
		return r
	default:
		return '_'
	}
}

// OrDash renders blank optional values as "-"
func OrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
