package payment

import (
	"time"

	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/shopspring/decimal"
)

// Payment is one amount received against an invoice. Payments are append only.
type Payment struct {
	// ID is the unique identifier of the payment
	ID string `db:"id" json:"id"`
	// OwnerID always equals the owner of the invoice
	OwnerID string `db:"owner_id" json:"owner_id"`
	// InvoiceID is the invoice this payment settles
	InvoiceID string `db:"invoice_id" json:"invoice_id"`
	// Amount is strictly positive
	Amount decimal.Decimal `db:"amount" json:"amount" swaggertype:"string"`
	// PaidAt is the date the money was received (optional)
	PaidAt *types.Date `db:"paid_at" json:"paid_at"`
	// Method is a short free-text label such as "Bank transfer" (optional)
	Method *string `db:"method" json:"method"`
	// Notes (optional)
	Notes *string `db:"notes" json:"notes"`
	// CreatedAt is the canonical chronological order of payments
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Validate validates the payment
func (p *Payment) Validate() error {
	if !p.Amount.IsPositive() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			WithReportableDetails(map[string]any{
				"amount": p.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if p.InvoiceID == "" {
		return ierr.NewError("invalid invoice id").
			WithHint("Invoice id is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (p *Payment) GetMethod() string {
	if p.Method == nil {
		return ""
	}
	return *p.Method
}

func (p *Payment) GetNotes() string {
	if p.Notes == nil {
		return ""
	}
	return *p.Notes
}
