package dto

import (
	"context"
	"time"

	"github.com/mkrhub/controlhub/internal/domain/payment"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/mkrhub/controlhub/internal/validator"
)

// AddPaymentRequest represents the add payment form of an invoice
type AddPaymentRequest struct {
	Amount Amount `json:"amount"`
	PaidAt string `json:"paid_at,omitempty"`
	Method string `json:"method,omitempty" validate:"omitempty,max=100"`
	Notes  string `json:"notes,omitempty"`
}

func (r *AddPaymentRequest) Validate() error {
	if err := validateAmount("amount", r.Amount); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			WithReportableDetails(map[string]any{
				"amount": r.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if _, err := types.ParseOptionalDate(r.PaidAt); err != nil {
		return err
	}
	return nil
}

// ToPayment builds the payment for invoiceID; Validate must have passed
func (r *AddPaymentRequest) ToPayment(ctx context.Context, invoiceID string) *payment.Payment {
	paidAt, _ := types.ParseOptionalDate(r.PaidAt)
	return &payment.Payment{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		OwnerID:   types.GetOwnerID(ctx),
		InvoiceID: invoiceID,
		Amount:    r.Amount.Round(2),
		PaidAt:    paidAt,
		Method:    optionalString(r.Method),
		Notes:     optionalString(r.Notes),
		CreatedAt: time.Now().UTC(),
	}
}

// PaymentResponse represents a payment in the API
type PaymentResponse struct {
	*payment.Payment
}

func NewPaymentResponse(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{Payment: p}
}

// ListPaymentsResponse lists the payments of one invoice, oldest first
type ListPaymentsResponse = types.ListResponse[*PaymentResponse]

// AddPaymentResponse is the recorded payment and the reconciled invoice
type AddPaymentResponse struct {
	Payment *PaymentResponse `json:"payment"`
	Invoice *InvoiceResponse `json:"invoice"`
}
