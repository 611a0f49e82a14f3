package dto

import (
	"context"
	"strings"
	"time"

	"github.com/mkrhub/controlhub/internal/domain/invoice"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/mkrhub/controlhub/internal/validator"
	"github.com/shopspring/decimal"
)

// InvoiceFields are the user editable fields of an invoice, shared by the
// create and edit forms
type InvoiceFields struct {
	Ref        string              `json:"ref" validate:"required,notblank"`
	ClientName string              `json:"client_name" validate:"required,notblank"`
	EventDate  string              `json:"event_date,omitempty"`
	Total      Amount              `json:"total"`
	Deposit    Amount              `json:"deposit"`
	Status     types.InvoiceStatus `json:"status,omitempty"`
	Notes      string              `json:"notes,omitempty"`
}

func (r *InvoiceFields) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := validateAmount("total", r.Total); err != nil {
		return err
	}
	if err := validateAmount("deposit", r.Deposit); err != nil {
		return err
	}
	if _, err := types.ParseOptionalDate(r.EventDate); err != nil {
		return err
	}
	return r.GetStatus().Validate()
}

// GetStatus returns the submitted status, Draft when none was given
func (r *InvoiceFields) GetStatus() types.InvoiceStatus {
	if strings.TrimSpace(string(r.Status)) == "" {
		return types.InvoiceStatusDraft
	}
	return types.InvoiceStatus(strings.TrimSpace(string(r.Status)))
}

// apply copies the submitted fields onto inv; Validate must have passed
func (r *InvoiceFields) apply(inv *invoice.Invoice) {
	eventDate, _ := types.ParseOptionalDate(r.EventDate)

	inv.Ref = strings.TrimSpace(r.Ref)
	inv.ClientName = strings.TrimSpace(r.ClientName)
	inv.EventDate = eventDate
	inv.Total = r.Total.Round(2)
	inv.Deposit = r.Deposit.Round(2)
	inv.Status = r.GetStatus()
	inv.Notes = optionalString(r.Notes)
}

// CreateInvoiceRequest represents the new invoice form
type CreateInvoiceRequest struct {
	InvoiceFields
}

// ToInvoice builds a new invoice. The balance is total - deposit since a new
// invoice has no payments.
func (r *CreateInvoiceRequest) ToInvoice(ctx context.Context) *invoice.Invoice {
	now := time.Now().UTC()
	inv := &invoice.Invoice{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		OwnerID:   types.GetOwnerID(ctx),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.apply(inv)
	inv.Balance = inv.Total.Sub(inv.Deposit)
	return inv
}

// UpdateInvoiceRequest represents the edit invoice form. Every field is
// submitted; the status is stored exactly as given.
type UpdateInvoiceRequest struct {
	InvoiceFields
}

// ApplyTo copies the edit onto an existing invoice. The caller recomputes the
// balance against the current payments.
func (r *UpdateInvoiceRequest) ApplyTo(inv *invoice.Invoice) {
	r.apply(inv)
}

// InvoiceResponse represents an invoice in the API
type InvoiceResponse struct {
	*invoice.Invoice
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv}
}

// ListInvoicesResponse is the invoice list, newest first
type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]

// InvoiceDetailResponse is an invoice together with its payments
type InvoiceDetailResponse struct {
	Invoice *InvoiceResponse `json:"invoice"`
	// Payments newest first
	Payments      []*PaymentResponse `json:"payments"`
	PaymentCount  int                `json:"payment_count"`
	PaymentsTotal decimal.Decimal    `json:"payments_total" swaggertype:"string"`
}

// DashboardResponse summarizes the invoices of the signed in principal
type DashboardResponse struct {
	Email        string                      `json:"email"`
	InvoiceCount int                         `json:"invoice_count"`
	Outstanding  decimal.Decimal             `json:"outstanding" swaggertype:"string"`
	StatusCounts map[types.InvoiceStatus]int `json:"status_counts"`
}
