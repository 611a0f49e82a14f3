package invoice

import (
	"context"

	"github.com/mkrhub/controlhub/internal/types"
	"github.com/shopspring/decimal"
)

// Repository defines the interface for invoice persistence operations.
// Every method is scoped to the owner carried by ctx; a record that belongs to
// someone else behaves exactly like a missing one.
type Repository interface {
	// Create creates a new invoice
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update writes every user editable field together with the balance
	Update(ctx context.Context, invoice *Invoice) error

	// UpdateReconciliation writes only balance and status
	UpdateReconciliation(ctx context.Context, id string, balance decimal.Decimal, status types.InvoiceStatus) error

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)
}
