package payment

import (
	"context"

	"github.com/mkrhub/controlhub/internal/types"
)

// Repository defines the interface for payment persistence. There is no
// update or delete: payments are append only.
type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	List(ctx context.Context, filter *types.PaymentFilter) ([]*Payment, error)
}
