package testutil

import (
	"context"

	"github.com/mkrhub/controlhub/internal/domain/payment"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/samber/lo"
)

var _ payment.Repository = (*InMemoryPaymentStore)(nil)

// InMemoryPaymentStore implements payment.Repository. Like the postgres
// repository it refuses payments for invoices the owner cannot see.
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
	invoices *InMemoryInvoiceStore
}

// NewInMemoryPaymentStore creates a new in-memory payment repository backed
// by invoices for the ownership check
func NewInMemoryPaymentStore(invoices *InMemoryInvoiceStore) *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
		invoices:      invoices,
	}
}

func copyPayment(p *payment.Payment) *payment.Payment {
	if p == nil {
		return nil
	}
	c := *p
	if p.PaidAt != nil {
		d := *p.PaidAt
		c.PaidAt = &d
	}
	if p.Method != nil {
		c.Method = lo.ToPtr(*p.Method)
	}
	if p.Notes != nil {
		c.Notes = lo.ToPtr(*p.Notes)
	}
	return &c
}

// Create stores a new payment
func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	if p == nil {
		return ierr.NewError("payment cannot be nil").
			WithHint("Payment cannot be nil").
			Mark(ierr.ErrValidation)
	}
	ownerID, err := types.RequireOwnerID(ctx)
	if err != nil {
		return err
	}
	if _, err := s.invoices.get(ctx, p.InvoiceID); err != nil {
		return err
	}

	p.OwnerID = ownerID
	return s.InMemoryStore.Create(ctx, p.ID, copyPayment(p))
}

func paymentFilterFn(ctx context.Context, p *payment.Payment, filter interface{}) bool {
	if !CheckOwnerFilter(ctx, p.OwnerID) {
		return false
	}
	f, ok := filter.(*types.PaymentFilter)
	if !ok || f == nil {
		return false
	}
	return p.InvoiceID == f.InvoiceID
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	if _, err := types.RequireOwnerID(ctx); err != nil {
		return nil, err
	}
	if filter == nil || filter.InvoiceID == "" {
		return nil, invoiceNotFound("")
	}

	desc := filter.GetOrder() == types.OrderDesc
	items, err := s.InMemoryStore.List(ctx, filter, paymentFilterFn, func(a, b *payment.Payment) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt) == desc
		}
		return (a.ID > b.ID) == desc
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(p *payment.Payment, _ int) *payment.Payment { return copyPayment(p) }), nil
}
