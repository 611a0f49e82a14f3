package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/mkrhub/controlhub/internal/domain/invoice"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var _ invoice.Repository = (*InMemoryInvoiceStore)(nil)

// InMemoryInvoiceStore implements invoice.Repository with the same owner
// scoping as the postgres repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]

	mu                 sync.Mutex
	failReconciliation error
}

// NewInMemoryInvoiceStore creates a new in-memory invoice store
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

// FailNextReconciliation makes the next UpdateReconciliation return err
func (s *InMemoryInvoiceStore) FailNextReconciliation(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReconciliation = err
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	c := *inv
	if inv.EventDate != nil {
		d := *inv.EventDate
		c.EventDate = &d
	}
	if inv.Notes != nil {
		c.Notes = lo.ToPtr(*inv.Notes)
	}
	return &c
}

func invoiceNotFound(id string) error {
	return ierr.NewError("invoice not found").
		WithHint("Invoice not found").
		WithReportableDetails(map[string]any{"id": id}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").Mark(ierr.ErrValidation)
	}
	ownerID, err := types.RequireOwnerID(ctx)
	if err != nil {
		return err
	}
	inv.OwnerID = ownerID
	return s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv))
}

// get returns the stored invoice when it belongs to the owner of ctx
func (s *InMemoryInvoiceStore) get(ctx context.Context, id string) (*invoice.Invoice, error) {
	if _, err := types.RequireOwnerID(ctx); err != nil {
		return nil, err
	}
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !CheckOwnerFilter(ctx, inv.OwnerID) {
		return nil, invoiceNotFound(id)
	}
	return inv, nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").Mark(ierr.ErrValidation)
	}
	existing, err := s.get(ctx, inv.ID)
	if err != nil {
		return err
	}

	updated := copyInvoice(inv)
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, inv.ID, updated)
}

func (s *InMemoryInvoiceStore) UpdateReconciliation(ctx context.Context, id string, balance decimal.Decimal, status types.InvoiceStatus) error {
	s.mu.Lock()
	failErr := s.failReconciliation
	s.failReconciliation = nil
	s.mu.Unlock()
	if failErr != nil {
		return failErr
	}

	existing, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	updated := copyInvoice(existing)
	updated.Balance = balance
	updated.Status = status
	updated.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, id, updated)
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	if !CheckOwnerFilter(ctx, inv.OwnerID) {
		return false
	}
	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}
	if len(f.InvoiceIDs) > 0 && !lo.Contains(f.InvoiceIDs, inv.ID) {
		return false
	}
	if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, inv.Status) {
		return false
	}
	return true
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if _, err := types.RequireOwnerID(ctx); err != nil {
		return nil, err
	}

	desc := filter.GetOrder() != types.OrderAsc
	items, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, func(a, b *invoice.Invoice) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt) == desc
		}
		return (a.ID > b.ID) == desc
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(inv *invoice.Invoice, _ int) *invoice.Invoice { return copyInvoice(inv) }), nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	if _, err := types.RequireOwnerID(ctx); err != nil {
		return 0, err
	}
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}
