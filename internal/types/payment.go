package types

import "github.com/samber/lo"

// PaymentFilter represents the filter options for listing the payments of
// one invoice. Payments are always listed in created_at order; Order picks the
// direction.
type PaymentFilter struct {
	*QueryFilter

	InvoiceID string `json:"invoice_id,omitempty" form:"invoice_id"`
}

// NewPaymentFilter returns an unpaginated filter over the payments of an
// invoice in chronological order.
func NewPaymentFilter(invoiceID string) *PaymentFilter {
	f := NewNoLimitQueryFilter()
	f.Order = lo.ToPtr(OrderAsc)
	return &PaymentFilter{
		QueryFilter: f,
		InvoiceID:   invoiceID,
	}
}

func (f *PaymentFilter) GetOrder() string {
	if f == nil || f.QueryFilter == nil {
		return OrderAsc
	}
	return f.QueryFilter.GetOrder()
}

func (f *PaymentFilter) GetLimit() int {
	if f == nil || f.QueryFilter == nil {
		return 0
	}
	return f.QueryFilter.GetLimit()
}

func (f *PaymentFilter) GetOffset() int {
	if f == nil || f.QueryFilter == nil {
		return 0
	}
	return f.QueryFilter.GetOffset()
}

func (f *PaymentFilter) IsUnlimited() bool {
	if f == nil || f.QueryFilter == nil {
		return true
	}
	return f.QueryFilter.IsUnlimited()
}
