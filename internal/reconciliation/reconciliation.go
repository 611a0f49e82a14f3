// Package reconciliation derives the balance and status of an invoice from
// its financial fields and the full set of payments recorded against it.
// Everything here is pure; callers load and persist.
package reconciliation

import (
	"github.com/mkrhub/controlhub/internal/domain/invoice"
	"github.com/mkrhub/controlhub/internal/domain/payment"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/shopspring/decimal"
)

// Result is the derived state of an invoice after a reconciliation
type Result struct {
	PaymentsSum decimal.Decimal
	Balance     decimal.Decimal
	Status      types.InvoiceStatus
}

// ComputeBalance returns total - deposit - paymentsSum. The result is not
// clamped: a negative balance means the client overpaid.
func ComputeBalance(total, deposit, paymentsSum decimal.Decimal) decimal.Decimal {
	return total.Sub(deposit).Sub(paymentsSum)
}

// SumPayments adds up the amounts of payments. Order does not matter and a
// nil or empty set sums to zero.
func SumPayments(payments []*payment.Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		if p == nil {
			continue
		}
		sum = sum.Add(p.Amount)
	}
	return sum
}

// InferStatus decides the status after a payment has been recorded. The rules
// are evaluated in order and the first match wins:
//
//  1. Cancelled stays Cancelled
//  2. balance <= 0 is Paid
//  3. any deposit or payment is Deposit Paid
//  4. Draft becomes Booked
//  5. anything else is left as is
//
// A blank current status is read as Draft.
func InferStatus(current types.InvoiceStatus, deposit, paymentsSum, balance decimal.Decimal) types.InvoiceStatus {
	if current == "" {
		current = types.InvoiceStatusDraft
	}

	switch {
	case current == types.InvoiceStatusCancelled:
		return types.InvoiceStatusCancelled
	case !balance.IsPositive():
		return types.InvoiceStatusPaid
	case deposit.IsPositive() || paymentsSum.IsPositive():
		return types.InvoiceStatusDepositPaid
	case current == types.InvoiceStatusDraft:
		return types.InvoiceStatusBooked
	default:
		return current
	}
}

// ReconcileAfterPayment recomputes the balance from the full payment set and
// infers the next status. payments must already include the new payment.
func ReconcileAfterPayment(inv *invoice.Invoice, payments []*payment.Payment) Result {
	sum := SumPayments(payments)
	balance := ComputeBalance(inv.Total, inv.Deposit, sum)
	return Result{
		PaymentsSum: sum,
		Balance:     balance,
		Status:      InferStatus(inv.Status, inv.Deposit, sum, balance),
	}
}

// ReconcileAfterEdit recomputes the balance for an edited invoice. The status
// is whatever the edit submitted; no inference happens on this path.
func ReconcileAfterEdit(inv *invoice.Invoice, payments []*payment.Payment) Result {
	sum := SumPayments(payments)
	return Result{
		PaymentsSum: sum,
		Balance:     ComputeBalance(inv.Total, inv.Deposit, sum),
		Status:      inv.Status,
	}
}
