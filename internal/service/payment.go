package service

import (
	"context"

	"github.com/mkrhub/controlhub/internal/api/dto"
	"github.com/mkrhub/controlhub/internal/domain/invoice"
	"github.com/mkrhub/controlhub/internal/domain/payment"
	"github.com/mkrhub/controlhub/internal/reconciliation"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/samber/lo"
)

// PaymentService defines the interface for payment operations
type PaymentService interface {
	// AddPayment records a payment and reconciles the invoice it belongs to
	AddPayment(ctx context.Context, invoiceID string, req dto.AddPaymentRequest) (*dto.AddPaymentResponse, error)
	// ListPayments lists the payments of an invoice, oldest first
	ListPayments(ctx context.Context, invoiceID string) (*dto.ListPaymentsResponse, error)
}

type paymentService struct {
	ServiceParams
}

// NewPaymentService creates a new payment service
func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{
		ServiceParams: params,
	}
}

// AddPayment inserts the payment, re-reads every payment of the invoice and
// writes back only the derived balance and status. The insert and the invoice
// update commit together.
func (s *paymentService) AddPayment(ctx context.Context, invoiceID string, req dto.AddPaymentRequest) (*dto.AddPaymentResponse, error) {
	if _, err := types.RequireOwnerID(ctx); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		p   *payment.Payment
		inv *invoice.Invoice
	)

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.InvoiceRepo.Get(ctx, invoiceID)
		if err != nil {
			return err
		}

		p = req.ToPayment(ctx, inv.ID)
		if err := p.Validate(); err != nil {
			return err
		}
		if err := s.PaymentRepo.Create(ctx, p); err != nil {
			return err
		}

		payments, err := s.PaymentRepo.List(ctx, types.NewPaymentFilter(inv.ID))
		if err != nil {
			return err
		}

		result := reconciliation.ReconcileAfterPayment(inv, payments)
		if err := s.InvoiceRepo.UpdateReconciliation(ctx, inv.ID, result.Balance, result.Status); err != nil {
			return err
		}

		s.Logger.WithContext(ctx).Infow("recorded payment",
			"invoice_id", inv.ID,
			"payment_id", p.ID,
			"amount", p.Amount.String(),
			"payments_sum", result.PaymentsSum.String(),
			"balance", result.Balance.String(),
			"previous_status", inv.Status,
			"status", result.Status,
		)

		inv.Balance = result.Balance
		inv.Status = result.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.AddPaymentResponse{
		Payment: dto.NewPaymentResponse(p),
		Invoice: dto.NewInvoiceResponse(inv),
	}, nil
}

func (s *paymentService) ListPayments(ctx context.Context, invoiceID string) (*dto.ListPaymentsResponse, error) {
	// the invoice lookup turns a foreign or missing invoice into NotFound
	// instead of an empty list
	if _, err := s.InvoiceRepo.Get(ctx, invoiceID); err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.List(ctx, types.NewPaymentFilter(invoiceID))
	if err != nil {
		return nil, err
	}

	return &dto.ListPaymentsResponse{
		Items:      lo.Map(payments, func(p *payment.Payment, _ int) *dto.PaymentResponse { return dto.NewPaymentResponse(p) }),
		Pagination: types.NewPaginationResponse(len(payments), 0, 0),
	}, nil
}
