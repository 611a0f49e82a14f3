package service

import (
	"context"

	"github.com/mkrhub/controlhub/internal/api/dto"
	"github.com/mkrhub/controlhub/internal/domain/invoice"
	"github.com/mkrhub/controlhub/internal/domain/payment"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/reconciliation"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

// InvoiceService defines the interface for invoice operations. Every
// operation acts for the owner carried by ctx.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	GetInvoiceDetail(ctx context.Context, id string) (*dto.InvoiceDetailResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if _, err := types.RequireOwnerID(ctx); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv := req.ToInvoice(ctx)
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("created invoice",
		"invoice_id", inv.ID,
		"ref", inv.Ref,
		"status", inv.Status,
		"balance", inv.Balance.String(),
	)
	return dto.NewInvoiceResponse(inv), nil
}

// UpdateInvoice applies an edit. The balance is recomputed from the submitted
// total and deposit against the payments currently on record; the submitted
// status is kept as is.
func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	var updated *invoice.Invoice

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.InvoiceRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if err := req.Validate(); err != nil {
			return err
		}
		req.ApplyTo(inv)
		if err := inv.Validate(); err != nil {
			return err
		}

		payments, err := s.PaymentRepo.List(ctx, types.NewPaymentFilter(inv.ID))
		if err != nil {
			return err
		}
		result := reconciliation.ReconcileAfterEdit(inv, payments)
		inv.Balance = result.Balance
		inv.Status = result.Status

		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return err
		}
		updated = inv

		s.Logger.WithContext(ctx).Infow("updated invoice",
			"invoice_id", inv.ID,
			"payments_sum", result.PaymentsSum.String(),
			"balance", inv.Balance.String(),
			"status", inv.Status,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dto.NewInvoiceResponse(updated), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	if id == "" {
		return nil, ierr.NewError("invoice_id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

// GetInvoiceDetail loads an invoice and its payments, newest payment first
func (s *invoiceService) GetInvoiceDetail(ctx context.Context, id string) (*dto.InvoiceDetailResponse, error) {
	if id == "" {
		return nil, ierr.NewError("invoice_id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	inv, payments, err := loadInvoiceWithPayments(ctx, s.ServiceParams, id, types.OrderDesc)
	if err != nil {
		return nil, err
	}

	return &dto.InvoiceDetailResponse{
		Invoice:       dto.NewInvoiceResponse(inv),
		Payments:      lo.Map(payments, func(p *payment.Payment, _ int) *dto.PaymentResponse { return dto.NewPaymentResponse(p) }),
		PaymentCount:  len(payments),
		PaymentsTotal: reconciliation.SumPayments(payments),
	}, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListInvoicesResponse{
		Items:      lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse { return dto.NewInvoiceResponse(inv) }),
		Pagination: types.NewPaginationResponse(total, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

// loadInvoiceWithPayments reads the invoice and its payments concurrently.
// A missing or foreign invoice fails the whole load with NotFound.
func loadInvoiceWithPayments(ctx context.Context, params ServiceParams, id, order string) (*invoice.Invoice, []*payment.Payment, error) {
	var (
		inv      *invoice.Invoice
		payments []*payment.Payment
	)

	filter := types.NewPaymentFilter(id)
	filter.Order = lo.ToPtr(order)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		inv, err = params.InvoiceRepo.Get(ctx, id)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		payments, err = params.PaymentRepo.List(ctx, filter)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, nil, err
	}
	return inv, payments, nil
}
