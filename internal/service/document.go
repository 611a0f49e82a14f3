package service

import (
	"context"
	"time"

	"github.com/mkrhub/controlhub/internal/domain/invoice"
	"github.com/mkrhub/controlhub/internal/domain/payment"
	domainPdf "github.com/mkrhub/controlhub/internal/domain/pdf"
	"github.com/mkrhub/controlhub/internal/reconciliation"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/samber/lo"
)

// DocumentService renders one invoice for printing or download
type DocumentService interface {
	// GetInvoiceData assembles everything a renderer needs for the invoice
	GetInvoiceData(ctx context.Context, id string) (*domainPdf.InvoiceData, error)
	// RenderInvoicePDF returns the PDF and its suggested filename
	RenderInvoicePDF(ctx context.Context, id string) ([]byte, string, error)
	// RenderInvoiceHTML returns the print view
	RenderInvoiceHTML(ctx context.Context, id string) (string, error)
}

type documentService struct {
	ServiceParams
}

func NewDocumentService(params ServiceParams) DocumentService {
	return &documentService{
		ServiceParams: params,
	}
}

func (s *documentService) GetInvoiceData(ctx context.Context, id string) (*domainPdf.InvoiceData, error) {
	inv, payments, err := loadInvoiceWithPayments(ctx, s.ServiceParams, id, types.OrderAsc)
	if err != nil {
		return nil, err
	}
	return s.toInvoiceData(inv, payments), nil
}

func (s *documentService) RenderInvoicePDF(ctx context.Context, id string) ([]byte, string, error) {
	data, err := s.GetInvoiceData(ctx, id)
	if err != nil {
		return nil, "", err
	}

	span, ctx := s.Sentry.StartRenderSpan(ctx, s.PDFGenerator.Name())
	if span != nil {
		defer span.Finish()
	}

	var out []byte
	start := time.Now()
	s.Pyroscope.TagWrapper(ctx, map[string]string{"renderer": s.PDFGenerator.Name()}, func(ctx context.Context) {
		out, err = s.PDFGenerator.RenderInvoicePdf(ctx, data)
	})
	if err != nil {
		s.Logger.WithContext(ctx).Errorw("failed to render invoice pdf",
			"invoice_id", id,
			"renderer", s.PDFGenerator.Name(),
			"error", err,
		)
		s.Sentry.CaptureRequestException(ctx, err)
		return nil, "", err
	}

	s.Logger.WithContext(ctx).Infow("rendered invoice pdf",
		"invoice_id", id,
		"renderer", s.PDFGenerator.Name(),
		"payments", len(data.Payments),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, data.Filename(), nil
}

func (s *documentService) RenderInvoiceHTML(ctx context.Context, id string) (string, error) {
	data, err := s.GetInvoiceData(ctx, id)
	if err != nil {
		return "", err
	}
	return s.PrintRenderer.RenderInvoiceHTML(ctx, data)
}

// toInvoiceData expects payments in ascending created_at order
func (s *documentService) toInvoiceData(inv *invoice.Invoice, payments []*payment.Payment) *domainPdf.InvoiceData {
	data := &domainPdf.InvoiceData{
		BusinessName:   s.Config.Business.Name,
		Footer:         s.Config.Business.GetFooter(),
		CurrencySymbol: s.Config.Business.GetCurrencySymbol(),
		ID:             inv.ID,
		Ref:            inv.Ref,
		ClientName:     inv.ClientName,
		Status:         string(inv.Status),
		Notes:          inv.GetNotes(),
		Total:          inv.Total,
		Deposit:        inv.Deposit,
		PaymentsTotal:  reconciliation.SumPayments(payments),
		Balance:        inv.Balance,
		GeneratedAt:    time.Now().UTC(),
	}
	if inv.EventDate != nil {
		data.EventDate = inv.EventDate.String()
	}

	data.Payments = lo.Map(payments, func(p *payment.Payment, _ int) domainPdf.PaymentData {
		pd := domainPdf.PaymentData{
			Amount: p.Amount,
			Method: p.GetMethod(),
			Notes:  p.GetNotes(),
		}
		if p.PaidAt != nil {
			pd.PaidAt = p.PaidAt.String()
		}
		return pd
	})
	return data
}
