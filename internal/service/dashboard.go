package service

import (
	"context"

	"github.com/mkrhub/controlhub/internal/api/dto"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/shopspring/decimal"
)

// DashboardService summarizes the invoices of the signed in principal
type DashboardService interface {
	GetDashboard(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	ServiceParams
}

func NewDashboardService(params ServiceParams) DashboardService {
	return &dashboardService{
		ServiceParams: params,
	}
}

// GetDashboard counts invoices per status and sums the balance still owed on
// every invoice that is not cancelled
func (s *dashboardService) GetDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	if _, err := types.RequireOwnerID(ctx); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, types.NewNoLimitInvoiceFilter())
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		Email:        types.GetEmail(ctx),
		InvoiceCount: len(invoices),
		Outstanding:  decimal.Zero,
		StatusCounts: make(map[types.InvoiceStatus]int, len(types.InvoiceStatuses)),
	}
	for _, status := range types.InvoiceStatuses {
		resp.StatusCounts[status] = 0
	}

	for _, inv := range invoices {
		resp.StatusCounts[inv.Status]++
		if inv.IsCancelled() {
			continue
		}
		resp.Outstanding = resp.Outstanding.Add(inv.Balance)
	}
	return resp, nil
}
