package service

import (
	"testing"

	"github.com/mkrhub/controlhub/internal/api/dto"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/testutil"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// newTestServiceParams wires the in-memory stores of the base suite
func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	return ServiceParams{
		Logger:        s.GetLogger(),
		Config:        s.GetConfig(),
		DB:            s.GetDB(),
		PDFGenerator:  s.GetPDFGenerator(),
		PrintRenderer: s.GetPrintRenderer(),
		Principals:    s.GetPrincipals(),
		InvoiceRepo:   s.GetStores().InvoiceRepo,
		PaymentRepo:   s.GetStores().PaymentRepo,
	}
}

func invoiceRequest(ref, client, total, deposit string, status types.InvoiceStatus) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		InvoiceFields: dto.InvoiceFields{
			Ref:        ref,
			ClientName: client,
			Total:      dto.ParseAmount(total),
			Deposit:    dto.ParseAmount(deposit),
			Status:     status,
		},
	}
}

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service        InvoiceService
	paymentService PaymentService
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewInvoiceService(params)
	s.paymentService = NewPaymentService(params)
}

func (s *InvoiceServiceSuite) TestCreateInvoice() {
	// Scenario A
	resp, err := s.service.CreateInvoice(s.GetContext(), invoiceRequest("INV-001", "Jane Client", "500", "0", types.InvoiceStatusDraft))
	s.Require().NoError(err)

	s.NotEmpty(resp.ID)
	s.Equal(testutil.DefaultOwnerID, resp.OwnerID)
	s.Equal("INV-001", resp.Ref)
	s.Equal("Jane Client", resp.ClientName)
	s.True(decimal.NewFromInt(500).Equal(resp.Balance))
	s.Equal(types.InvoiceStatusDraft, resp.Status)
	s.Nil(resp.EventDate)
	s.Nil(resp.Notes)

	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(500).Equal(stored.Balance))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceDefaults() {
	req := dto.CreateInvoiceRequest{
		InvoiceFields: dto.InvoiceFields{
			Ref:        "  INV-002  ",
			ClientName: " Bob ",
			EventDate:  "2024-09-14",
			Total:      dto.ParseAmount("not a number"),
			Deposit:    dto.ParseAmount(""),
			Notes:      "   ",
		},
	}

	resp, err := s.service.CreateInvoice(s.GetContext(), req)
	s.Require().NoError(err)

	s.Equal("INV-002", resp.Ref)
	s.Equal("Bob", resp.ClientName)
	s.True(resp.Total.IsZero())
	s.True(resp.Deposit.IsZero())
	s.True(resp.Balance.IsZero())
	s.Equal(types.InvoiceStatusDraft, resp.Status)
	s.Require().NotNil(resp.EventDate)
	s.Equal("2024-09-14", resp.EventDate.String())
	s.Nil(resp.Notes)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceBalanceIsTotalMinusDeposit() {
	resp, err := s.service.CreateInvoice(s.GetContext(), invoiceRequest("INV-003", "Client", "1000.10", "200.05", types.InvoiceStatusBooked))
	s.Require().NoError(err)
	s.Equal("800.05", resp.Balance.StringFixed(2))
	s.Equal(types.InvoiceStatusBooked, resp.Status)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceValidation() {
	tests := []struct {
		name string
		req  dto.CreateInvoiceRequest
	}{
		{name: "missing ref", req: invoiceRequest("", "Client", "10", "0", "")},
		{name: "blank ref", req: invoiceRequest("   ", "Client", "10", "0", "")},
		{name: "missing client", req: invoiceRequest("INV-1", "", "10", "0", "")},
		{name: "unknown status", req: invoiceRequest("INV-1", "Client", "10", "0", "Overdue")},
		{
			name: "bad event date",
			req: dto.CreateInvoiceRequest{InvoiceFields: dto.InvoiceFields{
				Ref: "INV-1", ClientName: "Client", EventDate: "14/09/2024",
			}},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.CreateInvoice(s.GetContext(), tt.req)
			s.Error(err)
			s.True(ierr.IsValidation(err), "expected validation error, got %v", err)
		})
	}

	count, err := s.GetStores().InvoiceRepo.Count(s.GetContext(), types.NewNoLimitInvoiceFilter())
	s.NoError(err)
	s.Zero(count)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceRequiresPrincipal() {
	_, err := s.service.CreateInvoice(testutil.ContextForOwner("", ""), invoiceRequest("INV-1", "Client", "10", "0", ""))
	s.Error(err)
	s.True(ierr.IsUnauthenticated(err))
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceRecomputesAgainstCurrentPayments() {
	ctx := s.GetContext()
	inv, err := s.service.CreateInvoice(ctx, invoiceRequest("INV-010", "Client", "1000", "0", types.InvoiceStatusBooked))
	s.Require().NoError(err)

	_, err = s.paymentService.AddPayment(ctx, inv.ID, dto.AddPaymentRequest{Amount: dto.ParseAmount("300")})
	s.Require().NoError(err)

	update := dto.UpdateInvoiceRequest{InvoiceFields: dto.InvoiceFields{
		Ref:        "INV-010",
		ClientName: "Client Renamed",
		Total:      dto.ParseAmount("1200"),
		Deposit:    dto.ParseAmount("100"),
		Status:     types.InvoiceStatusBooked,
		Notes:      "bigger venue",
	}}

	resp, err := s.service.UpdateInvoice(ctx, inv.ID, update)
	s.Require().NoError(err)

	// 1200 - 100 - 300
	s.Equal("800.00", resp.Balance.StringFixed(2))
	// the submitted status is kept even though a payment exists
	s.Equal(types.InvoiceStatusBooked, resp.Status)
	s.Equal("Client Renamed", resp.ClientName)
	s.Equal("bigger venue", resp.GetNotes())

	stored, err := s.GetStores().InvoiceRepo.Get(ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal("800.00", stored.Balance.StringFixed(2))
	s.Equal(types.InvoiceStatusBooked, stored.Status)
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceKeepsSubmittedStatus() {
	ctx := s.GetContext()
	inv, err := s.service.CreateInvoice(ctx, invoiceRequest("INV-011", "Client", "100", "0", ""))
	s.Require().NoError(err)

	// Paid with a positive balance is allowed on the edit path
	resp, err := s.service.UpdateInvoice(ctx, inv.ID, dto.UpdateInvoiceRequest{InvoiceFields: dto.InvoiceFields{
		Ref: "INV-011", ClientName: "Client", Total: dto.ParseAmount("100"), Status: types.InvoiceStatusPaid,
	}})
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusPaid, resp.Status)
	s.Equal("100.00", resp.Balance.StringFixed(2))
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceValidation() {
	ctx := s.GetContext()
	inv, err := s.service.CreateInvoice(ctx, invoiceRequest("INV-012", "Client", "100", "0", ""))
	s.Require().NoError(err)

	_, err = s.service.UpdateInvoice(ctx, inv.ID, dto.UpdateInvoiceRequest{InvoiceFields: dto.InvoiceFields{
		Ref: "", ClientName: "Client", Total: dto.ParseAmount("999"),
	}})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	stored, err := s.GetStores().InvoiceRepo.Get(ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal("INV-012", stored.Ref)
	s.Equal("100.00", stored.Total.StringFixed(2))
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceNotFound() {
	_, err := s.service.UpdateInvoice(s.GetContext(), "inv_missing", dto.UpdateInvoiceRequest{InvoiceFields: dto.InvoiceFields{
		Ref: "X", ClientName: "Y",
	}})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestOwnerIsolation() {
	inv, err := s.service.CreateInvoice(s.GetContext(), invoiceRequest("INV-020", "Client", "500", "0", ""))
	s.Require().NoError(err)

	other := s.GetOtherOwnerContext()

	_, err = s.service.GetInvoice(other, inv.ID)
	s.True(ierr.IsNotFound(err))
	_, missingErr := s.service.GetInvoice(other, "inv_does_not_exist")
	s.True(ierr.IsNotFound(missingErr))
	s.Equal(ierr.HTTPStatusFromErr(missingErr), ierr.HTTPStatusFromErr(err))

	_, err = s.service.GetInvoiceDetail(other, inv.ID)
	s.True(ierr.IsNotFound(err))

	_, err = s.service.UpdateInvoice(other, inv.ID, dto.UpdateInvoiceRequest{InvoiceFields: dto.InvoiceFields{
		Ref: "HIJACK", ClientName: "Mallory", Total: dto.ParseAmount("1"),
	}})
	s.True(ierr.IsNotFound(err))

	_, err = s.paymentService.AddPayment(other, inv.ID, dto.AddPaymentRequest{Amount: dto.ParseAmount("500")})
	s.True(ierr.IsNotFound(err))

	_, err = s.paymentService.ListPayments(other, inv.ID)
	s.True(ierr.IsNotFound(err))

	list, err := s.service.ListInvoices(other, nil)
	s.Require().NoError(err)
	s.Empty(list.Items)
	s.Zero(list.Pagination.Total)

	// the owner's invoice is untouched
	stored, err := s.service.GetInvoice(s.GetContext(), inv.ID)
	s.Require().NoError(err)
	s.Equal("INV-020", stored.Ref)
	s.Equal("500.00", stored.Balance.StringFixed(2))
	s.Equal(types.InvoiceStatusDraft, stored.Status)
	s.Zero(s.GetPaymentStore().Len())
}

func (s *InvoiceServiceSuite) TestListInvoicesNewestFirst() {
	ctx := s.GetContext()
	var ids []string
	for _, ref := range []string{"A", "B", "C"} {
		inv, err := s.service.CreateInvoice(ctx, invoiceRequest(ref, "Client", "10", "0", ""))
		s.Require().NoError(err)
		ids = append(ids, inv.ID)
	}
	_, err := s.service.CreateInvoice(s.GetOtherOwnerContext(), invoiceRequest("Z", "Other", "10", "0", ""))
	s.Require().NoError(err)

	resp, err := s.service.ListInvoices(ctx, types.NewInvoiceFilter())
	s.Require().NoError(err)
	s.Equal(3, resp.Pagination.Total)
	s.Equal([]string{ids[2], ids[1], ids[0]}, lo.Map(resp.Items, func(i *dto.InvoiceResponse, _ int) string { return i.ID }))

	filter := types.NewInvoiceFilter()
	filter.Limit = lo.ToPtr(2)
	filter.Offset = lo.ToPtr(2)
	page, err := s.service.ListInvoices(ctx, filter)
	s.Require().NoError(err)
	s.Len(page.Items, 1)
	s.Equal(ids[0], page.Items[0].ID)
	s.Equal(3, page.Pagination.Total)
	s.Equal(2, page.Pagination.Limit)
	s.Equal(2, page.Pagination.Offset)
}

func (s *InvoiceServiceSuite) TestListInvoicesByStatus() {
	ctx := s.GetContext()
	_, err := s.service.CreateInvoice(ctx, invoiceRequest("A", "Client", "10", "0", types.InvoiceStatusDraft))
	s.Require().NoError(err)
	_, err = s.service.CreateInvoice(ctx, invoiceRequest("B", "Client", "10", "0", types.InvoiceStatusCancelled))
	s.Require().NoError(err)

	filter := types.NewInvoiceFilter()
	filter.Statuses = []types.InvoiceStatus{types.InvoiceStatusCancelled}
	resp, err := s.service.ListInvoices(ctx, filter)
	s.Require().NoError(err)
	s.Require().Len(resp.Items, 1)
	s.Equal("B", resp.Items[0].Ref)

	filter.Statuses = []types.InvoiceStatus{"Unknown"}
	_, err = s.service.ListInvoices(ctx, filter)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestGetInvoiceDetail() {
	ctx := s.GetContext()
	inv, err := s.service.CreateInvoice(ctx, invoiceRequest("INV-030", "Client", "300", "50", types.InvoiceStatusBooked))
	s.Require().NoError(err)

	first, err := s.paymentService.AddPayment(ctx, inv.ID, dto.AddPaymentRequest{Amount: dto.ParseAmount("25.50"), Method: "Cash"})
	s.Require().NoError(err)
	second, err := s.paymentService.AddPayment(ctx, inv.ID, dto.AddPaymentRequest{Amount: dto.ParseAmount("74.50"), PaidAt: "2024-05-01"})
	s.Require().NoError(err)

	detail, err := s.service.GetInvoiceDetail(ctx, inv.ID)
	s.Require().NoError(err)

	s.Equal(inv.ID, detail.Invoice.ID)
	s.Equal(2, detail.PaymentCount)
	s.Equal("100.00", detail.PaymentsTotal.StringFixed(2))
	s.Equal("150.00", detail.Invoice.Balance.StringFixed(2))
	s.Require().Len(detail.Payments, 2)
	// newest first
	s.Equal(second.Payment.ID, detail.Payments[0].ID)
	s.Equal(first.Payment.ID, detail.Payments[1].ID)
}

func (s *InvoiceServiceSuite) TestGetInvoiceDetailNotFound() {
	_, err := s.service.GetInvoiceDetail(s.GetContext(), "inv_missing")
	s.True(ierr.IsNotFound(err))

	_, err = s.service.GetInvoice(s.GetContext(), "")
	s.True(ierr.IsValidation(err))
}
