package service

import (
	"errors"
	"testing"

	"github.com/mkrhub/controlhub/internal/api/dto"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/testutil"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service        PaymentService
	invoiceService InvoiceService
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewPaymentService(params)
	s.invoiceService = NewInvoiceService(params)
}

func (s *PaymentServiceSuite) createInvoice(total, deposit string, status types.InvoiceStatus) *dto.InvoiceResponse {
	inv, err := s.invoiceService.CreateInvoice(s.GetContext(), invoiceRequest("INV-"+s.GetUUID()[:6], "Client", total, deposit, status))
	s.Require().NoError(err)
	return inv
}

func (s *PaymentServiceSuite) pay(invoiceID, amount string) *dto.AddPaymentResponse {
	resp, err := s.service.AddPayment(s.GetContext(), invoiceID, dto.AddPaymentRequest{Amount: dto.ParseAmount(amount)})
	s.Require().NoError(err)
	return resp
}

func (s *PaymentServiceSuite) TestFullPaymentMarksPaid() {
	// Scenario B
	inv := s.createInvoice("500", "0", types.InvoiceStatusDraft)

	resp := s.pay(inv.ID, "500")

	s.Equal("0.00", resp.Invoice.Balance.StringFixed(2))
	s.Equal(types.InvoiceStatusPaid, resp.Invoice.Status)
	s.Equal(inv.ID, resp.Payment.InvoiceID)
	s.Equal(testutil.DefaultOwnerID, resp.Payment.OwnerID)

	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.Require().NoError(err)
	s.Equal("0.00", stored.Balance.StringFixed(2))
	s.Equal(types.InvoiceStatusPaid, stored.Status)
}

func (s *PaymentServiceSuite) TestPartialPaymentMarksDepositPaid() {
	// Scenario C
	inv := s.createInvoice("1000", "200", types.InvoiceStatusBooked)

	resp := s.pay(inv.ID, "300")

	s.Equal("500.00", resp.Invoice.Balance.StringFixed(2))
	s.Equal(types.InvoiceStatusDepositPaid, resp.Invoice.Status)
}

func (s *PaymentServiceSuite) TestCancelledStaysCancelled() {
	// Scenario D
	inv := s.createInvoice("1000", "0", types.InvoiceStatusCancelled)

	resp := s.pay(inv.ID, "1000")

	s.Equal("0.00", resp.Invoice.Balance.StringFixed(2))
	s.Equal(types.InvoiceStatusCancelled, resp.Invoice.Status)
}

func (s *PaymentServiceSuite) TestNonPositiveAmountRejected() {
	// Scenario E
	inv := s.createInvoice("500", "0", types.InvoiceStatusDraft)

	for _, amount := range []string{"0", "-5", "", "abc", "0.001"} {
		s.Run(amount, func() {
			_, err := s.service.AddPayment(s.GetContext(), inv.ID, dto.AddPaymentRequest{Amount: dto.ParseAmount(amount)})
			s.Error(err)
			s.True(ierr.IsValidation(err), "expected validation error, got %v", err)
		})
	}

	s.Zero(s.GetPaymentStore().Len())
	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.Require().NoError(err)
	s.Equal("500.00", stored.Balance.StringFixed(2))
	s.Equal(types.InvoiceStatusDraft, stored.Status)
	s.Equal(inv.UpdatedAt, stored.UpdatedAt)
}

func (s *PaymentServiceSuite) TestBadPaidAtRejected() {
	inv := s.createInvoice("500", "0", types.InvoiceStatusDraft)

	_, err := s.service.AddPayment(s.GetContext(), inv.ID, dto.AddPaymentRequest{
		Amount: dto.ParseAmount("10"),
		PaidAt: "yesterday",
	})
	s.True(ierr.IsValidation(err))
	s.Zero(s.GetPaymentStore().Len())
}

func (s *PaymentServiceSuite) TestDraftWithoutDepositBecomesDepositPaidOnFirstPayment() {
	inv := s.createInvoice("500", "0", types.InvoiceStatusDraft)

	resp := s.pay(inv.ID, "100")

	// any payment outranks Draft -> Booked
	s.Equal(types.InvoiceStatusDepositPaid, resp.Invoice.Status)
	s.Equal("400.00", resp.Invoice.Balance.StringFixed(2))
}

func (s *PaymentServiceSuite) TestOverpaymentIsPaidWithNegativeBalance() {
	inv := s.createInvoice("100", "0", types.InvoiceStatusBooked)

	resp := s.pay(inv.ID, "150")

	s.Equal("-50.00", resp.Invoice.Balance.StringFixed(2))
	s.Equal(types.InvoiceStatusPaid, resp.Invoice.Status)
}

func (s *PaymentServiceSuite) TestBalanceUsesFullPaymentSet() {
	inv := s.createInvoice("100", "0", types.InvoiceStatusBooked)

	for i := 0; i < 9; i++ {
		resp := s.pay(inv.ID, "10.01")
		s.NotEqual(types.InvoiceStatusPaid, resp.Invoice.Status)
	}
	resp := s.pay(inv.ID, "9.91")

	s.Equal("0.00", resp.Invoice.Balance.StringFixed(2))
	s.Equal(types.InvoiceStatusPaid, resp.Invoice.Status)

	// an edit recomputes from the persisted set, not from the old balance
	edited, err := s.invoiceService.UpdateInvoice(s.GetContext(), inv.ID, dto.UpdateInvoiceRequest{InvoiceFields: dto.InvoiceFields{
		Ref: inv.Ref, ClientName: inv.ClientName, Total: dto.ParseAmount("150"), Status: types.InvoiceStatusDepositPaid,
	}})
	s.Require().NoError(err)
	s.Equal("50.00", edited.Balance.StringFixed(2))
}

func (s *PaymentServiceSuite) TestAddPaymentInvoiceNotFound() {
	_, err := s.service.AddPayment(s.GetContext(), "inv_missing", dto.AddPaymentRequest{Amount: dto.ParseAmount("10")})
	s.True(ierr.IsNotFound(err))
	s.Zero(s.GetPaymentStore().Len())
}

func (s *PaymentServiceSuite) TestFailedReconciliationRollsBackPayment() {
	inv := s.createInvoice("500", "0", types.InvoiceStatusDraft)

	dbErr := ierr.WithError(errors.New("connection reset")).
		WithHint("Something went wrong while saving your changes, please try again").
		Mark(ierr.ErrDatabase)
	s.GetInvoiceStore().FailNextReconciliation(dbErr)

	_, err := s.service.AddPayment(s.GetContext(), inv.ID, dto.AddPaymentRequest{Amount: dto.ParseAmount("100")})
	s.Error(err)
	s.True(ierr.IsDatabase(err))

	s.Zero(s.GetPaymentStore().Len())
	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.Require().NoError(err)
	s.Equal("500.00", stored.Balance.StringFixed(2))
	s.Equal(types.InvoiceStatusDraft, stored.Status)
}

func (s *PaymentServiceSuite) TestPaymentFieldsAreStored() {
	inv := s.createInvoice("500", "0", types.InvoiceStatusDraft)

	resp, err := s.service.AddPayment(s.GetContext(), inv.ID, dto.AddPaymentRequest{
		Amount: dto.ParseAmount("120.456"),
		PaidAt: "2024-05-01",
		Method: " Bank transfer ",
		Notes:  "first half",
	})
	s.Require().NoError(err)

	s.Equal("120.46", resp.Payment.Amount.StringFixed(2))
	s.Require().NotNil(resp.Payment.PaidAt)
	s.Equal("2024-05-01", resp.Payment.PaidAt.String())
	s.Equal("Bank transfer", resp.Payment.GetMethod())
	s.Equal("first half", resp.Payment.GetNotes())
}

func (s *PaymentServiceSuite) TestListPaymentsOldestFirst() {
	inv := s.createInvoice("500", "0", types.InvoiceStatusDraft)
	first := s.pay(inv.ID, "10")
	second := s.pay(inv.ID, "20")
	third := s.pay(inv.ID, "30")

	other := s.createInvoice("50", "0", types.InvoiceStatusDraft)
	s.pay(other.ID, "5")

	resp, err := s.service.ListPayments(s.GetContext(), inv.ID)
	s.Require().NoError(err)
	s.Require().Len(resp.Items, 3)
	s.Equal(first.Payment.ID, resp.Items[0].ID)
	s.Equal(second.Payment.ID, resp.Items[1].ID)
	s.Equal(third.Payment.ID, resp.Items[2].ID)
	s.Equal(3, resp.Pagination.Total)
}
