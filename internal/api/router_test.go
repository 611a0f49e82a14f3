package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkrhub/controlhub/internal/api"
	v1 "github.com/mkrhub/controlhub/internal/api/v1"
	"github.com/mkrhub/controlhub/internal/auth"
	"github.com/mkrhub/controlhub/internal/service"
	"github.com/mkrhub/controlhub/internal/testutil"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

type invoiceBody struct {
	ID      string `json:"id"`
	Ref     string `json:"ref"`
	Total   string `json:"total"`
	Deposit string `json:"deposit"`
	Balance string `json:"balance"`
	Status  string `json:"status"`
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	gin.SetMode(gin.TestMode)

	cfg := s.GetConfig()
	log := s.GetLogger()
	params := service.NewServiceParams(
		log,
		cfg,
		s.GetDB(),
		s.GetPDFGenerator(),
		s.GetPrintRenderer(),
		s.GetPrincipals(),
		nil,
		nil,
		s.GetStores().InvoiceRepo,
		s.GetStores().PaymentRepo,
	)

	handlers := api.Handlers{
		Health:    v1.NewHealthHandler(log),
		Auth:      v1.NewAuthHandler(cfg, service.NewAuthService(params), log),
		Invoice:   v1.NewInvoiceHandler(service.NewInvoiceService(params), log),
		Payment:   v1.NewPaymentHandler(service.NewPaymentService(params), log),
		Document:  v1.NewDocumentHandler(service.NewDocumentService(params), log),
		Dashboard: v1.NewDashboardHandler(service.NewDashboardService(params), log),
	}
	s.router = api.NewRouter(handlers, cfg, log, nil, s.GetPrincipals())
}

func (s *RouterSuite) tokenFor(ownerID, email string) string {
	token, _, err := auth.GenerateToken(s.GetConfig().Auth.Secret, ownerID, email, time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *RouterSuite) request(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(types.HeaderAuthorization, "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) createInvoice(token string, body map[string]any) invoiceBody {
	w := s.request(http.MethodPost, "/v1/invoices", token, body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var inv invoiceBody
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &inv))
	return inv
}

func (s *RouterSuite) TestHealth() {
	w := s.request(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok"}`, w.Body.String())
}

func (s *RouterSuite) TestProtectedRoutesRequireAuthentication() {
	for _, path := range []string{"/v1/me", "/v1/dashboard", "/v1/invoices", "/v1/invoices/inv_x/pdf", "/v1/invoices/inv_x/print"} {
		w := s.request(http.MethodGet, path, "", nil)
		s.Equal(http.StatusUnauthorized, w.Code, path)
	}
	s.Zero(s.GetInvoiceStore().Len())
}

func (s *RouterSuite) TestInvoiceAndPaymentFlow() {
	token := s.tokenFor(testutil.DefaultOwnerID, testutil.DefaultEmail)

	inv := s.createInvoice(token, map[string]any{
		"ref":         "INV-100",
		"client_name": "Alice",
		"total":       "500",
		"deposit":     100,
	})
	s.Equal("400", inv.Balance)
	s.Equal(string(types.InvoiceStatusDraft), inv.Status)

	w := s.request(http.MethodPost, "/v1/invoices/"+inv.ID+"/payments", token, map[string]any{
		"amount":  "150",
		"paid_at": "2026-05-01",
		"method":  "Bank transfer",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var added struct {
		Invoice invoiceBody `json:"invoice"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &added))
	s.Equal("250", added.Invoice.Balance)
	s.Equal(string(types.InvoiceStatusDepositPaid), added.Invoice.Status)

	w = s.request(http.MethodGet, "/v1/invoices/"+inv.ID+"/payments", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var payments struct {
		Items []map[string]any `json:"items"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &payments))
	s.Len(payments.Items, 1)

	w = s.request(http.MethodPut, "/v1/invoices/"+inv.ID, token, map[string]any{
		"ref":         "INV-100",
		"client_name": "Alice",
		"total":       "600",
		"deposit":     "100",
		"status":      "Booked",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated invoiceBody
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	s.Equal("350", updated.Balance)
	s.Equal(string(types.InvoiceStatusBooked), updated.Status)
}

func (s *RouterSuite) TestAddPaymentRejectsNonPositiveAmount() {
	token := s.tokenFor(testutil.DefaultOwnerID, testutil.DefaultEmail)
	inv := s.createInvoice(token, map[string]any{"ref": "INV-1", "client_name": "Bob", "total": "100"})

	w := s.request(http.MethodPost, "/v1/invoices/"+inv.ID+"/payments", token, map[string]any{"amount": "0"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "Amount must be greater than 0")
	s.Zero(s.GetPaymentStore().Len())
}

func (s *RouterSuite) TestMoneyOutOfRangeIsBadRequest() {
	token := s.tokenFor(testutil.DefaultOwnerID, testutil.DefaultEmail)
	inv := s.createInvoice(token, map[string]any{"ref": "INV-1", "client_name": "Bob", "total": "100"})

	w := s.request(http.MethodPost, "/v1/invoices/"+inv.ID+"/payments", token, map[string]any{"amount": "1e400000000"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Zero(s.GetPaymentStore().Len())

	w = s.request(http.MethodPost, "/v1/invoices", token, map[string]any{"ref": "INV-2", "client_name": "Bob", "total": "1e13"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.request(http.MethodPut, "/v1/invoices/"+inv.ID, token, map[string]any{"ref": "INV-1", "client_name": "Bob", "deposit": "-1e13"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(1, s.GetInvoiceStore().Len())
}

func (s *RouterSuite) TestCreateInvoiceValidation() {
	token := s.tokenFor(testutil.DefaultOwnerID, testutil.DefaultEmail)

	w := s.request(http.MethodPost, "/v1/invoices", token, map[string]any{"ref": "  ", "client_name": "Bob"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.request(http.MethodPost, "/v1/invoices", token, map[string]any{"ref": "INV-2", "client_name": "Bob", "status": "Archived"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Zero(s.GetInvoiceStore().Len())
}

func (s *RouterSuite) TestOtherOwnerGetsNotFound() {
	token := s.tokenFor(testutil.DefaultOwnerID, testutil.DefaultEmail)
	inv := s.createInvoice(token, map[string]any{"ref": "INV-3", "client_name": "Carol", "total": "50"})

	other := s.tokenFor(testutil.OtherOwnerID, testutil.OtherEmail)
	for _, path := range []string{"/v1/invoices/" + inv.ID, "/v1/invoices/" + inv.ID + "/payments", "/v1/invoices/" + inv.ID + "/pdf"} {
		w := s.request(http.MethodGet, path, other, nil)
		s.Equal(http.StatusNotFound, w.Code, path)
	}

	w := s.request(http.MethodPost, "/v1/invoices/"+inv.ID+"/payments", other, map[string]any{"amount": "10"})
	s.Equal(http.StatusNotFound, w.Code)
	s.Zero(s.GetPaymentStore().Len())

	w = s.request(http.MethodGet, "/v1/invoices", other, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		Items []invoiceBody `json:"items"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &list))
	s.Empty(list.Items)
}

func (s *RouterSuite) TestInvoicePDFHeaders() {
	token := s.tokenFor(testutil.DefaultOwnerID, testutil.DefaultEmail)
	inv := s.createInvoice(token, map[string]any{"ref": "INV 7/\"x\"", "client_name": "Dan", "total": "80"})

	s.GetPDFGenerator().On("RenderInvoicePdf", mock.Anything, mock.Anything).Return([]byte("%PDF-1.4 test"), nil).Once()

	w := s.request(http.MethodGet, "/v1/invoices/"+inv.ID+"/pdf", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("application/pdf", w.Header().Get("Content-Type"))
	s.Equal(`attachment; filename="invoice-INV_7__x_.pdf"`, w.Header().Get("Content-Disposition"))
	s.Equal("no-store", w.Header().Get("Cache-Control"))
	s.Equal("%PDF-1.4 test", w.Body.String())
	s.GetPDFGenerator().AssertExpectations(s.T())
}

func (s *RouterSuite) TestInvoicePrintView() {
	token := s.tokenFor(testutil.DefaultOwnerID, testutil.DefaultEmail)
	inv := s.createInvoice(token, map[string]any{"ref": "INV-8", "client_name": "Eve", "total": "80"})

	w := s.request(http.MethodGet, "/v1/invoices/"+inv.ID+"/print", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Type"), "text/html")
	s.Contains(w.Body.String(), "INV-8")
	s.Contains(w.Body.String(), "MKR Events")
}

func (s *RouterSuite) TestMeAndDashboard() {
	token := s.tokenFor(testutil.DefaultOwnerID, testutil.DefaultEmail)
	s.createInvoice(token, map[string]any{"ref": "INV-9", "client_name": "Fay", "total": "80", "deposit": "20"})

	w := s.request(http.MethodGet, "/v1/me", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), testutil.DefaultEmail)

	w = s.request(http.MethodGet, "/v1/dashboard", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var dash struct {
		InvoiceCount int    `json:"invoice_count"`
		Outstanding  string `json:"outstanding"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &dash))
	s.Equal(1, dash.InvoiceCount)
	s.Equal("60", dash.Outstanding)
}

func (s *RouterSuite) TestLogoutClearsCookie() {
	w := s.request(http.MethodPost, "/v1/auth/logout", s.tokenFor(testutil.DefaultOwnerID, testutil.DefaultEmail), nil)
	s.Require().Equal(http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal(s.GetConfig().Auth.CookieName, cookies[0].Name)
	s.Empty(cookies[0].Value)
	s.True(cookies[0].MaxAge < 0)
}
