package testutil

import (
	"context"
	"time"

	"github.com/mkrhub/controlhub/internal/auth"
	"github.com/mkrhub/controlhub/internal/cache"
	"github.com/mkrhub/controlhub/internal/config"
	"github.com/mkrhub/controlhub/internal/domain/invoice"
	"github.com/mkrhub/controlhub/internal/domain/payment"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/pdf"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/mkrhub/controlhub/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	InvoiceRepo invoice.Repository
	PaymentRepo payment.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx           context.Context
	stores        Stores
	db            *MockPostgresClient
	logger        *logger.Logger
	config        *config.Configuration
	now           time.Time
	pdfGenerator  *MockPDFGenerator
	printRenderer pdf.PrintRenderer
	principals    *auth.PrincipalResolver
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Business.Name = "MKR Events"
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	invoices := NewInMemoryInvoiceStore()
	payments := NewInMemoryPaymentStore(invoices)
	s.stores = Stores{
		InvoiceRepo: invoices,
		PaymentRepo: payments,
	}

	s.db = NewMockPostgresClient(s.logger, invoices, payments)
	s.pdfGenerator = NewMockPDFGenerator()
	s.printRenderer = pdf.NewPrintRenderer()
	s.principals = auth.NewPrincipalResolver(
		auth.NewJWTAuth(s.config),
		cache.NewInMemoryCache(s.config, s.logger),
		s.config,
		s.logger,
	)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context, signed in as DefaultOwnerID
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetOtherOwnerContext returns a context signed in as OtherOwnerID
func (s *BaseServiceTestSuite) GetOtherOwnerContext() context.Context {
	return ContextForOwner(OtherOwnerID, OtherEmail)
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetInvoiceStore returns the in-memory invoice store
func (s *BaseServiceTestSuite) GetInvoiceStore() *InMemoryInvoiceStore {
	return s.stores.InvoiceRepo.(*InMemoryInvoiceStore)
}

// GetPaymentStore returns the in-memory payment store
func (s *BaseServiceTestSuite) GetPaymentStore() *InMemoryPaymentStore {
	return s.stores.PaymentRepo.(*InMemoryPaymentStore)
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

// GetPDFGenerator returns the test PDF generator
func (s *BaseServiceTestSuite) GetPDFGenerator() *MockPDFGenerator {
	return s.pdfGenerator
}

// GetPrintRenderer returns the HTML print renderer
func (s *BaseServiceTestSuite) GetPrintRenderer() pdf.PrintRenderer {
	return s.printRenderer
}

// GetPrincipals returns a principal resolver backed by the jwt provider
func (s *BaseServiceTestSuite) GetPrincipals() *auth.PrincipalResolver {
	return s.principals
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
