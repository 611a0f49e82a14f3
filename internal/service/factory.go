package service

import (
	"github.com/mkrhub/controlhub/internal/auth"
	"github.com/mkrhub/controlhub/internal/config"
	"github.com/mkrhub/controlhub/internal/domain/invoice"
	"github.com/mkrhub/controlhub/internal/domain/payment"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/pdf"
	"github.com/mkrhub/controlhub/internal/postgres"
	"github.com/mkrhub/controlhub/internal/pyroscope"
	"github.com/mkrhub/controlhub/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger        *logger.Logger
	Config        *config.Configuration
	DB            postgres.IClient
	PDFGenerator  pdf.Generator
	PrintRenderer pdf.PrintRenderer
	Principals    *auth.PrincipalResolver
	Sentry        *sentry.Service
	Pyroscope     *pyroscope.Service

	// Repositories
	InvoiceRepo invoice.Repository
	PaymentRepo payment.Repository
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	pdfGenerator pdf.Generator,
	printRenderer pdf.PrintRenderer,
	principals *auth.PrincipalResolver,
	sentryService *sentry.Service,
	pyroscopeService *pyroscope.Service,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:        logger,
		Config:        config,
		DB:            db,
		PDFGenerator:  pdfGenerator,
		PrintRenderer: printRenderer,
		Principals:    principals,
		Sentry:        sentryService,
		Pyroscope:     pyroscopeService,
		InvoiceRepo:   invoiceRepo,
		PaymentRepo:   paymentRepo,
	}
}
