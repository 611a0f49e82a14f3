package repository

import (
	"github.com/mkrhub/controlhub/internal/domain/invoice"
	"github.com/mkrhub/controlhub/internal/domain/payment"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/postgres"
	postgresRepo "github.com/mkrhub/controlhub/internal/repository/postgres"
)

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(db, logger)
}
