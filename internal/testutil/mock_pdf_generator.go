package testutil

import (
	"context"

	domain "github.com/mkrhub/controlhub/internal/domain/pdf"
	"github.com/mkrhub/controlhub/internal/pdf"
	"github.com/stretchr/testify/mock"
)

var _ pdf.Generator = (*MockPDFGenerator)(nil)

type MockPDFGenerator struct {
	mock.Mock
}

// RenderInvoicePdf implements pdf.Generator.
func (m *MockPDFGenerator) RenderInvoicePdf(ctx context.Context, data *domain.InvoiceData) ([]byte, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPDFGenerator) Name() string {
	return "mock"
}

func NewMockPDFGenerator() *MockPDFGenerator {
	return &MockPDFGenerator{}
}
