package pdf

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type PrintRendererSuite struct {
	suite.Suite
	renderer PrintRenderer
}

func TestPrintRenderer(t *testing.T) {
	suite.Run(t, new(PrintRendererSuite))
}

func (s *PrintRendererSuite) SetupTest() {
	s.renderer = NewPrintRenderer()
}

func (s *PrintRendererSuite) TestRenderInvoiceHTML() {
	html, err := s.renderer.RenderInvoiceHTML(context.Background(), sampleInvoiceData())
	s.Require().NoError(err)

	s.Contains(html, "<h1>MKR Events</h1>")
	s.Contains(html, "Invoice Ref: INV-001")
	s.Contains(html, "Client: Jane Client")
	s.Contains(html, "Event Date: 2024-06-01")
	s.Contains(html, "Status: Deposit Paid")
	s.Contains(html, "Total: £500.00")
	s.Contains(html, "Deposit: £100.00")
	s.Contains(html, "Payments: £150.00")
	s.Contains(html, "Balance Due: £250.00")
	s.Contains(html, "Total payments")
	s.Contains(html, "Generated by MKR Events")

	// payments keep the order they were given in
	first := strings.Index(html, "£50.00")
	second := strings.Index(html, "£100.00</td>")
	s.Greater(first, 0)
	s.Greater(second, first)
}

func (s *PrintRendererSuite) TestRenderInvoiceHTML_NoPayments() {
	data := sampleInvoiceData()
	data.Payments = nil
	data.Notes = ""

	html, err := s.renderer.RenderInvoiceHTML(context.Background(), data)
	s.Require().NoError(err)
	s.Contains(html, "No payments recorded.")
	s.NotContains(html, "Total payments")
	s.NotContains(html, "<h2>Notes</h2>")
}

func (s *PrintRendererSuite) TestRenderInvoiceHTML_EscapesUserInput() {
	data := sampleInvoiceData()
	data.ClientName = "<script>alert(1)</script>"

	html, err := s.renderer.RenderInvoiceHTML(context.Background(), data)
	s.Require().NoError(err)
	s.NotContains(html, "<script>alert(1)</script>")
	s.Contains(html, "&lt;script&gt;")
}

func (s *PrintRendererSuite) TestRenderInvoiceHTML_CurrencySymbol() {
	data := sampleInvoiceData()
	data.CurrencySymbol = "$"

	html, err := s.renderer.RenderInvoiceHTML(context.Background(), data)
	s.Require().NoError(err)
	s.Contains(html, "Balance Due: $250.00")
}
