package dto

import (
	"bytes"
	"strings"

	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/shopspring/decimal"
)

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// Amount is a lenient money input. It accepts a JSON number or a numeric
// string; blank, null or unparseable input reads as zero. Values are rounded
// to two decimal places. Input outside the storable range is kept as zero and
// reported by Validate.
type Amount struct {
	decimal.Decimal
	outOfRange bool
}

const (
	// amountMaxIntDigits matches the NUMERIC(14,2) money columns
	amountMaxIntDigits = 12
	// amountMaxScale bounds the digits after the point accepted before rounding
	amountMaxScale = 18
)

var amountLimit = decimal.New(1, amountMaxIntDigits)

// NewAmount wraps d rounded to two decimal places
func NewAmount(d decimal.Decimal) Amount {
	if d.IsZero() {
		return Amount{Decimal: decimal.Zero}
	}
	if !amountInRange(d) {
		return Amount{Decimal: decimal.Zero, outOfRange: true}
	}
	rounded := d.Round(2)
	if rounded.Abs().GreaterThanOrEqual(amountLimit) {
		return Amount{Decimal: decimal.Zero, outOfRange: true}
	}
	return Amount{Decimal: rounded}
}

// amountInRange checks magnitude and scale from the exponent and digit
// count alone, so huge exponents are never expanded
func amountInRange(d decimal.Decimal) bool {
	exp := int64(d.Exponent())
	if exp < -amountMaxScale {
		return false
	}
	return int64(d.NumDigits())+exp <= amountMaxIntDigits
}

// OutOfRange reports input that could not be stored as money
func (a Amount) OutOfRange() bool {
	return a.outOfRange
}

// validateAmount returns a validation error for an out of range field
func validateAmount(field string, a Amount) error {
	if !a.outOfRange {
		return nil
	}
	return ierr.NewError("amount out of range").
		WithHint("Amounts must be below 1,000,000,000,000 with at most 18 decimal places").
		WithReportableDetails(map[string]any{
			"field": field,
		}).
		Mark(ierr.ErrValidation)
}

// ParseAmount reads s the same way UnmarshalJSON does
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{Decimal: decimal.Zero}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{Decimal: decimal.Zero}
	}
	return NewAmount(d)
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	*a = ParseAmount(strings.Trim(string(b), `"`))
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return a.Decimal.MarshalJSON()
}

// optionalString trims s and returns nil when nothing is left
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
