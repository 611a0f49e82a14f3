package types

import (
	"github.com/shopspring/decimal"
)

// DEFAULT_CURRENCY_SYMBOL is used when the business config leaves the symbol blank
const DEFAULT_CURRENCY_SYMBOL = "£"

// FormatAmount renders an amount as symbol followed by exactly two decimals,
// e.g. "£1200.00". Negative amounts keep the sign after the symbol.
func FormatAmount(symbol string, amount decimal.Decimal) string {
	if symbol == "" {
		symbol = DEFAULT_CURRENCY_SYMBOL
	}
	return symbol + amount.StringFixed(2)
}
