package domain

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

// RoundCents rounds an amount to two decimal places, half away from zero.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatUSD renders an amount as "$12.50".
func FormatUSD(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// MustDecimal parses s or panics. Intended for constants and test fixtures.
func MustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// NewOrderNumber returns an order identifier of the form ORD-123456.
func NewOrderNumber() string {
	return fmt.Sprintf("ORD-%d", 100000+rand.IntN(900000))
}
