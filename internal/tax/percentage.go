package tax

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultRate is the storefront's flat sales tax rate (8%).
var DefaultRate = decimal.RequireFromString("0.08")

// PercentageCalculator calculates tax using a simple percentage rate.
type PercentageCalculator struct {
	rate decimal.Decimal
}

// NewPercentageCalculator creates a new percentage-based tax calculator.
func NewPercentageCalculator(rate decimal.Decimal) Calculator {
	return &PercentageCalculator{rate: rate}
}

// CalculateTax computes tax on the merchandise subtotal using the configured rate.
// Shipping is not taxed.
func (c *PercentageCalculator) CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error) {
	if c.rate.IsNegative() || c.rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, ErrInvalidTaxRate
	}

	amount := params.Subtotal().Mul(c.rate).Round(2)

	return &TaxResult{
		TotalTax: amount,
		Breakdown: []TaxBreakdown{
			{
				Jurisdiction: "state",
				Name:         "Default Sales Tax",
				Rate:         c.rate,
				Amount:       amount,
			},
		},
	}, nil
}
