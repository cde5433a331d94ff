package tax

import (
	"context"

	"github.com/shopspring/decimal"
)

// Calculator defines the interface for tax calculation.
// Implementations: PercentageCalculator, NoTaxCalculator
type Calculator interface {
	// CalculateTax computes tax for the merchandise in params.
	// Returns the tax amount rounded to cents.
	CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error)
}

// TaxParams contains all information needed for tax calculation.
type TaxParams struct {
	LineItems []LineItem
}

// Subtotal sums the line totals.
func (p TaxParams) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range p.LineItems {
		sum = sum.Add(li.TotalPrice)
	}
	return sum
}

// LineItem represents a single item being taxed.
type LineItem struct {
	ProductID   int
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// TaxResult contains the calculated tax amount and breakdown.
type TaxResult struct {
	TotalTax  decimal.Decimal
	Breakdown []TaxBreakdown
}

// TaxBreakdown represents tax for a single jurisdiction.
type TaxBreakdown struct {
	Jurisdiction string          // "state", "county", "city"
	Name         string          // e.g., "Default Sales Tax"
	Rate         decimal.Decimal // e.g., 0.08 for 8%
	Amount       decimal.Decimal
}
