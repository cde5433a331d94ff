package shipping

import (
	"context"

	"github.com/shopspring/decimal"
)

// Defaults for the storefront's shipping policy.
var (
	DefaultFreeThreshold = decimal.RequireFromString("100")
	DefaultFlatFee       = decimal.RequireFromString("9.99")
)

// FlatRateProvider charges a flat fee unless the subtotal reaches the
// free-shipping threshold (inclusive).
type FlatRateProvider struct {
	rate FlatRate
}

// FlatRate defines the flat-rate shipping option.
type FlatRate struct {
	ServiceName   string
	ServiceCode   string
	Fee           decimal.Decimal
	FreeThreshold decimal.Decimal
	DaysMin       int
	DaysMax       int
}

// DefaultFlatRate is free over $100, else $9.99.
func DefaultFlatRate() FlatRate {
	return FlatRate{
		ServiceName:   "Standard Shipping",
		ServiceCode:   "STD",
		Fee:           DefaultFlatFee,
		FreeThreshold: DefaultFreeThreshold,
		DaysMin:       3,
		DaysMax:       5,
	}
}

// NewFlatRateProvider creates a new flat-rate shipping provider.
func NewFlatRateProvider(rate FlatRate) Provider {
	return &FlatRateProvider{rate: rate}
}

// Quote returns zero cost when the subtotal is at or above the threshold.
func (p *FlatRateProvider) Quote(ctx context.Context, params QuoteParams) (*Quote, error) {
	if params.Subtotal.IsNegative() {
		return nil, ErrNegativeSubtotal
	}
	if p.rate.Fee.IsNegative() || p.rate.FreeThreshold.IsNegative() {
		return nil, ErrInvalidRate
	}

	q := &Quote{
		ServiceName: p.rate.ServiceName,
		ServiceCode: p.rate.ServiceCode,
		Cost:        p.rate.Fee,
		DaysMin:     p.rate.DaysMin,
		DaysMax:     p.rate.DaysMax,
	}
	if params.Subtotal.GreaterThanOrEqual(p.rate.FreeThreshold) {
		q.Cost = decimal.Zero
		q.Free = true
	}
	return q, nil
}
