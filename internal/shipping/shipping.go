package shipping

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider defines the interface for shipping cost quotes.
// Implementations can integrate with carriers; the storefront ships a
// flat-rate policy with a free-shipping threshold.
type Provider interface {
	// Quote returns the shipping cost for a cart.
	Quote(ctx context.Context, params QuoteParams) (*Quote, error)
}

// QuoteParams contains parameters for calculating shipping cost.
type QuoteParams struct {
	Subtotal  decimal.Decimal
	ItemCount int
}

// Quote is a priced shipping option.
type Quote struct {
	ServiceName string
	ServiceCode string
	Cost        decimal.Decimal
	Free        bool
	DaysMin     int
	DaysMax     int
}
