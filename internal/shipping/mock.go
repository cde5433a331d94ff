package shipping

import (
	"context"

	"github.com/shopspring/decimal"
)

// MockProvider is a test implementation of Provider.
type MockProvider struct {
	QuoteFunc func(ctx context.Context, params QuoteParams) (*Quote, error)
}

// NewMockProvider creates a new mock shipping provider for testing.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Quote delegates to the configured function or returns free shipping.
func (m *MockProvider) Quote(ctx context.Context, params QuoteParams) (*Quote, error) {
	if m.QuoteFunc != nil {
		return m.QuoteFunc(ctx, params)
	}
	return &Quote{ServiceName: "Mock", ServiceCode: "MOCK", Cost: decimal.Zero, Free: true}, nil
}
