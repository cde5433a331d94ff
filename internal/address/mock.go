package address

import (
	"context"

	"github.com/dukerupert/shopcore/internal/domain"
)

// MockValidator is a test implementation of Validator.
type MockValidator struct {
	ValidateFunc func(ctx context.Context, addr domain.ShippingAddress) (*ValidationResult, error)
	Calls        int
}

// NewMockValidator creates a new mock address validator for testing.
func NewMockValidator() *MockValidator {
	return &MockValidator{}
}

// Validate delegates to the configured function or accepts the address.
func (m *MockValidator) Validate(ctx context.Context, addr domain.ShippingAddress) (*ValidationResult, error) {
	m.Calls++
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, addr)
	}
	return &ValidationResult{IsValid: true, NormalizedAddress: addr}, nil
}
