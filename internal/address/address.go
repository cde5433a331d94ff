package address

import (
	"context"

	"github.com/dukerupert/shopcore/internal/domain"
)

// Validator defines the interface for address validation.
// Implementations can use external APIs like USPS or SmartyStreets;
// BasicValidator covers required fields and simple format rules.
type Validator interface {
	// Validate checks that an address is complete enough to ship to.
	// Even if IsValid is false, NormalizedAddress holds the trimmed input.
	Validate(ctx context.Context, addr domain.ShippingAddress) (*ValidationResult, error)
}

// ValidationResult contains the outcome of address validation.
type ValidationResult struct {
	IsValid           bool
	NormalizedAddress domain.ShippingAddress
	Errors            []FieldError
}

// FieldError represents a specific validation failure.
type FieldError struct {
	Field   string
	Message string
}

// Err converts a failed result into a *domain.ValidationError tagged with op.
// Returns nil when the address is valid.
func (r *ValidationResult) Err(op string) error {
	if r == nil || r.IsValid {
		return nil
	}
	ve := &domain.ValidationError{Op: op, Fields: make(map[string]string, len(r.Errors))}
	for _, fe := range r.Errors {
		ve.Fields[fe.Field] = fe.Message
	}
	return ve
}
