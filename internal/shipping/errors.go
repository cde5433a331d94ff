package shipping

// ============================================================================
// SHIPPING ERROR CODES
// ============================================================================
// These constants mirror domain error codes to avoid circular imports.
// The handler layer maps these to HTTP status codes.

const (
	codeInternal    = "internal"
	codeInvalid     = "invalid"
	codeUnavailable = "unavailable" // For service-level errors like no rates
)

// ============================================================================
// SHIPPING ERROR TYPE
// ============================================================================

// ShippingError represents a shipping-specific error with a code and message.
type ShippingError struct {
	Code    string
	Message string
}

func (e *ShippingError) Error() string {
	return e.Message
}

// ErrorCode returns the error code for HTTP status mapping.
func (e *ShippingError) ErrorCode() string {
	return e.Code
}

// ErrorMessage returns the user-facing message.
func (e *ShippingError) ErrorMessage() string {
	return e.Message
}

func newShippingError(code, message string) *ShippingError {
	return &ShippingError{Code: code, Message: message}
}

// ============================================================================
// SHIPPING DOMAIN ERRORS
// ============================================================================

var (
	// ErrNegativeSubtotal is returned when a quote is requested for a negative amount.
	ErrNegativeSubtotal = newShippingError(codeInvalid, "Subtotal must not be negative")

	// ErrInvalidRate is returned when the configured fee or threshold is negative.
	ErrInvalidRate = newShippingError(codeInternal, "Shipping rate is misconfigured")

	// ErrNoRates is returned when no shipping option is available.
	ErrNoRates = newShippingError(codeUnavailable, "No shipping rates available")
)
