package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "message only",
			err:      &Error{Code: EINVALID, Message: "invalid input"},
			expected: "invalid input",
		},
		{
			name:     "with operation",
			err:      &Error{Code: EINVALID, Op: "cart.add", Message: "invalid input"},
			expected: "cart.add: invalid input",
		},
		{
			name: "with wrapped error",
			err: &Error{
				Code:    EFETCH,
				Op:      "catalog.load",
				Message: "failed to fetch products",
				Err:     errors.New("connection refused"),
			},
			expected: "catalog.load: failed to fetch products: connection refused",
		},
		{
			name: "wrapped error without op",
			err: &Error{
				Code:    EINTERNAL,
				Message: "failed to save",
				Err:     errors.New("database connection failed"),
			},
			expected: "failed to save: database connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &Error{Code: EINTERNAL, Message: "wrapped", Err: underlying}

	if unwrapped := err.Unwrap(); unwrapped != underlying {
		t.Errorf("Error.Unwrap() = %v, want %v", unwrapped, underlying)
	}

	if !errors.Is(err, underlying) {
		t.Error("errors.Is should find underlying error")
	}
}

func TestError_IsMatchesSentinelWithDifferentOp(t *testing.T) {
	sentinel := Errorf(EINVALID, "", "Quantity must be greater than 0")
	withOp := &Error{Code: EINVALID, Op: "cart.add", Message: "Quantity must be greater than 0"}

	if !errors.Is(withOp, sentinel) {
		t.Error("errors.Is should match on code and message")
	}
	if errors.Is(&Error{Code: EINVALID, Message: "other"}, sentinel) {
		t.Error("errors.Is should not match a different message")
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "domain error", err: &Error{Code: EINVALID, Message: "test"}, expected: EINVALID},
		{
			name:     "wrapped domain error",
			err:      fmt.Errorf("wrapped: %w", &Error{Code: ENOTFOUND, Message: "test"}),
			expected: ENOTFOUND,
		},
		{name: "validation error", err: NewValidationError("checkout", "city", "is required"), expected: EINVALID},
		{name: "non-domain error", err: errors.New("some error"), expected: EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.expected {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{
			name:     "domain error with message",
			err:      &Error{Code: EINVALID, Message: "invalid quantity"},
			expected: "invalid quantity",
		},
		{
			name:     "internal error hides message",
			err:      &Error{Code: EINTERNAL, Message: "database connection string leaked"},
			expected: "An internal error occurred. Please try again later.",
		},
		{
			name:     "non-domain error returns generic message",
			err:      errors.New("some internal detail"),
			expected: "An internal error occurred. Please try again later.",
		},
		{
			name:     "validation error shows fields",
			err:      NewValidationError("checkout.shipping", "zip_code", "is required"),
			expected: "checkout.shipping: zip_code: is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err); got != tt.expected {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorOp(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "domain error with op", err: &Error{Code: EINVALID, Op: "cart.update", Message: "test"}, expected: "cart.update"},
		{name: "domain error without op", err: &Error{Code: EINVALID, Message: "test"}, expected: ""},
		{name: "non-domain error", err: errors.New("test"), expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorOp(tt.err); got != tt.expected {
				t.Errorf("ErrorOp() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(EINVALID, "cart.update", "invalid quantity: %d", -1)

	var domainErr *Error
	if !errors.As(err, &domainErr) {
		t.Fatal("Errorf should return *Error")
	}
	if domainErr.Code != EINVALID {
		t.Errorf("Code = %q, want %q", domainErr.Code, EINVALID)
	}
	if domainErr.Op != "cart.update" {
		t.Errorf("Op = %q, want %q", domainErr.Op, "cart.update")
	}
	if domainErr.Message != "invalid quantity: -1" {
		t.Errorf("Message = %q, want %q", domainErr.Message, "invalid quantity: -1")
	}
}

func TestWrapError(t *testing.T) {
	t.Run("wraps non-nil error", func(t *testing.T) {
		underlying := errors.New("db error")
		err := WrapError(underlying, EINTERNAL, "order.save", "failed to save order")

		var domainErr *Error
		if !errors.As(err, &domainErr) {
			t.Fatal("WrapError should return *Error")
		}
		if domainErr.Code != EINTERNAL {
			t.Errorf("Code = %q, want %q", domainErr.Code, EINTERNAL)
		}
		if !errors.Is(err, underlying) {
			t.Error("should wrap underlying error")
		}
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		if err := WrapError(nil, EINTERNAL, "test", "test"); err != nil {
			t.Errorf("WrapError(nil) should return nil, got %v", err)
		}
	})
}

func TestIsCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     string
		expected bool
	}{
		{name: "matching code", err: &Error{Code: ENOTFOUND, Message: "test"}, code: ENOTFOUND, expected: true},
		{name: "non-matching code", err: &Error{Code: EINVALID, Message: "test"}, code: ENOTFOUND, expected: false},
		{name: "non-domain error matches EINTERNAL", err: errors.New("test"), code: EINTERNAL, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("IsCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(FetchFailed(errors.New("timeout"), "catalog.refresh", "failed to fetch products")) {
		t.Error("fetch failures should be retryable")
	}
	if IsRetryable(Invalid("cart.add", "bad quantity")) {
		t.Error("validation failures should not be retryable")
	}
	if IsRetryable(ConcurrencyViolation("catalog.refresh", "stale load")) {
		t.Error("concurrency violations should not be retryable")
	}
}

func TestValidationError(t *testing.T) {
	t.Run("single field error", func(t *testing.T) {
		err := NewValidationError("checkout.shipping", "full_name", "is required")

		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatal("NewValidationError should return *ValidationError")
		}
		if ve.Op != "checkout.shipping" {
			t.Errorf("Op = %q, want %q", ve.Op, "checkout.shipping")
		}
		if msg, ok := ve.Fields["full_name"]; !ok || msg != "is required" {
			t.Errorf("Fields[full_name] = %q, want %q", msg, "is required")
		}

		expected := "checkout.shipping: full_name: is required"
		if ve.Error() != expected {
			t.Errorf("Error() = %q, want %q", ve.Error(), expected)
		}
	})

	t.Run("multiple field errors", func(t *testing.T) {
		err := NewValidationError("checkout.shipping", "zip_code", "is required")
		err = AddFieldError(err, "city", "is required")

		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatal("should be ValidationError")
		}
		if len(ve.Fields) != 2 {
			t.Errorf("Fields count = %d, want 2", len(ve.Fields))
		}

		expected := "checkout.shipping: validation failed for 2 fields (city, zip_code)"
		if ve.Error() != expected {
			t.Errorf("Error() = %q, want %q", ve.Error(), expected)
		}
	})

	t.Run("add field to nil error", func(t *testing.T) {
		err := AddFieldError(nil, "city", "is required")

		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatal("AddFieldError(nil) should return *ValidationError")
		}
		if len(ve.Fields) != 1 {
			t.Errorf("Fields count = %d, want 1", len(ve.Fields))
		}
	})
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "validation error", err: NewValidationError("test", "field", "error"), expected: true},
		{name: "domain error", err: &Error{Code: EINVALID, Message: "test"}, expected: false},
		{name: "standard error", err: errors.New("test"), expected: false},
		{name: "nil", err: nil, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidationError(tt.err); got != tt.expected {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetValidationFields(t *testing.T) {
	t.Run("validation error", func(t *testing.T) {
		fields := GetValidationFields(NewValidationError("test", "city", "required"))
		if fields == nil {
			t.Fatal("GetValidationFields should return fields map")
		}
		if fields["city"] != "required" {
			t.Errorf("fields[city] = %q, want %q", fields["city"], "required")
		}
	})

	t.Run("non-validation error", func(t *testing.T) {
		if fields := GetValidationFields(errors.New("test")); fields != nil {
			t.Errorf("GetValidationFields should return nil for non-validation error")
		}
	})
}

func TestConvenienceFunctions(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		err := NotFound("catalog.product", "product", "42")
		if ErrorCode(err) != ENOTFOUND {
			t.Errorf("NotFound code = %q, want %q", ErrorCode(err), ENOTFOUND)
		}
		if ErrorMessage(err) != "product not found: 42" {
			t.Errorf("NotFound message = %q", ErrorMessage(err))
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		if err := Invalid("cart.add", "quantity must be positive"); ErrorCode(err) != EINVALID {
			t.Errorf("Invalid code = %q, want %q", ErrorCode(err), EINVALID)
		}
	})

	t.Run("Conflict", func(t *testing.T) {
		if err := Conflict("checkout.place", "order already placed"); ErrorCode(err) != ECONFLICT {
			t.Errorf("Conflict code = %q, want %q", ErrorCode(err), ECONFLICT)
		}
	})

	t.Run("FetchFailed", func(t *testing.T) {
		underlying := errors.New("timeout")
		err := FetchFailed(underlying, "catalog.load", "failed to fetch products")
		if ErrorCode(err) != EFETCH {
			t.Errorf("FetchFailed code = %q, want %q", ErrorCode(err), EFETCH)
		}
		if !errors.Is(err, underlying) {
			t.Error("FetchFailed should wrap underlying error")
		}
	})

	t.Run("ConcurrencyViolation", func(t *testing.T) {
		if err := ConcurrencyViolation("catalog.refresh", "stale load"); ErrorCode(err) != ECONCURRENCY {
			t.Errorf("ConcurrencyViolation code = %q, want %q", ErrorCode(err), ECONCURRENCY)
		}
	})

	t.Run("Internal", func(t *testing.T) {
		underlying := errors.New("db error")
		err := Internal(underlying, "order.save", "failed to save")

		if ErrorCode(err) != EINTERNAL {
			t.Errorf("Internal code = %q, want %q", ErrorCode(err), EINTERNAL)
		}
		if !errors.Is(err, underlying) {
			t.Error("Internal should wrap underlying error")
		}

		// Message should be hidden
		if msg := ErrorMessage(err); msg != "An internal error occurred. Please try again later." {
			t.Errorf("Internal message should be hidden, got %q", msg)
		}
	})
}
