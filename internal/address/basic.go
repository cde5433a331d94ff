package address

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/go-playground/validator/v10"
)

// shippingForm carries the validation rules for a shipping address.
type shippingForm struct {
	FullName      string `json:"full_name" validate:"required"`
	StreetAddress string `json:"street_address" validate:"required"`
	City          string `json:"city" validate:"required"`
	State         string `json:"state"`
	ZipCode       string `json:"zip_code" validate:"required"`
	Country       string `json:"country"`
	PhoneNumber   string `json:"phone_number"`
}

// BasicValidator performs format validation without external API calls.
// Full name, street address, city and zip code are required. Every other
// field, phone number included, is free-form.
type BasicValidator struct {
	validate *validator.Validate
}

// NewBasicValidator creates a new basic address validator.
func NewBasicValidator() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &BasicValidator{validate: v}
}

// Normalize trims surrounding whitespace from every field.
func Normalize(addr domain.ShippingAddress) domain.ShippingAddress {
	return domain.ShippingAddress{
		FullName:      strings.TrimSpace(addr.FullName),
		StreetAddress: strings.TrimSpace(addr.StreetAddress),
		City:          strings.TrimSpace(addr.City),
		State:         strings.TrimSpace(addr.State),
		ZipCode:       strings.TrimSpace(addr.ZipCode),
		Country:       strings.TrimSpace(addr.Country),
		PhoneNumber:   strings.TrimSpace(addr.PhoneNumber),
	}
}

// Validate checks the required fields of the normalized address.
func (v *BasicValidator) Validate(ctx context.Context, addr domain.ShippingAddress) (*ValidationResult, error) {
	normalized := Normalize(addr)
	result := &ValidationResult{IsValid: true, NormalizedAddress: normalized}

	err := v.validate.StructCtx(ctx, shippingForm(normalized))
	if err == nil {
		return result, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, domain.WrapError(err, domain.EINTERNAL, "address.validate", "address validation failed")
	}

	result.IsValid = false
	for _, fe := range verrs {
		result.Errors = append(result.Errors, FieldError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return result, nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	default:
		return "is invalid"
	}
}
