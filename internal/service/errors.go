package service

import (
	"github.com/dukerupert/shopcore/internal/domain"
)

// Catalog errors
var (
	ErrProductNotFound = domain.Errorf(domain.ENOTFOUND, "", "Product not found")
	ErrStaleLoad       = domain.ConcurrencyViolation("", "Catalog load superseded by a newer request")
)

// Cart errors
var (
	ErrCartItemNotFound = domain.Errorf(domain.ENOTFOUND, "", "Cart item not found")
	ErrInvalidQuantity  = domain.Errorf(domain.EINVALID, "", "Quantity must be greater than 0")
	ErrInvalidIndex     = domain.Errorf(domain.EINVALID, "", "Cart index out of range")
	ErrCartEmpty        = domain.Errorf(domain.EINVALID, "", "Cart is empty")
)

// Checkout errors
var (
	ErrCheckoutStep    = domain.Errorf(domain.ECONFLICT, "", "Action not allowed at this checkout step")
	ErrOrderInProgress = domain.ConcurrencyViolation("", "Order placement in progress")
	ErrOrderNotFound   = domain.Errorf(domain.ENOTFOUND, "", "Order not found")
)

// withOp returns a copy of a sentinel tagged with the failing operation.
// The copy still matches the sentinel under errors.Is.
func withOp(sentinel error, op string) error {
	e, ok := sentinel.(*domain.Error)
	if !ok {
		return sentinel
	}
	cp := *e
	cp.Op = op
	return &cp
}
