// internal/services/errors.go
package services

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidInput is wrapped with a field message, e.g. invalidInput("name is required").
	ErrInvalidInput        = errors.New("invalid input")
	ErrMissingFields       = errors.New("missing required fields")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("user already exists")
	ErrForbidden           = errors.New("forbidden")
	ErrAdminProtected      = errors.New("admin users cannot be deleted")
	ErrSlugTaken           = errors.New("slug already in use")
	ErrCategoryInUse       = errors.New("category still has products")
	ErrNoChanges           = errors.New("no fields to update")
	ErrImagesRequired      = errors.New("at least one image is required")
	ErrProductUnavailable  = errors.New("product is not available")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrCartItemNotFound    = errors.New("item is not in the cart")
	ErrCartTooLarge        = errors.New("cart is too large")
	ErrPaymentNotCompleted = errors.New("payment has not been completed")
	ErrPaymentUnavailable  = errors.New("payment gateway is not configured")
)

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
