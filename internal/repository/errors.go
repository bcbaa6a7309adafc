// internal/repository/errors.go

// Package repository persists the storefront aggregates with GORM on PostgreSQL.
package repository

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrImportProductNotFound = errors.New("import product not found")

	// ErrDuplicateKey is returned when a unique index rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrReferenced is returned when a row cannot be removed because others point at it.
	ErrReferenced = errors.New("record is still referenced")
	// ErrStaleStatus is returned when a conditional status update finds the order
	// in a different status than expected.
	ErrStaleStatus = errors.New("order status changed concurrently")
)

func isUniqueConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isForeignKeyConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated)
}

// translate maps driver errors onto the package sentinels and wraps the rest.
func translate(err error, notFound error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case isUniqueConstraintViolation(err):
		return errors.Wrap(ErrDuplicateKey, msg)
	case isForeignKeyConstraintViolation(err):
		return errors.Wrap(ErrReferenced, msg)
	default:
		return errors.Wrap(err, msg)
	}
}
