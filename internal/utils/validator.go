// internal/utils/validator.go
package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	errNegativeAmount = errors.New("amount must not be negative")
	hsCodePattern     = regexp.MustCompile(`^[0-9]{4,10}$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("hs_code", validateHSCode)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// validateHSCode accepts Harmonized System codes written with or without
// separators, e.g. "0904.11" or "090411".
func validateHSCode(fl validator.FieldLevel) bool {
	code := strings.NewReplacer(".", "", " ", "").Replace(fl.Field().String())
	return hsCodePattern.MatchString(code)
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param() + unitFor(e.Kind())
	case "max":
		return e.Field() + " must be at most " + e.Param() + unitFor(e.Kind())
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "hs_code":
		return "HS code must be 4 to 10 digits"
	default:
		return e.Field() + " is invalid"
	}
}

func unitFor(kind reflect.Kind) string {
	switch kind {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	default:
		return ""
	}
}
