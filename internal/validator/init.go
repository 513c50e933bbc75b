package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	return validate
}

// Struct validates s using the shared instance.
func Struct(s any) error {
	return validate.Struct(s)
}
