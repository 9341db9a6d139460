package common

import validator "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validator returns the shared struct validator.
func Validator() *validator.Validate {
	return validate
}

// ValidateStruct runs struct tags on v and wraps failures as a 422.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return ValidationError("invalid payload", err)
	}
	return nil
}
