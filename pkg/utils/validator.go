package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct validates a struct against its validate tags
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// GetValidationErrors converts validator errors into a field -> message map
func GetValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["error"] = err.Error()
		return errors
	}

	for _, fieldErr := range validationErrors {
		field := strings.ToLower(fieldErr.Field())
		switch fieldErr.Tag() {
		case "required":
			errors[field] = fmt.Sprintf("%s is required", field)
		case "min":
			errors[field] = fmt.Sprintf("%s must be at least %s", field, fieldErr.Param())
		case "max":
			errors[field] = fmt.Sprintf("%s must be at most %s", field, fieldErr.Param())
		case "oneof":
			errors[field] = fmt.Sprintf("%s must be one of: %s", field, fieldErr.Param())
		default:
			errors[field] = fmt.Sprintf("%s is invalid", field)
		}
	}

	return errors
}
