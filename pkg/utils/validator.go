package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/turtacn/kam/pkg/errors"
)

// defaultValidator holds the singleton validator instance.
var defaultValidator *validator.Validate

func init() {
	defaultValidator = validator.New()
	defaultValidator.RegisterValidation("emaildomain", validateEmailDomain)
}

// ValidateStruct validates a struct using the default validator.
// It returns a KamError describing the first set of failed fields.
func ValidateStruct(s interface{}) errors.KamError {
	if err := defaultValidator.Struct(s); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.ErrValidation(err.Error())
		}

		parts := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			field := toSnakeCase(fe.Field())
			parts = append(parts, fmt.Sprintf("%s %s", field, formatValidationError(fe)))
		}
		kamErr := errors.ErrValidation(strings.Join(parts, "; "))
		for _, fe := range validationErrors {
			kamErr.WithMetadata(toSnakeCase(fe.Field()), formatValidationError(fe))
		}
		return kamErr
	}
	return nil
}

// validateEmailDomain accepts values like "@example.com".
func validateEmailDomain(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	return strings.HasPrefix(v, "@") && len(v) > 1 && !strings.Contains(v[1:], "@")
}

// formatValidationError creates a user-friendly message for a failed rule.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "emaildomain":
		return "must start with '@' and name a domain"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
}

// toSnakeCase converts an exported field name to snake_case.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
