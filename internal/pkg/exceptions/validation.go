package exceptions

import (
	"strings"
	"synclinic-service/internal/pkg/constvars"

	"github.com/go-playground/validator/v10"
)

func FormatFirstValidationError(err error) string {
	if err == nil {
		return constvars.ErrClientCannotProcessRequest
	}

	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		firstErr := validationErrors[0]
		fieldName := strings.ToLower(firstErr.Field())
		switch firstErr.Tag() {
		case "required":
			return fieldName + " is required"
		case "oneof":
			return fieldName + " must be one of " + strings.Join(strings.Fields(firstErr.Param()), ", ")
		case "url":
			return fieldName + " must be a valid URL"
		default:
			return fieldName + " is invalid"
		}
	}
	return constvars.ErrDevInvalidInput
}
