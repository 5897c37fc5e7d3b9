package utils

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorInstance *validator.Validate
	onceValidator     sync.Once
)

func NewValidator() *validator.Validate {
	onceValidator.Do(func() {
		validatorInstance = validator.New()
	})
	return validatorInstance
}
