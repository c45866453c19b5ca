// Package validator adapts the shared struct validator to echo.
package validator

import (
	"assettrack/internal/validation"

	"github.com/labstack/echo/v4"
)

type echoValidator struct{}

// New returns the validator installed on the echo server.
func New() echo.Validator {
	return &echoValidator{}
}

// Validate checks the struct tags of i; failures are ErrValidation.
func (v *echoValidator) Validate(i any) error {
	return validation.Struct(i)
}
