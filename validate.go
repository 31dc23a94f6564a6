package confstack

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidatorOption customizes the validator, e.g. to register custom rules.
type ValidatorOption func(*validator.Validate)

// NewValidator creates a validator for bound configuration structs.
func NewValidator(opts ...ValidatorOption) *validator.Validate {
	v := validator.New()
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks a bound configuration struct against its `validate`
// struct tags. Typically called right after [Bind] so misconfiguration is
// caught at startup rather than at first use.
func Validate(target any) error {
	return ValidateWith(NewValidator(), target)
}

// ValidateWith validates target using a caller-configured validator.
func ValidateWith(v *validator.Validate, target any) error {
	if v == nil {
		v = NewValidator()
	}

	if err := v.Struct(target); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	return nil
}
