package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the validator library with the project's custom rules.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the notblank rule registered: a saved
// search whose query is only whitespace would match everything upstream
// yet fetch nothing, so it is rejected at the door.
func New() *Validator {
	v := validator.New()
	// RegisterValidation only errors on an empty tag or nil func.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &Validator{validate: v}
}

// ValidateStruct validates a struct based on its tags.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
