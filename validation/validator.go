package validation

import (
	"fmt"
	"strings"

	"github.com/jonnyholland/ComposableArchitecturePattern/errors"
)

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is the cause attached to a validation failure.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	messages := make([]string, len(fe))
	for i, e := range fe {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(messages, "; ")
}

func (fe FieldErrors) asError() *errors.Error {
	return errors.BadRequest(errors.ErrCodeInvalidConfig, fe.Error()).WithCause(fe)
}

// Validator collects validation errors.
type Validator struct {
	errors FieldErrors
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() FieldErrors {
	return v.errors
}

// Merge records the field errors of a Validate failure, prefixing each
// field when prefix is set. Other errors are recorded against prefix
// itself.
func (v *Validator) Merge(prefix string, err error) *Validator {
	if err == nil {
		return v
	}
	var fields FieldErrors
	if e, ok := errors.AsError(err); ok {
		fields, _ = e.Cause.(FieldErrors)
	}
	if fields == nil {
		v.AddError(prefix, err.Error())
		return v
	}
	for _, f := range fields {
		if prefix != "" {
			f.Field = prefix + "." + f.Field
		}
		v.AddError(f.Field, f.Message)
	}
	return v
}

// Validate returns a BadRequest error if there are validation errors.
func (v *Validator) Validate() error {
	if !v.HasErrors() {
		return nil
	}
	return v.errors.asError()
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// Min checks if a number meets minimum value.
func (v *Validator) Min(field string, value, minVal int) *Validator {
	if value < minVal {
		v.AddError(field, fmt.Sprintf("must be at least %d", minVal))
	}
	return v
}

// Range checks if a number is within a range.
func (v *Validator) Range(field string, value, minVal, maxVal int) *Validator {
	if value < minVal || value > maxVal {
		v.AddError(field, fmt.Sprintf("must be between %d and %d", minVal, maxVal))
	}
	return v
}

// OneOf checks if a value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}
