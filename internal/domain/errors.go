package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
)

// MsgCircular is the field message of a rejected parent assignment.
const MsgCircular = "would create a circular relationship"

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// NewCircularError is the validation error for a parent assignment that
// would close a cycle.
func NewCircularError() *ValidationError {
	return NewValidationError("parentId", MsgCircular)
}

// fieldChecks accumulates field errors for an entity's Validate.
type fieldChecks []FieldError

func (c *fieldChecks) add(field, message string) {
	*c = append(*c, FieldError{Field: field, Message: message})
}

func (c *fieldChecks) required(field, value string, max int) {
	switch v := strings.TrimSpace(value); {
	case v == "":
		c.add(field, "required")
	case len([]rune(v)) > max:
		c.add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func (c *fieldChecks) optional(field, value string, max int) {
	if len([]rune(value)) > max {
		c.add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func (c *fieldChecks) email(field, value string) {
	if value != "" && !strings.Contains(value, "@") {
		c.add(field, "invalid format")
	}
}

func (c *fieldChecks) ref(field string, id *int64) {
	if id != nil && *id <= 0 {
		c.add(field, "must be a positive id")
	}
}

// err returns nil when no check failed.
func (c fieldChecks) err() error {
	if len(c) == 0 {
		return nil
	}
	return NewValidationErrors(c)
}
