package core

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when an update or delete matched no row.
var ErrNotFound = errors.New("record not found")

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Fields  []string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []string{field}, Message: message}
}

// NewMissingFieldsError builds the error for absent required fields.
func NewMissingFieldsError(fields ...string) *ValidationError {
	return &ValidationError{
		Fields:  fields,
		Message: "missing required fields: " + strings.Join(fields, ", "),
	}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
