package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrForbidden       = errors.New("not authorized to perform this action")
	ErrInternNotFound  = errors.New("intern not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrEmailTaken      = errors.New("a user with this email already exists")
	ErrInvalidAction   = errors.New("invalid action")
	ErrProgressMissing = errors.New("progress value required")
	ErrInvalidProgress = errors.New("invalid progress value")
)

// ValidationError carries every field-level problem found in one request.
type ValidationError struct {
	Fields map[string][]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

func (e *ValidationError) add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}

// orNil returns e as an error only when it holds at least one field error.
func (e *ValidationError) orNil() error {
	if e.empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

const (
	msgRequired      = "This field is required."
	msgBlank         = "This field may not be blank."
	msgPasswordShort = "Ensure this field has at least 8 characters."

	maxBcryptPasswordBytes = 72
)
