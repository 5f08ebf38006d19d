package validation

import (
	"fmt"
	"sort"
	"strings"
)

// NonFieldErrors is the FieldErrors key for errors not tied to one field.
const NonFieldErrors = "non_field_errors"

// InvalidInputError describes why a single value was rejected.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	if len(args) == 0 {
		return &InvalidInputError{Message: format}
	}
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// FieldErrors maps a request field to its validation messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Check records err under field when it is non-nil and reports whether the
// value was valid.
func (fe FieldErrors) Check(field string, err error) bool {
	if err == nil {
		return true
	}
	fe.Add(field, err.Error())
	return false
}

// Has reports whether field already has an error.
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// Err returns the receiver as an error, or nil when it holds nothing.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(fe[field], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
