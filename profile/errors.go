package profile

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError is one problem with the input.
// Location is the dotted json path of the offending field, like "address.city",
// or empty when the problem is with the record as a whole.
type FieldError struct {
	Location string `json:"loc"`
	Message  string `json:"msg"`
}

func (e FieldError) String() string {
	if e.Location == "" {
		return e.Message
	}
	return e.Location + ": " + e.Message
}

// ValidationError is returned by a Validator when the input
// does not make a valid Profile. It always has at least one FieldError.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.String())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Locations returns the location of every FieldError, in order.
func (e *ValidationError) Locations() []string {
	locs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		locs = append(locs, fe.Location)
	}
	return locs
}

// NewValidationError returns a ValidationError with a single FieldError.
func NewValidationError(location, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Location: location, Message: message}}}
}

// AsValidationError returns the ValidationError in err's chain, or nil.
func AsValidationError(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// IsValidationError is true if err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	return AsValidationError(err) != nil
}
