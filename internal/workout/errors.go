package workout

import (
	"errors"
	"fmt"
)

// ErrNotFound marks an unknown workout/card/item reference.
var ErrNotFound = errors.New("not found")

// ValidationError marks a rejected input: malformed requests, empty result
// sets, unknown item ids, or completing an already-completed workout.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
