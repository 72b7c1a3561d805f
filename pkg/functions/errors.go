package functions

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFunction is returned when the model names a function the
	// registry does not hold.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrDuplicateFunction is returned when a name is registered twice.
	ErrDuplicateFunction = errors.New("function already registered")
)

// ArgumentError reports arguments the model should correct: malformed JSON,
// schema violations, or values a handler cannot parse.
type ArgumentError struct {
	Function string
	Reason   string
	Err      error
}

func (e *ArgumentError) Error() string {
	if e.Function == "" {
		return fmt.Sprintf("invalid arguments: %s", e.Reason)
	}
	return fmt.Sprintf("invalid arguments for %s: %s", e.Function, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// IsArgumentError reports whether err is or wraps an ArgumentError.
func IsArgumentError(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}
