package urlhandler

import (
	"fmt"

	"github.com/aleister1102/scanconsole/internal/common/errorwrapper"
)

// Error represents a general error in the urlhandler package.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new general Error.
func NewError(message string) error {
	return &Error{Message: message}
}

// WrapError wraps an existing error with a message.
func WrapError(err error, message string) error {
	return &Error{Message: message, Err: err}
}

var (
	// ErrEmptyURL is returned for empty or whitespace-only input.
	ErrEmptyURL = WrapError(errorwrapper.ErrInvalidInput, "URL is empty")
	// ErrMalformedURL is returned when the input fails the acceptance rule or structural parsing.
	ErrMalformedURL = WrapError(errorwrapper.ErrInvalidInput, "URL is malformed")
)
