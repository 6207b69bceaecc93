package verify

import (
	"errors"
	"fmt"
)

// Client-side failures. They are returned before or instead of a verdict and
// are safe to show to the caller.
var (
	ErrInputEmpty    = errors.New("input empty")
	ErrInputTooShort = errors.New("input too short")
	ErrInputTooLong  = errors.New("input too long")
	ErrNoContent     = errors.New("no analyzable content")
)

// ErrPipelineFailure marks an unexpected failure inside a pipeline stage.
// Its wrapped detail is for logs only.
var ErrPipelineFailure = errors.New("pipeline failure")

// InputError is a rejected submission with a message for the end user.
type InputError struct {
	Kind   error
	Detail string
}

func (e *InputError) Error() string {
	return e.Detail
}

func (e *InputError) Unwrap() error {
	return e.Kind
}

func inputError(kind error, format string, args ...any) error {
	return &InputError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err was caused by the submitted text.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// Detail returns the caller-facing message for err.
func Detail(err error) string {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie.Detail
	}
	return "Internal server error."
}
