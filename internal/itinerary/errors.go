package itinerary

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad caller input (dates, missing fields).
	ErrValidation = errors.New("validation error")
	// ErrUpstream marks a failed or exhausted model call.
	ErrUpstream = errors.New("upstream model failure")
	// ErrMalformedOutput marks model text that could not be turned into the
	// expected shape. It also matches ErrUpstream.
	ErrMalformedOutput = fmt.Errorf("%w: malformed model output", ErrUpstream)
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func malformedErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedOutput, fmt.Sprintf(format, args...))
}
