package prefs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter indicates a field value a kernel cannot integrate with.
	ErrInvalidParameter = errors.New("prefs: invalid parameter")

	// ErrShortBuffer indicates an encoded record that is not exactly Size bytes.
	ErrShortBuffer = errors.New("prefs: encoded record must be 16 bytes")
)

// ParamError describes one rejected field.
type ParamError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("prefs: %s=%g: %s", e.Field, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}
