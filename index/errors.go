package index

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidShape is returned for arrays with more than one non-unit
	// dimension, non-integral array values and malformed composite indices.
	ErrInvalidShape = errors.New("invalid index shape")

	// ErrUnsupportedType is returned for values no variant accepts.
	ErrUnsupportedType = errors.New("unsupported index type")

	// ErrMaskLength is returned when a boolean mask does not cover the collection.
	ErrMaskLength = errors.New("mask length mismatch")
)

// Error describes an index value that could not be classified.
type Error struct {
	Index  any
	Reason string
	cause  error
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%v: %T: %v", e.cause, e.Index, e.Index)
	}
	return fmt.Sprintf("%v: %T: %s", e.cause, e.Index, e.Reason)
}

func (e *Error) Unwrap() error { return e.cause }

// MaskLengthError reports a mask whose length differs from the collection length.
type MaskLengthError struct {
	Expected int
	Actual   int
}

func (e *MaskLengthError) Error() string {
	return fmt.Sprintf("boolean mask must have the same length as the collection (%d), got %d", e.Expected, e.Actual)
}

func (e *MaskLengthError) Unwrap() error { return ErrMaskLength }

func unsupported(v any) error {
	return &Error{Index: v, cause: ErrUnsupportedType}
}

func invalidShape(v any, format string, args ...any) error {
	return &Error{Index: v, Reason: fmt.Sprintf(format, args...), cause: ErrInvalidShape}
}
