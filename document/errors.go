package document

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAttribute is returned for attribute names the schema does not know.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrInvalidValue is returned when a value has the wrong type for an attribute.
	ErrInvalidValue = errors.New("invalid attribute value")

	// ErrLengthMismatch is returned when a column does not match the number of documents.
	ErrLengthMismatch = errors.New("length mismatch")
)

// AttrError describes a failed attribute access.
type AttrError struct {
	Name  string
	Value any
	cause error
}

func (e *AttrError) Error() string {
	if errors.Is(e.cause, ErrInvalidValue) {
		return fmt.Sprintf("attribute %q: cannot assign value of type %T", e.Name, e.Value)
	}
	return fmt.Sprintf("attribute %q: %v", e.Name, e.cause)
}

func (e *AttrError) Unwrap() error { return e.cause }

// LengthError reports a column whose length differs from the document count.
type LengthError struct {
	What     string
	Expected int
	Actual   int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s: length mismatch, expected %d, got %d", e.What, e.Expected, e.Actual)
}

func (e *LengthError) Unwrap() error { return ErrLengthMismatch }
