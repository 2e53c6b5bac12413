package docarray

import (
	"errors"
	"fmt"

	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/index"
	"github.com/hupe1980/docarray/offset2id"
	"github.com/hupe1980/docarray/storage"
)

var (
	// ErrNotFound is returned when an id or offset does not exist.
	ErrNotFound = errors.New("not found")

	// ErrLengthMismatch is returned when a value sequence or mask does not
	// match the number of selected documents.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrInvalidIndexShape is returned for multi-dimensional array indices,
	// zero slice steps and malformed composite indices.
	ErrInvalidIndexShape = errors.New("invalid index shape")

	// ErrUnsupportedIndexType is returned for index values no rule accepts.
	ErrUnsupportedIndexType = errors.New("unsupported index type")

	// ErrAmbiguousSelector is returned when the second component of a pair
	// is neither a known id nor an attribute name.
	ErrAmbiguousSelector = errors.New("ambiguous or invalid selector")

	// ErrInvalidValue is returned when a value cannot be assigned.
	ErrInvalidValue = errors.New("invalid value")

	// ErrOffsetIDDivergence is returned when the offset2id table disagrees
	// with the stored documents.
	ErrOffsetIDDivergence = offset2id.ErrDivergence

	// ErrDuplicateID is returned when a write would store an id twice.
	ErrDuplicateID = storage.ErrDuplicateID

	// ErrClosed is returned by operations on a closed DocumentArray.
	ErrClosed = storage.ErrClosed
)

// IndexError describes an index that could not be resolved.
//
// The sentinel (ErrInvalidIndexShape, ErrUnsupportedIndexType or
// ErrAmbiguousSelector) and the underlying error can be matched with
// errors.Is and errors.As.
type IndexError struct {
	Index  any
	Reason string
	kind   error
	cause  error
}

func (e *IndexError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%v: %T %v: %s", e.kind, e.Index, e.Index, e.Reason)
	}
	return fmt.Sprintf("%v: %T %v", e.kind, e.Index, e.Index)
}

func (e *IndexError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// LengthMismatchError reports a value sequence or mask whose length differs
// from the expected length.
type LengthMismatchError struct {
	What     string
	Expected int
	Actual   int
	cause    error
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s: length mismatch, expected %d, got %d", e.What, e.Expected, e.Actual)
}

func (e *LengthMismatchError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrLengthMismatch}
	}
	return []error{ErrLengthMismatch, e.cause}
}

func ambiguous(idx any, format string, args ...any) error {
	return &IndexError{Index: idx, Reason: fmt.Sprintf(format, args...), kind: ErrAmbiguousSelector}
}

func unsupportedIndex(idx any, reason string) error {
	return &IndexError{Index: idx, Reason: reason, kind: ErrUnsupportedIndexType}
}

func invalidShape(idx any, format string, args ...any) error {
	return &IndexError{Index: idx, Reason: fmt.Sprintf(format, args...), kind: ErrInvalidIndexShape}
}

func lengthMismatch(what string, expected, actual int) error {
	return &LengthMismatchError{What: what, Expected: expected, Actual: actual}
}

func invalidValue(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...))
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Already normalised.
	var ie *IndexError
	var lm *LengthMismatchError
	if errors.As(err, &ie) || errors.As(err, &lm) {
		return err
	}

	var xe *index.Error
	if errors.As(err, &xe) {
		kind := ErrInvalidIndexShape
		if errors.Is(err, index.ErrUnsupportedType) {
			kind = ErrUnsupportedIndexType
		}
		return &IndexError{Index: xe.Index, Reason: xe.Reason, kind: kind, cause: err}
	}
	var me *index.MaskLengthError
	if errors.As(err, &me) {
		return &LengthMismatchError{What: "mask", Expected: me.Expected, Actual: me.Actual, cause: err}
	}
	var le *document.LengthError
	if errors.As(err, &le) {
		return &LengthMismatchError{What: le.What, Expected: le.Expected, Actual: le.Actual, cause: err}
	}

	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, offset2id.ErrOutOfRange) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, document.ErrInvalidValue) {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	return err
}
