// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package convert

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind categorizes lowering errors.
type ErrorKind uint8

const (
	// ErrUnsupportedGeneration indicates a chipset too old for buffer intrinsics.
	ErrUnsupportedGeneration ErrorKind = iota

	// ErrWidthExceeded indicates data wider than the buffer operand limit.
	ErrWidthExceeded

	// ErrUnrepresentable indicates a vector width that cannot be packed into
	// whole 32-bit words.
	ErrUnrepresentable

	// ErrNonAffineView indicates a memref whose layout is not strided.
	ErrNonAffineView

	// ErrOffsetOverflow indicates a static byte offset or stride that does
	// not fit the 32-bit offset operands.
	ErrOffsetOverflow

	// ErrInvalidChipsetString indicates a chipset name that does not parse.
	ErrInvalidChipsetString

	// ErrInternalError indicates malformed input the verifier should have
	// rejected.
	ErrInternalError
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedGeneration:
		return "UnsupportedGeneration"
	case ErrWidthExceeded:
		return "WidthExceeded"
	case ErrUnrepresentable:
		return "Unrepresentable"
	case ErrNonAffineView:
		return "NonAffineView"
	case ErrOffsetOverflow:
		return "OffsetOverflow"
	case ErrInvalidChipsetString:
		return "InvalidChipsetString"
	case ErrInternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// Error represents a lowering error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is works against
// the sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// NewError creates a new lowering error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates a lowering error caused by err.
func WrapError(kind ErrorKind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Errorf creates a new lowering error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return NewError(kind, fmt.Sprintf(format, args...))
}

// Sentinels for errors.Is.
var (
	UnsupportedGeneration = &Error{Kind: ErrUnsupportedGeneration}
	WidthExceeded         = &Error{Kind: ErrWidthExceeded}
	Unrepresentable       = &Error{Kind: ErrUnrepresentable}
	NonAffineView         = &Error{Kind: ErrNonAffineView}
	OffsetOverflow        = &Error{Kind: ErrOffsetOverflow}
	InvalidChipsetString  = &Error{Kind: ErrInvalidChipsetString}
	InternalError         = &Error{Kind: ErrInternalError}
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
