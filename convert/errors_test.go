// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package convert

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{ErrUnsupportedGeneration, "UnsupportedGeneration"},
		{ErrWidthExceeded, "WidthExceeded"},
		{ErrUnrepresentable, "Unrepresentable"},
		{ErrNonAffineView, "NonAffineView"},
		{ErrOffsetOverflow, "OffsetOverflow"},
		{ErrInvalidChipsetString, "InvalidChipsetString"},
		{ErrInternalError, "InternalError"},
		{ErrorKind(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.kind.String()
			if got != tt.want {
				t.Errorf("ErrorKind.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := Errorf(ErrWidthExceeded, "vector<8xf32> is %d bits", 256)
	got := err.Error()
	if !strings.Contains(got, "WidthExceeded") {
		t.Errorf("Error() should contain kind, got %q", got)
	}
	if !strings.Contains(got, "vector<8xf32> is 256 bits") {
		t.Errorf("Error() should contain message, got %q", got)
	}
}

func TestNewError(t *testing.T) {
	err := NewError(ErrInternalError, "missing operand segments")

	if err.Kind != ErrInternalError {
		t.Errorf("Kind = %v, want ErrInternalError", err.Kind)
	}
	if err.Message != "missing operand segments" {
		t.Errorf("Message = %q, want \"missing operand segments\"", err.Message)
	}
}

func TestError_Is(t *testing.T) {
	wrapped := fmt.Errorf("lowering: %w", Errorf(ErrNonAffineView, "affine_map layout"))

	if !errors.Is(wrapped, NonAffineView) {
		t.Error("errors.Is should match the sentinel of the same kind")
	}
	if errors.Is(wrapped, WidthExceeded) {
		t.Error("errors.Is should not match another kind")
	}
	if errors.Is(wrapped, Errorf(ErrNonAffineView, "other message")) {
		t.Error("errors.Is should only match message-less sentinels")
	}

	kind, ok := KindOf(wrapped)
	if !ok || kind != ErrNonAffineView {
		t.Errorf("KindOf() = %v, %v", kind, ok)
	}
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf() should fail for foreign errors")
	}
}

func TestWrapError(t *testing.T) {
	err := WrapError(ErrInternalError, io.ErrUnexpectedEOF, "decoding operands")

	if got, want := err.Error(), "InternalError: decoding operands: unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("errors.Is should reach the cause")
	}
	if !errors.Is(err, InternalError) {
		t.Error("errors.Is should match the kind sentinel")
	}
	if errors.Is(err, Errorf(ErrInternalError, "decoding operands")) {
		t.Error("errors.Is should only match message-less sentinels")
	}
}
