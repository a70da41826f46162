package syntax

import (
	"fmt"
	"strings"

	"github.com/gogpu/gfxconv/ir"
)

// SourceError is a lexing or parsing error at a location in the input.
type SourceError struct {
	Loc     ir.Location
	Message string
	// Source is the whole input; FormatWithContext quotes the offending line.
	Source string
}

func newSourceError(loc ir.Location, source, format string, args ...any) *SourceError {
	return &SourceError{Loc: loc, Message: fmt.Sprintf(format, args...), Source: source}
}

// Error returns "file:line:col: message", dropping the parts that are unknown.
func (e *SourceError) Error() string {
	if !e.Loc.IsKnown() {
		return e.Message
	}
	return e.Loc.String() + ": " + e.Message
}

// FormatWithContext renders the error followed by the source line and a
// caret under the offending column:
//
//	kernel.mlir:2:13: error: expected operand
//	  %0 = "x"( : () -> i32
//	            ^
func (e *SourceError) FormatWithContext() string {
	if !e.Loc.IsKnown() {
		return "error: " + e.Message
	}
	header := fmt.Sprintf("%s: error: %s", e.Loc, e.Message)
	line, ok := sourceLine(e.Source, e.Loc.Line)
	if !ok {
		return header
	}

	col := min(max(e.Loc.Column, 1), len(line)+1)
	// Tabs before the column are kept so the caret lines up.
	pad := []byte(line[:col-1])
	for i, c := range pad {
		if c != '\t' {
			pad[i] = ' '
		}
	}
	return fmt.Sprintf("%s\n  %s\n  %s^", header, line, pad)
}

// sourceLine returns the 1-based line n of src without its newline.
func sourceLine(src string, n int) (string, bool) {
	if n < 1 {
		return "", false
	}
	for i := 1; ; i++ {
		line, rest, found := strings.Cut(src, "\n")
		if i == n {
			return strings.TrimSuffix(line, "\r"), true
		}
		if !found {
			return "", false
		}
		src = rest
	}
}

// SourceErrors collects every error of one parse, in source order.
type SourceErrors []*SourceError

func (el SourceErrors) Error() string {
	msgs := make([]string, len(el))
	for i, e := range el {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap lets errors.As find the individual *SourceError values.
func (el SourceErrors) Unwrap() []error {
	errs := make([]error, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return errs
}

// FormatAll renders every error with its source context.
func (el SourceErrors) FormatAll() string {
	parts := make([]string, len(el))
	for i, e := range el {
		parts[i] = e.FormatWithContext()
	}
	return strings.Join(parts, "\n")
}
