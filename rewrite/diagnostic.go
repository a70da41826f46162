package rewrite

import (
	"fmt"
	"strings"

	"github.com/gogpu/gfxconv/ir"
)

// Severity classifies a diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityRemark
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "remark"
	}
}

// Diagnostic is a message attached to an op (or unlocated when OpName is
// empty).
type Diagnostic struct {
	Severity Severity
	Loc      ir.Location
	OpName   string
	Message  string
	// Err is the underlying error, if any.
	Err error
}

func (d Diagnostic) Error() string {
	var sb strings.Builder
	if d.Loc.IsKnown() {
		sb.WriteString(d.Loc.String())
		sb.WriteString(": ")
	}
	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")
	if d.OpName != "" {
		fmt.Fprintf(&sb, "'%s' op ", d.OpName)
	}
	sb.WriteString(d.Message)
	return sb.String()
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Diagnostics is the ordered list of diagnostics of one conversion.
type Diagnostics []Diagnostic

// HasErrors reports whether any diagnostic is an error.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error diagnostics.
func (ds Diagnostics) Errors() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Err returns ds as an error when it contains errors, nil otherwise.
func (ds Diagnostics) Err() error {
	if !ds.HasErrors() {
		return nil
	}
	return ds
}

func (ds Diagnostics) Error() string {
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes each diagnostic to errors.Is and errors.As.
func (ds Diagnostics) Unwrap() []error {
	errs := make([]error, len(ds))
	for i, d := range ds {
		errs[i] = d
	}
	return errs
}

func opDiagnostic(sev Severity, op *ir.Op, err error) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Loc:      op.Loc,
		OpName:   op.Name,
		Message:  err.Error(),
		Err:      err,
	}
}

// OpError attributes Err to Op. Patterns return it to report a failure on
// an op other than the one being rewritten.
type OpError struct {
	Op  *ir.Op
	Err error
}

func (e *OpError) Error() string { return e.Err.Error() }

func (e *OpError) Unwrap() error { return e.Err }
