package ir

import (
	"fmt"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Function string
	Op       string
	Loc      Location
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	prefix := ""
	if e.Loc.IsKnown() {
		prefix = e.Loc.String() + ": "
	}
	if e.Function != "" {
		if e.Op != "" {
			return fmt.Sprintf("%sin function %s, op %q: %s", prefix, e.Function, e.Op, e.Message)
		}
		return fmt.Sprintf("%sin function %s: %s", prefix, e.Function, e.Message)
	}
	return prefix + e.Message
}

// OpVerifier checks the dialect-specific invariants of one op kind.
type OpVerifier func(op *Op) error

// Validator validates IR modules.
type Validator struct {
	module    *Module
	verifiers map[string]OpVerifier
	errors    []ValidationError
}

// NewValidator creates a validator with the given per-op verifiers.
func NewValidator(verifiers map[string]OpVerifier) *Validator {
	return &Validator{verifiers: verifiers}
}

// Validate checks the IR module for correctness using only structural rules.
// Returns validation errors if any, or nil if module is valid.
func Validate(module *Module) ([]ValidationError, error) {
	return NewValidator(nil).Validate(module)
}

// Validate checks the module structure and runs registered op verifiers.
func (v *Validator) Validate(module *Module) ([]ValidationError, error) {
	if module == nil {
		return nil, fmt.Errorf("module is nil")
	}
	v.module = module
	v.errors = v.errors[:0]

	seen := make(map[string]bool, len(module.Funcs))
	for _, f := range module.Funcs {
		if seen[f.Name] {
			v.errors = append(v.errors, ValidationError{
				Message: fmt.Sprintf("duplicate function %q", f.Name),
				Loc:     f.Loc,
			})
		}
		seen[f.Name] = true
		v.validateFunc(f)
	}

	if len(v.errors) > 0 {
		out := make([]ValidationError, len(v.errors))
		copy(out, v.errors)
		return out, nil
	}
	return nil, nil
}

func (v *Validator) validateFunc(f *Func) {
	if f.Body == nil {
		v.errors = append(v.errors, ValidationError{Message: "function has no body", Function: f.Name, Loc: f.Loc})
		return
	}

	defined := make(map[*Value]bool, len(f.Body.Args)+len(f.Body.Ops))
	for _, a := range f.Body.Args {
		if a.Type == nil {
			v.errors = append(v.errors, ValidationError{Message: "argument has no type", Function: f.Name, Loc: f.Loc})
		}
		defined[a] = true
	}

	for i, op := range f.Body.Ops {
		for j, o := range op.Operands {
			if o == nil {
				v.addOpError(f, op, fmt.Sprintf("operand %d is nil", j))
				continue
			}
			if !defined[o] {
				v.addOpError(f, op, fmt.Sprintf("operand %d does not dominate its use", j))
			}
		}
		for _, r := range op.Results {
			if r.Type == nil {
				v.addOpError(f, op, "result has no type")
			}
			defined[r] = true
		}
		if op.Name == OpReturn && i != len(f.Body.Ops)-1 {
			v.addOpError(f, op, "return must be the last op of the body")
		}
		if verify, ok := v.verifiers[op.Name]; ok {
			if err := verify(op); err != nil {
				v.addOpError(f, op, err.Error())
			}
		}
	}
}

func (v *Validator) addOpError(f *Func, op *Op, msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:  msg,
		Function: f.Name,
		Op:       op.Name,
		Loc:      op.Loc,
	})
}
