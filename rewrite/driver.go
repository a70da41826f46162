// Package rewrite implements a pattern-driven partial conversion engine.
//
// Patterns are tried on every op that the Target does not declare legal.
// A pattern either succeeds, committing the ops it built, or fails and
// leaves the IR untouched. Ops no pattern converts stay in place; only ops
// declared illegal make the conversion fail when they remain.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	pkgerrors "github.com/pkg/errors"

	"github.com/gogpu/gfxconv/ir"
)

// LevelTrace is below slog.LevelDebug and logs every pattern attempt.
const LevelTrace slog.Level = slog.LevelDebug - 4

// Listener observes the engine's changes to the IR.
type Listener interface {
	// OpReplaced is called after op's results were replaced by replacement.
	OpReplaced(op *ir.Op, replacement []*ir.Value)
	// OpErased is called after an op without replacement values was removed.
	OpErased(op *ir.Op)
	// MatchFailed is called when pattern did not rewrite op.
	MatchFailed(op *ir.Op, pattern Pattern, err error)
}

// Config tunes a conversion.
type Config struct {
	// Logger receives progress messages. Nil means slog.Default().
	Logger *slog.Logger
	// Listener, if set, is notified of every change.
	Listener Listener
}

// Result summarizes a conversion.
type Result struct {
	Diagnostics Diagnostics
	// Converted and Failed count ops by name.
	Converted map[string]int
	Failed    map[string]int
}

type driver struct {
	target    *Target
	patterns  *PatternSet
	converter TypeConverter
	logger    *slog.Logger
	listener  Listener
	result    *Result
}

// ApplyPartialConversion rewrites the ops of m with patterns until only
// ops the target does not declare illegal remain. The returned error is
// non-nil when any error diagnostic was produced; the module may then be
// partially converted.
func ApplyPartialConversion(m *ir.Module, target *Target, patterns *PatternSet, converter TypeConverter, cfg Config) (*Result, error) {
	d := &driver{
		target:    target,
		patterns:  patterns,
		converter: converter,
		logger:    cfg.Logger,
		listener:  cfg.Listener,
		result: &Result{
			Converted: make(map[string]int),
			Failed:    make(map[string]int),
		},
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}

	for _, f := range m.Funcs {
		d.convertFunc(f)
	}

	if err := d.result.Diagnostics.Err(); err != nil {
		return d.result, pkgerrors.Wrap(err, "partial conversion failed")
	}
	return d.result, nil
}

func (d *driver) convertFunc(f *ir.Func) {
	d.logger.Debug("converting function", "func", f.Name, "ops", len(f.Body.Ops))
	casts := make(map[*ir.Value]*ir.Value)

	// Ops created by patterns are not revisited.
	worklist := append([]*ir.Op(nil), f.Body.Ops...)
	for _, op := range worklist {
		if op.Block() == nil || d.target.Legality(op) == Legal {
			continue
		}
		d.convertOp(op, casts)
	}

	for _, op := range f.Body.Ops {
		if d.target.Legality(op) == Illegal {
			d.emit(opDiagnostic(SeverityError, op, fmt.Errorf("failed to legalize operation")))
		}
	}
	removeDeadCasts(f)
}

func (d *driver) convertOp(op *ir.Op, casts map[*ir.Value]*ir.Value) {
	for _, p := range d.patterns.For(op.Name) {
		d.logger.Log(context.Background(), LevelTrace, "trying pattern",
			"op", op.Name, "pattern", fmt.Sprintf("%T", p), "loc", op.Loc.String())

		r := newRewriter(op, d.converter, casts)
		err := p.MatchAndRewrite(op, r)
		if err == nil {
			err = r.commit()
		}
		if err == nil {
			d.result.Converted[op.Name]++
			d.notifyCommitted(op, r)
			return
		}

		if d.listener != nil {
			d.listener.MatchFailed(op, p, err)
		}
		if errors.Is(err, ErrNoMatch) {
			continue
		}

		d.result.Failed[op.Name]++
		target := op
		var opErr *OpError
		if errors.As(err, &opErr) && opErr.Op != nil {
			target = opErr.Op
		}
		d.emit(opDiagnostic(SeverityError, target, err))
		return
	}
}

func (d *driver) notifyCommitted(op *ir.Op, r *Rewriter) {
	d.logger.Log(context.Background(), LevelTrace, "rewrote op",
		"op", op.Name, "new_ops", len(r.staged))
	if d.listener == nil {
		return
	}
	if r.erase {
		d.listener.OpErased(op)
	} else {
		d.listener.OpReplaced(op, r.replacement)
	}
}

func (d *driver) emit(diag Diagnostic) {
	d.logger.Debug("diagnostic", "severity", diag.Severity.String(), "op", diag.OpName, "message", diag.Message)
	d.result.Diagnostics = append(d.result.Diagnostics, diag)
}

// removeDeadCasts erases materialization casts whose results are unused,
// repeating until none are left.
func removeDeadCasts(f *ir.Func) {
	for {
		var dead *ir.Op
		for _, op := range f.Body.Ops {
			if op.Name == ir.OpUnrealizedConversionCast && len(f.Uses(op.Result(0))) == 0 {
				dead = op
				break
			}
		}
		if dead == nil {
			return
		}
		f.Body.Erase(dead)
	}
}
