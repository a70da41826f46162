package rewrite

import (
	"fmt"

	"github.com/gogpu/gfxconv/ir"
)

// TypeConverter maps source types to their converted form.
type TypeConverter interface {
	ConvertType(t ir.Type) (ir.Type, error)
}

// Rewriter is handed to a pattern for one op. Ops it creates are staged
// and only inserted into the function, right before the root op, when the
// pattern succeeds.
type Rewriter struct {
	root      *ir.Op
	converter TypeConverter
	// casts is the per-function materialization cache, shared across
	// rewriters of the same function.
	casts   map[*ir.Value]*ir.Value
	pending map[*ir.Value]*ir.Value

	staged      []*ir.Op
	replacement []*ir.Value
	done        bool
	erase       bool
}

func newRewriter(root *ir.Op, converter TypeConverter, casts map[*ir.Value]*ir.Value) *Rewriter {
	return &Rewriter{
		root:      root,
		converter: converter,
		casts:     casts,
		pending:   make(map[*ir.Value]*ir.Value),
	}
}

// Loc implements ir.OpBuilder. New ops inherit the root op's location.
func (r *Rewriter) Loc() ir.Location { return r.root.Loc }

// Create implements ir.OpBuilder.
func (r *Rewriter) Create(name string, operands []*ir.Value, resultTypes []ir.Type, attrs ...ir.NamedAttr) *ir.Op {
	op := ir.NewOp(name, operands, resultTypes, ir.Attributes(attrs))
	op.Loc = r.root.Loc
	r.staged = append(r.staged, op)
	return op
}

// Staged returns the ops created so far.
func (r *Rewriter) Staged() []*ir.Op { return r.staged }

// ReplaceOp replaces every result of op with the matching value. op must be
// the root op.
func (r *Rewriter) ReplaceOp(op *ir.Op, values []*ir.Value) error {
	if err := r.checkRoot(op); err != nil {
		return err
	}
	if len(values) != len(op.Results) {
		return fmt.Errorf("replacing %d results with %d values", len(op.Results), len(values))
	}
	for i, v := range values {
		if !ir.Equal(v.Type, op.Result(i).Type) {
			return fmt.Errorf("result %d of type %s replaced by value of type %s", i, op.Result(i).Type, v.Type)
		}
	}
	r.replacement = values
	r.done = true
	return nil
}

// EraseOp removes op, which must be the root op and have no used results.
func (r *Rewriter) EraseOp(op *ir.Op) error {
	if err := r.checkRoot(op); err != nil {
		return err
	}
	if f := funcOf(op); f != nil {
		for _, res := range op.Results {
			if len(f.Uses(res)) > 0 {
				return fmt.Errorf("cannot erase op whose results are still used")
			}
		}
	}
	r.erase = true
	r.done = true
	return nil
}

func (r *Rewriter) checkRoot(op *ir.Op) error {
	if op != r.root {
		return fmt.Errorf("rewriter can only replace its root op %s, got %s", r.root.Name, op.Name)
	}
	if r.done {
		return fmt.Errorf("root op %s already replaced", op.Name)
	}
	return nil
}

// Remap returns v in converted form. Values whose type the converter
// changes are wrapped in a builtin.unrealized_conversion_cast, created once
// per function.
func (r *Rewriter) Remap(v *ir.Value) (*ir.Value, error) {
	if r.converter == nil {
		return v, nil
	}
	t, err := r.converter.ConvertType(v.Type)
	if err != nil {
		return nil, err
	}
	if ir.Equal(t, v.Type) {
		return v, nil
	}
	if c, ok := r.casts[v]; ok {
		return c, nil
	}
	if c, ok := r.pending[v]; ok {
		return c, nil
	}
	c := r.Create(ir.OpUnrealizedConversionCast, []*ir.Value{v}, []ir.Type{t}).Result(0)
	r.pending[v] = c
	return c, nil
}

// OpError attributes err to op for diagnostics.
func (r *Rewriter) OpError(op *ir.Op, err error) error {
	return &OpError{Op: op, Err: err}
}

// commit inserts the staged ops and applies the replacement.
func (r *Rewriter) commit() error {
	if !r.done {
		return fmt.Errorf("pattern succeeded without replacing or erasing the op")
	}
	block := r.root.Block()
	block.InsertBefore(r.root, r.staged...)
	for v, c := range r.pending {
		r.casts[v] = c
	}
	if !r.erase {
		f := block.Parent()
		for i, res := range r.root.Results {
			f.ReplaceAllUsesWith(res, r.replacement[i])
		}
	}
	block.Erase(r.root)
	return nil
}

func funcOf(op *ir.Op) *ir.Func {
	if b := op.Block(); b != nil {
		return b.Parent()
	}
	return nil
}
