package ir

import (
	"fmt"
	"strings"
)

// Module is a translation unit: an ordered list of functions.
type Module struct {
	Funcs []*Func
}

// Func returns the function with the given name, or nil.
func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Location is a source position used for diagnostics.
type Location struct {
	File   string
	Line   int
	Column int
}

// IsKnown reports whether the location carries a line.
func (l Location) IsKnown() bool { return l.Line > 0 }

func (l Location) String() string {
	if !l.IsKnown() {
		return "loc(unknown)"
	}
	if l.File != "" {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Func is a function with a single body block.
type Func struct {
	Name string
	Body *Block
	Loc  Location
}

// NewFunc creates a function whose body block has arguments of the given types.
func NewFunc(name string, argTypes ...Type) *Func {
	f := &Func{Name: name}
	f.Body = &Block{parent: f}
	for i, t := range argTypes {
		f.Body.Args = append(f.Body.Args, &Value{Type: t, index: i, block: f.Body})
	}
	return f
}

// Args returns the function arguments.
func (f *Func) Args() []*Value { return f.Body.Args }

// Arg returns the i-th function argument.
func (f *Func) Arg(i int) *Value { return f.Body.Args[i] }

// Walk calls fn for every op in order. It stops early when fn returns false.
func (f *Func) Walk(fn func(*Op) bool) {
	for _, op := range f.Body.Ops {
		if !fn(op) {
			return
		}
	}
}

// Uses returns the ops that use v as an operand.
func (f *Func) Uses(v *Value) []*Op {
	var uses []*Op
	for _, op := range f.Body.Ops {
		for _, o := range op.Operands {
			if o == v {
				uses = append(uses, op)
				break
			}
		}
	}
	return uses
}

// ReplaceAllUsesWith rewrites every operand equal to from into to.
func (f *Func) ReplaceAllUsesWith(from, to *Value) {
	for _, op := range f.Body.Ops {
		for i, o := range op.Operands {
			if o == from {
				op.Operands[i] = to
			}
		}
	}
}

// Block is an ordered list of operations with typed arguments.
type Block struct {
	Args   []*Value
	Ops    []*Op
	parent *Func
}

// Parent returns the function owning the block.
func (b *Block) Parent() *Func { return b.parent }

// Index returns the position of op in the block, or -1.
func (b *Block) Index(op *Op) int {
	for i, o := range b.Ops {
		if o == op {
			return i
		}
	}
	return -1
}

// Append adds ops at the end of the block.
func (b *Block) Append(ops ...*Op) {
	for _, op := range ops {
		op.parent = b
	}
	b.Ops = append(b.Ops, ops...)
}

// InsertBefore inserts ops immediately before anchor. A nil anchor appends.
func (b *Block) InsertBefore(anchor *Op, ops ...*Op) {
	if len(ops) == 0 {
		return
	}
	idx := len(b.Ops)
	if anchor != nil {
		idx = b.Index(anchor)
		if idx < 0 {
			panic("ir: insertion anchor is not in block")
		}
	}
	for _, op := range ops {
		op.parent = b
	}
	tail := append([]*Op{}, b.Ops[idx:]...)
	b.Ops = append(append(b.Ops[:idx], ops...), tail...)
}

// Erase removes op from the block.
func (b *Block) Erase(op *Op) {
	idx := b.Index(op)
	if idx < 0 {
		return
	}
	b.Ops = append(b.Ops[:idx], b.Ops[idx+1:]...)
	op.parent = nil
}

// Value is an SSA value: a block argument or an op result.
type Value struct {
	Type Type
	// Name is an optional printing hint for block arguments.
	Name string

	def   *Op
	block *Block
	index int
}

// DefiningOp returns the op producing the value, or nil for block arguments.
func (v *Value) DefiningOp() *Op { return v.def }

// IsArgument reports whether v is a block argument.
func (v *Value) IsArgument() bool { return v.def == nil }

// ArgNumber returns the block argument position, or the result position for
// op results.
func (v *Value) ArgNumber() int { return v.index }

// Op is a generic operation identified by its "dialect.name".
type Op struct {
	Name     string
	Operands []*Value
	Results  []*Value
	Attrs    Attributes
	Loc      Location

	parent *Block
}

// NewOp creates a detached op with fresh result values of the given types.
func NewOp(name string, operands []*Value, resultTypes []Type, attrs Attributes) *Op {
	op := &Op{
		Name:     name,
		Operands: operands,
		Attrs:    attrs,
	}
	for i, t := range resultTypes {
		op.Results = append(op.Results, &Value{Type: t, def: op, index: i})
	}
	return op
}

// Dialect returns the namespace before the first dot.
func (op *Op) Dialect() string {
	if i := strings.IndexByte(op.Name, '.'); i >= 0 {
		return op.Name[:i]
	}
	return ""
}

// Block returns the enclosing block, or nil when detached.
func (op *Op) Block() *Block { return op.parent }

// Result returns the i-th result.
func (op *Op) Result(i int) *Value { return op.Results[i] }

// Operand returns the i-th operand.
func (op *Op) Operand(i int) *Value { return op.Operands[i] }

// ResultTypes returns the result types.
func (op *Op) ResultTypes() []Type {
	ts := make([]Type, len(op.Results))
	for i, r := range op.Results {
		ts[i] = r.Type
	}
	return ts
}

// OperandTypes returns the operand types.
func (op *Op) OperandTypes() []Type {
	ts := make([]Type, len(op.Operands))
	for i, o := range op.Operands {
		ts[i] = o.Type
	}
	return ts
}

func (op *Op) String() string {
	return PrintOp(op)
}
