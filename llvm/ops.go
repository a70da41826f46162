// Package llvm defines the LLVM dialect ops the conversion emits, builder
// helpers for them, and the memref descriptor calling convention.
package llvm

import (
	"github.com/gogpu/gfxconv/ir"
)

// Dialect is the op name prefix of this dialect.
const Dialect = "llvm"

// Op names.
const (
	OpConstant      = "llvm.mlir.constant"
	OpUndef         = "llvm.mlir.undef"
	OpBitcast       = "llvm.bitcast"
	OpPtrToInt      = "llvm.ptrtoint"
	OpTrunc         = "llvm.trunc"
	OpLShr          = "llvm.lshr"
	OpAnd           = "llvm.and"
	OpAdd           = "llvm.add"
	OpMul           = "llvm.mul"
	OpUMax          = "llvm.intr.umax"
	OpInsertElement = "llvm.insertelement"
	OpExtractValue  = "llvm.extractvalue"
	OpInlineAsm     = "llvm.inline_asm"
	AttrValue       = "value"
	AttrPosition    = "position"
	AttrAsmString   = "asm_string"
	AttrConstraints = "constraints"
	AttrSideEffects = "has_side_effects"
	AttrAsmDialect  = "asm_dialect"
	AsmDialectATT   = "att"
)

// ConstInt creates an integer constant of type t.
func ConstInt(b ir.OpBuilder, t ir.Type, v int64) *ir.Value {
	return b.Create(OpConstant, nil, []ir.Type{t},
		ir.NamedAttr{Name: AttrValue, Value: ir.IntegerAttr{Value: v, Type: t}}).Result(0)
}

// ConstI32 creates an i32 constant.
func ConstI32(b ir.OpBuilder, v int32) *ir.Value {
	return ConstInt(b, ir.I32, int64(v))
}

// ConstI64 creates an i64 constant.
func ConstI64(b ir.OpBuilder, v int64) *ir.Value {
	return ConstInt(b, ir.I64, v)
}

// Undef creates an undefined value of type t.
func Undef(b ir.OpBuilder, t ir.Type) *ir.Value {
	return b.Create(OpUndef, nil, []ir.Type{t}).Result(0)
}

// BitCast reinterprets v as type t.
func BitCast(b ir.OpBuilder, v *ir.Value, t ir.Type) *ir.Value {
	return b.Create(OpBitcast, []*ir.Value{v}, []ir.Type{t}).Result(0)
}

// PtrToInt converts a pointer to an integer of type t.
func PtrToInt(b ir.OpBuilder, v *ir.Value, t ir.Type) *ir.Value {
	return b.Create(OpPtrToInt, []*ir.Value{v}, []ir.Type{t}).Result(0)
}

// Trunc truncates an integer to type t.
func Trunc(b ir.OpBuilder, v *ir.Value, t ir.Type) *ir.Value {
	return b.Create(OpTrunc, []*ir.Value{v}, []ir.Type{t}).Result(0)
}

// Binary creates a two-operand integer op whose result has x's type.
func Binary(b ir.OpBuilder, name string, x, y *ir.Value) *ir.Value {
	return b.Create(name, []*ir.Value{x, y}, []ir.Type{x.Type}).Result(0)
}

// Add returns x + y.
func Add(b ir.OpBuilder, x, y *ir.Value) *ir.Value { return Binary(b, OpAdd, x, y) }

// Mul returns x * y.
func Mul(b ir.OpBuilder, x, y *ir.Value) *ir.Value { return Binary(b, OpMul, x, y) }

// LShr returns x >> y (logical).
func LShr(b ir.OpBuilder, x, y *ir.Value) *ir.Value { return Binary(b, OpLShr, x, y) }

// And returns x & y.
func And(b ir.OpBuilder, x, y *ir.Value) *ir.Value { return Binary(b, OpAnd, x, y) }

// UMax returns the unsigned maximum of x and y.
func UMax(b ir.OpBuilder, x, y *ir.Value) *ir.Value { return Binary(b, OpUMax, x, y) }

// InsertElement returns vec with lane idx replaced by elem.
func InsertElement(b ir.OpBuilder, vec, elem, idx *ir.Value) *ir.Value {
	return b.Create(OpInsertElement, []*ir.Value{vec, elem, idx}, []ir.Type{vec.Type}).Result(0)
}

// ExtractValue reads the aggregate member at the given position.
func ExtractValue(b ir.OpBuilder, agg *ir.Value, t ir.Type, position ...int64) *ir.Value {
	return b.Create(OpExtractValue, []*ir.Value{agg}, []ir.Type{t},
		ir.NamedAttr{Name: AttrPosition, Value: ir.I64Array(position...)}).Result(0)
}

// InlineAsm emits an operand-less, result-less inline assembly block.
func InlineAsm(b ir.OpBuilder, asm, constraints string, sideEffects bool) *ir.Op {
	attrs := []ir.NamedAttr{
		{Name: AttrAsmString, Value: ir.StringAttr(asm)},
		{Name: AttrConstraints, Value: ir.StringAttr(constraints)},
		{Name: AttrAsmDialect, Value: ir.StringAttr(AsmDialectATT)},
	}
	if sideEffects {
		attrs = append(attrs, ir.NamedAttr{Name: AttrSideEffects, Value: ir.UnitAttr{}})
	}
	return b.Create(OpInlineAsm, nil, nil, attrs...)
}
