// Package rocdl defines the ROCDL dialect: AMDGPU hardware intrinsics in
// the form LLVM's AMDGPU backend consumes them.
package rocdl

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/gogpu/gfxconv/ir"
)

// Dialect is the op name prefix of this dialect.
const Dialect = "rocdl"

// Raw buffer intrinsic ops. Every one takes
// (data?, rsrc vector<4xi32>, voffset i32, soffset i32, aux i32).
const (
	OpRawBufferLoad       = "rocdl.raw.buffer.load"
	OpRawBufferStore      = "rocdl.raw.buffer.store"
	OpRawBufferAtomicFAdd = "rocdl.raw.buffer.atomic.fadd"
)

// Operand counts of the raw buffer intrinsics.
const (
	NumLoadOperands  = 4
	NumWriteOperands = 5
)

var intrinsicBase = map[string]string{
	OpRawBufferLoad:       "llvm.amdgcn.raw.buffer.load",
	OpRawBufferStore:      "llvm.amdgcn.raw.buffer.store",
	OpRawBufferAtomicFAdd: "llvm.amdgcn.raw.buffer.atomic.fadd",
}

// IsRawBufferOp reports whether name is one of the raw buffer intrinsics.
func IsRawBufferOp(name string) bool {
	_, ok := intrinsicBase[name]
	return ok
}

// IntrinsicName returns the overloaded LLVM intrinsic name for op moving
// data of type t, e.g. llvm.amdgcn.raw.buffer.load.v4i32.
func IntrinsicName(op string, t ir.Type) (string, error) {
	base, ok := intrinsicBase[op]
	if !ok {
		return "", errors.Errorf("%q is not a raw buffer intrinsic", op)
	}
	suffix, err := MangleType(t)
	if err != nil {
		return "", err
	}
	return base + "." + suffix, nil
}

// MangleType returns the LLVM intrinsic overload suffix of t.
func MangleType(t ir.Type) (string, error) {
	switch t := t.(type) {
	case ir.IntegerType, ir.FloatType:
		return t.String(), nil
	case ir.VectorType:
		elem, err := MangleType(t.Elem)
		if err != nil {
			return "", err
		}
		return "v" + strconv.FormatUint(uint64(t.Len), 10) + elem, nil
	default:
		return "", errors.Errorf("type %s has no intrinsic mangling", t)
	}
}

// DataType returns the type moved by a raw buffer intrinsic: the result
// type of a load, the first operand's type otherwise.
func DataType(op *ir.Op) ir.Type {
	if op.Name == OpRawBufferLoad {
		return op.Result(0).Type
	}
	return op.Operand(0).Type
}
