// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package amdgpu defines the hardware-agnostic AMDGPU dialect: raw buffer
// memory operations over memrefs and the LDS workgroup barrier.
package amdgpu

import (
	"github.com/pkg/errors"

	"github.com/gogpu/gfxconv/ir"
)

// Dialect is the op name prefix of this dialect.
const Dialect = "amdgpu"

// Op names.
const (
	OpRawBufferLoad        = "amdgpu.raw_buffer_load"
	OpRawBufferStore       = "amdgpu.raw_buffer_store"
	OpRawBufferAtomicFAdd  = "amdgpu.raw_buffer_atomic_fadd"
	OpLDSBarrier           = "amdgpu.lds_barrier"
	AttrBoundsCheck        = "boundsCheck"
	AttrIndexOffset        = "indexOffset"
	AttrOperandSegmentSize = "operandSegmentSizes"
)

// RawBufferKind distinguishes the three raw buffer operations.
type RawBufferKind uint8

const (
	RawBufferLoad RawBufferKind = iota
	RawBufferStore
	RawBufferAtomicFAdd
)

// String returns the op name of the kind.
func (k RawBufferKind) String() string {
	switch k {
	case RawBufferLoad:
		return OpRawBufferLoad
	case RawBufferStore:
		return OpRawBufferStore
	default:
		return OpRawBufferAtomicFAdd
	}
}

// HasValue reports whether the op writes a value operand.
func (k RawBufferKind) HasValue() bool { return k != RawBufferLoad }

// KindOf returns the raw buffer kind of an op name.
func KindOf(name string) (RawBufferKind, bool) {
	switch name {
	case OpRawBufferLoad:
		return RawBufferLoad, true
	case OpRawBufferStore:
		return RawBufferStore, true
	case OpRawBufferAtomicFAdd:
		return RawBufferAtomicFAdd, true
	default:
		return 0, false
	}
}

// RawBufferOp is a typed view of a raw buffer load, store or atomic add.
//
// Operands are laid out as (value?, memref, indices..., sgprOffset?) and
// described by the operandSegmentSizes attribute.
type RawBufferOp struct {
	Op   *ir.Op
	Kind RawBufferKind

	// Value is the data written by stores and atomics; nil for loads.
	Value *ir.Value
	// MemRef is the accessed view.
	MemRef *ir.Value
	// Indices holds one i32 index per memref dimension.
	Indices []*ir.Value
	// SGPROffset is an optional uniform byte offset.
	SGPROffset *ir.Value
	// IndexOffset is an optional static element offset added to the indices.
	IndexOffset *int32
	// BoundsCheck requests hardware bounds checking (default true).
	BoundsCheck bool
}

// MemRefType returns the type of the accessed memref; ok is false when the
// operand is not a memref.
func (r RawBufferOp) MemRefType() (ir.MemRefType, bool) {
	mt, ok := r.MemRef.Type.(ir.MemRefType)
	return mt, ok
}

// DataType returns the logical type moved by the op: the written value's
// type for stores and atomics, the result type for loads.
func (r RawBufferOp) DataType() ir.Type {
	if r.Kind.HasValue() {
		return r.Value.Type
	}
	return r.Op.Result(0).Type
}

// AsRawBufferOp decodes a raw buffer op. It fails if op is not one of the
// three raw buffer ops or its operand segments are inconsistent.
func AsRawBufferOp(op *ir.Op) (RawBufferOp, error) {
	kind, ok := KindOf(op.Name)
	if !ok {
		return RawBufferOp{}, errors.Errorf("%q is not a raw buffer op", op.Name)
	}
	segments, ok := op.Attrs.Array(AttrOperandSegmentSize)
	if !ok {
		return RawBufferOp{}, errors.Errorf("%s: missing %s", op.Name, AttrOperandSegmentSize)
	}

	want := 3
	if kind.HasValue() {
		want = 4
	}
	if len(segments) != want {
		return RawBufferOp{}, errors.Errorf("%s: %s has %d entries, want %d",
			op.Name, AttrOperandSegmentSize, len(segments), want)
	}
	total := int64(0)
	for _, s := range segments {
		if s < 0 {
			return RawBufferOp{}, errors.Errorf("%s: negative operand segment", op.Name)
		}
		total += s
	}
	if total != int64(len(op.Operands)) {
		return RawBufferOp{}, errors.Errorf("%s: operand segments cover %d operands, op has %d",
			op.Name, total, len(op.Operands))
	}

	r := RawBufferOp{Op: op, Kind: kind, BoundsCheck: true}
	pos := 0
	if kind.HasValue() {
		if segments[0] != 1 {
			return RawBufferOp{}, errors.Errorf("%s: expected exactly one value operand", op.Name)
		}
		r.Value = op.Operand(pos)
		pos++
		segments = segments[1:]
	}
	if segments[0] != 1 {
		return RawBufferOp{}, errors.Errorf("%s: expected exactly one memref operand", op.Name)
	}
	r.MemRef = op.Operand(pos)
	pos++
	r.Indices = op.Operands[pos : pos+int(segments[1])]
	pos += int(segments[1])
	switch segments[2] {
	case 0:
	case 1:
		r.SGPROffset = op.Operand(pos)
	default:
		return RawBufferOp{}, errors.Errorf("%s: at most one sgprOffset operand", op.Name)
	}

	if b, ok := op.Attrs.Bool(AttrBoundsCheck); ok {
		r.BoundsCheck = b
	}
	if off, ok := op.Attrs.Int(AttrIndexOffset); ok {
		v := int32(off)
		r.IndexOffset = &v
	}
	return r, nil
}

// RawBufferOptions carries the optional parts of a raw buffer op.
type RawBufferOptions struct {
	SGPROffset  *ir.Value
	IndexOffset *int32
	// NoBoundsCheck clears the boundsCheck attribute.
	NoBoundsCheck bool
}

func (o RawBufferOptions) attrs(segments []int64) []ir.NamedAttr {
	attrs := []ir.NamedAttr{{Name: AttrBoundsCheck, Value: ir.BoolAttr(!o.NoBoundsCheck)}}
	if o.IndexOffset != nil {
		attrs = append(attrs, ir.NamedAttr{Name: AttrIndexOffset, Value: ir.IntegerAttr{Value: int64(*o.IndexOffset), Type: ir.I32}})
	}
	return append(attrs, ir.NamedAttr{Name: AttrOperandSegmentSize, Value: ir.I32Array(segments...)})
}

func (o RawBufferOptions) tail() ([]*ir.Value, int64) {
	if o.SGPROffset == nil {
		return nil, 0
	}
	return []*ir.Value{o.SGPROffset}, 1
}

// BuildRawBufferLoad creates a load of resultType from memref at indices.
func BuildRawBufferLoad(b ir.OpBuilder, resultType ir.Type, memref *ir.Value, indices []*ir.Value, opts RawBufferOptions) *ir.Op {
	tail, n := opts.tail()
	operands := append(append([]*ir.Value{memref}, indices...), tail...)
	return b.Create(OpRawBufferLoad, operands, []ir.Type{resultType},
		opts.attrs([]int64{1, int64(len(indices)), n})...)
}

// BuildRawBufferStore creates a store of value into memref at indices.
func BuildRawBufferStore(b ir.OpBuilder, value, memref *ir.Value, indices []*ir.Value, opts RawBufferOptions) *ir.Op {
	return buildWrite(b, OpRawBufferStore, value, memref, indices, opts)
}

// BuildRawBufferAtomicFAdd creates an atomic floating point add of value
// into memref at indices.
func BuildRawBufferAtomicFAdd(b ir.OpBuilder, value, memref *ir.Value, indices []*ir.Value, opts RawBufferOptions) *ir.Op {
	return buildWrite(b, OpRawBufferAtomicFAdd, value, memref, indices, opts)
}

func buildWrite(b ir.OpBuilder, name string, value, memref *ir.Value, indices []*ir.Value, opts RawBufferOptions) *ir.Op {
	tail, n := opts.tail()
	operands := append(append([]*ir.Value{value, memref}, indices...), tail...)
	return b.Create(name, operands, nil, opts.attrs([]int64{1, 1, int64(len(indices)), n})...)
}

// BuildLDSBarrier creates a workgroup barrier.
func BuildLDSBarrier(b ir.OpBuilder) *ir.Op {
	return b.Create(OpLDSBarrier, nil, nil)
}
