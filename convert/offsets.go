// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package convert

import (
	"math"

	"github.com/gogpu/gfxconv/ir"
	"github.com/gogpu/gfxconv/llvm"
)

// offsets is the byte addressing of one access: voffset varies per lane,
// soffset is uniform.
type offsets struct {
	voffset *ir.Value
	soffset *ir.Value
}

// offsetInputs are the per-access parts of the address.
type offsetInputs struct {
	indices     []*ir.Value
	indexOffset *int32
	sgprOffset  *ir.Value
}

// synthesizeOffsets emits
//
//	voffset = sum(index[i] * stride[i] * byteWidth) + indexOffset*byteWidth
//	soffset = sgprOffset + viewOffset*byteWidth
//
// Dynamic strides and offsets are read from the descriptor and truncated to
// i32. Missing terms become the constant 0.
func synthesizeOffsets(b ir.OpBuilder, v viewInfo, in offsetInputs) offsets {
	var voffset *ir.Value
	accumulate := func(term *ir.Value) {
		if voffset == nil {
			voffset = term
			return
		}
		voffset = llvm.Add(b, voffset, term)
	}

	for i, index := range in.indices {
		accumulate(llvm.Mul(b, index, byteStride(b, v, i)))
	}
	if in.indexOffset != nil {
		accumulate(llvm.ConstI32(b, int32(int64(*in.indexOffset)*v.byteWidth)))
	}
	if voffset == nil {
		voffset = llvm.ConstI32(b, 0)
	}

	soffset := in.sgprOffset
	if soffset == nil {
		soffset = llvm.ConstI32(b, 0)
	}
	// View offsets count elements, so both forms are scaled to bytes.
	switch {
	case v.offset == ir.Dynamic:
		viewOffset := llvm.Trunc(b, v.desc.Offset(b), ir.I32)
		viewOffset = llvm.Mul(b, viewOffset, llvm.ConstI32(b, int32(v.byteWidth)))
		soffset = llvm.Add(b, viewOffset, soffset)
	case v.offset > 0:
		soffset = llvm.Add(b, soffset, llvm.ConstI32(b, int32(v.offset*v.byteWidth)))
	}
	return offsets{voffset: voffset, soffset: soffset}
}

// byteStride returns the stride of dimension i in bytes, as an i32.
func byteStride(b ir.OpBuilder, v viewInfo, i int) *ir.Value {
	if v.strides[i] != ir.Dynamic {
		return llvm.ConstI32(b, int32(v.strides[i]*v.byteWidth))
	}
	stride := llvm.Trunc(b, v.desc.Stride(b, i), ir.I32)
	return llvm.Mul(b, stride, llvm.ConstI32(b, int32(v.byteWidth)))
}

// checkStaticOffsets rejects compile-time byte offsets and strides that do
// not fit the 32-bit offset operands. Values up to 2^32-1 are kept since
// the offset arithmetic wraps at 32 bits.
func checkStaticOffsets(strides []int64, offset, byteWidth int64, indexOffset *int32) error {
	check := func(what string, elems int64) error {
		if elems == ir.Dynamic {
			return nil
		}
		if elems > math.MaxUint32/byteWidth || elems < math.MinInt32/byteWidth {
			return Errorf(ErrOffsetOverflow, "%s of %d elements is not addressable with 32-bit byte offsets", what, elems)
		}
		return nil
	}
	for _, s := range strides {
		if err := check("stride", s); err != nil {
			return err
		}
	}
	if err := check("view offset", offset); err != nil {
		return err
	}
	if indexOffset != nil {
		return check("indexOffset", int64(*indexOffset))
	}
	return nil
}
