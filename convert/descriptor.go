// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package convert

import (
	"math"

	"github.com/gogpu/gfxconv/amdgpu"
	"github.com/gogpu/gfxconv/ir"
	"github.com/gogpu/gfxconv/llvm"
)

// Buffer resource descriptor layout, 4 x 32 bits:
//
//	bits   0-47   base address
//	bits  48-61   stride, 0 for raw buffers
//	bit   62      cache swizzle, 0
//	bit   63      swizzle enable, 0
//	bits  64-95   num records: addressable bytes
//	bits  96-127  word3, below
//
// word3:
//
//	bits  0-11   dst sel, ignored by raw buffer intrinsics
//	bits 12-14   number format, must be nonzero (7 = float)
//	bits 15-18   data format, must be nonzero (4 = 32 bit)
//	bit  24      reserved, 1 on gfx10
//	bits 28-29   out-of-bounds select on gfx10 (2 = none, 3 = check offset)
//	bits 30-31   type, 0
const (
	word3Format      uint32 = 7<<12 | 4<<15
	word3RDNAReserve uint32 = 1 << 24
	word3OOBShift           = 28

	oobNone        uint32 = 2
	oobCheckOffset uint32 = 3

	// addressHighMask keeps bits 32-47 of the base address; the bits above
	// would land in the stride and swizzle fields.
	addressHighMask uint32 = 0xffff
)

// DescriptorWord3 returns the control word of a buffer descriptor for c.
func DescriptorWord3(c amdgpu.Chipset, boundsCheck bool) uint32 {
	word3 := word3Format
	if c.HasRDNADescriptorBits() {
		oob := oobNone
		if boundsCheck {
			oob = oobCheckOffset
		}
		word3 |= word3RDNAReserve | oob<<word3OOBShift
	}
	return word3
}

// PackDescriptor lays out a descriptor for a known base address. It mirrors
// what buildDescriptor emits as IR.
func PackDescriptor(base uint64, numRecords, word3 uint32) [4]uint32 {
	return [4]uint32{
		uint32(base),
		uint32(base>>32) & addressHighMask,
		numRecords,
		word3,
	}
}

// viewInfo holds what the rule knows about the accessed memref.
type viewInfo struct {
	typ       ir.MemRefType
	desc      llvm.MemRefDescriptor
	strides   []int64
	offset    int64
	byteWidth int64
}

// maxNumRecords is the largest extent the 32-bit num records field holds.
const maxNumRecords = math.MaxUint32

// numRecordsStatic returns the byte size of a statically shaped view,
// clamped to maxNumRecords.
func (v viewInfo) numRecordsStatic() uint32 {
	n := v.typ.NumElements()
	if n > maxNumRecords/v.byteWidth {
		return maxNumRecords
	}
	return uint32(n * v.byteWidth)
}

// buildDescriptor emits the vector<4xi32> descriptor of v.
func buildDescriptor(b ir.OpBuilder, v viewInfo, word3 uint32) *ir.Value {
	desc := llvm.Undef(b, ir.Vector(4, ir.I32))

	ptr := llvm.PtrToInt(b, v.desc.AlignedPtr(b), ir.I64)
	low := llvm.Trunc(b, ptr, ir.I32)
	desc = llvm.InsertElement(b, desc, low, llvm.ConstI32(b, 0))

	high := llvm.Trunc(b, llvm.LShr(b, ptr, llvm.ConstI64(b, 32)), ir.I32)
	high = llvm.And(b, high, llvm.ConstI32(b, int32(addressHighMask)))
	desc = llvm.InsertElement(b, desc, high, llvm.ConstI32(b, 1))

	desc = llvm.InsertElement(b, desc, numRecords(b, v), llvm.ConstI32(b, 2))

	desc = llvm.InsertElement(b, desc, llvm.ConstI32(b, int32(word3)), llvm.ConstI32(b, 3))
	return desc
}

// numRecords returns the byte extent of v. Dynamic shapes take the largest
// size*stride over all dimensions, so any dimension order is covered.
func numRecords(b ir.OpBuilder, v viewInfo) *ir.Value {
	if v.typ.HasStaticShape() {
		return llvm.ConstI32(b, int32(v.numRecordsStatic()))
	}

	byteWidth := llvm.ConstI64(b, v.byteWidth)
	var extent *ir.Value
	for i := range v.desc.Rank() {
		stride := llvm.Mul(b, v.desc.Stride(b, i), byteWidth)
		dim := llvm.Mul(b, v.desc.Size(b, i), stride)
		if extent == nil {
			extent = dim
		} else {
			extent = llvm.UMax(b, extent, dim)
		}
	}
	return llvm.Trunc(b, extent, ir.I32)
}
