// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package convert

import (
	"github.com/gogpu/gfxconv/amdgpu"
	"github.com/gogpu/gfxconv/ir"
	"github.com/gogpu/gfxconv/llvm"
	"github.com/gogpu/gfxconv/rewrite"
	"github.com/gogpu/gfxconv/rocdl"
)

// RawBufferRule lowers one kind of amdgpu raw buffer op to the matching
// rocdl intrinsic. The same rule body serves loads, stores and atomics.
type RawBufferRule struct {
	// OpName is the amdgpu op to match.
	OpName string
	// Intrinsic is the rocdl op to emit.
	Intrinsic string
	Chipset   amdgpu.Chipset
	Limits    WidthLimits
}

// RawBufferRules returns the rules for all three raw buffer ops.
func RawBufferRules(chipset amdgpu.Chipset, limits WidthLimits) []rewrite.Pattern {
	return []rewrite.Pattern{
		&RawBufferRule{OpName: amdgpu.OpRawBufferLoad, Intrinsic: rocdl.OpRawBufferLoad, Chipset: chipset, Limits: limits},
		&RawBufferRule{OpName: amdgpu.OpRawBufferStore, Intrinsic: rocdl.OpRawBufferStore, Chipset: chipset, Limits: limits},
		&RawBufferRule{OpName: amdgpu.OpRawBufferAtomicFAdd, Intrinsic: rocdl.OpRawBufferAtomicFAdd, Chipset: chipset, Limits: limits},
	}
}

// RootName implements rewrite.Pattern.
func (p *RawBufferRule) RootName() string { return p.OpName }

// MatchAndRewrite implements rewrite.Pattern.
func (p *RawBufferRule) MatchAndRewrite(op *ir.Op, r *rewrite.Rewriter) error {
	rb, err := amdgpu.AsRawBufferOp(op)
	if err != nil {
		return WrapError(ErrInternalError, err, "decoding operands")
	}

	if !p.Chipset.SupportsRawBufferOps() {
		return Errorf(ErrUnsupportedGeneration,
			"raw buffer ops require GCN or higher, target is %s", p.Chipset)
	}

	mt, ok := rb.MemRefType()
	if !ok {
		return Errorf(ErrInternalError, "memref operand has type %s", rb.MemRef.Type)
	}
	strides, offset, ok := mt.StridesAndOffset()
	if !ok {
		return Errorf(ErrNonAffineView, "cannot lower non-strided memref %s", mt)
	}
	byteWidth := int64(mt.ElementBitWidth() / 8)
	if byteWidth == 0 {
		return Errorf(ErrInternalError, "element type %s is narrower than a byte", mt.Elem)
	}

	data := rb.DataType()
	transport, err := Classify(data, p.Limits)
	if err != nil {
		return err
	}

	if err := checkStaticOffsets(strides, offset, byteWidth, rb.IndexOffset); err != nil {
		return err
	}

	converted, err := r.Remap(rb.MemRef)
	if err != nil {
		return WrapError(ErrInternalError, err, "converting memref operand")
	}
	desc, err := llvm.NewMemRefDescriptor(converted)
	if err != nil {
		return WrapError(ErrInternalError, err, "reading memref descriptor")
	}
	view := viewInfo{typ: mt, desc: desc, strides: strides, offset: offset, byteWidth: byteWidth}

	var args []*ir.Value
	if rb.Kind.HasValue() {
		value := rb.Value
		if !ir.Equal(transport, data) {
			value = llvm.BitCast(r, value, transport)
		}
		args = append(args, value)
	}

	args = append(args, buildDescriptor(r, view, DescriptorWord3(p.Chipset, rb.BoundsCheck)))

	offs := synthesizeOffsets(r, view, offsetInputs{
		indices:     rb.Indices,
		indexOffset: rb.IndexOffset,
		sgprOffset:  rb.SGPROffset,
	})
	// aux: glc, slc, dlc and swizzle all clear
	args = append(args, offs.voffset, offs.soffset, llvm.ConstI32(r, 0))

	var resultTypes []ir.Type
	if len(op.Results) == 1 {
		resultTypes = []ir.Type{transport}
	}
	call := r.Create(p.Intrinsic, args, resultTypes)

	if len(call.Results) == 0 {
		return r.EraseOp(op)
	}
	result := call.Result(0)
	if !ir.Equal(transport, data) {
		result = llvm.BitCast(r, result, data)
	}
	return r.ReplaceOp(op, []*ir.Value{result})
}
