// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package amdgpu

import (
	"fmt"

	"github.com/gogpu/gfxconv/ir"
)

// Verifiers returns the op verifiers of the dialect, for ir.NewValidator.
func Verifiers() map[string]ir.OpVerifier {
	return map[string]ir.OpVerifier{
		OpRawBufferLoad:       verifyRawBuffer,
		OpRawBufferStore:      verifyRawBuffer,
		OpRawBufferAtomicFAdd: verifyRawBuffer,
		OpLDSBarrier:          verifyLDSBarrier,
	}
}

func verifyRawBuffer(op *ir.Op) error {
	r, err := AsRawBufferOp(op)
	if err != nil {
		return err
	}
	mt, ok := r.MemRefType()
	if !ok {
		return fmt.Errorf("memref operand has type %s", r.MemRef.Type)
	}
	if len(r.Indices) != mt.Rank() {
		return fmt.Errorf("expected %d indices for %s, got %d", mt.Rank(), mt, len(r.Indices))
	}
	for i, idx := range r.Indices {
		if !ir.Equal(idx.Type, ir.I32) {
			return fmt.Errorf("index %d has type %s, want i32", i, idx.Type)
		}
	}
	if r.SGPROffset != nil && !ir.Equal(r.SGPROffset.Type, ir.I32) {
		return fmt.Errorf("sgprOffset has type %s, want i32", r.SGPROffset.Type)
	}

	switch r.Kind {
	case RawBufferLoad:
		if len(op.Results) != 1 {
			return fmt.Errorf("load must have one result, has %d", len(op.Results))
		}
	case RawBufferStore:
		if len(op.Results) != 0 {
			return fmt.Errorf("store has no results")
		}
	case RawBufferAtomicFAdd:
		if len(op.Results) != 0 {
			return fmt.Errorf("atomic add has no results")
		}
		if !ir.Equal(r.Value.Type, ir.F32T) {
			return fmt.Errorf("atomic add value has type %s, want f32", r.Value.Type)
		}
	}

	data := r.DataType()
	if !sameElementType(data, mt.Elem) {
		return fmt.Errorf("data type %s does not match memref element type %s", data, mt.Elem)
	}
	return nil
}

// sameElementType accepts a scalar of the element type or a vector of it.
func sameElementType(data, elem ir.Type) bool {
	if v, ok := data.(ir.VectorType); ok {
		return ir.Equal(v.Elem, elem)
	}
	return ir.Equal(data, elem)
}

func verifyLDSBarrier(op *ir.Op) error {
	if len(op.Operands) != 0 || len(op.Results) != 0 {
		return fmt.Errorf("lds_barrier takes no operands and has no results")
	}
	return nil
}
