// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package convert

import (
	"github.com/gogpu/gfxconv/ir"
)

// WidthLimits bounds the data a single buffer intrinsic can move.
type WidthLimits struct {
	// MaxBits is the widest total data width, in bits.
	MaxBits uint32
	// WordBits is the register word size sub-word vectors are packed into.
	WordBits uint32
}

// DefaultWidthLimits returns the limits of gfx9 and gfx10: 128-bit
// operations packed into 32-bit words.
func DefaultWidthLimits() WidthLimits {
	return WidthLimits{MaxBits: 128, WordBits: 32}
}

func (l WidthLimits) orDefault() WidthLimits {
	if l.MaxBits == 0 || l.WordBits == 0 {
		return DefaultWidthLimits()
	}
	return l
}

// Classify returns the type that carries t through a buffer intrinsic.
//
// Scalars and vectors with word-sized or wider elements pass unchanged.
// Vectors of narrower elements are packed: into a single integer when they
// fit in one word, otherwise into a vector of words.
func Classify(t ir.Type, limits WidthLimits) (ir.Type, error) {
	limits = limits.orDefault()
	vec, ok := t.(ir.VectorType)
	if !ok {
		return t, nil
	}

	elemBits := ir.BitWidth(vec.Elem)
	total := elemBits * vec.Len
	if total > limits.MaxBits {
		return nil, Errorf(ErrWidthExceeded,
			"%s is %d bits, buffer operations move at most %d", t, total, limits.MaxBits)
	}
	if elemBits >= limits.WordBits {
		return t, nil
	}
	if total <= limits.WordBits {
		return ir.Int(total), nil
	}
	if total%limits.WordBits != 0 {
		return nil, Errorf(ErrUnrepresentable,
			"%s is %d bits, not a multiple of %d", t, total, limits.WordBits)
	}
	return ir.Vector(total/limits.WordBits, ir.Int(limits.WordBits)), nil
}
