package ir

import (
	"math"
	"strconv"
	"strings"
)

// Dynamic marks a memref dimension, stride or offset that is only known at
// runtime. It prints as "?".
const Dynamic int64 = math.MinInt64

// Type represents a type in the IR.
type Type interface {
	typ()
	String() string
}

// IntegerType is a signless integer of the given bit width.
type IntegerType struct {
	Width uint32
}

func (IntegerType) typ() {}

func (t IntegerType) String() string {
	return "i" + strconv.FormatUint(uint64(t.Width), 10)
}

// FloatKind selects a floating point format.
type FloatKind uint8

const (
	F16 FloatKind = iota
	BF16
	F32
	F64
)

// FloatType is an IEEE (or bfloat) floating point type.
type FloatType struct {
	Kind FloatKind
}

func (FloatType) typ() {}

// Width returns the float width in bits.
func (t FloatType) Width() uint32 {
	switch t.Kind {
	case F16, BF16:
		return 16
	case F32:
		return 32
	default:
		return 64
	}
}

func (t FloatType) String() string {
	switch t.Kind {
	case F16:
		return "f16"
	case BF16:
		return "bf16"
	case F32:
		return "f32"
	default:
		return "f64"
	}
}

// IndexType is the target-sized integer used for sizes and strides.
type IndexType struct{}

func (IndexType) typ() {}

func (IndexType) String() string { return "index" }

// VectorType is a one-dimensional vector of scalars.
type VectorType struct {
	Len  uint32
	Elem Type
}

func (VectorType) typ() {}

func (t VectorType) String() string {
	return "vector<" + strconv.FormatUint(uint64(t.Len), 10) + "x" + t.Elem.String() + ">"
}

// Layout describes how memref indices map to element offsets.
type Layout interface {
	layout()
	String() string
}

// StridedLayout is an affine layout: offset + sum(index[i] * strides[i]).
// Entries equal to Dynamic are runtime values held in the memref descriptor.
type StridedLayout struct {
	Strides []int64
	Offset  int64
}

func (*StridedLayout) layout() {}

func (l *StridedLayout) String() string {
	var sb strings.Builder
	sb.WriteString("strided<[")
	for i, s := range l.Strides {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(formatDim(s))
	}
	sb.WriteString("]")
	if l.Offset != 0 {
		sb.WriteString(", offset: ")
		sb.WriteString(formatDim(l.Offset))
	}
	sb.WriteString(">")
	return sb.String()
}

// OpaqueLayout is a layout map the IR keeps verbatim and does not analyse.
type OpaqueLayout struct {
	Text string
}

func (*OpaqueLayout) layout() {}

func (l *OpaqueLayout) String() string { return "affine_map<" + l.Text + ">" }

// MemRefType is a multi-dimensional view over memory.
type MemRefType struct {
	Shape  []int64
	Elem   Type
	Layout Layout // nil means the identity (row-major contiguous) layout
}

func (MemRefType) typ() {}

func (t MemRefType) String() string {
	var sb strings.Builder
	sb.WriteString("memref<")
	for _, d := range t.Shape {
		sb.WriteString(formatDim(d))
		sb.WriteByte('x')
	}
	sb.WriteString(t.Elem.String())
	if t.Layout != nil {
		sb.WriteString(", ")
		sb.WriteString(t.Layout.String())
	}
	sb.WriteByte('>')
	return sb.String()
}

// Rank returns the number of dimensions.
func (t MemRefType) Rank() int { return len(t.Shape) }

// HasStaticShape reports whether every dimension size is known.
func (t MemRefType) HasStaticShape() bool {
	for _, d := range t.Shape {
		if d == Dynamic {
			return false
		}
	}
	return true
}

// NumElements returns the element count of a statically shaped memref.
func (t MemRefType) NumElements() int64 {
	n := int64(1)
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// ElementBitWidth returns the bit width of the element type.
func (t MemRefType) ElementBitWidth() uint32 {
	return BitWidth(t.Elem)
}

// StridesAndOffset returns the strides (in elements) and the element offset
// of the memref. It reports false when the layout is not a strided layout.
//
// For the identity layout, strides are the suffix products of the shape; once
// a dynamic size has been crossed every outer stride is Dynamic.
func (t MemRefType) StridesAndOffset() ([]int64, int64, bool) {
	switch l := t.Layout.(type) {
	case nil:
		strides := make([]int64, len(t.Shape))
		running := int64(1)
		for i := len(t.Shape) - 1; i >= 0; i-- {
			strides[i] = running
			if running == Dynamic || t.Shape[i] == Dynamic {
				running = Dynamic
			} else {
				running *= t.Shape[i]
			}
		}
		return strides, 0, true
	case *StridedLayout:
		if len(l.Strides) != len(t.Shape) {
			return nil, 0, false
		}
		strides := make([]int64, len(l.Strides))
		copy(strides, l.Strides)
		return strides, l.Offset, true
	default:
		return nil, 0, false
	}
}

// PointerType is an opaque LLVM pointer.
type PointerType struct {
	AddrSpace uint32
}

func (PointerType) typ() {}

func (t PointerType) String() string {
	if t.AddrSpace == 0 {
		return "!llvm.ptr"
	}
	return "!llvm.ptr<" + strconv.FormatUint(uint64(t.AddrSpace), 10) + ">"
}

// StructType is an LLVM literal struct.
type StructType struct {
	Fields []Type
}

func (StructType) typ() {}

func (t StructType) String() string {
	return "!llvm.struct<(" + joinNested(t.Fields) + ")>"
}

// ArrayType is an LLVM array.
type ArrayType struct {
	Len  uint64
	Elem Type
}

func (ArrayType) typ() {}

func (t ArrayType) String() string {
	return "!llvm.array<" + strconv.FormatUint(t.Len, 10) + " x " + nested(t.Elem) + ">"
}

// nested prints a type in the position of an LLVM aggregate member, where the
// "!llvm." prefix is elided.
func nested(t Type) string {
	return strings.TrimPrefix(t.String(), "!llvm.")
}

func joinNested(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = nested(t)
	}
	return strings.Join(parts, ", ")
}

func formatDim(d int64) string {
	if d == Dynamic {
		return "?"
	}
	return strconv.FormatInt(d, 10)
}

// Common types.
var (
	I1   Type = IntegerType{Width: 1}
	I8   Type = IntegerType{Width: 8}
	I16  Type = IntegerType{Width: 16}
	I32  Type = IntegerType{Width: 32}
	I64  Type = IntegerType{Width: 64}
	F16T Type = FloatType{Kind: F16}
	F32T Type = FloatType{Kind: F32}
	Ptr  Type = PointerType{}
)

// BitWidth returns the width in bits of scalar and vector types, and zero for
// every other type.
func BitWidth(t Type) uint32 {
	switch t := t.(type) {
	case IntegerType:
		return t.Width
	case FloatType:
		return t.Width()
	case IndexType:
		return 64
	case VectorType:
		return t.Len * BitWidth(t.Elem)
	default:
		return 0
	}
}

// Vector returns vector<n x elem>.
func Vector(n uint32, elem Type) Type {
	return VectorType{Len: n, Elem: elem}
}

// Int returns the integer type of the given width.
func Int(width uint32) Type {
	return IntegerType{Width: width}
}
