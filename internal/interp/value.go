package interp

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gfxconv/ir"
)

// Value is a runtime value. Scalars have one lane, vectors one lane per
// element; structs and arrays hold Fields.
type Value struct {
	Lanes  []uint64
	Fields []Value
}

// Int returns a scalar value.
func Int(v uint64) Value { return Value{Lanes: []uint64{v}} }

// Vec returns a vector value.
func Vec(lanes ...uint64) Value { return Value{Lanes: lanes} }

// Struct returns an aggregate value.
func Struct(fields ...Value) Value { return Value{Fields: fields} }

// Scalar returns the single lane of a scalar value.
func (v Value) Scalar() uint64 {
	if len(v.Lanes) == 0 {
		return 0
	}
	return v.Lanes[0]
}

// MemRef returns the lowered descriptor of a memref whose data starts at
// base: {base, base, offset, sizes, strides}. sizes and strides are in
// elements.
func MemRef(base uint64, offset int64, sizes, strides []int64) Value {
	fields := []Value{Int(base), Int(base), Int(uint64(offset))}
	if len(sizes) > 0 {
		fields = append(fields, array(sizes), array(strides))
	}
	return Struct(fields...)
}

func array(xs []int64) Value {
	fs := make([]Value, len(xs))
	for i, x := range xs {
		fs[i] = Int(uint64(x))
	}
	return Struct(fs...)
}

// zero returns the zero value of t.
func zero(t ir.Type) Value {
	switch t := t.(type) {
	case ir.VectorType:
		return Value{Lanes: make([]uint64, t.Len)}
	case ir.StructType:
		fs := make([]Value, len(t.Fields))
		for i, f := range t.Fields {
			fs[i] = zero(f)
		}
		return Struct(fs...)
	case ir.ArrayType:
		fs := make([]Value, t.Len)
		for i := range fs {
			fs[i] = zero(t.Elem)
		}
		return Struct(fs...)
	default:
		return Int(0)
	}
}

func mask(v uint64, width uint32) uint64 {
	if width >= 64 {
		return v
	}
	return v & (1<<width - 1)
}

// laneWidth returns the bit width of one lane of t.
func laneWidth(t ir.Type) uint32 {
	if v, ok := t.(ir.VectorType); ok {
		return ir.BitWidth(v.Elem)
	}
	if _, ok := t.(ir.PointerType); ok {
		return 64
	}
	return ir.BitWidth(t)
}

// toBytes serializes a scalar or vector little-endian, lane 0 first.
func toBytes(v Value, t ir.Type) ([]byte, error) {
	w := laneWidth(t)
	if w == 0 || w%8 != 0 {
		return nil, fmt.Errorf("cannot serialize %s", t)
	}
	n := int(w / 8)
	out := make([]byte, 0, n*len(v.Lanes))
	var buf [8]byte
	for _, l := range v.Lanes {
		binary.LittleEndian.PutUint64(buf[:], l)
		out = append(out, buf[:n]...)
	}
	return out, nil
}

// fromBytes is the inverse of toBytes.
func fromBytes(b []byte, t ir.Type) (Value, error) {
	w := laneWidth(t)
	if w == 0 || w%8 != 0 {
		return Value{}, fmt.Errorf("cannot deserialize %s", t)
	}
	n := int(w / 8)
	lanes := 1
	if vt, ok := t.(ir.VectorType); ok {
		lanes = int(vt.Len)
	}
	if len(b) != n*lanes {
		return Value{}, fmt.Errorf("%d bytes do not hold %s", len(b), t)
	}
	v := Value{Lanes: make([]uint64, lanes)}
	var buf [8]byte
	for i := range lanes {
		clear(buf[:])
		copy(buf[:], b[i*n:(i+1)*n])
		v.Lanes[i] = binary.LittleEndian.Uint64(buf[:])
	}
	return v, nil
}
