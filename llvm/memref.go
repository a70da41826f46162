package llvm

import (
	"github.com/pkg/errors"

	"github.com/gogpu/gfxconv/ir"
)

// Memref descriptor struct positions.
const (
	posAllocatedPtr = 0
	posAlignedPtr   = 1
	posOffset       = 2
	posSizes        = 3
	posStrides      = 4
)

// DescriptorType returns the LLVM struct a memref lowers to:
//
//	{ptr allocated, ptr aligned, i64 offset, [rank x i64] sizes, [rank x i64] strides}
//
// Rank-0 memrefs drop the two arrays.
func DescriptorType(t ir.MemRefType) ir.StructType {
	fields := []ir.Type{ir.Ptr, ir.Ptr, ir.I64}
	if r := t.Rank(); r > 0 {
		arr := ir.ArrayType{Len: uint64(r), Elem: ir.I64}
		fields = append(fields, arr, arr)
	}
	return ir.StructType{Fields: fields}
}

// TypeConverter maps builtin types to their LLVM-compatible form.
type TypeConverter struct{}

// ConvertType returns the LLVM type for t. Memrefs become descriptor
// structs, index becomes i64; integers, floats, vectors and LLVM types are
// already legal.
func (TypeConverter) ConvertType(t ir.Type) (ir.Type, error) {
	switch t := t.(type) {
	case ir.MemRefType:
		if _, _, ok := t.StridesAndOffset(); !ok {
			return nil, errors.Errorf("cannot convert non-strided %s", t)
		}
		return DescriptorType(t), nil
	case ir.IndexType:
		return ir.I64, nil
	case ir.IntegerType, ir.FloatType, ir.PointerType, ir.StructType, ir.ArrayType:
		return t, nil
	case ir.VectorType:
		if _, err := (TypeConverter{}).ConvertType(t.Elem); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, errors.Errorf("no LLVM type for %s", t)
	}
}

// MemRefDescriptor reads the fields of a lowered memref descriptor value.
type MemRefDescriptor struct {
	value *ir.Value
	rank  int
}

// NewMemRefDescriptor wraps a value of descriptor struct type.
func NewMemRefDescriptor(v *ir.Value) (MemRefDescriptor, error) {
	st, ok := v.Type.(ir.StructType)
	if !ok || (len(st.Fields) != 3 && len(st.Fields) != 5) {
		return MemRefDescriptor{}, errors.Errorf("%s is not a memref descriptor", v.Type)
	}
	rank := 0
	if len(st.Fields) == 5 {
		arr, ok := st.Fields[posSizes].(ir.ArrayType)
		if !ok {
			return MemRefDescriptor{}, errors.Errorf("%s is not a memref descriptor", v.Type)
		}
		rank = int(arr.Len)
	}
	return MemRefDescriptor{value: v, rank: rank}, nil
}

// Rank returns the memref rank.
func (d MemRefDescriptor) Rank() int { return d.rank }

// AllocatedPtr extracts the allocation base pointer.
func (d MemRefDescriptor) AllocatedPtr(b ir.OpBuilder) *ir.Value {
	return ExtractValue(b, d.value, ir.Ptr, posAllocatedPtr)
}

// AlignedPtr extracts the aligned data pointer.
func (d MemRefDescriptor) AlignedPtr(b ir.OpBuilder) *ir.Value {
	return ExtractValue(b, d.value, ir.Ptr, posAlignedPtr)
}

// Offset extracts the element offset.
func (d MemRefDescriptor) Offset(b ir.OpBuilder) *ir.Value {
	return ExtractValue(b, d.value, ir.I64, posOffset)
}

// Size extracts the size of dimension i.
func (d MemRefDescriptor) Size(b ir.OpBuilder, i int) *ir.Value {
	return ExtractValue(b, d.value, ir.I64, posSizes, int64(i))
}

// Stride extracts the stride (in elements) of dimension i.
func (d MemRefDescriptor) Stride(b ir.OpBuilder, i int) *ir.Value {
	return ExtractValue(b, d.value, ir.I64, posStrides, int64(i))
}
