package llvm

import (
	"testing"

	"github.com/gogpu/gfxconv/ir"
)

func TestTypeConverter(t *testing.T) {
	tests := []struct {
		in      ir.Type
		want    string
		wantErr bool
	}{
		{ir.MemRefType{Shape: []int64{4, 4}, Elem: ir.F32T}, "!llvm.struct<(ptr, ptr, i64, array<2 x i64>, array<2 x i64>)>", false},
		{ir.MemRefType{Elem: ir.F32T}, "!llvm.struct<(ptr, ptr, i64)>", false},
		{ir.MemRefType{Shape: []int64{ir.Dynamic}, Elem: ir.I8, Layout: &ir.StridedLayout{Strides: []int64{ir.Dynamic}, Offset: ir.Dynamic}}, "!llvm.struct<(ptr, ptr, i64, array<1 x i64>, array<1 x i64>)>", false},
		{ir.MemRefType{Shape: []int64{4}, Elem: ir.F32T, Layout: &ir.OpaqueLayout{Text: "(d0) -> (d0 * 2)"}}, "", true},
		{ir.IndexType{}, "i64", false},
		{ir.Vector(4, ir.I32), "vector<4xi32>", false},
		{ir.Vector(2, ir.IndexType{}), "", true},
		{ir.F16T, "f16", false},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			got, err := TypeConverter{}.ConvertType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ConvertType() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("ConvertType() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMemRefDescriptor(t *testing.T) {
	mt := ir.MemRefType{Shape: []int64{4, 8}, Elem: ir.F32T}
	f := ir.NewFunc("f", DescriptorType(mt), ir.I32)
	b := ir.NewBuilder(f.Body)

	d, err := NewMemRefDescriptor(f.Arg(0))
	if err != nil {
		t.Fatal(err)
	}
	if d.Rank() != 2 {
		t.Fatalf("descriptor rank %d", d.Rank())
	}

	tests := []struct {
		name string
		v    *ir.Value
		typ  ir.Type
		pos  []int64
	}{
		{"allocated", d.AllocatedPtr(b), ir.Ptr, []int64{0}},
		{"aligned", d.AlignedPtr(b), ir.Ptr, []int64{1}},
		{"offset", d.Offset(b), ir.I64, []int64{2}},
		{"size 1", d.Size(b, 1), ir.I64, []int64{3, 1}},
		{"stride 0", d.Stride(b, 0), ir.I64, []int64{4, 0}},
	}
	for _, tt := range tests {
		op := tt.v.DefiningOp()
		if op.Name != OpExtractValue || op.Operand(0) != f.Arg(0) {
			t.Errorf("%s: defined by %s", tt.name, op)
			continue
		}
		if !ir.Equal(tt.v.Type, tt.typ) {
			t.Errorf("%s: type %s, want %s", tt.name, tt.v.Type, tt.typ)
		}
		pos, _ := op.Attrs.Array(AttrPosition)
		if len(pos) != len(tt.pos) || pos[0] != tt.pos[0] || pos[len(pos)-1] != tt.pos[len(tt.pos)-1] {
			t.Errorf("%s: position %v, want %v", tt.name, pos, tt.pos)
		}
	}

	if _, err := NewMemRefDescriptor(f.Arg(1)); err == nil {
		t.Error("i32 should not wrap as a descriptor")
	}
}

func TestInlineAsm(t *testing.T) {
	f := ir.NewFunc("f")
	b := ir.NewBuilder(f.Body)
	op := InlineAsm(b, "s_barrier", "", true)

	if s, _ := op.Attrs.Text(AttrAsmString); s != "s_barrier" {
		t.Errorf("asm_string = %q", s)
	}
	if d, _ := op.Attrs.Text(AttrAsmDialect); d != AsmDialectATT {
		t.Errorf("asm_dialect = %q", d)
	}
	if !op.Attrs.Has(AttrSideEffects) {
		t.Error("has_side_effects missing")
	}
	if len(op.Operands) != 0 || len(op.Results) != 0 {
		t.Error("inline asm should have no operands or results")
	}
}
