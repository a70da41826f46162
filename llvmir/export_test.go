package llvmir

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/llir/llvm/asm"

	"github.com/gogpu/gfxconv/convert"
	"github.com/gogpu/gfxconv/ir"
	"github.com/gogpu/gfxconv/syntax"
)

const kernel = `func.func @kernel(%buf: memref<?x4xf32>, %i: i32, %j: i32, %v: vector<2xf16>) {
  "amdgpu.lds_barrier"() : () -> ()
  %0 = "amdgpu.raw_buffer_load"(%buf, %i, %j) {boundsCheck = true, operandSegmentSizes = array<i32: 1, 2, 0>} : (memref<?x4xf32>, i32, i32) -> f32
  "amdgpu.raw_buffer_atomic_fadd"(%0, %buf, %j, %i) {boundsCheck = true, operandSegmentSizes = array<i32: 1, 1, 2, 0>} : (f32, memref<?x4xf32>, i32, i32) -> ()
  "func.return"() : () -> ()
}
func.func @pack(%buf: memref<8xf16>, %i: i32, %v: vector<2xf16>) {
  "amdgpu.raw_buffer_store"(%v, %buf, %i) {boundsCheck = true, indexOffset = 2 : i32, operandSegmentSizes = array<i32: 1, 1, 1, 0>} : (vector<2xf16>, memref<8xf16>, i32) -> ()
  "func.return"() : () -> ()
}
`

func lowered(t *testing.T, src string) *ir.Module {
	t.Helper()
	m, err := syntax.Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	p, err := convert.New(convert.Options{
		Chipset: "gfx90a",
		Logger:  slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(m); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return m
}

func TestExportString(t *testing.T) {
	out, err := ExportString(lowered(t, kernel))
	if err != nil {
		t.Fatalf("ExportString() error = %v", err)
	}

	for _, want := range []string{
		"define void @kernel({ i8*, i8*, i64, [2 x i64], [2 x i64] } %buf, i32 %i, i32 %j, <2 x half> %v)",
		"define void @pack(",
		`call void asm sideeffect "s_waitcnt lgkmcnt(0)`,
		"ptrtoint i8* ",
		"insertelement <4 x i32>",
		"call i64 @llvm.umax.i64(i64 ",
		"declare float @llvm.amdgcn.raw.buffer.load.f32(<4 x i32>",
		"declare float @llvm.amdgcn.raw.buffer.atomic.fadd.f32(float",
		"call void @llvm.amdgcn.raw.buffer.store.i32(i32 ",
		"bitcast <2 x half> %v to i32",
		"ret void",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if n := strings.Count(out, "declare i64 @llvm.umax.i64"); n != 1 {
		t.Errorf("umax declared %d times, want once", n)
	}
}

func TestExport_Reparses(t *testing.T) {
	out, err := ExportString(lowered(t, kernel))
	if err != nil {
		t.Fatal(err)
	}
	m, err := asm.ParseString("kernel.ll", out)
	if err != nil {
		t.Fatalf("exported IR does not parse: %v\n%s", err, out)
	}

	defined := 0
	for _, f := range m.Funcs {
		if len(f.Blocks) > 0 {
			defined++
		}
	}
	if defined != 2 {
		t.Errorf("got %d function definitions, want 2", defined)
	}
}

func TestExport_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unlowered op",
			src: `func.func @f(%buf: memref<4xf32>, %i: i32) {
  %0 = "amdgpu.raw_buffer_load"(%buf, %i) {operandSegmentSizes = array<i32: 1, 1, 0>} : (memref<4xf32>, i32) -> f32
}`,
			want: `unsupported op "amdgpu.raw_buffer_load"`,
		},
		{
			name: "bf16",
			src:  `func.func @f(%x: bf16) { }`,
			want: "no LLVM type for bf16",
		},
		{
			name: "cast of a computed value",
			src: `func.func @f(%x: i32) {
  %0 = "llvm.mlir.undef"() : () -> memref<4xf32>
  %1 = "builtin.unrealized_conversion_cast"(%0) : (memref<4xf32>) -> !llvm.struct<(ptr, ptr, i64, array<1 x i64>, array<1 x i64>)>
}`,
			want: "cannot export conversion cast",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := syntax.Parse(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			_, err = Export(m)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Export() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestExport_ImplicitReturn(t *testing.T) {
	m := &ir.Module{Funcs: []*ir.Func{ir.NewFunc("empty", ir.I32)}}
	out, err := ExportString(m)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "define void @empty(i32 %arg0)") || !strings.Contains(out, "ret void") {
		t.Errorf("output:\n%s", out)
	}
}
