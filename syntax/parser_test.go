package syntax

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gfxconv/ir"
)

const kernelSource = `func.func @kernel(%buf: memref<4x4xf32>, %i: i32, %j: i32, %v: vector<2xf16>, %h: memref<?x8xf16, strided<[?, 1], offset: ?>>) {
  %0 = "amdgpu.raw_buffer_load"(%buf, %i, %j) {boundsCheck = true, operandSegmentSizes = array<i32: 1, 2, 0>} : (memref<4x4xf32>, i32, i32) -> f32
  "amdgpu.raw_buffer_atomic_fadd"(%0, %buf, %i, %j, %i) {boundsCheck = false, indexOffset = 3 : i32, operandSegmentSizes = array<i32: 1, 1, 2, 1>} : (f32, memref<4x4xf32>, i32, i32, i32) -> ()
  "amdgpu.raw_buffer_store"(%v, %h, %i, %j) {boundsCheck = true, operandSegmentSizes = array<i32: 1, 1, 2, 0>} : (vector<2xf16>, memref<?x8xf16, strided<[?, 1], offset: ?>>, i32, i32) -> ()
  "amdgpu.lds_barrier"() : () -> ()
  "func.return"() : () -> ()
}
`

func TestParse_RoundTrip(t *testing.T) {
	m, err := Parse(kernelSource)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := ir.Print(m); got != kernelSource {
		t.Errorf("Print(Parse(x)) =\n%s\nwant:\n%s", got, kernelSource)
	}
}

func TestParse_Structure(t *testing.T) {
	m, err := ParseFile("k.mlir", kernelSource)
	if err != nil {
		t.Fatal(err)
	}
	f := m.Func("kernel")
	if f == nil {
		t.Fatal("function @kernel not found")
	}
	if len(f.Args()) != 5 || f.Arg(0).Name != "buf" {
		t.Fatalf("args = %v", f.Args())
	}
	mt, ok := f.Arg(4).Type.(ir.MemRefType)
	if !ok {
		t.Fatalf("arg 4 type = %T", f.Arg(4).Type)
	}
	l, ok := mt.Layout.(*ir.StridedLayout)
	if !ok || l.Offset != ir.Dynamic || l.Strides[0] != ir.Dynamic || l.Strides[1] != 1 {
		t.Errorf("layout = %v", mt.Layout)
	}

	load := f.Body.Ops[0]
	if load.Name != "amdgpu.raw_buffer_load" || load.Operand(0) != f.Arg(0) {
		t.Errorf("first op = %s", load)
	}
	if load.Loc.File != "k.mlir" || load.Loc.Line != 2 || load.Loc.Column != 3 {
		t.Errorf("load location = %s", load.Loc)
	}
	atomic := f.Body.Ops[1]
	if atomic.Operand(0) != load.Result(0) {
		t.Error("atomic should consume the load result")
	}
	if n, ok := atomic.Attrs.Int("indexOffset"); !ok || n != 3 {
		t.Errorf("indexOffset = %d, %v", n, ok)
	}
	if seg, ok := atomic.Attrs.Array("operandSegmentSizes"); !ok || len(seg) != 4 || seg[3] != 1 {
		t.Errorf("operandSegmentSizes = %v", seg)
	}
}

func TestParse_ModuleWrapper(t *testing.T) {
	src := "module {\n" + kernelSource + "}\n"
	m, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Funcs) != 1 {
		t.Errorf("got %d functions, want 1", len(m.Funcs))
	}
}

func TestParse_Types(t *testing.T) {
	tests := []string{
		"!llvm.ptr",
		"!llvm.ptr<7>",
		"!llvm.struct<(ptr, ptr, i64, array<2 x i64>, array<2 x i64>)>",
		"memref<f32>",
		"memref<4xf32, affine_map<(d0) -> (d0 floordiv 2)>>",
		"vector<4xi32>",
		"bf16",
		"index",
	}
	for _, typ := range tests {
		t.Run(typ, func(t *testing.T) {
			src := "func.func @f(%x: " + typ + ") {\n  \"func.return\"() : () -> ()\n}\n"
			m, err := Parse(src)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := m.Funcs[0].Arg(0).Type.String(); got != typ {
				t.Errorf("type = %s, want %s", got, typ)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{
			name:    "undefined value",
			source:  `func.func @f() { "x.y"(%a) : (i32) -> () }`,
			wantMsg: "use of undefined value %a",
		},
		{
			name:    "operand type mismatch",
			source:  `func.func @f(%a: i32) { "x.y"(%a) : (f32) -> () }`,
			wantMsg: "has type i32, but the signature says f32",
		},
		{
			name:    "result count",
			source:  `func.func @f(%a: i32) { %0, %1 = "x.y"(%a) : (i32) -> i32 }`,
			wantMsg: "defines 2 values but its type lists 1 results",
		},
		{
			name:    "redefinition",
			source:  `func.func @f(%a: i32) { %a = "x.y"() : () -> i32 }`,
			wantMsg: "redefinition of value %a",
		},
		{
			name:    "unknown type",
			source:  `func.func @f(%a: tensor) { }`,
			wantMsg: `unknown type "tensor"`,
		},
		{
			name:    "float dense array",
			source:  `func.func @f() { "x.y"() {a = array<f32: 1>} : () -> () }`,
			wantMsg: "dense arrays hold integers",
		},
		{
			name:    "not a function",
			source:  `"x.y"() : () -> ()`,
			wantMsg: "expected 'func.func'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			if err == nil {
				t.Fatal("expected error")
			}
			var errs SourceErrors
			if !errors.As(err, &errs) || len(errs) == 0 {
				t.Fatalf("error type = %T, want SourceErrors", err)
			}
			if !strings.Contains(errs[0].Message, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestParse_RecoversAfterError(t *testing.T) {
	src := `func.func @bad(%a: i32) { "x.y"(%b) : (i32) -> () }
func.func @worse() { %0 = "x.y"() : () -> tensor }
func.func @good() { "func.return"() : () -> () }`
	m, err := Parse(src)
	var errs SourceErrors
	if !errors.As(err, &errs) || len(errs) != 2 {
		t.Fatalf("err = %v, want 2 errors", err)
	}
	if m.Func("good") == nil {
		t.Error("parser should recover and parse @good")
	}
	if errs[1].Loc.Line != 2 {
		t.Errorf("second error on line %d, want 2", errs[1].Loc.Line)
	}
	if ctx := errs[0].FormatWithContext(); !strings.Contains(ctx, "^") {
		t.Errorf("FormatWithContext() missing caret:\n%s", ctx)
	}
}

func TestParse_LexerError(t *testing.T) {
	_, err := Parse(`func.func @f() { "unterminated }`)
	var serr *SourceError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v (%T), want a wrapped *SourceError", err, err)
	}
}

func TestParseFile_ErrorsNameTheFile(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "parser",
			source: "func.func @f() {\n  %0 = \"x\"( : () -> i32\n}\n",
			want:   "kernel.mlir:2:13: ",
		},
		{
			name:   "lexer",
			source: "func.func @f() {\n  \"x.y\n}\n",
			want:   "kernel.mlir:2:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile("kernel.mlir", tt.source)
			var serr *SourceError
			if !errors.As(err, &serr) {
				t.Fatalf("err = %v (%T), want a *SourceError", err, err)
			}
			if !strings.HasPrefix(serr.Error(), tt.want) {
				t.Errorf("Error() = %q, want prefix %q", serr.Error(), tt.want)
			}
			if serr.Loc.File != "kernel.mlir" {
				t.Errorf("Loc.File = %q, want kernel.mlir", serr.Loc.File)
			}

			ctx := serr.FormatWithContext()
			if !strings.HasPrefix(ctx, tt.want+"error: ") {
				t.Errorf("FormatWithContext() header:\n%s", ctx)
			}
			lines := strings.Split(ctx, "\n")
			if len(lines) != 3 || !strings.HasSuffix(lines[2], "^") {
				t.Fatalf("FormatWithContext() = %q, want header, source line and caret", ctx)
			}
			if caret := strings.Index(lines[2], "^"); caret != 2+serr.Loc.Column-1 {
				t.Errorf("caret at %d, want under column %d:\n%s", caret, serr.Loc.Column, ctx)
			}
		})
	}
}

func TestSourceError_Format(t *testing.T) {
	unlocated := &SourceError{Message: "empty input"}
	if got := unlocated.Error(); got != "empty input" {
		t.Errorf("Error() = %q", got)
	}
	if got := unlocated.FormatWithContext(); got != "error: empty input" {
		t.Errorf("FormatWithContext() = %q", got)
	}

	tabbed := &SourceError{
		Loc:     ir.Location{Line: 2, Column: 3},
		Message: "bad",
		Source:  "a\n\tx y\n",
	}
	want := "2:3: error: bad\n  \tx y\n  \t ^"
	if got := tabbed.FormatWithContext(); got != want {
		t.Errorf("FormatWithContext() = %q, want %q", got, want)
	}

	errs := SourceErrors{unlocated, tabbed}
	if got := errs.Error(); got != "empty input\n2:3: bad" {
		t.Errorf("SourceErrors.Error() = %q", got)
	}
	if !strings.Contains(errs.FormatAll(), "2:3: error: bad") {
		t.Errorf("FormatAll() = %q", errs.FormatAll())
	}
}
