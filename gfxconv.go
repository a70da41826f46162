// Package gfxconv lowers AMDGPU raw buffer operations to ROCDL intrinsics.
//
// Input is generic-form IR text holding amdgpu ops over memrefs. The
// conversion rewrites every amdgpu.raw_buffer_{load,store,atomic_fadd}
// into the matching rocdl.raw.buffer intrinsic, building the 128-bit buffer
// resource descriptor and byte offsets inline, and every amdgpu.lds_barrier
// into inline assembly. The result can be printed as IR or exported as
// LLVM IR.
//
// Example usage:
//
//	source := `
//	func.func @store(%v: f32, %buf: memref<16xf32>, %i: i32) {
//	  "amdgpu.raw_buffer_store"(%v, %buf, %i) {boundsCheck = true, operandSegmentSizes = array<i32: 1, 1, 1, 0>} : (f32, memref<16xf32>, i32) -> ()
//	  "func.return"() : () -> ()
//	}
//	`
//	llvmIR, err := gfxconv.Compile(source, gfxconv.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For finer control, use the convert and llvmir packages directly:
//
//	module, _ := gfxconv.Parse(source)
//	pass, _ := convert.New(convert.Options{Chipset: "gfx90a"})
//	_, err := pass.Run(module)
package gfxconv

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/gfxconv/amdgpu"
	"github.com/gogpu/gfxconv/convert"
	"github.com/gogpu/gfxconv/ir"
	"github.com/gogpu/gfxconv/llvmir"
	"github.com/gogpu/gfxconv/rewrite"
	"github.com/gogpu/gfxconv/syntax"
)

// Options configures the conversion pipeline.
type Options struct {
	// Chipset is the target GPU, e.g. "gfx90a" (default: gfx000)
	Chipset string `yaml:"chipset"`

	// MaxBits is the widest buffer access in bits (default: 128)
	MaxBits uint32 `yaml:"max_bits"`

	// WordBits is the packing word size in bits (default: 32)
	WordBits uint32 `yaml:"word_bits"`

	// Validate enables IR validation before conversion
	Validate bool `yaml:"validate"`

	// Logger receives pipeline progress. Nil means slog.Default().
	Logger *slog.Logger `yaml:"-"`
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	limits := convert.DefaultWidthLimits()
	return Options{
		Chipset:  convert.DefaultChipset,
		MaxBits:  limits.MaxBits,
		WordBits: limits.WordBits,
		Validate: true,
	}
}

// LoadOptions reads YAML options from r on top of DefaultOptions. Unknown
// keys are rejected.
//
//	chipset: gfx1030
//	max_bits: 128
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, errors.Wrap(err, "reading options")
	}
	return opts, nil
}

func (o Options) passOptions() convert.Options {
	return convert.Options{
		Chipset: o.Chipset,
		Limits:  convert.WidthLimits{MaxBits: o.MaxBits, WordBits: o.WordBits},
		Logger:  o.Logger,
	}
}

// Parse parses IR text into a module.
func Parse(source string) (*ir.Module, error) {
	return syntax.Parse(source)
}

// Validate checks module structure and the amdgpu op invariants.
//
// Returns a slice of validation errors. If the slice is empty, validation passed.
func Validate(module *ir.Module) ([]ir.ValidationError, error) {
	return ir.NewValidator(amdgpu.Verifiers()).Validate(module)
}

// Convert lowers the amdgpu ops of module in place.
func Convert(module *ir.Module, opts Options) (*rewrite.Result, error) {
	if opts.Validate {
		validationErrors, err := Validate(module)
		if err != nil {
			return nil, errors.Wrap(err, "validation error")
		}
		if len(validationErrors) > 0 {
			return nil, errors.Wrap(&validationErrors[0], "validation failed")
		}
	}
	pass, err := convert.New(opts.passOptions())
	if err != nil {
		return nil, err
	}
	return pass.Run(module)
}

// Compile parses source, converts it and returns LLVM IR text.
//
// The compilation pipeline is:
//  1. Parse IR text
//  2. Validate (if enabled)
//  3. Convert amdgpu ops to rocdl and llvm ops
//  4. Export LLVM IR
func Compile(source string, opts Options) (string, error) {
	module, err := Parse(source)
	if err != nil {
		return "", errors.Wrap(err, "parse error")
	}
	if _, err := Convert(module, opts); err != nil {
		return "", err
	}
	out, err := llvmir.ExportString(module)
	if err != nil {
		return "", errors.Wrap(err, "LLVM IR export error")
	}
	return out, nil
}
