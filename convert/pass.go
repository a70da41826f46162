// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package convert

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/gogpu/gfxconv/amdgpu"
	"github.com/gogpu/gfxconv/ir"
	"github.com/gogpu/gfxconv/llvm"
	"github.com/gogpu/gfxconv/rewrite"
	"github.com/gogpu/gfxconv/rocdl"
)

// DefaultChipset is the chipset used when none is configured.
const DefaultChipset = "gfx000"

// Options configures the pass.
type Options struct {
	// Chipset names the target, e.g. "gfx90a" or "gfx1030".
	Chipset string

	// Limits bounds the data width of one buffer access.
	Limits WidthLimits

	// Logger receives engine progress. Nil means slog.Default().
	Logger *slog.Logger

	// Listener, if set, observes every rewrite.
	Listener rewrite.Listener
}

// DefaultOptions returns the default pass options.
func DefaultOptions() Options {
	return Options{
		Chipset: DefaultChipset,
		Limits:  DefaultWidthLimits(),
	}
}

// Pass lowers amdgpu ops to rocdl intrinsics and LLVM dialect ops.
type Pass struct {
	chipset  amdgpu.Chipset
	limits   WidthLimits
	logger   *slog.Logger
	listener rewrite.Listener
}

// New parses the configured chipset and returns a ready pass.
func New(opts Options) (*Pass, error) {
	chipset, err := amdgpu.ParseChipset(opts.Chipset)
	if err != nil {
		return nil, errors.WithStack(Errorf(ErrInvalidChipsetString, "invalid chipset name %q: %v", opts.Chipset, err))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pass{
		chipset:  chipset,
		limits:   opts.Limits.orDefault(),
		logger:   logger,
		listener: opts.Listener,
	}, nil
}

// Chipset returns the parsed target chipset.
func (p *Pass) Chipset() amdgpu.Chipset { return p.chipset }

// Populate adds the amdgpu lowering rules to set.
func Populate(set *rewrite.PatternSet, chipset amdgpu.Chipset, limits WidthLimits) {
	set.Add(BarrierRule{})
	set.Add(RawBufferRules(chipset, limits)...)
}

// Target returns the conversion target: LLVM and ROCDL ops are legal,
// amdgpu ops must all be converted.
func Target() *rewrite.Target {
	t := rewrite.NewTarget()
	t.AddLegalDialect(llvm.Dialect, rocdl.Dialect)
	t.AddLegalOp(ir.OpUnrealizedConversionCast)
	t.AddIllegalDialect(amdgpu.Dialect)
	return t
}

// Run converts m in place. On error m may be partially converted and the
// result's diagnostics describe every failure.
func (p *Pass) Run(m *ir.Module) (*rewrite.Result, error) {
	set := rewrite.NewPatternSet()
	Populate(set, p.chipset, p.limits)

	p.logger.Debug("running amdgpu to rocdl conversion",
		"chipset", p.chipset.String(), "patterns", set.Len())
	res, err := rewrite.ApplyPartialConversion(m, Target(), set, llvm.TypeConverter{}, rewrite.Config{
		Logger:   p.logger,
		Listener: p.listener,
	})
	if err != nil {
		return res, errors.Wrapf(err, "convert-amdgpu-to-rocdl (chipset %s)", p.chipset)
	}
	return res, nil
}
