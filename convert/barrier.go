// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package convert

import (
	"github.com/gogpu/gfxconv/amdgpu"
	"github.com/gogpu/gfxconv/ir"
	"github.com/gogpu/gfxconv/llvm"
	"github.com/gogpu/gfxconv/rewrite"
)

// LDSBarrierAsm waits for outstanding LDS accesses, then synchronizes the
// workgroup.
const LDSBarrierAsm = "s_waitcnt lgkmcnt(0)\ns_barrier"

// BarrierRule lowers amdgpu.lds_barrier to inline assembly.
type BarrierRule struct{}

// RootName implements rewrite.Pattern.
func (BarrierRule) RootName() string { return amdgpu.OpLDSBarrier }

// MatchAndRewrite implements rewrite.Pattern.
func (BarrierRule) MatchAndRewrite(op *ir.Op, r *rewrite.Rewriter) error {
	llvm.InlineAsm(r, LDSBarrierAsm, "", true)
	return r.EraseOp(op)
}
