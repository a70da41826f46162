// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package convert

import (
	"errors"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gogpu/gfxconv/amdgpu"
	"github.com/gogpu/gfxconv/ir"
	"github.com/gogpu/gfxconv/llvm"
	"github.com/gogpu/gfxconv/rewrite"
	"github.com/gogpu/gfxconv/rocdl"
	"github.com/gogpu/gfxconv/syntax"
)

const barrierAndLoad = `func.func @k(%buf: memref<8xi32>, %i: i32) {
  "amdgpu.lds_barrier"() : () -> ()
  %0 = "amdgpu.raw_buffer_load"(%buf, %i) {boundsCheck = false, operandSegmentSizes = array<i32: 1, 1, 0>} : (memref<8xi32>, i32) -> i32
  "func.return"() : () -> ()
}
`

var _ = Describe("Pass", func() {
	var (
		mockCtrl     *gomock.Controller
		mockListener *MockListener
		module       *ir.Module
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mockListener = NewMockListener(mockCtrl)

		var err error
		module, err = syntax.Parse(barrierAndLoad)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	newPass := func(chipset string) *Pass {
		p, err := New(Options{Chipset: chipset, Logger: quietLogger(), Listener: mockListener})
		Expect(err).NotTo(HaveOccurred())
		return p
	}

	It("should reject a malformed chipset", func() {
		_, err := New(Options{Chipset: "gfx9"})

		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, InvalidChipsetString)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring(`invalid chipset name "gfx9"`))
	})

	It("should default the width limits", func() {
		p, err := New(Options{Chipset: "gfx90a"})

		Expect(err).NotTo(HaveOccurred())
		Expect(p.limits).To(Equal(DefaultWidthLimits()))
		Expect(p.Chipset()).To(Equal(amdgpu.Chipset{Major: 9, Minor: 0x0a}))
		Expect(DefaultOptions().Chipset).To(Equal(DefaultChipset))
	})

	It("should notify the listener of every rewrite", func() {
		f := module.Funcs[0]
		barrier, load := f.Body.Ops[0], f.Body.Ops[1]

		gomock.InOrder(
			mockListener.EXPECT().OpErased(barrier),
			mockListener.EXPECT().
				OpReplaced(load, gomock.Any()).
				Do(func(op *ir.Op, values []*ir.Value) {
					Expect(values).To(HaveLen(1))
					Expect(values[0].DefiningOp().Name).To(Equal(rocdl.OpRawBufferLoad))
				}),
		)

		res, err := newPass("gfx1030").Run(module)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Converted).To(Equal(map[string]int{
			amdgpu.OpLDSBarrier:    1,
			amdgpu.OpRawBufferLoad: 1,
		}))
		Expect(res.Diagnostics).To(BeEmpty())
	})

	It("should encode the disabled bounds check on RDNA", func() {
		mockListener.EXPECT().OpErased(gomock.Any())
		mockListener.EXPECT().OpReplaced(gomock.Any(), gomock.Any())

		_, err := newPass("gfx1030").Run(module)
		Expect(err).NotTo(HaveOccurred())

		var word3 *ir.Op
		for _, op := range module.Funcs[0].Body.Ops {
			if op.Name != llvm.OpInsertElement {
				continue
			}
			lane, _ := op.Operand(2).DefiningOp().Attrs.Int(llvm.AttrValue)
			if lane == 3 {
				word3 = op.Operand(1).DefiningOp()
			}
		}
		Expect(word3).NotTo(BeNil())
		v, ok := word3.Attrs.Int(llvm.AttrValue)
		Expect(ok).To(BeTrue())
		Expect(uint32(v)).To(Equal(DescriptorWord3(amdgpu.MustParseChipset("gfx1030"), false)))
		Expect(uint32(v) >> 28 & 0x3).To(Equal(uint32(2)))
	})

	It("should report a pre-GCN target and keep the load", func() {
		f := module.Funcs[0]
		load := f.Body.Ops[1]

		mockListener.EXPECT().OpErased(gomock.Any())
		mockListener.EXPECT().
			MatchFailed(load, gomock.Any(), gomock.Any()).
			Do(func(_ *ir.Op, p rewrite.Pattern, err error) {
				Expect(p.RootName()).To(Equal(amdgpu.OpRawBufferLoad))
				Expect(errors.Is(err, UnsupportedGeneration)).To(BeTrue())
			})

		res, err := newPass("gfx803").Run(module)

		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, UnsupportedGeneration)).To(BeTrue())
		kind, ok := KindOf(err)
		Expect(ok).To(BeTrue())
		Expect(kind).To(Equal(ErrUnsupportedGeneration))

		Expect(f.Body.Ops).To(ContainElement(load))
		Expect(res.Failed).To(HaveKeyWithValue(amdgpu.OpRawBufferLoad, 1))
		Expect(res.Diagnostics.Errors()).To(HaveLen(2))
	})
})

var _ = Describe("Target", func() {
	It("should accept only llvm and rocdl ops", func() {
		t := Target()

		Expect(t.Legality(ir.NewOp(llvm.OpAdd, nil, nil, nil))).To(Equal(rewrite.Legal))
		Expect(t.Legality(ir.NewOp(rocdl.OpRawBufferStore, nil, nil, nil))).To(Equal(rewrite.Legal))
		Expect(t.Legality(ir.NewOp(ir.OpUnrealizedConversionCast, nil, nil, nil))).To(Equal(rewrite.Legal))
		Expect(t.Legality(ir.NewOp(amdgpu.OpLDSBarrier, nil, nil, nil))).To(Equal(rewrite.Illegal))
		Expect(t.Legality(ir.NewOp("arith.addi", nil, nil, nil))).To(Equal(rewrite.Unknown))
	})
})

var _ = Describe("Populate", func() {
	It("should register one rule per amdgpu op", func() {
		set := rewrite.NewPatternSet()
		Populate(set, amdgpu.MustParseChipset("gfx908"), DefaultWidthLimits())

		Expect(set.Len()).To(Equal(4))
		Expect(set.RootNames()).To(ConsistOf(
			amdgpu.OpLDSBarrier,
			amdgpu.OpRawBufferLoad,
			amdgpu.OpRawBufferStore,
			amdgpu.OpRawBufferAtomicFAdd,
		))
		for _, p := range set.For(amdgpu.OpRawBufferStore) {
			Expect(p.(*RawBufferRule).Intrinsic).To(Equal(rocdl.OpRawBufferStore))
		}
	})
})
