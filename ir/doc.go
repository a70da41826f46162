// Package ir defines the intermediate representation for gfxconv.
//
// The IR is a small generic SSA form in the spirit of MLIR's generic
// operation syntax:
//   - Dialect-agnostic: every operation is a named Op with operands, results
//     and attributes, so source ops (amdgpu.*) and target ops (llvm.*,
//     rocdl.*) coexist in one function during a partial conversion
//   - Typed: values carry builtin types (integers, floats, vectors, memrefs)
//     or LLVM types (pointers, structs, arrays)
//   - Printable: Print emits a textual form the syntax package parses back
//
// # Structure
//
// A Module holds Funcs. Each Func has a single Block whose arguments are the
// function parameters and whose Ops execute in order. Builders implement
// OpBuilder; the rewrite engine provides a staging implementation.
//
// # Memrefs
//
// MemRefType describes a strided multi-dimensional view. StridesAndOffset
// recovers the affine (stride, offset) form of identity and strided
// layouts; Dynamic marks sizes, strides and offsets known only at runtime.
package ir
