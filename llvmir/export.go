// Package llvmir exports lowered modules as LLVM IR.
//
// Only modules in the LLVM and ROCDL dialects can be exported: the output of
// the amdgpu conversion, plus func.return and arith.constant. Memref
// arguments are passed as their descriptor structs.
package llvmir

import (
	"fmt"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/gogpu/gfxconv/ir"
	"github.com/gogpu/gfxconv/llvm"
	"github.com/gogpu/gfxconv/rocdl"
)

// Export translates m into an LLVM module.
func Export(m *ir.Module) (*llir.Module, error) {
	e := &exporter{
		module: llir.NewModule(),
		types:  ir.NewTypeCache[types.Type](),
		decls:  make(map[string]*llir.Func),
	}
	for _, f := range m.Funcs {
		if err := e.exportFunc(f); err != nil {
			return nil, errors.Wrapf(err, "exporting @%s", f.Name)
		}
	}
	return e.module, nil
}

// ExportString returns the textual LLVM IR of m.
func ExportString(m *ir.Module) (string, error) {
	out, err := Export(m)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

type exporter struct {
	module *llir.Module
	types  *ir.TypeCache[types.Type]
	decls  map[string]*llir.Func

	// per function
	values map[*ir.Value]value.Value
	block  *llir.Block
}

func (e *exporter) exportFunc(f *ir.Func) error {
	params := make([]*llir.Param, len(f.Args()))
	for i, arg := range f.Args() {
		t, err := e.typeOf(arg.Type)
		if err != nil {
			return errors.Wrapf(err, "argument %d", i)
		}
		name := arg.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		params[i] = llir.NewParam(name, t)
	}

	fn := e.module.NewFunc(f.Name, types.Void, params...)
	e.block = fn.NewBlock("entry")
	e.values = make(map[*ir.Value]value.Value, len(params))
	for i, arg := range f.Args() {
		e.values[arg] = params[i]
	}

	terminated := false
	for _, op := range f.Body.Ops {
		if op.Name == ir.OpReturn {
			e.block.NewRet(nil)
			terminated = true
			break
		}
		if err := e.exportOp(op); err != nil {
			return errors.Wrapf(err, "at %s", op.Loc)
		}
	}
	if !terminated {
		e.block.NewRet(nil)
	}
	return nil
}

func (e *exporter) exportOp(op *ir.Op) error {
	if rocdl.IsRawBufferOp(op.Name) {
		return e.exportIntrinsic(op)
	}

	switch op.Name {
	case llvm.OpConstant, ir.OpArithConstant:
		return e.exportConstant(op)
	case llvm.OpUndef:
		t, err := e.typeOf(op.Result(0).Type)
		if err != nil {
			return err
		}
		e.values[op.Result(0)] = constant.NewUndef(t)
		return nil
	case ir.OpUnrealizedConversionCast:
		// Memref arguments already have their descriptor type.
		in := op.Operand(0)
		if _, ok := in.Type.(ir.MemRefType); !ok || !in.IsArgument() {
			return fmt.Errorf("cannot export conversion cast of %s", in.Type)
		}
		e.values[op.Result(0)] = e.values[in]
		return nil
	case llvm.OpInlineAsm:
		return e.exportInlineAsm(op)
	}

	args, err := e.operands(op)
	if err != nil {
		return err
	}
	var resultType types.Type
	if len(op.Results) == 1 {
		if resultType, err = e.typeOf(op.Result(0).Type); err != nil {
			return err
		}
	}

	var v value.Value
	switch op.Name {
	case llvm.OpAdd:
		v = e.block.NewAdd(args[0], args[1])
	case llvm.OpMul:
		v = e.block.NewMul(args[0], args[1])
	case llvm.OpLShr:
		v = e.block.NewLShr(args[0], args[1])
	case llvm.OpAnd:
		v = e.block.NewAnd(args[0], args[1])
	case llvm.OpTrunc:
		v = e.block.NewTrunc(args[0], resultType)
	case llvm.OpPtrToInt:
		v = e.block.NewPtrToInt(args[0], resultType)
	case llvm.OpBitcast:
		v = e.block.NewBitCast(args[0], resultType)
	case llvm.OpInsertElement:
		v = e.block.NewInsertElement(args[0], args[1], args[2])
	case llvm.OpExtractValue:
		pos, ok := op.Attrs.Array(llvm.AttrPosition)
		if !ok {
			return fmt.Errorf("%s without %s", op.Name, llvm.AttrPosition)
		}
		v = e.block.NewExtractValue(args[0], lo.Map(pos, func(p int64, _ int) uint64 { return uint64(p) })...)
	case llvm.OpUMax:
		suffix, err := rocdl.MangleType(op.Result(0).Type)
		if err != nil {
			return err
		}
		v = e.block.NewCall(e.declare("llvm.umax."+suffix, resultType, resultType, resultType), args...)
	default:
		return fmt.Errorf("unsupported op %q", op.Name)
	}
	e.values[op.Result(0)] = v
	return nil
}

func (e *exporter) exportConstant(op *ir.Op) error {
	attr, ok := op.Attrs.Get(llvm.AttrValue)
	if !ok {
		return fmt.Errorf("%s without value", op.Name)
	}
	ia, ok := attr.(ir.IntegerAttr)
	if !ok {
		return fmt.Errorf("unsupported constant %s", attr)
	}
	t, err := e.typeOf(op.Result(0).Type)
	if err != nil {
		return err
	}
	it, ok := t.(*types.IntType)
	if !ok {
		return fmt.Errorf("integer constant of type %s", op.Result(0).Type)
	}
	e.values[op.Result(0)] = constant.NewInt(it, ia.Value)
	return nil
}

func (e *exporter) exportInlineAsm(op *ir.Op) error {
	asm, _ := op.Attrs.Text(llvm.AttrAsmString)
	constraints, _ := op.Attrs.Text(llvm.AttrConstraints)
	inline := llir.NewInlineAsm(types.NewPointer(types.NewFunc(types.Void)), asm, constraints)
	inline.SideEffect = op.Attrs.Has(llvm.AttrSideEffects)
	e.block.NewCall(inline)
	return nil
}

// exportIntrinsic emits a call to the overloaded buffer intrinsic. The
// atomic add returns the old value in LLVM; it is dropped.
func (e *exporter) exportIntrinsic(op *ir.Op) error {
	args, err := e.operands(op)
	if err != nil {
		return err
	}
	data := rocdl.DataType(op)
	name, err := rocdl.IntrinsicName(op.Name, data)
	if err != nil {
		return err
	}
	dataType, err := e.typeOf(data)
	if err != nil {
		return err
	}

	ret := types.Type(types.Void)
	if op.Name != rocdl.OpRawBufferStore {
		ret = dataType
	}
	params := lo.Map(args, func(a value.Value, _ int) types.Type { return a.Type() })
	call := e.block.NewCall(e.declare(name, ret, params...), args...)
	if len(op.Results) == 1 {
		e.values[op.Result(0)] = call
	}
	return nil
}

// declare returns the declaration of an external function, creating it on
// first use.
func (e *exporter) declare(name string, ret types.Type, params ...types.Type) *llir.Func {
	if f, ok := e.decls[name]; ok {
		return f
	}
	f := e.module.NewFunc(name, ret, lo.Map(params, func(t types.Type, _ int) *llir.Param {
		return llir.NewParam("", t)
	})...)
	e.decls[name] = f
	return f
}

func (e *exporter) operands(op *ir.Op) ([]value.Value, error) {
	args := make([]value.Value, len(op.Operands))
	for i, o := range op.Operands {
		v, ok := e.values[o]
		if !ok {
			return nil, fmt.Errorf("%s: operand %d is not defined", op.Name, i)
		}
		args[i] = v
	}
	return args, nil
}
