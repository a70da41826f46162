// Package interp executes lowered functions against a flat byte memory.
//
// It understands the ops emitted by the amdgpu conversion and models the
// raw buffer intrinsics the way the hardware resolves them: the address is
// base + voffset + soffset, and accesses past num_records read zero and drop
// writes.
package interp

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/gogpu/gfxconv/ir"
	"github.com/gogpu/gfxconv/llvm"
	"github.com/gogpu/gfxconv/rocdl"
)

// Call records one intrinsic or inline assembly call.
type Call struct {
	Name string
	Args []Value
	// Asm is the assembly string of inline_asm calls.
	Asm string
}

// Machine holds memory and the calls made so far.
type Machine struct {
	Mem   map[uint64]byte
	Calls []Call
}

// New returns a machine with empty memory.
func New() *Machine {
	return &Machine{Mem: make(map[uint64]byte)}
}

// Write stores b at addr.
func (m *Machine) Write(addr uint64, b []byte) {
	for i, x := range b {
		m.Mem[addr+uint64(i)] = x
	}
}

// Read returns n bytes at addr; unset bytes read as zero.
func (m *Machine) Read(addr uint64, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = m.Mem[addr+uint64(i)]
	}
	return out
}

// WriteF32 stores float32 values from addr on.
func (m *Machine) WriteF32(addr uint64, vs ...float32) {
	for i, v := range vs {
		m.Write(addr+uint64(4*i), binary.LittleEndian.AppendUint32(nil, math.Float32bits(v)))
	}
}

// ReadF32 reads the float32 at addr.
func (m *Machine) ReadF32(addr uint64) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(m.Read(addr, 4)))
}

type frame struct {
	values map[*ir.Value]Value
}

func (fr *frame) get(v *ir.Value) (Value, error) {
	x, ok := fr.values[v]
	if !ok {
		return Value{}, fmt.Errorf("value of type %s is not defined", v.Type)
	}
	return x, nil
}

// Run executes f with args bound to its arguments.
func (m *Machine) Run(f *ir.Func, args ...Value) error {
	if len(args) != len(f.Args()) {
		return errors.Errorf("@%s takes %d arguments, got %d", f.Name, len(f.Args()), len(args))
	}
	fr := &frame{values: make(map[*ir.Value]Value)}
	for i, a := range f.Args() {
		fr.values[a] = args[i]
	}
	for _, op := range f.Body.Ops {
		if op.Name == ir.OpReturn {
			return nil
		}
		if err := m.step(fr, op); err != nil {
			return errors.Wrapf(err, "@%s: %s", f.Name, op.Name)
		}
	}
	return nil
}

func (m *Machine) step(fr *frame, op *ir.Op) error {
	in := make([]Value, len(op.Operands))
	for i, o := range op.Operands {
		v, err := fr.get(o)
		if err != nil {
			return err
		}
		in[i] = v
	}

	if rocdl.IsRawBufferOp(op.Name) {
		return m.bufferOp(fr, op, in)
	}

	var out Value
	switch op.Name {
	case llvm.OpConstant, ir.OpArithConstant:
		c, ok := op.Attrs.Int(llvm.AttrValue)
		if !ok {
			return fmt.Errorf("constant without integer value")
		}
		out = Int(mask(uint64(c), ir.BitWidth(op.Result(0).Type)))
	case llvm.OpUndef:
		out = zero(op.Result(0).Type)
	case ir.OpUnrealizedConversionCast, llvm.OpPtrToInt:
		out = in[0]
	case llvm.OpTrunc:
		out = Int(mask(in[0].Scalar(), ir.BitWidth(op.Result(0).Type)))
	case llvm.OpBitcast:
		b, err := toBytes(in[0], op.Operand(0).Type)
		if err != nil {
			return err
		}
		if out, err = fromBytes(b, op.Result(0).Type); err != nil {
			return err
		}
	case llvm.OpAdd, llvm.OpMul, llvm.OpLShr, llvm.OpAnd, llvm.OpUMax:
		out = Int(mask(evalBinary(op.Name, in[0].Scalar(), in[1].Scalar()), ir.BitWidth(op.Result(0).Type)))
	case llvm.OpInsertElement:
		lanes := append([]uint64(nil), in[0].Lanes...)
		idx := in[2].Scalar()
		if idx >= uint64(len(lanes)) {
			return fmt.Errorf("lane %d out of range", idx)
		}
		lanes[idx] = in[1].Scalar()
		out = Value{Lanes: lanes}
	case llvm.OpExtractValue:
		pos, _ := op.Attrs.Array(llvm.AttrPosition)
		v := in[0]
		for _, p := range pos {
			if p < 0 || int(p) >= len(v.Fields) {
				return fmt.Errorf("position %v out of range", pos)
			}
			v = v.Fields[p]
		}
		out = v
	case llvm.OpInlineAsm:
		asm, _ := op.Attrs.Text(llvm.AttrAsmString)
		m.Calls = append(m.Calls, Call{Name: op.Name, Asm: asm})
		return nil
	default:
		return fmt.Errorf("cannot evaluate %s", op.Name)
	}
	fr.values[op.Result(0)] = out
	return nil
}

func evalBinary(name string, x, y uint64) uint64 {
	switch name {
	case llvm.OpAdd:
		return x + y
	case llvm.OpMul:
		return x * y
	case llvm.OpLShr:
		return x >> y
	case llvm.OpAnd:
		return x & y
	default:
		return max(x, y)
	}
}

// bufferOp performs a raw buffer load, store or atomic add.
func (m *Machine) bufferOp(fr *frame, op *ir.Op, in []Value) error {
	m.Calls = append(m.Calls, Call{Name: op.Name, Args: in})

	var data Value
	if op.Name != rocdl.OpRawBufferLoad {
		data, in = in[0], in[1:]
	}
	if len(in) != rocdl.NumLoadOperands {
		return fmt.Errorf("expected %d address operands, got %d", rocdl.NumLoadOperands, len(in))
	}
	rsrc := in[0].Lanes
	if len(rsrc) != 4 {
		return fmt.Errorf("resource descriptor has %d words", len(rsrc))
	}
	base := rsrc[0] | rsrc[1]<<32
	numRecords := rsrc[2]
	offset := mask(in[1].Scalar()+in[2].Scalar(), 32)

	dataType := rocdl.DataType(op)
	size := uint64(ir.BitWidth(dataType) / 8)
	inBounds := offset+size <= numRecords
	addr := base + offset

	switch op.Name {
	case rocdl.OpRawBufferLoad:
		b := make([]byte, size)
		if inBounds {
			b = m.Read(addr, int(size))
		}
		v, err := fromBytes(b, dataType)
		if err != nil {
			return err
		}
		fr.values[op.Result(0)] = v
	case rocdl.OpRawBufferStore:
		b, err := toBytes(data, dataType)
		if err != nil {
			return err
		}
		if inBounds {
			m.Write(addr, b)
		}
	case rocdl.OpRawBufferAtomicFAdd:
		if inBounds {
			m.WriteF32(addr, m.ReadF32(addr)+math.Float32frombits(uint32(data.Scalar())))
		}
	}
	return nil
}
