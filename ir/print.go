package ir

import (
	"strconv"
	"strings"
)

// Printer writes IR in its generic textual form.
type Printer struct {
	sb    strings.Builder
	names map[*Value]string
}

// Print returns the textual form of the module.
func Print(m *Module) string {
	p := &Printer{}
	for i, f := range m.Funcs {
		if i > 0 {
			p.sb.WriteByte('\n')
		}
		p.printFunc(f)
	}
	return p.sb.String()
}

// PrintFunc returns the textual form of a single function.
func PrintFunc(f *Func) string {
	p := &Printer{}
	p.printFunc(f)
	return p.sb.String()
}

// PrintOp returns the textual form of one op. Values are named consistently
// with its enclosing function when the op is attached.
func PrintOp(op *Op) string {
	p := &Printer{names: make(map[*Value]string)}
	if blk := op.Block(); blk != nil {
		p.nameBlock(blk)
	}
	p.printOp(op)
	return strings.TrimSuffix(p.sb.String(), "\n")
}

func (p *Printer) nameBlock(b *Block) {
	if p.names == nil {
		p.names = make(map[*Value]string)
	}
	used := make(map[string]bool)
	for i, a := range b.Args {
		name := a.Name
		if name == "" || used[name] {
			name = "arg" + strconv.Itoa(i)
		}
		used[name] = true
		p.names[a] = name
	}
	next := 0
	for _, op := range b.Ops {
		for _, r := range op.Results {
			name := strconv.Itoa(next)
			for used[name] {
				next++
				name = strconv.Itoa(next)
			}
			next++
			used[name] = true
			p.names[r] = name
		}
	}
}

func (p *Printer) name(v *Value) string {
	if n, ok := p.names[v]; ok {
		return "%" + n
	}
	return "%<detached>"
}

func (p *Printer) printFunc(f *Func) {
	p.names = nil
	p.nameBlock(f.Body)

	p.sb.WriteString("func.func @")
	p.sb.WriteString(f.Name)
	p.sb.WriteByte('(')
	for i, a := range f.Body.Args {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(p.name(a))
		p.sb.WriteString(": ")
		p.sb.WriteString(a.Type.String())
	}
	p.sb.WriteString(") {\n")
	for _, op := range f.Body.Ops {
		p.sb.WriteString("  ")
		p.printOp(op)
	}
	p.sb.WriteString("}\n")
}

func (p *Printer) printOp(op *Op) {
	if len(op.Results) > 0 {
		for i, r := range op.Results {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.sb.WriteString(p.name(r))
		}
		p.sb.WriteString(" = ")
	}
	p.sb.WriteString(strconv.Quote(op.Name))
	p.sb.WriteByte('(')
	for i, o := range op.Operands {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(p.name(o))
	}
	p.sb.WriteByte(')')
	if len(op.Attrs) > 0 {
		p.sb.WriteString(" {")
		for i, a := range op.Attrs {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.sb.WriteString(a.Name)
			if _, unit := a.Value.(UnitAttr); !unit {
				p.sb.WriteString(" = ")
				p.sb.WriteString(a.Value.String())
			}
		}
		p.sb.WriteByte('}')
	}
	p.sb.WriteString(" : ")
	p.sb.WriteString(FunctionTypeString(op.OperandTypes(), op.ResultTypes()))
	p.sb.WriteByte('\n')
}

// FunctionTypeString formats "(inputs) -> results".
func FunctionTypeString(inputs, results []Type) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, t := range inputs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.String())
	}
	sb.WriteString(") -> ")
	if len(results) == 1 {
		sb.WriteString(results[0].String())
		return sb.String()
	}
	sb.WriteByte('(')
	for i, t := range results {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
