package rewrite

import "github.com/gogpu/gfxconv/ir"

// Legality is the conversion status of an op.
type Legality uint8

const (
	// Unknown ops are left alone: not rewritten unless a pattern matches and
	// not reported when they remain.
	Unknown Legality = iota
	Legal
	Illegal
)

func (l Legality) String() string {
	switch l {
	case Legal:
		return "legal"
	case Illegal:
		return "illegal"
	default:
		return "unknown"
	}
}

// Target declares which ops may remain after conversion. Op-level entries
// take precedence over dialect-level ones.
type Target struct {
	dialects map[string]Legality
	ops      map[string]Legality
}

// NewTarget returns a target with nothing declared.
func NewTarget() *Target {
	return &Target{
		dialects: make(map[string]Legality),
		ops:      make(map[string]Legality),
	}
}

// AddLegalDialect marks every op of the named dialects legal.
func (t *Target) AddLegalDialect(names ...string) { t.mark(t.dialects, Legal, names) }

// AddIllegalDialect marks every op of the named dialects illegal.
func (t *Target) AddIllegalDialect(names ...string) { t.mark(t.dialects, Illegal, names) }

// AddLegalOp marks the named ops legal.
func (t *Target) AddLegalOp(names ...string) { t.mark(t.ops, Legal, names) }

// AddIllegalOp marks the named ops illegal.
func (t *Target) AddIllegalOp(names ...string) { t.mark(t.ops, Illegal, names) }

func (t *Target) mark(m map[string]Legality, l Legality, names []string) {
	for _, n := range names {
		m[n] = l
	}
}

// Legality returns the status of op.
func (t *Target) Legality(op *ir.Op) Legality {
	if l, ok := t.ops[op.Name]; ok {
		return l
	}
	return t.dialects[op.Dialect()]
}
