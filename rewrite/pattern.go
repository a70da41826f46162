package rewrite

import (
	"errors"

	"github.com/samber/lo"

	"github.com/gogpu/gfxconv/ir"
)

// ErrNoMatch is returned by a pattern that does not apply to an op. It is
// not reported as a diagnostic; the next pattern is tried.
var ErrNoMatch = errors.New("pattern does not match")

// Pattern rewrites ops named RootName.
//
// MatchAndRewrite builds replacement ops through r and finishes with
// r.ReplaceOp or r.EraseOp. Returning a non-nil error discards everything
// built through r.
type Pattern interface {
	RootName() string
	MatchAndRewrite(op *ir.Op, r *Rewriter) error
}

// PatternSet holds patterns in registration order.
type PatternSet struct {
	patterns []Pattern
}

// NewPatternSet returns a set holding ps.
func NewPatternSet(ps ...Pattern) *PatternSet {
	return &PatternSet{patterns: ps}
}

// Add registers patterns after the existing ones.
func (s *PatternSet) Add(ps ...Pattern) {
	s.patterns = append(s.patterns, ps...)
}

// Len returns the number of registered patterns.
func (s *PatternSet) Len() int { return len(s.patterns) }

// For returns the patterns rooted at name, in registration order.
func (s *PatternSet) For(name string) []Pattern {
	return lo.Filter(s.patterns, func(p Pattern, _ int) bool {
		return p.RootName() == name
	})
}

// RootNames returns the distinct root op names covered by the set.
func (s *PatternSet) RootNames() []string {
	return lo.Uniq(lo.Map(s.patterns, func(p Pattern, _ int) string {
		return p.RootName()
	}))
}
