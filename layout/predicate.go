package layout

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/compute"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
)

// Predicate is a small conjunctive expression over one struct field (or
// the root column itself, when Field is empty): `field OP rhs`, ANDed
// with zero or more sibling predicates. This stands in for the spec's
// general "expr" argument to pruning/filter_evaluation (spec.md §4.4):
// Vortex's own expression algebra is out of this spec's scope, so
// pruning and filtering here operate over the same comparison vocabulary
// compute.Compare/Between already expose.
type Predicate struct {
	Field string
	Op    compute.Operator
	RHS   scalar.Scalar
	And   []*Predicate
}

// Eq builds a single `field == rhs` predicate. Field may be "" to compare
// against a non-struct root array directly.
func Eq(field string, rhs scalar.Scalar) *Predicate {
	return &Predicate{Field: field, Op: compute.Eq, RHS: rhs}
}

// Compare builds a single `field OP rhs` predicate.
func Compare(field string, op compute.Operator, rhs scalar.Scalar) *Predicate {
	return &Predicate{Field: field, Op: op, RHS: rhs}
}

// And combines predicates into a single conjunction.
func And(preds ...*Predicate) *Predicate {
	if len(preds) == 1 {
		return preds[0]
	}
	return &Predicate{And: preds}
}

func (p *Predicate) isLeaf() bool { return p.And == nil }

// fieldValue extracts the column p addresses from a (possibly struct) array.
func (p *Predicate) fieldValue(a array.Array) (array.Array, bool) {
	if p.Field == "" {
		return a, true
	}
	sa, ok := a.Canonicalize().(*array.StructArray)
	if !ok {
		return nil, false
	}
	field := sa.Field(p.Field)
	return field, field != nil
}

// Evaluate materializes p against a, yielding a Mask of matching rows
// (spec.md §4.4, "filter_evaluation... returns a Mask").
func (p *Predicate) Evaluate(ctx *array.Context, a array.Array) (mask.Mask, error) {
	if p.isLeaf() {
		col, ok := p.fieldValue(a)
		if !ok {
			return mask.AllFalse(a.Len()), nil
		}
		result, err := compute.Compare(ctx, col, p.RHS, p.Op)
		if err != nil {
			return mask.Mask{}, err
		}
		return resultToMask(result), nil
	}
	m := mask.AllTrue(a.Len())
	for _, sub := range p.And {
		sm, err := sub.Evaluate(ctx, a)
		if err != nil {
			return mask.Mask{}, err
		}
		m = andMasks(m, sm)
	}
	return m, nil
}

func resultToMask(a array.Array) mask.Mask {
	bools := make([]bool, a.Len())
	for i := 0; i < a.Len(); i++ {
		bools[i] = array.IsValid(a, i) && array.ScalarAt(a, i).AsBool()
	}
	return mask.FromBools(bools)
}

func andMasks(a, b mask.Mask) mask.Mask {
	bools := make([]bool, a.Len())
	for i := range bools {
		bools[i] = a.Value(i) && b.Value(i)
	}
	return mask.FromBools(bools)
}

// PruneKind is the outcome of evaluating a Predicate against a layout
// subtree's stats, without materializing any array (spec.md §4.4,
// "pruning_evaluation... returns CanPrune | CannotPrune").
type PruneKind uint8

const (
	// CannotPrune means the range must be read; stats were absent, or the
	// predicate could not be refuted by them.
	CannotPrune PruneKind = iota
	// CanPrune means stats prove no row in the range can satisfy the
	// predicate; the range may be skipped entirely.
	CanPrune
)

// PruneStats decides whether st (a block/zone's stats) can refute p,
// using Min/Max when present and Exact or a safely-conservative Inexact
// bound (spec.md §3, "Stats"; §4.4, "Stats/Zoned"). Only single-sided
// refutation is attempted: a tighter bound than Min/Max would need a
// richer stats vocabulary than this catalog carries.
func (p *Predicate) PruneStats(st *stats.StatsSet) PruneKind {
	if !p.isLeaf() {
		for _, sub := range p.And {
			if sub.PruneStats(st) == CanPrune {
				return CanPrune
			}
		}
		return CannotPrune
	}
	minV, hasMin := st.Get(stats.Min)
	maxV, hasMax := st.Get(stats.Max)
	if !hasMin || !hasMax {
		return CannotPrune
	}
	switch p.Op {
	case compute.Eq:
		if scalar.Compare(p.RHS, minV.Scalar) < 0 || scalar.Compare(p.RHS, maxV.Scalar) > 0 {
			return CanPrune
		}
	case compute.Lt:
		if scalar.Compare(minV.Scalar, p.RHS) >= 0 {
			return CanPrune
		}
	case compute.Lte:
		if scalar.Compare(minV.Scalar, p.RHS) > 0 {
			return CanPrune
		}
	case compute.Gt:
		if scalar.Compare(maxV.Scalar, p.RHS) <= 0 {
			return CanPrune
		}
	case compute.Gte:
		if scalar.Compare(maxV.Scalar, p.RHS) < 0 {
			return CanPrune
		}
	}
	return CannotPrune
}
