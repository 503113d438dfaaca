package infer

import (
	"github.com/cottand/tyrel/infer/region"
	"github.com/cottand/tyrel/infer/types"
	"github.com/cottand/tyrel/infer/tyvar"
)

// Equate checks that its operands are subtypes of each other.
type Equate struct {
	fields *CombineFields
}

var _ Relation = &Equate{}

func (e *Equate) Tag() string             { return "Equate" }
func (e *Equate) Fields() *CombineFields { return e.fields }

// ForVariance ignores v: every slot of two equal types is equal.
func (e *Equate) ForVariance(types.Variance) (Relation, bool) {
	return e, false
}

func (e *Equate) Tys(a, b types.TypeID) (types.TypeID, error) {
	in := e.fields.session.in
	logger.Debug("Equate.tys", "a", in.Slog(a), "b", in.Slog(b))
	if a == b {
		return a, nil
	}

	a, ta, b, tb := e.fields.resolve(a, b)
	switch {
	case a == b:
		return a, nil
	case ta.IsError() || tb.IsError():
		return in.Builtins().Error, nil
	case ta.IsVar() && tb.IsVar():
		return resultOf(a, e.fields.link(ta.Var, tyvar.EqTo, tb.Var))
	case ta.IsVar():
		return resultOf(a, e.fields.SwitchExpected().instantiate(b, tyvar.EqTo, ta.Var))
	case tb.IsVar():
		return resultOf(a, e.fields.instantiate(a, tyvar.EqTo, tb.Var))
	}
	if _, err := superTys(e, a, ta, b, tb); err != nil {
		return types.NoTypeID, err
	}
	return a, nil
}

// Regions records a <= b and b <= a.
func (e *Equate) Regions(a, b types.Region) (types.Region, error) {
	logger.Debug("Equate.regions", "a", a.String(), "b", b.String())
	origin := region.Subtype(e.fields.Trace)
	e.fields.session.regions.RecordSubregion(origin, a, b)
	e.fields.session.regions.RecordSubregion(origin, b, a)
	return a, nil
}

// Binders checks that each shell is at least as general as the other.
func (e *Equate) Binders(a, b types.Binder) (types.Binder, error) {
	if _, err := e.fields.higherRankedSub(e.fields.Sub(), a, b); err != nil {
		return types.Binder{}, err
	}
	switched := e.fields.SwitchExpected()
	if _, err := switched.higherRankedSub(switched.Sub(), b, a); err != nil {
		return types.Binder{}, err
	}
	return a, nil
}
