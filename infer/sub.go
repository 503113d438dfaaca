package infer

import (
	"github.com/cottand/tyrel/infer/region"
	"github.com/cottand/tyrel/infer/types"
	"github.com/cottand/tyrel/infer/tyvar"
)

// Sub checks that its first operand is a subtype of its second.
type Sub struct {
	fields *CombineFields
}

var _ Relation = &Sub{}

func (s *Sub) Tag() string             { return "Sub" }
func (s *Sub) Fields() *CombineFields { return s.fields }

func (s *Sub) ForVariance(v types.Variance) (Relation, bool) {
	switch v {
	case types.Invariant:
		return s.fields.Equate(), false
	case types.Bivariant:
		return s.fields.Bivariate(), false
	case types.Contravariant:
		return s.fields.SwitchExpected().Sub(), true
	default:
		return s, false
	}
}

func (s *Sub) Tys(a, b types.TypeID) (types.TypeID, error) {
	in := s.fields.session.in
	logger.Debug("Sub.tys", "a", in.Slog(a), "b", in.Slog(b))
	if a == b {
		return a, nil
	}

	a, ta, b, tb := s.fields.resolve(a, b)
	switch {
	case a == b:
		return a, nil
	case ta.IsError() || tb.IsError():
		return in.Builtins().Error, nil
	case ta.IsVar() && tb.IsVar():
		return resultOf(a, s.fields.link(ta.Var, tyvar.SubtypeOf, tb.Var))
	case ta.IsVar():
		// b is a supertype of a
		return resultOf(a, s.fields.SwitchExpected().instantiate(b, tyvar.SupertypeOf, ta.Var))
	case tb.IsVar():
		return resultOf(a, s.fields.instantiate(a, tyvar.SubtypeOf, tb.Var))
	}
	if _, err := superTys(s, a, ta, b, tb); err != nil {
		return types.NoTypeID, err
	}
	return a, nil
}

// Regions records a <= b. It never fails.
func (s *Sub) Regions(a, b types.Region) (types.Region, error) {
	logger.Debug("Sub.regions", "a", a.String(), "b", b.String())
	s.fields.session.regions.RecordSubregion(region.Subtype(s.fields.Trace), a, b)
	return a, nil
}

func (s *Sub) Binders(a, b types.Binder) (types.Binder, error) {
	return s.fields.higherRankedSub(s, a, b)
}
