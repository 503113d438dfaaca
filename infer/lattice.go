package infer

import (
	"github.com/cottand/tyrel/infer/region"
	"github.com/cottand/tyrel/infer/types"
)

// Lub computes a least upper bound of its operands: a type both are subtypes of.
type Lub struct {
	fields *CombineFields
}

// Glb computes a greatest lower bound of its operands: a type that is a subtype of both.
type Glb struct {
	fields *CombineFields
}

var (
	_ Relation = &Lub{}
	_ Relation = &Glb{}
)

func (l *Lub) Tag() string             { return "Lub" }
func (l *Lub) Fields() *CombineFields { return l.fields }

func (l *Lub) ForVariance(v types.Variance) (Relation, bool) {
	return latticeForVariance(l, l.fields.Glb(), v)
}

func (l *Lub) Tys(a, b types.TypeID) (types.TypeID, error) {
	return latticeTys(l, a, b, func(v types.TypeID) error {
		sub := l.fields.Sub()
		if _, err := sub.Tys(a, v); err != nil {
			return err
		}
		_, err := sub.Tys(b, v)
		return err
	})
}

// Regions returns a region outliving both a and b. 'static outlives everything.
func (l *Lub) Regions(a, b types.Region) (types.Region, error) {
	switch {
	case a == b:
		return a, nil
	case a.IsStatic() || b.IsStatic():
		return types.Static, nil
	}
	regions := l.fields.session.regions
	r := regions.NewVar()
	origin := region.Lattice(l.fields.Trace)
	regions.RecordSubregion(origin, a, r)
	regions.RecordSubregion(origin, b, r)
	return r, nil
}

// Binders only accepts equivalent shells.
func (l *Lub) Binders(a, b types.Binder) (types.Binder, error) {
	return l.fields.Equate().Binders(a, b)
}

func (g *Glb) Tag() string             { return "Glb" }
func (g *Glb) Fields() *CombineFields { return g.fields }

func (g *Glb) ForVariance(v types.Variance) (Relation, bool) {
	return latticeForVariance(g, g.fields.Lub(), v)
}

func (g *Glb) Tys(a, b types.TypeID) (types.TypeID, error) {
	return latticeTys(g, a, b, func(v types.TypeID) error {
		sub := g.fields.Sub()
		if _, err := sub.Tys(v, a); err != nil {
			return err
		}
		_, err := sub.Tys(v, b)
		return err
	})
}

// Regions returns a region outlived by both a and b. 'static constrains nothing.
func (g *Glb) Regions(a, b types.Region) (types.Region, error) {
	switch {
	case a == b:
		return a, nil
	case a.IsStatic():
		return b, nil
	case b.IsStatic():
		return a, nil
	}
	regions := g.fields.session.regions
	r := regions.NewVar()
	origin := region.Lattice(g.fields.Trace)
	regions.RecordSubregion(origin, r, a)
	regions.RecordSubregion(origin, r, b)
	return r, nil
}

// Binders only accepts equivalent shells.
func (g *Glb) Binders(a, b types.Binder) (types.Binder, error) {
	return g.fields.Equate().Binders(a, b)
}

func latticeForVariance(rel, dual Relation, v types.Variance) (Relation, bool) {
	switch v {
	case types.Invariant:
		return rel.Fields().Equate(), false
	case types.Bivariant:
		return rel.Fields().Bivariate(), false
	case types.Contravariant:
		return dual, false
	default:
		return rel, false
	}
}

// latticeTys computes the bound of a and b shape by shape. When either side is a
// variable nothing is known about the bound's shape yet, so a fresh variable is
// created and bounded by relate.
func latticeTys(rel Relation, a, b types.TypeID, relate func(v types.TypeID) error) (types.TypeID, error) {
	f := rel.Fields()
	in := f.session.in
	logger.Debug(rel.Tag()+".tys", "a", in.Slog(a), "b", in.Slog(b))
	if a == b {
		return a, nil
	}

	a, ta, b, tb := f.resolve(a, b)
	switch {
	case a == b:
		return a, nil
	case ta.IsError() || tb.IsError():
		return in.Builtins().Error, nil
	case ta.IsVar() || tb.IsVar():
		v := f.session.FreshVar("")
		return resultOf(v, relate(v))
	}
	return superTys(rel, a, ta, b, tb)
}
