package infer

import (
	"github.com/cottand/tyrel/infer/types"
)

// Relation is one way of relating two types: Sub, Equate, Bivariate, Lub or Glb.
//
// Every method resolves its operands through the session's store before looking
// at them. Sub, Equate and Bivariate return their first operand on success, while
// Lub and Glb return the bound they computed.
type Relation interface {
	// Tag names the relation in logs
	Tag() string
	Fields() *CombineFields
	Tys(a, b types.TypeID) (types.TypeID, error)
	Regions(a, b types.Region) (types.Region, error)
	Binders(a, b types.Binder) (types.Binder, error)
	// ForVariance returns the relation a slot of variance v must be related with,
	// and whether the operands must be swapped when doing so.
	ForVariance(v types.Variance) (rel Relation, swap bool)
}

// Relatable is anything a Relation can relate
type Relatable interface {
	types.TypeID | types.Region | types.Binder
}

// Relate is the entry point of the engine: it checks that a is a subtype of b.
func Relate(fields *CombineFields, a, b types.TypeID) (types.TypeID, error) {
	return fields.Sub().Tys(a, b)
}

// RelateWithVariance relates a and b, which sit in a slot of variance v of
// two values being related by rel.
func RelateWithVariance[T Relatable](rel Relation, v types.Variance, a, b T) (T, error) {
	r, swap := rel.ForVariance(v)
	if swap {
		return relate(r, b, a)
	}
	return relate(r, a, b)
}

func relate[T Relatable](rel Relation, a, b T) (T, error) {
	var (
		res any
		err error
	)
	switch a := any(a).(type) {
	case types.TypeID:
		res, err = rel.Tys(a, any(b).(types.TypeID))
	case types.Region:
		res, err = rel.Regions(a, any(b).(types.Region))
	case types.Binder:
		res, err = rel.Binders(a, any(b).(types.Binder))
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}
