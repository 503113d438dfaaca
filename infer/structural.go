package infer

import (
	"github.com/cottand/tyrel/infer/types"
)

// superTys relates two resolved, non-variable, non-error types by shape, relating
// their slots with rel according to each slot's variance. It returns the type
// rebuilt from the related slots.
func superTys(rel Relation, a types.TypeID, ta types.Type, b types.TypeID, tb types.Type) (types.TypeID, error) {
	f := rel.Fields()
	in := f.session.in

	// a quantified shell relates to a plain type as if that type were quantified over nothing
	if ta.Kind == types.KindForall || tb.Kind == types.KindForall {
		res, err := rel.Binders(binderOf(in, a, ta), binderOf(in, b, tb))
		if err != nil {
			return types.NoTypeID, err
		}
		if res.ID == 0 {
			return res.Value, nil
		}
		return in.Forall(res), nil
	}
	if ta.Kind != tb.Kind {
		return types.NoTypeID, f.mismatch(a, b)
	}

	switch ta.Kind {
	case types.KindInt, types.KindBool, types.KindStr, types.KindUnit:
		return a, nil

	case types.KindParam, types.KindPlaceholder, types.KindBound:
		if a != b {
			return types.NoTypeID, f.mismatch(a, b)
		}
		return a, nil

	case types.KindAdt:
		if ta.Def != tb.Def {
			return types.NoTypeID, f.mismatch(a, b)
		}
		def, _ := in.Def(ta.Def)
		if len(ta.Regions) != len(tb.Regions) {
			return types.NoTypeID, f.arityMismatch(def.Name+" lifetimes", len(ta.Regions), len(tb.Regions))
		}
		if len(ta.Args) != len(tb.Args) {
			return types.NoTypeID, f.arityMismatch(def.Name, len(ta.Args), len(tb.Args))
		}
		regions := make([]types.Region, len(ta.Regions))
		for i := range ta.Regions {
			r, err := RelateWithVariance(rel, declared(def.Regions, i), ta.Regions[i], tb.Regions[i])
			if err != nil {
				return types.NoTypeID, err
			}
			regions[i] = r
		}
		args := make([]types.TypeID, len(ta.Args))
		for i := range ta.Args {
			t, err := RelateWithVariance(rel, declared(def.Types, i), ta.Args[i], tb.Args[i])
			if err != nil {
				return types.NoTypeID, err
			}
			args[i] = t
		}
		return in.Adt(ta.Def, regions, args), nil

	case types.KindFn:
		if len(ta.Args) != len(tb.Args) {
			return types.NoTypeID, f.arityMismatch("fn", len(ta.Args), len(tb.Args))
		}
		params := make([]types.TypeID, len(ta.Args))
		for i := range ta.Args {
			t, err := RelateWithVariance(rel, types.Contravariant, ta.Args[i], tb.Args[i])
			if err != nil {
				return types.NoTypeID, err
			}
			params[i] = t
		}
		result, err := RelateWithVariance(rel, types.Covariant, ta.Elem, tb.Elem)
		if err != nil {
			return types.NoTypeID, err
		}
		return in.Fn(params, result), nil

	case types.KindRef:
		if ta.Mutable != tb.Mutable {
			return types.NoTypeID, f.mutabilityMismatch(a, b)
		}
		r, err := RelateWithVariance(rel, types.Contravariant, ta.Region, tb.Region)
		if err != nil {
			return types.NoTypeID, err
		}
		elemVariance := types.Covariant
		if ta.Mutable {
			elemVariance = types.Invariant
		}
		elem, err := RelateWithVariance(rel, elemVariance, ta.Elem, tb.Elem)
		if err != nil {
			return types.NoTypeID, err
		}
		return in.Ref(r, elem, ta.Mutable), nil

	case types.KindTuple:
		if len(ta.Args) != len(tb.Args) {
			return types.NoTypeID, f.arityMismatch("tuple", len(ta.Args), len(tb.Args))
		}
		elems := make([]types.TypeID, len(ta.Args))
		for i := range ta.Args {
			t, err := RelateWithVariance(rel, types.Covariant, ta.Args[i], tb.Args[i])
			if err != nil {
				return types.NoTypeID, err
			}
			elems[i] = t
		}
		return in.Tuple(elems), nil

	default:
		return types.NoTypeID, f.mismatch(a, b)
	}
}

// declared is the variance of slot i, Invariant when the definition does not declare one
func declared(variances []types.Variance, i int) types.Variance {
	if i < len(variances) {
		return variances[i]
	}
	return types.Invariant
}

// binderOf returns the shell of a quantified type, or an unregistered shell
// quantifying t over nothing.
func binderOf(in *types.Interner, t types.TypeID, tt types.Type) types.Binder {
	if tt.Kind == types.KindForall {
		b, _ := in.Binder(tt.Binder)
		return b
	}
	return types.Binder{Value: t}
}
