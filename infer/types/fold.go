package types

import (
	"slices"
)

// BoundReplacer supplies, for every name bound by Binder, the type or region
// that should take its place. Types and Regions are indexed like Binder.Vars;
// only the entry matching the kind of each name is consulted.
type BoundReplacer struct {
	Binder  BinderID
	Types   []TypeID
	Regions []Region
}

// Substitute replaces every occurrence of the names bound by r.Binder in t.
//
// Quantified shells nested inside t that mention the replaced names are copied
// under a fresh BinderID, so that the original shell stays valid.
func (in *Interner) Substitute(t TypeID, r BoundReplacer) TypeID {
	f := &substFolder{
		in:      in,
		r:       r,
		renames: make(map[BinderID]BinderID),
	}
	return f.foldType(t)
}

type substFolder struct {
	in      *Interner
	r       BoundReplacer
	renames map[BinderID]BinderID
}

func (f *substFolder) foldType(id TypeID) TypeID {
	t := f.in.MustLookup(id)
	switch t.Kind {
	case KindBound:
		if t.Binder == f.r.Binder {
			return f.r.Types[t.Index]
		}
		if renamed, ok := f.renames[t.Binder]; ok {
			return f.in.Bound(renamed, t.Index, t.Name)
		}
		return id
	case KindAdt, KindFn, KindRef, KindTuple:
		changed := false
		args := make([]TypeID, len(t.Args))
		for i, arg := range t.Args {
			args[i] = f.foldType(arg)
			changed = changed || args[i] != arg
		}
		regions := make([]Region, len(t.Regions))
		for i, r := range t.Regions {
			regions[i] = f.foldRegion(r)
			changed = changed || regions[i] != r
		}
		region := t.Region
		elem := t.Elem
		if t.Kind == KindRef {
			region = f.foldRegion(t.Region)
			changed = changed || region != t.Region
		}
		if elem != NoTypeID {
			elem = f.foldType(t.Elem)
			changed = changed || elem != t.Elem
		}
		if !changed {
			return id
		}
		t.Args, t.Regions, t.Region, t.Elem = args, regions, region, elem
		return f.in.Intern(t)
	case KindForall:
		inner := f.in.binders[t.Binder]
		if !f.in.mentionsBinder(inner.Value, f.r.Binder) && !f.mentionsRenamed(inner.Value) {
			return id
		}
		copied := f.in.OpenBinder(inner.Vars)
		f.renames[t.Binder] = copied
		body := f.foldType(inner.Value)
		delete(f.renames, t.Binder)
		return f.in.CloseBinder(copied, body)
	default:
		return id
	}
}

func (f *substFolder) foldRegion(r Region) Region {
	if r.Kind != RegionBound {
		return r
	}
	if r.Binder == f.r.Binder {
		return f.r.Regions[r.Index]
	}
	if renamed, ok := f.renames[r.Binder]; ok {
		return RegionOfBound(renamed, r.Index, r.Name)
	}
	return r
}

func (f *substFolder) mentionsRenamed(t TypeID) bool {
	for b := range f.renames {
		if f.in.mentionsBinder(t, b) {
			return true
		}
	}
	return false
}

func (in *Interner) mentionsBinder(t TypeID, b BinderID) bool {
	return in.Any(t, func(tt Type) bool {
		return tt.Kind == KindBound && tt.Binder == b
	}, func(r Region) bool {
		return r.Kind == RegionBound && r.Binder == b
	})
}

// Walk visits t and every type reachable from it, including the bodies of nested
// quantified shells, in pre-order. When visit returns false the children of the
// current type are skipped.
func (in *Interner) Walk(t TypeID, visit func(id TypeID, tt Type) bool) {
	tt, ok := in.Lookup(t)
	if !ok || !visit(t, tt) {
		return
	}
	for _, arg := range tt.Args {
		in.Walk(arg, visit)
	}
	if tt.Elem != NoTypeID {
		in.Walk(tt.Elem, visit)
	}
	if tt.Kind == KindForall {
		in.Walk(in.binders[tt.Binder].Value, visit)
	}
}

// RegionsOf returns every region mentioned in t, in order of first occurrence.
func (in *Interner) RegionsOf(t TypeID) []Region {
	var regions []Region
	add := func(r Region) {
		if !slices.Contains(regions, r) {
			regions = append(regions, r)
		}
	}
	in.Walk(t, func(_ TypeID, tt Type) bool {
		for _, r := range tt.Regions {
			add(r)
		}
		if tt.Kind == KindRef {
			add(tt.Region)
		}
		return true
	})
	return regions
}

// Any reports whether some type reachable from t satisfies typePred, or some region
// mentioned in t satisfies regionPred. Either predicate may be nil.
func (in *Interner) Any(t TypeID, typePred func(Type) bool, regionPred func(Region) bool) bool {
	found := false
	in.Walk(t, func(_ TypeID, tt Type) bool {
		if found {
			return false
		}
		if typePred != nil && typePred(tt) {
			found = true
			return false
		}
		if regionPred != nil {
			for _, r := range tt.Regions {
				found = found || regionPred(r)
			}
			if tt.Kind == KindRef {
				found = found || regionPred(tt.Region)
			}
		}
		return !found
	})
	return found
}

// VarsOf returns the inference variables mentioned in t, without resolving them.
func (in *Interner) VarsOf(t TypeID) []VarID {
	var vars []VarID
	in.Walk(t, func(_ TypeID, tt Type) bool {
		if tt.Kind == KindVar && !slices.Contains(vars, tt.Var) {
			vars = append(vars, tt.Var)
		}
		return true
	})
	return vars
}
