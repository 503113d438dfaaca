package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// BoundKind says whether a bound name stands for a type or for a region.
type BoundKind uint8

const (
	BoundType BoundKind = iota
	BoundRegion
)

// BoundVar is one name quantified by a Binder
type BoundVar struct {
	Name string
	Kind BoundKind
}

// Binder is a quantified shell: Value is universally quantified over Vars.
// Occurrences of Vars inside Value are KindBound types and RegionBound regions
// carrying this binder's ID and the index of the name in Vars.
//
// A Binder is created with Interner.OpenBinder and sealed with Interner.CloseBinder.
type Binder struct {
	ID    BinderID
	Vars  []BoundVar
	Value TypeID
}

// BoundTypeOf returns the occurrence of the i-th bound name, as a type.
// It panics if that name is not a type name.
func (in *Interner) BoundTypeOf(b BinderID, i int) TypeID {
	binder := in.binders[b]
	if binder.Vars[i].Kind != BoundType {
		panic(fmt.Sprintf("types: bound name %s is not a type", binder.Vars[i].Name))
	}
	return in.Bound(b, uint32(i), binder.Vars[i].Name)
}

// BoundRegionOf returns the occurrence of the i-th bound name, as a region.
// It panics if that name is not a region name.
func (in *Interner) BoundRegionOf(b BinderID, i int) Region {
	binder := in.binders[b]
	if binder.Vars[i].Kind != BoundRegion {
		panic(fmt.Sprintf("types: bound name %s is not a region", binder.Vars[i].Name))
	}
	return RegionOfBound(b, uint32(i), binder.Vars[i].Name)
}

// OpenBinder reserves a new binder quantifying over vars. The body is supplied
// later through CloseBinder, once it has been built from BoundTypeOf and
// BoundRegionOf occurrences.
func (in *Interner) OpenBinder(vars []BoundVar) BinderID {
	n, err := safecast.Conv[uint32](len(in.binders))
	if err != nil {
		panic(fmt.Errorf("len(binders) overflow: %w", err))
	}
	id := BinderID(n)
	in.binders = append(in.binders, Binder{ID: id, Vars: slices.Clone(vars)})
	return id
}

// CloseBinder seals binder b with body and returns the quantified type.
func (in *Interner) CloseBinder(b BinderID, body TypeID) TypeID {
	if in.binders[b].Value != NoTypeID {
		panic(fmt.Sprintf("types: binder %d closed twice", b))
	}
	in.binders[b].Value = body
	return in.Intern(Type{Kind: KindForall, Binder: b})
}

// Binder returns the shell registered under b.
func (in *Interner) Binder(b BinderID) (Binder, bool) {
	if b == 0 || int(b) >= len(in.binders) {
		return Binder{}, false
	}
	return in.binders[b], true
}

// BinderOf returns the shell of a KindForall type.
func (in *Interner) BinderOf(t TypeID) (Binder, bool) {
	tt, ok := in.Lookup(t)
	if !ok || tt.Kind != KindForall {
		return Binder{}, false
	}
	return in.Binder(tt.Binder)
}

// Forall returns the KindForall type of an already registered, sealed binder.
func (in *Interner) Forall(b Binder) TypeID {
	registered, ok := in.Binder(b.ID)
	if !ok || registered.Value != b.Value {
		panic(fmt.Sprintf("types: binder %d is not registered with body %d", b.ID, b.Value))
	}
	return in.Intern(Type{Kind: KindForall, Binder: b.ID})
}
