package types

import (
	"strconv"
)

// RegionKind enumerates the shapes a Region can take.
type RegionKind uint8

const (
	RegionInvalid RegionKind = iota
	// RegionStatic outlives every other region
	RegionStatic
	// RegionNamed is a free, early-bound lifetime parameter such as 'a
	RegionNamed
	// RegionVar is a region inference variable, numbered by its region.Collector
	RegionVar
	// RegionSkolem is the region counterpart of KindPlaceholder
	RegionSkolem
	// RegionBound is an occurrence of a region name bound by an enclosing KindForall
	RegionBound
)

// Region is an opaque, partially ordered lifetime. Relations between regions are
// recorded by the engine, never solved by it.
//
// Region is comparable and may be used as a map key.
type Region struct {
	Kind   RegionKind
	Index  uint32   // RegionVar and RegionSkolem number, RegionBound slot
	Binder BinderID // RegionBound
	Name   string   // RegionNamed, and a display hint for RegionSkolem and RegionBound
}

// Static is 'static
var Static = Region{Kind: RegionStatic}

func NamedRegion(name string) Region {
	return Region{Kind: RegionNamed, Name: name}
}

func VarRegion(index uint32) Region {
	return Region{Kind: RegionVar, Index: index}
}

func SkolemRegion(index uint32, name string) Region {
	return Region{Kind: RegionSkolem, Index: index, Name: name}
}

func RegionOfBound(binder BinderID, index uint32, name string) Region {
	return Region{Kind: RegionBound, Binder: binder, Index: index, Name: name}
}

func (r Region) IsVar() bool    { return r.Kind == RegionVar }
func (r Region) IsSkolem() bool { return r.Kind == RegionSkolem }
func (r Region) IsStatic() bool { return r.Kind == RegionStatic }

func (r Region) String() string {
	switch r.Kind {
	case RegionStatic:
		return "'static"
	case RegionNamed:
		return "'" + r.Name
	case RegionVar:
		return "'?" + strconv.FormatUint(uint64(r.Index), 10)
	case RegionSkolem:
		return "'!" + strconv.FormatUint(uint64(r.Index), 10) + "_" + r.Name
	case RegionBound:
		if r.Name != "" {
			return "'" + r.Name
		}
		return "'^" + strconv.FormatUint(uint64(r.Binder), 10) + "_" + strconv.FormatUint(uint64(r.Index), 10)
	default:
		return "'<invalid>"
	}
}
