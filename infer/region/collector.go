// Package region collects the subregion constraints produced while relating types.
//
// The collector never solves anything: constraints are appended to a log, which a
// later region solver consumes. The higher-ranked leak check queries it through
// Tainted.
package region

import (
	"fmt"
	"slices"
	"sync"

	"fortio.org/safecast"
	"github.com/cottand/tyrel/infer/types"
	"github.com/cottand/tyrel/internal/log"
	set "github.com/hashicorp/go-set/v3"
)

var logger = log.DefaultLogger.With("section", "infer.region")

type OriginKind uint8

const (
	// OriginSubtype is a constraint that arose from relating two types
	OriginSubtype OriginKind = iota
	// OriginLattice is a constraint that arose from computing a least upper or greatest lower bound
	OriginLattice
)

func (k OriginKind) String() string {
	switch k {
	case OriginSubtype:
		return "Subtype"
	case OriginLattice:
		return "Lattice"
	default:
		return fmt.Sprintf("OriginKind(%d)", k)
	}
}

// Origin is the provenance of a subregion constraint.
type Origin struct {
	Kind  OriginKind
	Trace types.Trace
}

func Subtype(trace types.Trace) Origin { return Origin{Kind: OriginSubtype, Trace: trace} }
func Lattice(trace types.Trace) Origin { return Origin{Kind: OriginLattice, Trace: trace} }

func (o Origin) String() string {
	return fmt.Sprintf("%s(%s)", o.Kind, o.Trace)
}

// Constraint records Sub <= Sup: Sub is outlived by Sup.
type Constraint struct {
	Origin Origin
	Sub    types.Region
	Sup    types.Region
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s <= %s", c.Sub, c.Sup)
}

// Collector only holds plain values, so it is safe for concurrent use.
// It is still meant to be owned by a single session.
type Collector struct {
	mu          sync.RWMutex
	constraints []Constraint
	vars        uint32
}

func NewCollector() *Collector {
	return &Collector{}
}

// NewVar creates a fresh region variable
func (c *Collector) NewVar() types.Region {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := types.VarRegion(c.vars)
	next, err := safecast.Conv[uint32](int(c.vars) + 1)
	if err != nil {
		panic(fmt.Errorf("region variable count overflow: %w", err))
	}
	c.vars = next
	return r
}

// RecordSubregion appends sub <= sup to the log. It never fails.
func (c *Collector) RecordSubregion(origin Origin, sub, sup types.Region) {
	c.mu.Lock()
	defer c.mu.Unlock()
	logger.Debug("recording subregion", "sub", sub.String(), "sup", sup.String(), "origin", origin.String())
	c.constraints = append(c.constraints, Constraint{Origin: origin, Sub: sub, Sup: sup})
}

// Constraints returns every constraint recorded so far, in recording order.
func (c *Collector) Constraints() []Constraint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.constraints)
}

// Len is the number of constraints recorded so far
func (c *Collector) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.constraints)
}

// Vars is the number of region variables created so far
func (c *Collector) Vars() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int(c.vars)
}

type Snapshot struct {
	constraints int
	vars        uint32
}

// CreatedSince reports whether r is a region variable created after snap was taken
func (snap Snapshot) CreatedSince(r types.Region) bool {
	return r.IsVar() && r.Index >= snap.vars
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{constraints: len(c.constraints), vars: c.vars}
}

// Rollback forgets every constraint and region variable created after snap was taken.
// Indices of forgotten region variables are handed out again, so callers must not keep them.
func (c *Collector) Rollback(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	logger.Debug("rolling back", "constraints", len(c.constraints)-snap.constraints)
	c.constraints = c.constraints[:snap.constraints]
	c.vars = snap.vars
}

// Since returns the constraints recorded after snap was taken.
func (c *Collector) Since(snap Snapshot) []Constraint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.constraints[snap.constraints:])
}

// Tainted returns every region related to r, in either direction, through the
// constraints recorded after snap was taken. The result always contains r.
func (c *Collector) Tainted(snap Snapshot, r types.Region) []types.Region {
	c.mu.RLock()
	defer c.mu.RUnlock()
	since := c.constraints[snap.constraints:]

	tainted := set.From([]types.Region{r})
	for changed := true; changed; {
		changed = false
		for _, constraint := range since {
			switch {
			case tainted.Contains(constraint.Sub):
				changed = tainted.Insert(constraint.Sup) || changed
			case tainted.Contains(constraint.Sup):
				changed = tainted.Insert(constraint.Sub) || changed
			}
		}
	}
	// r first, the rest in recording order
	result := []types.Region{r}
	for _, constraint := range since {
		for _, other := range []types.Region{constraint.Sub, constraint.Sup} {
			if tainted.Contains(other) && !slices.Contains(result, other) {
				result = append(result, other)
			}
		}
	}
	return result
}
