// Package infer relates types to one another while inferring them.
//
// A Session owns the state shared by every comparison made while checking one
// unit: the type arena, the type variable store and the region constraint log.
// Comparisons are started from CombineFields, which carry the provenance of the
// comparison, through one of the relations: Sub, Equate, Bivariate, Lub and Glb.
package infer

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/cottand/tyrel/infer/region"
	"github.com/cottand/tyrel/infer/types"
	"github.com/cottand/tyrel/infer/tyvar"
	"github.com/cottand/tyrel/internal/log"
)

var logger = log.DefaultLogger.With("section", "infer")

// Session is the inference context of a single checking unit.
// It is not meant to be shared between goroutines.
type Session struct {
	in      *types.Interner
	store   *tyvar.Store
	regions *region.Collector
	// skolems numbers placeholders and skolem regions alike
	skolems uint32
}

func NewSession(in *types.Interner) *Session {
	return &Session{
		in:      in,
		store:   tyvar.NewStore(in),
		regions: region.NewCollector(),
	}
}

func (s *Session) Interner() *types.Interner  { return s.in }
func (s *Session) Store() *tyvar.Store        { return s.store }
func (s *Session) Regions() *region.Collector { return s.regions }

// Fields starts a comparison. aIsExpected only affects how errors are reported.
func (s *Session) Fields(trace types.Trace, aIsExpected bool) *CombineFields {
	return &CombineFields{session: s, AIsExpected: aIsExpected, Trace: trace}
}

// FreshVar creates a new unresolved type variable
func (s *Session) FreshVar(name string) types.TypeID {
	return s.in.Var(s.store.NewVar(name))
}

func (s *Session) FreshRegion() types.Region {
	return s.regions.NewVar()
}

func (s *Session) nextSkolem() uint32 {
	n := s.skolems
	next, err := safecast.Conv[uint32](int(n) + 1)
	if err != nil {
		panic(fmt.Errorf("skolem count overflow: %w", err))
	}
	s.skolems = next
	return n
}

// Snapshot identifies a point in the history of a Session.
type Snapshot struct {
	store   tyvar.Snapshot
	regions region.Snapshot
	skolems uint32
}

func (snap Snapshot) Store() tyvar.Snapshot    { return snap.store }
func (snap Snapshot) Regions() region.Snapshot { return snap.regions }

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		store:   s.store.Snapshot(),
		regions: s.regions.Snapshot(),
		skolems: s.skolems,
	}
}

func (s *Session) rollback(snap Snapshot) {
	s.store.Rollback(snap.store)
	s.regions.Rollback(snap.regions)
	s.skolems = snap.skolems
}

// CommitIfOK runs f, and undoes every variable, binding and region constraint f
// created if it fails.
func (s *Session) CommitIfOK(f func(snap Snapshot) error) error {
	snap := s.snapshot()
	if err := f(snap); err != nil {
		s.rollback(snap)
		return err
	}
	return nil
}

// Probe runs f and then undoes everything f did, whether it failed or not.
func (s *Session) Probe(f func() error) error {
	snap := s.snapshot()
	defer s.rollback(snap)
	return f()
}

// Stats summarises what a Session holds.
type Stats struct {
	Types       int
	Vars        int
	RegionVars  int
	Constraints int
	Skolems     int
}

func (s *Session) Stats() Stats {
	return Stats{
		Types:       s.in.Len() - 1,
		Vars:        s.store.Len(),
		RegionVars:  s.regions.Vars(),
		Constraints: s.regions.Len(),
		Skolems:     int(s.skolems),
	}
}

// ResolveDeep replaces every known variable in t by the type it is known to be, recursively.
// Quantified shells are left untouched.
func (s *Session) ResolveDeep(t types.TypeID) types.TypeID {
	t = s.store.Resolve(t)
	tt, ok := s.in.Lookup(t)
	if !ok {
		return t
	}
	switch tt.Kind {
	case types.KindAdt, types.KindFn, types.KindRef, types.KindTuple:
		changed := false
		args := make([]types.TypeID, len(tt.Args))
		for i, arg := range tt.Args {
			args[i] = s.ResolveDeep(arg)
			changed = changed || args[i] != arg
		}
		elem := tt.Elem
		if elem != types.NoTypeID {
			elem = s.ResolveDeep(elem)
			changed = changed || elem != tt.Elem
		}
		if !changed {
			return t
		}
		tt.Args, tt.Elem = args, elem
		return s.in.Intern(tt)
	default:
		return t
	}
}
