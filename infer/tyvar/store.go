// Package tyvar implements the type variable store of an inference session.
//
// Each variable is either known (bound to a type through an equality), or holds a
// set of lower and upper bounds together with directional links to other
// variables. Variables related by equality are merged, union-find style.
//
// Reading (Resolve, Probe) and writing (the Bind*, Link and Unify methods) are
// separate calls that each take the store's lock for their own duration only, so
// a caller can never hold a read lease across a mutation. Mutators never relate
// types themselves: they return the Obligations the caller must now discharge.
package tyvar

import (
	"fmt"
	"slices"
	"sync"

	"fortio.org/safecast"
	"github.com/benbjohnson/immutable"
	"github.com/cottand/tyrel/infer/inferr"
	"github.com/cottand/tyrel/infer/types"
	"github.com/cottand/tyrel/internal/log"
	set "github.com/hashicorp/go-set/v3"
)

var logger = log.DefaultLogger.With("section", "infer.tyvar")

type ID = types.VarID

// Direction says how a type (or the left variable of a link) relates to a variable.
type Direction uint8

const (
	EqTo Direction = iota
	SubtypeOf
	SupertypeOf
)

func (d Direction) String() string {
	switch d {
	case EqTo:
		return "EqTo"
	case SubtypeOf:
		return "SubtypeOf"
	case SupertypeOf:
		return "SupertypeOf"
	default:
		return fmt.Sprintf("Direction(%d)", d)
	}
}

// Obligation is a relation between two types that a store mutation made necessary:
// A <: B, or A == B when Eq is set.
type Obligation struct {
	A, B types.TypeID
	Eq   bool
}

type entry struct {
	name   string
	self   types.TypeID
	parent ID
	known  types.TypeID
	lowers []types.TypeID
	uppers []types.TypeID
	// subs are the variables linked as subtypes of this one, supers as supertypes
	subs   []ID
	supers []ID
}

// Entry is a read-only view of the state of a variable.
type Entry struct {
	// Root is the representative of the equality class the variable belongs to
	Root   ID
	Name   string
	Known  types.TypeID
	Lowers []types.TypeID
	Uppers []types.TypeID
	Subs   []ID
	Supers []ID
}

// IsKnown reports whether the variable resolves to a type
func (e Entry) IsKnown() bool { return e.Known != types.NoTypeID }

type idHasher struct{}

func (idHasher) Hash(key ID) uint32  { return uint32(key) }
func (idHasher) Equal(a, b ID) bool { return a == b }

// Store holds the type variables of one inference session.
// Its own state is guarded by a lock, but it interns through the session's
// Interner, which is not, so a Store must not be shared between goroutines.
type Store struct {
	mu      sync.RWMutex
	in      *types.Interner
	entries *immutable.Map[ID, entry]
	count   uint32
	actions []Action
}

func NewStore(in *types.Interner) *Store {
	return &Store{
		in:      in,
		entries: immutable.NewMap[ID, entry](idHasher{}),
		count:   0,
	}
}

// NewVar creates a fresh unbound variable. name is only used for printing and may be empty.
func (s *Store) NewVar(name string) ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ID(s.count)
	next, err := safecast.Conv[uint32](int(s.count) + 1)
	if err != nil {
		panic(fmt.Errorf("variable count overflow: %w", err))
	}
	s.count = next
	if name == "" {
		name = fmt.Sprintf("%d", id)
	}
	s.in.SetVarName(id, name)
	s.entries = s.entries.Set(id, entry{
		name:   name,
		self:   s.in.Var(id),
		parent: id,
	})
	s.log(Action{Kind: ActionNewVar, Var: id})
	return id
}

// Len is the number of live variables, not counting those forgotten by a Rollback
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.Len()
}

// Resolve replaces t by the type its variable is known to be, if t is a known variable.
// An unknown variable resolves to the representative of its equality class; any
// other type is returned unchanged. Resolve is shallow: the arguments of the
// returned type are not resolved.
func (s *Store) Resolve(t types.TypeID) types.TypeID {
	tt, ok := s.in.Lookup(t)
	if !ok || tt.Kind != types.KindVar {
		return t
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.entries.Get(tt.Var); !ok {
		return t
	}
	root := s.get(s.find(tt.Var))
	if root.known != types.NoTypeID {
		return root.known
	}
	return root.self
}

// Probe returns a view of the equality class of v.
func (s *Store) Probe(v ID) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.entries.Get(v); !ok {
		return Entry{}, false
	}
	root := s.find(v)
	e := s.get(root)
	return Entry{
		Root:   root,
		Name:   e.name,
		Known:  e.known,
		Lowers: slices.Clone(e.lowers),
		Uppers: slices.Clone(e.uppers),
		Subs:   slices.Clone(e.subs),
		Supers: slices.Clone(e.supers),
	}, true
}

// BindUpperBound records v <: t.
func (s *Store) BindUpperBound(v ID, t types.TypeID) ([]Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var obligations []Obligation
	err := s.addUpper(v, t, &obligations)
	return obligations, err
}

// BindLowerBound records t <: v.
func (s *Store) BindLowerBound(v ID, t types.TypeID) ([]Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var obligations []Obligation
	err := s.addLower(v, t, &obligations)
	return obligations, err
}

// Bind records v == t, after which v resolves to t.
func (s *Store) Bind(v ID, t types.TypeID) ([]Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var obligations []Obligation
	err := s.bind(v, t, &obligations)
	return obligations, err
}

// Link relates two variables: a dir b.
//
// Links are validated eagerly: the lower bounds of the subtype side flow into the
// supertype side and the upper bounds of the supertype side flow into the subtype
// side right away, and every lower/upper pair that meets as a result is returned
// as an obligation.
func (s *Store) Link(a ID, dir Direction, b ID) ([]Obligation, error) {
	if dir == EqTo {
		return s.Unify(a, b)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, sup := a, b
	if dir == SupertypeOf {
		sub, sup = b, a
	}
	var obligations []Obligation
	err := s.link(sub, sup, &obligations)
	return obligations, err
}

// Unify merges the equality classes of a and b.
func (s *Store) Unify(a, b ID) ([]Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var obligations []Obligation
	err := s.unify(a, b, &obligations)
	return obligations, err
}

// Mentions reports whether the class of v is known to be, or is bounded by, a type
// reachable from which some type satisfies pred. Known variables met along the
// way are resolved.
func (s *Store) Mentions(v ID, pred func(types.Type) bool) (types.TypeID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.get(s.find(v))
	visited := set.New[types.TypeID](8)
	for _, t := range slices.Concat([]types.TypeID{e.known}, e.lowers, e.uppers) {
		if t != types.NoTypeID && s.reaches(t, visited, pred) {
			return t, true
		}
	}
	return types.NoTypeID, false
}

// internals below assume s.mu is held

func (s *Store) get(v ID) entry {
	e, ok := s.entries.Get(v)
	if !ok {
		panic(fmt.Sprintf("tyvar: unknown variable %d", v))
	}
	return e
}

func (s *Store) put(v ID, e entry) {
	s.entries = s.entries.Set(v, e)
}

func (s *Store) find(v ID) ID {
	for {
		parent := s.get(v).parent
		if parent == v {
			return v
		}
		v = parent
	}
}

func (s *Store) addUpper(v ID, t types.TypeID, obligations *[]Obligation) error {
	root := s.find(v)
	e := s.get(root)
	if s.isError(t) || slices.Contains(e.uppers, t) || t == e.self {
		return nil
	}
	if e.known != types.NoTypeID {
		*obligations = append(*obligations, Obligation{A: e.known, B: t})
		return nil
	}
	if err := s.occursCheck(root, t); err != nil {
		return err
	}
	// two uppers with different heads have no common subtype, and neither do a lower and an upper
	for _, bound := range slices.Concat(e.lowers, e.uppers) {
		if s.in.HeadsConflict(bound, t) {
			return s.incompatible(e, t, bound)
		}
	}
	logger.Debug("adding upper bound", "var", e.name, "bound", s.in.Slog(t))
	e.uppers = append(slices.Clip(e.uppers), t)
	s.put(root, e)
	s.log(Action{Kind: ActionUpper, Var: root, Type: t})

	for _, lower := range e.lowers {
		*obligations = append(*obligations, Obligation{A: lower, B: t})
	}
	// w <: v <: t
	for _, w := range e.subs {
		if err := s.addUpper(w, t, obligations); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) addLower(v ID, t types.TypeID, obligations *[]Obligation) error {
	root := s.find(v)
	e := s.get(root)
	if s.isError(t) || slices.Contains(e.lowers, t) || t == e.self {
		return nil
	}
	if e.known != types.NoTypeID {
		*obligations = append(*obligations, Obligation{A: t, B: e.known})
		return nil
	}
	if err := s.occursCheck(root, t); err != nil {
		return err
	}
	for _, bound := range slices.Concat(e.lowers, e.uppers) {
		if s.in.HeadsConflict(t, bound) {
			return s.incompatible(e, t, bound)
		}
	}
	logger.Debug("adding lower bound", "var", e.name, "bound", s.in.Slog(t))
	e.lowers = append(slices.Clip(e.lowers), t)
	s.put(root, e)
	s.log(Action{Kind: ActionLower, Var: root, Type: t})

	for _, upper := range e.uppers {
		*obligations = append(*obligations, Obligation{A: t, B: upper})
	}
	// t <: v <: w
	for _, w := range e.supers {
		if err := s.addLower(w, t, obligations); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) bind(v ID, t types.TypeID, obligations *[]Obligation) error {
	root := s.find(v)
	e := s.get(root)
	if s.isError(t) || t == e.self {
		return nil
	}
	if e.known != types.NoTypeID {
		*obligations = append(*obligations, Obligation{A: e.known, B: t, Eq: true})
		return nil
	}
	if err := s.occursCheck(root, t); err != nil {
		return err
	}
	for _, bound := range slices.Concat(e.lowers, e.uppers) {
		if s.in.HeadsConflict(bound, t) {
			return s.incompatible(e, t, bound)
		}
	}
	logger.Debug("binding", "var", e.name, "to", s.in.Slog(t))
	e.known = t
	s.put(root, e)
	s.log(Action{Kind: ActionBind, Var: root, Type: t})

	for _, lower := range e.lowers {
		*obligations = append(*obligations, Obligation{A: lower, B: t})
	}
	for _, upper := range e.uppers {
		*obligations = append(*obligations, Obligation{A: t, B: upper})
	}
	for _, w := range e.subs {
		if err := s.addUpper(w, t, obligations); err != nil {
			return err
		}
	}
	for _, w := range e.supers {
		if err := s.addLower(w, t, obligations); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) link(sub, sup ID, obligations *[]Obligation) error {
	subRoot, supRoot := s.find(sub), s.find(sup)
	if subRoot == supRoot {
		return nil
	}
	subEntry, supEntry := s.get(subRoot), s.get(supRoot)
	if slices.Contains(subEntry.supers, supRoot) {
		return nil
	}
	logger.Debug("linking", "sub", subEntry.name, "sup", supEntry.name)
	subEntry.supers = append(slices.Clip(subEntry.supers), supRoot)
	s.put(subRoot, subEntry)
	supEntry.subs = append(slices.Clip(supEntry.subs), subRoot)
	s.put(supRoot, supEntry)
	s.log(Action{Kind: ActionLink, Var: subRoot, Other: supRoot})

	for _, lower := range lowerish(subEntry) {
		if err := s.addLower(supRoot, lower, obligations); err != nil {
			return err
		}
	}
	for _, upper := range upperish(supEntry) {
		if err := s.addUpper(subRoot, upper, obligations); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) unify(a, b ID, obligations *[]Obligation) error {
	rootA, rootB := s.find(a), s.find(b)
	if rootA == rootB {
		return nil
	}
	// the older variable stays the representative
	root, child := rootA, rootB
	if child < root {
		root, child = child, root
	}
	rootEntry, childEntry := s.get(root), s.get(child)
	for _, t := range slices.Concat(lowerish(childEntry), upperish(childEntry)) {
		if err := s.occursCheck(root, t); err != nil {
			return err
		}
	}
	for _, t := range slices.Concat(lowerish(rootEntry), upperish(rootEntry)) {
		if err := s.occursCheck(child, t); err != nil {
			return err
		}
	}
	logger.Debug("unifying", "root", rootEntry.name, "child", childEntry.name)

	for _, lower := range lowerish(childEntry) {
		for _, upper := range upperish(rootEntry) {
			*obligations = append(*obligations, Obligation{A: lower, B: upper})
		}
	}
	for _, lower := range lowerish(rootEntry) {
		for _, upper := range upperish(childEntry) {
			*obligations = append(*obligations, Obligation{A: lower, B: upper})
		}
	}

	merged := rootEntry
	if merged.known == types.NoTypeID {
		merged.known = childEntry.known
	}
	merged.lowers = mergeUnique(rootEntry.lowers, childEntry.lowers)
	merged.uppers = mergeUnique(rootEntry.uppers, childEntry.uppers)
	merged.subs = withoutClass(mergeUnique(rootEntry.subs, childEntry.subs), root, child)
	merged.supers = withoutClass(mergeUnique(rootEntry.supers, childEntry.supers), root, child)
	s.put(root, merged)
	childEntry.parent = root
	s.put(child, childEntry)
	s.log(Action{Kind: ActionUnify, Var: root, Other: child})

	// bounds that only one side had now hold for the variables linked to the other side
	for _, upper := range upperish(childEntry) {
		for _, w := range rootEntry.subs {
			if err := s.addUpper(w, upper, obligations); err != nil {
				return err
			}
		}
	}
	for _, upper := range upperish(rootEntry) {
		for _, w := range childEntry.subs {
			if err := s.addUpper(w, upper, obligations); err != nil {
				return err
			}
		}
	}
	for _, lower := range lowerish(childEntry) {
		for _, w := range rootEntry.supers {
			if err := s.addLower(w, lower, obligations); err != nil {
				return err
			}
		}
	}
	for _, lower := range lowerish(rootEntry) {
		for _, w := range childEntry.supers {
			if err := s.addLower(w, lower, obligations); err != nil {
				return err
			}
		}
	}
	return nil
}

// occursCheck fails if t mentions the class of root, looking through known variables.
func (s *Store) occursCheck(root ID, t types.TypeID) error {
	visited := set.New[types.TypeID](8)
	cyclic := s.reaches(t, visited, func(tt types.Type) bool {
		return tt.Kind == types.KindVar && s.isMember(tt.Var) && s.find(tt.Var) == root
	})
	if cyclic {
		return inferr.New(inferr.NewCyclicType{
			Var:  s.in.String(s.get(root).self),
			Type: s.in.String(t),
		})
	}
	return nil
}

// reaches reports whether some type reachable from t satisfies pred, resolving known variables.
func (s *Store) reaches(t types.TypeID, visited *set.Set[types.TypeID], pred func(types.Type) bool) bool {
	found := false
	s.in.Walk(t, func(id types.TypeID, tt types.Type) bool {
		if found || !visited.Insert(id) {
			return false
		}
		if pred(tt) {
			found = true
			return false
		}
		if tt.Kind == types.KindVar && s.isMember(tt.Var) {
			if known := s.get(s.find(tt.Var)).known; known != types.NoTypeID {
				found = s.reaches(known, visited, pred)
			}
		}
		return !found
	})
	return found
}

func (s *Store) isMember(v ID) bool {
	_, ok := s.entries.Get(v)
	return ok
}

func (s *Store) isError(t types.TypeID) bool {
	tt, ok := s.in.Lookup(t)
	return ok && tt.IsError()
}

func (s *Store) incompatible(e entry, bound, existing types.TypeID) error {
	return inferr.New(inferr.NewIncompatibleBound{
		Var:      s.in.String(e.self),
		Bound:    s.in.String(bound),
		Existing: s.in.String(existing),
	})
}

func lowerish(e entry) []types.TypeID {
	if e.known != types.NoTypeID {
		return append(slices.Clip(e.lowers), e.known)
	}
	return e.lowers
}

func upperish(e entry) []types.TypeID {
	if e.known != types.NoTypeID {
		return append(slices.Clip(e.uppers), e.known)
	}
	return e.uppers
}

func mergeUnique[A comparable](fst, snd []A) []A {
	merged := slices.Clip(slices.Clone(fst))
	for _, elem := range snd {
		if !slices.Contains(merged, elem) {
			merged = append(merged, elem)
		}
	}
	return merged
}

func withoutClass(ids []ID, members ...ID) []ID {
	return slices.DeleteFunc(ids, func(id ID) bool {
		return slices.Contains(members, id)
	})
}
