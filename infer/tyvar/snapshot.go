package tyvar

import (
	"slices"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/tyrel/infer/types"
	set "github.com/hashicorp/go-set/v3"
)

type ActionKind uint8

const (
	ActionNewVar ActionKind = iota
	ActionBind
	ActionUpper
	ActionLower
	ActionLink
	ActionUnify
)

func (k ActionKind) String() string {
	switch k {
	case ActionNewVar:
		return "new"
	case ActionBind:
		return "bind"
	case ActionUpper:
		return "upper"
	case ActionLower:
		return "lower"
	case ActionLink:
		return "link"
	case ActionUnify:
		return "unify"
	default:
		return "unknown"
	}
}

// Action is one entry of the store's log of mutations.
// Type is set for bindings and bounds, Other for links and unifications.
type Action struct {
	Kind  ActionKind
	Var   ID
	Type  types.TypeID
	Other ID
}

func (s *Store) log(a Action) {
	s.actions = append(s.actions, a)
}

// Snapshot captures the state of a Store so that it can be rolled back to.
// Taking a snapshot is O(1): the variable entries live in a persistent map.
type Snapshot struct {
	entries *immutable.Map[ID, entry]
	vars    uint32
	actions int
}

// Vars is the ID the next variable would have had when the snapshot was taken.
// Variables with a smaller ID predate it.
func (snap Snapshot) Vars() uint32 { return snap.vars }

// CreatedSince reports whether v was created after snap was taken
func (snap Snapshot) CreatedSince(v ID) bool {
	return uint32(v) >= snap.vars
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		entries: s.entries,
		vars:    s.count,
		actions: len(s.actions),
	}
}

// Rollback restores the store to the state captured by snap, forgetting every
// variable and binding created since. IDs are never handed out twice, so a type
// still mentioning a forgotten variable cannot be mistaken for a newer one.
func (s *Store) Rollback(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger.Debug("rolling back", "actions", len(s.actions)-snap.actions)
	s.entries = snap.entries
	s.actions = s.actions[:snap.actions]
}

// Actions returns the log of mutations, oldest first.
func (s *Store) Actions() []Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.actions)
}

// ActionsSince returns the mutations performed after snap was taken.
func (s *Store) ActionsSince(snap Snapshot) []Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.actions[snap.actions:])
}

// TouchedSince returns every variable, created before snap, whose class was
// mutated after snap was taken.
func (s *Store) TouchedSince(snap Snapshot) []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	touched := set.New[ID](8)
	for _, a := range s.actions[snap.actions:] {
		if a.Kind == ActionNewVar {
			continue
		}
		touched.Insert(a.Var)
		if a.Kind == ActionLink || a.Kind == ActionUnify {
			touched.Insert(a.Other)
		}
	}
	old := slices.DeleteFunc(touched.Slice(), snap.CreatedSince)
	slices.Sort(old)
	return old
}
