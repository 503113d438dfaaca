package tyvar

import (
	"slices"
	"testing"

	"github.com/cottand/tyrel/infer/inferr"
	"github.com/cottand/tyrel/infer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *types.Interner, types.DefID) {
	t.Helper()
	in := types.NewInterner()
	list, err := in.DeclareDef("List", nil, []types.Variance{types.Covariant})
	require.NoError(t, err)
	return NewStore(in), in, list
}

func TestResolveUnknownAndKnown(t *testing.T) {
	s, in, _ := newTestStore(t)
	x := s.NewVar("X")
	xTy := in.Var(x)

	assert.Equal(t, xTy, s.Resolve(xTy), "unknown variables resolve to themselves")
	assert.Equal(t, in.Builtins().Int, s.Resolve(in.Builtins().Int))

	obligations, err := s.Bind(x, in.Builtins().Int)
	require.NoError(t, err)
	assert.Empty(t, obligations)
	assert.Equal(t, in.Builtins().Int, s.Resolve(xTy))
	assert.Equal(t, s.Resolve(xTy), s.Resolve(s.Resolve(xTy)), "resolution is idempotent")
}

func TestBoundsProduceObligations(t *testing.T) {
	s, in, _ := newTestStore(t)
	b := in.Builtins()
	x := s.NewVar("X")

	obligations, err := s.BindUpperBound(x, b.Int)
	require.NoError(t, err)
	assert.Empty(t, obligations)

	entry, ok := s.Probe(x)
	require.True(t, ok)
	assert.Equal(t, []types.TypeID{b.Int}, entry.Uppers)
	assert.False(t, entry.IsKnown())

	y := s.NewVar("Y")
	obligations, err = s.BindLowerBound(x, in.Var(y))
	require.NoError(t, err)
	assert.Equal(t, []Obligation{{A: in.Var(y), B: b.Int}}, obligations)

	// adding the same bound twice is a no-op
	obligations, err = s.BindUpperBound(x, b.Int)
	require.NoError(t, err)
	assert.Empty(t, obligations)
}

func TestIncompatibleBound(t *testing.T) {
	s, in, _ := newTestStore(t)
	b := in.Builtins()
	x := s.NewVar("X")

	_, err := s.BindLowerBound(x, b.Bool)
	require.NoError(t, err)
	_, err = s.BindUpperBound(x, b.Int)
	require.Error(t, err)
	assert.Equal(t, inferr.IncompatibleBound, inferr.CodeOf(err))

	y := s.NewVar("Y")
	_, err = s.Bind(y, b.Str)
	require.NoError(t, err)
	obligations, err := s.BindUpperBound(y, b.Int)
	require.NoError(t, err, "known variables turn new bounds into obligations")
	assert.Equal(t, []Obligation{{A: b.Str, B: b.Int}}, obligations)
}

func TestSameDirectionBoundsMustAgree(t *testing.T) {
	tests := []struct {
		name string
		bind func(s *Store, v ID, t types.TypeID) ([]Obligation, error)
	}{
		{"upper bounds", (*Store).BindUpperBound},
		{"lower bounds", (*Store).BindLowerBound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, in, list := newTestStore(t)
			b := in.Builtins()
			x := s.NewVar("X")

			_, err := tt.bind(s, x, b.Int)
			require.NoError(t, err)
			_, err = tt.bind(s, x, in.Var(s.NewVar("Y")))
			require.NoError(t, err, "variables have no head to conflict with")

			_, err = tt.bind(s, x, b.Bool)
			require.Error(t, err)
			assert.Equal(t, inferr.IncompatibleBound, inferr.CodeOf(err))
			_, err = tt.bind(s, x, in.Adt(list, nil, []types.TypeID{b.Int}))
			assert.Equal(t, inferr.IncompatibleBound, inferr.CodeOf(err))

			entry, _ := s.Probe(x)
			assert.NotContains(t, slices.Concat(entry.Lowers, entry.Uppers), b.Bool)
		})
	}
}

func TestOccursCheck(t *testing.T) {
	s, in, list := newTestStore(t)
	x := s.NewVar("X")
	listOfX := in.Adt(list, nil, []types.TypeID{in.Var(x)})

	_, err := s.Bind(x, listOfX)
	require.Error(t, err)
	assert.Equal(t, inferr.CyclicType, inferr.CodeOf(err))

	_, err = s.BindUpperBound(x, listOfX)
	assert.Equal(t, inferr.CyclicType, inferr.CodeOf(err))

	// through a known variable
	y := s.NewVar("Y")
	_, err = s.Bind(y, listOfX)
	require.NoError(t, err)
	_, err = s.BindLowerBound(x, in.Adt(list, nil, []types.TypeID{in.Var(y)}))
	assert.Equal(t, inferr.CyclicType, inferr.CodeOf(err))
}

func TestErrorBoundsAreIgnored(t *testing.T) {
	s, in, _ := newTestStore(t)
	x := s.NewVar("X")
	obligations, err := s.BindUpperBound(x, in.Builtins().Error)
	require.NoError(t, err)
	assert.Empty(t, obligations)
	entry, _ := s.Probe(x)
	assert.Empty(t, entry.Uppers)
}

func TestLinkPropagatesEagerly(t *testing.T) {
	s, in, _ := newTestStore(t)
	b := in.Builtins()
	x, y := s.NewVar("X"), s.NewVar("Y")

	_, err := s.BindLowerBound(x, b.Int)
	require.NoError(t, err)
	_, err = s.BindUpperBound(y, b.Int)
	require.NoError(t, err)

	obligations, err := s.Link(x, SubtypeOf, y)
	require.NoError(t, err)
	assert.Contains(t, obligations, Obligation{A: b.Int, B: b.Int})

	xEntry, _ := s.Probe(x)
	yEntry, _ := s.Probe(y)
	assert.Equal(t, []ID{y}, xEntry.Supers)
	assert.Equal(t, []ID{x}, yEntry.Subs)
	assert.Contains(t, yEntry.Lowers, b.Int)
	assert.Contains(t, xEntry.Uppers, b.Int)
	assert.False(t, xEntry.IsKnown())
	assert.False(t, yEntry.IsKnown())

	// later bounds flow along the link
	z := s.NewVar("Z")
	_, err = s.BindLowerBound(x, in.Var(z))
	require.NoError(t, err)
	yEntry, _ = s.Probe(y)
	assert.Contains(t, yEntry.Lowers, in.Var(z))
}

func TestLinkRejectsIncompatibleBoundsImmediately(t *testing.T) {
	s, in, _ := newTestStore(t)
	x, y := s.NewVar("X"), s.NewVar("Y")
	_, err := s.BindLowerBound(x, in.Builtins().Bool)
	require.NoError(t, err)
	_, err = s.BindUpperBound(y, in.Builtins().Int)
	require.NoError(t, err)

	_, err = s.Link(y, SupertypeOf, x)
	assert.Equal(t, inferr.IncompatibleBound, inferr.CodeOf(err))
}

func TestUnifyMergesClasses(t *testing.T) {
	s, in, _ := newTestStore(t)
	b := in.Builtins()
	x, y := s.NewVar("X"), s.NewVar("Y")
	_, err := s.BindLowerBound(x, b.Int)
	require.NoError(t, err)
	_, err = s.BindUpperBound(y, b.Int)
	require.NoError(t, err)

	obligations, err := s.Unify(y, x)
	require.NoError(t, err)
	assert.Equal(t, []Obligation{{A: b.Int, B: b.Int}}, obligations)

	assert.Equal(t, s.Resolve(in.Var(x)), s.Resolve(in.Var(y)))
	entry, _ := s.Probe(y)
	assert.Equal(t, x, entry.Root, "the older variable represents the class")

	_, err = s.Bind(y, b.Int)
	require.NoError(t, err)
	assert.Equal(t, b.Int, s.Resolve(in.Var(x)))
}

func TestSnapshotRollback(t *testing.T) {
	s, in, _ := newTestStore(t)
	x := s.NewVar("X")
	snap := s.Snapshot()

	y := s.NewVar("Y")
	_, err := s.BindUpperBound(x, in.Var(y))
	require.NoError(t, err)
	assert.Equal(t, []ID{x}, s.TouchedSince(snap))
	assert.True(t, snap.CreatedSince(y))
	assert.False(t, snap.CreatedSince(x))
	assert.Len(t, s.ActionsSince(snap), 2)

	s.Rollback(snap)
	assert.Equal(t, 1, s.Len())
	entry, _ := s.Probe(x)
	assert.Empty(t, entry.Uppers)
	assert.Empty(t, s.ActionsSince(snap))

	_, ok := s.Probe(y)
	assert.False(t, ok)
	z := s.NewVar("Z")
	assert.NotEqual(t, y, z, "ids of forgotten variables are not reused")
	assert.Equal(t, "?Y", in.String(in.Var(y)))
	assert.Equal(t, "?Z", in.String(in.Var(z)))
	assert.Equal(t, 2, s.Len())
	assert.True(t, snap.CreatedSince(z))
}

func TestMentions(t *testing.T) {
	s, in, list := newTestStore(t)
	x, y := s.NewVar("X"), s.NewVar("Y")
	placeholder := in.Placeholder(0, "T")

	_, err := s.Bind(y, placeholder)
	require.NoError(t, err)
	_, err = s.BindLowerBound(x, in.Adt(list, nil, []types.TypeID{in.Var(y)}))
	require.NoError(t, err)

	isPlaceholder := func(tt types.Type) bool { return tt.Kind == types.KindPlaceholder }
	_, found := s.Mentions(x, isPlaceholder)
	assert.True(t, found, "known variables are looked through")

	z := s.NewVar("Z")
	_, found = s.Mentions(z, isPlaceholder)
	assert.False(t, found)
}
