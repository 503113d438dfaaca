package infer

import (
	"testing"

	"github.com/cottand/tyrel/infer/syntax"
	"github.com/cottand/tyrel/infer/types"
	"github.com/cottand/tyrel/infer/tyvar"
	"github.com/stretchr/testify/require"
)

var testTrace = types.Trace{Desc: "test comparison"}

type fixture struct {
	t  *testing.T
	in *types.Interner
	s  *Session
	p  *syntax.Parser
}

// newFixture declares:
//
//	List<+T>  Inv<=T>  Sink<-T>  Phantom<*T>  Pair<+A, +B>  Holder<'-r, =T>
func newFixture(t *testing.T) *fixture {
	t.Helper()
	in := types.NewInterner()
	defs := []struct {
		name    string
		regions []types.Variance
		types   []types.Variance
	}{
		{"List", nil, []types.Variance{types.Covariant}},
		{"Inv", nil, []types.Variance{types.Invariant}},
		{"Sink", nil, []types.Variance{types.Contravariant}},
		{"Phantom", nil, []types.Variance{types.Bivariant}},
		{"Pair", nil, []types.Variance{types.Covariant, types.Covariant}},
		{"Holder", []types.Variance{types.Contravariant}, []types.Variance{types.Invariant}},
	}
	for _, def := range defs {
		_, err := in.DeclareDef(def.name, def.regions, def.types)
		require.NoError(t, err)
	}
	s := NewSession(in)
	p := syntax.NewParser(in, s.FreshVar)
	p.DeclareParams("T", "U")
	return &fixture{t: t, in: in, s: s, p: p}
}

func (fx *fixture) ty(src string) types.TypeID {
	fx.t.Helper()
	t, err := fx.p.Parse(src)
	require.NoError(fx.t, err, "parsing %s", src)
	return t
}

func (fx *fixture) varOf(name string) tyvar.ID {
	fx.t.Helper()
	t, ok := fx.p.Var(name)
	require.True(fx.t, ok, "no variable ?%s", name)
	return fx.in.MustLookup(t).Var
}

func (fx *fixture) entry(name string) tyvar.Entry {
	fx.t.Helper()
	e, ok := fx.s.Store().Probe(fx.varOf(name))
	require.True(fx.t, ok)
	return e
}

func (fx *fixture) fields() *CombineFields {
	return fx.s.Fields(testTrace, true)
}

func (fx *fixture) sub(a, b string) (types.TypeID, error) {
	fx.t.Helper()
	return Relate(fx.fields(), fx.ty(a), fx.ty(b))
}

// withoutTypes drops the number of interned types, which never shrinks
func withoutTypes(st Stats) Stats {
	st.Types = 0
	return st
}
