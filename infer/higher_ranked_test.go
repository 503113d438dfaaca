package infer

import (
	"testing"

	"github.com/cottand/tyrel/infer/inferr"
	"github.com/cottand/tyrel/infer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHigherRanked(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		code inferr.ErrCode
	}{
		{name: "identical shells", a: "for<'a> fn(&'a Int) -> &'a Int", b: "for<'a> fn(&'a Int) -> &'a Int"},
		{name: "renamed shells", a: "for<T> fn(T) -> T", b: "for<U> fn(U) -> U"},
		{name: "instantiation", a: "for<T> fn(T) -> T", b: "fn(Int) -> Int"},
		{name: "region instantiation", a: "for<'a> fn(&'a Int)", b: "fn(&'static Int)"},
		{name: "nested shells", a: "for<'a> fn(&'a Int) -> for<'b> fn(&'b Int)", b: "for<'x> fn(&'x Int) -> for<'y> fn(&'y Int)"},
		{name: "monomorphic is not generic", a: "fn(Int) -> Int", b: "for<T> fn(T) -> T", code: inferr.Mismatch},
		{name: "named region escapes", a: "fn(&'x Int)", b: "for<'a> fn(&'a Int)", code: inferr.RegionsInsufficientlyPolymorphic},
		{name: "static region escapes", a: "fn(&'static Int)", b: "for<'a> fn(&'a Int)", code: inferr.RegionsInsufficientlyPolymorphic},
		{name: "skolems meet", a: "for<'a> fn(&'a Int, &'a Int)", b: "for<'x, 'y> fn(&'x Int, &'y Int)", code: inferr.RegionsInsufficientlyPolymorphic},
		{name: "placeholder escapes into variable", a: "fn(?X)", b: "for<T> fn(T)", code: inferr.TypeLeak},
		{name: "placeholder escapes inside structure", a: "fn(List<?X>)", b: "for<T> fn(List<T>)", code: inferr.TypeLeak},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			a, b := fx.ty(tt.a), fx.ty(tt.b)
			before := fx.s.Stats()
			actions := len(fx.s.Store().Actions())

			res, err := Relate(fx.fields(), a, b)
			if tt.code == inferr.None {
				require.NoError(t, err)
				assert.Equal(t, a, res)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, inferr.CodeOf(err), err.Error())
			assert.Equal(t, withoutTypes(before), withoutTypes(fx.s.Stats()), "a failed check leaves nothing behind")
			assert.Len(t, fx.s.Store().Actions(), actions)
		})
	}
}

func TestHigherRankedOverlyPolymorphic(t *testing.T) {
	fx := newFixture(t)
	in := fx.in
	r := fx.s.FreshRegion()
	a := in.Fn([]types.TypeID{in.Ref(r, in.Builtins().Int, false)}, in.Builtins().Unit)

	_, err := Relate(fx.fields(), a, fx.ty("for<'a> fn(&'a Int)"))
	require.Error(t, err)
	assert.Equal(t, inferr.RegionsOverlyPolymorphic, inferr.CodeOf(err))
	assert.Empty(t, fx.s.Regions().Constraints())
}

func TestHigherRankedKeepsFreshVariablesOnSuccess(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.sub("for<T> fn(T) -> T", "fn(Int) -> Int")
	require.NoError(t, err)

	stats := fx.s.Stats()
	assert.Equal(t, 1, stats.Vars, "T was instantiated")
	e, ok := fx.s.Store().Probe(0)
	require.True(t, ok)
	assert.Equal(t, "T", e.Name)
	assert.Equal(t, []types.TypeID{fx.in.Builtins().Int}, e.Lowers)
	assert.Equal(t, []types.TypeID{fx.in.Builtins().Int}, e.Uppers)
}

func TestCommitIfOK(t *testing.T) {
	fx := newFixture(t)
	err := fx.s.CommitIfOK(func(Snapshot) error {
		fx.s.FreshVar("kept")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fx.s.Stats().Vars)

	err = fx.s.CommitIfOK(func(snap Snapshot) error {
		fx.s.FreshVar("dropped")
		fx.s.FreshRegion()
		assert.True(t, snap.Regions().CreatedSince(types.VarRegion(0)))
		_, err := fx.sub("Int", "Bool")
		return err
	})
	assert.Equal(t, inferr.Mismatch, inferr.CodeOf(err))
	assert.Equal(t, 1, fx.s.Stats().Vars)
	assert.Equal(t, 0, fx.s.Stats().RegionVars)

	err = fx.s.Probe(func() error {
		fx.s.FreshVar("probed")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fx.s.Stats().Vars)
}
