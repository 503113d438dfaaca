package infer

import (
	"slices"
	"testing"

	"github.com/cottand/tyrel/infer/inferr"
	"github.com/cottand/tyrel/infer/region"
	"github.com/cottand/tyrel/infer/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubReflexive(t *testing.T) {
	tests := []string{
		"Int",
		"()",
		"T",
		"List<List<Bool>>",
		"fn(Int, Str) -> Bool",
		"&'a mut List<Int>",
		"Holder<'static, (Int, Str)>",
		"for<'a> fn(&'a Int) -> &'a Int",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			fx := newFixture(t)
			ty := fx.ty(src)
			before := fx.s.Stats()

			res, err := Relate(fx.fields(), ty, ty)
			require.NoError(t, err)
			assert.Equal(t, ty, res)
			assert.Equal(t, before, fx.s.Stats(), "nothing is recorded")
			assert.Empty(t, fx.s.Store().Actions())
		})
	}
}

func TestSubErrorAbsorbs(t *testing.T) {
	tests := []string{
		"Int",
		"{error}",
		"?V",
		"List<?V>",
		"&'a Int",
		"for<T> fn(T) -> T",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			fx := newFixture(t)
			errTy := fx.in.Builtins().Error
			other := fx.ty(src)
			before := fx.s.Stats()
			actions := len(fx.s.Store().Actions())

			res, err := Relate(fx.fields(), errTy, other)
			require.NoError(t, err)
			assert.Equal(t, errTy, res)

			res, err = Relate(fx.fields(), other, errTy)
			require.NoError(t, err)
			assert.Equal(t, errTy, res)

			res, err = fx.fields().Equate().Tys(other, errTy)
			require.NoError(t, err)
			assert.Equal(t, errTy, res)

			assert.Equal(t, before, fx.s.Stats())
			assert.Len(t, fx.s.Store().Actions(), actions)
		})
	}
}

func TestSubErrorInsideStructure(t *testing.T) {
	fx := newFixture(t)
	res, err := fx.sub("List<{error}>", "List<Int>")
	require.NoError(t, err)
	assert.Equal(t, "List<{error}>", fx.in.String(res))
}

func TestSubVarBelowConcrete(t *testing.T) {
	fx := newFixture(t)
	res, err := fx.sub("?V", "Int")
	require.NoError(t, err)
	assert.Equal(t, fx.ty("?V"), res, "the variable is returned unresolved")

	e := fx.entry("V")
	assert.False(t, e.IsKnown())
	assert.Equal(t, []types.TypeID{fx.in.Builtins().Int}, e.Uppers)
	assert.Empty(t, e.Lowers)
}

func TestSubVarAboveConcrete(t *testing.T) {
	fx := newFixture(t)
	res, err := fx.sub("Int", "?V")
	require.NoError(t, err)
	assert.Equal(t, fx.in.Builtins().Int, res)

	e := fx.entry("V")
	assert.False(t, e.IsKnown())
	assert.Equal(t, []types.TypeID{fx.in.Builtins().Int}, e.Lowers)
	assert.Empty(t, e.Uppers)
}

func TestSubVarVarLinks(t *testing.T) {
	fx := newFixture(t)
	res, err := fx.sub("?A", "?B")
	require.NoError(t, err)
	assert.Equal(t, fx.ty("?A"), res)

	a, b := fx.entry("A"), fx.entry("B")
	assert.Equal(t, []types.VarID{fx.varOf("B")}, a.Supers)
	assert.Equal(t, []types.VarID{fx.varOf("A")}, b.Subs)
	assert.False(t, a.IsKnown())
	assert.False(t, b.IsKnown())
}

func TestSubVarBoundsMustAgree(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.sub("?V", "Int")
	require.NoError(t, err)
	_, err = fx.sub("Int", "?V")
	require.NoError(t, err)

	_, err = fx.sub("Bool", "?V")
	require.Error(t, err)
	assert.Equal(t, inferr.IncompatibleBound, inferr.CodeOf(err))
}

func TestSubVarSameDirectionBoundsMustAgree(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"two upper bounds", "Pair<?X, ?X>", "Pair<Int, Bool>"},
		{"two lower bounds", "Pair<Int, Bool>", "Pair<?X, ?X>"},
		{"upper bounds with different definitions", "Pair<?X, ?X>", "Pair<List<Int>, Inv<Int>>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			_, err := fx.sub(tt.a, tt.b)
			require.Error(t, err)
			assert.Equal(t, inferr.IncompatibleBound, inferr.CodeOf(err))
			assert.NotContains(t, slices.Concat(fx.entry("X").Lowers, fx.entry("X").Uppers), fx.in.Builtins().Bool)
		})
	}

	fx := newFixture(t)
	_, err := fx.fields().Glb().Tys(fx.ty("Int"), fx.ty("Bool"))
	assert.Equal(t, inferr.Mismatch, inferr.CodeOf(err), "no type lies below both Int and Bool")
}

func TestSubThroughLinkedVars(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.sub("?A", "?B")
	require.NoError(t, err)
	_, err = fx.sub("?B", "Int")
	require.NoError(t, err)

	assert.Contains(t, fx.entry("A").Uppers, fx.in.Builtins().Int, "upper bounds flow down links")
	_, err = fx.sub("Bool", "?A")
	assert.Equal(t, inferr.IncompatibleBound, inferr.CodeOf(err))
}

func TestSubOccursCheck(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.sub("?V", "List<?V>")
	require.Error(t, err)
	assert.Equal(t, inferr.CyclicType, inferr.CodeOf(err))
}

func TestSubInvariantSlot(t *testing.T) {
	fx := newFixture(t)
	general, specific := "for<'a> fn(&'a Int)", "fn(&'static Int)"

	_, err := fx.sub(general, specific)
	require.NoError(t, err, "the slot contents are strict subtypes")
	_, err = fx.sub(specific, general)
	require.Error(t, err)

	_, err = fx.sub("Inv<"+general+">", "Inv<"+specific+">")
	require.Error(t, err)
	assert.Equal(t, inferr.RegionsInsufficientlyPolymorphic, inferr.CodeOf(err))

	_, err = fx.sub("List<"+general+">", "List<"+specific+">")
	assert.NoError(t, err)
}

func TestSubContravariantFlip(t *testing.T) {
	fx := newFixture(t)
	general, specific := "for<'a> fn(&'a Int)", "fn(&'static Int)"

	_, err := fx.sub("Sink<"+specific+">", "Sink<"+general+">")
	assert.NoError(t, err)
	_, err = fx.sub("Sink<"+general+">", "Sink<"+specific+">")
	assert.Error(t, err)

	_, err = fx.sub("Sink<?X>", "Sink<Int>")
	require.NoError(t, err)
	assert.Equal(t, []types.TypeID{fx.in.Builtins().Int}, fx.entry("X").Lowers)
	assert.Empty(t, fx.entry("X").Uppers)
}

func TestSubContravariantSwitchesExpected(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.sub("Sink<Int>", "Sink<Bool>")
	require.Error(t, err)

	var mismatch inferr.NewSortMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "Int", mismatch.Values.Expected)
	assert.Equal(t, "Bool", mismatch.Values.Found)
	assert.Equal(t, testTrace, mismatch.Trace)

	_, err = Relate(fx.s.Fields(testTrace, false), fx.ty("Sink<Int>"), fx.ty("Sink<Bool>"))
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "Bool", mismatch.Values.Expected)
}

func TestSubBivariantSlot(t *testing.T) {
	fx := newFixture(t)
	before := fx.s.Stats()
	_, err := fx.sub("Phantom<Int>", "Phantom<fn(Bool) -> Str>")
	assert.NoError(t, err)

	_, err = fx.sub("Phantom<?X>", "Phantom<&'a Int>")
	require.NoError(t, err)
	x := fx.entry("X")
	assert.Empty(t, x.Lowers)
	assert.Empty(t, x.Uppers)
	assert.Equal(t, before.Constraints, fx.s.Stats().Constraints)
}

func TestSubRegionsRecordOneConstraint(t *testing.T) {
	fx := newFixture(t)
	a, b := types.NamedRegion("a"), types.NamedRegion("b")

	res, err := fx.fields().Sub().Regions(a, b)
	require.NoError(t, err)
	assert.Equal(t, a, res)
	assert.Equal(t, []region.Constraint{{Origin: region.Subtype(testTrace), Sub: a, Sup: b}}, fx.s.Regions().Constraints())
}

func TestSubReferences(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.sub("&'a Int", "&'b Int")
	require.NoError(t, err)
	constraints := fx.s.Regions().Constraints()
	require.Len(t, constraints, 1)
	assert.Equal(t, "'b <= 'a", constraints[0].String(), "the referent must outlive the shorter borrow")

	_, err = fx.sub("&'a mut ?X", "&'a mut Int")
	require.NoError(t, err)
	assert.Equal(t, fx.in.Builtins().Int, fx.s.Store().Resolve(fx.ty("?X")), "mutable referents are equated")

	_, err = fx.sub("&'a Int", "&'a mut Int")
	assert.Equal(t, inferr.MutabilityMismatch, inferr.CodeOf(err))
}

func TestSubShapeErrors(t *testing.T) {
	tests := []struct {
		a, b string
		code inferr.ErrCode
	}{
		{"Int", "Bool", inferr.Mismatch},
		{"List<Int>", "Inv<Int>", inferr.Mismatch},
		{"T", "U", inferr.Mismatch},
		{"(Int, Bool)", "(Int,)", inferr.ArityMismatch},
		{"fn(Int) -> Int", "fn() -> Int", inferr.ArityMismatch},
		{"List<Int>", "List<Int, Int>", inferr.ArityMismatch},
		{"Pair<Int, Bool>", "Pair<Int, Str>", inferr.Mismatch},
		{"fn(Int) -> Int", "(Int, Int)", inferr.Mismatch},
		{"fn(Int) -> Bool", "fn(Int) -> Int", inferr.Mismatch},
	}
	for _, tt := range tests {
		t.Run(tt.a+" <: "+tt.b, func(t *testing.T) {
			fx := newFixture(t)
			_, err := fx.sub(tt.a, tt.b)
			require.Error(t, err)
			assert.Equal(t, tt.code, inferr.CodeOf(err))
		})
	}
}

func TestRelateWithVariance(t *testing.T) {
	fx := newFixture(t)
	sub := fx.fields().Sub()
	a, b := types.NamedRegion("a"), types.NamedRegion("b")

	r, err := RelateWithVariance(sub, types.Contravariant, a, b)
	require.NoError(t, err)
	assert.Equal(t, b, r, "contravariant slots are related the other way around")
	assert.Equal(t, "'b <= 'a", fx.s.Regions().Constraints()[0].String())

	_, err = RelateWithVariance(sub, types.Bivariant, a, b)
	require.NoError(t, err)
	assert.Len(t, fx.s.Regions().Constraints(), 1)

	_, err = RelateWithVariance(sub, types.Invariant, a, b)
	require.NoError(t, err)
	assert.Len(t, fx.s.Regions().Constraints(), 3)

	ty, err := RelateWithVariance(sub, types.Covariant, fx.ty("Int"), fx.ty("Int"))
	require.NoError(t, err)
	assert.Equal(t, fx.in.Builtins().Int, ty)
}
