package infer

import (
	"github.com/cottand/tyrel/infer/inferr"
	"github.com/cottand/tyrel/infer/types"
	"github.com/cottand/tyrel/infer/tyvar"
)

// CombineFields is the state threaded through one comparison.
type CombineFields struct {
	session *Session
	// AIsExpected says whether the first operand is the expected type, for diagnostics only
	AIsExpected bool
	Trace       types.Trace
}

func (f *CombineFields) Session() *Session { return f.session }

// SwitchExpected returns a copy of f with AIsExpected flipped, to be used
// whenever the operands of a comparison are swapped.
func (f *CombineFields) SwitchExpected() *CombineFields {
	switched := *f
	switched.AIsExpected = !f.AIsExpected
	return &switched
}

func (f *CombineFields) Sub() *Sub             { return &Sub{fields: f} }
func (f *CombineFields) Equate() *Equate       { return &Equate{fields: f} }
func (f *CombineFields) Bivariate() *Bivariate { return &Bivariate{fields: f} }
func (f *CombineFields) Lub() *Lub             { return &Lub{fields: f} }
func (f *CombineFields) Glb() *Glb             { return &Glb{fields: f} }

// instantiate records that t relates to v as dir says (t <: v for SubtypeOf),
// then relates every pair of types the store reports as newly constrained.
func (f *CombineFields) instantiate(t types.TypeID, dir tyvar.Direction, v tyvar.ID) error {
	store := f.session.store
	logger.Debug("instantiating", "type", f.session.in.Slog(t), "dir", dir.String(), "var", v)

	var (
		obligations []tyvar.Obligation
		err         error
	)
	switch dir {
	case tyvar.EqTo:
		obligations, err = store.Bind(v, t)
	case tyvar.SubtypeOf:
		obligations, err = store.BindLowerBound(v, t)
	case tyvar.SupertypeOf:
		obligations, err = store.BindUpperBound(v, t)
	}
	if err != nil {
		return err
	}
	return f.discharge(obligations)
}

// link relates two variables: a dir b.
func (f *CombineFields) link(a tyvar.ID, dir tyvar.Direction, b tyvar.ID) error {
	obligations, err := f.session.store.Link(a, dir, b)
	if err != nil {
		return err
	}
	return f.discharge(obligations)
}

func (f *CombineFields) discharge(obligations []tyvar.Obligation) error {
	for _, o := range obligations {
		var err error
		if o.Eq {
			_, err = f.Equate().Tys(o.A, o.B)
		} else {
			_, err = f.Sub().Tys(o.A, o.B)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// resolve shallowly resolves both operands. Each lookup takes and releases its
// own read lease, so nothing is held once this returns.
func (f *CombineFields) resolve(a, b types.TypeID) (types.TypeID, types.Type, types.TypeID, types.Type) {
	a, b = f.session.store.Resolve(a), f.session.store.Resolve(b)
	return a, f.session.in.MustLookup(a), b, f.session.in.MustLookup(b)
}

func (f *CombineFields) mismatch(a, b types.TypeID) error {
	in := f.session.in
	return inferr.New(inferr.NewSortMismatch{
		Values: inferr.NewExpectedFound(f.AIsExpected, in.String(a), in.String(b)),
		Trace:  f.Trace,
	})
}

func (f *CombineFields) arityMismatch(what string, a, b int) error {
	return inferr.New(inferr.NewArityMismatch{
		What:   what,
		Values: inferr.NewExpectedFound(f.AIsExpected, a, b),
		Trace:  f.Trace,
	})
}

func (f *CombineFields) mutabilityMismatch(a, b types.TypeID) error {
	in := f.session.in
	return inferr.New(inferr.NewMutabilityMismatch{
		Values: inferr.NewExpectedFound(f.AIsExpected, in.String(a), in.String(b)),
		Trace:  f.Trace,
	})
}

func resultOf(t types.TypeID, err error) (types.TypeID, error) {
	if err != nil {
		return types.NoTypeID, err
	}
	return t, nil
}
