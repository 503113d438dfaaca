package infer

import (
	"github.com/cottand/tyrel/infer/types"
)

// Bivariate relates the contents of slots that impose nothing: it always
// succeeds and records nothing.
type Bivariate struct {
	fields *CombineFields
}

var _ Relation = &Bivariate{}

func (b *Bivariate) Tag() string             { return "Bivariate" }
func (b *Bivariate) Fields() *CombineFields { return b.fields }

func (b *Bivariate) ForVariance(types.Variance) (Relation, bool) {
	return b, false
}

func (b *Bivariate) Tys(x, _ types.TypeID) (types.TypeID, error) {
	return x, nil
}

func (b *Bivariate) Regions(x, _ types.Region) (types.Region, error) {
	return x, nil
}

func (b *Bivariate) Binders(x, _ types.Binder) (types.Binder, error) {
	return x, nil
}
