package infer

import (
	"slices"

	"github.com/cottand/tyrel/infer/inferr"
	"github.com/cottand/tyrel/infer/types"
	"github.com/xtgo/set"
)

// skolemized is the result of replacing the names bound by a shell with fresh
// placeholders and skolem regions.
type skolemized struct {
	body         types.TypeID
	placeholders []types.TypeID
	regions      []types.Region
}

// higherRankedSub checks that a is at least as general as b: whatever b can be
// instantiated to, a can be instantiated to as well. The interiors are related
// with mode. Nothing the check does survives a failure.
func (f *CombineFields) higherRankedSub(mode Relation, a, b types.Binder) (types.Binder, error) {
	s := f.session
	logger.Debug("higher-ranked "+mode.Tag(), "a", s.in.Slog(a.Value), "b", s.in.Slog(b.Value))

	err := s.CommitIfOK(func(snap Snapshot) error {
		sk := f.skolemize(b)
		aBody := f.instantiateBound(a)

		if _, err := mode.Tys(aBody, sk.body); err != nil {
			return err
		}
		if err := f.leakCheck(snap, sk); err != nil {
			return err
		}
		// the result is a itself, so a must not have come to mention a skolem
		if result := s.ResolveDeep(a.Value); mentionsAny(s.in, result, sk) {
			return inferr.New(inferr.NewTypeLeak{
				Skolem: sk.describe(s.in),
				Into:   s.in.String(result),
				Trace:  f.Trace,
			})
		}
		return nil
	})
	if err != nil {
		return types.Binder{}, err
	}
	return a, nil
}

func (f *CombineFields) skolemize(b types.Binder) skolemized {
	s := f.session
	replacer := types.BoundReplacer{
		Binder:  b.ID,
		Types:   make([]types.TypeID, len(b.Vars)),
		Regions: make([]types.Region, len(b.Vars)),
	}
	var sk skolemized
	for i, v := range b.Vars {
		switch v.Kind {
		case types.BoundType:
			p := s.in.Placeholder(s.nextSkolem(), v.Name)
			replacer.Types[i] = p
			sk.placeholders = append(sk.placeholders, p)
		case types.BoundRegion:
			r := types.SkolemRegion(s.nextSkolem(), v.Name)
			replacer.Regions[i] = r
			sk.regions = append(sk.regions, r)
		}
	}
	sk.body = b.Value
	if len(b.Vars) > 0 {
		sk.body = s.in.Substitute(b.Value, replacer)
	}
	slices.Sort(sk.placeholders)
	return sk
}

func (sk skolemized) describe(in *types.Interner) string {
	if len(sk.placeholders) > 0 {
		return in.String(sk.placeholders[0])
	}
	if len(sk.regions) > 0 {
		return sk.regions[0].String()
	}
	return in.String(sk.body)
}

// instantiateBound replaces the names bound by a with fresh variables.
func (f *CombineFields) instantiateBound(a types.Binder) types.TypeID {
	if len(a.Vars) == 0 {
		return a.Value
	}
	s := f.session
	replacer := types.BoundReplacer{
		Binder:  a.ID,
		Types:   make([]types.TypeID, len(a.Vars)),
		Regions: make([]types.Region, len(a.Vars)),
	}
	for i, v := range a.Vars {
		switch v.Kind {
		case types.BoundType:
			replacer.Types[i] = s.FreshVar(v.Name)
		case types.BoundRegion:
			replacer.Regions[i] = s.FreshRegion()
		}
	}
	return s.in.Substitute(a.Value, replacer)
}

// leakCheck fails if a skolem escaped the comparison that created it.
//
// A skolem region may only have been related to itself and to region variables
// created since snap. A placeholder may not have reached any type variable that
// existed before snap.
func (f *CombineFields) leakCheck(snap Snapshot, sk skolemized) error {
	s := f.session
	for _, skolem := range sk.regions {
		for _, tainted := range s.regions.Tainted(snap.regions, skolem) {
			if tainted == skolem || snap.regions.CreatedSince(tainted) {
				continue
			}
			logger.Debug("region leak", "skolem", skolem.String(), "tainted", tainted.String())
			return inferr.New(inferr.NewRegionLeak{
				Skolem:  skolem.String(),
				Tainted: tainted.String(),
				Overly:  tainted.IsVar(),
				Trace:   f.Trace,
			})
		}
	}
	if len(sk.placeholders) == 0 {
		return nil
	}

	for _, v := range s.store.TouchedSince(snap.store) {
		var mentioned typeIDs
		s.store.Mentions(v, func(tt types.Type) bool {
			if tt.Kind == types.KindPlaceholder {
				mentioned = append(mentioned, s.in.Intern(tt))
			}
			return false
		})
		escaped := intersect(sk.placeholders, mentioned)
		if len(escaped) > 0 {
			logger.Debug("type leak", "var", v, "placeholders", len(escaped))
			return inferr.New(inferr.NewTypeLeak{
				Skolem: s.in.String(escaped[0]),
				Into:   s.in.String(s.in.Var(v)),
				Trace:  f.Trace,
			})
		}
	}
	return nil
}

// mentionsAny reports whether t mentions one of the skolems of sk
func mentionsAny(in *types.Interner, t types.TypeID, sk skolemized) bool {
	return in.Any(t, func(tt types.Type) bool {
		return tt.Kind == types.KindPlaceholder && slices.Contains(sk.placeholders, in.Intern(tt))
	}, func(r types.Region) bool {
		return r.IsSkolem() && slices.Contains(sk.regions, r)
	})
}

type typeIDs []types.TypeID

func (ids typeIDs) Len() int           { return len(ids) }
func (ids typeIDs) Less(i, j int) bool { return ids[i] < ids[j] }
func (ids typeIDs) Swap(i, j int)      { ids[i], ids[j] = ids[j], ids[i] }

// intersect returns the elements of the sorted set fst that also appear in snd
func intersect(fst []types.TypeID, snd typeIDs) []types.TypeID {
	slices.Sort(snd)
	snd = snd[:set.Uniq(snd)]
	data := append(typeIDs(slices.Clone(fst)), snd...)
	return data[:set.Inter(data, len(fst))]
}
