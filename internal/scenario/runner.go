package scenario

import (
	"context"
	"runtime"

	"github.com/cottand/tyrel/infer"
	"github.com/cottand/tyrel/infer/inferr"
	"github.com/cottand/tyrel/infer/syntax"
	"github.com/cottand/tyrel/infer/types"
	"github.com/cottand/tyrel/internal/log"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

var logger = log.DefaultLogger.With("section", "scenario")

// Outcome is the result of checking one Case.
type Outcome struct {
	Case     string `msgpack:"case"`
	Relation string `msgpack:"relation"`
	A        string `msgpack:"a"`
	B        string `msgpack:"b"`
	Expect   string `msgpack:"expect"`
	// Got is "ok" or the name of the code of the error the relation failed with
	Got string `msgpack:"got"`
	// Result is the fully resolved result of a successful relation
	Result string `msgpack:"result,omitempty"`
	// Error is the message of the error the relation failed with
	Error  string `msgpack:"error,omitempty"`
	Passed bool   `msgpack:"passed"`

	Vars        int `msgpack:"vars"`
	Constraints int `msgpack:"constraints"`
}

// Run checks every case of f, at most jobs at a time, each in its own Session.
// Outcomes are in the order of f.Cases. A case whose types do not parse
// stops the run.
func Run(ctx context.Context, f *File, jobs int) (*Report, error) {
	if jobs <= 0 {
		jobs = f.Settings.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	outcomes := make([]Outcome, len(f.Cases))
	if len(f.Cases) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(jobs, len(f.Cases)))
		for i, c := range f.Cases {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				outcome, err := f.runCase(c)
				if err != nil {
					return errors.Wrapf(err, "case %s", c.Name)
				}
				outcomes[i] = outcome
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return newReport(f.Path, outcomes), nil
}

func (f *File) runCase(c Case) (Outcome, error) {
	in := types.NewInterner()
	if err := f.declare(in); err != nil {
		return Outcome{}, err
	}
	session := infer.NewSession(in)
	p := syntax.NewParser(in, session.FreshVar)
	p.DeclareParams(f.Settings.Params...)
	a, err := p.Parse(c.A)
	if err != nil {
		return Outcome{}, errors.Wrapf(err, "a = %q", c.A)
	}
	b, err := p.Parse(c.B)
	if err != nil {
		return Outcome{}, errors.Wrapf(err, "b = %q", c.B)
	}

	fields := session.Fields(types.Trace{Desc: c.Name, Origin: f.Path}, true)
	res, err := relate(fields, c.Relation, a, b)

	outcome := Outcome{
		Case:     c.Name,
		Relation: c.Relation,
		A:        c.A,
		B:        c.B,
		Expect:   c.Expect,
		Got:      ExpectOK,
	}
	if err != nil {
		outcome.Got = inferr.CodeOf(err).String()
		outcome.Error = err.Error()
	} else {
		outcome.Result = in.String(session.ResolveDeep(res))
	}
	stats := session.Stats()
	outcome.Vars, outcome.Constraints = stats.Vars, stats.Constraints
	outcome.Passed = outcome.Got == c.Expect && (c.Result == "" || c.Result == outcome.Result)
	logger.Debug("case checked", "case", c.Name, "got", outcome.Got, "passed", outcome.Passed)
	return outcome, nil
}

func relate(fields *infer.CombineFields, relation string, a, b types.TypeID) (types.TypeID, error) {
	switch relation {
	case "sub":
		return infer.Relate(fields, a, b)
	case "eq":
		return fields.Equate().Tys(a, b)
	case "lub":
		return fields.Lub().Tys(a, b)
	case "glb":
		return fields.Glb().Tys(a, b)
	}
	return types.NoTypeID, errors.Errorf("unknown relation %q", relation)
}

// Failures returns the outcomes that did not pass
func (r *Report) Failures() []Outcome {
	return lo.Filter(r.Outcomes, func(o Outcome, _ int) bool { return !o.Passed })
}
