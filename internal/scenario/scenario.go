// Package scenario loads comparison cases from TOML files and checks them.
//
// A scenario file declares the generic definitions its cases may mention and a
// list of cases, each relating two type expressions and stating the expected
// outcome:
//
//	[settings]
//	jobs = 4
//	params = ["T"]
//
//	[[def]]
//	name = "List"
//	types = ["+"]
//
//	[[case]]
//	name = "var below Int"
//	relation = "sub"
//	a = "?X"
//	b = "Int"
//	expect = "ok"
package scenario

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cottand/tyrel/infer/inferr"
	"github.com/cottand/tyrel/infer/types"
	"github.com/cottand/tyrel/util"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const ExpectOK = "ok"

// Relations are the relations a case may ask for
var Relations = []string{"sub", "eq", "lub", "glb"}

type Settings struct {
	// Jobs bounds how many cases are checked at once, 0 meaning GOMAXPROCS
	Jobs int `toml:"jobs"`
	// Color overrides terminal detection when set
	Color *bool `toml:"color"`
	// Params are rigid generic parameters every case may mention
	Params []string `toml:"params"`
}

// Definition declares a generic type by the variances of its slots.
type Definition struct {
	Name    string   `toml:"name"`
	Types   []string `toml:"types"`
	Regions []string `toml:"regions"`
}

type Case struct {
	Name     string `toml:"name"`
	Relation string `toml:"relation"`
	A        string `toml:"a"`
	B        string `toml:"b"`
	// Expect is either "ok" or the name of an error code
	Expect string `toml:"expect"`
	// Result optionally pins the printed, fully resolved result of a successful relation
	Result string `toml:"result"`
}

type File struct {
	Settings Settings     `toml:"settings"`
	Defs     []Definition `toml:"def"`
	Cases    []Case       `toml:"case"`
	// Path is where the file was loaded from, if anywhere
	Path string `toml:"-"`
}

// Load reads and validates the scenario file at path
func Load(path string) (*File, error) {
	var f File
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	f.Path = path
	if err := checkDecoded(&f, meta); err != nil {
		return nil, err
	}
	return &f, nil
}

// Parse is Load for a scenario held in memory
func Parse(src string) (*File, error) {
	var f File
	meta, err := toml.Decode(src, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := checkDecoded(&f, meta); err != nil {
		return nil, err
	}
	return &f, nil
}

func checkDecoded(f *File, meta toml.MetaData) error {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := lo.Map(undecoded, func(k toml.Key, _ int) string { return k.String() })
		return f.errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return f.Validate()
}

func (f *File) errorf(format string, args ...any) error {
	err := errors.Errorf(format, args...)
	if f.Path != "" {
		return errors.Wrap(err, f.Path)
	}
	return err
}

// Validate checks everything about f that does not need a session:
// names, relations, expectations and variances.
func (f *File) Validate() error {
	if f.Settings.Jobs < 0 {
		return f.errorf("settings: jobs must not be negative, got %d", f.Settings.Jobs)
	}
	defNames := util.SetFromSeq(util.MapIter(slices.Values(f.Defs), func(d Definition) string { return d.Name }), len(f.Defs))
	if defNames.Size() != len(f.Defs) {
		return f.errorf("def: duplicate definition names")
	}
	for _, def := range f.Defs {
		if def.Name == "" {
			return f.errorf("def: missing name")
		}
		for v := range util.ConcatIter(slices.Values(def.Types), slices.Values(def.Regions)) {
			if _, err := types.ParseVariance(v); err != nil {
				return f.errorf("def %s: %v", def.Name, err)
			}
		}
	}
	seen := make(map[string]bool, len(f.Cases))
	for i, c := range f.Cases {
		if c.Name == "" {
			return f.errorf("case %d: missing name", i+1)
		}
		if seen[c.Name] {
			return f.errorf("case %s: duplicate name", c.Name)
		}
		seen[c.Name] = true
		if !slices.Contains(Relations, c.Relation) {
			return f.errorf("case %s: unknown relation %q, expected one of %s", c.Name, c.Relation, strings.Join(Relations, ", "))
		}
		if c.A == "" || c.B == "" {
			return f.errorf("case %s: both a and b are required", c.Name)
		}
		if c.Expect != ExpectOK {
			if _, ok := inferr.ParseCode(c.Expect); !ok || c.Expect == inferr.None.String() {
				return f.errorf("case %s: unknown expectation %q", c.Name, c.Expect)
			}
			if c.Result != "" {
				return f.errorf("case %s: a failing case has no result", c.Name)
			}
		}
	}
	return nil
}

// declare registers the definitions of f with in
func (f *File) declare(in *types.Interner) error {
	for _, def := range f.Defs {
		typeVariances, err := parseVariances(def.Types)
		if err != nil {
			return err
		}
		regionVariances, err := parseVariances(def.Regions)
		if err != nil {
			return err
		}
		if _, err := in.DeclareDef(def.Name, regionVariances, typeVariances); err != nil {
			return errors.Wrapf(err, "def %s", def.Name)
		}
	}
	return nil
}

func parseVariances(names []string) ([]types.Variance, error) {
	vs := make([]types.Variance, 0, len(names))
	for _, name := range names {
		v, err := types.ParseVariance(name)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}
