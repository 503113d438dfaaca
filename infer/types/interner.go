package types

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the nullary types every Interner starts with.
type Builtins struct {
	Error TypeID
	Int   TypeID
	Bool  TypeID
	Str   TypeID
	Unit  TypeID
}

// Interner is the type arena of one inference session. It hands out stable
// TypeIDs by hashing structural descriptors, so two structurally identical
// types always share an id and identity is a plain == comparison.
//
// Types refer to each other only through TypeIDs, which lets a variable stand for
// a type that mentions other interned types without creating ownership cycles.
//
// Interner is not safe for concurrent use.
type Interner struct {
	types    []Type
	index    map[string]TypeID
	builtins Builtins

	defs     []Def
	defNames map[string]DefID
	binders  []Binder
	varNames map[VarID]string
}

// NewInterner constructs an interner seeded with the builtin types.
func NewInterner() *Interner {
	in := &Interner{
		index:    make(map[string]TypeID, 64),
		defNames: make(map[string]DefID),
		varNames: make(map[VarID]string),
	}
	// reserve 0 as the invalid sentinel for every table
	in.types = append(in.types, Type{Kind: KindInvalid})
	in.defs = append(in.defs, Def{})
	in.binders = append(in.binders, Binder{})

	in.builtins.Error = in.Intern(Type{Kind: KindError})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Str = in.Intern(Type{Kind: KindStr})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Len is the number of interned types, including the reserved invalid slot.
func (in *Interner) Len() int {
	return len(in.types)
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := t.key()
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t, key)
}

func (in *Interner) internRaw(t Type, key string) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	t.Args = slices.Clone(t.Args)
	t.Regions = slices.Clone(t.Regions)
	in.types = append(in.types, t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID " + strconv.FormatUint(uint64(id), 10))
	}
	return tt
}

// Descriptor helpers ---------------------------------------------------------

func (in *Interner) Var(v VarID) TypeID {
	return in.Intern(Type{Kind: KindVar, Var: v})
}

func (in *Interner) Param(name string) TypeID {
	return in.Intern(Type{Kind: KindParam, Name: name})
}

func (in *Interner) Placeholder(index uint32, name string) TypeID {
	return in.Intern(Type{Kind: KindPlaceholder, Index: index, Name: name})
}

func (in *Interner) Bound(binder BinderID, index uint32, name string) TypeID {
	return in.Intern(Type{Kind: KindBound, Binder: binder, Index: index, Name: name})
}

// Adt describes an application of def to the given region and type arguments.
// The arguments are not checked against the definition's arity: mismatches are
// reported when such types are related.
func (in *Interner) Adt(def DefID, regions []Region, args []TypeID) TypeID {
	return in.Intern(Type{Kind: KindAdt, Def: def, Regions: regions, Args: args})
}

func (in *Interner) Fn(params []TypeID, result TypeID) TypeID {
	return in.Intern(Type{Kind: KindFn, Args: params, Elem: result})
}

// Ref describes &'r T or &'r mut T depending on the mutable flag.
func (in *Interner) Ref(r Region, elem TypeID, mutable bool) TypeID {
	return in.Intern(Type{Kind: KindRef, Region: r, Elem: elem, Mutable: mutable})
}

func (in *Interner) Tuple(elems []TypeID) TypeID {
	return in.Intern(Type{Kind: KindTuple, Args: elems})
}

// Definitions -----------------------------------------------------------------

// DeclareDef registers a generic definition with the declared variance of each of
// its parameters. Declaring the same name twice is an error.
func (in *Interner) DeclareDef(name string, regions, types []Variance) (DefID, error) {
	if _, ok := in.defNames[name]; ok {
		return 0, fmt.Errorf("definition %q declared twice", name)
	}
	n, err := safecast.Conv[uint32](len(in.defs))
	if err != nil {
		return 0, fmt.Errorf("len(defs) overflow: %w", err)
	}
	id := DefID(n)
	in.defs = append(in.defs, Def{
		ID:      id,
		Name:    name,
		Regions: slices.Clone(regions),
		Types:   slices.Clone(types),
	})
	in.defNames[name] = id
	return id, nil
}

func (in *Interner) Def(id DefID) (Def, bool) {
	if id == 0 || int(id) >= len(in.defs) {
		return Def{}, false
	}
	return in.defs[id], true
}

func (in *Interner) DefByName(name string) (Def, bool) {
	id, ok := in.defNames[name]
	if !ok {
		return Def{}, false
	}
	return in.defs[id], true
}

// DefNames lists every declared definition name in declaration order
func (in *Interner) DefNames() []string {
	names := make([]string, 0, len(in.defs)-1)
	for _, def := range in.defs[1:] {
		names = append(names, def.Name)
	}
	return names
}

// SetVarName records a display name for v, used when printing.
func (in *Interner) SetVarName(v VarID, name string) {
	if name == "" {
		return
	}
	in.varNames[v] = name
}

// HeadsConflict reports whether a and b have rigid head constructors that differ,
// meaning that no relation between them can ever hold.
func (in *Interner) HeadsConflict(a, b TypeID) bool {
	ta, okA := in.Lookup(a)
	tb, okB := in.Lookup(b)
	if !okA || !okB || !ta.rigid() || !tb.rigid() {
		return false
	}
	return !ta.sameHead(tb)
}

// key builds the structural hash key of a descriptor.
func (t Type) key() string {
	sb := strings.Builder{}
	sb.WriteByte(byte(t.Kind))
	writeUint := func(n uint64) {
		sb.WriteString(strconv.FormatUint(n, 36))
		sb.WriteByte('.')
	}
	switch t.Kind {
	case KindVar:
		writeUint(uint64(t.Var))
	case KindParam:
		sb.WriteString(t.Name)
	case KindPlaceholder:
		writeUint(uint64(t.Index))
	case KindBound:
		writeUint(uint64(t.Binder))
		writeUint(uint64(t.Index))
	case KindAdt:
		writeUint(uint64(t.Def))
		writeUint(uint64(len(t.Regions)))
		for _, r := range t.Regions {
			r.writeKey(&sb)
		}
	case KindRef:
		t.Region.writeKey(&sb)
		if t.Mutable {
			sb.WriteByte('m')
		}
	case KindForall:
		writeUint(uint64(t.Binder))
	}
	sb.WriteByte('|')
	for _, arg := range t.Args {
		writeUint(uint64(arg))
	}
	if t.Kind == KindFn || t.Kind == KindRef {
		sb.WriteByte('>')
		writeUint(uint64(t.Elem))
	}
	return sb.String()
}

func (r Region) writeKey(sb *strings.Builder) {
	sb.WriteByte('\'')
	sb.WriteByte(byte(r.Kind))
	sb.WriteString(strconv.FormatUint(uint64(r.Index), 36))
	sb.WriteByte(':')
	sb.WriteString(strconv.FormatUint(uint64(r.Binder), 36))
	sb.WriteByte(':')
	if r.Kind == RegionNamed {
		sb.WriteString(r.Name)
	}
	sb.WriteByte(';')
}
