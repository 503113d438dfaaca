package types

import "fmt"

// TypeID uniquely identifies a type inside an Interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// VarID is the identity of an inference variable. Entries for it live in the
// tyvar.Store of the session that created it.
type VarID uint32

// DefID identifies a declared generic definition (see Def).
type DefID uint32

// BinderID identifies a quantified shell registered with the Interner.
type BinderID uint32

// Kind enumerates the shapes a Type descriptor can take.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindError is the poison type. It is related successfully to anything.
	KindError
	// KindVar is an inference variable, possibly not yet resolved
	KindVar
	KindInt
	KindBool
	KindStr
	KindUnit
	// KindParam is a rigid, named generic parameter. It is only related to itself.
	KindParam
	// KindPlaceholder is a skolem constant created when a Binder is skolemized.
	KindPlaceholder
	// KindBound is an occurrence of a name bound by an enclosing KindForall.
	KindBound
	KindAdt
	KindFn
	KindRef
	KindTuple
	KindForall
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindError:
		return "error"
	case KindVar:
		return "var"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindStr:
		return "str"
	case KindUnit:
		return "unit"
	case KindParam:
		return "param"
	case KindPlaceholder:
		return "placeholder"
	case KindBound:
		return "bound"
	case KindAdt:
		return "adt"
	case KindFn:
		return "fn"
	case KindRef:
		return "ref"
	case KindTuple:
		return "tuple"
	case KindForall:
		return "forall"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for any supported type.
// Which fields are meaningful depends on Kind.
type Type struct {
	Kind    Kind
	Var     VarID    // KindVar
	Def     DefID    // KindAdt
	Binder  BinderID // KindBound, KindForall
	Index   uint32   // KindPlaceholder skolem number, KindBound slot in its binder
	Name    string   // KindParam, and a display hint for KindPlaceholder and KindBound
	Args    []TypeID // KindAdt type arguments, KindFn parameters, KindTuple elements
	Regions []Region // KindAdt region arguments
	Region  Region   // KindRef
	Elem    TypeID   // KindFn result, KindRef referent
	Mutable bool     // KindRef
}

// IsVar reports whether t is an unresolved inference variable.
func (t Type) IsVar() bool { return t.Kind == KindVar }

// IsError reports whether t is the poison type.
func (t Type) IsError() bool { return t.Kind == KindError }

// rigid reports whether the head constructor of t is fixed, i.e. whether two
// rigid types with different heads can never be related.
func (t Type) rigid() bool {
	switch t.Kind {
	case KindInt, KindBool, KindStr, KindUnit, KindParam, KindPlaceholder, KindAdt, KindFn, KindRef, KindTuple:
		return true
	default:
		return false
	}
}

func (t Type) sameHead(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindParam:
		return t.Name == other.Name
	case KindPlaceholder:
		return t.Index == other.Index
	case KindAdt:
		return t.Def == other.Def
	case KindFn, KindTuple:
		return len(t.Args) == len(other.Args)
	case KindRef:
		return t.Mutable == other.Mutable
	default:
		return true
	}
}

// Def is a declared generic definition such as `List<+T>`, with the declared
// variance of each of its region and type parameters.
type Def struct {
	ID      DefID
	Name    string
	Regions []Variance
	Types   []Variance
}
