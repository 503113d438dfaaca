package inferr

import (
	"fmt"
	"strings"

	"github.com/cottand/tyrel/infer/types"
	"github.com/pkg/errors"
)

// enableDebugErrorPrinting makes errors include the frame they were created at when printed
var enableDebugErrorPrinting = false

type ErrCode int

const (
	None ErrCode = iota
	Mismatch
	ArityMismatch
	MutabilityMismatch
	IncompatibleBound
	CyclicType
	RegionsInsufficientlyPolymorphic
	RegionsOverlyPolymorphic
	TypeLeak
)

var codeNames = map[ErrCode]string{
	None:                             "none",
	Mismatch:                         "mismatch",
	ArityMismatch:                    "arity",
	MutabilityMismatch:               "mutability",
	IncompatibleBound:                "incompatible-bound",
	CyclicType:                       "cyclic",
	RegionsInsufficientlyPolymorphic: "insufficiently-polymorphic",
	RegionsOverlyPolymorphic:         "overly-polymorphic",
	TypeLeak:                         "type-leak",
}

func (c ErrCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrCode(%d)", int(c))
}

// ParseCode is the inverse of ErrCode.String
func ParseCode(name string) (ErrCode, bool) {
	for code, n := range codeNames {
		if n == name {
			return code, true
		}
	}
	return None, false
}

// IsLeak reports whether c is one of the higher-ranked leak codes
func (c ErrCode) IsLeak() bool {
	return c == RegionsInsufficientlyPolymorphic || c == RegionsOverlyPolymorphic || c == TypeLeak
}

// TypeError is implemented by every failure the relations can produce.
type TypeError interface {
	error
	Code() ErrCode
}

// New attaches a stack trace to err.
// Use CodeOf to recover the code of the result.
func New[E TypeError](err E) error {
	return errors.WithStack(err)
}

// CodeOf returns the code of the TypeError wrapped in err, or None
func CodeOf(err error) ErrCode {
	var typeErr TypeError
	if errors.As(err, &typeErr) {
		return typeErr.Code()
	}
	return None
}

func FormatWithCode(err error) string {
	code := CodeOf(err)
	if enableDebugErrorPrinting {
		frames := strings.Split(fmt.Sprintf("%+v", err), "\n")
		if len(frames) > 2 {
			return fmt.Sprintf("%s:(E%03d) %s", strings.TrimSpace(frames[2]), int(code), errors.Cause(err).Error())
		}
	}
	return fmt.Sprintf("(E%03d) %s", int(code), errors.Cause(err).Error())
}

// ExpectedFound orders the two operands of a failed comparison for diagnostics.
type ExpectedFound[T any] struct {
	Expected T
	Found    T
}

// NewExpectedFound puts a in the Expected position if aIsExpected, and in the Found position otherwise.
func NewExpectedFound[T any](aIsExpected bool, a, b T) ExpectedFound[T] {
	if aIsExpected {
		return ExpectedFound[T]{Expected: a, Found: b}
	}
	return ExpectedFound[T]{Expected: b, Found: a}
}

type NewSortMismatch struct {
	Values ExpectedFound[string]
	Trace  types.Trace
}

func (e NewSortMismatch) Error() string {
	return fmt.Sprintf("mismatched types: expected `%s`, found `%s`", e.Values.Expected, e.Values.Found)
}
func (e NewSortMismatch) Code() ErrCode { return Mismatch }

type NewArityMismatch struct {
	What   string
	Values ExpectedFound[int]
	Trace  types.Trace
}

func (e NewArityMismatch) Error() string {
	return fmt.Sprintf("expected %s with %d slots, found one with %d", e.What, e.Values.Expected, e.Values.Found)
}
func (e NewArityMismatch) Code() ErrCode { return ArityMismatch }

type NewMutabilityMismatch struct {
	Values ExpectedFound[string]
	Trace  types.Trace
}

func (e NewMutabilityMismatch) Error() string {
	return fmt.Sprintf("types differ in mutability: expected `%s`, found `%s`", e.Values.Expected, e.Values.Found)
}
func (e NewMutabilityMismatch) Code() ErrCode { return MutabilityMismatch }

// NewIncompatibleBound is produced by the variable store when a variable is given a
// bound whose head constructor cannot agree with what the variable already holds.
type NewIncompatibleBound struct {
	Var      string
	Bound    string
	Existing string
}

func (e NewIncompatibleBound) Error() string {
	return fmt.Sprintf("cannot bound %s by `%s`: it is already bound by `%s`", e.Var, e.Bound, e.Existing)
}
func (e NewIncompatibleBound) Code() ErrCode { return IncompatibleBound }

// NewCyclicType is the occurs check failure of the variable store.
type NewCyclicType struct {
	Var  string
	Type string
}

func (e NewCyclicType) Error() string {
	return fmt.Sprintf("cyclic type of infinite size: %s would have to contain itself in `%s`", e.Var, e.Type)
}
func (e NewCyclicType) Code() ErrCode { return CyclicType }

// NewRegionLeak is reported when a skolemized region escapes its binder.
// Overly is set when the skolem flowed into a region variable that existed
// before the comparison started, rather than into a concrete region.
type NewRegionLeak struct {
	Skolem  string
	Tainted string
	Overly  bool
	Trace   types.Trace
}

func (e NewRegionLeak) Error() string {
	if e.Overly {
		return fmt.Sprintf("type is overly polymorphic: bound region %s would have to be the region %s", e.Skolem, e.Tainted)
	}
	return fmt.Sprintf("type is not sufficiently polymorphic: bound region %s would have to be the region %s", e.Skolem, e.Tainted)
}
func (e NewRegionLeak) Code() ErrCode {
	if e.Overly {
		return RegionsOverlyPolymorphic
	}
	return RegionsInsufficientlyPolymorphic
}

// NewTypeLeak is reported when a skolemized type name escapes its binder.
type NewTypeLeak struct {
	Skolem string
	Into   string
	Trace  types.Trace
}

func (e NewTypeLeak) Error() string {
	return fmt.Sprintf("type is not sufficiently polymorphic: bound type %s escapes into %s", e.Skolem, e.Into)
}
func (e NewTypeLeak) Code() ErrCode { return TypeLeak }
