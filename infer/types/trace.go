package types

import (
	"fmt"
	"go/token"
)

// Range locates the origin of a comparison in some source file.
type Range struct {
	PosStart token.Pos
	PosEnd   token.Pos
}

func (r Range) Pos() token.Pos { return r.PosStart }
func (r Range) End() token.Pos { return r.PosEnd }
func (r Range) String() string {
	if r.PosStart == r.PosEnd {
		return fmt.Sprintf("%v", r.PosStart)
	}
	return fmt.Sprintf("%v-%v", r.PosStart, r.PosEnd)
}

// Trace is the provenance of a comparison: why two types are being related.
// It is carried into every region constraint and every error produced while
// relating them, and is otherwise never inspected.
type Trace struct {
	Range
	// Desc describes the comparison, e.g. "argument of call to f"
	Desc string
	// Origin optionally names the item the comparison originates from
	Origin string
}

func (t Trace) String() string {
	if t.Origin == "" {
		return t.Desc
	}
	return fmt.Sprintf("%s (in %s)", t.Desc, t.Origin)
}
