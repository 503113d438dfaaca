package types

import "fmt"

// Variance describes how the subtyping direction of a slot relates to the
// subtyping direction of the type that contains it.
type Variance uint8

const (
	// Covariant slots are related in the same direction as their container: T<A> <: T<B> if A <: B
	Covariant Variance = iota
	// Contravariant slots are related in the opposite direction: T<A> <: T<B> if B <: A
	Contravariant
	// Invariant slots must be equal: T<A> <: T<B> if A == B
	Invariant
	// Bivariant slots impose nothing
	Bivariant
)

func (v Variance) String() string {
	switch v {
	case Covariant:
		return "+"
	case Contravariant:
		return "-"
	case Invariant:
		return "="
	case Bivariant:
		return "*"
	default:
		return fmt.Sprintf("Variance(%d)", v)
	}
}

// Name is the long form of v, used in logs
func (v Variance) Name() string {
	switch v {
	case Covariant:
		return "covariant"
	case Contravariant:
		return "contravariant"
	case Invariant:
		return "invariant"
	case Bivariant:
		return "bivariant"
	default:
		return v.String()
	}
}

// ParseVariance accepts the sigils printed by Variance.String as well as the long names.
func ParseVariance(s string) (Variance, error) {
	switch s {
	case "+", "covariant":
		return Covariant, nil
	case "-", "contravariant":
		return Contravariant, nil
	case "=", "invariant":
		return Invariant, nil
	case "*", "bivariant":
		return Bivariant, nil
	}
	return 0, fmt.Errorf("unknown variance %q", s)
}
