package types

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// String renders t in the same syntax accepted by the syntax package.
func (in *Interner) String(t TypeID) string {
	sb := &strings.Builder{}
	in.write(sb, t)
	return sb.String()
}

func (in *Interner) write(sb *strings.Builder, id TypeID) {
	t, ok := in.Lookup(id)
	if !ok {
		sb.WriteString("<invalid>")
		return
	}
	switch t.Kind {
	case KindError:
		sb.WriteString("{error}")
	case KindVar:
		sb.WriteByte('?')
		if name, ok := in.varNames[t.Var]; ok {
			sb.WriteString(name)
		} else {
			sb.WriteString(strconv.FormatUint(uint64(t.Var), 10))
		}
	case KindInt:
		sb.WriteString("Int")
	case KindBool:
		sb.WriteString("Bool")
	case KindStr:
		sb.WriteString("Str")
	case KindUnit:
		sb.WriteString("()")
	case KindParam:
		sb.WriteString(t.Name)
	case KindPlaceholder:
		sb.WriteString("!" + strconv.FormatUint(uint64(t.Index), 10) + "_" + t.Name)
	case KindBound:
		sb.WriteString(t.Name)
	case KindAdt:
		def, _ := in.Def(t.Def)
		sb.WriteString(def.Name)
		if len(t.Regions)+len(t.Args) == 0 {
			return
		}
		sb.WriteByte('<')
		parts := append(
			lo.Map(t.Regions, func(r Region, _ int) string { return r.String() }),
			lo.Map(t.Args, func(arg TypeID, _ int) string { return in.String(arg) })...,
		)
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteByte('>')
	case KindFn:
		sb.WriteString("fn(")
		in.writeList(sb, t.Args)
		sb.WriteString(") -> ")
		in.write(sb, t.Elem)
	case KindRef:
		sb.WriteByte('&')
		sb.WriteString(t.Region.String())
		sb.WriteByte(' ')
		if t.Mutable {
			sb.WriteString("mut ")
		}
		in.write(sb, t.Elem)
	case KindTuple:
		sb.WriteByte('(')
		in.writeList(sb, t.Args)
		if len(t.Args) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case KindForall:
		b := in.binders[t.Binder]
		sb.WriteString("for<")
		sb.WriteString(strings.Join(lo.Map(b.Vars, func(v BoundVar, _ int) string {
			if v.Kind == BoundRegion {
				return "'" + v.Name
			}
			return v.Name
		}), ", "))
		sb.WriteString("> ")
		in.write(sb, b.Value)
	default:
		sb.WriteString(t.Kind.String())
	}
}

func (in *Interner) writeList(sb *strings.Builder, ids []TypeID) {
	for i, id := range ids {
		if i > 0 {
			sb.WriteString(", ")
		}
		in.write(sb, id)
	}
}

// Slog wraps a type as a slog.LogValuer so that it is only rendered
// when the record is actually logged
func (in *Interner) Slog(t TypeID) slog.LogValuer {
	return typeLogValuer{in: in, t: t}
}

type typeLogValuer struct {
	in *Interner
	t  TypeID
}

func (l typeLogValuer) LogValue() slog.Value {
	return slog.StringValue(l.in.String(l.t))
}
