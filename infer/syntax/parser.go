package syntax

import (
	"fmt"
	"slices"
	"sort"

	"github.com/cottand/tyrel/infer/types"
	"github.com/cottand/tyrel/util"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Error is a syntax or name resolution error at byte offset Pos of the input.
type Error struct {
	Pos        int
	Msg        string
	Suggestion string
}

func (e *Error) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%d: %s, did you mean `%s`?", e.Pos, e.Msg, e.Suggestion)
	}
	return fmt.Sprintf("%d: %s", e.Pos, e.Msg)
}

// Parser turns type expressions into interned types.
//
// Variables are shared between every call to Parse on the same Parser: ?X always
// denotes the same variable, created through the newVar callback the first time
// it is seen.
type Parser struct {
	in     *types.Interner
	newVar func(name string) types.TypeID
	vars   map[string]types.TypeID
	params []string

	toks   []token
	pos    int
	scopes util.Stack[scope]
}

type scope struct {
	binder types.BinderID
	vars   []types.BoundVar
}

func NewParser(in *types.Interner, newVar func(name string) types.TypeID) *Parser {
	return &Parser{
		in:     in,
		newVar: newVar,
		vars:   make(map[string]types.TypeID),
	}
}

// DeclareParams makes names usable as rigid generic parameters
func (p *Parser) DeclareParams(names ...string) {
	p.params = append(p.params, names...)
}

// Var returns the variable created for ?name, if any
func (p *Parser) Var(name string) (types.TypeID, bool) {
	t, ok := p.vars[name]
	return t, ok
}

func (p *Parser) Parse(src string) (types.TypeID, error) {
	toks, err := tokenize(src)
	if err != nil {
		return types.NoTypeID, err
	}
	p.toks, p.pos, p.scopes = toks, 0, util.Stack[scope]{}
	t, err := p.parseType()
	if err != nil {
		return types.NoTypeID, err
	}
	if tok := p.peek(); tok.typ != tokEOF {
		return types.NoTypeID, p.unexpected(tok, "end of input")
	}
	return t, nil
}

func (p *Parser) peek() token {
	return p.toks[p.pos]
}

func (p *Parser) advance() token {
	tok := p.toks[p.pos]
	if tok.typ != tokEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) accept(typ tokenType) bool {
	if p.peek().typ == typ {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(typ tokenType) (token, error) {
	tok := p.advance()
	if tok.typ != typ {
		return tok, p.unexpected(tok, typ.String())
	}
	return tok, nil
}

func (p *Parser) unexpected(tok token, want string) error {
	found := tok.typ.String()
	if tok.data != "" {
		found = fmt.Sprintf("%s `%s`", found, tok.data)
	}
	return &Error{Pos: tok.pos, Msg: fmt.Sprintf("expected %s, found %s", want, found)}
}

func (p *Parser) parseType() (types.TypeID, error) {
	b := p.in.Builtins()
	tok := p.advance()
	switch tok.typ {
	case tokError:
		return b.Error, nil
	case tokVar:
		if t, ok := p.vars[tok.data]; ok {
			return t, nil
		}
		t := p.newVar(tok.data)
		p.vars[tok.data] = t
		return t, nil
	case tokLParen:
		return p.parseTuple()
	case tokAmp:
		r, err := p.parseRegion()
		if err != nil {
			return types.NoTypeID, err
		}
		mutable := p.accept(tokMut)
		elem, err := p.parseType()
		if err != nil {
			return types.NoTypeID, err
		}
		return p.in.Ref(r, elem, mutable), nil
	case tokFn:
		return p.parseFn()
	case tokFor:
		return p.parseForall()
	case tokIdent:
		return p.parseNamed(tok)
	default:
		return types.NoTypeID, p.unexpected(tok, "a type")
	}
}

func (p *Parser) parseTuple() (types.TypeID, error) {
	if p.accept(tokRParen) {
		return p.in.Builtins().Unit, nil
	}
	var elems []types.TypeID
	trailingComma := false
	for {
		t, err := p.parseType()
		if err != nil {
			return types.NoTypeID, err
		}
		elems = append(elems, t)
		trailingComma = p.accept(tokComma)
		if !trailingComma || p.peek().typ == tokRParen {
			break
		}
	}
	if _, err := p.expect(tokRParen); err != nil {
		return types.NoTypeID, err
	}
	if len(elems) == 1 && !trailingComma {
		return elems[0], nil
	}
	return p.in.Tuple(elems), nil
}

func (p *Parser) parseFn() (types.TypeID, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return types.NoTypeID, err
	}
	var params []types.TypeID
	for !p.accept(tokRParen) {
		t, err := p.parseType()
		if err != nil {
			return types.NoTypeID, err
		}
		params = append(params, t)
		if !p.accept(tokComma) {
			if _, err := p.expect(tokRParen); err != nil {
				return types.NoTypeID, err
			}
			break
		}
	}
	result := p.in.Builtins().Unit
	if p.accept(tokArrow) {
		var err error
		if result, err = p.parseType(); err != nil {
			return types.NoTypeID, err
		}
	}
	return p.in.Fn(params, result), nil
}

func (p *Parser) parseForall() (types.TypeID, error) {
	if _, err := p.expect(tokLAngle); err != nil {
		return types.NoTypeID, err
	}
	var vars []types.BoundVar
	for !p.accept(tokRAngle) {
		tok := p.advance()
		switch tok.typ {
		case tokLifetime:
			vars = append(vars, types.BoundVar{Name: tok.data, Kind: types.BoundRegion})
		case tokIdent:
			vars = append(vars, types.BoundVar{Name: tok.data, Kind: types.BoundType})
		default:
			return types.NoTypeID, p.unexpected(tok, "a bound name")
		}
		if !p.accept(tokComma) {
			if _, err := p.expect(tokRAngle); err != nil {
				return types.NoTypeID, err
			}
			break
		}
	}
	binder := p.in.OpenBinder(vars)
	p.scopes.Push(scope{binder: binder, vars: vars})
	body, err := p.parseType()
	p.scopes.Pop()
	if err != nil {
		return types.NoTypeID, err
	}
	return p.in.CloseBinder(binder, body), nil
}

// lookupBound finds name among the names bound by the enclosing shells, innermost first
func (p *Parser) lookupBound(name string, kind types.BoundKind) (types.BinderID, int, bool) {
	for s := range p.scopes.FromTop() {
		for j, v := range s.vars {
			if v.Name == name && v.Kind == kind {
				return s.binder, j, true
			}
		}
	}
	return 0, 0, false
}

func (p *Parser) parseRegion() (types.Region, error) {
	tok, err := p.expect(tokLifetime)
	if err != nil {
		return types.Region{}, err
	}
	if tok.data == "static" {
		return types.Static, nil
	}
	if binder, i, ok := p.lookupBound(tok.data, types.BoundRegion); ok {
		return p.in.BoundRegionOf(binder, i), nil
	}
	return types.NamedRegion(tok.data), nil
}

func (p *Parser) parseNamed(tok token) (types.TypeID, error) {
	b := p.in.Builtins()
	if binder, i, ok := p.lookupBound(tok.data, types.BoundType); ok {
		return p.in.BoundTypeOf(binder, i), nil
	}
	switch tok.data {
	case "Int":
		return b.Int, nil
	case "Bool":
		return b.Bool, nil
	case "Str":
		return b.Str, nil
	}
	if slices.Contains(p.params, tok.data) {
		return p.in.Param(tok.data), nil
	}
	def, ok := p.in.DefByName(tok.data)
	if !ok {
		return types.NoTypeID, &Error{
			Pos:        tok.pos,
			Msg:        fmt.Sprintf("unknown type `%s`", tok.data),
			Suggestion: closest(tok.data, p.knownNames()),
		}
	}

	var (
		regions []types.Region
		args    []types.TypeID
	)
	if p.accept(tokLAngle) {
		for !p.accept(tokRAngle) {
			if p.peek().typ == tokLifetime {
				if len(args) > 0 {
					return types.NoTypeID, &Error{Pos: p.peek().pos, Msg: "lifetime arguments must come before type arguments"}
				}
				r, err := p.parseRegion()
				if err != nil {
					return types.NoTypeID, err
				}
				regions = append(regions, r)
			} else {
				t, err := p.parseType()
				if err != nil {
					return types.NoTypeID, err
				}
				args = append(args, t)
			}
			if !p.accept(tokComma) {
				if _, err := p.expect(tokRAngle); err != nil {
					return types.NoTypeID, err
				}
				break
			}
		}
	}
	return p.in.Adt(def.ID, regions, args), nil
}

func (p *Parser) knownNames() []string {
	names := append([]string{"Int", "Bool", "Str"}, p.in.DefNames()...)
	names = append(names, p.params...)
	for s := range p.scopes.FromTop() {
		for _, v := range s.vars {
			if v.Kind == types.BoundType {
				names = append(names, v.Name)
			}
		}
	}
	return names
}

// closest returns the candidate nearest to name, or "" if none is close enough
// to be a plausible typo.
func closest(name string, candidates []string) string {
	sorted := slices.Clone(candidates)
	sort.Strings(sorted)

	nameRunes := []rune(name)
	best := ""
	bestDistance := len(nameRunes)
	for _, candidate := range sorted {
		distance := levenshtein.DistanceForStrings(nameRunes, []rune(candidate), levenshtein.DefaultOptions)
		// a suggestion that replaces the whole name is no suggestion
		if distance < bestDistance && distance < len(candidate) {
			best = candidate
			bestDistance = distance
		}
	}
	return best
}
