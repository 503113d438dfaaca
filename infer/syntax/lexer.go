// Package syntax reads types written in the notation printed by types.Interner.String:
//
//	Int  Bool  Str  ()  {error}
//	?X                       inference variable
//	List<'a, Int>            application of a declared definition
//	fn(Int, Bool) -> Str
//	&'a T  &'static mut T
//	(Int, Bool)  (Int,)
//	for<'a, T> fn(&'a T) -> T
package syntax

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/smasher164/xid"
)

type tokenType uint8

const (
	tokEOF tokenType = iota
	tokIdent
	tokLifetime // 'a
	tokVar      // ?X
	tokError    // {error}
	tokLAngle
	tokRAngle
	tokLParen
	tokRParen
	tokComma
	tokAmp
	tokArrow
	tokFn
	tokFor
	tokMut
)

var keywords = map[string]tokenType{
	"fn":  tokFn,
	"for": tokFor,
	"mut": tokMut,
}

func (t tokenType) String() string {
	switch t {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokLifetime:
		return "lifetime"
	case tokVar:
		return "variable"
	case tokError:
		return "{error}"
	case tokLAngle:
		return "<"
	case tokRAngle:
		return ">"
	case tokLParen:
		return "("
	case tokRParen:
		return ")"
	case tokComma:
		return ","
	case tokAmp:
		return "&"
	case tokArrow:
		return "->"
	case tokFn:
		return "fn"
	case tokFor:
		return "for"
	case tokMut:
		return "mut"
	default:
		return fmt.Sprintf("tokenType(%d)", t)
	}
}

type token struct {
	typ  tokenType
	pos  int
	data string
}

type lexer struct {
	src string
	pos int
}

func isIdentStart(ch rune) bool {
	return ch == '_' || xid.Start(ch)
}

func (l *lexer) peekRune() (rune, int) {
	if l.pos >= len(l.src) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.src[l.pos:])
}

// lexIdent consumes a name whose first rune satisfies first
func (l *lexer) lexIdent(first func(rune) bool) string {
	start := l.pos
	ch, size := l.peekRune()
	for size > 0 && (l.pos == start && first(ch) || l.pos > start && xid.Continue(ch)) {
		l.pos += size
		ch, size = l.peekRune()
	}
	return l.src[start:l.pos]
}

func (l *lexer) next() (token, error) {
	for {
		ch, size := l.peekRune()
		if size == 0 || !unicode.IsSpace(ch) {
			break
		}
		l.pos += size
	}
	start := l.pos
	ch, size := l.peekRune()
	if size == 0 {
		return token{typ: tokEOF, pos: start}, nil
	}

	single := map[rune]tokenType{
		'<': tokLAngle,
		'>': tokRAngle,
		'(': tokLParen,
		')': tokRParen,
		',': tokComma,
		'&': tokAmp,
	}
	if typ, ok := single[ch]; ok {
		l.pos += size
		return token{typ: typ, pos: start}, nil
	}

	switch {
	case ch == '-':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '>' {
			l.pos += 2
			return token{typ: tokArrow, pos: start}, nil
		}
	case ch == '{':
		const errLit = "{error}"
		if len(l.src)-l.pos >= len(errLit) && l.src[l.pos:l.pos+len(errLit)] == errLit {
			l.pos += len(errLit)
			return token{typ: tokError, pos: start}, nil
		}
	case ch == '\'' || ch == '?':
		l.pos += size
		// variables may be numbered, like the ones printed for anonymous variables
		name := l.lexIdent(xid.Continue)
		if name == "" {
			return token{}, &Error{Pos: start, Msg: fmt.Sprintf("expected a name after %q", ch)}
		}
		typ := tokLifetime
		if ch == '?' {
			typ = tokVar
		}
		return token{typ: typ, pos: start, data: name}, nil
	case isIdentStart(ch):
		name := l.lexIdent(isIdentStart)
		if kw, ok := keywords[name]; ok {
			return token{typ: kw, pos: start}, nil
		}
		return token{typ: tokIdent, pos: start, data: name}, nil
	}
	return token{}, &Error{Pos: start, Msg: fmt.Sprintf("unexpected character %q", ch)}
}

func tokenize(src string) ([]token, error) {
	l := &lexer{src: src}
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.typ == tokEOF {
			return toks, nil
		}
	}
}
