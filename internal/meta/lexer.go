package meta

import (
	"fmt"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	default:
		return "punctuation"
	}
}

type token struct {
	kind tokenKind
	text string // for strings: contents without quotes
	line int
	pos  int // byte offset of the token start
	end  int // byte offset just past the token
}

// lexer splits metadata text into tokens. Whitespace and newlines are
// insignificant.
type lexer struct {
	src  []byte
	pos  int
	line int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src, line: 1}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line, pos: l.pos, end: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]
	switch {
	case c == '=' || c == '[' || c == ']' || c == '{' || c == '}' || c == ',' || c == ';':
		l.pos++
		return token{kind: tokPunct, text: string(c), line: l.line, pos: start, end: l.pos}, nil

	case c == '\'' || c == '"':
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] != c {
			if l.src[l.pos] == '\n' {
				return token{}, fmt.Errorf("line %d: unterminated string", l.line)
			}
			l.pos++
		}
		if l.pos >= len(l.src) {
			return token{}, fmt.Errorf("line %d: unterminated string", l.line)
		}
		l.pos++
		return token{kind: tokString, text: string(l.src[start+1 : l.pos-1]), line: l.line, pos: start, end: l.pos}, nil

	case c == '-' || c == '+' || c == '.' || isDigit(c):
		l.pos++
		for l.pos < len(l.src) && isNumberByte(l.src[l.pos], l.src[l.pos-1]) {
			l.pos++
		}
		return token{kind: tokNumber, text: string(l.src[start:l.pos]), line: l.line, pos: start, end: l.pos}, nil

	case c == '_' || unicode.IsLetter(rune(c)):
		l.pos++
		for l.pos < len(l.src) && (l.src[l.pos] == '_' || isDigit(l.src[l.pos]) || unicode.IsLetter(rune(l.src[l.pos]))) {
			l.pos++
		}
		return token{kind: tokIdent, text: string(l.src[start:l.pos]), line: l.line, pos: start, end: l.pos}, nil
	}

	return token{}, fmt.Errorf("line %d: unexpected character %q", l.line, c)
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\n' {
			l.line++
		} else if !unicode.IsSpace(rune(c)) {
			return
		}
		l.pos++
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isNumberByte accepts the characters of Fortran-style numerals such as
// -9.99000000000E+02 or 1.0D-03.
func isNumberByte(c, prev byte) bool {
	switch {
	case isDigit(c), c == '.':
		return true
	case c == 'e' || c == 'E' || c == 'd' || c == 'D':
		return true
	case c == '+' || c == '-':
		return prev == 'e' || prev == 'E' || prev == 'd' || prev == 'D'
	}
	return false
}
