package meta

import (
	"fmt"
	"strconv"
	"strings"
)

// statement is one `name = value;` assignment.
type statement struct {
	name  string
	line  int
	items []token
	raw   string // value text between '=' and ';'
}

var closing = map[string]string{"[": "]", "{": "}"}

// parseStatements tokenizes src and groups it into statements.
func parseStatements(src []byte) (map[string]*statement, error) {
	lx := newLexer(src)
	stmts := make(map[string]*statement)

	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokEOF {
			return stmts, nil
		}
		if tok.kind != tokIdent {
			return nil, fmt.Errorf("line %d: expected identifier, got %s %q", tok.line, tok.kind, tok.text)
		}
		st := &statement{name: tok.text, line: tok.line}

		eq, err := lx.next()
		if err != nil {
			return nil, err
		}
		if eq.kind != tokPunct || eq.text != "=" {
			return nil, fmt.Errorf("line %d: expected '=' after %s", eq.line, st.name)
		}

		start := eq.end
		end, err := parseValue(lx, st)
		if err != nil {
			return nil, err
		}
		st.raw = strings.TrimSpace(string(src[start:end]))

		if _, dup := stmts[st.name]; dup {
			return nil, fmt.Errorf("line %d: duplicate statement %s", st.line, st.name)
		}
		stmts[st.name] = st
	}
}

// parseValue reads a scalar or a bracketed list followed by ';' (optional at
// end of input). It returns the offset where the value text ends.
func parseValue(lx *lexer, st *statement) (int, error) {
	tok, err := lx.next()
	if err != nil {
		return 0, err
	}

	var end int
	switch {
	case tok.kind == tokPunct && closing[tok.text] != "":
		want := closing[tok.text]
		for {
			item, err := lx.next()
			if err != nil {
				return 0, err
			}
			if item.kind == tokEOF {
				return 0, fmt.Errorf("line %d: unterminated list in %s", st.line, st.name)
			}
			if item.kind == tokPunct {
				if item.text == want {
					end = item.end
					break
				}
				if item.text == "," {
					continue
				}
				return 0, fmt.Errorf("line %d: unexpected %q in %s", item.line, item.text, st.name)
			}
			st.items = append(st.items, item)
		}
	case tok.kind == tokNumber || tok.kind == tokString || tok.kind == tokIdent:
		st.items = append(st.items, tok)
		end = tok.end
	default:
		return 0, fmt.Errorf("line %d: expected value for %s", tok.line, st.name)
	}

	semi, err := lx.next()
	if err != nil {
		return 0, err
	}
	if semi.kind == tokEOF {
		return end, nil
	}
	if semi.kind != tokPunct || semi.text != ";" {
		return 0, fmt.Errorf("line %d: expected ';' after %s", semi.line, st.name)
	}
	return end, nil
}

func (st *statement) int64() (int64, error) {
	if len(st.items) != 1 {
		return 0, fmt.Errorf("expected a single value, got %d", len(st.items))
	}
	vals, err := st.ints()
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

func (st *statement) int() (int, error) {
	v, err := st.int64()
	return int(v), err
}

func (st *statement) ints() ([]int64, error) {
	out := make([]int64, len(st.items))
	for i, tok := range st.items {
		if tok.kind != tokNumber {
			return nil, fmt.Errorf("line %d: expected integer, got %s", tok.line, tok.kind)
		}
		v, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid integer %q", tok.line, tok.text)
		}
		out[i] = v
	}
	return out, nil
}

func (st *statement) floats() ([]float64, error) {
	out := make([]float64, len(st.items))
	for i, tok := range st.items {
		if tok.kind != tokNumber {
			return nil, fmt.Errorf("line %d: expected number, got %s", tok.line, tok.kind)
		}
		text := strings.NewReplacer("d", "e", "D", "e").Replace(tok.text)
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid number %q", tok.line, tok.text)
		}
		out[i] = v
	}
	return out, nil
}

func (st *statement) str() (string, error) {
	if len(st.items) != 1 {
		return "", fmt.Errorf("expected a single string, got %d values", len(st.items))
	}
	tok := st.items[0]
	if tok.kind != tokString && tok.kind != tokIdent {
		return "", fmt.Errorf("line %d: expected string, got %s", tok.line, tok.kind)
	}
	return strings.TrimSpace(tok.text), nil
}

// strs returns every item's text with padding trimmed.
func (st *statement) strs() []string {
	out := make([]string, len(st.items))
	for i, tok := range st.items {
		out[i] = strings.TrimSpace(tok.text)
	}
	return out
}
