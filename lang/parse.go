package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SyntaxError describes where a key failed to parse.
type SyntaxError struct {
	Source string
	Pos    int // byte offset in Source
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("column %d: %s", e.Pos+1, e.Msg)
}

// Snippet returns the source with a caret under the error position.
func (e *SyntaxError) Snippet() string {
	col := utf8.RuneCountInString(e.Source[:min(e.Pos, len(e.Source))])

	return e.Source + "\n" + strings.Repeat(" ", col) + "^"
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokPunct
)

type token struct {
	kind  tokenKind
	text  string
	pos   int
	value any
}

func (t token) is(punct string) bool { return t.kind == tokPunct && t.text == punct }

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return "string " + t.text
	default:
		return strconv.Quote(t.text)
	}
}

// lex splits src into tokens. A number directly after "." is lexed as an
// integer so that "a.0.1" is a path of two indices.
func lex(src string) ([]token, error) {
	var toks []token

	fail := func(pos int, format string, args ...any) ([]token, error) {
		return nil, &SyntaxError{Source: src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
	}

	for i := 0; i < len(src); {
		c, size := utf8.DecodeRuneInString(src[i:])

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i += size

		case isIdentRune(c, true):
			j := i + size
			for j < len(src) {
				r, n := utf8.DecodeRuneInString(src[j:])
				if !isIdentRune(r, false) {
					break
				}

				j += n
			}

			toks = append(toks, token{kind: tokIdent, text: src[i:j], pos: i})
			i = j

		case c >= '0' && c <= '9':
			afterDot := len(toks) > 0 && toks[len(toks)-1].is(".")

			tok, err := lexNumber(src, i, afterDot)
			if err != nil {
				return nil, err
			}

			toks = append(toks, tok)
			i += len(tok.text)

		case c == '\'' || c == '"':
			tok, err := lexString(src, i)
			if err != nil {
				return nil, err
			}

			toks = append(toks, tok)
			i += len(tok.text)

		case strings.ContainsRune(".[](),=|-+", c):
			toks = append(toks, token{kind: tokPunct, text: string(c), pos: i})
			i += size

		default:
			return fail(i, "unexpected character %q", c)
		}
	}

	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

func lexNumber(src string, start int, intOnly bool) (token, error) {
	digits := func(i int) int {
		for i < len(src) && src[i] >= '0' && src[i] <= '9' {
			i++
		}

		return i
	}

	end := digits(start)
	isFloat := false

	if !intOnly {
		if end+1 < len(src) && src[end] == '.' && src[end+1] >= '0' && src[end+1] <= '9' {
			end = digits(end + 1)
			isFloat = true
		}

		if end < len(src) && (src[end] == 'e' || src[end] == 'E') {
			j := end + 1
			if j < len(src) && (src[j] == '+' || src[j] == '-') {
				j++
			}

			if j < len(src) && src[j] >= '0' && src[j] <= '9' {
				end = digits(j)
				isFloat = true
			}
		}
	}

	text := src[start:end]

	if !isFloat {
		n, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return token{kind: tokInt, text: text, pos: start, value: n}, nil
		}

		if intOnly {
			return token{}, &SyntaxError{Source: src, Pos: start, Msg: "index out of range"}
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, &SyntaxError{Source: src, Pos: start, Msg: "number out of range"}
	}

	return token{kind: tokFloat, text: text, pos: start, value: f}, nil
}

func lexString(src string, start int) (token, error) {
	quote := src[start]

	var sb strings.Builder

	for i := start + 1; i < len(src); i++ {
		c := src[i]

		switch {
		case c == quote:
			return token{kind: tokString, text: src[start : i+1], pos: start, value: sb.String()}, nil

		case c == '\\' && i+1 < len(src):
			i++

			switch src[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\', '\'', '"':
				sb.WriteByte(src[i])
			default:
				sb.WriteByte('\\')
				sb.WriteByte(src[i])
			}

		default:
			sb.WriteByte(c)
		}
	}

	return token{}, &SyntaxError{Source: src, Pos: start, Msg: "unterminated string"}
}

// keywords are the identifiers that denote literals.
var keywords = map[string]any{
	"True": true, "true": true,
	"False": false, "false": false,
	"None": nil, "none": nil,
}

type parser struct {
	src  string
	toks []token
	i    int
}

// Parse parses a placeholder key. Surrounding whitespace is ignored.
func Parse(src string) (Pipeline, error) {
	toks, err := lex(src)
	if err != nil {
		return Pipeline{}, parseError(src, err)
	}

	p := &parser{src: src, toks: toks}

	pl, err := p.pipeline()
	if err != nil {
		return Pipeline{}, parseError(src, err)
	}

	return pl, nil
}

func parseError(src string, err error) error {
	var se *SyntaxError
	if errors.As(err, &se) {
		return ErrParse.Wrap(err).With(
			slog.String("source", src),
			slog.Int("column", se.Pos+1))
	}

	return ErrParse.Wrap(err).With(slog.String("source", src))
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}

	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &SyntaxError{Source: p.src, Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(punct string) error {
	if t := p.next(); !t.is(punct) {
		return p.errorf(t, "expected %q, found %s", punct, t.describe())
	}

	return nil
}

func (p *parser) pipeline() (Pipeline, error) {
	var pl Pipeline

	head, err := p.primary()
	if err != nil {
		return pl, err
	}

	pl.Head = head

	for p.peek().is("|") {
		p.next()

		call, err := p.filter()
		if err != nil {
			return pl, err
		}

		pl.Filters = append(pl.Filters, call)
	}

	if t := p.peek(); t.kind != tokEOF {
		return pl, p.errorf(t, "unexpected %s", t.describe())
	}

	return pl, nil
}

func (p *parser) primary() (Primary, error) {
	t := p.peek()

	if t.kind == tokIdent {
		if _, ok := keywords[t.text]; !ok {
			path, err := p.path()

			return Primary{Path: path}, err
		}
	}

	lit, err := p.literal()
	if err != nil {
		return Primary{}, err
	}

	return Primary{Literal: &lit}, nil
}

func (p *parser) path() (*Path, error) {
	path := &Path{Root: p.next().text}

	for {
		switch t := p.peek(); {
		case t.is("."):
			p.next()

			switch seg := p.next(); seg.kind {
			case tokIdent:
				path.Segments = append(path.Segments, Segment{Name: seg.text})
			case tokInt:
				path.Segments = append(path.Segments,
					Segment{Index: int(seg.value.(int64)), IsInt: true})
			default:
				return nil, p.errorf(seg, "expected a name after \".\", found %s", seg.describe())
			}

		case t.is("["):
			p.next()

			seg, err := p.subscript()
			if err != nil {
				return nil, err
			}

			path.Segments = append(path.Segments, seg)

			if err := p.expect("]"); err != nil {
				return nil, err
			}

		default:
			return path, nil
		}
	}
}

func (p *parser) subscript() (Segment, error) {
	t := p.next()

	switch {
	case t.kind == tokString:
		return Segment{Name: t.value.(string)}, nil

	case t.kind == tokInt:
		return Segment{Index: int(t.value.(int64)), IsInt: true}, nil

	case t.is("-") && p.peek().kind == tokInt:
		return Segment{Index: -int(p.next().value.(int64)), IsInt: true}, nil
	}

	return Segment{}, p.errorf(t, "expected an integer or string subscript, found %s", t.describe())
}

func (p *parser) literal() (Literal, error) {
	t := p.next()

	switch t.kind {
	case tokIdent:
		if v, ok := keywords[t.text]; ok {
			return Literal{Value: v}, nil
		}

	case tokInt, tokFloat, tokString:
		return Literal{Value: t.value}, nil

	case tokPunct:
		if t.is("-") || t.is("+") {
			n := p.next()

			switch n.kind {
			case tokInt:
				v := n.value.(int64)
				if t.is("-") {
					v = -v
				}

				return Literal{Value: v}, nil

			case tokFloat:
				v := n.value.(float64)
				if t.is("-") {
					v = -v
				}

				return Literal{Value: v}, nil
			}

			return Literal{}, p.errorf(n, "expected a number after %q, found %s", t.text, n.describe())
		}
	}

	return Literal{}, p.errorf(t, "expected a path or literal, found %s", t.describe())
}

func (p *parser) filter() (Call, error) {
	t := p.next()
	if t.kind != tokIdent {
		return Call{}, p.errorf(t, "expected a filter name, found %s", t.describe())
	}

	call := Call{Name: t.text}

	if !p.peek().is("(") {
		return call, nil
	}

	p.next()

	if p.peek().is(")") {
		p.next()

		return call, nil
	}

	seen := map[string]bool{}

	for {
		arg, err := p.arg()
		if err != nil {
			return call, err
		}

		switch {
		case arg.Name == "" && len(seen) > 0:
			return call, p.errorf(p.toks[p.i-1], "positional argument follows keyword argument")

		case seen[arg.Name]:
			return call, p.errorf(p.toks[p.i-1], "duplicate keyword argument %q", arg.Name)

		case arg.Name != "":
			seen[arg.Name] = true
		}

		call.Args = append(call.Args, arg)

		switch t := p.next(); {
		case t.is(")"):
			return call, nil
		case !t.is(","):
			return call, p.errorf(t, "expected \",\" or \")\", found %s", t.describe())
		}
	}
}

func (p *parser) arg() (Arg, error) {
	if t := p.peek(); t.kind == tokIdent && p.i+1 < len(p.toks) && p.toks[p.i+1].is("=") {
		p.i += 2

		lit, err := p.literal()

		return Arg{Name: t.text, Value: lit}, err
	}

	lit, err := p.literal()

	return Arg{Value: lit}, err
}
