package lang

import (
	"strconv"
	"strings"
)

// Pipeline is a parsed key: a head value passed through filters in order.
type Pipeline struct {
	Head    Primary
	Filters []Call
}

// Primary is either a path into the store or a literal. Exactly one of the
// fields is set.
type Primary struct {
	Path    *Path
	Literal *Literal
}

// Path is a root namespace followed by member accesses.
type Path struct {
	Root     string
	Segments []Segment
}

// Segment is one member access: a key name or a list index.
type Segment struct {
	Name  string
	Index int
	IsInt bool
}

// Literal holds nil, bool, int64, float64, or string.
type Literal struct {
	Value any
}

// Call is a filter application.
type Call struct {
	Name string
	Args []Arg
}

// Arg is a literal filter argument, named if it is a keyword argument.
type Arg struct {
	Name  string
	Value Literal
}

// String returns the canonical form of the pipeline.
func (p Pipeline) String() string {
	var sb strings.Builder

	switch {
	case p.Head.Path != nil:
		sb.WriteString(p.Head.Path.String())
	case p.Head.Literal != nil:
		sb.WriteString(p.Head.Literal.String())
	}

	for _, c := range p.Filters {
		sb.WriteString(" | ")
		sb.WriteString(c.String())
	}

	return sb.String()
}

func (p Path) String() string {
	var sb strings.Builder

	sb.WriteString(p.Root)

	for _, s := range p.Segments {
		switch {
		case s.IsInt:
			sb.WriteString("[" + strconv.Itoa(s.Index) + "]")
		case isIdent(s.Name):
			sb.WriteString("." + s.Name)
		default:
			sb.WriteString("[" + quoteSingle(s.Name) + "]")
		}
	}

	return sb.String()
}

func (l Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "True"
		}

		return "False"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return floatLiteral(v)
	case string:
		return quoteSingle(v)
	}

	return ""
}

func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}

	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		if a.Name != "" {
			args[i] = a.Name + "=" + a.Value.String()
		} else {
			args[i] = a.Value.String()
		}
	}

	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

// floatLiteral formats f so that it reads back as a float.
func floatLiteral(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}

	return s
}

func quoteSingle(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\t", `\t`)

	return "'" + r.Replace(s) + "'"
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		if !isIdentRune(c, i == 0) {
			return false
		}
	}

	return true
}

func isIdentRune(c rune, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	}

	return false
}
