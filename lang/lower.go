package lang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ardnew/ddpaper/filter"
)

// Names of the helper functions available to lowered programs. Filter
// names cannot begin with two underscores, so these never collide.
const (
	kwFunc     = "__kw__"
	memberFunc = "__member__"
)

// lower translates a pipeline into expr-lang source. Paths become index
// expressions on $env, which the member patcher turns into strict lookups.
// Filters become nested calls with the piped value as first argument and
// keyword arguments wrapped in __kw__ calls. Filters missing from reg are
// reported as [ErrUndefinedFilter].
func lower(pl Pipeline, reg *filter.Registry) (string, error) {
	var src string

	switch {
	case pl.Head.Path != nil:
		src = lowerPath(pl.Head.Path)
	case pl.Head.Literal != nil:
		src = lowerLiteral(*pl.Head.Literal)
	}

	for _, call := range pl.Filters {
		if _, ok := reg.Lookup(call.Name); !ok {
			return "", ErrUndefinedFilter.Wrap(fmt.Errorf("%q", call.Name))
		}

		var sb strings.Builder

		sb.WriteString(call.Name + "(" + src)

		for _, arg := range call.Args {
			sb.WriteString(", ")

			if arg.Name != "" {
				sb.WriteString(kwFunc + "(" + strconv.Quote(arg.Name) + ", " +
					lowerLiteral(arg.Value) + ")")
			} else {
				sb.WriteString(lowerLiteral(arg.Value))
			}
		}

		sb.WriteByte(')')

		src = sb.String()
	}

	return src, nil
}

func lowerPath(p *Path) string {
	var sb strings.Builder

	sb.WriteString(`$env[` + strconv.Quote(p.Root) + `]`)

	for _, s := range p.Segments {
		if s.IsInt {
			sb.WriteString("[" + strconv.Itoa(s.Index) + "]")
		} else {
			sb.WriteString("[" + strconv.Quote(s.Name) + "]")
		}
	}

	return sb.String()
}

func lowerLiteral(l Literal) string {
	switch v := l.Value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return "(" + strconv.FormatInt(v, 10) + ")"
	case float64:
		return "(" + floatLiteral(v) + ")"
	case string:
		return strconv.Quote(v)
	}

	return "nil"
}
