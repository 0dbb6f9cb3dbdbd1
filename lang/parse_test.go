package lang

import (
	"errors"
	"strings"
	"testing"
)

func TestParse_Canonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"grb.t90", "grb.t90"},
		{"  grb . t90  ", "grb.t90"},
		{"grb['t90']", "grb.t90"},
		{`grb["peak energy"]`, "grb['peak energy']"},
		{"spi.lines.0.e", "spi.lines[0].e"},
		{"spi.lines[-1]", "spi.lines[-1]"},
		{"spi.lines.0.1", "spi.lines[0][1]"},
		{"x|latex_exp", "x | latex_exp"},
		{"x | latex_exp()", "x | latex_exp"},
		{"x|latex_exp(ineq=True, mant_precision=3)", "x | latex_exp(ineq=True, mant_precision=3)"},
		{"x|plusminus(3)|preliminary", "x | plusminus(3) | preliminary"},
		{"1500|latex_exp", "1500 | latex_exp"},
		{"-2.5e-3", "-0.0025"},
		{"+7", "7"},
		{"1e3", "1000.0"},
		{"'it\\'s'", `'it\'s'`},
		{"None", "None"},
		{"true", "True"},
		{"x | f(none, false, 'a\\nb')", `x | f(None, False, 'a\nb')`},
		{"y|f(x=1.0)", "y | f(x=1.0)"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			pl, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}

			if got := pl.String(); got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse_Structure(t *testing.T) {
	pl, err := Parse("grb.fluence[0]['k'] | plusminus(2, precision=3)")
	if err != nil {
		t.Fatal(err)
	}

	p := pl.Head.Path
	if p == nil || p.Root != "grb" || len(p.Segments) != 3 {
		t.Fatalf("path = %+v", p)
	}

	if s := p.Segments[1]; !s.IsInt || s.Index != 0 {
		t.Errorf("segment 1 = %+v", s)
	}

	if s := p.Segments[2]; s.IsInt || s.Name != "k" {
		t.Errorf("segment 2 = %+v", s)
	}

	if len(pl.Filters) != 1 || pl.Filters[0].Name != "plusminus" {
		t.Fatalf("filters = %+v", pl.Filters)
	}

	args := pl.Filters[0].Args
	if len(args) != 2 || args[0].Value.Value != int64(2) ||
		args[1].Name != "precision" || args[1].Value.Value != int64(3) {
		t.Errorf("args = %+v", args)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		in     string
		column int
		msg    string
	}{
		{"", 1, "expected a path or literal"},
		{"a +", 3, "unexpected"},
		{"a.", 3, "expected a name"},
		{"a[", 3, "subscript"},
		{"a[1", 4, `expected "]"`},
		{"a[x]", 3, "subscript"},
		{"a | ", 5, "expected a filter name"},
		{"a | f(", 7, "expected a path or literal"},
		{"a | f(1 2)", 9, `expected "," or ")"`},
		{"a | f(k=1, 2)", 12, "positional argument follows keyword"},
		{"a | f(k=1, k=2)", 14, "duplicate keyword"},
		{"a | f(other.path)", 7, "expected a path or literal"},
		{"a | f(-x)", 8, "expected a number"},
		{"'open", 1, "unterminated string"},
		{"a; b", 2, "unexpected character"},
		{"a(1)", 2, "unexpected"},
		{"1e999", 1, "out of range"},
		{"a.99999999999999999999", 3, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			if !errors.Is(err, ErrParse) {
				t.Fatalf("Parse(%q) error = %v, want %v", tt.in, err, ErrParse)
			}

			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Parse(%q) error %v is not a *SyntaxError", tt.in, err)
			}

			if se.Pos+1 != tt.column {
				t.Errorf("Parse(%q) column = %d, want %d (%v)", tt.in, se.Pos+1, tt.column, err)
			}

			if !strings.Contains(se.Msg, tt.msg) {
				t.Errorf("Parse(%q) message = %q, want %q", tt.in, se.Msg, tt.msg)
			}
		})
	}
}

func TestSyntaxError_Snippet(t *testing.T) {
	se := &SyntaxError{Source: "a | f(", Pos: 6, Msg: "x"}

	if got, want := se.Snippet(), "a | f(\n      ^"; got != want {
		t.Errorf("Snippet() = %q, want %q", got, want)
	}
}
