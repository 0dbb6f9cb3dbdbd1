package lang

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ardnew/ddpaper/data"
	"github.com/ardnew/ddpaper/filter"
	"github.com/ardnew/ddpaper/log"
)

func testStore() data.Store {
	return data.Store{
		"grb": map[string]any{
			"t90":  12.5,
			"name": "GRB 120711A",
			"t0":   -3.2,
			"peak": map[string]any{"mean": 250.0, "stat_err": 12.0},
			"erange": map[string]any{
				"emin": 20,
				"emax": 8000,
			},
			"lines": []any{
				map[string]any{"e": 511},
				map[string]any{"e": 1157},
			},
			"1": "one",
		},
	}
}

func quiet() Option { return WithLogger(log.Make(nil)) }

func TestEngine_Resolve(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"grb.t90", "12.5"},
		{"grb.name", "GRB 120711A"},
		{"grb['name']", "GRB 120711A"},
		{"grb.lines.1.e", "1157"},
		{"grb.lines[-1].e", "1157"},
		{"grb.lines[-2]['e']", "511"},
		{"grb[1]", "one"},
		{"grb.peak | plusminus", `2.5e+02~$\pm$~12`},
		{"grb.peak | plusminus(3)", `250~$\pm$~12`},
		{"grb.peak | plusminus(precision=3)", `250~$\pm$~12`},
		{"grb.t0 | wrt_t0", "~-~3.2"},
		{"grb.erange | erange", "20~--~8000~keV"},
		{"grb.name | preliminary", `\textcolor{red}{GRB 120711A}`},
		{"1500 | latex_exp", `1.5$\times$10$^{3}$`},
		{"1500 | latex_exp(ineq=True)", `1.5\times10^{3}`},
		{"2.0e5 | latex_exp(mant_precision=1)", `2$\times$10$^{5}$`},
		{"'text'", "text"},
		{"True", "True"},
		{"None | latex_exp", filter.NotAvailable},
	}

	e := New(testStore(), quiet())

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			r := e.Resolve(t.Context(), tt.key)
			if !r.OK() {
				t.Fatalf("Resolve(%q) error = %v", tt.key, r.Err)
			}

			if r.Key != tt.key {
				t.Errorf("Resolve(%q).Key = %q", tt.key, r.Key)
			}

			if r.Value != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.key, r.Value, tt.want)
			}
		})
	}
}

func TestEngine_ResolveFailure(t *testing.T) {
	tests := []struct {
		key  string
		want []error
		text string
	}{
		{"grb.missing", []error{ErrUndefined}, "grb.missing"},
		{"nosuch", []error{ErrUndefined}, "nosuch"},
		{"grb.t90.x", []error{ErrUndefined}, "grb.t90.x"},
		{"grb.lines[5].e", []error{ErrUndefined}, "grb.lines[5]"},
		{"grb.t90 | nosuch", []error{ErrUndefinedFilter}, "nosuch"},
		{"grb.t90 |", []error{ErrParse}, "column"},
		{"grb.name | wrt_t0", []error{ErrFilter, filter.ErrValue}, "wrt_t0"},
		{"grb.t90 | latex_exp(bogus=1)", []error{ErrFilter, filter.ErrArgument}, "bogus"},
		{"grb.peak | erange", []error{ErrFilter, filter.ErrMissingField}, "emin"},
	}

	e := New(testStore(), quiet())

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			r := e.Resolve(t.Context(), tt.key)
			if r.OK() {
				t.Fatalf("Resolve(%q) = %q, want error", tt.key, r.Value)
			}

			if r.Value != Fallback {
				t.Errorf("Resolve(%q) = %q, want %q", tt.key, r.Value, Fallback)
			}

			for _, want := range tt.want {
				if !errors.Is(r.Err, want) {
					t.Errorf("Resolve(%q) error = %v, want %v", tt.key, r.Err, want)
				}
			}

			if !strings.Contains(r.Err.Error(), tt.text) {
				t.Errorf("Resolve(%q) error = %q, want it to mention %q",
					tt.key, r.Err, tt.text)
			}
		})
	}
}

func TestEngine_LogsFailure(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithLevel(log.LevelWarn), log.WithPretty(false))
	e := New(testStore(), WithLogger(logger))

	e.Resolve(t.Context(), "grb.t90")

	if buf.Len() != 0 {
		t.Errorf("success logged %q", buf.String())
	}

	e.Resolve(t.Context(), "grb.missing")

	out := buf.String()
	if !strings.Contains(out, "unable to render") || !strings.Contains(out, "grb.missing") {
		t.Errorf("log = %q", out)
	}
}

func TestEngine_FilterPanic(t *testing.T) {
	reg := filter.Default()

	err := reg.Register("boom", func(any, filter.Args) (any, error) {
		panic("kaboom")
	})
	if err != nil {
		t.Fatal(err)
	}

	e := New(testStore(), WithRegistry(reg), quiet())

	r := e.Resolve(t.Context(), "grb.t90 | boom")
	if !errors.Is(r.Err, ErrFilter) || !strings.Contains(r.Err.Error(), "kaboom") {
		t.Errorf("error = %v, want %v mentioning the panic", r.Err, ErrFilter)
	}

	// The engine keeps working after a failed key.
	if r := e.Resolve(t.Context(), "grb.t90"); r.Value != "12.5" {
		t.Errorf("Resolve() = %q after panic", r.Value)
	}
}

func TestEngine_Isolation(t *testing.T) {
	reg := filter.Default()

	err := reg.Register("mutate", func(v any, _ filter.Args) (any, error) {
		if m, ok := v.(map[string]any); ok {
			m["mean"] = -1.0
			m["extra"] = true
		}

		return "done", nil
	})
	if err != nil {
		t.Fatal(err)
	}

	store := testStore()
	e := New(store, WithRegistry(reg), quiet())

	// Changes to the store after New are not seen.
	store["grb"].(map[string]any)["t90"] = 99.0
	if err := store.Set("grb.new", 1); err != nil {
		t.Fatal(err)
	}

	if r := e.Resolve(t.Context(), "grb.t90"); r.Value != "12.5" {
		t.Errorf("grb.t90 = %q, want 12.5", r.Value)
	}

	if r := e.Resolve(t.Context(), "grb.new"); r.OK() {
		t.Errorf("grb.new = %q, want undefined", r.Value)
	}

	// Filters see a copy.
	if r := e.Resolve(t.Context(), "grb.peak | mutate"); r.Value != "done" {
		t.Fatalf("mutate = %q (%v)", r.Value, r.Err)
	}

	if r := e.Resolve(t.Context(), "grb.peak.mean"); r.Value != "250.0" {
		t.Errorf("grb.peak.mean = %q, want 250.0", r.Value)
	}

	// Evaluate returns a copy.
	v, err := e.Evaluate(t.Context(), "grb.peak")
	if err != nil {
		t.Fatal(err)
	}

	v.(map[string]any)["mean"] = 0.0

	if r := e.Resolve(t.Context(), "grb.peak.mean"); r.Value != "250.0" {
		t.Errorf("grb.peak.mean = %q after Evaluate, want 250.0", r.Value)
	}
}

func TestEngine_ProgramCache(t *testing.T) {
	e := New(testStore(), quiet())

	for range 3 {
		e.Resolve(t.Context(), "grb.peak | plusminus")
		e.Resolve(t.Context(), "grb.t90")
	}

	// Keys that fail to compile are not cached.
	e.Resolve(t.Context(), "grb.t90 | nosuch")

	if n := len(e.programs); n != 2 {
		t.Errorf("cached %d programs, want 2", n)
	}
}

func TestEngine_Concurrent(t *testing.T) {
	e := New(testStore(), quiet())

	var wg sync.WaitGroup

	for i := range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			key := "grb.t90"
			want := "12.5"

			if i%2 == 0 {
				key, want = "grb.lines[0].e", "511"
			}

			if r := e.Resolve(context.Background(), key); r.Value != want {
				t.Errorf("Resolve(%q) = %q, want %q", key, r.Value, want)
			}
		}()
	}

	wg.Wait()
}

func TestEngine_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	e := New(testStore(), quiet())

	if _, err := e.Evaluate(ctx, "grb.t90"); !errors.Is(err, context.Canceled) {
		t.Errorf("Evaluate() error = %v, want %v", err, context.Canceled)
	}
}

func TestEngine_Registry(t *testing.T) {
	reg := filter.NewRegistry()
	e := New(nil, WithRegistry(reg), quiet())

	if e.Registry() != reg {
		t.Error("Registry() did not return the configured registry")
	}

	if r := e.Resolve(t.Context(), "1 | preliminary"); !errors.Is(r.Err, ErrUndefinedFilter) {
		t.Errorf("error = %v, want %v", r.Err, ErrUndefinedFilter)
	}

	if r := e.Resolve(t.Context(), "42"); r.Value != "42" {
		t.Errorf("Resolve(42) = %q", r.Value)
	}
}
