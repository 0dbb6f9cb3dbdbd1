package data

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func testStore() Store {
	return Store{
		"grb": map[string]any{
			"t90":     1.5,
			"fluence": map[string]any{"mean": int64(1500), "stat_err": int64(20)},
			"peaks":   []any{int64(10), map[string]any{"e": 2.5}},
		},
		"note": "preliminary",
	}
}

func TestStore_Lookup(t *testing.T) {
	s := testStore()

	tests := []struct {
		path   string
		want   any
		wantOK bool
	}{
		{"grb.t90", 1.5, true},
		{"grb.fluence.mean", int64(1500), true},
		{"grb.peaks.0", int64(10), true},
		{"grb.peaks.1.e", 2.5, true},
		{"note", "preliminary", true},
		{"grb.peaks.2", nil, false},
		{"grb.peaks.-1", nil, false},
		{"grb.missing", nil, false},
		{"note.deeper", nil, false},
		{"grb..t90", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := s.Lookup(tt.path)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("Lookup(%q) = %v, %v, want %v, %v", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if root, ok := s.Lookup(""); !ok || len(root.(map[string]any)) != 2 {
		t.Errorf("Lookup(\"\") = %v, %v", root, ok)
	}
}

func TestStore_Children(t *testing.T) {
	s := testStore()

	tests := []struct {
		path string
		want []string
	}{
		{"", []string{"grb", "note"}},
		{"grb", []string{"fluence", "peaks", "t90"}},
		{"grb.peaks", []string{"0", "1"}},
		{"note", nil},
		{"nope", nil},
	}

	for _, tt := range tests {
		if got := s.Children(tt.path); !slices.Equal(got, tt.want) {
			t.Errorf("Children(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestStore_Set(t *testing.T) {
	s := testStore()

	if err := s.Set("grb.fluence.mean", 42); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if v, _ := s.Lookup("grb.fluence.mean"); v != int64(42) {
		t.Errorf("mean = %#v, want int64(42)", v)
	}

	if err := s.Set("new.deep.key", "x"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if v, _ := s.Lookup("new.deep.key"); v != "x" {
		t.Errorf("new.deep.key = %v", v)
	}

	for _, path := range []string{"note.sub", "", "a..b"} {
		if err := s.Set(path, 1); !errors.Is(err, ErrPath) {
			t.Errorf("Set(%q) error = %v, want %v", path, err, ErrPath)
		}
	}
}

func TestStore_SnapshotIsDeep(t *testing.T) {
	s := testStore()
	snap := s.Snapshot()

	snap["grb"].(map[string]any)["fluence"].(map[string]any)["mean"] = 0.0
	snap["grb"].(map[string]any)["peaks"].([]any)[0] = "changed"
	snap["added"] = true

	if v, _ := s.Lookup("grb.fluence.mean"); v != int64(1500) {
		t.Errorf("store mean changed to %v", v)
	}

	if v, _ := s.Lookup("grb.peaks.0"); v != int64(10) {
		t.Errorf("store list changed to %v", v)
	}

	if _, ok := s["added"]; ok {
		t.Error("snapshot key leaked into store")
	}

	if got := Store(nil).Snapshot(); got == nil || len(got) != 0 {
		t.Errorf("nil Snapshot() = %#v", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"int", 3, int64(3)},
		{"uint64", uint64(7), int64(7)},
		{"huge uint64", uint64(math.MaxUint64), float64(math.MaxUint64)},
		{"uint8", uint8(2), int64(2)},
		{"float32", float32(0.5), 0.5},
		{"string", "s", "s"},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}

	nested := Normalize(map[any]any{1: []int{4, 5}, "k": map[string]any{"u": uint64(1)}})

	m, ok := nested.(map[string]any)
	if !ok {
		t.Fatalf("Normalize(map) = %T", nested)
	}

	if l, ok := m["1"].([]any); !ok || l[0] != int64(4) || l[1] != int64(5) {
		t.Errorf("m[1] = %#v", m["1"])
	}

	if v := m["k"].(map[string]any)["u"]; v != int64(1) {
		t.Errorf("m.k.u = %#v", v)
	}
}
