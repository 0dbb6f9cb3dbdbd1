package repl

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_WriteAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	if err := h.Load(); err != nil {
		t.Fatalf("Load() of missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"grb.t90", modeEval},
		{"list", modeCtrl},
		{"grb.t90", modeEval}, // repeat of an older entry moves it last
		{"grb.t90", modeEval}, // repeat of the last entry is ignored
		{"  ", modeEval},      // blank
		{"grb.t90", modeCtrl}, // same line, other mode
	} {
		if _, err := h.Write(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	want := []HistoryEntry{
		{"list", modeCtrl},
		{"grb.t90", modeEval},
		{"grb.t90", modeCtrl},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(b); got != "C:list\nE:grb.t90\nC:grb.t90\n" {
		t.Errorf("history file = %q", got)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatal(err)
	}

	if got := loaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("loaded Entries() = %v, want %v", got, want)
	}
}

func TestHistory_Entry(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	if _, err := h.Write("a", modeEval); err != nil {
		t.Fatal(err)
	}

	if e, err := h.Entry(0); err != nil || e.Line != "a" {
		t.Errorf("Entry(0) = %v, %v", e, err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.Entry(i); err != ErrOutOfBounds {
			t.Errorf("Entry(%d) error = %v, want %v", i, err, ErrOutOfBounds)
		}
	}
}

func TestHistory_UnprefixedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	if err := os.WriteFile(path, []byte("grb.t90\n\nC:quit\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{{"grb.t90", modeEval}, {"quit", modeCtrl}}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}

func TestHistory_InMemory(t *testing.T) {
	h := NewHistory("")

	if err := h.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, line := range []string{"grb.t90", "grb.name", "grb.t90"} {
		if n, err := h.Write(line, modeEval); err != nil || n != 0 {
			t.Fatalf("Write(%q) = %d, %v", line, n, err)
		}
	}

	want := []HistoryEntry{{"grb.name", modeEval}, {"grb.t90", modeEval}}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}
