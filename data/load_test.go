package data

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()

	writeFiles(t, dir, map[string]string{
		"grb.yaml":   "t90: 1.5\nfluence:\n  mean: 1500\n  stat_err: 20\n",
		"setup.yml":  "name: detector\nchannels: [1, 2, 3]\n",
		"notes.txt":  "ignored",
		"empty.yaml": "",
		"sub/x.yaml": "ignored: true\n",
	})

	store, err := Load(t.Context(), dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"grb.t90", 1.5},
		{"grb.fluence.mean", int64(1500)},
		{"setup.name", "detector"},
		{"setup.channels.2", int64(3)},
		{"empty", nil},
	}

	for _, tt := range tests {
		got, ok := store.Lookup(tt.path)
		if !ok || got != tt.want {
			t.Errorf("Lookup(%q) = %#v, %v, want %#v", tt.path, got, ok, tt.want)
		}
	}

	for _, path := range []string{"notes", "sub", "x"} {
		if _, ok := store.Lookup(path); ok {
			t.Errorf("unexpected namespace %q", path)
		}
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	store, err := Load(t.Context(), filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(store) != 0 {
		t.Errorf("Load() = %v, want empty", store)
	}
}

func TestLoad_DecodeError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"bad.yaml": "a: [unclosed\n"})

	if _, err := Load(t.Context(), dir); !errors.Is(err, ErrDecodeSource) {
		t.Errorf("Load() error = %v, want %v", err, ErrDecodeSource)
	}
}

func TestLoad_ModulesFilesAssumptions(t *testing.T) {
	dir := t.TempDir()
	extra := t.TempDir()

	writeFiles(t, dir, map[string]string{
		"grb.yaml":               "t90: 1.5\n",
		"spi/bkg.yaml":           "rate: 0.25\n",
		"spi/calib/lines.yaml":   "e511: 511.0\n",
		"spi/calib/readme.md":    "not data",
		"isgri/ignored_too.yaml": "x: 1\n",
	})
	writeFiles(t, extra, map[string]string{"grb.yaml": "t90: 9.0\nextra: true\n"})

	store, err := Load(t.Context(), dir,
		WithModules("spi"),
		WithFiles(filepath.Join(extra, "grb.yaml")),
		WithAssumptions(
			"grb.z=0.5",
			"spi.bkg.rate={mean: 1, stat_err: 2}",
			"fresh.value=text with spaces",
			"grb.limit=1.0e-3",
		),
	)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"spi.calib.lines.e511", 511.0},
		{"spi.bkg.rate.mean", int64(1)},
		{"grb.t90", 9.0},
		{"grb.extra", true},
		{"grb.z", 0.5},
		{"grb.limit", 0.001},
		{"fresh.value", "text with spaces"},
	}

	for _, tt := range tests {
		got, ok := store.Lookup(tt.path)
		if !ok || got != tt.want {
			t.Errorf("Lookup(%q) = %#v, %v, want %#v", tt.path, got, ok, tt.want)
		}
	}

	if _, ok := store.Lookup("isgri"); ok {
		t.Error("unrequested module loaded")
	}
}

func TestLoad_InvalidInputs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"grb.yaml": "t90: 1.5\n"})

	tests := []struct {
		name    string
		opt     Option
		wantErr error
	}{
		{"missing module", WithModules("absent"), ErrModule},
		{"module path", WithModules("../grb"), ErrModule},
		{"missing file", WithFiles(filepath.Join(dir, "none.yaml")), ErrReadSource},
		{"assumption without value", WithAssumptions("grb.t90"), ErrAssumption},
		{"assumption below scalar", WithAssumptions("grb.t90.x=1"), ErrAssumption},
		{"assumption bad yaml", WithAssumptions("grb.x=[1,"), ErrAssumption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(t.Context(), dir, tt.opt); !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Cache(t *testing.T) {
	dir := t.TempDir()
	cache := t.TempDir()

	writeFiles(t, dir, map[string]string{
		"grb.yaml": "t90: 1.5\nlist: [a, null, {k: 2}]\n",
	})

	// Without write, nothing is cached.
	if _, err := Load(t.Context(), dir, WithCache(cache, false)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if entries, _ := os.ReadDir(cache); len(entries) != 0 {
		t.Fatalf("cache written without write flag: %v", entries)
	}

	first, err := Load(t.Context(), dir, WithCache(cache, true))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	entries, _ := os.ReadDir(cache)
	if len(entries) != 1 {
		t.Fatalf("cache entries = %v, want 1", entries)
	}

	// Corrupt the source without changing its metadata: a cache hit must
	// not read it.
	src := filepath.Join(dir, "grb.yaml")

	info, err := os.Stat(src)
	if err != nil {
		t.Fatal(err)
	}

	garbage := bytes.Repeat([]byte("["), int(info.Size()))
	if err := os.WriteFile(src, garbage, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.Chtimes(src, info.ModTime(), info.ModTime()); err != nil {
		t.Fatal(err)
	}

	cached, err := Load(t.Context(), dir, WithCache(cache, false), WithAssumptions("grb.z=1"))
	if err != nil {
		t.Fatalf("cached Load() error = %v", err)
	}

	if got, _ := cached.Lookup("grb.t90"); got != first["grb"].(map[string]any)["t90"] {
		t.Errorf("cached t90 = %v", got)
	}

	if got, _ := cached.Lookup("grb.list.2.k"); got != int64(2) {
		t.Errorf("cached list = %v", got)
	}

	if got, _ := cached.Lookup("grb.z"); got != int64(1) {
		t.Errorf("assumption not applied after cache: %v", got)
	}

	// A metadata change misses the cache and reads the (broken) source.
	later := info.ModTime().Add(time.Hour)
	if err := os.Chtimes(src, later, later); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(t.Context(), dir, WithCache(cache, false)); !errors.Is(err, ErrDecodeSource) {
		t.Errorf("Load() after change error = %v, want %v", err, ErrDecodeSource)
	}
}

func TestLoad_CacheSameStore(t *testing.T) {
	dir := t.TempDir()
	cache := t.TempDir()

	writeFiles(t, dir, map[string]string{
		"grb.yaml": "t90: 1.5\nempty: []\nnone: {}\nnested: {lines: [], e: [511]}\n",
	})

	fresh, err := Load(t.Context(), dir, WithCache(cache, true))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cached, err := Load(t.Context(), dir, WithCache(cache, false))
	if err != nil {
		t.Fatalf("cached Load() error = %v", err)
	}

	if !reflect.DeepEqual(fresh, cached) {
		t.Errorf("cached store = %#v, want %#v", cached, fresh)
	}

	if v, _ := cached.Lookup("grb.empty"); v == nil {
		t.Error("empty list decoded from the cache as nil")
	}
}

func TestLoad_CorruptCache(t *testing.T) {
	dir := t.TempDir()
	cache := t.TempDir()

	writeFiles(t, dir, map[string]string{"grb.yaml": "t90: 1.5\n"})

	if _, err := Load(t.Context(), dir, WithCache(cache, true)); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(cache)
	if err != nil || len(entries) != 1 {
		t.Fatalf("cache entries = %v, %v", entries, err)
	}

	if err := os.WriteFile(filepath.Join(cache, entries[0].Name()), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := Load(t.Context(), dir, WithCache(cache, false))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got, _ := store.Lookup("grb.t90"); got != 1.5 {
		t.Errorf("t90 = %v, want 1.5", got)
	}
}
