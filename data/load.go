package data

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/ddpaper/log"
)

// DefaultDir is the data directory used when none is given.
const DefaultDir = "./data"

// Option configures [Load].
type Option func(*loader)

type loader struct {
	dir        string
	modules    []string
	files      []string
	assume     []string
	cacheDir   string
	writeCache bool
	logger     log.Logger
}

// WithModules loads each named subdirectory of the data directory,
// recursively, as a nested namespace of the same name.
func WithModules(names ...string) Option {
	return func(l *loader) { l.modules = append(l.modules, names...) }
}

// WithFiles loads additional YAML files, each as the namespace named by its
// file stem. A later file replaces an earlier namespace of the same name.
func WithFiles(paths ...string) Option {
	return func(l *loader) { l.files = append(l.files, paths...) }
}

// WithAssumptions sets values given as "dotted.path=VALUE" after all files
// are loaded. VALUE is parsed as YAML.
func WithAssumptions(assume ...string) Option {
	return func(l *loader) { l.assume = append(l.assume, assume...) }
}

// WithCache reads the assembled store from dir when its sources are
// unchanged. If write is set, a store loaded from source is saved there.
func WithCache(dir string, write bool) Option {
	return func(l *loader) {
		l.cacheDir = dir
		l.writeCache = write
	}
}

// WithLogger sets the logger for load diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(l *loader) { l.logger = logger }
}

// source is a YAML file and the namespace it is loaded into.
type source struct {
	path string
	ns   []string
	size int64
	mod  time.Time
}

// Load assembles a [Store]. Every *.yaml and *.yml file in dir becomes the
// namespace named by its stem. Modules, extra files, and assumptions are
// applied next, in that order. A missing dir yields an empty store.
func Load(ctx context.Context, dir string, opts ...Option) (Store, error) {
	l := loader{dir: dir}

	for _, opt := range opts {
		opt(&l)
	}

	if l.dir == "" {
		l.dir = DefaultDir
	}

	srcs, err := l.sources(ctx)
	if err != nil {
		return nil, err
	}

	store, hit := l.readCache(ctx, srcs)
	if !hit {
		if store, err = l.decode(ctx, srcs); err != nil {
			return nil, err
		}

		if l.writeCache {
			l.saveCache(ctx, srcs, store)
		}
	}

	for _, a := range l.assume {
		if err := store.assume(a); err != nil {
			return nil, err
		}
	}

	l.logger.DebugContext(ctx, "store loaded",
		slog.String("dir", l.dir),
		slog.Int("sources", len(srcs)),
		slog.Int("namespaces", len(store)),
		slog.Bool("cached", hit))

	return store, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))

	return ext == ".yaml" || ext == ".yml"
}

func stem(name string) string {
	base := filepath.Base(name)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

func makeSource(path string, ns []string) (source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return source{}, ErrReadSource.Wrap(err).With(slog.String("path", path))
	}

	return source{path: path, ns: ns, size: info.Size(), mod: info.ModTime()}, nil
}

// sources lists every file that contributes to the store, in load order.
func (l *loader) sources(ctx context.Context) ([]source, error) {
	var srcs []source

	entries, err := os.ReadDir(l.dir)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		l.logger.WarnContext(ctx, "data directory not found",
			slog.String("dir", l.dir))

	case err != nil:
		return nil, ErrReadSource.Wrap(err).With(slog.String("path", l.dir))
	}

	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}

		src, err := makeSource(filepath.Join(l.dir, e.Name()), []string{stem(e.Name())})
		if err != nil {
			return nil, err
		}

		srcs = append(srcs, src)
	}

	for _, name := range l.modules {
		mod, err := l.moduleSources(ctx, name)
		if err != nil {
			return nil, err
		}

		srcs = append(srcs, mod...)
	}

	for _, path := range l.files {
		src, err := makeSource(path, []string{stem(path)})
		if err != nil {
			return nil, err
		}

		srcs = append(srcs, src)
	}

	return srcs, nil
}

func (l *loader) moduleSources(ctx context.Context, name string) ([]source, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return nil, ErrModule.With(slog.String("module", name))
	}

	root := filepath.Join(l.dir, name)

	var srcs []source

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() || !isYAML(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		ns := append([]string{name}, strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/")...)
		if filepath.Dir(rel) == "." {
			ns = ns[:1]
		}

		src, err := makeSource(path, append(ns, stem(d.Name())))
		if err != nil {
			return err
		}

		srcs = append(srcs, src)

		return nil
	})
	if err != nil {
		return nil, ErrModule.Wrap(err).With(slog.String("module", name))
	}

	return srcs, nil
}

// decode reads and decodes every source into a new store.
func (l *loader) decode(ctx context.Context, srcs []source) (Store, error) {
	store := Store{}

	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		b, err := readFile(src.path)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", src.path))
		}

		var v any

		if err := yaml.Unmarshal(b, &v); err != nil {
			return nil, ErrDecodeSource.Wrap(err).With(slog.String("path", src.path))
		}

		if err := store.put(src.ns, v); err != nil {
			return nil, err
		}

		l.logger.TraceContext(ctx, "loaded data",
			slog.String("path", src.path),
			slog.String("namespace", strings.Join(src.ns, ".")))
	}

	return store, nil
}

// readFile reads a whole file through an asynchronous read-ahead buffer.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	ra := readahead.NewReadCloser(f)
	defer ra.Close()

	return io.ReadAll(ra)
}

// assume applies one "dotted.path=VALUE" assignment.
func (s Store) assume(a string) error {
	path, val, ok := strings.Cut(a, "=")
	if !ok || strings.TrimSpace(path) == "" {
		return ErrAssumption.With(slog.String("assumption", a))
	}

	var v any

	if err := yaml.Unmarshal([]byte(val), &v); err != nil {
		return ErrAssumption.Wrap(err).With(slog.String("assumption", a))
	}

	if err := s.Set(strings.TrimSpace(path), v); err != nil {
		return ErrAssumption.Wrap(err).With(slog.String("assumption", a))
	}

	return nil
}
