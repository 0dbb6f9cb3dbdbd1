package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/ddpaper/data"
	"github.com/ardnew/ddpaper/lang"
	"github.com/ardnew/ddpaper/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer for command results.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// Loader loads the data store that keys are resolved against.
type Loader func(context.Context) (data.Store, error)

type loaderKey struct{}

// WithLoader returns a new context.Context containing the store loader used
// by commands.
func WithLoader(ctx context.Context, load Loader) context.Context {
	return context.WithValue(ctx, loaderKey{}, load)
}

// loaderFrom returns the loader stored by [WithLoader], or one reading
// [data.DefaultDir] if there is none.
func loaderFrom(ctx context.Context) Loader {
	if load, ok := ctx.Value(loaderKey{}).(Loader); ok && load != nil {
		return load
	}

	return DataSource{}.Load
}

// DataSource describes the files a store is assembled from.
type DataSource struct {
	Dir        string
	Modules    []string
	Files      []string
	Assume     []string
	CacheDir   string
	WriteCache bool
}

// Load assembles the store. Extra files naming the same file more than once
// (by symlink or relative path) are loaded once.
func (s DataSource) Load(ctx context.Context) (data.Store, error) {
	store, err := data.Load(ctx, s.Dir,
		data.WithModules(s.Modules...),
		data.WithFiles(uniqueFiles(s.Files)...),
		data.WithAssumptions(s.Assume...),
		data.WithCache(s.CacheDir, s.WriteCache),
		data.WithLogger(log.Default()),
	)
	if err != nil {
		return nil, ErrLoadData.Wrap(err).With(slog.String("dir", s.Dir))
	}

	return store, nil
}

// engine loads the store and returns an engine resolving against it.
func engine(ctx context.Context) (*lang.Engine, data.Store, error) {
	store, err := loaderFrom(ctx)(ctx)
	if err != nil {
		return nil, nil, err
	}

	return lang.New(store, lang.WithLogger(log.Default())), store, nil
}

// stdinSource is the special input name for reading from stdin.
const stdinSource = "-"

// readInput reads the draft at path, or stdin if path is "-".
func readInput(path string) ([]byte, error) {
	var (
		b   []byte
		err error
	)

	if path == stdinSource {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, ErrReadDraft.Wrap(err).With(slog.String("file", path))
	}

	return b, nil
}

// writeAtomic writes a file through a temporary file in the same directory.
// The destination is replaced only if write succeeds.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = write(f); err != nil {
		return err
	}

	if err = f.Chmod(0o644); err != nil {
		return err
	}

	if err = f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), path)
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// uniqueFiles returns paths without the entries naming a file already
// listed. Paths that cannot be resolved are kept so that loading reports
// them.
func uniqueFiles(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[fileKey]struct{})

	for _, path := range paths {
		key, ok := resolveFileKey(path)
		if ok {
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		out = append(out, path)
	}

	return out
}

// resolveFileKey follows symlinks and identifies the file at path.
func resolveFileKey(path string) (fileKey, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}
