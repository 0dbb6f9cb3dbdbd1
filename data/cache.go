package data

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"
)

func init() {
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// cacheKey hashes the path, namespace, size, and modification time of every
// source. Any change to the set of sources or their metadata changes the key.
func cacheKey(srcs []source) uint64 {
	h := xxh3.New()
	enc := gob.NewEncoder(h)

	_ = enc.Encode(len(srcs))

	for _, src := range srcs {
		_ = enc.Encode(src.path)
		_ = enc.Encode(src.ns)
		_ = enc.Encode(src.size)
		_ = enc.Encode(src.mod.UnixNano())
	}

	return h.Sum64()
}

// cachePath returns the cache file used for a set of sources.
func (l *loader) cachePath(srcs []source) string {
	return filepath.Join(l.cacheDir, fmt.Sprintf("store-%016x.gob", cacheKey(srcs)))
}

// readCache returns the cached store for srcs. Missing or unreadable cache
// files are a miss.
func (l *loader) readCache(ctx context.Context, srcs []source) (Store, bool) {
	if l.cacheDir == "" {
		return nil, false
	}

	path := l.cachePath(srcs)

	b, err := readFile(path)
	if err != nil {
		l.logger.TraceContext(ctx, "cache miss", slog.String("path", path))

		return nil, false
	}

	var store Store

	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&store); err != nil {
		l.logger.WarnContext(ctx, "ignoring corrupt cache",
			slog.Any("error", ErrCache.Wrap(err).With(slog.String("path", path))))

		return nil, false
	}

	// gob decodes empty lists as nil.
	store = Store(Normalize(map[string]any(store)).(map[string]any))

	l.logger.DebugContext(ctx, "cache hit", slog.String("path", path))

	return store, true
}

// saveCache writes store to the cache atomically. Failures are logged and
// otherwise ignored.
func (l *loader) saveCache(ctx context.Context, srcs []source, store Store) {
	if l.cacheDir == "" {
		return
	}

	path := l.cachePath(srcs)

	if err := writeCache(path, store); err != nil {
		l.logger.WarnContext(ctx, "unable to write cache",
			slog.Any("error", ErrCache.Wrap(err).With(slog.String("path", path))))

		return
	}

	l.logger.DebugContext(ctx, "cache written", slog.String("path", path))
}

func writeCache(path string, store Store) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".store-*.tmp")
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = gob.NewEncoder(f).Encode(store); err != nil {
		return err
	}

	if err = f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), path)
}
