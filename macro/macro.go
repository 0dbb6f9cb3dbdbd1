package macro

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ardnew/ddpaper/draft"
	"github.com/ardnew/ddpaper/lang"
	"github.com/ardnew/ddpaper/log"
)

// Header precedes the definitions. \VAR{key} expands to the value stored
// by \addVAR{key}{value}, or raises \ERROR for keys that were never added.
const Header = draft.Banner + `
% boilerplate

\def\addVAR#1#2{\expandafter\gdef\csname my@data@\detokenize{#1}\endcsname{#2}}
\def\VAR#1{%
  \ifcsname my@data@\detokenize{#1}\endcsname
    \csname my@data@\detokenize{#1}\expandafter\endcsname
  \else
    \expandafter\ERROR
  \fi
}

% extracted definitions

`

// ErrOutput is returned when the definition file cannot be written.
var ErrOutput = errors.New("unable to write output")

// Resolver resolves a single key. [*lang.Engine] implements it.
type Resolver interface {
	Resolve(ctx context.Context, key string) lang.Result
}

// Report summarizes an emitted file.
type Report struct {
	Total    int
	Failed   int
	Failures []lang.Result
}

// Emitter writes definition files.
type Emitter struct {
	resolver Resolver
	logger   log.Logger
}

// Option configures an [Emitter].
type Option func(*Emitter)

// WithLogger sets the logger. The default is the package-level logger.
func WithLogger(logger log.Logger) Option {
	return func(e *Emitter) { e.logger = logger }
}

// New returns an emitter that resolves keys with r.
func New(r Resolver, opts ...Option) *Emitter {
	e := &Emitter{resolver: r, logger: log.Default()}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Define returns the definition line of a resolved key.
func Define(r lang.Result) string {
	return `\addVAR{` + r.Key + `}{` + r.Value + "}\n"
}

// Emit writes [Header] and then the definition of each key, in order, to w.
// Keys that fail to resolve are defined with [lang.Fallback] and listed in
// the report; only write errors and cancellation stop the emitter.
func (e *Emitter) Emit(ctx context.Context, w io.Writer, keys []string) (Report, error) {
	var rep Report

	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(Header); err != nil {
		return rep, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		r := e.resolver.Resolve(ctx, key)

		rep.Total++

		if !r.OK() {
			rep.Failed++
			rep.Failures = append(rep.Failures, r)
		}

		e.logger.TraceContext(ctx, "define",
			slog.String("key", r.Key),
			slog.String("value", r.Value))

		if _, err := bw.WriteString(Define(r)); err != nil {
			return rep, fmt.Errorf("%w: %w", ErrOutput, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return rep, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	return rep, nil
}

// WriteFile emits the definitions of keys to the file at path. The file is
// replaced only if every definition was written; on failure the previous
// contents are left untouched.
func (e *Emitter) WriteFile(ctx context.Context, path string, keys []string) (rep Report, err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return rep, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if rep, err = e.Emit(ctx, f, keys); err != nil {
		return rep, err
	}

	if err = f.Chmod(0o644); err != nil {
		return rep, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	if err = f.Close(); err != nil {
		return rep, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	if err = os.Rename(f.Name(), path); err != nil {
		return rep, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	e.logger.InfoContext(ctx, "wrote definitions",
		slog.String("path", path),
		slog.Int("total", rep.Total),
		slog.Int("failed", rep.Failed))

	return rep, nil
}
