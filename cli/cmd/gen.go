package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/ddpaper/draft"
	"github.com/ardnew/ddpaper/lang"
	"github.com/ardnew/ddpaper/log"
	"github.com/ardnew/ddpaper/macro"
)

// Gen writes the definition file for a draft.
type Gen struct {
	Input  string `arg:"" default:"main.tex"        help:"Draft document or '-' for stdin" optional:""`
	Output string `arg:"" default:"definitions.tex" help:"Output file"                     optional:"" type:"path"`
	Draft  bool   `help:"Render the whole draft to the output instead of writing definitions"`
}

// Run executes the gen command.
func (g *Gen) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := readInput(g.Input)
	if err != nil {
		return err
	}

	eng, _, err := engine(ctx)
	if err != nil {
		return err
	}

	if g.Draft {
		return g.render(ctx, eng, src)
	}

	keys, err := draft.Scan(bytes.NewReader(src))
	if err != nil {
		return ErrReadDraft.Wrap(err).With(slog.String("file", g.Input))
	}

	for _, key := range keys {
		log.DebugContext(ctx, "found", slog.String("key", key))
	}

	rep, err := macro.New(eng, macro.WithLogger(log.Default())).
		WriteFile(ctx, g.Output, keys)
	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", g.Output))
	}

	if rep.Failed > 0 {
		log.WarnContext(ctx, "some keys were not resolved",
			slog.Int("failed", rep.Failed),
			slog.Int("total", rep.Total))
	}

	return nil
}

// render writes the draft with every placeholder resolved. The output is
// left untouched unless the whole draft renders.
func (g *Gen) render(ctx context.Context, eng *lang.Engine, src []byte) error {
	resolve := func(ctx context.Context, key string) (string, error) {
		r := eng.Resolve(ctx, key)

		return r.Value, r.Err
	}

	err := writeAtomic(g.Output, func(w io.Writer) error {
		return draft.Render(ctx, bytes.NewReader(src), w, resolve)
	})
	if err != nil {
		return ErrRender.Wrap(err).With(
			slog.String("input", g.Input),
			slog.String("output", g.Output))
	}

	log.InfoContext(ctx, "rendered draft", slog.String("path", g.Output))

	return nil
}
