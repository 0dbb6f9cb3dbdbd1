package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/ddpaper/draft"
)

// Keys lists the distinct placeholder keys of a draft in order of first use.
type Keys struct {
	Input string `arg:"" default:"main.tex" help:"Draft document or '-' for stdin" optional:""`
	Count bool   `help:"Print only the number of keys" short:"c"`
}

// Run executes the keys command.
func (k *Keys) Run(ctx context.Context) error {
	src, err := readInput(k.Input)
	if err != nil {
		return err
	}

	out := stdout(ctx)

	if k.Count {
		n, err := draft.Count(bytes.NewReader(src))
		if err != nil {
			return ErrReadDraft.Wrap(err).With(slog.String("file", k.Input))
		}

		_, err = fmt.Fprintln(out, n)

		return err
	}

	for key, err := range draft.Keys(bytes.NewReader(src)) {
		if err != nil {
			return ErrReadDraft.Wrap(err).With(slog.String("file", k.Input))
		}

		if _, err := fmt.Fprintln(out, key); err != nil {
			return err
		}
	}

	return nil
}
