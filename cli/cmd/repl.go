package cmd

import (
	"context"

	"github.com/ardnew/ddpaper/cli/cmd/repl"
	"github.com/ardnew/ddpaper/log"
)

// Repl starts an interactive session for resolving keys against the store.
type Repl struct{}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	store, err := loaderFrom(ctx)(ctx)
	if err != nil {
		return err
	}

	var cacheDir string

	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	if err := repl.Run(ctx, store, cacheDir, log.Default()); err != nil {
		return ErrSession.Wrap(err)
	}

	return nil
}
