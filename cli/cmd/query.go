package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-yaml"
)

// Query resolves keys given on the command line.
type Query struct {
	Keys   []string `arg:""                                         help:"Keys to resolve, e.g. 'grb.peak | plusminus'"`
	YAML   bool     `help:"Print a YAML mapping of keys to values" short:"y"`
	Strict bool     `help:"Fail if any key cannot be resolved"`
}

// Run executes the query command.
func (q *Query) Run(ctx context.Context) error {
	eng, _, err := engine(ctx)
	if err != nil {
		return err
	}

	var (
		failed int
		items  = make(yaml.MapSlice, 0, len(q.Keys))
	)

	for _, key := range q.Keys {
		r := eng.Resolve(ctx, key)
		if !r.OK() {
			failed++
		}

		items = append(items, yaml.MapItem{Key: r.Key, Value: r.Value})
	}

	out := stdout(ctx)

	if q.YAML {
		b, err := yaml.Marshal(items)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		if _, err := out.Write(b); err != nil {
			return err
		}
	} else {
		for _, it := range items {
			if _, err := fmt.Fprintf(out, "%s = %s\n", it.Key, it.Value); err != nil {
				return err
			}
		}
	}

	if q.Strict && failed > 0 {
		return ErrUnresolved.With(
			slog.Int("failed", failed),
			slog.Int("total", len(q.Keys)))
	}

	return nil
}
