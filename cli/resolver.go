package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] for YAML configuration files such
// as the one written by the init command:
//
//	log-level: debug
//	data: ./paper/data
//	module: [grb, spi]
//	write-caches: true
//
// Keys are flag names; underscores may be used in place of hyphens.
// Command-line flags override config file values. A file that is not a
// YAML mapping is ignored.
func resolve(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	//nolint:nilerr
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return config{}, nil
	}

	c := make(config, len(doc))

	for k, v := range doc {
		c[strings.ReplaceAll(k, "_", "-")] = flagValue(v)
	}

	return c, nil
}

// config implements [kong.Resolver] for decoded configuration files.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil
}

// flagValue converts a decoded value to a form kong's decoders accept.
// Kong parses numbers from strings.
func flagValue(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)

	case int64:
		return strconv.FormatInt(v, 10)

	case uint64:
		return strconv.FormatUint(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagValue(e)
		}

		return out

	default:
		return v
	}
}
