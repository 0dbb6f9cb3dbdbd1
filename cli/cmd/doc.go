// Package cmd implements the ddpaper subcommands.
//
// Commands receive a [context.Context] carrying the parsed [kong.Context]
// (see [WithContext]) and a [Loader] for the data store (see [WithLoader]).
// Results are written to the kong application's standard output, so
// diagnostics on standard error never mix with them.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// to the configuration file.
	ConfigIdentifier = "config"
)
