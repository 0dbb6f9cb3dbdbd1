// Package cli contains the command line interface for ddpaper.
//
// # Usage
//
//	ddpaper [flags] [gen] [INPUT [OUTPUT]]
//	ddpaper keys [-c] [INPUT]
//	ddpaper query [-y] [--strict] KEY...
//	ddpaper repl
//	ddpaper init [--force]
//
// gen is the default command: it scans INPUT (main.tex) for \VAR{key}
// placeholders and writes one \addVAR definition per key to OUTPUT
// (definitions.tex). With --draft, the whole document is rendered instead.
//
// # Data Options
//
//   - --data, -d: directory of YAML files, one namespace per file (./data)
//   - --module, -m: subdirectory of the data directory loaded as a namespace
//   - --load, -l: extra YAML file loaded as the namespace named by its stem
//   - --assume, -a: override a value, e.g. 'grb.t0=0'
//   - --write-caches, -w: save the assembled data to the cache directory
//
// # Configuration
//
// Flags may also be set in a YAML file in the user configuration directory
// (e.g. ~/.config/ddpaper/config), keyed by flag name. The init command
// writes the current flag values to it. Command-line flags take precedence.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// Logs are written to standard error.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o ddpaper .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/ddpaper/pprof)
//
// # Examples
//
//	# Definitions for paper.tex from a separate data directory
//	ddpaper -d ../analysis/data paper.tex defs.tex
//
//	# Check a value with a filter applied
//	ddpaper query 'grb.fluence | plusminus(2)'
//
//	# Debug logging with CPU profiling
//	ddpaper --log-level=debug --pprof-mode=cpu
package cli
