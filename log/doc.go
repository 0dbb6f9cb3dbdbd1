// Package log provides leveled structured logging on top of [log/slog].
//
// A [Logger] is created with [Make] and configured with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// Loggers are immutable values. [Logger.With] adds attributes to every
// message and [Logger.Wrap] reconfigures a copy, keeping those attributes.
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Messages below the configured level are
// discarded.
//
// # Pretty output
//
// With [WithPretty] enabled, records are styled with lipgloss. Text format
// prints one key=value line per record; JSON format prints an indented block.
// Colors are only emitted when the output is a terminal.
//
// # Package logger
//
// The package-level functions ([Info], [WarnContext], ...) write to a
// default logger on standard error, reconfigured with [Config].
package log
