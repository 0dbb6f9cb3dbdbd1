// Package repl resolves placeholder keys interactively.
//
// Keys are typed exactly as they appear inside \VAR{...}. Store paths and
// filter names are completed with fuzzy matching as they are typed, and
// every input line is kept in a history file in the cache directory.
// Esc switches to command mode (help, list, clear, quit).
package repl
