// Package macro writes the definition file included by a LaTeX draft.
//
// The file starts with [Header], which defines \addVAR and \VAR, followed
// by one \addVAR{key}{value} line per key. Keys that fail to resolve are
// defined with the fallback value, so the draft still compiles and the
// failures are easy to find in the output.
package macro
