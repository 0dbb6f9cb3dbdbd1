// Package draft reads LaTeX drafts containing \VAR{key} placeholders.
//
// [Keys] and [Scan] extract the distinct placeholder keys in order of first
// appearance. [Render] produces a complete document with every placeholder
// replaced by its resolved value.
package draft
