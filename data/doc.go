// Package data loads the YAML data that draft placeholders are resolved
// against.
//
// [Load] reads every YAML file of a data directory into a [Store], one
// namespace per file, then applies modules, extra files, and assumptions.
// Decoded values are normalized by [Normalize] so consumers only see nil,
// bool, int64, float64, string, []any, and map[string]any.
//
// A loaded store can be cached as a gob file keyed by the xxh3 hash of its
// sources' metadata; see [WithCache].
package data
