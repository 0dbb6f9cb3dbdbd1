package data

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Store is the hierarchical data referenced by draft placeholders. Each
// top-level key is a namespace, usually named after the file it was loaded
// from. Values are nil, bool, int64, float64, string, []any, or
// map[string]any.
type Store map[string]any

// Snapshot returns a deep copy of s. Evaluating against a snapshot leaves
// the store unchanged whatever the evaluation does.
func (s Store) Snapshot() map[string]any {
	out, _ := Clone(map[string]any(s)).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}

	return out
}

// Clone returns a deep copy of the mappings and lists in v. Scalars are
// returned as is.
func Clone(v any) any {
	switch v := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[k] = Clone(e)
		}

		return m

	case []any:
		l := make([]any, len(v))
		for i, e := range v {
			l[i] = Clone(e)
		}

		return l

	default:
		return v
	}
}

// split breaks a dotted path into its segments.
func split(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	seg := strings.Split(path, ".")
	if slices.Contains(seg, "") {
		return nil, ErrPath.With(slog.String("path", path))
	}

	return seg, nil
}

// Lookup returns the value at a dotted path such as "grb.fluence.mean".
// Numeric segments index lists. The empty path refers to the whole store.
func (s Store) Lookup(path string) (any, bool) {
	seg, err := split(path)
	if err != nil {
		return nil, false
	}

	var cur any = map[string]any(s)

	for _, name := range seg {
		var ok bool

		if cur, ok = child(cur, name); !ok {
			return nil, false
		}
	}

	return cur, true
}

func child(v any, name string) (any, bool) {
	switch v := v.(type) {
	case map[string]any:
		e, ok := v[name]

		return e, ok

	case []any:
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= len(v) {
			return nil, false
		}

		return v[i], true
	}

	return nil, false
}

// Children returns the names directly below the value at path: sorted keys
// of a mapping or the indices of a list.
func (s Store) Children(path string) []string {
	v, ok := s.Lookup(path)
	if !ok {
		return nil
	}

	switch v := v.(type) {
	case map[string]any:
		return slices.Sorted(maps.Keys(v))

	case []any:
		idx := make([]string, len(v))
		for i := range v {
			idx[i] = strconv.Itoa(i)
		}

		return idx
	}

	return nil
}

// Set stores v at a dotted path, creating intermediate mappings as needed.
// v is normalized first. Setting below a value that is not a mapping is an
// error.
func (s Store) Set(path string, v any) error {
	seg, err := split(path)
	if err != nil {
		return err
	}

	return s.put(seg, v)
}

// put stores v under the given segments, which are used verbatim.
func (s Store) put(seg []string, v any) error {
	if len(seg) == 0 {
		return ErrPath.With(slog.String("path", ""))
	}

	m := map[string]any(s)

	for i, name := range seg[:len(seg)-1] {
		next, ok := m[name]
		if !ok || next == nil {
			nm := map[string]any{}
			m[name] = nm
			m = nm

			continue
		}

		if m, ok = next.(map[string]any); !ok {
			return ErrPath.Wrap(
				fmt.Errorf("%s is not a mapping", strings.Join(seg[:i+1], ".")),
			).With(slog.String("path", strings.Join(seg, ".")))
		}
	}

	m[seg[len(seg)-1]] = Normalize(v)

	return nil
}

// Normalize converts a decoded value into the types held by a [Store].
// Integers become int64 (or float64 if out of range), mapping keys become
// strings, and other scalars become their string form.
func Normalize(v any) any {
	switch v := v.(type) {
	case nil, bool, int64, float64, string:
		return v

	case int:
		return int64(v)

	case int32:
		return int64(v)

	case uint64:
		if v > math.MaxInt64 {
			return float64(v)
		}

		return int64(v)

	case float32:
		return float64(v)

	case time.Time:
		return v.Format(time.RFC3339Nano)

	case map[string]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[k] = Normalize(e)
		}

		return m

	case []any:
		l := make([]any, len(v))
		for i, e := range v {
			l[i] = Normalize(e)
		}

		return l
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Normalize(rv.Uint())

	case reflect.Float32, reflect.Float64:
		return rv.Float()

	case reflect.Map:
		m := make(map[string]any, rv.Len())
		for it := rv.MapRange(); it.Next(); {
			m[fmt.Sprint(it.Key().Interface())] = Normalize(it.Value().Interface())
		}

		return m

	case reflect.Slice, reflect.Array:
		l := make([]any, rv.Len())
		for i := range l {
			l[i] = Normalize(rv.Index(i).Interface())
		}

		return l
	}

	return fmt.Sprint(v)
}
