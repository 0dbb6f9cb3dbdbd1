package filter

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// FormatG formats v like printf's "%.<prec>g": at most prec significant
// digits, trailing zeros removed, and exponent notation when the exponent is
// below -4 or at least prec. A precision of zero is treated as one.
func FormatG(v float64, prec int) string {
	if s, ok := nonFinite(v); ok {
		return s
	}

	return strconv.FormatFloat(v, 'g', prec, 64)
}

// Exponent returns the decimal exponent of a positive x: log10(x) truncated
// toward zero, then lowered by one if negative. Thus 1500 yields 3 and
// 0.0012 yields -3.
func Exponent(x float64) int {
	e := int(math.Trunc(log10(x)))
	if e < 0 {
		e--
	}

	return e
}

// log10 is [math.Log10] made exact at powers of ten, where the library
// result can miss the integer by one ulp (log10(0.1) = -0.9999999999999999).
func log10(x float64) float64 {
	l := math.Log10(x)
	if math.IsNaN(l) || math.IsInf(l, 0) {
		return l
	}

	if r := math.Round(l); math.Pow10(int(r)) == x {
		return r
	}

	return l
}

// Str formats v for output. Strings are returned unchanged. Other values
// use the notation existing drafts were written against: None, True,
// 1500.0, 1e-05, [1, 'a'], {'k': 2}.
func Str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	var sb strings.Builder

	writeRepr(&sb, v)

	return sb.String()
}

func writeRepr(sb *strings.Builder, v any) {
	if f, ok := v.(float64); ok {
		sb.WriteString(formatFloat(f))

		return
	}

	if f, ok := v.(float32); ok {
		sb.WriteString(formatFloat(float64(f)))

		return
	}

	if n, ok := toInt64(v); ok {
		sb.WriteString(strconv.FormatInt(n, 10))

		return
	}

	switch v := v.(type) {
	case nil:
		sb.WriteString("None")

	case bool:
		if v {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}

	case uint64:
		sb.WriteString(strconv.FormatUint(v, 10))

	case string:
		sb.WriteString(quote(v))

	case map[string]any:
		sb.WriteByte('{')

		for i, k := range slices.Sorted(maps.Keys(v)) {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(quote(k))
			sb.WriteString(": ")
			writeRepr(sb, v[k])
		}

		sb.WriteByte('}')

	case []any:
		sb.WriteByte('[')

		for i, e := range v {
			if i > 0 {
				sb.WriteString(", ")
			}

			writeRepr(sb, e)
		}

		sb.WriteByte(']')

	default:
		sb.WriteString(fmt.Sprint(v))
	}
}

// formatFloat returns the shortest representation of f that round-trips,
// with a ".0" suffix on integral values and exponent notation outside
// [1e-4, 1e16).
func formatFloat(f float64) string {
	if s, ok := nonFinite(f); ok {
		return s
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)

	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}

	return s
}

func nonFinite(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return "nan", true
	case math.IsInf(f, 1):
		return "inf", true
	case math.IsInf(f, -1):
		return "-inf", true
	}

	return "", false
}

// quote returns s in single quotes, or double quotes if s contains a single
// quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var sb strings.Builder

	sb.WriteByte(q)

	for _, c := range s {
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case rune(q):
			sb.WriteByte('\\')
			sb.WriteByte(q)
		default:
			sb.WriteRune(c)
		}
	}

	sb.WriteByte(q)

	return sb.String()
}

// toFloat converts any Go integer or floating-point value. Booleans are not
// numbers.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	}

	if n, ok := toInt64(v); ok {
		return float64(n), true
	}

	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}

	return 0, false
}

// toInt converts an integer, or a finite float truncated toward zero.
func toInt(v any) (int, bool) {
	if n, ok := toInt64(v); ok {
		return int(n), true
	}

	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return int(f), true
}

// truthy reports whether v is considered true: non-zero numbers, non-empty
// strings and collections, and true.
func truthy(v any) bool {
	if v == nil {
		return false
	}

	if b, ok := v.(bool); ok {
		return b
	}

	if f, ok := toFloat(v); ok {
		return f != 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Map, reflect.Slice:
		return rv.Len() > 0
	}

	return true
}

func typeName(v any) string {
	if v == nil {
		return "None"
	}

	return reflect.TypeOf(v).String()
}
