// Package filter implements the formatting filters applied to resolved data
// values before they are written as LaTeX macro definitions.
//
// A filter is a [Func] receiving the piped value and the call's arguments.
// Filters are looked up by name in a [Registry]; [Default] returns a new
// registry holding the built-in filters:
//
//	wrt_t0       signed offset relative to a reference time
//	erange       energy range in keV or MeV
//	plusminus    mean with symmetric or asymmetric uncertainty
//	latex_exp    number in mantissa/exponent notation
//	preliminary  value highlighted as preliminary
//
// Numbers are rendered with printf-style significant figures ([FormatG]) and
// other values the way [Str] prints them.
package filter
