// Package lang resolves placeholder keys against a data store.
//
// A key is a small expression: a dotted path into the store, or a literal,
// followed by any number of filters separated by "|":
//
//	grb.fluence | plusminus(ct=3)
//	grb['t90'] | latex_exp(True, mant_precision=1)
//	spi.lines[0].energy | wrt_t0
//
// [Parse] accepts only this grammar. Parsed keys are lowered to expr-lang
// programs in which every member access is strict: a missing key is an
// error rather than an empty value.
//
// [Engine.Resolve] never fails. It returns a [Result] holding either the
// formatted value or the fallback text [Fallback] together with the error.
package lang
