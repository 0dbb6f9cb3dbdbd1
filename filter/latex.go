package filter

import (
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"
)

// NotAvailable is the output of [LatexExp] for a missing value.
const NotAvailable = "N/A"

// Preliminary wraps the value in a red \textcolor marker.
func Preliminary(value any, args Args) (any, error) {
	if _, err := args.bind(); err != nil {
		return nil, err
	}

	return `\textcolor{red}{` + Str(value) + `}`, nil
}

// WrtT0 formats a signed offset with two significant digits. Zero takes the
// negative sign.
func WrtT0(value any, args Args) (any, error) {
	if _, err := args.bind(); err != nil {
		return nil, err
	}

	x, ok := toFloat(value)
	if !ok {
		return nil, fmt.Errorf("%w: wrt_t0 expects a number, got %s",
			ErrValue, typeName(value))
	}

	sign := "~-~"
	if x > 0 {
		sign = "~+~"
	}

	return sign + FormatG(math.Abs(x), 2), nil
}

// ERange formats a record with emin and emax in keV. Ranges reaching 10000
// keV print emax in MeV.
func ERange(value any, args Args) (any, error) {
	if _, err := args.bind(); err != nil {
		return nil, err
	}

	rec, err := record(value, "erange")
	if err != nil {
		return nil, err
	}

	emin, err := field(rec, "emin")
	if err != nil {
		return nil, err
	}

	emax, err := field(rec, "emax")
	if err != nil {
		return nil, err
	}

	if emax < 10000 {
		return FormatG(emin, 6) + "~--~" + FormatG(emax, 6) + "~keV", nil
	}

	return FormatG(emin, 6) + "~keV~--~" + FormatG(emax/1000, 6) + "~MeV", nil
}

// uncertainty fields divided by the scale factor of [Rescale].
var uncertainty = []string{"mean", "stat_err", "stat_err_plus", "stat_err_minus"}

// Rescale returns a copy of rec normalized for display. If log10(mean) is
// above 3 or below -2, the copy holds scale_log10 = [Exponent](mean) and
// every present uncertainty field divided by 10^scale_log10. rec is never
// modified.
func Rescale(rec map[string]any) (map[string]any, error) {
	mean, err := field(rec, "mean")
	if err != nil {
		return nil, err
	}

	out := maps.Clone(rec)

	lg := log10(mean)
	if !(lg > 3 || lg < -2) {
		return out, nil
	}

	if math.IsInf(lg, 0) {
		return nil, fmt.Errorf("%w: plusminus of mean %s", ErrValue, Str(rec["mean"]))
	}

	scale := Exponent(mean)
	div := math.Pow10(scale)

	for _, name := range uncertainty {
		if _, ok := rec[name]; !ok {
			continue
		}

		x, err := field(rec, name)
		if err != nil {
			return nil, err
		}

		out[name] = x / div
	}

	out["scale_log10"] = int64(scale)

	return out, nil
}

// PlusMinus formats a mean with its statistical uncertainty at ct
// significant digits (default 2; "precision" is accepted as an alias). The
// record holds either stat_err or both stat_err_plus and stat_err_minus.
// Large and small means are rescaled by [Rescale] and suffixed with the
// power of ten.
func PlusMinus(value any, args Args) (any, error) {
	bound, err := args.alias("precision", "ct").bind("ct")
	if err != nil {
		return nil, err
	}

	ct := 2

	if v, ok := bound["ct"]; ok {
		if ct, err = precision(v); err != nil {
			return nil, err
		}
	}

	rec, err := record(value, "plusminus")
	if err != nil {
		return nil, err
	}

	rec, err = Rescale(rec)
	if err != nil {
		return nil, err
	}

	g := func(name string) (string, error) {
		x, err := field(rec, name)
		if err != nil {
			return "", err
		}

		return FormatG(x, ct), nil
	}

	mean, err := g("mean")
	if err != nil {
		return nil, err
	}

	var sb strings.Builder

	if _, ok := rec["stat_err"]; ok {
		e, err := g("stat_err")
		if err != nil {
			return nil, err
		}

		sb.WriteString(mean + `~$\pm$~` + e)
	} else {
		plus, err := g("stat_err_plus")
		if err != nil {
			return nil, err
		}

		minus, err := g("stat_err_minus")
		if err != nil {
			return nil, err
		}

		sb.WriteString(mean + `\small$^{+` + plus + `}_{-` + minus + `}$\normalsize`)
	}

	if scale, ok := rec["scale_log10"].(int64); ok {
		sb.WriteString(`$ \times 10^{` + strconv.FormatInt(scale, 10) + `}$`)
	}

	return sb.String(), nil
}

// LatexExp formats a positive number as mantissa $\times$ 10$^{exponent}$,
// with mant_precision significant digits in the mantissa (default 2). A
// mantissa of 1 is omitted. With ineq set, math shifts ($) are removed.
// A nil or blank value yields [NotAvailable].
func LatexExp(value any, args Args) (any, error) {
	bound, err := args.bind("ineq", "mant_precision")
	if err != nil {
		return nil, err
	}

	if value == nil || strings.TrimSpace(Str(value)) == "" {
		return NotAvailable, nil
	}

	x, ok := toFloat(value)
	if !ok {
		return nil, fmt.Errorf("%w: latex_exp expects a number, got %s",
			ErrValue, typeName(value))
	}

	if !(x > 0) || math.IsInf(x, 1) {
		return nil, fmt.Errorf("%w: latex_exp of %s", ErrValue, Str(value))
	}

	prec := 2

	if v, ok := bound["mant_precision"]; ok {
		if prec, err = precision(v); err != nil {
			return nil, err
		}
	}

	return latexExp(x, truthy(bound["ineq"]), prec), nil
}

func latexExp(x float64, ineq bool, prec int) string {
	e := Exponent(x)
	mant := FormatG(x/math.Pow10(e), prec)

	// A mantissa that rounds up to 10 carries into the exponent.
	if m, err := strconv.ParseFloat(mant, 64); err == nil && m >= 10 {
		mant = "1"
		e++
	}

	r := "10$^{" + FormatG(float64(e), 2) + "}$"
	if mant != "1" {
		r = strings.TrimSpace(mant + `$\times$` + r)
	}

	if ineq {
		r = strings.ReplaceAll(r, "$", "")
	}

	return r
}

func record(value any, filter string) (map[string]any, error) {
	rec, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a mapping, got %s",
			ErrValue, filter, typeName(value))
	}

	return rec, nil
}

func field(rec map[string]any, name string) (float64, error) {
	v, ok := rec[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingField, name)
	}

	x, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: field %q is %s, not a number",
			ErrValue, name, typeName(v))
	}

	return x, nil
}

func precision(v any) (int, error) {
	n, ok := toInt(v)
	if !ok || n < 0 {
		return 0, fmt.Errorf("%w: precision %s", ErrArgument, Str(v))
	}

	return n, nil
}
