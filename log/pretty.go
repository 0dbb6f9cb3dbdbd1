package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by prettyHandler. Styles are bound to a
// renderer for the handler's output, so color is dropped automatically when
// the output is not a terminal.
type palette struct {
	key, str, num, yes, no, dur, when, null lipgloss.Style

	level map[slog.Level]lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		yes:  fg("2"),
		no:   fg("1"),
		dur:  fg("5"),
		when: fg("4"),
		null: fg("8"),
		level: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): fg("8"),
			slog.LevelDebug:        fg("4"),
			slog.LevelInfo:         fg("2").Bold(true),
			slog.LevelWarn:         fg("3").Bold(true),
			slog.LevelError:        fg("1").Bold(true),
		},
	}
}

func (p palette) levelStyle(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.level[slog.LevelError]
	case l >= slog.LevelWarn:
		return p.level[slog.LevelWarn]
	case l >= slog.LevelInfo:
		return p.level[slog.LevelInfo]
	case l >= slog.LevelDebug:
		return p.level[slog.LevelDebug]
	default:
		return p.level[slog.Level(LevelTrace)]
	}
}

// prettyHandler renders records for humans. In line mode each record is a
// single "key=value" line; in block mode (pretty JSON) each attribute is on
// its own indented line.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	style  palette
	block  bool
	attrs  []slog.Attr
	groups []string
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	block bool,
) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		mu:    &sync.Mutex{},
		w:     w,
		style: newPalette(w),
		block: block,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = append(fields, h.replace(slog.Time(slog.TimeKey, r.Time)))
	}

	fields = append(fields, h.replace(slog.Any(slog.LevelKey, r.Level)))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = append(fields,
				slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, h.qualify(a))

		return true
	})

	if h.block {
		buf.WriteString("{\n")
	}

	first := true

	for _, a := range fields {
		if a.Equal(slog.Attr{}) {
			continue
		}

		h.writeAttr(&buf, a, r.Level, first)
		first = false
	}

	if h.block {
		buf.WriteString("\n}")
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)

	for _, a := range attrs {
		c.attrs = append(c.attrs, h.qualify(a))
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &c
}

// qualify prefixes an attribute key with the handler's open groups.
func (h *prettyHandler) qualify(a slog.Attr) slog.Attr {
	if len(h.groups) > 0 {
		a.Key = strings.Join(h.groups, ".") + "." + a.Key
	}

	return a
}

func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

func (h *prettyHandler) writeAttr(
	buf *bytes.Buffer,
	a slog.Attr,
	level slog.Level,
	first bool,
) {
	switch {
	case h.block && !first:
		buf.WriteString(",\n  ")
	case h.block:
		buf.WriteString("  ")
	case !first:
		buf.WriteByte(' ')
	}

	buf.WriteString(h.style.key.Render(a.Key))

	if h.block {
		buf.WriteString(": ")
	} else {
		buf.WriteByte('=')
	}

	if a.Key == slog.LevelKey {
		buf.WriteString(h.style.levelStyle(level).Render(a.Value.String()))

		return
	}

	h.writeValue(buf, a.Value.Resolve())
}

func (h *prettyHandler) writeValue(buf *bytes.Buffer, v slog.Value) {
	s := h.style

	switch v.Kind() {
	case slog.KindString:
		buf.WriteString(s.str.Render(v.String()))

	case slog.KindInt64:
		buf.WriteString(s.num.Render(strconv.FormatInt(v.Int64(), 10)))

	case slog.KindUint64:
		buf.WriteString(s.num.Render(strconv.FormatUint(v.Uint64(), 10)))

	case slog.KindFloat64:
		buf.WriteString(s.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64)))

	case slog.KindBool:
		if v.Bool() {
			buf.WriteString(s.yes.Render("true"))
		} else {
			buf.WriteString(s.no.Render("false"))
		}

	case slog.KindDuration:
		buf.WriteString(s.dur.Render(v.Duration().String()))

	case slog.KindTime:
		buf.WriteString(s.when.Render(v.Time().Format(time.RFC3339)))

	case slog.KindGroup:
		attrs := v.Group()
		buf.WriteByte('{')

		for i, a := range attrs {
			if i > 0 {
				buf.WriteByte(' ')
			}

			buf.WriteString(s.key.Render(a.Key))
			buf.WriteByte('=')
			h.writeValue(buf, a.Value.Resolve())
		}

		buf.WriteByte('}')

	default:
		if v.Any() == nil {
			buf.WriteString(s.null.Render("null"))

			return
		}

		buf.WriteString(s.str.Render(fmt.Sprint(v.Any())))
	}
}
