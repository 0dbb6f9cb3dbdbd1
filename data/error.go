package data

import (
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrReadSource   = NewError("failed to read data source")
	ErrDecodeSource = NewError("failed to decode data source")
	ErrModule       = NewError("invalid module")
	ErrAssumption   = NewError("invalid assumption")
	ErrPath         = NewError("invalid data path")
	ErrCache        = NewError("data cache")
)

// Error is an error with attributes for structured logging.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same message, so that
// errors derived from a sentinel with [Error.Wrap] or [Error.With] match it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.err == nil && t.msg == e.msg
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e with additional attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	a := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	a = append(a, e.attrs...)
	a = append(a, attrs...)

	return &Error{msg: e.msg, err: e.err, attrs: a}
}
