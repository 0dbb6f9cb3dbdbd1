package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON), WithPretty(false)))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Trace", Trace, "TRACE"},
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn(tt.name+" message", slog.String("key", "value"))

			out := buf.String()
			if !strings.Contains(out, tt.name+" message") {
				t.Errorf("missing message, got: %s", out)
			}

			if !strings.Contains(out, tt.level) {
				t.Errorf("missing level %q, got: %s", tt.level, out)
			}

			if !strings.Contains(out, `"key":"value"`) {
				t.Errorf("missing attribute, got: %s", out)
			}
		})
	}
}

func TestPackage_Config(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithPretty(false)))
	Config(WithLevel(LevelError))

	Warn("suppressed")

	if buf.Len() != 0 {
		t.Errorf("warn logged after Config(WithLevel(error)): %s", buf.String())
	}

	With(slog.String("scope", "test")).Error("kept")

	if !strings.Contains(buf.String(), "scope=test") {
		t.Errorf("With attribute missing: %s", buf.String())
	}
}
