package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/ddpaper/log"
)

func Example_basic() {
	logger := log.Make(os.Stdout)
	logger.Info("definitions written", slog.Int("keys", 42))
}

func Example_configuration() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelDebug),
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("RFC3339Nano"),
		log.WithCaller(true))

	logger.Debug("store loaded", slog.String("dir", "./data"))
}

func Example_withAttributes() {
	logger := log.Make(os.Stdout).With(slog.String("run", "c0ffee"))

	logger.Warn("unable to render", slog.String("key", "grb.fluence"))
}

func Example_withContext() {
	ctx := context.Background()

	logger := log.Make(os.Stdout, log.WithPretty(false))
	logger.InfoContext(ctx, "resolving keys", slog.Int("count", 3))
}
