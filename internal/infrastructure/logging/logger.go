package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lumen-home/lumen-core/internal/infrastructure/config"
)

// Logger wraps slog.Logger so every call site gets structured entries
// with the service and version fields already stamped on.
//
// Thread Safety: safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds a Logger from the logging section of config.yaml.
func New(cfg config.LoggingConfig, version string) *Logger {
	return &Logger{Logger: slog.New(newHandler(cfg, version, writerFor(cfg.Output)))}
}

// newHandler assembles the slog handler: output format, level filter,
// and the default service/version attributes. Split from New so tests
// can hand it a buffer instead of a process stream.
func newHandler(cfg config.LoggingConfig, version string, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	return h.WithAttrs([]slog.Attr{
		slog.String("service", "lumen"),
		slog.String("version", version),
	})
}

// writerFor maps a config output name onto a process stream. Anything
// unrecognised falls back to stdout so a config typo never silences the
// hub.
func writerFor(output string) io.Writer {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

// parseLevel maps a config level name onto a slog.Level. Unrecognised
// names default to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a child logger carrying extra default attributes, used
// to tag one component's log stream:
//
//	bridgeLog := logger.With("component", "mqttlight")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default is the bootstrap logger used before config is loaded: JSON to
// stdout at info level.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "dev")
}
