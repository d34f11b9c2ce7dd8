package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/lumen-home/lumen-core/internal/infrastructure/config"
)

// newBufferLogger builds a Logger over an in-memory buffer so tests can
// read back what was emitted.
func newBufferLogger(cfg config.LoggingConfig, version string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Logger{Logger: slog.New(newHandler(cfg, version, &buf))}, &buf
}

// decodeEntry parses a single JSON log line.
func decodeEntry(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("decoding log entry: %v (line %q)", err, data)
	}
	return entry
}

func TestJSONEntryCarriesDefaultFields(t *testing.T) {
	logger, buf := newBufferLogger(config.LoggingConfig{Level: "info", Format: "json"}, "1.2.3")

	logger.Info("light registered", "id", "tuya-abc123")

	entry := decodeEntry(t, buf.Bytes())
	if entry["service"] != "lumen" {
		t.Errorf("service = %v, want lumen", entry["service"])
	}
	if entry["version"] != "1.2.3" {
		t.Errorf("version = %v, want 1.2.3", entry["version"])
	}
	if entry["msg"] != "light registered" {
		t.Errorf("msg = %v, want 'light registered'", entry["msg"])
	}
	if entry["id"] != "tuya-abc123" {
		t.Errorf("id = %v, want tuya-abc123", entry["id"])
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(config.LoggingConfig{Level: "warn", Format: "json"}, "test")

	logger.Info("below threshold")
	logger.Warn("at threshold")

	out := buf.String()
	if strings.Contains(out, "below threshold") {
		t.Error("info entry emitted at warn level")
	}
	if !strings.Contains(out, "at threshold") {
		t.Error("warn entry missing at warn level")
	}
}

func TestTextFormat(t *testing.T) {
	logger, buf := newBufferLogger(config.LoggingConfig{Level: "debug", Format: "text"}, "test")

	logger.Debug("dispatching", "light", "esp-1")

	out := buf.String()
	if strings.HasPrefix(out, "{") {
		t.Fatalf("text format produced JSON: %s", out)
	}
	if !strings.Contains(out, "light=esp-1") {
		t.Errorf("output missing key=value attribute: %s", out)
	}
}

func TestWithTagsChildEntries(t *testing.T) {
	logger, buf := newBufferLogger(config.LoggingConfig{Level: "info", Format: "json"}, "test")

	child := logger.With("component", "mqttlight")
	child.Info("bridge started")

	entry := decodeEntry(t, buf.Bytes())
	if entry["component"] != "mqttlight" {
		t.Errorf("component = %v, want mqttlight", entry["component"])
	}

	// The parent stays untagged
	buf.Reset()
	logger.Info("plain entry")
	if strings.Contains(buf.String(), "mqttlight") {
		t.Error("parent logger inherited the child's attribute")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWriterFor(t *testing.T) {
	if writerFor("stderr") != os.Stderr {
		t.Error(`writerFor("stderr") should be stderr`)
	}
	if writerFor("stdout") != os.Stdout {
		t.Error(`writerFor("stdout") should be stdout`)
	}
	if writerFor("syslog") != os.Stdout {
		t.Error("unrecognised output should fall back to stdout")
	}
}

func TestDefault(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}
}
