package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meow-stack/gentest/internal/config"
)

func TestNewFromConfig_NoFile(t *testing.T) {
	cfg := config.Default()

	logger, closer, err := NewFromConfig(cfg, t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if closer != nil {
		t.Error("Expected no closer when no file configured")
	}
	if logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("default level should not enable debug")
	}
}

func TestNewFromConfig_Verbose(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = config.LogLevelError

	logger, _, err := NewFromConfig(cfg, t.TempDir(), true)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if !logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("verbose should enable debug regardless of config")
	}
}

func TestNewFromConfig_WritesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Logging.Level = config.LogLevelDebug
	cfg.Logging.File = filepath.Join("nested", "logs", "gentest.log")

	logger, closer, err := NewFromConfig(cfg, dir, false)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if closer == nil {
		t.Fatal("Expected closer for file log")
	}

	logger.Debug("phase entered", "state", "prepared")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "nested", "logs", "gentest.log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "phase entered") {
		t.Errorf("Log file does not contain expected message: %s", data)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input config.LogLevel
		want  slog.Level
	}{
		{config.LogLevelDebug, slog.LevelDebug},
		{config.LogLevelInfo, slog.LevelInfo},
		{config.LogLevelWarn, slog.LevelWarn},
		{config.LogLevelError, slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Format: config.LogFormatText, Writer: &buf}).Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output = %q", buf.String())
	}

	buf.Reset()
	New(Options{Writer: &buf}).Info("hello")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}
}

func TestOrSilent(t *testing.T) {
	silent := OrSilent(nil)
	if silent == nil {
		t.Fatal("OrSilent(nil) should return a logger")
	}
	if silent.Enabled(t.Context(), slog.LevelWarn) {
		t.Error("silent logger should not be enabled below error level")
	}

	logger := New(Options{})
	if OrSilent(logger) != logger {
		t.Error("OrSilent should return a non-nil logger unchanged")
	}
}

func TestForRun(t *testing.T) {
	var buf bytes.Buffer
	ForRun(New(Options{Writer: &buf}), "run-123").Info("built", "namespace", "gen:test")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if entry["run_id"] != "run-123" {
		t.Errorf("run_id = %v, want run-123", entry["run_id"])
	}
	if entry["namespace"] != "gen:test" {
		t.Errorf("namespace = %v, want gen:test", entry["namespace"])
	}
}
