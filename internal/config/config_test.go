package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Version != "1" {
		t.Errorf("Version = %s, want 1", cfg.Version)
	}
	if cfg.Run.Namespace != "gen:test" {
		t.Errorf("Run.Namespace = %s, want gen:test", cfg.Run.Namespace)
	}
	if cfg.Run.AutoRunDelay != 10*time.Millisecond {
		t.Errorf("Run.AutoRunDelay = %v, want 10ms", cfg.Run.AutoRunDelay)
	}
	if !cfg.Run.AutoCleanup {
		t.Error("Run.AutoCleanup should default to true")
	}
	if !cfg.Environment.Force || !cfg.Environment.SkipInstall || !cfg.Environment.SkipCache {
		t.Errorf("Environment defaults should all be forced: %+v", cfg.Environment)
	}
	if cfg.Prompt.ThrowOnMissing {
		t.Error("Prompt.ThrowOnMissing should default to false")
	}
	if cfg.Logging.Level != LogLevelInfo {
		t.Errorf("Logging.Level = %s, want info", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	content := `
version = "2"

[run]
namespace = "custom:app"
tmp_root = "/var/tmp/gentest"
auto_run_delay = "50ms"
auto_cleanup = false

[environment]
skip_install = false

[prompt]
throw_on_missing = true

[logging]
level = "debug"
format = "text"
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Version != "2" {
		t.Errorf("Version = %s, want 2", cfg.Version)
	}
	if cfg.Run.Namespace != "custom:app" {
		t.Errorf("Run.Namespace = %s, want custom:app", cfg.Run.Namespace)
	}
	if cfg.Run.AutoRunDelay != 50*time.Millisecond {
		t.Errorf("Run.AutoRunDelay = %v, want 50ms", cfg.Run.AutoRunDelay)
	}
	if cfg.Run.AutoCleanup {
		t.Error("Run.AutoCleanup should be false")
	}
	if cfg.TmpRoot() != "/var/tmp/gentest" {
		t.Errorf("TmpRoot() = %s, want /var/tmp/gentest", cfg.TmpRoot())
	}
	if cfg.Environment.SkipInstall {
		t.Error("Environment.SkipInstall should be false")
	}
	if !cfg.Environment.Force {
		t.Error("Environment.Force should keep its default")
	}
	if !cfg.Prompt.ThrowOnMissing {
		t.Error("Prompt.ThrowOnMissing should be true")
	}
	if cfg.Logging.Format != LogFormatText {
		t.Errorf("Logging.Format = %s, want text", cfg.Logging.Format)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/config.toml")
	if err != nil {
		t.Fatalf("Load should not fail for non-existent file: %v", err)
	}
	if cfg.Version != "1" {
		t.Errorf("Should return defaults, got version = %s", cfg.Version)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	if err := os.WriteFile(configPath, []byte(`invalid = [toml content`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load should fail for invalid TOML")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	content := "[run]\nauto_run_delay = \"soon\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load should fail for an unparseable duration")
	}
}

func TestLoadFromDir_ProjectOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(dir, ".gentest"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "[run]\nnamespace = \"project:gen\"\n"
	if err := os.WriteFile(filepath.Join(dir, ".gentest", "config.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}
	if cfg.Run.Namespace != "project:gen" {
		t.Errorf("Run.Namespace = %s, want project:gen", cfg.Run.Namespace)
	}
	if !cfg.Environment.Force {
		t.Error("unset values should keep defaults")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing version", func(c *Config) { c.Version = "" }, true},
		{"missing namespace", func(c *Config) { c.Run.Namespace = "" }, true},
		{"negative delay", func(c *Config) { c.Run.AutoRunDelay = -time.Second }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTmpRootDefault(t *testing.T) {
	cfg := Default()
	if cfg.TmpRoot() != os.TempDir() {
		t.Errorf("TmpRoot() = %s, want %s", cfg.TmpRoot(), os.TempDir())
	}
}

func TestLogFile(t *testing.T) {
	cfg := Default()
	if got := cfg.LogFile("/base"); got != "" {
		t.Errorf("LogFile() = %q, want empty", got)
	}
	cfg.Logging.File = "logs/gentest.log"
	if got := cfg.LogFile("/base"); got != "/base/logs/gentest.log" {
		t.Errorf("LogFile() = %q, want /base/logs/gentest.log", got)
	}
	cfg.Logging.File = "/abs/gentest.log"
	if got := cfg.LogFile("/base"); got != "/abs/gentest.log" {
		t.Errorf("LogFile() = %q, want /abs/gentest.log", got)
	}
}
