package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// LogLevel specifies the logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat specifies the log output format.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// RunConfig holds run context defaults.
type RunConfig struct {
	// Namespace is used when a generator factory is registered as a stub.
	Namespace string `toml:"namespace"`

	// TmpRoot is the parent of isolated temp directories. Empty means os.TempDir().
	TmpRoot string `toml:"tmp_root"`

	// AutoRunDelay is how long a deferred run context waits before building.
	AutoRunDelay time.Duration `toml:"auto_run_delay"`

	// AutoCleanup removes the previous run's temp directory when a new run starts.
	AutoCleanup bool `toml:"auto_cleanup"`
}

// EnvironmentConfig holds the options forced onto every test environment.
// Test runs must never prompt for package installation or conflict resolution.
type EnvironmentConfig struct {
	Force       bool `toml:"force"`
	SkipInstall bool `toml:"skip_install"`
	SkipCache   bool `toml:"skip_cache"`
}

// PromptConfig holds prompt responder defaults.
type PromptConfig struct {
	ThrowOnMissing bool `toml:"throw_on_missing"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  LogLevel  `toml:"level"`
	Format LogFormat `toml:"format"`
	File   string    `toml:"file"`
}

// Config is the main configuration struct for gentest.
type Config struct {
	Version     string            `toml:"version"`
	Run         RunConfig         `toml:"run"`
	Environment EnvironmentConfig `toml:"environment"`
	Prompt      PromptConfig      `toml:"prompt"`
	Logging     LoggingConfig     `toml:"logging"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Version: "1",
		Run: RunConfig{
			Namespace:    "gen:test",
			TmpRoot:      "",
			AutoRunDelay: 10 * time.Millisecond,
			AutoCleanup:  true,
		},
		Environment: EnvironmentConfig{
			Force:       true,
			SkipInstall: true,
			SkipCache:   true,
		},
		Prompt: PromptConfig{
			ThrowOnMissing: false,
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatJSON,
			File:   "",
		},
	}
}

// Load loads configuration from file, merging with defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if no config file
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from the standard locations in a directory.
// Applies in order: defaults -> ~/.gentest/config.toml -> .gentest/config.toml
// Later configs override earlier ones (project-level takes precedence).
func LoadFromDir(dir string) (*Config, error) {
	cfg := Default()

	home, err := os.UserHomeDir()
	if err == nil {
		globalConfig := filepath.Join(home, ".gentest", "config.toml")
		if data, err := os.ReadFile(globalConfig); err == nil {
			if _, err := toml.Decode(string(data), cfg); err != nil {
				return nil, fmt.Errorf("parsing global config: %w", err)
			}
		}
	}

	projectConfig := filepath.Join(dir, ".gentest", "config.toml")
	if data, err := os.ReadFile(projectConfig); err == nil {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing project config: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("config version is required")
	}
	if c.Run.Namespace == "" {
		return fmt.Errorf("run.namespace is required")
	}
	if c.Run.AutoRunDelay < 0 {
		return fmt.Errorf("run.auto_run_delay must not be negative")
	}
	switch c.Logging.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, "":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case LogFormatJSON, LogFormatText, "":
	default:
		return fmt.Errorf("invalid logging.format %q", c.Logging.Format)
	}
	return nil
}

// TmpRoot returns the directory under which isolated temp directories are created.
func (c *Config) TmpRoot() string {
	if c.Run.TmpRoot == "" {
		return os.TempDir()
	}
	return c.Run.TmpRoot
}

// LogFile returns the absolute log file path, or empty if file logging is off.
func (c *Config) LogFile(baseDir string) string {
	if c.Logging.File == "" {
		return ""
	}
	if filepath.IsAbs(c.Logging.File) {
		return c.Logging.File
	}
	return filepath.Join(baseDir, c.Logging.File)
}
