package harness

import (
	"log/slog"
	"sync"

	"github.com/meow-stack/gentest/internal/config"
	"github.com/meow-stack/gentest/internal/logging"
)

// Config is the harness configuration.
type Config = config.Config

var (
	activeMu     sync.RWMutex
	activeConfig = config.Default()
	activeLogger = logging.Discard()
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config { return config.Default() }

// LoadConfig loads configuration from the standard locations for dir.
func LoadConfig(dir string) (*Config, error) {
	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UseConfig makes cfg the configuration read by new run contexts.
// A nil cfg restores the defaults.
func UseConfig(cfg *Config) {
	if cfg == nil {
		cfg = config.Default()
	}
	activeMu.Lock()
	activeConfig = cfg
	activeMu.Unlock()
}

// UseLogger sets the logger new run contexts log to. A nil logger silences
// the harness.
func UseLogger(logger *slog.Logger) {
	activeMu.Lock()
	activeLogger = logging.OrSilent(logger)
	activeMu.Unlock()
}

func currentConfig() *Config {
	activeMu.RLock()
	defer activeMu.RUnlock()
	return activeConfig
}

func currentLogger() *slog.Logger {
	activeMu.RLock()
	defer activeMu.RUnlock()
	return activeLogger
}
