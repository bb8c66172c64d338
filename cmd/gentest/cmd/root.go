package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/meow-stack/gentest/internal/config"
	"github.com/meow-stack/gentest/internal/logging"
	"github.com/meow-stack/gentest/pkg/harness"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"

	// Global flags
	verbose    bool
	workDir    string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "gentest",
	Short: "Scenario runner for scaffolding generators",
	Long: `gentest runs scaffolding generators in isolated directories and checks
what they produce.

A scenario file (*.scenario.yaml) names a generator, the answers its prompts
receive, files to seed and the files, contents and compositions to expect.
Generators are directories holding a generator.toml manifest and templates.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "C", "", "working directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: .gentest/config.toml)")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("gentest {{.Version}}\n")
}

// getWorkDir returns the effective working directory.
func getWorkDir() (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	return os.Getwd()
}

// setup loads configuration, builds the logger and hands both to the
// harness. The returned closer releases the log file, if any.
func setup() (*config.Config, *slog.Logger, io.Closer, error) {
	dir, err := getWorkDir()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("getting working directory: %w", err)
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err == nil {
			err = cfg.Validate()
		}
	} else {
		cfg, err = harness.LoadConfig(dir)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger, c, err := logging.NewFromConfig(cfg, dir, verbose)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	closer := io.Closer(nopCloser{})
	if c != nil {
		closer = c
	}

	harness.UseConfig(cfg)
	harness.UseLogger(logger)
	return cfg, logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
