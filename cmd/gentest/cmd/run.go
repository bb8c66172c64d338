package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/meow-stack/gentest/pkg/harness"
	"github.com/meow-stack/gentest/pkg/scenario"
)

var (
	runJSON     bool
	runFailFast bool
	runTimeout  time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run [scenario or directory...]",
	Short: "Run generator scenarios",
	Long: `Run scenario files and report which expectations held.

Directories are searched recursively for *.scenario.yaml files. With no
arguments the working directory is searched. Each scenario runs in its own
temp directory, which is removed afterwards.

Examples:
  gentest run                          # Every scenario under the current directory
  gentest run scenarios/web.scenario.yaml
  gentest run scenarios --fail-fast
  gentest run --json > report.json`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output as JSON")
	runCmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "stop after the first scenario that does not pass")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "per-scenario timeout (0 for none)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	_, logger, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	roots := args
	if len(roots) == 0 {
		dir, err := getWorkDir()
		if err != nil {
			return err
		}
		roots = []string{dir}
	}
	paths, err := scenario.Discover(roots...)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no scenario files found")
	}

	stopHook := harness.InstallExitHook()
	defer stopHook()
	defer func() {
		if err := harness.DefaultDisposables().Dispose(); err != nil {
			logger.Warn("cleanup failed", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runner := scenario.NewRunner(logger)
	runner.Timeout = runTimeout
	report := runner.RunAll(ctx, paths, runFailFast)

	out := cmd.OutOrStdout()
	if runJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(out, report)
	}

	if !report.OK() {
		return fmt.Errorf("%d of %d scenarios did not pass", report.Summary.Failed+report.Summary.Errors, report.Summary.Total)
	}
	return nil
}

func printReport(w io.Writer, report *scenario.Report) {
	cwd, _ := os.Getwd()
	for _, res := range report.Scenarios {
		name := res.Path
		if rel, err := filepath.Rel(cwd, res.Path); err == nil {
			name = rel
		}

		switch res.Status {
		case scenario.StatusPassed:
			fmt.Fprintf(w, "%s %s %s\n", passedStyle.Render(glyphPassed), name, dimStyle.Render(fmt.Sprintf("(%dms)", res.DurationMs)))
		case scenario.StatusFailed:
			fmt.Fprintf(w, "%s %s\n", failedStyle.Render(glyphFailed), name)
			for _, a := range res.Assertions {
				if a.Passed {
					continue
				}
				label := a.Type
				if a.Key != "" {
					label += " " + a.Key
				}
				fmt.Fprintln(w, detailStyle.Render(label+": "+a.Message))
			}
		default:
			fmt.Fprintf(w, "%s %s\n", failedStyle.Render(glyphError), name)
			fmt.Fprintln(w, detailStyle.Render(res.Error))
		}
	}

	s := report.Summary
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%d scenarios: %d passed, %d failed, %d errors", s.Total, s.Passed, s.Failed, s.Errors)))
}
