package scenario

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/meow-stack/gentest/internal/logging"
	"github.com/meow-stack/gentest/pkg/env"
	"github.com/meow-stack/gentest/pkg/harness"
	"github.com/meow-stack/gentest/pkg/prompt"
)

// Runner executes scenario files one at a time. Runs change the process
// working directory, so a Runner must not be used concurrently.
type Runner struct {
	// Timeout bounds each scenario. Zero means no limit.
	Timeout time.Duration

	logger *slog.Logger
}

// NewRunner creates a runner logging to logger.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logging.OrSilent(logger)}
}

// Discover returns the scenario files under each root in sorted order. A
// root that is itself a file is returned as is.
func Discover(roots ...string) ([]string, error) {
	var out []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path == root && !d.IsDir() {
				out = append(out, path)
				return nil
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), FileSuffix) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discover scenarios in %s: %w", root, err)
		}
	}
	sort.Strings(out)
	return out, nil
}

// RunAll runs every scenario file and aggregates the results. With
// failFast it stops after the first scenario that does not pass.
func (r *Runner) RunAll(ctx context.Context, paths []string, failFast bool) *Report {
	report := &Report{}
	for _, p := range paths {
		res := r.Run(ctx, p)
		report.add(res)
		if failFast && res.Status != StatusPassed {
			break
		}
	}
	return report
}

// Run loads and runs one scenario file.
func (r *Runner) Run(ctx context.Context, path string) Result {
	start := time.Now()
	result := Result{Path: path}

	sc, err := Load(path)
	if err != nil {
		result.Status = StatusError
		result.Error = err.Error()
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}
	result.Description = sc.Description

	result.Assertions = r.RunScenario(ctx, sc)
	if HasFailures(result.Assertions) {
		result.Status = StatusFailed
	} else {
		result.Status = StatusPassed
	}
	result.DurationMs = time.Since(start).Milliseconds()

	r.logger.Info("scenario finished",
		"path", path,
		"status", result.Status,
		"duration_ms", result.DurationMs,
	)
	return result
}

// RunScenario runs a parsed scenario and evaluates its expectations. The
// run directory is removed afterwards.
func (r *Runner) RunScenario(ctx context.Context, sc *Scenario) []AssertionResult {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	rc := r.context(sc)
	res, runErr := rc.Run(ctx)
	results := Evaluate(sc, res, runErr)

	if err := rc.Cleanup(); err != nil {
		r.logger.Warn("failed to clean scenario directory", "dir", rc.TargetDirectory(), "error", err)
	}
	return results
}

// context translates a scenario into a configured run context.
func (r *Runner) context(sc *Scenario) *harness.RunContext {
	settings := harness.DefaultSettings()
	if sc.Namespace != "" {
		settings.Namespace = sc.Namespace
	}

	rc := harness.New(sc.generator(), &settings, nil)
	if len(sc.Arguments) > 0 {
		rc.WithArguments(sc.Arguments)
	}
	if len(sc.Options) > 0 {
		rc.WithOptions(sc.Options)
	}
	var promptOpts []prompt.Option
	if sc.Prompt.ThrowOnMissing != nil {
		promptOpts = append(promptOpts, prompt.WithThrowOnMissing(*sc.Prompt.ThrowOnMissing))
	}
	rc.WithAnswers(prompt.Answers(sc.Answers), promptOpts...)

	if len(sc.Generators) > 0 {
		deps := make([]string, len(sc.Generators))
		for i, g := range sc.Generators {
			deps[i] = sc.resolve(g)
		}
		rc.WithGenerators(deps)
	}
	if len(sc.Lookups) > 0 {
		paths := make([]string, len(sc.Lookups))
		for i, p := range sc.Lookups {
			paths[i] = sc.resolve(p)
		}
		rc.WithLookups(env.LookupOptions{Paths: paths})
	}
	if len(sc.Mocked) > 0 {
		rc.WithMockedGenerators(sc.Mocked...)
	}
	if len(sc.Files) > 0 {
		rc.WithFiles(sc.Files)
	}
	if len(sc.LocalConfig) > 0 {
		rc.WithLocalConfig(sc.LocalConfig)
	}
	return rc
}
