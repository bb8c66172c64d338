package harness

import (
	"time"

	"github.com/meow-stack/gentest/pkg/env"
	"github.com/meow-stack/gentest/pkg/memfs"
)

// RunSettings configure a RunContext. They are copied at construction and
// read-only once the build starts.
type RunSettings struct {
	// TmpDir runs the generator in an isolated temp directory when no
	// directory is set explicitly.
	TmpDir bool

	// Cwd enters an existing directory instead of creating one.
	Cwd string

	// OldCwd is the directory restored on cleanup. Set when chaining runs.
	OldCwd string

	// Namespace registers a generator factory. Empty means the configured
	// default, "gen:test" out of the box.
	Namespace string

	// ResolvedPath is reported by the generator's ResolvedPath.
	ResolvedPath string

	// ForwardCwd passes the target directory to the environment as its cwd.
	ForwardCwd bool

	// AutoCleanup removes this run's temp directory when the next run starts.
	AutoCleanup bool

	// AutoRun builds and runs after AutoRunDelay without an explicit call.
	AutoRun      bool
	AutoRunDelay time.Duration

	// Store is shared with a previous run when chaining.
	Store *memfs.Store
}

// DefaultSettings returns settings from the active configuration.
func DefaultSettings() RunSettings {
	cfg := currentConfig()
	return RunSettings{
		TmpDir:       true,
		Namespace:    cfg.Run.Namespace,
		ForwardCwd:   true,
		AutoCleanup:  cfg.Run.AutoCleanup,
		AutoRunDelay: cfg.Run.AutoRunDelay,
	}
}

func (s RunSettings) withDefaults() RunSettings {
	if s.Namespace == "" {
		s.Namespace = currentConfig().Run.Namespace
	}
	return s
}

// overlay returns s with the non-zero fields of o applied.
func (s RunSettings) overlay(o RunSettings) RunSettings {
	if o.TmpDir {
		s.TmpDir = true
	}
	if o.Cwd != "" {
		s.Cwd = o.Cwd
	}
	if o.OldCwd != "" {
		s.OldCwd = o.OldCwd
	}
	if o.Namespace != "" {
		s.Namespace = o.Namespace
	}
	if o.ResolvedPath != "" {
		s.ResolvedPath = o.ResolvedPath
	}
	if o.ForwardCwd {
		s.ForwardCwd = true
	}
	if o.AutoCleanup {
		s.AutoCleanup = true
	}
	if o.AutoRunDelay != 0 {
		s.AutoRunDelay = o.AutoRunDelay
	}
	if o.Store != nil {
		s.Store = o.Store
	}
	return s
}

// Dependency is a generator registered alongside the one under test.
// Either Factory and Namespace are set, or Path names a generator on disk.
type Dependency struct {
	Factory      env.Factory
	Namespace    string
	ResolvedPath string
	Path         string
}
