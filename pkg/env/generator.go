package env

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/meow-stack/gentest/pkg/memfs"
	"github.com/meow-stack/gentest/pkg/prompt"
)

// Priority orders tasks in the run queue.
type Priority int

const (
	PriorityInitializing Priority = iota
	PriorityPrompting
	PriorityConfiguring
	PriorityDefault
	PriorityWriting
	PriorityTransform
	PriorityConflicts
	PriorityInstall
	PriorityEnd

	numPriorities
)

var priorityNames = [numPriorities]string{
	"initializing",
	"prompting",
	"configuring",
	"default",
	"writing",
	"transform",
	"conflicts",
	"install",
	"end",
}

// String returns the priority name.
func (p Priority) String() string {
	if p < 0 || p >= numPriorities {
		return fmt.Sprintf("priority(%d)", int(p))
	}
	return priorityNames[p]
}

// ParsePriority returns the priority with the given name.
func ParsePriority(name string) (Priority, error) {
	for i, n := range priorityNames {
		if n == name {
			return Priority(i), nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", name)
}

// Task is one unit of generator work.
type Task struct {
	Priority Priority
	Name     string
	Run      func(ctx context.Context) error
}

// Generator is a scaffolding generator driven by an Environment.
type Generator interface {
	// Core returns the shared generator state.
	Core() *Base
	// Tasks returns the generator's work in declaration order.
	Tasks() []Task
}

// Factory builds a generator around the Base prepared by the environment.
type Factory func(b *Base) (Generator, error)

// Base is the state every generator shares. Generators embed it or keep a
// pointer to it and return it from Core.
type Base struct {
	env             *Environment
	namespace       string
	resolvedPath    string
	args            []string
	options         map[string]any
	destinationRoot string
	config          *ConfigStore
	logger          *slog.Logger
}

func newBase(e *Environment, meta *Meta, args []string, options map[string]any) *Base {
	opts := make(map[string]any, len(options))
	for k, v := range options {
		opts[k] = v
	}
	argsCopy := append([]string(nil), args...)

	b := &Base{
		env:             e,
		namespace:       meta.Namespace,
		resolvedPath:    meta.ResolvedPath,
		args:            argsCopy,
		options:         opts,
		destinationRoot: e.Cwd(),
		logger:          e.logger.With("generator", meta.Namespace),
	}
	b.config = newConfigStore(e.store, filepath.Join(b.destinationRoot, ConfigFile), RootName(meta.Namespace))
	return b
}

// Core returns b, so a generator embedding *Base satisfies Generator.Core.
func (b *Base) Core() *Base { return b }

// Namespace returns the namespace the generator was created under.
func (b *Base) Namespace() string { return b.namespace }

// ResolvedPath returns where the generator was loaded from, if known.
func (b *Base) ResolvedPath() string { return b.resolvedPath }

// Args returns a copy of the positional arguments.
func (b *Base) Args() []string { return append([]string(nil), b.args...) }

// Options returns the generator options. The map is shared.
func (b *Base) Options() map[string]any { return b.options }

// Option returns a single option value.
func (b *Base) Option(key string) any { return b.options[key] }

// Env returns the environment that created the generator.
func (b *Base) Env() *Environment { return b.env }

// Logger returns the generator's logger.
func (b *Base) Logger() *slog.Logger { return b.logger }

// Log returns the adapter output surface.
func (b *Base) Log() Output { return b.env.adapter.Output() }

// Fs returns the shared staging store.
func (b *Base) Fs() *memfs.Store { return b.env.store }

// Config returns the generator's persisted configuration.
func (b *Base) Config() *ConfigStore { return b.config }

// Prompt asks questions through the environment adapter.
func (b *Base) Prompt(ctx context.Context, questions []prompt.Question) (prompt.Answers, error) {
	return b.env.adapter.Prompt(ctx, questions)
}

// ComposeWith creates the generator registered under namespace and queues
// its tasks into the current run.
func (b *Base) ComposeWith(namespace string, args []string, options map[string]any) (Generator, error) {
	return b.env.compose(namespace, args, options)
}

// DestinationRoot returns the directory output is written under.
func (b *Base) DestinationRoot() string { return b.destinationRoot }

// DestinationPath joins parts onto the destination root. An absolute first
// part is returned unchanged.
func (b *Base) DestinationPath(parts ...string) string {
	p := filepath.Join(parts...)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(b.destinationRoot, p)
}

// Write stages contents at a destination-relative path.
func (b *Base) Write(path, contents string) error {
	return b.env.store.Write(b.DestinationPath(path), contents)
}

// WriteJSON stages v as JSON at a destination-relative path.
func (b *Base) WriteJSON(path string, v any) error {
	return b.env.store.WriteJSON(b.DestinationPath(path), v)
}

// ExtendJSON deep-merges v into the JSON at a destination-relative path.
func (b *Base) ExtendJSON(path string, v any) error {
	return b.env.store.ExtendJSON(b.DestinationPath(path), v)
}

// Read returns the contents at a destination-relative path.
func (b *Base) Read(path string) (string, error) {
	return b.env.store.Read(b.DestinationPath(path))
}

// Exists reports whether a destination-relative path exists.
func (b *Base) Exists(path string) bool {
	return b.env.store.Exists(b.DestinationPath(path))
}

// Delete stages the removal of a destination-relative path.
func (b *Base) Delete(path string) error {
	return b.env.store.Delete(b.DestinationPath(path))
}

// RootName returns the config root key for a namespace: "generator-" plus
// the package part of the namespace.
func RootName(namespace string) string {
	pkg, _, _ := strings.Cut(namespace, ":")
	if strings.HasPrefix(pkg, "generator-") {
		return pkg
	}
	return "generator-" + pkg
}
