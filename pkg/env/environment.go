// Package env resolves generator namespaces and runs generators.
//
// An Environment owns a namespace registry, a shared staging store and the
// adapter generators prompt and report through. Run drives a generator and
// everything it composes through a single priority queue.
package env

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	gterrors "github.com/meow-stack/gentest/internal/errors"
	"github.com/meow-stack/gentest/internal/logging"
	"github.com/meow-stack/gentest/pkg/memfs"
	"github.com/meow-stack/gentest/pkg/prompt"
)

// Well-known environment option keys.
const (
	OptionCwd         = "cwd"
	OptionForce       = "force"
	OptionSkipInstall = "skip-install"
	OptionSkipCache   = "skip-cache"
)

// Options are environment-wide settings.
type Options map[string]any

// Bool reports whether key is set to true.
func (o Options) Bool(key string) bool {
	b, _ := o[key].(bool)
	return b
}

// String returns key as a string, or "".
func (o Options) String(key string) string {
	s, _ := o[key].(string)
	return s
}

// Meta describes a registered generator.
type Meta struct {
	Namespace    string
	ResolvedPath string
	Factory      Factory
}

// PathLoader turns a generator location on disk into a factory.
type PathLoader interface {
	Load(path string) (Factory, error)
}

// PathLoaderFunc adapts a function to PathLoader.
type PathLoaderFunc func(path string) (Factory, error)

// Load calls f.
func (f PathLoaderFunc) Load(path string) (Factory, error) { return f(path) }

// EnvOption configures an Environment.
type EnvOption func(*Environment)

// WithPathLoader sets the loader used by Register and Lookup.
func WithPathLoader(l PathLoader) EnvOption {
	return func(e *Environment) {
		e.loader = l
	}
}

// WithStore shares an existing staging store.
func WithStore(s *memfs.Store) EnvOption {
	return func(e *Environment) {
		if s != nil {
			e.store = s
		}
	}
}

// Environment resolves and runs generators.
type Environment struct {
	mu         sync.RWMutex
	options    Options
	cwd        string
	adapter    Adapter
	store      *memfs.Store
	loader     PathLoader
	generators map[string]*Meta

	// run is the queue of the run in progress, nil between runs.
	run *runQueue
	// pending holds generators composed while no run was in progress.
	pending []Generator

	logger *slog.Logger
}

// New creates an environment. The cwd option sets the destination root,
// defaulting to the process working directory. A nil adapter prompts on
// the terminal and discards status output.
func New(opts Options, adapter Adapter, logger *slog.Logger, envOpts ...EnvOption) (*Environment, error) {
	options := make(Options, len(opts))
	for k, v := range opts {
		options[k] = v
	}

	cwd := options.String(OptionCwd)
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		cwd = wd
	}
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, err
	}

	if adapter == nil {
		adapter = terminalAdapter{prompt.DefaultTerminal()}
	}

	e := &Environment{
		options:    options,
		cwd:        cwd,
		adapter:    adapter,
		store:      memfs.New(),
		generators: make(map[string]*Meta),
		logger:     logging.OrSilent(logger),
	}
	for _, opt := range envOpts {
		opt(e)
	}
	return e, nil
}

// Options returns a copy of the environment options.
func (e *Environment) Options() Options {
	out := make(Options, len(e.options))
	for k, v := range e.options {
		out[k] = v
	}
	return out
}

// Cwd returns the destination root for created generators.
func (e *Environment) Cwd() string { return e.cwd }

// Store returns the shared staging store.
func (e *Environment) Store() *memfs.Store { return e.store }

// Adapter returns the UI adapter.
func (e *Environment) Adapter() Adapter { return e.adapter }

// Logger returns the environment logger.
func (e *Environment) Logger() *slog.Logger { return e.logger }

// Register loads the generator at path and registers it under namespace,
// or under the namespace derived from the path. It returns the namespace.
func (e *Environment) Register(path string, namespace ...string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(e.cwd, path)
	}
	if e.loader == nil {
		return "", gterrors.NoLoader(abs)
	}

	factory, err := e.loader.Load(abs)
	if err != nil {
		if gterrors.Code(err) != "" {
			return "", err
		}
		return "", gterrors.InvalidGenerator(abs, err)
	}

	ns := NamespaceFromPath(abs)
	if len(namespace) > 0 && namespace[0] != "" {
		ns = namespace[0]
	}
	e.add(&Meta{Namespace: ns, ResolvedPath: abs, Factory: factory})
	return ns, nil
}

// RegisterStub registers a factory under namespace. resolvedPath is an
// optional hint exposed through Base.ResolvedPath.
func (e *Environment) RegisterStub(factory Factory, namespace, resolvedPath string) error {
	if factory == nil {
		return gterrors.InvalidGenerator(resolvedPath, os.ErrInvalid).WithDetail("namespace", namespace)
	}
	if namespace == "" {
		return gterrors.InvalidGenerator(resolvedPath, os.ErrInvalid).WithDetail("reason", "empty namespace")
	}
	e.add(&Meta{Namespace: namespace, ResolvedPath: resolvedPath, Factory: factory})
	return nil
}

func (e *Environment) add(meta *Meta) {
	e.mu.Lock()
	e.generators[meta.Namespace] = meta
	e.mu.Unlock()
	e.logger.Debug("registered generator", "namespace", meta.Namespace, "path", meta.ResolvedPath)
}

// IsRegistered reports whether namespace is registered.
func (e *Environment) IsRegistered(namespace string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.generators[namespace]
	return ok
}

// IsNamespace reports whether s is registered or shaped like a namespace.
func (e *Environment) IsNamespace(s string) bool {
	return e.IsRegistered(s) || IsNamespace(s)
}

// Get returns the registration for namespace.
func (e *Environment) Get(namespace string) (*Meta, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.generators[namespace]
	return m, ok
}

// Namespaces returns the registered namespaces in sorted order.
func (e *Environment) Namespaces() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.generators))
	for ns := range e.generators {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Create instantiates the generator registered under namespace.
func (e *Environment) Create(namespace string, args []string, options map[string]any) (Generator, error) {
	meta, ok := e.Get(namespace)
	if !ok {
		return nil, gterrors.NotRegistered(namespace)
	}

	g, err := meta.Factory(newBase(e, meta, args, options))
	if err != nil {
		return nil, err
	}
	if g == nil || g.Core() == nil {
		return nil, gterrors.InvalidGenerator(meta.ResolvedPath, os.ErrInvalid).WithDetail("namespace", namespace)
	}
	return g, nil
}
