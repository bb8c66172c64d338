// Package harness runs scaffolding generators under test.
//
// A RunContext collects configuration through chained builder calls, then
// builds a fixed pipeline: prepare a directory, construct an environment,
// register dependencies and mocks, create the generator, intercept its
// prompts and run it. The outcome is a Result with file and composition
// assertions. The most recent context and result are kept in a process-wide
// registry so a test can reach them without threading values around.
package harness

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meow-stack/gentest/internal/config"
	gterrors "github.com/meow-stack/gentest/internal/errors"
	"github.com/meow-stack/gentest/internal/logging"
	"github.com/meow-stack/gentest/pkg/adapter"
	"github.com/meow-stack/gentest/pkg/env"
	"github.com/meow-stack/gentest/pkg/memfs"
	"github.com/meow-stack/gentest/pkg/prompt"
	"github.com/meow-stack/gentest/pkg/workspace"
)

// dirMode records which directory setter was used.
type dirMode int

const (
	dirUnset dirMode = iota
	dirInDir
	dirInTmp
	dirCD
)

// TargetCallback runs once the target directory is known.
type TargetCallback func(ctx context.Context, dir string) error

// EnvironmentCallback runs once the environment is constructed.
type EnvironmentCallback func(ctx context.Context, e *env.Environment) error

// GeneratorCallback runs once the generator is instantiated.
type GeneratorCallback func(ctx context.Context, g env.Generator) error

type fileSeed struct {
	dir   string
	files map[string]any
}

// RunContext configures and drives one generator run. Builder methods
// return the receiver for chaining. A misconfiguration is recorded when the
// call is made, is readable through Err and fails Build and Run.
type RunContext struct {
	mu sync.Mutex

	id         string
	generator  any
	settings   RunSettings
	envOptions env.Options
	cfg        *config.Config
	logger     *slog.Logger

	state  State
	err    error // configuration faults
	frozen bool  // no more configuration accepted

	dirMode   dirMode
	targetDir string

	args         []string
	options      map[string]any
	answers      prompt.Answers
	promptOpts   []prompt.Option
	dependencies []Dependency
	lookups      []env.LookupOptions
	mocked       map[string]*MockedGenerator
	mockOrder    []string
	files        []fileSeed
	localConfig  map[string]any

	onTargetDir   []TargetCallback
	onEnvironment []EnvironmentCallback
	onGenerator   []GeneratorCallback

	// Populated by the build.
	buildStarted bool
	buildErr     error
	built        bool
	inheritTemp  bool
	ws           *workspace.Manager
	env          *env.Environment
	adapter      *adapter.TestAdapter
	responder    *prompt.Responder
	gen          env.Generator
	namespace    string

	// Execution.
	handle    *RunHandle
	result    *Result
	listeners map[Event][]Listener
	timer     *time.Timer
}

// New creates a run context for generator, which is a namespace, a path to
// a generator on disk, or an env.Factory. A nil settings means
// DefaultSettings. envOptions are passed to the environment and override
// the forced test defaults.
func New(generator any, settings *RunSettings, envOptions env.Options) *RunContext {
	s := DefaultSettings()
	if settings != nil {
		s = *settings
	}
	s = s.withDefaults()

	opts := make(env.Options, len(envOptions))
	for k, v := range envOptions {
		opts[k] = v
	}

	id := uuid.New().String()
	rc := &RunContext{
		id:         id,
		generator:  absGeneratorPath(generator),
		settings:   s,
		envOptions: opts,
		cfg:        currentConfig(),
		logger:     logging.ForRun(currentLogger(), id),
		state:      StateUnbuilt,
		options:    make(map[string]any),
		answers:    make(prompt.Answers),
		mocked:     make(map[string]*MockedGenerator),
		listeners:  make(map[Event][]Listener),
	}
	if s.AutoRun {
		rc.timer = time.AfterFunc(s.AutoRunDelay, rc.Flush)
	}
	return rc
}

// absGeneratorPath pins a relative generator path to the directory the
// test started in, before the run changes directory.
func absGeneratorPath(generator any) any {
	p, ok := generator.(string)
	if !ok || filepath.IsAbs(p) || env.IsNamespace(p) {
		return generator
	}
	if _, err := os.Stat(p); err != nil {
		return generator
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return generator
}

// ID returns the run identifier used in log records.
func (rc *RunContext) ID() string { return rc.id }

// Settings returns a copy of the run settings.
func (rc *RunContext) Settings() RunSettings {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.settings
}

// State returns the current lifecycle state.
func (rc *RunContext) State() State {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.state
}

// Err returns the configuration faults recorded so far.
func (rc *RunContext) Err() error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.err
}

// TargetDirectory returns the run directory once it is known.
func (rc *RunContext) TargetDirectory() string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.ws != nil && rc.ws.Dir() != "" {
		return rc.ws.Dir()
	}
	return rc.targetDir
}

// Env returns the environment once constructed.
func (rc *RunContext) Env() *env.Environment {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.env
}

// Generator returns the generator once instantiated.
func (rc *RunContext) Generator() env.Generator {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.gen
}

// Adapter returns the test adapter once the environment is constructed.
func (rc *RunContext) Adapter() *adapter.TestAdapter {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.adapter
}

// Mock returns the mock registered for namespace, or nil.
func (rc *RunContext) Mock(namespace string) *MockedGenerator {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.mocked[namespace]
}

// fail records a configuration fault. Callers hold rc.mu.
func (rc *RunContext) fail(err error) {
	rc.err = errors.Join(rc.err, err)
	rc.logger.Debug("configuration rejected", "error", err)
}

// configurable reports whether method may still change the configuration,
// recording a fault when it may not. Callers hold rc.mu.
func (rc *RunContext) configurable(method string) bool {
	if rc.frozen {
		rc.err = errors.Join(rc.err, gterrors.ConfigAfterBuild(method))
		rc.logger.Warn("configuration call ignored after build started", "method", method)
		return false
	}
	return true
}

// WithArguments appends positional arguments: a string split on
// whitespace, or a []string.
func (rc *RunContext) WithArguments(args any) *RunContext {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if !rc.configurable("WithArguments") {
		return rc
	}

	switch v := args.(type) {
	case string:
		rc.args = append(rc.args, strings.Fields(v)...)
	case []string:
		rc.args = append(rc.args, v...)
	default:
		rc.fail(gterrors.InvalidArguments(args))
	}
	return rc
}

// WithOptions merges generator options. Each key is also stored in its
// camelCase and kebab-case forms unless that form is itself a key in options.
func (rc *RunContext) WithOptions(options map[string]any) *RunContext {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if !rc.configurable("WithOptions") {
		return rc
	}

	for k, v := range options {
		for _, alias := range []string{camelCase(k), kebabCase(k)} {
			if _, explicit := options[alias]; !explicit {
				rc.options[alias] = v
			}
		}
	}
	for k, v := range options {
		rc.options[k] = v
	}
	return rc
}

// WithAnswers merges prompt answers and responder options. For keys set
// more than once the last call wins.
func (rc *RunContext) WithAnswers(answers prompt.Answers, opts ...prompt.Option) *RunContext {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if !rc.configurable("WithAnswers") {
		return rc
	}

	for k, v := range answers {
		rc.answers[k] = v
	}
	rc.promptOpts = append(rc.promptOpts, opts...)
	return rc
}

// WithGenerators registers dependency generators. deps is a []string of
// generator paths, a []Dependency, or a []any mixing both.
func (rc *RunContext) WithGenerators(deps any) *RunContext {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if !rc.configurable("WithGenerators") {
		return rc
	}

	var add []Dependency
	switch v := deps.(type) {
	case []string:
		for _, p := range v {
			add = append(add, Dependency{Path: p})
		}
	case []Dependency:
		add = append(add, v...)
	case []any:
		for _, item := range v {
			switch d := item.(type) {
			case string:
				add = append(add, Dependency{Path: d})
			case Dependency:
				add = append(add, d)
			case *Dependency:
				add = append(add, *d)
			default:
				rc.fail(gterrors.InvalidDependencies(item))
				return rc
			}
		}
	default:
		rc.fail(gterrors.InvalidDependencies(deps))
		return rc
	}

	for i, d := range add {
		if d.Path == "" && (d.Factory == nil || d.Namespace == "") {
			rc.fail(gterrors.InvalidDependencies(d).WithDetail("reason", "factory and namespace are required"))
			return rc
		}
		if d.Path != "" {
			if p, ok := absGeneratorPath(d.Path).(string); ok {
				add[i].Path = p
			}
		}
	}
	rc.dependencies = append(rc.dependencies, add...)
	return rc
}

// WithLookups searches for generators on disk before the generator under
// test is resolved.
func (rc *RunContext) WithLookups(opts env.LookupOptions) *RunContext {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if !rc.configurable("WithLookups") {
		return rc
	}
	paths := make([]string, len(opts.Paths))
	for i, p := range opts.Paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		paths[i] = p
	}
	opts.Paths = paths
	rc.lookups = append(rc.lookups, opts)
	return rc
}

// WithMockedGenerators registers an instrumented stub for each namespace.
func (rc *RunContext) WithMockedGenerators(namespaces ...string) *RunContext {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if !rc.configurable("WithMockedGenerators") {
		return rc
	}

	for _, ns := range namespaces {
		if _, ok := rc.mocked[ns]; ok {
			continue
		}
		rc.mocked[ns] = NewMockedGenerator(ns)
		rc.mockOrder = append(rc.mockOrder, ns)
	}
	return rc
}

// WithFiles seeds files relative to the target directory. String values
// are written verbatim; other values are encoded as JSON and merged into
// any existing content.
func (rc *RunContext) WithFiles(files map[string]any) *RunContext {
	return rc.withFiles("WithFiles", "", files)
}

// WithFilesIn seeds files relative to dir, which is itself relative to the
// target directory unless absolute.
func (rc *RunContext) WithFilesIn(dir string, files map[string]any) *RunContext {
	return rc.withFiles("WithFilesIn", dir, files)
}

func (rc *RunContext) withFiles(method, dir string, files map[string]any) *RunContext {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if !rc.configurable(method) {
		return rc
	}

	copied := make(map[string]any, len(files))
	for k, v := range files {
		copied[k] = v
	}
	rc.files = append(rc.files, fileSeed{dir: dir, files: copied})
	return rc
}

// WithLocalConfig seeds the generator's config store. cfg must encode to a
// JSON object.
func (rc *RunContext) WithLocalConfig(cfg any) *RunContext {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if !rc.configurable("WithLocalConfig") {
		return rc
	}

	obj, err := toJSONObject(cfg)
	if err != nil {
		rc.fail(gterrors.InvalidLocalConfig(cfg).WithCause(err))
		return rc
	}
	if rc.localConfig == nil {
		rc.localConfig = obj
	} else {
		rc.localConfig = memfs.DeepMerge(rc.localConfig, obj)
	}
	return rc
}

// toJSONObject converts v to a generic JSON object.
func toJSONObject(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("null is not an object")
	}
	return obj, nil
}

// OnTargetDirectory adds a callback run once the directory is ready.
func (rc *RunContext) OnTargetDirectory(cb TargetCallback) *RunContext {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.configurable("OnTargetDirectory") && cb != nil {
		rc.onTargetDir = append(rc.onTargetDir, cb)
	}
	return rc
}

// OnEnvironment adds a callback run once the environment is constructed.
func (rc *RunContext) OnEnvironment(cb EnvironmentCallback) *RunContext {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.configurable("OnEnvironment") && cb != nil {
		rc.onEnvironment = append(rc.onEnvironment, cb)
	}
	return rc
}

// OnGenerator adds a callback run once the generator is instantiated.
func (rc *RunContext) OnGenerator(cb GeneratorCallback) *RunContext {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.configurable("OnGenerator") && cb != nil {
		rc.onGenerator = append(rc.onGenerator, cb)
	}
	return rc
}

// setDirectory records the directory mode. Callers hold rc.mu.
func (rc *RunContext) setDirectory(method string, mode dirMode, dir string) bool {
	if !rc.configurable(method) {
		return false
	}
	if rc.dirMode != dirUnset {
		rc.fail(gterrors.DirectoryAlreadySet(rc.targetDir))
		return false
	}
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			rc.fail(gterrors.DirectoryNotFound(dir, err))
			return false
		}
		dir = abs
	}
	rc.dirMode = mode
	rc.targetDir = dir
	return true
}

// InDir runs in dir, which is emptied first. Callbacks run once the
// directory is ready, with the other target-directory callbacks.
func (rc *RunContext) InDir(dir string, cbs ...TargetCallback) *RunContext {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.setDirectory("InDir", dirInDir, dir) {
		rc.appendTargetCallbacks(cbs)
	}
	return rc
}

// InTmpDir runs in a fresh isolated temp directory.
func (rc *RunContext) InTmpDir(cbs ...TargetCallback) *RunContext {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.setDirectory("InTmpDir", dirInTmp, "") {
		rc.appendTargetCallbacks(cbs)
	}
	return rc
}

// CD runs in an existing directory without clearing it.
func (rc *RunContext) CD(dir string) *RunContext {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.setDirectory("CD", dirCD, dir)
	return rc
}

func (rc *RunContext) appendTargetCallbacks(cbs []TargetCallback) {
	for _, cb := range cbs {
		if cb != nil {
			rc.onTargetDir = append(rc.onTargetDir, cb)
		}
	}
}

// transition moves to target, logging the change. Invalid moves are
// ignored and reported false.
func (rc *RunContext) transition(target State) bool {
	rc.mu.Lock()
	from := rc.state
	ok := from.CanTransitionTo(target)
	if ok {
		rc.state = target
	}
	rc.mu.Unlock()

	if ok {
		rc.logger.Debug("run state changed", "from", from.String(), "state", target.String())
	}
	return ok
}
