package harness

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"

	gterrors "github.com/meow-stack/gentest/internal/errors"
	"github.com/meow-stack/gentest/pkg/adapter"
	"github.com/meow-stack/gentest/pkg/env"
	"github.com/meow-stack/gentest/pkg/memfs"
	"github.com/meow-stack/gentest/pkg/prompt"
	"github.com/meow-stack/gentest/pkg/tmplgen"
	"github.com/meow-stack/gentest/pkg/workspace"
)

// Build runs the pipeline up to the point where the generator is ready to
// execute. It fails with ErrAlreadyBuilt when called twice. Configuration
// faults recorded by builder calls are returned before anything runs.
func (rc *RunContext) Build(ctx context.Context) error {
	rc.mu.Lock()
	if rc.buildStarted {
		rc.mu.Unlock()
		return gterrors.AlreadyBuilt()
	}
	rc.buildStarted = true
	rc.frozen = true
	rc.stopTimer()
	cfgErr := rc.err
	rc.mu.Unlock()

	err := cfgErr
	if err == nil {
		err = rc.build(ctx)
	}

	rc.mu.Lock()
	rc.buildErr = err
	rc.built = err == nil
	rc.mu.Unlock()

	if err != nil {
		rc.transition(StateErrored)
		rc.logger.Debug("build failed", "error", err)
		return err
	}
	rc.emit(EventReady, nil, nil)
	return nil
}

func (rc *RunContext) build(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rc.publish()

	dir, err := rc.prepareDirectory()
	if err != nil {
		return err
	}
	for _, cb := range rc.targetCallbacks() {
		if err := cb(ctx, dir); err != nil {
			return err
		}
	}
	rc.transition(StatePrepared)

	e, err := rc.newEnvironment(ctx, dir)
	if err != nil {
		return err
	}
	for _, cb := range rc.environmentCallbacks() {
		if err := cb(ctx, e); err != nil {
			return err
		}
	}

	ns, err := rc.resolveGenerator(e)
	if err != nil {
		return err
	}
	gen, err := e.Create(ns, rc.args, rc.options)
	if err != nil {
		return err
	}
	if rc.localConfig != nil {
		if err := gen.Core().Config().Defaults(rc.localConfig); err != nil {
			return fmt.Errorf("applying local config: %w", err)
		}
	}
	rc.mu.Lock()
	rc.gen = gen
	rc.namespace = ns
	rc.mu.Unlock()

	rc.installResponder()
	for _, cb := range rc.generatorCallbacks() {
		if err := cb(ctx, gen); err != nil {
			return err
		}
	}

	rc.transition(StateEnvironmentReady)
	return nil
}

// publish makes rc the registry's current context. The previous context's
// temp directory is removed unless rc continues in it, in which case rc
// takes over its cleanup.
func (rc *RunContext) publish() {
	prev := registry.publishContext(rc)
	if prev == nil || prev == rc {
		return
	}
	if rc.settings.Cwd != "" && prev.ownsTempDir(rc.settings.Cwd) {
		prev.ws.Release()
		rc.inheritTemp = true
		rc.logger.Debug("took over temp directory", "dir", rc.settings.Cwd, "from", prev.id)
		return
	}
	if err := prev.cleanupTempDir(); err != nil {
		rc.logger.Warn("failed to clean previous run directory", "run", prev.id, "error", err)
	}
}

// ownsTempDir reports whether rc created dir as its temp directory.
func (rc *RunContext) ownsTempDir(dir string) bool {
	rc.mu.Lock()
	ws := rc.ws
	rc.mu.Unlock()
	if ws == nil || !ws.IsTemp() {
		return false
	}
	return samePath(ws.Dir(), dir)
}

// cleanupTempDir removes rc's temp directory when auto cleanup is on.
func (rc *RunContext) cleanupTempDir() error {
	rc.mu.Lock()
	ws := rc.ws
	auto := rc.settings.AutoCleanup
	rc.mu.Unlock()
	if ws == nil || !auto || !ws.IsTemp() {
		return nil
	}
	return ws.Cleanup(false)
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if ra, err := filepath.EvalSymlinks(a); err == nil {
		a = ra
	}
	if rb, err := filepath.EvalSymlinks(b); err == nil {
		b = rb
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func (rc *RunContext) prepareDirectory() (string, error) {
	ws := workspace.New(rc.cfg.TmpRoot(), rc.logger)
	rc.mu.Lock()
	rc.ws = ws
	mode, target := rc.dirMode, rc.targetDir
	rc.mu.Unlock()

	var err error
	switch {
	case mode == dirInDir:
		err = ws.PrepareDirectory(target)
	case mode == dirInTmp:
		_, err = ws.CreateIsolatedTempDirectory()
	case mode == dirCD:
		err = ws.EnterDirectory(target)
	case rc.settings.Cwd != "":
		err = ws.Adopt(rc.settings.Cwd, rc.settings.OldCwd, rc.inheritTemp)
	case rc.settings.TmpDir:
		_, err = ws.CreateIsolatedTempDirectory()
	default:
		err = gterrors.MissingDirectory()
	}
	if err != nil {
		return "", err
	}

	rc.logger.Debug("target directory ready", "dir", ws.Dir(), "temp", ws.IsTemp())
	return ws.Dir(), nil
}

// newEnvironment constructs the environment and registers everything the
// generator under test may compose.
func (rc *RunContext) newEnvironment(ctx context.Context, dir string) (*env.Environment, error) {
	opts := env.Options{
		env.OptionForce:       rc.cfg.Environment.Force,
		env.OptionSkipInstall: rc.cfg.Environment.SkipInstall,
		env.OptionSkipCache:   rc.cfg.Environment.SkipCache,
	}
	for k, v := range rc.envOptions {
		opts[k] = v
	}
	if rc.settings.ForwardCwd {
		opts[env.OptionCwd] = dir
	}

	store := rc.settings.Store
	if store == nil {
		store = memfs.New()
	}
	ta := adapter.New()
	e, err := env.New(opts, ta, rc.logger,
		env.WithPathLoader(tmplgen.NewLoader(rc.logger)),
		env.WithStore(store),
	)
	if err != nil {
		return nil, err
	}

	rc.mu.Lock()
	rc.env = e
	rc.adapter = ta
	rc.mu.Unlock()

	if err := rc.seedFiles(store, dir); err != nil {
		return nil, err
	}
	for _, l := range rc.lookups {
		if _, err := e.Lookup(ctx, l); err != nil {
			return nil, err
		}
	}
	for _, d := range rc.dependencies {
		if d.Path != "" {
			if _, err := e.Register(d.Path, d.Namespace); err != nil {
				return nil, err
			}
			continue
		}
		if err := e.RegisterStub(d.Factory, d.Namespace, d.ResolvedPath); err != nil {
			return nil, err
		}
	}
	for _, ns := range rc.mockOrder {
		if err := e.RegisterStub(rc.mocked[ns].Factory(), ns, ""); err != nil {
			return nil, err
		}
	}

	rc.logger.Debug("environment ready", "generators", len(e.Namespaces()))
	return e, nil
}

func (rc *RunContext) seedFiles(store *memfs.Store, dir string) error {
	for _, seed := range rc.files {
		root := dir
		if seed.dir != "" {
			if filepath.IsAbs(seed.dir) {
				root = seed.dir
			} else {
				root = filepath.Join(dir, seed.dir)
			}
		}
		for name, content := range seed.files {
			path := filepath.Join(root, name)
			if err := seedFile(store, path, content); err != nil {
				return fmt.Errorf("seeding %s: %w", name, err)
			}
		}
	}
	return nil
}

func seedFile(store *memfs.Store, path string, content any) error {
	switch v := content.(type) {
	case string:
		return store.Write(path, v)
	case []byte:
		return store.Write(path, string(v))
	}

	kind := reflect.Indirect(reflect.ValueOf(content)).Kind()
	if kind == reflect.Map || kind == reflect.Struct {
		return store.ExtendJSON(path, content)
	}
	return store.WriteJSON(path, content)
}

// resolveGenerator returns the namespace of the generator under test,
// registering it first when it is a path or a factory.
func (rc *RunContext) resolveGenerator(e *env.Environment) (string, error) {
	switch g := rc.generator.(type) {
	case string:
		if e.IsNamespace(g) {
			return g, nil
		}
		return e.Register(g)
	case env.Factory:
		return rc.registerFactory(e, g)
	case func(*env.Base) (env.Generator, error):
		return rc.registerFactory(e, g)
	}
	return "", gterrors.UnknownGenerator(rc.generator)
}

func (rc *RunContext) registerFactory(e *env.Environment, f env.Factory) (string, error) {
	ns := rc.settings.Namespace
	if err := e.RegisterStub(f, ns, rc.settings.ResolvedPath); err != nil {
		return "", err
	}
	return ns, nil
}

func (rc *RunContext) installResponder() {
	opts := []prompt.Option{
		prompt.WithThrowOnMissing(rc.cfg.Prompt.ThrowOnMissing),
		prompt.WithLogger(rc.logger),
	}
	opts = append(opts, rc.promptOpts...)
	r := prompt.NewResponder(rc.answers, opts...)

	rc.mu.Lock()
	rc.responder = r
	ta := rc.adapter
	rc.mu.Unlock()
	ta.Install(r)
}

func (rc *RunContext) targetCallbacks() []TargetCallback {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]TargetCallback(nil), rc.onTargetDir...)
}

func (rc *RunContext) environmentCallbacks() []EnvironmentCallback {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]EnvironmentCallback(nil), rc.onEnvironment...)
}

func (rc *RunContext) generatorCallbacks() []GeneratorCallback {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]GeneratorCallback(nil), rc.onGenerator...)
}
