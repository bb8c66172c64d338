package harness

import (
	"sync"

	gterrors "github.com/meow-stack/gentest/internal/errors"
)

// lastRun holds the most recent run context and result.
type lastRun struct {
	mu     sync.Mutex
	ctx    *RunContext
	result *Result
	hooked bool
}

var registry = &lastRun{}

// publishContext makes rc current and returns the context it replaced.
// The first publish after a drain registers the registry's cleanup with
// the default disposables.
func (l *lastRun) publishContext(rc *RunContext) *RunContext {
	l.mu.Lock()
	prev := l.ctx
	l.ctx = rc
	hook := !l.hooked
	l.hooked = true
	l.mu.Unlock()

	if hook {
		defaultDisposables.Add("last run directory", l.dispose)
	}
	return prev
}

func (l *lastRun) publishResult(res *Result) {
	l.mu.Lock()
	l.result = res
	l.mu.Unlock()
}

// dispose removes the current context's temp directory.
func (l *lastRun) dispose() error {
	l.mu.Lock()
	rc := l.ctx
	l.ctx = nil
	l.hooked = false
	l.mu.Unlock()

	if rc == nil {
		return nil
	}
	return rc.cleanupTempDir()
}

// CurrentResult returns the result of the most recent run. It fails with
// ErrNoResult before any run finished.
func CurrentResult() (*Result, error) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if registry.result == nil {
		return nil, gterrors.NoResult()
	}
	return registry.result, nil
}

// MustCurrentResult is CurrentResult panicking on error.
func MustCurrentResult() *Result {
	res, err := CurrentResult()
	if err != nil {
		panic(err)
	}
	return res
}

// CurrentContext returns the most recently built run context, or nil.
func CurrentContext() *RunContext {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return registry.ctx
}
