package harness

import (
	"context"
	"fmt"
	"sync"

	gterrors "github.com/meow-stack/gentest/internal/errors"
)

// RunHandle is a started run. Its methods block until the run settles.
type RunHandle struct {
	done   chan struct{}
	once   sync.Once
	result *Result
	err    error
}

func newRunHandle() *RunHandle {
	return &RunHandle{done: make(chan struct{})}
}

func (h *RunHandle) settle(res *Result, err error) {
	h.once.Do(func() {
		h.result = res
		h.err = err
		close(h.done)
	})
}

// Done is closed once the run settles.
func (h *RunHandle) Done() <-chan struct{} { return h.done }

// Wait blocks until the run settles and returns its outcome. The Result is
// also returned when the generator failed after the pipeline was built.
func (h *RunHandle) Wait() (*Result, error) {
	<-h.done
	return h.result, h.err
}

// Then calls fn with the result if the run succeeded.
func (h *RunHandle) Then(fn func(*Result)) *RunHandle {
	if res, err := h.Wait(); err == nil && fn != nil {
		fn(res)
	}
	return h
}

// Catch calls fn with the error if the run failed.
func (h *RunHandle) Catch(fn func(error)) *RunHandle {
	if _, err := h.Wait(); err != nil && fn != nil {
		fn(err)
	}
	return h
}

// Finally calls fn once the run settled either way.
func (h *RunHandle) Finally(fn func()) *RunHandle {
	h.Wait()
	if fn != nil {
		fn()
	}
	return h
}

// claim returns the run handle, creating it on the first call. first is
// true for the caller that must execute the run.
func (rc *RunContext) claim() (h *RunHandle, first bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.handle != nil {
		return rc.handle, false
	}
	rc.handle = newRunHandle()
	rc.frozen = true
	rc.stopTimer()
	return rc.handle, true
}

// Run builds the context if needed, runs the generator on the calling
// goroutine and returns the result. A run already started elsewhere is
// waited on instead.
func (rc *RunContext) Run(ctx context.Context) (*Result, error) {
	h, first := rc.claim()
	if first {
		rc.execute(ctx, h, false)
	}
	return h.Wait()
}

// Start runs the generator in the background and returns its handle.
// Later calls return the same handle.
func (rc *RunContext) Start(ctx context.Context) *RunHandle {
	h, first := rc.claim()
	if first {
		go rc.execute(ctx, h, false)
	}
	return h
}

// Then starts the run if needed and calls fn with the result on success.
func (rc *RunContext) Then(fn func(*Result)) *RunHandle {
	return rc.Start(context.Background()).Then(fn)
}

// Catch starts the run if needed and calls fn with the error on failure.
func (rc *RunContext) Catch(fn func(error)) *RunHandle {
	return rc.Start(context.Background()).Catch(fn)
}

// Finally starts the run if needed and calls fn once it settles.
func (rc *RunContext) Finally(fn func()) *RunHandle {
	return rc.Start(context.Background()).Finally(fn)
}

// Result waits for the run and returns its result. It fails with
// ErrNotReady when no run was started.
func (rc *RunContext) Result() (*Result, error) {
	rc.mu.Lock()
	h := rc.handle
	rc.mu.Unlock()
	if h == nil {
		return nil, gterrors.NotReady()
	}
	return h.Wait()
}

// execute runs the pipeline and the generator, then settles h. Event
// listeners are notified; in event mode a failure nobody listens for goes
// to the unhandled error handler.
func (rc *RunContext) execute(ctx context.Context, h *RunHandle, eventMode bool) {
	var (
		res *Result
		err error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				if perr, ok := r.(error); ok {
					err = perr
				} else {
					err = fmt.Errorf("run panicked: %v", r)
				}
				rc.transition(StateErrored)
			}
		}()
		res, err = rc.run(ctx)
	}()

	rc.mu.Lock()
	rc.result = res
	rc.mu.Unlock()
	h.settle(res, err)

	if err != nil {
		handled := rc.emit(EventError, res, err)
		if eventMode && !handled {
			unhandledError(err)
		}
		return
	}
	rc.emit(EventEnd, res, nil)
}

func (rc *RunContext) run(ctx context.Context) (*Result, error) {
	rc.mu.Lock()
	started, built, buildErr := rc.buildStarted, rc.built, rc.buildErr
	rc.mu.Unlock()

	if !started {
		if err := rc.Build(ctx); err != nil {
			return nil, err
		}
	} else if !built {
		if buildErr == nil {
			buildErr = gterrors.NotReady()
		}
		return nil, buildErr
	}

	rc.transition(StateRunning)
	rc.logger.Debug("running generator", "namespace", rc.namespace)

	runErr := rc.env.Run(ctx, rc.gen)
	rc.adapter.Restore()

	if runErr != nil {
		rc.transition(StateErrored)
	} else {
		rc.transition(StateCompleted)
	}

	res := newResult(rc)
	registry.publishResult(res)
	return res, runErr
}

// Cleanup returns to the directory the run started from and removes the
// run's temp directory. Unlike Result.Cleanup it also works for runs that
// failed before producing a result.
func (rc *RunContext) Cleanup() error {
	rc.mu.Lock()
	ws := rc.ws
	rc.mu.Unlock()
	return cleanupWorkspace(ws)
}
