package harness

import (
	"context"
	"sync"
)

// Event names a run lifecycle notification.
type Event string

const (
	EventReady Event = "ready" // Build finished, generator about to run
	EventEnd   Event = "end"   // Run completed without error
	EventError Event = "error" // Build or run failed
)

// Listener receives an event. res is nil for ready and for failures that
// happened before the generator ran.
type Listener func(res *Result, err error)

var (
	unhandledMu sync.RWMutex
	unhandled   = func(err error) { panic(err) }
)

// SetUnhandledErrorHandler replaces the function receiving event-mode
// failures that have no error listener, and returns the previous one. The
// default panics so the failure cannot go unnoticed.
func SetUnhandledErrorHandler(fn func(error)) func(error) {
	unhandledMu.Lock()
	defer unhandledMu.Unlock()
	prev := unhandled
	if fn == nil {
		fn = func(err error) { panic(err) }
	}
	unhandled = fn
	return prev
}

func unhandledError(err error) {
	unhandledMu.RLock()
	fn := unhandled
	unhandledMu.RUnlock()
	fn(err)
}

// On registers a listener. Listeners may be added until the run settles.
func (rc *RunContext) On(event Event, fn Listener) *RunContext {
	if fn == nil {
		return rc
	}
	rc.mu.Lock()
	rc.listeners[event] = append(rc.listeners[event], fn)
	rc.mu.Unlock()
	return rc
}

// emit calls the listeners for event in registration order and reports
// whether there were any.
func (rc *RunContext) emit(event Event, res *Result, err error) bool {
	rc.mu.Lock()
	fns := append([]Listener(nil), rc.listeners[event]...)
	rc.mu.Unlock()

	for _, fn := range fns {
		fn(res, err)
	}
	return len(fns) > 0
}

// Flush starts the run in the background. It is what the auto-run timer
// calls; after it, configuration calls are rejected. Failures go to error
// listeners, or to the unhandled error handler when there are none.
func (rc *RunContext) Flush() {
	h, first := rc.claim()
	if first {
		go rc.execute(context.Background(), h, true)
	}
}

// stopTimer cancels a pending auto-run. Callers hold rc.mu.
func (rc *RunContext) stopTimer() {
	if rc.timer != nil {
		rc.timer.Stop()
		rc.timer = nil
	}
}
