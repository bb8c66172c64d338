package harness

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"testing"
)

// Disposables is a list of cleanups drained in reverse order.
type Disposables struct {
	mu    sync.Mutex
	items []disposable
}

type disposable struct {
	name string
	fn   func() error
}

// NewDisposables creates an empty list.
func NewDisposables() *Disposables {
	return &Disposables{}
}

var defaultDisposables = NewDisposables()

// DefaultDisposables returns the process-wide list the registry uses.
func DefaultDisposables() *Disposables { return defaultDisposables }

// Add registers a cleanup.
func (d *Disposables) Add(name string, fn func() error) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	d.items = append(d.items, disposable{name: name, fn: fn})
	d.mu.Unlock()
}

// Len returns the number of pending cleanups.
func (d *Disposables) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

// Dispose runs every cleanup in reverse order and empties the list. All
// cleanups run; their errors are joined.
func (d *Disposables) Dispose() error {
	d.mu.Lock()
	items := d.items
	d.items = nil
	d.mu.Unlock()

	var errs []error
	for i := len(items) - 1; i >= 0; i-- {
		if err := items[i].fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", items[i].name, err))
		}
	}
	return errors.Join(errs...)
}

// Teardown drains the default disposables when t finishes.
func Teardown(t testing.TB) {
	t.Helper()
	t.Cleanup(func() {
		if err := defaultDisposables.Dispose(); err != nil {
			t.Logf("cleanup warning: %v", err)
		}
	})
}

// RunTests runs m and drains the default disposables afterwards. Use it
// from TestMain:
//
//	func TestMain(m *testing.M) { os.Exit(harness.RunTests(m)) }
func RunTests(m interface{ Run() int }) int {
	code := m.Run()
	if err := defaultDisposables.Dispose(); err != nil {
		fmt.Fprintf(os.Stderr, "gentest: cleanup warning: %v\n", err)
	}
	return code
}

var (
	exitHookOnce sync.Once
	exitHookStop func()
)

// InstallExitHook drains the default disposables when the process gets
// SIGINT or SIGTERM, then exits. It is a safety net for runs interrupted
// before their teardown. Calling it again returns the same stop function,
// which uninstalls the hook.
func InstallExitHook() (stop func()) {
	exitHookOnce.Do(func() {
		sigChan := make(chan os.Signal, 1)
		done := make(chan struct{})
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			select {
			case <-sigChan:
				if err := defaultDisposables.Dispose(); err != nil {
					fmt.Fprintf(os.Stderr, "gentest: cleanup warning: %v\n", err)
				}
				os.Exit(1)
			case <-done:
			}
		}()

		var stopOnce sync.Once
		exitHookStop = func() {
			stopOnce.Do(func() {
				signal.Stop(sigChan)
				close(done)
			})
		}
	})
	return exitHookStop
}
