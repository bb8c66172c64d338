package testutil

import (
	"fmt"
	"strings"
	"sync"
)

// FakeT records assertion failures instead of failing the enclosing test.
// It satisfies the Helper/Errorf interface the result inspector reports to.
type FakeT struct {
	mu       sync.Mutex
	failures []string
}

// Helper is a no-op.
func (f *FakeT) Helper() {}

// Errorf records a failure.
func (f *FakeT) Errorf(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, fmt.Sprintf(format, args...))
}

// Failed reports whether any failure was recorded.
func (f *FakeT) Failed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.failures) > 0
}

// Failures returns the recorded failure messages.
func (f *FakeT) Failures() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.failures))
	copy(out, f.failures)
	return out
}

// Joined returns all failure messages joined by newlines.
func (f *FakeT) Joined() string {
	return strings.Join(f.Failures(), "\n")
}

// Reset clears recorded failures.
func (f *FakeT) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = nil
}
