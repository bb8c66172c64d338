package adapter

import (
	"fmt"
	"sync"
)

// LogCall is one recorded call on the output log.
type LogCall struct {
	Method string
	Args   []any
}

// String renders the call for diagnostics.
func (c LogCall) String() string {
	return fmt.Sprintf("%s%v", c.Method, c.Args)
}

// Log is a spy implementation of the generator output surface. It records
// every call and never writes to a terminal.
type Log struct {
	mu    sync.Mutex
	calls []LogCall
}

func (l *Log) record(method string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, LogCall{Method: method, Args: args})
}

// Write records a raw write.
func (l *Log) Write(args ...any) { l.record("Write", args...) }

// Writeln records a raw line.
func (l *Log) Writeln(args ...any) { l.record("Writeln", args...) }

// Ok records a success status line.
func (l *Log) Ok(format string, args ...any) { l.record("Ok", fmt.Sprintf(format, args...)) }

// Error records an error status line.
func (l *Log) Error(format string, args ...any) { l.record("Error", fmt.Sprintf(format, args...)) }

// Info records an informational status line.
func (l *Log) Info(format string, args ...any) { l.record("Info", fmt.Sprintf(format, args...)) }

// Skip records a skipped file.
func (l *Log) Skip(path string) { l.record("Skip", path) }

// Force records a force-overwritten file.
func (l *Log) Force(path string) { l.record("Force", path) }

// Create records a created file.
func (l *Log) Create(path string) { l.record("Create", path) }

// Invoke records a composed generator.
func (l *Log) Invoke(namespace string) { l.record("Invoke", namespace) }

// Conflict records a conflicting file.
func (l *Log) Conflict(path string) { l.record("Conflict", path) }

// Identical records a file whose content did not change.
func (l *Log) Identical(path string) { l.record("Identical", path) }

// Table records tabular output.
func (l *Log) Table(rows [][]string) { l.record("Table", rows) }

// Calls returns a copy of all recorded calls.
func (l *Log) Calls() []LogCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogCall, len(l.calls))
	copy(out, l.calls)
	return out
}

// CallsOf returns recorded calls of a single method.
func (l *Log) CallsOf(method string) []LogCall {
	var out []LogCall
	for _, c := range l.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears recorded calls.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}
