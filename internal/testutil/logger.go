package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// TestLogger captures structured logs for assertion in tests.
type TestLogger struct {
	mu      sync.RWMutex
	entries []LogEntry
	buffer  *bytes.Buffer
	Logger  *slog.Logger
}

// LogEntry represents a captured log entry.
type LogEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// NewTestLogger creates a logger that captures all log entries for testing.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()

	tl := &TestLogger{buffer: &bytes.Buffer{}}
	tl.Logger = slog.New(&captureHandler{
		testLogger: tl,
		handler:    slog.NewJSONHandler(tl.buffer, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	return tl
}

// captureHandler wraps a slog handler to capture entries.
type captureHandler struct {
	testLogger *TestLogger
	handler    slog.Handler
	attrs      []slog.Attr
	group      string
}

func (h *captureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *captureHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := LogEntry{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   make(map[string]any),
	}

	add := func(a slog.Attr) {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		entry.Attrs[key] = a.Value.Any()
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		add(a)
		return true
	})

	h.testLogger.mu.Lock()
	h.testLogger.entries = append(h.testLogger.entries, entry)
	err := h.handler.Handle(ctx, r)
	h.testLogger.mu.Unlock()

	return err
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	newAttrs = append(newAttrs, h.attrs...)
	newAttrs = append(newAttrs, attrs...)
	return &captureHandler{
		testLogger: h.testLogger,
		handler:    h.handler.WithAttrs(attrs),
		attrs:      newAttrs,
		group:      h.group,
	}
}

func (h *captureHandler) WithGroup(name string) slog.Handler {
	newGroup := name
	if h.group != "" {
		newGroup = h.group + "." + name
	}
	return &captureHandler{
		testLogger: h.testLogger,
		handler:    h.handler.WithGroup(name),
		attrs:      h.attrs,
		group:      newGroup,
	}
}

// Entries returns a copy of all captured log entries.
func (l *TestLogger) Entries() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]LogEntry, len(l.entries))
	copy(result, l.entries)
	return result
}

// EntriesOfLevel returns entries at a specific level.
func (l *TestLogger) EntriesOfLevel(level slog.Level) []LogEntry {
	var result []LogEntry
	for _, e := range l.Entries() {
		if e.Level == level {
			result = append(result, e)
		}
	}
	return result
}

// EntriesWithAttrValue returns entries that carry key=value.
func (l *TestLogger) EntriesWithAttrValue(key string, value any) []LogEntry {
	var result []LogEntry
	for _, e := range l.Entries() {
		if v, ok := e.Attrs[key]; ok && v == value {
			result = append(result, e)
		}
	}
	return result
}

// Count returns the total number of log entries.
func (l *TestLogger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear removes all captured entries.
func (l *TestLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.buffer.Reset()
}

// Output returns the raw JSON output.
func (l *TestLogger) Output() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buffer.String()
}

// AssertContains asserts that at least one log entry contains the message.
func (l *TestLogger) AssertContains(t testing.TB, msg string) {
	t.Helper()

	for _, e := range l.Entries() {
		if strings.Contains(e.Message, msg) {
			return
		}
	}
	t.Errorf("Expected log to contain message %q, but it wasn't found", msg)
}

// AssertLevel asserts that there are exactly count entries at the given level.
func (l *TestLogger) AssertLevel(t testing.TB, level slog.Level, count int) {
	t.Helper()

	if actual := len(l.EntriesOfLevel(level)); actual != count {
		t.Errorf("Expected %d entries at level %s, got %d", count, level.String(), actual)
	}
}

// AssertAttrValue asserts that at least one entry has the attribute with the given value.
func (l *TestLogger) AssertAttrValue(t testing.TB, key string, value any) {
	t.Helper()

	if len(l.EntriesWithAttrValue(key, value)) == 0 {
		t.Errorf("Expected at least one log entry with %s=%v", key, value)
	}
}

// AssertNoErrors asserts that there are no ERROR level entries.
func (l *TestLogger) AssertNoErrors(t testing.TB) {
	t.Helper()

	errs := l.EntriesOfLevel(slog.LevelError)
	if len(errs) > 0 {
		messages := make([]string, len(errs))
		for i, e := range errs {
			messages[i] = e.Message
		}
		t.Errorf("Expected no errors, got %d: %v", len(errs), messages)
	}
}
