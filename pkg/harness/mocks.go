package harness

import (
	"context"
	"sync"

	"github.com/meow-stack/gentest/pkg/env"
)

// MockedGenerator is an instrumented stub standing in for a dependency.
// It counts how many times it was instantiated and how often each of its
// tasks ran.
type MockedGenerator struct {
	mu        sync.Mutex
	namespace string
	created   int
	runs      map[string]int
	last      *env.Base
}

// NewMockedGenerator creates a mock for namespace.
func NewMockedGenerator(namespace string) *MockedGenerator {
	return &MockedGenerator{namespace: namespace, runs: make(map[string]int)}
}

// Namespace returns the mocked namespace.
func (m *MockedGenerator) Namespace() string { return m.namespace }

// Factory returns the factory registered for the mock.
func (m *MockedGenerator) Factory() env.Factory {
	return func(b *env.Base) (env.Generator, error) {
		m.mu.Lock()
		m.created++
		m.last = b
		m.mu.Unlock()
		return &mockInstance{Base: b, mock: m}, nil
	}
}

// CallCount returns how many times the mock was instantiated.
func (m *MockedGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created
}

// Called reports whether the mock was instantiated at least once.
func (m *MockedGenerator) Called() bool { return m.CallCount() > 0 }

// TaskCount returns how many times the named task ran across instances.
func (m *MockedGenerator) TaskCount(task string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[task]
}

// LastArgs returns the arguments of the latest instance.
func (m *MockedGenerator) LastArgs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return nil
	}
	return m.last.Args()
}

// LastOptions returns the options of the latest instance.
func (m *MockedGenerator) LastOptions() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return nil
	}
	return m.last.Options()
}

func (m *MockedGenerator) record(task string) {
	m.mu.Lock()
	m.runs[task]++
	m.mu.Unlock()
}

// mockInstance does nothing but record that its tasks ran.
type mockInstance struct {
	*env.Base
	mock *MockedGenerator
}

func (g *mockInstance) Tasks() []env.Task {
	return []env.Task{
		{Priority: env.PriorityInitializing, Name: "initializing", Run: g.track("initializing")},
		{Priority: env.PriorityWriting, Name: "writing", Run: g.track("writing")},
		{Priority: env.PriorityEnd, Name: "end", Run: g.track("end")},
	}
}

func (g *mockInstance) track(task string) func(context.Context) error {
	return func(context.Context) error {
		g.mock.record(task)
		return nil
	}
}

// dummyGenerator has no tasks.
type dummyGenerator struct {
	*env.Base
}

func (g *dummyGenerator) Tasks() []env.Task { return nil }

// CreateDummyGenerator returns a factory for a generator that does nothing.
func CreateDummyGenerator() env.Factory {
	return func(b *env.Base) (env.Generator, error) {
		return &dummyGenerator{Base: b}, nil
	}
}

// CreateMockedGenerator returns a new mock for namespace. Register its
// Factory with an environment, or pass the namespace to
// RunContext.WithMockedGenerators.
func CreateMockedGenerator(namespace string) *MockedGenerator {
	return NewMockedGenerator(namespace)
}

// GeneratorFunc builds a single-task generator around fn, for tests that
// only need one step.
func GeneratorFunc(priority env.Priority, fn func(ctx context.Context, b *env.Base) error) env.Factory {
	return func(b *env.Base) (env.Generator, error) {
		return &funcGenerator{Base: b, priority: priority, fn: fn}, nil
	}
}

type funcGenerator struct {
	*env.Base
	priority env.Priority
	fn       func(ctx context.Context, b *env.Base) error
}

func (g *funcGenerator) Tasks() []env.Task {
	return []env.Task{{
		Priority: g.priority,
		Name:     "run",
		Run:      func(ctx context.Context) error { return g.fn(ctx, g.Base) },
	}}
}
