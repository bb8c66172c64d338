// Package adapter provides the test substitute for a generator environment's
// interactive UI: a swappable prompt module plus a recording output log.
package adapter

import (
	"context"
	"strings"
	"sync"

	"github.com/google/go-cmp/cmp"

	"github.com/meow-stack/gentest/pkg/env"
	"github.com/meow-stack/gentest/pkg/prompt"
)

// TestAdapter implements env.Adapter for test runs.
type TestAdapter struct {
	mu       sync.RWMutex
	current  prompt.Prompter
	fallback prompt.Prompter
	log      *Log
}

// Option configures a TestAdapter.
type Option func(*TestAdapter)

// WithFallback sets the prompt module reinstalled by Restore.
func WithFallback(p prompt.Prompter) Option {
	return func(a *TestAdapter) {
		a.fallback = p
	}
}

// WithResponder installs r as the initial prompt module.
func WithResponder(r *prompt.Responder) Option {
	return func(a *TestAdapter) {
		a.current = r
	}
}

// New creates a TestAdapter. Without options, prompts go to the terminal.
func New(opts ...Option) *TestAdapter {
	a := &TestAdapter{log: &Log{}}
	for _, opt := range opts {
		opt(a)
	}
	if a.fallback == nil {
		a.fallback = prompt.DefaultTerminal()
	}
	if a.current == nil {
		a.current = a.fallback
	}
	return a
}

var _ env.Adapter = (*TestAdapter)(nil)

// Prompt delegates to the installed prompt module.
func (a *TestAdapter) Prompt(ctx context.Context, questions []prompt.Question) (prompt.Answers, error) {
	a.mu.RLock()
	p := a.current
	a.mu.RUnlock()
	return p.Prompt(ctx, questions)
}

// Install replaces the prompt module.
func (a *TestAdapter) Install(p prompt.Prompter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = p
}

// Restore reinstalls the default prompt module.
func (a *TestAdapter) Restore() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = a.fallback
}

// Responder returns the installed responder, or nil when another prompt
// module is active.
func (a *TestAdapter) Responder() *prompt.Responder {
	a.mu.RLock()
	defer a.mu.RUnlock()
	r, _ := a.current.(*prompt.Responder)
	return r
}

// Output returns the recording log as the environment output surface.
func (a *TestAdapter) Output() env.Output {
	return a.log
}

// Log returns the recording log.
func (a *TestAdapter) Log() *Log {
	return a.log
}

// Diff renders a line diff from expected to actual, or "" when equal.
func (a *TestAdapter) Diff(actual, expected string) string {
	return Diff(actual, expected)
}

// Diff renders a line diff from expected to actual, or "" when equal.
func Diff(actual, expected string) string {
	return cmp.Diff(strings.Split(expected, "\n"), strings.Split(actual, "\n"))
}
