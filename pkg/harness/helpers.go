package harness

import (
	"context"

	"github.com/meow-stack/gentest/pkg/adapter"
	"github.com/meow-stack/gentest/pkg/env"
	"github.com/meow-stack/gentest/pkg/prompt"
	"github.com/meow-stack/gentest/pkg/workspace"
)

// Run creates a run context for generator. With AutoRun set in settings
// the run starts on its own after the configured delay.
func Run(generator any, settings *RunSettings, envOptions env.Options) *RunContext {
	return New(generator, settings, envOptions)
}

// Create creates a run context that only runs when asked to.
func Create(generator any, settings *RunSettings, envOptions env.Options) *RunContext {
	s := DefaultSettings()
	if settings != nil {
		s = *settings
	}
	s.AutoRun = false
	return New(generator, &s, envOptions)
}

// MockPrompt answers g's prompts from answers. Calling it again merges new
// answers over the earlier ones.
func MockPrompt(g env.Generator, answers prompt.Answers, opts ...prompt.Option) *prompt.Responder {
	ta, ok := g.Core().Env().Adapter().(*adapter.TestAdapter)
	if ok {
		if r := ta.Responder(); r != nil {
			r.Register(answers, opts...)
			return r
		}
	}

	r := prompt.NewResponder(answers, opts...)
	if ok {
		ta.Install(r)
	}
	return r
}

// RestorePrompt reinstalls the default prompt module for g.
func RestorePrompt(g env.Generator) {
	if ta, ok := g.Core().Env().Adapter().(*adapter.TestAdapter); ok {
		ta.Restore()
	}
}

// TestDirectory empties dir and changes into it. The returned function
// changes back.
func TestDirectory(dir string) (restore func() error, err error) {
	ws := workspace.New("", currentLogger())
	if err := ws.PrepareDirectory(dir); err != nil {
		return nil, err
	}
	return ws.Restore, nil
}

// RunGenerator is New followed by Run, for one-line tests.
func RunGenerator(ctx context.Context, generator any) (*Result, error) {
	return New(generator, nil, nil).Run(ctx)
}
