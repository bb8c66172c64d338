// Package prompt answers generator questions.
//
// A Responder answers deterministically from a pre-seeded answer map, using
// per-type rules to decide whether a provided answer counts as set. Terminal
// is the interactive default that reads from an io.Reader.
package prompt

import "context"

// Question describes a single prompt question.
type Question struct {
	Name    string   `toml:"name" yaml:"name" json:"name"`
	Type    string   `toml:"type" yaml:"type" json:"type"`
	Message string   `toml:"message" yaml:"message,omitempty" json:"message,omitempty"`
	Default any      `toml:"default" yaml:"default,omitempty" json:"default,omitempty"`
	Choices []string `toml:"choices" yaml:"choices,omitempty" json:"choices,omitempty"`

	// When is an expression over the answers collected earlier in the same
	// batch. The question is skipped when it evaluates to false.
	When string `toml:"when" yaml:"when,omitempty" json:"when,omitempty"`
}

// Answers maps question names to answer values.
type Answers map[string]any

// Clone returns a shallow copy of a.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Prompter answers a batch of questions.
type Prompter interface {
	Prompt(ctx context.Context, questions []Question) (Answers, error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(ctx context.Context, questions []Question) (Answers, error)

// Prompt calls f.
func (f PrompterFunc) Prompt(ctx context.Context, questions []Question) (Answers, error) {
	return f(ctx, questions)
}

// Label returns the text shown for q, falling back to its name.
func (q Question) Label() string {
	if q.Message != "" {
		return q.Message
	}
	return q.Name
}
