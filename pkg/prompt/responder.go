package prompt

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	gterrors "github.com/meow-stack/gentest/internal/errors"
	"github.com/meow-stack/gentest/internal/logging"
)

// Callback transforms a resolved answer before it is returned.
type Callback func(answer any, q Question) any

// Option configures a Responder.
type Option func(*Responder)

// WithThrowOnMissing makes unanswered questions without a default fail with
// a missing answer error instead of resolving to nil.
func WithThrowOnMissing(strict bool) Option {
	return func(r *Responder) {
		r.throwOnMissing = strict
	}
}

// WithCallback sets the answer transform. A nil callback restores identity.
func WithCallback(cb Callback) Option {
	return func(r *Responder) {
		r.callback = cb
	}
}

// WithLogger sets the logger receiving missing answer diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Responder) {
		r.logger = logging.OrSilent(logger)
	}
}

// Responder answers questions from a pre-seeded answer map.
type Responder struct {
	mu             sync.RWMutex
	answers        Answers
	throwOnMissing bool
	callback       Callback
	logger         *slog.Logger
}

// NewResponder creates a responder seeded with answers.
func NewResponder(answers Answers, opts ...Option) *Responder {
	r := &Responder{
		answers: make(Answers),
		logger:  logging.Discard(),
	}
	r.Register(answers, opts...)
	return r
}

// Register merges answers into the responder and applies opts. For keys
// present in both, the latest registration wins.
func (r *Responder) Register(answers Answers, opts ...Option) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, v := range answers {
		r.answers[k] = v
	}
	for _, opt := range opts {
		opt(r)
	}
}

// Answers returns a copy of the registered answers.
func (r *Responder) Answers() Answers {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.answers.Clone()
}

// ThrowOnMissing reports whether strict mode is enabled.
func (r *Responder) ThrowOnMissing() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.throwOnMissing
}

// Answer resolves a single question.
func (r *Responder) Answer(q Question) (any, error) {
	r.mu.RLock()
	answer, present := r.answers[q.Name]
	strict := r.throwOnMissing
	callback := r.callback
	logger := r.logger
	r.mu.RUnlock()

	kind := KindOf(q.Type)
	if !kind.IsSet(answer, present) {
		if !present && q.Default == nil {
			logger.Warn("question was asked but answer was not provided",
				"question", q.Name,
				"type", q.Type,
			)
			if strict {
				return nil, gterrors.MissingAnswer(q.Name, q.Type)
			}
		}
		answer = q.Default
		if answer == nil && kind == KindConfirm {
			answer = true
		}
	}

	if callback != nil {
		answer = callback(answer, q)
	}
	return answer, nil
}

// Prompt answers every enabled question in order. A failing question does
// not stop the others; its error is joined into the returned error.
func (r *Responder) Prompt(ctx context.Context, questions []Question) (Answers, error) {
	collected := make(Answers, len(questions))
	var errs []error

	for _, q := range questions {
		if err := ctx.Err(); err != nil {
			return collected, err
		}

		enabled, err := q.Enabled(collected)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !enabled {
			continue
		}

		answer, err := r.Answer(q)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		collected[q.Name] = answer
	}

	return collected, errors.Join(errs...)
}
