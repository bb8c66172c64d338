package prompt

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	gterrors "github.com/meow-stack/gentest/internal/errors"
	"github.com/meow-stack/gentest/internal/testutil"
)

func TestResponder_Answer(t *testing.T) {
	tests := []struct {
		name    string
		answers Answers
		q       Question
		want    any
	}{
		{
			name:    "list accepts explicit nil",
			answers: Answers{"pick": nil},
			q:       Question{Name: "pick", Type: "list", Default: "a"},
			want:    nil,
		},
		{
			name:    "list falls back to default when absent",
			answers: Answers{},
			q:       Question{Name: "pick", Type: "list", Default: "a"},
			want:    "a",
		},
		{
			name:    "confirm keeps explicit false",
			answers: Answers{"ok": false},
			q:       Question{Name: "ok", Type: "confirm", Default: true},
			want:    false,
		},
		{
			name:    "confirm absent without default is true",
			answers: Answers{},
			q:       Question{Name: "ok", Type: "confirm"},
			want:    true,
		},
		{
			name:    "confirm absent uses default",
			answers: Answers{},
			q:       Question{Name: "ok", Type: "confirm", Default: false},
			want:    false,
		},
		{
			name:    "input provided",
			answers: Answers{"respuesta": "foo"},
			q:       Question{Name: "respuesta", Type: "input", Default: "bar"},
			want:    "foo",
		},
		{
			name:    "input empty string falls back",
			answers: Answers{"respuesta": ""},
			q:       Question{Name: "respuesta", Type: "input", Default: "bar"},
			want:    "bar",
		},
		{
			name:    "number zero falls back",
			answers: Answers{"count": 0},
			q:       Question{Name: "count", Type: "number", Default: 3},
			want:    3,
		},
		{
			name:    "other false falls back",
			answers: Answers{"flag": false},
			q:       Question{Name: "flag", Type: "input", Default: "x"},
			want:    "x",
		},
		{
			name:    "other nil falls back",
			answers: Answers{"flag": nil},
			q:       Question{Name: "flag", Type: "input", Default: "x"},
			want:    "x",
		},
		{
			name:    "missing without default is nil",
			answers: Answers{},
			q:       Question{Name: "flag", Type: "input"},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResponder(tt.answers)
			got, err := r.Answer(tt.q)
			if err != nil {
				t.Fatalf("Answer() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Answer() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestResponder_MissingAnswerWarns(t *testing.T) {
	logs := testutil.NewTestLogger(t)
	r := NewResponder(nil, WithLogger(logs.Logger))

	if _, err := r.Answer(Question{Name: "name", Type: "input"}); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	logs.AssertLevel(t, slog.LevelWarn, 1)
	logs.AssertAttrValue(t, "question", "name")
}

func TestResponder_NoWarningWhenDefaultPresent(t *testing.T) {
	logs := testutil.NewTestLogger(t)
	r := NewResponder(nil, WithLogger(logs.Logger))

	if _, err := r.Answer(Question{Name: "name", Type: "input", Default: "x"}); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	logs.AssertLevel(t, slog.LevelWarn, 0)
}

func TestResponder_ThrowOnMissing(t *testing.T) {
	r := NewResponder(Answers{"b": "given"}, WithThrowOnMissing(true))

	questions := []Question{
		{Name: "a", Type: "input"},
		{Name: "b", Type: "input"},
		{Name: "c", Type: "input", Default: "dflt"},
	}
	answers, err := r.Prompt(context.Background(), questions)
	if err == nil {
		t.Fatal("expected missing answer error")
	}
	if !gterrors.HasCode(err, gterrors.CodePromptMissingAnswer) {
		t.Errorf("error code = %q, want %s", gterrors.Code(err), gterrors.CodePromptMissingAnswer)
	}
	if !strings.Contains(err.Error(), `"a"`) {
		t.Errorf("error should name the question: %v", err)
	}
	if _, ok := answers["a"]; ok {
		t.Error("failed question should not be answered")
	}
	if answers["b"] != "given" || answers["c"] != "dflt" {
		t.Errorf("other questions should still be answered: %v", answers)
	}
}

func TestResponder_RegisterMerges(t *testing.T) {
	r := NewResponder(Answers{"a": "first", "b": "kept"})
	r.Register(Answers{"a": "second", "c": "new"})

	tests := map[string]any{"a": "second", "b": "kept", "c": "new"}
	for name, want := range tests {
		got, err := r.Answer(Question{Name: name, Type: "input"})
		if err != nil {
			t.Fatalf("Answer(%s) error = %v", name, err)
		}
		if got != want {
			t.Errorf("Answer(%s) = %v, want %v", name, got, want)
		}
	}
}

func TestResponder_Callback(t *testing.T) {
	r := NewResponder(Answers{"name": "foo"}, WithCallback(func(answer any, q Question) any {
		return q.Name + "=" + answer.(string)
	}))

	got, err := r.Answer(Question{Name: "name", Type: "input"})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got != "name=foo" {
		t.Errorf("Answer() = %v, want name=foo", got)
	}

	r.Register(nil, WithCallback(nil))
	got, _ = r.Answer(Question{Name: "name", Type: "input"})
	if got != "foo" {
		t.Errorf("Answer() after reset = %v, want foo", got)
	}
}

func TestResponder_PromptWhen(t *testing.T) {
	r := NewResponder(Answers{"docker": false, "image": "node"})

	answers, err := r.Prompt(context.Background(), []Question{
		{Name: "docker", Type: "confirm"},
		{Name: "image", Type: "input", When: "answers.docker"},
	})
	if err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}
	if _, ok := answers["image"]; ok {
		t.Error("image should be skipped when docker is false")
	}
}

func TestResponder_PromptWhenError(t *testing.T) {
	r := NewResponder(Answers{"a": "x"})

	answers, err := r.Prompt(context.Background(), []Question{
		{Name: "broken", Type: "input", When: "answers.a +"},
		{Name: "a", Type: "input"},
	})
	if err == nil {
		t.Fatal("expected compile error")
	}
	if answers["a"] != "x" {
		t.Errorf("a = %v, want x", answers["a"])
	}
}

func TestResponder_PromptCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResponder(nil).Prompt(ctx, []Question{{Name: "a"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
