package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Terminal is the interactive prompter used outside of test runs.
type Terminal struct {
	out    io.Writer
	reader *bufio.Reader
}

// NewTerminal creates a prompter reading answers from in and writing
// questions to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		out:    out,
		reader: bufio.NewReader(in),
	}
}

// DefaultTerminal returns a prompter on stdin and stdout.
func DefaultTerminal() *Terminal {
	return NewTerminal(os.Stdin, os.Stdout)
}

// Prompt asks each enabled question in turn.
func (t *Terminal) Prompt(ctx context.Context, questions []Question) (Answers, error) {
	answers := make(Answers, len(questions))

	for _, q := range questions {
		if err := ctx.Err(); err != nil {
			return answers, err
		}

		enabled, err := q.Enabled(answers)
		if err != nil {
			return answers, err
		}
		if !enabled {
			continue
		}

		var answer any
		switch KindOf(q.Type) {
		case KindConfirm:
			answer, err = t.confirm(q)
		case KindList:
			answer, err = t.selectChoice(q)
		default:
			answer, err = t.input(q)
		}
		if err != nil {
			return answers, fmt.Errorf("question %s: %w", q.Name, err)
		}
		answers[q.Name] = answer
	}

	return answers, nil
}

func (t *Terminal) readLine() (string, error) {
	response, err := t.reader.ReadString('\n')
	if err != nil && !(err == io.EOF && response != "") {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// confirm asks a yes/no question. An empty response takes the default,
// which is yes unless the question defaults to false.
func (t *Terminal) confirm(q Question) (bool, error) {
	defaultYes := true
	if b, ok := q.Default.(bool); ok {
		defaultYes = b
	}

	suffix := "[y/N]"
	if defaultYes {
		suffix = "[Y/n]"
	}
	fmt.Fprintf(t.out, "%s %s ", q.Label(), suffix)

	response, err := t.readLine()
	if err != nil {
		return false, err
	}
	response = strings.ToLower(response)

	if response == "" {
		return defaultYes, nil
	}
	return response == "y" || response == "yes", nil
}

// selectChoice displays a numbered list and returns the selected choice.
// An empty response takes the default.
func (t *Terminal) selectChoice(q Question) (any, error) {
	if len(q.Choices) == 0 {
		return nil, fmt.Errorf("no choices provided")
	}

	fmt.Fprintln(t.out, q.Label())
	fmt.Fprintln(t.out)
	for i, choice := range q.Choices {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, choice)
	}
	fmt.Fprintln(t.out)
	fmt.Fprint(t.out, "Enter number: ")

	response, err := t.readLine()
	if err != nil {
		return nil, err
	}
	if response == "" {
		return q.Default, nil
	}

	num, err := strconv.Atoi(response)
	if err != nil || num < 1 || num > len(q.Choices) {
		return nil, fmt.Errorf("invalid selection: %s", response)
	}
	return q.Choices[num-1], nil
}

// input asks for free text. An empty response takes the default.
func (t *Terminal) input(q Question) (any, error) {
	if q.Default != nil {
		fmt.Fprintf(t.out, "%s (%v) ", q.Label(), q.Default)
	} else {
		fmt.Fprintf(t.out, "%s ", q.Label())
	}

	response, err := t.readLine()
	if err != nil {
		return nil, err
	}
	if response == "" {
		return q.Default, nil
	}
	return response, nil
}
