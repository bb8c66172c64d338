package env

import (
	"github.com/meow-stack/gentest/pkg/prompt"
)

// Output is the status surface generators write to.
type Output interface {
	Write(args ...any)
	Writeln(args ...any)
	Ok(format string, args ...any)
	Error(format string, args ...any)
	Info(format string, args ...any)
	Skip(path string)
	Force(path string)
	Create(path string)
	Invoke(namespace string)
	Conflict(path string)
	Identical(path string)
	Table(rows [][]string)
}

// Adapter is the UI layer an environment talks through.
type Adapter interface {
	prompt.Prompter
	Output() Output
	Diff(actual, expected string) string
}

// discardOutput drops everything written to it.
type discardOutput struct{}

func (discardOutput) Write(...any) {}
func (discardOutput) Writeln(...any) {}
func (discardOutput) Ok(string, ...any) {}
func (discardOutput) Error(string, ...any) {}
func (discardOutput) Info(string, ...any) {}
func (discardOutput) Skip(string) {}
func (discardOutput) Force(string) {}
func (discardOutput) Create(string) {}
func (discardOutput) Invoke(string) {}
func (discardOutput) Conflict(string) {}
func (discardOutput) Identical(string) {}
func (discardOutput) Table([][]string) {}

// terminalAdapter prompts on the terminal and discards status output.
// It is used when an environment is created without an adapter.
type terminalAdapter struct {
	*prompt.Terminal
}

func (terminalAdapter) Output() Output { return discardOutput{} }

func (terminalAdapter) Diff(actual, expected string) string {
	if actual == expected {
		return ""
	}
	return "- " + expected + "\n+ " + actual
}
