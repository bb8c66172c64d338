// Package tmplgen loads generators defined on disk.
//
// A generator directory holds a generator.toml manifest and a templates/
// directory. The manifest lists the questions to ask and the files to
// render; templates reference answers and options with {{answers.name}}
// and {{options.name}}.
package tmplgen

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/meow-stack/gentest/pkg/prompt"
)

// Manifest is a parsed generator.toml.
type Manifest struct {
	Name        string            `toml:"name"`
	Description string            `toml:"description"`
	Questions   []prompt.Question `toml:"questions"`
	Files       []File            `toml:"files"`

	// Compose lists namespaces composed before files are written.
	Compose []string `toml:"compose"`
}

// File maps a template onto a destination path.
type File struct {
	Source string `toml:"source"`
	Target string `toml:"target"` // defaults to Source; may contain {{vars}}
	When   string `toml:"when"`   // expression over answers and options
	JSON   bool   `toml:"json"`   // deep-merge into existing JSON instead of overwriting
}

// Destination returns the target path template for f.
func (f File) Destination() string {
	if f.Target != "" {
		return f.Target
	}
	return f.Source
}

// ParseFile parses the manifest at path.
func ParseFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse parses a TOML manifest from r.
func Parse(r io.Reader) (*Manifest, error) {
	var m Manifest
	if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode TOML: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}
	return &m, nil
}

// ParseString parses a TOML manifest from a string.
func ParseString(s string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.Decode(s, &m); err != nil {
		return nil, fmt.Errorf("decode TOML: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}
	return &m, nil
}

// Validate checks that the manifest is well-formed.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("manifest name is required")
	}

	names := make(map[string]bool)
	for i, q := range m.Questions {
		if q.Name == "" {
			return fmt.Errorf("question %d: name is required", i)
		}
		if names[q.Name] {
			return fmt.Errorf("duplicate question name: %s", q.Name)
		}
		names[q.Name] = true
		if prompt.KindOf(q.Type) == prompt.KindList && len(q.Choices) == 0 {
			return fmt.Errorf("question %s: list questions need choices", q.Name)
		}
	}

	targets := make(map[string]bool)
	for i, f := range m.Files {
		if f.Source == "" {
			return fmt.Errorf("file %d: source is required", i)
		}
		dest := f.Destination()
		if targets[dest] && f.When == "" {
			return fmt.Errorf("duplicate file target: %s", dest)
		}
		targets[dest] = true
	}

	for _, ns := range m.Compose {
		if ns == "" {
			return fmt.Errorf("compose entries must not be empty")
		}
	}
	return nil
}
