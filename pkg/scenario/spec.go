// Package scenario runs generator tests described in YAML files and
// evaluates their expectations into pass/fail results.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/meow-stack/gentest/pkg/env"
)

// FileSuffix marks scenario files for discovery.
const FileSuffix = ".scenario.yaml"

// Scenario is one generator run and what it should produce.
type Scenario struct {
	Description string         `yaml:"description,omitempty"`
	Generator   string         `yaml:"generator"`
	Namespace   string         `yaml:"namespace,omitempty"`
	Arguments   []string       `yaml:"arguments,omitempty"`
	Options     map[string]any `yaml:"options,omitempty"`
	Answers     map[string]any `yaml:"answers,omitempty"`
	Prompt      PromptSettings `yaml:"prompt,omitempty"`
	Generators  []string       `yaml:"generators,omitempty"`
	Lookups     []string       `yaml:"lookups,omitempty"`
	Mocked      []string       `yaml:"mocked,omitempty"`
	Files       map[string]any `yaml:"files,omitempty"`
	LocalConfig map[string]any `yaml:"local_config,omitempty"`
	Expect      Expectations   `yaml:"expect"`
	Tags        []string       `yaml:"tags,omitempty"`

	// dir is the directory relative paths resolve against.
	dir string
}

// PromptSettings tune the prompt responder.
type PromptSettings struct {
	// ThrowOnMissing overrides the configured strict mode when set.
	ThrowOnMissing *bool `yaml:"throw_on_missing,omitempty"`
}

// Expectations are checked against the run result. Omitted fields are not
// asserted. Content patterns are substrings, or regular expressions when
// written as /pattern/.
type Expectations struct {
	Files       []string          `yaml:"files,omitempty"`
	NoFiles     []string          `yaml:"no_files,omitempty"`
	Content     map[string]string `yaml:"content,omitempty"`
	NoContent   map[string]string `yaml:"no_content,omitempty"`
	JSONContent map[string]any    `yaml:"json_content,omitempty"`
	Composed    map[string]int    `yaml:"composed,omitempty"`
	Error       string            `yaml:"error,omitempty"`
}

// Load reads and parses a scenario file. Relative paths in it resolve
// against the file's directory.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	sc.dir = filepath.Dir(abs)
	return sc, nil
}

// Parse parses a scenario from YAML. Relative paths resolve against the
// current directory.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the fields a run needs.
func (s *Scenario) Validate() error {
	if s.Generator == "" {
		return fmt.Errorf("scenario: generator is required")
	}
	for ns := range s.Expect.Composed {
		if !containsString(s.Mocked, ns) {
			return fmt.Errorf("scenario: composed expectation for %s, which is not mocked", ns)
		}
	}
	return nil
}

// resolve makes p absolute against the scenario directory.
func (s *Scenario) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	if s.dir == "" {
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return filepath.Join(s.dir, p)
}

// generator returns the namespace or absolute generator path.
func (s *Scenario) generator() string {
	if env.IsNamespace(s.Generator) {
		return s.Generator
	}
	return s.resolve(s.Generator)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
