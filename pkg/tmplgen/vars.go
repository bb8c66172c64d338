package tmplgen

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// VarContext holds the values a template can reference.
type VarContext struct {
	// Variables are the top-level namespaces, e.g. "answers" and "options".
	Variables map[string]any

	// Builtins are auto-populated values such as namespace and appname.
	Builtins map[string]any
}

// NewVarContext creates an empty variable context.
func NewVarContext() *VarContext {
	return &VarContext{
		Variables: make(map[string]any),
		Builtins:  make(map[string]any),
	}
}

// Set sets a top-level variable.
func (c *VarContext) Set(name string, value any) {
	c.Variables[name] = value
}

// SetBuiltin sets a builtin value.
func (c *VarContext) SetBuiltin(name string, value any) {
	c.Builtins[name] = value
}

var placeholder = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// expansionLimit bounds how often expanded values are expanded again.
const expansionLimit = 10

// Substitute replaces every {{path}} placeholder in input. Expanded values
// may contain placeholders themselves. A placeholder that cannot be
// resolved is left in place and reported.
func (c *VarContext) Substitute(input string) (string, error) {
	out := input
	for range expansionLimit {
		next, err := c.expand(out)
		if err != nil || next == out {
			return next, err
		}
		out = next
	}
	if left := placeholder.FindAllString(out, -1); len(left) > 0 {
		return out, fmt.Errorf("unresolved variables after %d expansions: %v", expansionLimit, left)
	}
	return out, nil
}

// expand performs a single pass, keeping the first resolution error.
func (c *VarContext) expand(s string) (string, error) {
	var firstErr error
	out := placeholder.ReplaceAllStringFunc(s, func(m string) string {
		value, err := c.resolve(strings.TrimSpace(m[2 : len(m)-2]))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return m
		}
		if value == nil {
			return ""
		}
		return fmt.Sprint(value)
	})
	return out, firstErr
}

// resolve looks up a variable path and returns its value.
func (c *VarContext) resolve(path string) (any, error) {
	parts := strings.Split(path, ".")
	root := parts[0]
	if root == "" {
		return nil, fmt.Errorf("empty variable path")
	}

	if val, ok := c.Variables[root]; ok {
		return resolvePath(val, parts[1:])
	}
	if val, ok := c.Builtins[root]; ok {
		return resolvePath(val, parts[1:])
	}

	// Computed at resolution time.
	switch root {
	case "date":
		return time.Now().Format("2006-01-02"), nil
	case "year":
		return time.Now().Format("2006"), nil
	}

	return nil, fmt.Errorf("undefined variable: %s", root)
}

// resolvePath navigates nested maps.
func resolvePath(val any, parts []string) (any, error) {
	for _, part := range parts {
		switch v := val.(type) {
		case map[string]any:
			var ok bool
			val, ok = v[part]
			if !ok {
				return nil, fmt.Errorf("field %q not found", part)
			}
		case map[string]string:
			var ok bool
			val, ok = v[part]
			if !ok {
				return nil, fmt.Errorf("field %q not found", part)
			}
		default:
			return nil, fmt.Errorf("cannot access field %q on non-map value", part)
		}
	}
	return val, nil
}

// AppName derives the application name from a destination directory.
func AppName(destinationRoot string) string {
	return filepath.Base(filepath.Clean(destinationRoot))
}
