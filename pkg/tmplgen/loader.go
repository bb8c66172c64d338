package tmplgen

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meow-stack/gentest/internal/logging"
	"github.com/meow-stack/gentest/pkg/env"
)

// Loader loads directory generators. It implements env.PathLoader.
type Loader struct {
	// Manifest is the manifest file name. Empty means env.DefaultManifest.
	Manifest string

	logger *slog.Logger
}

var _ env.PathLoader = (*Loader)(nil)

// NewLoader creates a loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logging.OrSilent(logger)}
}

func (l *Loader) manifestName() string {
	if l.Manifest != "" {
		return l.Manifest
	}
	return env.DefaultManifest
}

// Load parses the generator at path, which may be the generator directory
// or its manifest file, and checks every referenced template exists.
func (l *Loader) Load(path string) (env.Factory, error) {
	dir := path
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat generator: %w", err)
	}
	if !info.IsDir() {
		dir = filepath.Dir(path)
	}

	m, err := ParseFile(filepath.Join(dir, l.manifestName()))
	if err != nil {
		return nil, err
	}
	for _, f := range m.Files {
		src := filepath.Join(dir, TemplatesDir, f.Source)
		if _, err := os.Stat(src); err != nil {
			return nil, fmt.Errorf("template %s: %w", f.Source, err)
		}
	}

	l.logger.Debug("loaded generator", "name", m.Name, "dir", dir, "files", len(m.Files))
	return func(b *env.Base) (env.Generator, error) {
		return NewGenerator(b, m, dir), nil
	}, nil
}
