package env

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	gterrors "github.com/meow-stack/gentest/internal/errors"
)

// DefaultManifest is the file that marks a generator directory.
const DefaultManifest = "generator.toml"

// LookupOptions controls generator discovery.
type LookupOptions struct {
	// Paths are the roots to search. Relative paths resolve against the
	// environment cwd. Empty means the cwd itself.
	Paths []string `yaml:"paths"`

	// Manifest is the marker file name. Empty means DefaultManifest.
	Manifest string `yaml:"manifest"`
}

// Lookup finds generator directories under the configured roots, loads
// them concurrently and registers each under its derived namespace. It
// returns the registered namespaces in sorted order.
func (e *Environment) Lookup(ctx context.Context, opts LookupOptions) ([]string, error) {
	if e.loader == nil {
		return nil, gterrors.NoLoader(strings.Join(opts.Paths, ","))
	}

	manifest := opts.Manifest
	if manifest == "" {
		manifest = DefaultManifest
	}
	roots := opts.Paths
	if len(roots) == 0 {
		roots = []string{e.cwd}
	}

	var dirs []string
	for _, root := range roots {
		if !filepath.IsAbs(root) {
			root = filepath.Join(e.cwd, root)
		}
		found, err := findManifests(root, manifest)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, found...)
	}

	factories := make([]Factory, len(dirs))
	g, ctx := errgroup.WithContext(ctx)
	for i, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := e.loader.Load(dir)
			if err != nil {
				if gterrors.Code(err) != "" {
					return err
				}
				return gterrors.InvalidGenerator(dir, err)
			}
			factories[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	namespaces := make([]string, 0, len(dirs))
	for i, dir := range dirs {
		ns := NamespaceFromPath(dir)
		e.add(&Meta{Namespace: ns, ResolvedPath: dir, Factory: factories[i]})
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	return namespaces, nil
}

// findManifests returns the directories under root containing manifest.
// Hidden directories are skipped.
func findManifests(root, manifest string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == manifest {
			dirs = append(dirs, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}
