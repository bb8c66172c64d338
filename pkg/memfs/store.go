// Package memfs is an in-memory staging area for generator output.
//
// Writes stay in memory, marked with a state, until Commit flushes them to
// disk. Reads fall through to disk for files the store has not seen.
package memfs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// File states.
const (
	StateModified = "modified"
	StateDeleted  = "deleted"
)

// File is a staged file.
type File struct {
	Path     string
	Contents []byte

	// State is the pending change, or empty once committed.
	State string
	// StateCleared is the state the last commit cleared.
	StateCleared string
	Committed    bool
}

// Deleted reports whether f is staged for deletion or was deleted by the
// last commit.
func (f *File) Deleted() bool {
	return f.State == StateDeleted || (f.State == "" && f.StateCleared == StateDeleted)
}

// Store holds staged files keyed by absolute path.
type Store struct {
	mu    sync.RWMutex
	files map[string]*File
}

// New creates an empty store.
func New() *Store {
	return &Store{files: make(map[string]*File)}
}

func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return abs, nil
}

// Write stages contents at path.
func (s *Store) Write(path, contents string) error {
	abs, err := resolve(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[abs] = &File{
		Path:     abs,
		Contents: []byte(contents),
		State:    StateModified,
	}
	return nil
}

// WriteJSON stages v encoded as indented JSON with a trailing newline.
func (s *Store) WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return s.Write(path, string(data)+"\n")
}

// ExtendJSON deep-merges v into the JSON object stored at path. Nested
// objects merge key by key; any other value replaces the existing one.
func (s *Store) ExtendJSON(path string, v any) error {
	existing, err := s.ReadJSON(path, map[string]any{})
	if err != nil {
		return err
	}
	base, ok := existing.(map[string]any)
	if !ok {
		base = map[string]any{}
	}

	patch, err := toObject(v)
	if err != nil {
		return fmt.Errorf("extending %s: %w", path, err)
	}
	return s.WriteJSON(path, DeepMerge(base, patch))
}

// toObject round-trips v through JSON into a generic object.
func toObject(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("value is not a JSON object: %w", err)
	}
	return out, nil
}

// DeepMerge merges patch into base and returns base.
func DeepMerge(base, patch map[string]any) map[string]any {
	for k, pv := range patch {
		pm, pIsMap := pv.(map[string]any)
		bm, bIsMap := base[k].(map[string]any)
		if pIsMap && bIsMap {
			base[k] = DeepMerge(bm, pm)
			continue
		}
		base[k] = pv
	}
	return base
}

// Read returns the contents at path from the store, or from disk when the
// store does not hold the file.
func (s *Store) Read(path string) (string, error) {
	abs, err := resolve(path)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	f, ok := s.files[abs]
	s.mu.RUnlock()
	if ok {
		if f.Deleted() {
			return "", &fs.PathError{Op: "read", Path: abs, Err: fs.ErrNotExist}
		}
		return string(f.Contents), nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadJSON decodes the JSON at path, returning fallback when the file does
// not exist.
func (s *Store) ReadJSON(path string, fallback any) (any, error) {
	if !s.Exists(path) {
		return fallback, nil
	}
	contents, err := s.Read(path)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal([]byte(contents), &v); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return v, nil
}

// ReadYAML decodes the YAML at path into out.
func (s *Store) ReadYAML(path string, out any) error {
	contents, err := s.Read(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal([]byte(contents), out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path exists in the store or on disk.
func (s *Store) Exists(path string) bool {
	abs, err := resolve(path)
	if err != nil {
		return false
	}

	s.mu.RLock()
	f, ok := s.files[abs]
	s.mu.RUnlock()
	if ok {
		return !f.Deleted()
	}
	_, err = os.Stat(abs)
	return err == nil
}

// Delete stages the removal of path.
func (s *Store) Delete(path string) error {
	abs, err := resolve(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[abs] = &File{Path: abs, State: StateDeleted}
	return nil
}

// Get returns a copy of the staged file at path.
func (s *Store) Get(path string) (File, bool) {
	abs, err := resolve(path)
	if err != nil {
		return File{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[abs]
	if !ok {
		return File{}, false
	}
	return *f, true
}

// Paths returns the staged paths in sorted order.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// DumpEntry is one file in a dump.
type DumpEntry struct {
	Contents string `json:"contents"`
	State    string `json:"state"`
}

// Filter selects files for Dump. The path is relative to the dump root.
type Filter func(relPath string, f File) bool

// Dump returns files under root that were changed, keyed by path relative
// to root. A committed file reports the state its commit cleared.
func (s *Store) Dump(root string, filter Filter) (map[string]DumpEntry, error) {
	absRoot, err := resolve(root)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]DumpEntry)
	for p, f := range s.files {
		if f.State == "" && f.StateCleared == "" {
			continue
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		rel = filepath.ToSlash(rel)
		if filter != nil && !filter(rel, *f) {
			continue
		}

		state := f.State
		if state == "" {
			state = f.StateCleared
		}
		out[rel] = DumpEntry{Contents: string(f.Contents), State: state}
	}
	return out, nil
}

// Change actions reported by Commit.
const (
	ActionCreate    = "create"
	ActionForce     = "force"
	ActionIdentical = "identical"
	ActionDelete    = "delete"
)

// Change is one file flushed by Commit.
type Change struct {
	Path   string
	Action string
}

// Commit flushes pending changes to disk in path order.
func (s *Store) Commit() ([]Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.files))
	for p, f := range s.files {
		if f.State != "" {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	changes := make([]Change, 0, len(paths))
	for _, p := range paths {
		f := s.files[p]
		action, err := commitFile(f)
		if err != nil {
			return changes, err
		}
		f.StateCleared = f.State
		f.State = ""
		f.Committed = true
		changes = append(changes, Change{Path: p, Action: action})
	}
	return changes, nil
}

func commitFile(f *File) (string, error) {
	if f.State == StateDeleted {
		if err := os.RemoveAll(f.Path); err != nil {
			return "", fmt.Errorf("deleting %s: %w", f.Path, err)
		}
		return ActionDelete, nil
	}

	action := ActionCreate
	if existing, err := os.ReadFile(f.Path); err == nil {
		if bytes.Equal(existing, f.Contents) {
			return ActionIdentical, nil
		}
		action = ActionForce
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return "", fmt.Errorf("creating parent of %s: %w", f.Path, err)
	}
	if err := os.WriteFile(f.Path, f.Contents, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", f.Path, err)
	}
	return action, nil
}
