// Package workspace manages the working directory of a generator test run.
//
// The process working directory is global, so a Manager is not safe for
// concurrent runs. It captures the directory it started from on the first
// change and returns there on Restore or Cleanup.
package workspace

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	gterrors "github.com/meow-stack/gentest/internal/errors"
	"github.com/meow-stack/gentest/internal/logging"
)

// suffixBytes is the amount of randomness in an isolated directory name.
const suffixBytes = 20

// Manager tracks directory transitions for one run.
type Manager struct {
	mu sync.Mutex

	tmpRoot     string
	dir         string
	originalDir string
	captured    bool
	temp        bool

	logger *slog.Logger
}

// New creates a Manager that creates isolated directories under tmpRoot.
// An empty tmpRoot means os.TempDir().
func New(tmpRoot string, logger *slog.Logger) *Manager {
	if tmpRoot == "" {
		tmpRoot = os.TempDir()
	}
	return &Manager{
		tmpRoot: tmpRoot,
		logger:  logging.OrSilent(logger),
	}
}

// captureOriginal records the current directory once. Callers hold m.mu.
func (m *Manager) captureOriginal() error {
	if m.captured {
		return nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	m.originalDir = cwd
	m.captured = true
	return nil
}

// PrepareDirectory removes path if it exists, recreates it empty and
// changes into it. It refuses the filesystem root and the current directory.
func (m *Manager) PrepareDirectory(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prepare(path)
}

func (m *Manager) prepare(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return gterrors.UnsafePath(path, err.Error())
	}
	root := filepath.VolumeName(abs) + string(filepath.Separator)
	if abs == root {
		return gterrors.UnsafePath(abs, "refusing to prepare the filesystem root")
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if abs == cwd {
		return gterrors.UnsafePath(abs, "refusing to prepare the current directory")
	}
	if err := m.captureOriginal(); err != nil {
		return err
	}

	// Leave whatever directory we are in before deleting anything.
	if err := os.Chdir(root); err != nil {
		return err
	}
	if err := os.RemoveAll(abs); err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return err
	}
	if err := os.Chdir(abs); err != nil {
		return err
	}

	m.dir = abs
	m.logger.Debug("prepared directory", "dir", abs)
	return nil
}

// EnterDirectory changes into an existing directory without touching it.
func (m *Manager) EnterDirectory(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enter(path)
}

func (m *Manager) enter(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return gterrors.DirectoryNotFound(path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return gterrors.DirectoryNotFound(abs, err)
	}
	if !info.IsDir() {
		return gterrors.DirectoryNotFound(abs, nil).WithDetail("reason", "not a directory")
	}
	if err := m.captureOriginal(); err != nil {
		return err
	}
	if err := os.Chdir(abs); err != nil {
		return gterrors.DirectoryNotFound(abs, err)
	}

	m.dir = abs
	m.logger.Debug("entered directory", "dir", abs)
	return nil
}

// CreateIsolatedTempDirectory prepares a fresh directory with a random
// suffix under the temp root and returns its symlink-free path.
func (m *Manager) CreateIsolatedTempDirectory() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	suffix := make([]byte, suffixBytes)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	path := filepath.Join(m.tmpRoot, hex.EncodeToString(suffix))

	if err := m.prepare(path); err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(path); err == nil {
		m.dir = real
	}
	m.temp = true
	return m.dir, nil
}

// Adopt enters dir as a continuation of an earlier run. originalDir becomes
// the restore target and temp transfers cleanup ownership.
func (m *Manager) Adopt(dir, originalDir string, temp bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if originalDir != "" && !m.captured {
		m.originalDir = originalDir
		m.captured = true
	}
	if err := m.enter(dir); err != nil {
		return err
	}
	m.temp = temp
	return nil
}

// Release gives up cleanup ownership of the current directory. It is used
// when a follow-up run adopts the directory.
func (m *Manager) Release() {
	m.mu.Lock()
	m.temp = false
	m.mu.Unlock()
}

// Restore changes back to the original directory.
func (m *Manager) Restore() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restore()
}

func (m *Manager) restore() error {
	if !m.captured {
		return nil
	}
	return os.Chdir(m.originalDir)
}

// Cleanup restores the original directory and deletes the working
// directory. Only temporary directories are removed unless force is set.
func (m *Manager) Cleanup(force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dir == "" {
		return nil
	}
	if !m.temp && !force {
		return gterrors.CleanupRefused(m.dir)
	}
	if err := m.restore(); err != nil {
		return err
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return err
	}
	m.logger.Debug("removed directory", "dir", m.dir)
	m.dir = ""
	return nil
}

// Dir returns the current working directory of the run.
func (m *Manager) Dir() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dir
}

// OriginalDir returns the directory captured before the first change.
func (m *Manager) OriginalDir() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.originalDir
}

// IsTemp reports whether the directory is an isolated temp directory.
func (m *Manager) IsTemp() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.temp
}
