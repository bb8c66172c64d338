package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTestLogger_Basic(t *testing.T) {
	logger := NewTestLogger(t)

	logger.Logger.Info("info message")
	logger.Logger.Warn("warning message")
	logger.Logger.Error("error message")

	if logger.Count() != 3 {
		t.Errorf("Count = %d, want 3", logger.Count())
	}
	logger.AssertLevel(t, slog.LevelWarn, 1)
	logger.AssertContains(t, "warning")
	if !strings.Contains(logger.Output(), "error message") {
		t.Errorf("Output missing error message: %s", logger.Output())
	}

	logger.Clear()
	if logger.Count() != 0 {
		t.Errorf("Count after Clear = %d, want 0", logger.Count())
	}
}

func TestTestLogger_WithAttrs(t *testing.T) {
	logger := NewTestLogger(t)

	logger.Logger.With("question", "respuesta").Warn("answer missing", "type", "input")

	logger.AssertAttrValue(t, "question", "respuesta")
	logger.AssertAttrValue(t, "type", "input")
	logger.AssertNoErrors(t)
}

func TestTestLogger_WithGroup(t *testing.T) {
	logger := NewTestLogger(t)

	logger.Logger.WithGroup("run").Info("built", "state", "prepared")

	if got := logger.EntriesWithAttrValue("run.state", "prepared"); len(got) != 1 {
		t.Errorf("Expected 1 grouped entry, got %d", len(got))
	}
}

func TestFakeT(t *testing.T) {
	ft := &FakeT{}
	if ft.Failed() {
		t.Fatal("new FakeT should not be failed")
	}

	ft.Helper()
	ft.Errorf("%s missing", "a.txt")
	ft.Errorf("second")

	if !ft.Failed() {
		t.Error("FakeT should be failed after Errorf")
	}
	if got := ft.Failures(); len(got) != 2 || got[0] != "a.txt missing" {
		t.Errorf("Failures = %v", got)
	}
	if ft.Joined() != "a.txt missing\nsecond" {
		t.Errorf("Joined = %q", ft.Joined())
	}

	ft.Reset()
	if ft.Failed() {
		t.Error("FakeT should not be failed after Reset")
	}
}

func TestTempDirWithFiles(t *testing.T) {
	dir := TempDirWithFiles(t, map[string]string{
		"file1.txt":        "content1",
		"subdir/file2.txt": "content2",
	})

	data, err := os.ReadFile(filepath.Join(dir, "subdir", "file2.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "content2" {
		t.Errorf("content = %q, want content2", data)
	}
}

func TestNewTemplateGenerator(t *testing.T) {
	root := t.TempDir()
	dir := NewTemplateGenerator(t, root, "webapp", "app", TestManifestContent(), TestTemplates())

	want := filepath.Join(root, "generator-webapp", "generators", "app")
	if dir != want {
		t.Errorf("dir = %s, want %s", dir, want)
	}
	for _, name := range []string{"generator.toml", "templates/README.md.tmpl", "templates/Dockerfile.tmpl"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}
