package harness

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/meow-stack/gentest/internal/testutil"
	"github.com/meow-stack/gentest/pkg/env"
	"github.com/meow-stack/gentest/pkg/memfs"
)

// runWithFiles runs a generator writing files and returns its result.
func runWithFiles(t *testing.T, files map[string]string) *Result {
	t.Helper()
	gen := GeneratorFunc(env.PriorityWriting, func(ctx context.Context, b *env.Base) error {
		for name, content := range files {
			if err := b.Write(b.DestinationPath(name), content); err != nil {
				return err
			}
		}
		return nil
	})
	res, err := New(gen, nil, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return res
}

func TestResult_FileAssertions(t *testing.T) {
	startIn(t)
	res := runWithFiles(t, map[string]string{
		"README.md":       "# demo\r\nhello world\r\n",
		"src/index.js":    "console.log('hi')\n",
		"package.json":    `{"name": "demo", "scripts": {"test": "jest"}, "files": ["a", "b"]}`,
		"config/app.yaml": "port: 8080\n",
	})
	ft := &testutil.FakeT{}

	tests := []struct {
		name   string
		assert func() bool
		pass   bool
	}{
		{"file exists", func() bool { return res.AssertFile(ft, "README.md", "src/index.js") }, true},
		{"file missing", func() bool { return res.AssertFile(ft, "README.md", "nope.txt") }, false},
		{"no file", func() bool { return res.AssertNoFile(ft, "nope.txt") }, true},
		{"no file but exists", func() bool { return res.AssertNoFile(ft, "README.md") }, false},
		{"content substring", func() bool { return res.AssertFileContent(ft, "README.md", "hello") }, true},
		{"content regexp", func() bool {
			return res.AssertFileContent(ft, "src/index.js", regexp.MustCompile(`console\.log\('\w+'\)`))
		}, true},
		{"content mismatch", func() bool { return res.AssertFileContent(ft, "README.md", "goodbye") }, false},
		{"content of missing file", func() bool { return res.AssertFileContent(ft, "nope.txt", "x") }, false},
		{"bad pattern type", func() bool { return res.AssertFileContent(ft, "README.md", 42) }, false},
		{"no content", func() bool { return res.AssertNoFileContent(ft, "README.md", "goodbye") }, true},
		{"no content but present", func() bool { return res.AssertNoFileContent(ft, "README.md", "hello") }, false},
		{"files content", func() bool {
			return res.AssertFilesContent(ft, []FileContent{
				{File: "README.md", Pattern: "demo"},
				{File: "src/index.js", Pattern: "console"},
			})
		}, true},
		{"files content second fails", func() bool {
			return res.AssertFilesContent(ft, []FileContent{
				{File: "README.md", Pattern: "demo"},
				{File: "src/index.js", Pattern: "window"},
			})
		}, false},
		{"no files content", func() bool {
			return res.AssertNoFilesContent(ft, []FileContent{{File: "README.md", Pattern: regexp.MustCompile(`^bye`)}})
		}, true},
		{"equals with CRLF", func() bool { return res.AssertEqualsFileContent(ft, "README.md", "# demo\nhello world\n") }, true},
		{"equals mismatch", func() bool { return res.AssertEqualsFileContent(ft, "README.md", "# other\n") }, false},
		{"json subset", func() bool {
			return res.AssertJSONFileContent(ft, "package.json", map[string]any{"scripts": map[string]any{"test": "jest"}})
		}, true},
		{"json array prefix", func() bool {
			return res.AssertJSONFileContent(ft, "package.json", map[string]any{"files": []any{"a"}})
		}, true},
		{"json mismatch", func() bool {
			return res.AssertJSONFileContent(ft, "package.json", map[string]any{"name": "other"})
		}, false},
		{"json of non json file", func() bool {
			return res.AssertJSONFileContent(ft, "config/app.yaml", map[string]any{"port": 8080})
		}, false},
		{"no json content", func() bool {
			return res.AssertNoJSONFileContent(ft, "package.json", map[string]any{"name": "other"})
		}, true},
		{"no json content but present", func() bool {
			return res.AssertNoJSONFileContent(ft, "package.json", map[string]any{"name": "demo"})
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft.Reset()
			got := tt.assert()
			if got != tt.pass {
				t.Errorf("assertion returned %v, want %v (failures: %s)", got, tt.pass, ft.Joined())
			}
			if ft.Failed() == tt.pass {
				t.Errorf("Failed() = %v, want %v", ft.Failed(), !tt.pass)
			}
		})
	}
}

func TestResult_FailureMessages(t *testing.T) {
	startIn(t)
	res := runWithFiles(t, map[string]string{"a.txt": "line one\nline two\n"})
	ft := &testutil.FakeT{}

	res.AssertFile(ft, "missing.txt")
	if !strings.Contains(ft.Joined(), "missing.txt, no file created") {
		t.Errorf("failure = %q", ft.Joined())
	}

	ft.Reset()
	res.AssertEqualsFileContent(ft, "a.txt", "line one\nline 2\n")
	if !strings.Contains(ft.Joined(), "line 2") || !strings.Contains(ft.Joined(), "line two") {
		t.Errorf("failure should show a diff, got %q", ft.Joined())
	}

	ft.Reset()
	res.AssertFileContent(ft, "a.txt", regexp.MustCompile(`three`))
	if !strings.Contains(ft.Joined(), "/three/") {
		t.Errorf("failure should name the pattern, got %q", ft.Joined())
	}
}

func TestResult_ObjectAndText(t *testing.T) {
	res := &Result{}
	ft := &testutil.FakeT{}
	actual := map[string]any{"a": map[string]any{"b": 1}, "c": 2}

	if !res.AssertObjectContent(ft, actual, map[string]any{"a": map[string]any{"b": 1}}) {
		t.Errorf("object subset should pass: %s", ft.Joined())
	}
	if res.AssertObjectContent(ft, actual, map[string]any{"c": 3}) {
		t.Error("different value should fail")
	}
	ft.Reset()
	if !res.AssertNoObjectContent(ft, actual, map[string]any{"c": 3}) {
		t.Errorf("differing value should pass the negative form: %s", ft.Joined())
	}
	if !res.AssertNoObjectContent(ft, actual, map[string]any{"c": 2, "d": 1}) {
		t.Errorf("one missing key should pass the negative form: %s", ft.Joined())
	}
	if res.AssertNoObjectContent(ft, actual, map[string]any{"c": 2}) {
		t.Error("contained object should fail the negative form")
	}

	ft.Reset()
	if !res.AssertTextEqual(ft, "a\r\nb", "a\nb") {
		t.Errorf("CRLF should equal LF: %s", ft.Joined())
	}
	if res.AssertTextEqual(ft, "a", "b") {
		t.Error("different text should fail")
	}
}

func TestResult_ComposeAssertionsOnUnknownMock(t *testing.T) {
	res := &Result{Mocks: map[string]*MockedGenerator{}}
	ft := &testutil.FakeT{}

	if res.AssertGeneratorComposed(ft, "nope:gen") {
		t.Error("unknown mock should fail")
	}
	if !strings.Contains(ft.Joined(), "is not mocked") {
		t.Errorf("failure = %q", ft.Joined())
	}
	if res.GetGeneratorComposeCount("nope:gen") != 0 {
		t.Error("unknown mock count should be 0")
	}
	if res.GetGeneratorMock("nope:gen") != nil {
		t.Error("unknown mock should be nil")
	}
}

func TestResult_Dump(t *testing.T) {
	startIn(t)
	res := runWithFiles(t, map[string]string{
		"b.txt":     "bee\n",
		"a/one.txt": "one\n",
	})

	var names bytes.Buffer
	if err := res.DumpFilenames(&names); err != nil {
		t.Fatalf("DumpFilenames() error = %v", err)
	}
	if names.String() != "a/one.txt\nb.txt\n" {
		t.Errorf("DumpFilenames() = %q", names.String())
	}

	var files bytes.Buffer
	if err := res.DumpFiles(&files, "b.txt"); err != nil {
		t.Fatalf("DumpFiles() error = %v", err)
	}
	if files.String() != "b.txt\nbee\n\n" {
		t.Errorf("DumpFiles(b.txt) = %q", files.String())
	}

	files.Reset()
	if err := res.DumpFiles(&files); err != nil {
		t.Fatalf("DumpFiles() error = %v", err)
	}
	if !strings.HasPrefix(files.String(), "a/one.txt\none\n") {
		t.Errorf("DumpFiles() = %q", files.String())
	}

	snap, err := res.Snapshot(func(rel string, f memfs.File) bool { return strings.HasPrefix(rel, "a/") })
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap) != 1 || snap["a/one.txt"].Contents != "one\n" {
		t.Errorf("Snapshot(filter) = %v", snap)
	}
}
