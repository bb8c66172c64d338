package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/meow-stack/gentest/pkg/adapter"
	"github.com/meow-stack/gentest/pkg/env"
	"github.com/meow-stack/gentest/pkg/memfs"
	"github.com/meow-stack/gentest/pkg/workspace"
)

// TestingT receives assertion failures. *testing.T satisfies it.
type TestingT interface {
	Helper()
	Errorf(format string, args ...any)
}

// FileContent pairs a file with a content pattern: a substring or a
// *regexp.Regexp.
type FileContent struct {
	File    string
	Pattern any
}

// Result is the state left by a finished run. It is read-only apart from
// Cleanup.
type Result struct {
	Env        *env.Environment
	Generator  env.Generator
	Fs         *memfs.Store
	Cwd        string
	OldCwd     string
	Settings   RunSettings
	EnvOptions env.Options
	Mocks      map[string]*MockedGenerator

	runID   string
	ws      *workspace.Manager
	adapter *adapter.TestAdapter
}

func newResult(rc *RunContext) *Result {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	mocks := make(map[string]*MockedGenerator, len(rc.mocked))
	for ns, m := range rc.mocked {
		mocks[ns] = m
	}
	opts := make(env.Options, len(rc.envOptions))
	for k, v := range rc.envOptions {
		opts[k] = v
	}

	return &Result{
		Env:        rc.env,
		Generator:  rc.gen,
		Fs:         rc.env.Store(),
		Cwd:        rc.ws.Dir(),
		OldCwd:     rc.ws.OriginalDir(),
		Settings:   rc.settings,
		EnvOptions: opts,
		Mocks:      mocks,
		runID:      rc.id,
		ws:         rc.ws,
		adapter:    rc.adapter,
	}
}

// RunID returns the identifier of the run that produced r.
func (r *Result) RunID() string { return r.runID }

// Log returns the output recorded by the test adapter.
func (r *Result) Log() *adapter.Log { return r.adapter.Log() }

// path resolves a result-relative path.
func (r *Result) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.Cwd, p)
}

func (r *Result) read(p string) (string, error) {
	return r.Fs.Read(r.path(p))
}

// AssertFile checks that every path exists. It stops at the first missing
// path.
func (r *Result) AssertFile(t TestingT, paths ...string) bool {
	t.Helper()
	for _, p := range paths {
		if !r.Fs.Exists(r.path(p)) {
			t.Errorf("%s, no file created", p)
			return false
		}
	}
	return true
}

// AssertNoFile checks that no path exists. It stops at the first path
// found.
func (r *Result) AssertNoFile(t TestingT, paths ...string) bool {
	t.Helper()
	for _, p := range paths {
		if r.Fs.Exists(r.path(p)) {
			t.Errorf("%s, file exists", p)
			return false
		}
	}
	return true
}

// matchContent reports whether contents match pattern.
func matchContent(contents string, pattern any) (bool, error) {
	switch p := pattern.(type) {
	case string:
		return strings.Contains(contents, p), nil
	case *regexp.Regexp:
		return p.MatchString(contents), nil
	}
	return false, fmt.Errorf("pattern must be a string or *regexp.Regexp, got %T", pattern)
}

func describePattern(pattern any) string {
	if re, ok := pattern.(*regexp.Regexp); ok {
		return "/" + re.String() + "/"
	}
	return fmt.Sprintf("%q", pattern)
}

// AssertFileContent checks that file contains pattern.
func (r *Result) AssertFileContent(t TestingT, file string, pattern any) bool {
	t.Helper()
	return r.checkContent(t, file, pattern, true)
}

// AssertFilesContent checks each pair, stopping at the first failure.
func (r *Result) AssertFilesContent(t TestingT, pairs []FileContent) bool {
	t.Helper()
	for _, pair := range pairs {
		if !r.checkContent(t, pair.File, pair.Pattern, true) {
			return false
		}
	}
	return true
}

// AssertNoFileContent checks that file does not contain pattern.
func (r *Result) AssertNoFileContent(t TestingT, file string, pattern any) bool {
	t.Helper()
	return r.checkContent(t, file, pattern, false)
}

// AssertNoFilesContent checks each pair, stopping at the first failure.
func (r *Result) AssertNoFilesContent(t TestingT, pairs []FileContent) bool {
	t.Helper()
	for _, pair := range pairs {
		if !r.checkContent(t, pair.File, pair.Pattern, false) {
			return false
		}
	}
	return true
}

func (r *Result) checkContent(t TestingT, file string, pattern any, want bool) bool {
	t.Helper()
	contents, err := r.read(file)
	if err != nil {
		t.Errorf("%s, no file created: %v", file, err)
		return false
	}
	matched, err := matchContent(contents, pattern)
	if err != nil {
		t.Errorf("%s: %v", file, err)
		return false
	}
	if matched != want {
		if want {
			t.Errorf("%s did not match %s.\nContent:\n%s", file, describePattern(pattern), contents)
		} else {
			t.Errorf("%s matched %s.\nContent:\n%s", file, describePattern(pattern), contents)
		}
		return false
	}
	return true
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// AssertEqualsFileContent checks that file equals expected, treating CRLF
// and LF as the same.
func (r *Result) AssertEqualsFileContent(t TestingT, file, expected string) bool {
	t.Helper()
	contents, err := r.read(file)
	if err != nil {
		t.Errorf("%s, no file created: %v", file, err)
		return false
	}
	actual, want := normalizeNewlines(contents), normalizeNewlines(expected)
	if actual != want {
		t.Errorf("%s content differs (-actual +expected):\n%s", file, adapter.Diff(actual, want))
		return false
	}
	return true
}

// AssertTextEqual checks that two strings are equal, treating CRLF and LF
// as the same.
func (r *Result) AssertTextEqual(t TestingT, actual, expected string) bool {
	t.Helper()
	a, e := normalizeNewlines(actual), normalizeNewlines(expected)
	if a != e {
		t.Errorf("text differs (-actual +expected):\n%s", adapter.Diff(a, e))
		return false
	}
	return true
}

func (r *Result) readJSON(t TestingT, file string) (any, bool) {
	t.Helper()
	contents, err := r.read(file)
	if err != nil {
		t.Errorf("%s, no file created: %v", file, err)
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(contents), &v); err != nil {
		t.Errorf("%s is not valid JSON: %v\nContent:\n%s", file, err, contents)
		return nil, false
	}
	return v, true
}

// AssertJSONFileContent checks that the JSON in file contains expected.
func (r *Result) AssertJSONFileContent(t TestingT, file string, expected any) bool {
	t.Helper()
	actual, ok := r.readJSON(t, file)
	if !ok {
		return false
	}
	if err := CheckObjectContent(actual, expected); err != nil {
		t.Errorf("%s: %v", file, err)
		return false
	}
	return true
}

// AssertNoJSONFileContent checks that the JSON in file does not contain
// expected.
func (r *Result) AssertNoJSONFileContent(t TestingT, file string, expected any) bool {
	t.Helper()
	actual, ok := r.readJSON(t, file)
	if !ok {
		return false
	}
	if ObjectContains(actual, expected) {
		t.Errorf("%s contains %s", file, describe(expected))
		return false
	}
	return true
}

// AssertObjectContent checks that actual contains expected.
func (r *Result) AssertObjectContent(t TestingT, actual, expected any) bool {
	t.Helper()
	if err := CheckObjectContent(actual, expected); err != nil {
		t.Errorf("object content mismatch: %v", err)
		return false
	}
	return true
}

// AssertNoObjectContent checks that actual does not contain expected: at
// least one expected key must differ or be absent.
func (r *Result) AssertNoObjectContent(t TestingT, actual, expected any) bool {
	t.Helper()
	if ObjectContains(actual, expected) {
		t.Errorf("object unexpectedly contains %s", describe(expected))
		return false
	}
	return true
}

// GetGeneratorMock returns the mock for namespace, or nil.
func (r *Result) GetGeneratorMock(namespace string) *MockedGenerator {
	return r.Mocks[namespace]
}

// GetGeneratorComposeCount returns how many times the mocked namespace was
// composed.
func (r *Result) GetGeneratorComposeCount(namespace string) int {
	m := r.Mocks[namespace]
	if m == nil {
		return 0
	}
	return m.CallCount()
}

// GetComposedGenerators returns the mocked namespaces composed at least
// once, sorted.
func (r *Result) GetComposedGenerators() []string {
	var out []string
	for ns, m := range r.Mocks {
		if m.Called() {
			out = append(out, ns)
		}
	}
	sort.Strings(out)
	return out
}

func (r *Result) mock(t TestingT, namespace string) (*MockedGenerator, bool) {
	t.Helper()
	m := r.Mocks[namespace]
	if m == nil {
		t.Errorf("generator %s is not mocked", namespace)
		return nil, false
	}
	return m, true
}

// AssertGeneratorComposed checks that the mocked namespace was composed.
func (r *Result) AssertGeneratorComposed(t TestingT, namespace string) bool {
	t.Helper()
	m, ok := r.mock(t, namespace)
	if !ok {
		return false
	}
	if !m.Called() {
		t.Errorf("generator %s was not composed", namespace)
		return false
	}
	return true
}

// AssertGeneratorComposedOnce checks that the mocked namespace was composed
// exactly once.
func (r *Result) AssertGeneratorComposedOnce(t TestingT, namespace string) bool {
	t.Helper()
	m, ok := r.mock(t, namespace)
	if !ok {
		return false
	}
	if n := m.CallCount(); n != 1 {
		t.Errorf("generator %s was composed %d times, want once", namespace, n)
		return false
	}
	return true
}

// AssertGeneratorNotComposed checks that the mocked namespace was never
// composed.
func (r *Result) AssertGeneratorNotComposed(t TestingT, namespace string) bool {
	t.Helper()
	m, ok := r.mock(t, namespace)
	if !ok {
		return false
	}
	if n := m.CallCount(); n != 0 {
		t.Errorf("generator %s was composed %d times, want never", namespace, n)
		return false
	}
	return true
}

// Snapshot returns the changed files under the run directory keyed by
// relative path. A nil filter keeps every file.
func (r *Result) Snapshot(filter memfs.Filter) (map[string]memfs.DumpEntry, error) {
	return r.Fs.Dump(r.Cwd, filter)
}

// DumpFiles writes the path and contents of the given files, or of every
// changed file when no path is given.
func (r *Result) DumpFiles(w io.Writer, paths ...string) error {
	if len(paths) > 0 {
		for _, p := range paths {
			contents, err := r.read(p)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "%s\n%s\n", p, contents); err != nil {
				return err
			}
		}
		return nil
	}

	snap, err := r.Snapshot(nil)
	if err != nil {
		return err
	}
	for _, p := range sortedKeys(snap) {
		if _, err := fmt.Fprintf(w, "%s\n%s\n", p, snap[p].Contents); err != nil {
			return err
		}
	}
	return nil
}

// DumpFilenames writes the relative path of every changed file.
func (r *Result) DumpFilenames(w io.Writer) error {
	snap, err := r.Snapshot(nil)
	if err != nil {
		return err
	}
	for _, p := range sortedKeys(snap) {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]memfs.DumpEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Cleanup returns to the directory the run started from and, when the run
// owns a temp directory, deletes it.
func (r *Result) Cleanup() error {
	return cleanupWorkspace(r.ws)
}

func cleanupWorkspace(ws *workspace.Manager) error {
	if ws == nil {
		return nil
	}
	if ws.IsTemp() {
		return ws.Cleanup(false)
	}
	return ws.Restore()
}

// Create starts a follow-up run in this result's directory, sharing its
// store. It inherits this run's settings: the non-zero fields of settings
// are layered on top, then each override is applied, which is the way to
// switch an inherited flag off. envOptions are layered over this run's
// environment options.
func (r *Result) Create(generator any, settings *RunSettings, envOptions env.Options, overrides ...func(*RunSettings)) *RunContext {
	s := r.Settings
	s.Cwd = r.Cwd
	s.OldCwd = r.OldCwd
	s.Store = r.Fs
	if settings != nil {
		s = s.overlay(*settings)
	}
	for _, fn := range overrides {
		fn(&s)
	}
	s.AutoRun = false

	opts := make(env.Options, len(r.EnvOptions)+len(envOptions))
	for k, v := range r.EnvOptions {
		opts[k] = v
	}
	for k, v := range envOptions {
		opts[k] = v
	}
	return New(generator, &s, opts)
}
