package scenario

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/meow-stack/gentest/pkg/harness"
)

// Evaluate checks a scenario's expectations against a run. res is nil when
// the run failed before the generator executed; file expectations are then
// skipped and only the error expectation is reported.
func Evaluate(sc *Scenario, res *harness.Result, runErr error) []AssertionResult {
	results := []AssertionResult{evalError(sc.Expect.Error, runErr)}
	if res == nil {
		return results
	}
	exp := sc.Expect

	for _, f := range exp.Files {
		results = append(results, check("file", f, "", func(t harness.TestingT) bool {
			return res.AssertFile(t, f)
		}))
	}
	for _, f := range exp.NoFiles {
		results = append(results, check("no_file", f, "", func(t harness.TestingT) bool {
			return res.AssertNoFile(t, f)
		}))
	}
	for _, f := range sortedKeys(exp.Content) {
		raw := exp.Content[f]
		results = append(results, check("content", f, raw, func(t harness.TestingT) bool {
			pattern, err := parsePattern(raw)
			if err != nil {
				t.Errorf("%v", err)
				return false
			}
			return res.AssertFileContent(t, f, pattern)
		}))
	}
	for _, f := range sortedKeys(exp.NoContent) {
		raw := exp.NoContent[f]
		results = append(results, check("no_content", f, raw, func(t harness.TestingT) bool {
			pattern, err := parsePattern(raw)
			if err != nil {
				t.Errorf("%v", err)
				return false
			}
			return res.AssertNoFileContent(t, f, pattern)
		}))
	}
	for _, f := range sortedKeys(exp.JSONContent) {
		want := exp.JSONContent[f]
		results = append(results, check("json_content", f, fmt.Sprint(want), func(t harness.TestingT) bool {
			return res.AssertJSONFileContent(t, f, want)
		}))
	}
	for _, ns := range sortedKeys(exp.Composed) {
		want := exp.Composed[ns]
		results = append(results, check("composed", ns, strconv.Itoa(want), func(t harness.TestingT) bool {
			if got := res.GetGeneratorComposeCount(ns); got != want {
				t.Errorf("generator %s was composed %d times, want %d", ns, got, want)
				return false
			}
			return true
		}))
	}
	return results
}

// HasFailures reports whether any assertion failed.
func HasFailures(results []AssertionResult) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}

func evalError(expected string, runErr error) AssertionResult {
	r := AssertionResult{Type: "error", Expected: expected}
	switch {
	case expected == "" && runErr == nil:
		r.Passed = true
	case expected == "":
		r.Message = fmt.Sprintf("run failed: %v", runErr)
	case runErr == nil:
		r.Message = fmt.Sprintf("expected an error matching %s, run succeeded", expected)
	default:
		pattern, err := parsePattern(expected)
		if err != nil {
			r.Message = err.Error()
			break
		}
		if matches(runErr.Error(), pattern) {
			r.Passed = true
		} else {
			r.Message = fmt.Sprintf("error %q does not match %s", runErr.Error(), expected)
		}
	}
	return r
}

// recorder collects assertion failures.
type recorder struct {
	msgs []string
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(format string, args ...any) {
	r.msgs = append(r.msgs, fmt.Sprintf(format, args...))
}

func check(typ, key, expected string, fn func(harness.TestingT) bool) AssertionResult {
	rec := &recorder{}
	passed := fn(rec)
	return AssertionResult{
		Type:     typ,
		Key:      key,
		Expected: expected,
		Passed:   passed,
		Message:  strings.Join(rec.msgs, "\n"),
	}
}

// parsePattern returns a *regexp.Regexp for "/pattern/" and the string
// itself otherwise.
func parsePattern(s string) (any, error) {
	if len(s) >= 2 && s[0] == '/' && s[len(s)-1] == '/' {
		re, err := regexp.Compile(s[1 : len(s)-1])
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", s, err)
		}
		return re, nil
	}
	return s, nil
}

func matches(s string, pattern any) bool {
	if re, ok := pattern.(*regexp.Regexp); ok {
		return re.MatchString(s)
	}
	return strings.Contains(s, pattern.(string))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
