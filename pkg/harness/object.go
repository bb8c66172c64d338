package harness

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/go-cmp/cmp"
)

// ObjectContains reports whether actual contains every key of expected
// with an equal value. Nested objects are checked recursively, arrays by
// index up to the length of the expected array, and keys only present in
// actual are ignored.
func ObjectContains(actual, expected any) bool {
	return CheckObjectContent(actual, expected) == nil
}

// CheckObjectContent is ObjectContains returning the first difference as
// an error naming its key path.
func CheckObjectContent(actual, expected any) error {
	a, err := normalize(actual)
	if err != nil {
		return fmt.Errorf("actual value: %w", err)
	}
	e, err := normalize(expected)
	if err != nil {
		return fmt.Errorf("expected value: %w", err)
	}
	return containsAt(a, e, "")
}

// normalize round-trips v through JSON so maps, structs and numbers of
// any Go type compare alike.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func containsAt(actual, expected any, path string) error {
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected an object, got %s", pathOrRoot(path), describe(actual))
		}
		keys := make([]string, 0, len(exp))
		for k := range exp {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			av, present := act[k]
			if !present {
				return fmt.Errorf("%s: key is missing", joinPath(path, k))
			}
			if err := containsAt(av, exp[k], joinPath(path, k)); err != nil {
				return err
			}
		}
		return nil

	case []any:
		act, ok := actual.([]any)
		if !ok {
			return fmt.Errorf("%s: expected an array, got %s", pathOrRoot(path), describe(actual))
		}
		for i := range exp {
			p := path + "[" + strconv.Itoa(i) + "]"
			if i >= len(act) {
				return fmt.Errorf("%s: element is missing", p)
			}
			if err := containsAt(act[i], exp[i], p); err != nil {
				return err
			}
		}
		return nil
	}

	if !cmp.Equal(actual, expected) {
		return fmt.Errorf("%s: expected %s, got %s", pathOrRoot(path), describe(expected), describe(actual))
	}
	return nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func pathOrRoot(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}

func describe(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
