package env

import (
	"path/filepath"
	"regexp"
	"strings"
)

var namespacePattern = regexp.MustCompile(`^(@[a-z0-9._-]+/)?[a-z0-9][a-z0-9._-]*(:[a-z0-9][a-z0-9._-]*)+$`)

// IsNamespace reports whether s is shaped like "package:generator".
func IsNamespace(s string) bool {
	return namespacePattern.MatchString(s)
}

// NamespaceFromPath derives a namespace from a generator location.
//
//	generator-webapp/generators/app    -> webapp:app
//	generator-webapp/generators/route  -> webapp:route
//	generator-webapp                   -> webapp:app
func NamespaceFromPath(path string) string {
	clean := filepath.ToSlash(filepath.Clean(path))
	if ext := filepath.Ext(clean); ext != "" {
		clean = strings.TrimSuffix(clean, "/"+filepath.Base(clean))
	}
	segs := strings.Split(strings.Trim(clean, "/"), "/")

	pkg, sub := segs[len(segs)-1], "app"
	for i := len(segs) - 1; i > 0; i-- {
		if segs[i] == "generators" {
			pkg = segs[i-1]
			if i+1 < len(segs) {
				sub = segs[i+1]
			}
			break
		}
	}

	pkg = strings.TrimPrefix(strings.ToLower(pkg), "generator-")
	return pkg + ":" + strings.ToLower(sub)
}
