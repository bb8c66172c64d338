package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TempDirWithFiles creates a temporary directory with the given files.
// files is a map of relative paths to content.
func TempDirWithFiles(t testing.TB, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	WriteFiles(t, dir, files)
	return dir
}

// WriteFiles writes files relative to dir, creating parents as needed.
func WriteFiles(t testing.TB, dir string, files map[string]string) {
	t.Helper()

	for relPath, content := range files {
		fullPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create parent dir for %s: %v", relPath, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write file %s: %v", relPath, err)
		}
	}
}

// NewTemplateGenerator lays out generator-<pkg>/generators/<sub> under root
// with the given manifest and templates, and returns the generator directory.
func NewTemplateGenerator(t testing.TB, root, pkg, sub, manifest string, templates map[string]string) string {
	t.Helper()

	dir := filepath.Join(root, "generator-"+pkg, "generators", sub)
	files := map[string]string{"generator.toml": manifest}
	for name, content := range templates {
		files[filepath.Join("templates", name)] = content
	}
	WriteFiles(t, dir, files)
	return dir
}

// TestManifestContent returns a valid generator manifest for testing.
func TestManifestContent() string {
	return `name = "webapp"
description = "Scaffolds a small web application"

[[questions]]
name = "appName"
type = "input"
message = "Application name"
default = "my-app"

[[questions]]
name = "useDocker"
type = "confirm"
message = "Add a Dockerfile?"
default = false

[[questions]]
name = "license"
type = "list"
message = "License"
choices = ["MIT", "Apache-2.0"]
default = "MIT"

[[files]]
source = "README.md.tmpl"
target = "README.md"

[[files]]
source = "package.json.tmpl"
target = "package.json"
json = true

[[files]]
source = "Dockerfile.tmpl"
target = "Dockerfile"
when = "answers.useDocker"
`
}

// TestTemplates returns the templates referenced by TestManifestContent.
func TestTemplates() map[string]string {
	return map[string]string{
		"README.md.tmpl":    "# {{answers.appName}}\n\nLicensed under {{answers.license}}.\n",
		"package.json.tmpl": "{\"name\": \"{{answers.appName}}\", \"license\": \"{{answers.license}}\"}\n",
		"Dockerfile.tmpl":   "FROM node:20\nLABEL app={{answers.appName}}\n",
	}
}
