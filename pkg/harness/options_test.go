package harness

import "testing"

func TestCaseConversion(t *testing.T) {
	tests := []struct {
		in, camel, kebab string
	}{
		{"foo", "foo", "foo"},
		{"fooBar", "fooBar", "foo-bar"},
		{"foo-bar", "fooBar", "foo-bar"},
		{"foo_bar", "fooBar", "foo-bar"},
		{"skip-install", "skipInstall", "skip-install"},
		{"HTTPServer", "httpServer", "http-server"},
		{"useV2Api", "useV2Api", "use-v2-api"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := camelCase(tt.in); got != tt.camel {
				t.Errorf("camelCase(%q) = %q, want %q", tt.in, got, tt.camel)
			}
			if got := kebabCase(tt.in); got != tt.kebab {
				t.Errorf("kebabCase(%q) = %q, want %q", tt.in, got, tt.kebab)
			}
		})
	}
}
