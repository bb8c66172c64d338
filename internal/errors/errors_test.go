package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestHarnessError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *HarnessError
		wantStr string
	}{
		{
			name: "simple error",
			err: &HarnessError{
				Code:    "TEST_001",
				Message: "test error",
			},
			wantStr: "[TEST_001] test error",
		},
		{
			name: "error with cause",
			err: &HarnessError{
				Code:    "TEST_002",
				Message: "wrapped error",
				Cause:   errors.New("underlying"),
			},
			wantStr: "[TEST_002] wrapped error: underlying",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestHarnessError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &HarnessError{
		Code:    "TEST_001",
		Message: "test",
		Cause:   underlying,
	}

	if got := err.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is should find the cause")
	}
}

func TestHarnessError_IsMatchesCode(t *testing.T) {
	sentinel := New(CodeRunAlreadyBuilt, "sentinel")
	err := fmt.Errorf("building: %w", AlreadyBuilt().WithDetail("run_id", "abc"))

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should match on code")
	}
	if errors.Is(err, New(CodeRunNotReady, "other")) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestHarnessError_WithDetail(t *testing.T) {
	err := New("TEST_001", "test").
		WithDetail("key1", "value1").
		WithDetail("key2", 42)

	if err.Details["key1"] != "value1" {
		t.Errorf("Details[key1] = %v, want value1", err.Details["key1"])
	}
	if err.Details["key2"] != 42 {
		t.Errorf("Details[key2] = %v, want 42", err.Details["key2"])
	}
}

func TestHarnessError_MarshalJSON(t *testing.T) {
	err := &HarnessError{
		Code:    "TEST_001",
		Message: "test error",
		Details: map[string]any{"path": "/tmp/x"},
		Cause:   errors.New("underlying"),
	}

	data, jsonErr := json.Marshal(err)
	if jsonErr != nil {
		t.Fatalf("Marshal failed: %v", jsonErr)
	}

	var result map[string]any
	if jsonErr := json.Unmarshal(data, &result); jsonErr != nil {
		t.Fatalf("Unmarshal failed: %v", jsonErr)
	}

	if result["code"] != "TEST_001" {
		t.Errorf("code = %v, want TEST_001", result["code"])
	}
	if result["cause"] != "underlying" {
		t.Errorf("cause = %v, want underlying", result["cause"])
	}
	details, ok := result["details"].(map[string]any)
	if !ok {
		t.Fatalf("details not a map")
	}
	if details["path"] != "/tmp/x" {
		t.Errorf("details.path = %v, want /tmp/x", details["path"])
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *HarnessError
		code string
	}{
		{"already built", AlreadyBuilt(), CodeRunAlreadyBuilt},
		{"directory already set", DirectoryAlreadySet("/tmp/a"), CodeRunDirectoryAlready},
		{"missing directory", MissingDirectory(), CodeRunMissingDirectory},
		{"invalid arguments", InvalidArguments(42), CodeRunInvalidArguments},
		{"invalid dependencies", InvalidDependencies("x"), CodeRunInvalidDeps},
		{"invalid local config", InvalidLocalConfig([]int{1}), CodeRunInvalidLocalCfg},
		{"not ready", NotReady(), CodeRunNotReady},
		{"no result", NoResult(), CodeRunNoResult},
		{"unknown generator", UnknownGenerator(3.5), CodeRunUnknownGenerator},
		{"config after build", ConfigAfterBuild("WithOptions"), CodeRunConfigAfterBuild},
		{"missing answer", MissingAnswer("name", "input"), CodePromptMissingAnswer},
		{"directory not found", DirectoryNotFound("/nope", nil), CodeWorkspaceNotFound},
		{"cleanup refused", CleanupRefused("/home"), CodeWorkspaceCleanupRefuse},
		{"unsafe path", UnsafePath("/", "root"), CodeWorkspaceUnsafePath},
		{"not registered", NotRegistered("foo:app"), CodeEnvNotRegistered},
		{"no loader", NoLoader("./gen"), CodeEnvNoLoader},
		{"invalid generator", InvalidGenerator("./gen", errors.New("bad")), CodeEnvInvalidGen},
		{"assertion", AssertionFailed("%s missing", "a.txt"), CodeAssertionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestMissingAnswerDetails(t *testing.T) {
	err := MissingAnswer("respuesta", "input")
	if err.Details["question"] != "respuesta" {
		t.Errorf("question detail = %v", err.Details["question"])
	}
	if err.Details["type"] != "input" {
		t.Errorf("type detail = %v", err.Details["type"])
	}
}

func TestHasCode(t *testing.T) {
	err := NotRegistered("foo:app")
	wrapped := fmt.Errorf("creating: %w", err)

	if !HasCode(err, CodeEnvNotRegistered) {
		t.Error("HasCode should be true for direct error")
	}
	if !HasCode(wrapped, CodeEnvNotRegistered) {
		t.Error("HasCode should be true for wrapped error")
	}
	if HasCode(errors.New("plain"), CodeEnvNotRegistered) {
		t.Error("HasCode should be false for plain error")
	}
	if HasCode(nil, CodeEnvNotRegistered) {
		t.Error("HasCode should be false for nil")
	}
}

func TestCode(t *testing.T) {
	if got := Code(fmt.Errorf("x: %w", NoResult())); got != CodeRunNoResult {
		t.Errorf("Code = %q, want %q", got, CodeRunNoResult)
	}
	if got := Code(errors.New("plain")); got != "" {
		t.Errorf("Code = %q, want empty", got)
	}
}
