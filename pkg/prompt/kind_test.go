package prompt

import (
	"math"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		typ  string
		want Kind
	}{
		{"list", KindList},
		{"confirm", KindConfirm},
		{"input", KindOther},
		{"password", KindOther},
		{"", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			if got := KindOf(tt.typ); got != tt.want {
				t.Errorf("KindOf(%q) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	type name string
	var nilPtr *int

	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"empty string", "", false},
		{"string", "x", true},
		{"zero int", 0, false},
		{"int", 7, true},
		{"zero float", 0.0, false},
		{"nan", math.NaN(), false},
		{"named empty string", name(""), false},
		{"nil pointer", nilPtr, false},
		{"empty slice", []string{}, true},
		{"empty map", map[string]any{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truthy(tt.v); got != tt.want {
				t.Errorf("Truthy(%#v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestKind_IsSet(t *testing.T) {
	if !KindList.IsSet(nil, true) {
		t.Error("list: present nil should be set")
	}
	if KindList.IsSet(nil, false) {
		t.Error("list: absent should not be set")
	}
	if !KindConfirm.IsSet(false, true) {
		t.Error("confirm: false should be set")
	}
	if KindConfirm.IsSet(nil, true) {
		t.Error("confirm: nil should not be set")
	}
	if KindOther.IsSet(false, true) {
		t.Error("other: false should not be set")
	}
}
