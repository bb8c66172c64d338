package harness

import "testing"

func TestState_Valid(t *testing.T) {
	for _, s := range []State{StateUnbuilt, StatePrepared, StateEnvironmentReady, StateRunning, StateCompleted, StateErrored} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if State("bogus").Valid() {
		t.Error("unknown state should be invalid")
	}
}

func TestState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateUnbuilt, StatePrepared, true},
		{StatePrepared, StateEnvironmentReady, true},
		{StateEnvironmentReady, StateRunning, true},
		{StateRunning, StateCompleted, true},
		{StateUnbuilt, StateErrored, true},
		{StateRunning, StateErrored, true},
		{StateUnbuilt, StateRunning, false},
		{StatePrepared, StateCompleted, false},
		{StateCompleted, StateErrored, false},
		{StateErrored, StateErrored, false},
		{StateCompleted, StateUnbuilt, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_IsTerminal(t *testing.T) {
	if !StateCompleted.IsTerminal() || !StateErrored.IsTerminal() {
		t.Error("completed and errored are terminal")
	}
	if StateRunning.IsTerminal() {
		t.Error("running is not terminal")
	}
}
