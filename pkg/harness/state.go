package harness

// State is the lifecycle state of a RunContext.
type State string

const (
	StateUnbuilt          State = "unbuilt"           // Accepting configuration
	StatePrepared         State = "prepared"          // Directory ready, target callbacks done
	StateEnvironmentReady State = "environment_ready" // Generator created, prompts intercepted
	StateRunning          State = "running"           // Generator executing
	StateCompleted        State = "completed"         // Run finished without error
	StateErrored          State = "errored"           // Pipeline or generator failed
)

// Valid returns true if this is a recognized state.
func (s State) Valid() bool {
	switch s {
	case StateUnbuilt, StatePrepared, StateEnvironmentReady,
		StateRunning, StateCompleted, StateErrored:
		return true
	}
	return false
}

// IsTerminal returns true if the run has settled.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateErrored
}

// CanTransitionTo returns true if moving from s to target is allowed.
// Every state can fail; nothing leaves a terminal state.
func (s State) CanTransitionTo(target State) bool {
	if target == StateErrored {
		return !s.IsTerminal()
	}
	switch s {
	case StateUnbuilt:
		return target == StatePrepared
	case StatePrepared:
		return target == StateEnvironmentReady
	case StateEnvironmentReady:
		return target == StateRunning
	case StateRunning:
		return target == StateCompleted
	}
	return false
}

// String returns the state name.
func (s State) String() string { return string(s) }
