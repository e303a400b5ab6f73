package types

// Environment is the gym-style contract every bridged environment satisfies.
type Environment interface {
	// Reset called at the start of each episode
	Reset(*EpisodeContext) (State, error)
	// Step advances the environment by one action
	Step(Action, *StepContext) (*StepResult, error)
	// ObservationSpace of the current configuration
	ObservationSpace() Space
	// ActionSpace of the current configuration
	ActionSpace() Space
	// Close releases the underlying session
	Close() error
}

// State of the environment that policies observe
type State interface {
	// Indexed by the Hash
	// Should be deterministic
	Hash() string
	// Flattened observation vector
	Obs() []float64
}

// An Action that a policy can take
type Action interface {
	// Index of the action
	// Should be deterministic
	Hash() string
}

// StepResult is the outcome of a single environment step.
type StepResult struct {
	State      State
	Reward     float64
	Terminated bool
	Truncated  bool
	Info       map[string]interface{}
}
