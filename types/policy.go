package types

// Policy maps observed states to actions.
type Policy interface {
	// NextAction picks an action for the current state
	NextAction(int, State, Space) (Action, bool)
	// Update with the outcome of a single step
	Update(int, State, Action, *StepResult)
	// UpdateEpisode is called once at the end of each episode
	UpdateEpisode(int, *Trace)
	// Reset clears learned state between runs
	Reset()
}
