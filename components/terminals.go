package components

import "github.com/nexus-rl/envbridge/state"

// DefaultTimeoutSteps matches the stock timeout condition.
const DefaultTimeoutSteps = 225

// TimeoutCondition ends the episode after a fixed number of steps.
// The step count is the number of IsTerminal calls since the last reset.
type TimeoutCondition struct {
	MaxSteps int
	steps    int
}

var _ TerminalCondition = &TimeoutCondition{}

func NewTimeoutCondition(maxSteps int) *TimeoutCondition {
	if maxSteps <= 0 {
		maxSteps = DefaultTimeoutSteps
	}
	return &TimeoutCondition{MaxSteps: maxSteps}
}

func (t *TimeoutCondition) Reset(_ *state.GameState) {
	t.steps = 0
}

func (t *TimeoutCondition) IsTerminal(_ *state.GameState) bool {
	t.steps++
	return t.steps >= t.MaxSteps
}

// GoalScoredCondition ends the episode when either score moves.
type GoalScoredCondition struct {
	blueScore   int
	orangeScore int
}

var _ TerminalCondition = &GoalScoredCondition{}

func NewGoalScoredCondition() *GoalScoredCondition {
	return &GoalScoredCondition{}
}

func (g *GoalScoredCondition) Reset(initial *state.GameState) {
	g.blueScore = initial.BlueScore
	g.orangeScore = initial.OrangeScore
}

func (g *GoalScoredCondition) IsTerminal(st *state.GameState) bool {
	return st.BlueScore != g.blueScore || st.OrangeScore != g.orangeScore
}

// NoTouchTimeoutCondition ends the episode after the ball goes untouched
// for the configured number of steps.
type NoTouchTimeoutCondition struct {
	MaxSteps int
	steps    int
}

var _ TerminalCondition = &NoTouchTimeoutCondition{}

func NewNoTouchTimeoutCondition(maxSteps int) *NoTouchTimeoutCondition {
	if maxSteps <= 0 {
		maxSteps = DefaultTimeoutSteps
	}
	return &NoTouchTimeoutCondition{MaxSteps: maxSteps}
}

func (n *NoTouchTimeoutCondition) Reset(_ *state.GameState) {
	n.steps = 0
}

func (n *NoTouchTimeoutCondition) IsTerminal(st *state.GameState) bool {
	for _, p := range st.Players {
		if p.BallTouched {
			n.steps = 0
			return false
		}
	}
	n.steps++
	return n.steps >= n.MaxSteps
}
