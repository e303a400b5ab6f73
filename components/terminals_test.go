package components

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimeoutCondition(t *testing.T) {
	c := NewTimeoutCondition(3)
	st := twoPlayerState()
	c.Reset(st)
	require.False(t, c.IsTerminal(st))
	require.False(t, c.IsTerminal(st))
	require.True(t, c.IsTerminal(st))

	c.Reset(st)
	require.False(t, c.IsTerminal(st))
}

func TestTimeoutConditionDefault(t *testing.T) {
	c := NewTimeoutCondition(0)
	require.Equal(t, DefaultTimeoutSteps, c.MaxSteps)
}

func TestGoalScoredCondition(t *testing.T) {
	c := NewGoalScoredCondition()
	st := twoPlayerState()
	st.BlueScore = 2
	c.Reset(st)
	require.False(t, c.IsTerminal(st))

	scored := st.Copy()
	scored.OrangeScore = 1
	require.True(t, c.IsTerminal(scored))

	// the reset baseline tracks the scores at kickoff
	c.Reset(scored)
	require.False(t, c.IsTerminal(scored))
}

func TestNoTouchTimeoutCondition(t *testing.T) {
	c := NewNoTouchTimeoutCondition(2)
	st := twoPlayerState()
	c.Reset(st)
	require.False(t, c.IsTerminal(st))

	touched := st.Copy()
	touched.Players[0].BallTouched = true
	require.False(t, c.IsTerminal(touched))

	require.False(t, c.IsTerminal(st))
	require.True(t, c.IsTerminal(st))
}
