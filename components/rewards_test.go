package components

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nexus-rl/envbridge/state"
)

func twoPlayerState() *state.GameState {
	return &state.GameState{
		Ball: state.PhysicsObject{Position: state.Vec3{Z: 93}},
		Players: []state.PlayerData{
			{CarID: 1, Team: state.TeamBlue},
			{CarID: 2, Team: state.TeamOrange},
		},
		LastTouch: -1,
	}
}

func TestDefaultReward(t *testing.T) {
	r := NewDefaultReward()
	st := twoPlayerState()
	r.Reset(st)
	require.Equal(t, 0.0, r.GetReward(st.Players[0], st, st))
}

func TestEventReward(t *testing.T) {
	r := NewEventReward(100, -100, 1, 5, 30)
	prev := twoPlayerState()
	st := prev.Copy()

	// no previous state on the first step
	require.Equal(t, 0.0, r.GetReward(st.Players[0], st, nil))

	st.BlueScore = 1
	st.Players[0].Stats.Touches = 2
	require.Equal(t, 102.0, r.GetReward(st.Players[0], st, prev))
	require.Equal(t, -100.0, r.GetReward(st.Players[1], st, prev))

	st2 := st.Copy()
	st2.Players[1].Stats.Shots = 1
	st2.Players[0].Stats.Saves = 1
	require.Equal(t, 30.0, r.GetReward(st2.Players[0], st2, st))
	require.Equal(t, 5.0, r.GetReward(st2.Players[1], st2, st))
}

func TestVelocityPlayerToBallReward(t *testing.T) {
	r := NewVelocityPlayerToBallReward()
	st := twoPlayerState()
	st.Ball.Position = state.Vec3{X: 1000, Y: 0, Z: 17}
	st.Players[0].Car.Position = state.Vec3{X: 0, Y: 0, Z: 17}
	st.Players[0].Car.LinearVelocity = state.Vec3{X: 2300}

	// driving at full speed straight at the ball
	require.InDelta(t, 1.0, r.GetReward(st.Players[0], st, nil), 1e-9)

	st.Players[0].Car.LinearVelocity = state.Vec3{X: -2300}
	require.InDelta(t, -1.0, r.GetReward(st.Players[0], st, nil), 1e-9)

	// car sitting on the ball
	st.Players[0].Car.Position = st.Ball.Position
	require.Equal(t, 0.0, r.GetReward(st.Players[0], st, nil))
}

func TestCombinedReward(t *testing.T) {
	_, err := NewCombinedReward(nil, nil)
	require.Error(t, err)

	_, err = NewCombinedReward([]RewardFunction{NewDefaultReward()}, []float64{1, 2})
	require.Error(t, err)

	r, err := NewCombinedReward(
		[]RewardFunction{NewEventReward(1, 0, 0, 0, 0), NewEventReward(0, 0, 1, 0, 0)},
		[]float64{10, 0.5},
	)
	require.NoError(t, err)

	prev := twoPlayerState()
	st := prev.Copy()
	st.BlueScore = 1
	st.Players[0].Stats.Touches = 2
	r.Reset(prev)
	require.InDelta(t, 11.0, r.GetReward(st.Players[0], st, prev), 1e-9)
}
