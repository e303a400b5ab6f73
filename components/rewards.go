package components

import (
	"fmt"

	"github.com/nexus-rl/envbridge/state"
)

// maximum car speed, used to normalize velocity based rewards
const maxCarSpeed = 2300.0

// DefaultReward returns zero for every transition.
type DefaultReward struct{}

var _ RewardFunction = &DefaultReward{}

func NewDefaultReward() *DefaultReward {
	return &DefaultReward{}
}

func (r *DefaultReward) Reset(_ *state.GameState) {}

func (r *DefaultReward) GetReward(_ state.PlayerData, _, _ *state.GameState) float64 {
	return 0
}

// EventReward pays the configured weight once per event counted between
// two consecutive states.
type EventReward struct {
	Goal    float64
	Concede float64
	Touch   float64
	Shot    float64
	Save    float64
}

var _ RewardFunction = &EventReward{}

func NewEventReward(goal, concede, touch, shot, save float64) *EventReward {
	return &EventReward{
		Goal:    goal,
		Concede: concede,
		Touch:   touch,
		Shot:    shot,
		Save:    save,
	}
}

func (r *EventReward) Reset(_ *state.GameState) {}

func (r *EventReward) GetReward(player state.PlayerData, st, prev *state.GameState) float64 {
	if prev == nil {
		return 0
	}
	reward := 0.0
	reward += float64(st.Score(player.Team)-prev.Score(player.Team)) * r.Goal
	reward += float64(st.Score(player.Team.Other())-prev.Score(player.Team.Other())) * r.Concede

	prevPlayer, ok := prev.Player(player.CarID)
	if !ok {
		return reward
	}
	reward += float64(player.Stats.Touches-prevPlayer.Stats.Touches) * r.Touch
	reward += float64(player.Stats.Shots-prevPlayer.Stats.Shots) * r.Shot
	reward += float64(player.Stats.Saves-prevPlayer.Stats.Saves) * r.Save
	return reward
}

// VelocityPlayerToBallReward rewards the fraction of the car velocity
// pointing at the ball, in [-1, 1].
type VelocityPlayerToBallReward struct{}

var _ RewardFunction = &VelocityPlayerToBallReward{}

func NewVelocityPlayerToBallReward() *VelocityPlayerToBallReward {
	return &VelocityPlayerToBallReward{}
}

func (r *VelocityPlayerToBallReward) Reset(_ *state.GameState) {}

func (r *VelocityPlayerToBallReward) GetReward(player state.PlayerData, st, _ *state.GameState) float64 {
	dir := st.Ball.Position.Sub(player.Car.Position)
	dist := dir.Norm()
	if dist == 0 {
		return 0
	}
	return player.Car.LinearVelocity.Dot(dir) / (dist * maxCarSpeed)
}

// CombinedReward is a weighted sum of child reward functions.
type CombinedReward struct {
	funcs   []RewardFunction
	weights []float64
}

var _ RewardFunction = &CombinedReward{}

func NewCombinedReward(funcs []RewardFunction, weights []float64) (*CombinedReward, error) {
	if len(funcs) == 0 {
		return nil, fmt.Errorf("combined reward: at least one function required")
	}
	if len(weights) != len(funcs) {
		return nil, fmt.Errorf("combined reward: %d weights for %d functions", len(weights), len(funcs))
	}
	return &CombinedReward{funcs: funcs, weights: weights}, nil
}

func (r *CombinedReward) Reset(initial *state.GameState) {
	for _, f := range r.funcs {
		f.Reset(initial)
	}
}

func (r *CombinedReward) GetReward(player state.PlayerData, st, prev *state.GameState) float64 {
	total := 0.0
	for i, f := range r.funcs {
		total += r.weights[i] * f.GetReward(player, st, prev)
	}
	return total
}
