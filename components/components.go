package components

import (
	"math/rand"

	"github.com/nexus-rl/envbridge/state"
	"github.com/nexus-rl/envbridge/types"
)

// RewardFunction scores a transition for a single player.
type RewardFunction interface {
	// Reset is called with the initial state of every episode
	Reset(initial *state.GameState)
	// GetReward scores the transition ending in st for the given player.
	// prev is nil on the first step after a reset.
	GetReward(player state.PlayerData, st, prev *state.GameState) float64
}

// TerminalCondition decides when an episode has reached a terminal state.
type TerminalCondition interface {
	Reset(initial *state.GameState)
	IsTerminal(st *state.GameState) bool
}

// ObsBuilder turns the game state into per-player observation vectors.
type ObsBuilder interface {
	Reset(initial *state.GameState)
	BuildObs(player state.PlayerData, st *state.GameState) []float64
	// Space of the concatenated observation for the given agent count
	Space(agents int) types.Space
}

// ActionParser translates flat policy actions into car controls.
type ActionParser interface {
	Space() types.Space
	// ParseAction maps one element of the space to the car controls
	ParseAction(action []float64) ([]float64, error)
}

// StateSetter produces the desired state at each reset.
type StateSetter interface {
	// BuildState spawns blue and orange cars and places the ball
	BuildState(blue, orange int, rng *rand.Rand) *state.GameState
}
