package components

import (
	"math"
	"math/rand"

	"github.com/nexus-rl/envbridge/state"
)

// arena extents
const (
	sideWall = 4096.0
	backWall = 5120.0
	ceiling  = 2044.0
)

const (
	ballRestHeight = 93.0
	spawnBoost     = 0.33
)

// kickoff spawn slots for the blue side, orange mirrors them
var spawnSlots = []state.Vec3{
	{X: -2048, Y: -2560, Z: 17},
	{X: 2048, Y: -2560, Z: 17},
	{X: -256, Y: -3840, Z: 17},
	{X: 256, Y: -3840, Z: 17},
	{X: 0, Y: -4608, Z: 17},
}

// DefaultState spawns cars in the kickoff layout with the ball centered.
type DefaultState struct{}

var _ StateSetter = &DefaultState{}

func NewDefaultState() *DefaultState {
	return &DefaultState{}
}

func (s *DefaultState) BuildState(blue, orange int, _ *rand.Rand) *state.GameState {
	st := emptyState()
	for i := 0; i < blue; i++ {
		st.Players = append(st.Players, kickoffPlayer(i+1, state.TeamBlue, i))
	}
	for i := 0; i < orange; i++ {
		st.Players = append(st.Players, kickoffPlayer(blue+i+1, state.TeamOrange, i))
	}
	return st
}

func kickoffPlayer(carID int, team state.Team, slot int) state.PlayerData {
	pos := spawnSlots[slot%len(spawnSlots)]
	yaw := math.Pi / 2
	if team == state.TeamOrange {
		pos = state.Vec3{X: -pos.X, Y: -pos.Y, Z: pos.Z}
		yaw = -math.Pi / 2
	}
	return state.PlayerData{
		CarID: carID,
		Team:  team,
		Car: state.PhysicsObject{
			Position: pos,
			Rotation: state.Rotation{Yaw: yaw},
		},
		Boost:    spawnBoost,
		OnGround: true,
	}
}

// RandomState places the ball and the cars uniformly inside the arena.
type RandomState struct{}

var _ StateSetter = &RandomState{}

func NewRandomState() *RandomState {
	return &RandomState{}
}

func (s *RandomState) BuildState(blue, orange int, rng *rand.Rand) *state.GameState {
	st := emptyState()
	st.Ball.Position = randomPosition(rng, ballRestHeight)
	for i := 0; i < blue; i++ {
		st.Players = append(st.Players, randomPlayer(i+1, state.TeamBlue, rng))
	}
	for i := 0; i < orange; i++ {
		st.Players = append(st.Players, randomPlayer(blue+i+1, state.TeamOrange, rng))
	}
	return st
}

func randomPlayer(carID int, team state.Team, rng *rand.Rand) state.PlayerData {
	return state.PlayerData{
		CarID: carID,
		Team:  team,
		Car: state.PhysicsObject{
			Position: randomPosition(rng, 17),
			Rotation: state.Rotation{Yaw: -math.Pi + 2*math.Pi*rng.Float64()},
		},
		Boost:    rng.Float64(),
		OnGround: true,
	}
}

func randomPosition(rng *rand.Rand, z float64) state.Vec3 {
	return state.Vec3{
		X: (2*rng.Float64() - 1) * (sideWall - 200),
		Y: (2*rng.Float64() - 1) * (backWall - 200),
		Z: z,
	}
}

func emptyState() *state.GameState {
	return &state.GameState{
		Ball: state.PhysicsObject{
			Position: state.Vec3{Z: ballRestHeight},
		},
		Players:   make([]state.PlayerData, 0),
		LastTouch: -1,
	}
}

// DynamicModeSetter wraps a setter and forces the car counts picked by
// the game-mode selection at every reset.
type DynamicModeSetter struct {
	inner  StateSetter
	blue   int
	orange int
}

var _ StateSetter = &DynamicModeSetter{}

func NewDynamicModeSetter(inner StateSetter) *DynamicModeSetter {
	return &DynamicModeSetter{inner: inner, blue: 1}
}

// SetTeamSize fixes the car counts used by the next BuildState call.
func (d *DynamicModeSetter) SetTeamSize(blue, orange int) {
	d.blue = blue
	d.orange = orange
}

func (d *DynamicModeSetter) BuildState(_, _ int, rng *rand.Rand) *state.GameState {
	return d.inner.BuildState(d.blue, d.orange, rng)
}
