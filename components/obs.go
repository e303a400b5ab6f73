package components

import (
	"math"

	"github.com/nexus-rl/envbridge/state"
	"github.com/nexus-rl/envbridge/types"
)

// normalization coefficients for physics vectors
const (
	posCoef    = 1.0 / 4096.0
	velCoef    = 1.0 / maxCarSpeed
	angVelCoef = 1.0 / 5.5
)

const (
	ballObsWidth = 9
	carObsWidth  = 14
)

// DefaultObs flattens the ball and every car into a fixed-order vector:
// ball, the observed player, teammates, then opponents. The width grows
// with the number of cars in the session.
type DefaultObs struct{}

var _ ObsBuilder = &DefaultObs{}

func NewDefaultObs() *DefaultObs {
	return &DefaultObs{}
}

func (o *DefaultObs) Reset(_ *state.GameState) {}

func (o *DefaultObs) BuildObs(player state.PlayerData, st *state.GameState) []float64 {
	obs := make([]float64, 0, ballObsWidth+carObsWidth*len(st.Players))
	obs = appendPhysics(obs, st.Ball)
	obs = appendCar(obs, player)
	for _, p := range st.Players {
		if p.CarID != player.CarID && p.Team == player.Team {
			obs = appendCar(obs, p)
		}
	}
	for _, p := range st.Players {
		if p.Team != player.Team {
			obs = appendCar(obs, p)
		}
	}
	return obs
}

func (o *DefaultObs) Space(agents int) types.Space {
	perPlayer := ballObsWidth + carObsWidth*agents
	return types.NewBox(-2, 2, agents*perPlayer)
}

// PaddedObs wraps DefaultObs and pads every observation to a fixed player
// count, so configs listing several team sizes keep a stable width.
type PaddedObs struct {
	MaxPlayers int
	inner      *DefaultObs
}

var _ ObsBuilder = &PaddedObs{}

func NewPaddedObs(maxPlayers int) *PaddedObs {
	if maxPlayers <= 0 {
		maxPlayers = 2 * 3
	}
	return &PaddedObs{MaxPlayers: maxPlayers, inner: NewDefaultObs()}
}

func (o *PaddedObs) Reset(initial *state.GameState) {
	o.inner.Reset(initial)
}

func (o *PaddedObs) BuildObs(player state.PlayerData, st *state.GameState) []float64 {
	obs := o.inner.BuildObs(player, st)
	width := ballObsWidth + carObsWidth*o.maxPlayers(len(st.Players))
	for len(obs) < width {
		obs = append(obs, 0)
	}
	return obs
}

func (o *PaddedObs) Space(agents int) types.Space {
	m := o.maxPlayers(agents)
	perPlayer := ballObsWidth + carObsWidth*m
	return types.NewBox(-2, 2, m*perPlayer)
}

func (o *PaddedObs) maxPlayers(agents int) int {
	if agents > o.MaxPlayers {
		return agents
	}
	return o.MaxPlayers
}

func appendPhysics(obs []float64, phys state.PhysicsObject) []float64 {
	obs = append(obs,
		phys.Position.X*posCoef, phys.Position.Y*posCoef, phys.Position.Z*posCoef,
		phys.LinearVelocity.X*velCoef, phys.LinearVelocity.Y*velCoef, phys.LinearVelocity.Z*velCoef,
		phys.AngularVelocity.X*angVelCoef, phys.AngularVelocity.Y*angVelCoef, phys.AngularVelocity.Z*angVelCoef)
	return obs
}

func appendCar(obs []float64, p state.PlayerData) []float64 {
	obs = appendPhysics(obs, p.Car)
	obs = append(obs,
		p.Car.Rotation.Pitch/math.Pi, p.Car.Rotation.Yaw/math.Pi, p.Car.Rotation.Roll/math.Pi,
		p.Boost, boolToFloat(p.OnGround))
	return obs
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
