package backend

import (
	"errors"

	"github.com/nexus-rl/envbridge/state"
)

// ErrClosed is returned when a closed session is used.
var ErrClosed = errors.New("session closed")

// SessionSpec fixes the physical parameters and the car capacity of a
// session. The capacity is the largest configured mode; resets may spawn
// fewer cars.
type SessionSpec struct {
	TickSkip         int
	Gravity          float64
	BoostConsumption float64
	DodgeDeadzone    float64
	BlueCars         int
	OrangeCars       int
}

// Backend opens simulation sessions for the bridge.
type Backend interface {
	Open(spec SessionSpec) (Session, error)
}

// Session is a single running match instance.
type Session interface {
	// Reset sets the session to the given state and returns the
	// resulting state
	Reset(initial *state.GameState) (*state.GameState, error)
	// Step applies one control vector per car and advances tick_skip
	// ticks
	Step(controls [][]float64) (*state.GameState, error)
	Close() error
}
