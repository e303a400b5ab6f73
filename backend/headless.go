package backend

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/nexus-rl/envbridge/state"
)

// physics constants of the headless model
const (
	tickRate      = 120.0
	carAccel      = 1000.0
	boostAccel    = 990.0
	maxSpeed      = 2300.0
	gravityAccel  = 650.0
	turnRate      = 2.0
	boostDrain    = 0.333
	touchRadius   = 170.0
	touchImpulse  = 800.0
	goalLine      = 5120.0
	ballRest      = 93.0
	ballBounce    = 0.6
	sideWallLimit = 4096.0
)

// control vector slots
const (
	ctrlThrottle = 0
	ctrlSteer    = 1
	ctrlJump     = 5
	ctrlBoost    = 6
	numControls  = 8
)

// Headless is an in-memory kinematic backend. It keeps the session
// contract honest without a simulator: cars accelerate and steer on a
// plane, the ball integrates gravity and bounces, touches near the ball
// push it and goals move the score. It exists to exercise the bridge and
// validate configurations, not to train against.
type Headless struct {
	seed int64
}

var _ Backend = &Headless{}

func NewHeadless(seed int64) *Headless {
	return &Headless{seed: seed}
}

func (h *Headless) Open(spec SessionSpec) (Session, error) {
	if spec.BlueCars < 1 {
		return nil, fmt.Errorf("opening session: at least one blue car required")
	}
	if spec.OrangeCars < 0 {
		return nil, fmt.Errorf("opening session: negative orange car count")
	}
	if spec.TickSkip < 1 {
		return nil, fmt.Errorf("opening session: tick_skip %d must be positive", spec.TickSkip)
	}
	return &headlessSession{
		spec: spec,
		rng:  rand.New(rand.NewSource(h.seed)),
	}, nil
}

type headlessSession struct {
	spec   SessionSpec
	rng    *rand.Rand
	cur    *state.GameState
	closed bool
}

var _ Session = &headlessSession{}

func (s *headlessSession) Reset(initial *state.GameState) (*state.GameState, error) {
	if s.closed {
		return nil, ErrClosed
	}
	blue := len(initial.TeamPlayers(state.TeamBlue))
	orange := len(initial.TeamPlayers(state.TeamOrange))
	if blue < 1 || blue > s.spec.BlueCars {
		return nil, fmt.Errorf("reset: %d blue cars exceed session capacity %d", blue, s.spec.BlueCars)
	}
	if orange > s.spec.OrangeCars {
		return nil, fmt.Errorf("reset: %d orange cars exceed session capacity %d", orange, s.spec.OrangeCars)
	}
	s.cur = initial.Copy()
	s.cur.Tick = 0
	return s.cur.Copy(), nil
}

func (s *headlessSession) Step(controls [][]float64) (*state.GameState, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.cur == nil {
		return nil, fmt.Errorf("step before reset")
	}
	if len(controls) != len(s.cur.Players) {
		return nil, fmt.Errorf("step: %d control vectors for %d cars", len(controls), len(s.cur.Players))
	}
	for i, c := range controls {
		if len(c) != numControls {
			return nil, fmt.Errorf("step: control vector %d has width %d, want %d", i, len(c), numControls)
		}
	}

	dt := float64(s.spec.TickSkip) / tickRate
	for i := range s.cur.Players {
		s.cur.Players[i].BallTouched = false
		s.advanceCar(&s.cur.Players[i], controls[i], dt)
	}
	s.advanceBall(dt)
	s.detectTouches()
	s.detectGoal()
	s.cur.Tick += s.spec.TickSkip
	return s.cur.Copy(), nil
}

func (s *headlessSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cur = nil
	return nil
}

func (s *headlessSession) advanceCar(p *state.PlayerData, controls []float64, dt float64) {
	if p.Demolished {
		return
	}
	throttle := controls[ctrlThrottle]
	accel := throttle * carAccel
	boosting := controls[ctrlBoost] > 0.5 && p.Boost > 0
	if boosting {
		accel += boostAccel
		p.Boost -= boostDrain * s.spec.BoostConsumption * dt
		if p.Boost < 0 {
			p.Boost = 0
		}
	}

	yaw := p.Car.Rotation.Yaw + controls[ctrlSteer]*turnRate*dt
	if yaw > math.Pi {
		yaw -= 2 * math.Pi
	} else if yaw < -math.Pi {
		yaw += 2 * math.Pi
	}
	p.Car.Rotation.Yaw = yaw

	forward := state.Vec3{X: math.Cos(yaw), Y: math.Sin(yaw)}
	vel := p.Car.LinearVelocity.Add(forward.Scale(accel * dt))
	if controls[ctrlJump] > 0.5 && p.OnGround {
		vel.Z = 300
		p.OnGround = false
	}
	if !p.OnGround {
		vel.Z -= gravityAccel * s.spec.Gravity * dt
	}
	if speed := vel.Norm(); speed > maxSpeed {
		vel = vel.Scale(maxSpeed / speed)
	}
	p.Car.LinearVelocity = vel
	p.Car.Position = clampToArena(p.Car.Position.Add(vel.Scale(dt)))
	if p.Car.Position.Z <= 17 {
		p.Car.Position.Z = 17
		p.Car.LinearVelocity.Z = 0
		p.OnGround = true
	}
}

func (s *headlessSession) advanceBall(dt float64) {
	ball := &s.cur.Ball
	if ball.Position.Z > ballRest {
		ball.LinearVelocity.Z -= gravityAccel * s.spec.Gravity * dt
	}
	ball.Position = ball.Position.Add(ball.LinearVelocity.Scale(dt))
	if ball.Position.Z < ballRest {
		ball.Position.Z = ballRest
		ball.LinearVelocity.Z = -ball.LinearVelocity.Z * ballBounce
	}
	if math.Abs(ball.Position.X) > sideWallLimit {
		ball.Position.X = math.Copysign(sideWallLimit, ball.Position.X)
		ball.LinearVelocity.X = -ball.LinearVelocity.X * ballBounce
	}
}

func (s *headlessSession) detectTouches() {
	for i := range s.cur.Players {
		p := &s.cur.Players[i]
		if p.Demolished {
			continue
		}
		diff := s.cur.Ball.Position.Sub(p.Car.Position)
		if diff.Norm() > touchRadius {
			continue
		}
		dir := diff
		if n := dir.Norm(); n > 0 {
			dir = dir.Scale(1 / n)
		} else {
			dir = state.Vec3{Y: 1}
		}
		impulse := touchImpulse * (0.9 + 0.2*s.rng.Float64())
		s.cur.Ball.LinearVelocity = s.cur.Ball.LinearVelocity.Add(dir.Scale(impulse))
		p.BallTouched = true
		p.Stats.Touches++
		s.cur.LastTouch = p.CarID
	}
}

func (s *headlessSession) detectGoal() {
	ballY := s.cur.Ball.Position.Y
	if math.Abs(ballY) <= goalLine {
		return
	}
	scorer := state.TeamBlue
	if ballY < 0 {
		// ball crossed the blue goal line
		scorer = state.TeamOrange
	}
	if scorer == state.TeamBlue {
		s.cur.BlueScore++
	} else {
		s.cur.OrangeScore++
	}
	if p, ok := s.cur.Player(s.cur.LastTouch); ok && p.Team == scorer {
		for i := range s.cur.Players {
			if s.cur.Players[i].CarID == p.CarID {
				s.cur.Players[i].Stats.Goals++
			}
		}
	}
	// center the ball for the next kickoff
	s.cur.Ball = state.PhysicsObject{Position: state.Vec3{Z: ballRest}}
	s.cur.LastTouch = -1
}

func clampToArena(pos state.Vec3) state.Vec3 {
	if pos.X > sideWallLimit {
		pos.X = sideWallLimit
	} else if pos.X < -sideWallLimit {
		pos.X = -sideWallLimit
	}
	if pos.Y > goalLine {
		pos.Y = goalLine
	} else if pos.Y < -goalLine {
		pos.Y = -goalLine
	}
	return pos
}
