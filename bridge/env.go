package bridge

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/nexus-rl/envbridge/backend"
	"github.com/nexus-rl/envbridge/components"
	"github.com/nexus-rl/envbridge/config"
	"github.com/nexus-rl/envbridge/factory"
	"github.com/nexus-rl/envbridge/state"
	"github.com/nexus-rl/envbridge/types"
)

// ErrClosed is returned when a closed environment is used.
var ErrClosed = errors.New("environment closed")

// Env bridges a declarative environment config to the gym-style
// Environment contract. The config decides the components through the
// factories; list-valued team_size and spawn_opponents turn into dynamic
// game-mode selection at reset time.
type Env struct {
	logger  *zap.Logger
	backend backend.Backend

	cfg    *config.EnvConfig
	bundle *factory.Bundle
	setter *components.DynamicModeSetter

	session   backend.Session
	rng       *rand.Rand
	maxAgents int

	mode config.Mode
	// agent-steps accumulated per (spawn opponents, team size) mode
	modeSteps  map[bool]map[int]int
	firstReset bool

	players int
	cur     *state.GameState
	closed  bool
}

var _ types.Environment = &Env{}

type Option func(*Env)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Env) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithSeed(seed int64) Option {
	return func(e *Env) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// New builds an environment from the config. The session opens sized for
// the largest configured mode so every smaller mode fits in it.
func New(cfg *config.EnvConfig, b backend.Backend, opts ...Option) (*Env, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	// the caller keeps its config untouched
	cfg = cfg.Copy()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if b == nil {
		return nil, fmt.Errorf("a backend is required")
	}

	e := &Env{
		logger:  zap.NewNop(),
		backend: b,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.configure(cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// configure builds components and opens a fresh session for cfg.
func (e *Env) configure(cfg *config.EnvConfig) error {
	bundle, err := factory.BuildComponents(cfg)
	if err != nil {
		return fmt.Errorf("resolving components: %w", err)
	}
	maxMode := cfg.MaxMode()
	orange := 0
	if maxMode.SpawnOpponents {
		orange = maxMode.TeamSize
	}
	session, err := e.backend.Open(backend.SessionSpec{
		TickSkip:         cfg.TickSkip,
		Gravity:          cfg.Gravity,
		BoostConsumption: cfg.BoostConsumption,
		DodgeDeadzone:    cfg.DodgeDeadzone,
		BlueCars:         maxMode.TeamSize,
		OrangeCars:       orange,
	})
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}

	if e.session != nil {
		if err := e.session.Close(); err != nil {
			e.logger.Warn("closing previous session", zap.Error(err))
		}
	}
	e.cfg = cfg
	e.bundle = bundle
	e.setter = components.NewDynamicModeSetter(bundle.Setter)
	e.session = session
	e.maxAgents = maxMode.Agents()
	e.mode = maxMode
	e.firstReset = true
	e.cur = nil
	e.players = 0
	e.initModeSteps()

	if cfg.Dynamic() {
		e.logger.Info("dynamic game modes configured",
			zap.Int("modes", len(cfg.Modes())),
			zap.String("max_mode", maxMode.String()))
	}
	return nil
}

func (e *Env) initModeSteps() {
	e.modeSteps = make(map[bool]map[int]int)
	for _, so := range e.cfg.SpawnOpponents {
		if _, ok := e.modeSteps[so]; !ok {
			e.modeSteps[so] = make(map[int]int)
		}
		for _, ts := range e.cfg.TeamSize {
			e.modeSteps[so][ts] = 0
		}
	}
}

// selectMode picks the next game mode. The very first reset takes the
// largest mode so the session spawns every car; every later reset takes
// the spawn-opponents value with the fewest accumulated agent-steps, then
// the team size with the fewest agent-steps under it.
func (e *Env) selectMode() config.Mode {
	if e.firstReset {
		return e.cfg.MaxMode()
	}

	spawn := e.cfg.SpawnOpponents[0]
	if len(e.cfg.SpawnOpponents) > 1 {
		totals := make(map[bool]int)
		for so, sizes := range e.modeSteps {
			for _, count := range sizes {
				totals[so] += count
			}
		}
		spawn = true
		if totals[false] <= totals[true] {
			spawn = false
		}
	}

	size := e.cfg.TeamSize[0]
	best := e.modeSteps[spawn][size]
	for _, ts := range e.cfg.TeamSize {
		if count := e.modeSteps[spawn][ts]; count < best {
			size = ts
			best = count
		}
	}
	return config.Mode{SpawnOpponents: spawn, TeamSize: size}
}

func (e *Env) Reset(ectx *types.EpisodeContext) (types.State, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if ectx != nil && ectx.Seed != nil {
		e.rng = rand.New(rand.NewSource(*ectx.Seed))
	}

	mode := e.selectMode()
	e.firstReset = false
	e.mode = mode

	blue := mode.TeamSize
	orange := 0
	if mode.SpawnOpponents {
		orange = mode.TeamSize
	}
	e.setter.SetTeamSize(blue, orange)
	initial := e.setter.BuildState(blue, orange, e.rng)

	st, err := e.session.Reset(initial)
	if err != nil {
		return nil, fmt.Errorf("resetting session: %w", err)
	}
	e.players = len(st.Players)
	e.cur = st

	e.bundle.Reward.Reset(st)
	for _, tc := range e.bundle.Terminals {
		tc.Reset(st)
	}
	e.bundle.Obs.Reset(st)

	if ectx != nil {
		ectx.Report.AddLog("mode", mode.String())
	}
	return e.observe(st), nil
}

// Reconfigure rebuilds components and the session from a new config and
// clears the mode accounting. The next Reset runs the regular min-step
// selection over the cleared counters; only the very first reset of an
// environment forces the largest mode.
func (e *Env) Reconfigure(cfg *config.EnvConfig) error {
	if e.closed {
		return ErrClosed
	}
	if cfg == nil {
		return fmt.Errorf("a config is required")
	}
	cfg = cfg.Copy()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := e.configure(cfg); err != nil {
		return err
	}
	e.firstReset = false
	return nil
}

// ResetWithOptions rebuilds the environment from a new config and resets
// it in one call, the way a gym reset with options replaces the session.
func (e *Env) ResetWithOptions(cfg *config.EnvConfig, ectx *types.EpisodeContext) (types.State, error) {
	if err := e.Reconfigure(cfg); err != nil {
		return nil, err
	}
	return e.Reset(ectx)
}

func (e *Env) Step(a types.Action, _ *types.StepContext) (*types.StepResult, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if e.cur == nil {
		return nil, fmt.Errorf("step before reset")
	}
	va, ok := a.(types.VecAction)
	if !ok {
		return nil, fmt.Errorf("unsupported action type %T", a)
	}

	controls, err := e.parseControls(va)
	if err != nil {
		return nil, err
	}

	prev := e.cur
	st, err := e.session.Step(controls)
	if err != nil {
		return nil, fmt.Errorf("stepping session: %w", err)
	}
	if e.cfg.CopyGameState {
		st = st.Copy()
	}
	e.cur = st

	// every agent in the current mode advanced one step
	e.modeSteps[e.mode.SpawnOpponents][e.mode.TeamSize] += e.mode.Agents()

	terminated := false
	for _, tc := range e.bundle.Terminals {
		if tc.IsTerminal(st) {
			terminated = true
		}
	}

	reward := 0.0
	for _, p := range st.Players {
		reward += e.bundle.Reward.GetReward(p, st, prev)
	}
	if len(st.Players) > 0 {
		reward /= float64(len(st.Players))
	}

	return &types.StepResult{
		State:      e.observe(st),
		Reward:     reward,
		Terminated: terminated,
		// the runner owns truncation through the horizon
		Truncated: false,
		Info: map[string]interface{}{
			"mode":   e.mode.String(),
			"agents": e.mode.Agents(),
			"tick":   st.Tick,
			"score":  []int{st.BlueScore, st.OrangeScore},
		},
	}, nil
}

// parseControls expands an action into one control vector per car. An
// action covering a single agent is broadcast to every car.
func (e *Env) parseControls(va types.VecAction) ([][]float64, error) {
	width := types.Width(e.bundle.Parser.Space())
	controls := make([][]float64, e.players)
	switch len(va) {
	case width:
		parsed, err := e.bundle.Parser.ParseAction(va)
		if err != nil {
			return nil, fmt.Errorf("parsing action: %w", err)
		}
		for i := range controls {
			controls[i] = parsed
		}
	case width * e.players:
		for i := range controls {
			parsed, err := e.bundle.Parser.ParseAction(va[i*width : (i+1)*width])
			if err != nil {
				return nil, fmt.Errorf("parsing action for car %d: %w", i, err)
			}
			controls[i] = parsed
		}
	default:
		return nil, fmt.Errorf("action width %d matches neither %d nor %d",
			len(va), width, width*e.players)
	}
	return controls, nil
}

func (e *Env) ObservationSpace() types.Space {
	return e.bundle.Obs.Space(e.maxAgents)
}

func (e *Env) ActionSpace() types.Space {
	return e.bundle.Parser.Space()
}

func (e *Env) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.cur = nil
	return e.session.Close()
}

// Mode currently being played
func (e *Env) Mode() config.Mode {
	return e.mode
}

// ModeSteps is a copy of the per-mode agent-step counters.
func (e *Env) ModeSteps() map[config.Mode]int {
	out := make(map[config.Mode]int)
	for so, sizes := range e.modeSteps {
		for ts, count := range sizes {
			out[config.Mode{SpawnOpponents: so, TeamSize: ts}] = count
		}
	}
	return out
}

// EnvState adapts a GameState and its observation to the State contract.
type EnvState struct {
	Game *state.GameState
	obs  []float64
}

var _ types.State = &EnvState{}

func (s *EnvState) Hash() string {
	return s.Game.Hash()
}

func (s *EnvState) Obs() []float64 {
	return s.obs
}

// observe concatenates the per-player observations in spawn order and
// pads up to the observation space width, which is fixed by the largest
// mode.
func (e *Env) observe(st *state.GameState) *EnvState {
	obs := make([]float64, 0)
	for _, p := range st.Players {
		obs = append(obs, e.bundle.Obs.BuildObs(p, st)...)
	}
	width := types.Width(e.ObservationSpace())
	for len(obs) < width {
		obs = append(obs, 0)
	}
	return &EnvState{Game: st, obs: obs}
}
