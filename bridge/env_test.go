package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nexus-rl/envbridge/backend"
	"github.com/nexus-rl/envbridge/config"
	"github.com/nexus-rl/envbridge/types"
)

func dynamicConfig() *config.EnvConfig {
	cfg := config.Defaults()
	cfg.TeamSize = config.IntList{1, 2}
	cfg.SpawnOpponents = config.BoolList{false, true}
	return cfg
}

func newTestEnv(t *testing.T, cfg *config.EnvConfig) *Env {
	t.Helper()
	env, err := New(cfg, backend.NewHeadless(1), WithSeed(42))
	require.NoError(t, err)
	t.Cleanup(func() { env.Close() })
	return env
}

func zeroAction(agents int) types.VecAction {
	return make(types.VecAction, 8*agents)
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.TeamSize = config.IntList{99}
	_, err := New(cfg, backend.NewHeadless(1))
	require.Error(t, err)

	_, err = New(config.Defaults(), nil)
	require.Error(t, err)
}

func TestModeSchedule(t *testing.T) {
	env := newTestEnv(t, dynamicConfig())

	// the first reset takes the largest mode so every car spawns
	st, err := env.Reset(nil)
	require.NoError(t, err)
	require.NotNil(t, st)
	require.Equal(t, config.Mode{SpawnOpponents: true, TeamSize: 2}, env.Mode())

	for i := 0; i < 3; i++ {
		_, err = env.Step(zeroAction(1), nil)
		require.NoError(t, err)
	}
	// 4 agents stepped 3 times
	require.Equal(t, 12, env.ModeSteps()[config.Mode{SpawnOpponents: true, TeamSize: 2}])

	// no-opponent modes have no steps yet, smallest team size first
	_, err = env.Reset(nil)
	require.NoError(t, err)
	require.Equal(t, config.Mode{SpawnOpponents: false, TeamSize: 1}, env.Mode())

	_, err = env.Step(zeroAction(1), nil)
	require.NoError(t, err)
	require.Equal(t, 1, env.ModeSteps()[config.Mode{SpawnOpponents: false, TeamSize: 1}])

	// still behind the opponent modes, so the other solo size comes up
	_, err = env.Reset(nil)
	require.NoError(t, err)
	require.Equal(t, config.Mode{SpawnOpponents: false, TeamSize: 2}, env.Mode())
}

func TestStepBroadcastAndPerCar(t *testing.T) {
	env := newTestEnv(t, dynamicConfig())
	_, err := env.Reset(nil)
	require.NoError(t, err)
	// first reset mode is 2v2, 4 cars

	// one agent's worth of values broadcasts to every car
	res, err := env.Step(zeroAction(1), nil)
	require.NoError(t, err)
	require.False(t, res.Terminated)
	require.Equal(t, "2v2", res.Info["mode"])
	require.Equal(t, 4, res.Info["agents"])

	// or one vector per car
	_, err = env.Step(zeroAction(4), nil)
	require.NoError(t, err)

	// anything else is rejected
	_, err = env.Step(zeroAction(3), nil)
	require.Error(t, err)
}

func TestStepBeforeResetFails(t *testing.T) {
	env := newTestEnv(t, dynamicConfig())
	_, err := env.Step(zeroAction(1), nil)
	require.Error(t, err)
}

func TestObservationWidthStable(t *testing.T) {
	env := newTestEnv(t, dynamicConfig())
	width := types.Width(env.ObservationSpace())
	require.Equal(t, 4*(9+14*4), width)

	st, err := env.Reset(nil)
	require.NoError(t, err)
	require.Len(t, st.Obs(), width)

	// a later reset lands in a smaller mode, the padding keeps the width
	for i := 0; i < 2; i++ {
		_, err = env.Step(zeroAction(1), nil)
		require.NoError(t, err)
	}
	st, err = env.Reset(nil)
	require.NoError(t, err)
	require.Equal(t, config.Mode{SpawnOpponents: false, TeamSize: 1}, env.Mode())
	require.Len(t, st.Obs(), width)
}

func TestTerminatedByTimeout(t *testing.T) {
	cfg := dynamicConfig()
	cfg.TerminalConditions = []config.ComponentSpec{
		{Name: "timeout", Params: map[string]interface{}{"max_steps": 2}},
	}
	env := newTestEnv(t, cfg)
	_, err := env.Reset(nil)
	require.NoError(t, err)

	res, err := env.Step(zeroAction(1), nil)
	require.NoError(t, err)
	require.False(t, res.Terminated)

	res, err = env.Step(zeroAction(1), nil)
	require.NoError(t, err)
	require.True(t, res.Terminated)
	// the runner decides truncation, the environment never truncates
	require.False(t, res.Truncated)
}

func TestResetSeedIsDeterministic(t *testing.T) {
	cfg := config.Defaults()
	cfg.StateSetter = &config.ComponentSpec{Name: "random"}
	env := newTestEnv(t, cfg)

	seed := int64(7)
	ectx := types.NewEpisodeContext(0, 0)
	ectx.Seed = &seed
	st1, err := env.Reset(ectx)
	require.NoError(t, err)

	ectx2 := types.NewEpisodeContext(1, 0)
	ectx2.Seed = &seed
	st2, err := env.Reset(ectx2)
	require.NoError(t, err)

	require.Equal(t, st1.Hash(), st2.Hash())
}

func TestResetLogsMode(t *testing.T) {
	env := newTestEnv(t, dynamicConfig())
	ectx := types.NewEpisodeContext(0, 0)
	_, err := env.Reset(ectx)
	require.NoError(t, err)
	require.Equal(t, "2v2", ectx.Report.Logs["mode"])
}

func TestReconfigureClearsAccounting(t *testing.T) {
	env := newTestEnv(t, dynamicConfig())
	_, err := env.Reset(nil)
	require.NoError(t, err)
	_, err = env.Step(zeroAction(1), nil)
	require.NoError(t, err)

	solo := config.Defaults()
	solo.TeamSize = config.IntList{1}
	solo.SpawnOpponents = config.BoolList{false}
	st, err := env.ResetWithOptions(solo, nil)
	require.NoError(t, err)
	require.NotNil(t, st)

	require.Equal(t, config.Mode{SpawnOpponents: false, TeamSize: 1}, env.Mode())
	steps := env.ModeSteps()
	require.Len(t, steps, 1)
	require.Equal(t, 0, steps[config.Mode{SpawnOpponents: false, TeamSize: 1}])

	// the rebuilt config validates too
	bad := config.Defaults()
	bad.TeamSize = config.IntList{0}
	require.Error(t, env.Reconfigure(bad))
}

func TestReconfigureRunsRegularSelection(t *testing.T) {
	env := newTestEnv(t, dynamicConfig())
	_, err := env.Reset(nil)
	require.NoError(t, err)
	require.Equal(t, config.Mode{SpawnOpponents: true, TeamSize: 2}, env.Mode())

	// after a rebuild the min-step selection runs over the cleared
	// counters, it does not force the largest mode again
	_, err = env.ResetWithOptions(dynamicConfig(), nil)
	require.NoError(t, err)
	require.Equal(t, config.Mode{SpawnOpponents: false, TeamSize: 1}, env.Mode())
}

func TestNewKeepsCallerConfig(t *testing.T) {
	cfg := &config.EnvConfig{TeamSize: config.IntList{2}}
	env, err := New(cfg, backend.NewHeadless(1))
	require.NoError(t, err)
	defer env.Close()

	// the bridge normalizes a copy, not the caller's value
	require.Equal(t, 0, cfg.TickSkip)
	require.Nil(t, cfg.SpawnOpponents)

	update := &config.EnvConfig{TeamSize: config.IntList{1}}
	require.NoError(t, env.Reconfigure(update))
	require.Equal(t, 0, update.TickSkip)
	require.Nil(t, update.SpawnOpponents)
}

func TestClosedEnv(t *testing.T) {
	env := newTestEnv(t, dynamicConfig())
	require.NoError(t, env.Close())

	_, err := env.Reset(nil)
	require.ErrorIs(t, err, ErrClosed)
	_, err = env.Step(zeroAction(1), nil)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, env.Reconfigure(config.Defaults()), ErrClosed)
	require.NoError(t, env.Close())
}
