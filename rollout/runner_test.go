package rollout

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nexus-rl/envbridge/types"
)

// fake environment counting up through integer states
type fakeState struct {
	n int
}

func (s *fakeState) Hash() string   { return fmt.Sprintf("s%d", s.n) }
func (s *fakeState) Obs() []float64 { return []float64{float64(s.n)} }

type fakeEnv struct {
	n           int
	terminateAt int
	failAt      int
	resets      int
	steps       int
}

func (e *fakeEnv) Reset(_ *types.EpisodeContext) (types.State, error) {
	e.resets++
	e.n = 0
	return &fakeState{n: 0}, nil
}

func (e *fakeEnv) Step(_ types.Action, _ *types.StepContext) (*types.StepResult, error) {
	e.steps++
	if e.failAt > 0 && e.steps >= e.failAt {
		return nil, fmt.Errorf("backend gone")
	}
	e.n++
	return &types.StepResult{
		State:      &fakeState{n: e.n},
		Reward:     1,
		Terminated: e.terminateAt > 0 && e.n >= e.terminateAt,
		Info: map[string]interface{}{
			"mode":   "1v1",
			"agents": 2,
		},
	}, nil
}

func (e *fakeEnv) ObservationSpace() types.Space { return types.NewBox(0, 1000, 1) }
func (e *fakeEnv) ActionSpace() types.Space      { return types.NewDiscrete(2) }
func (e *fakeEnv) Close() error                  { return nil }

type fakePolicy struct{}

func (p *fakePolicy) NextAction(_ int, _ types.State, _ types.Space) (types.Action, bool) {
	return types.VecAction{0}, true
}
func (p *fakePolicy) Update(_ int, _ types.State, _ types.Action, _ *types.StepResult) {}
func (p *fakePolicy) UpdateEpisode(_ int, _ *types.Trace)                              {}
func (p *fakePolicy) Reset()                                                           {}

func TestRunTerminatedEpisodes(t *testing.T) {
	env := &fakeEnv{terminateAt: 3}
	runner := NewRunner("test", &fakePolicy{}, env)

	stats, err := runner.Run(&RunConfig{Episodes: 5, Horizon: 10})
	require.NoError(t, err)

	require.Equal(t, 5, stats.Episodes)
	require.Equal(t, 5, stats.ValidEpisodes)
	require.Equal(t, 5, stats.Terminated)
	require.Equal(t, 0, stats.HorizonEnds)
	require.Equal(t, 15, stats.Timesteps)
	require.Equal(t, 15.0, stats.TotalReward)
	require.Equal(t, 5, env.resets)
}

func TestRunHorizonEnds(t *testing.T) {
	env := &fakeEnv{}
	runner := NewRunner("test", &fakePolicy{}, env)

	stats, err := runner.Run(&RunConfig{Episodes: 2, Horizon: 4})
	require.NoError(t, err)

	require.Equal(t, 2, stats.HorizonEnds)
	require.Equal(t, 0, stats.Terminated)
	require.Equal(t, 8, stats.Timesteps)
}

func TestRunAbortsOnConsecutiveErrors(t *testing.T) {
	env := &fakeEnv{failAt: 1}
	runner := NewRunner("test", &fakePolicy{}, env)

	stats, err := runner.Run(&RunConfig{
		Episodes:               10,
		Horizon:                5,
		ConsecutiveErrorsAbort: 3,
	})
	require.NoError(t, err)
	require.Equal(t, 3, stats.Episodes)
	require.Equal(t, 3, stats.Errors)
	require.Equal(t, 0, stats.ValidEpisodes)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := &fakeEnv{terminateAt: 2}
	runner := NewRunner("test", &fakePolicy{}, env)
	stats, err := runner.Run(&RunConfig{Episodes: 10, Horizon: 5, Context: ctx})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, stats.Episodes)
}

func TestRunEpisodeHook(t *testing.T) {
	env := &fakeEnv{terminateAt: 1}
	runner := NewRunner("test", &fakePolicy{}, env)

	seen := make([]int, 0)
	_, err := runner.Run(&RunConfig{
		Episodes: 3,
		Horizon:  5,
		EpisodeHook: func(episode int) {
			seen = append(seen, episode)
		},
	})
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, seen)
}

func TestRunRecordsTraces(t *testing.T) {
	dir := t.TempDir()
	env := &fakeEnv{terminateAt: 2}
	runner := NewRunner("rec", &fakePolicy{}, env)

	_, err := runner.Run(&RunConfig{
		Episodes:     3,
		Horizon:      5,
		RecordTraces: true,
		SavePath:     dir,
	})
	require.NoError(t, err)

	bs, err := os.ReadFile(path.Join(dir, "traces", "rec.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(bs)), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], `"state":"s0"`)
}
