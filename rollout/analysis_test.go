package rollout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nexus-rl/envbridge/types"
)

func countingTrace(steps int) *types.Trace {
	trace := types.NewTrace()
	for i := 0; i < steps; i++ {
		trace.Append(&fakeState{n: i}, types.VecAction{0}, &types.StepResult{
			State:  &fakeState{n: i + 1},
			Reward: 1,
			Info: map[string]interface{}{
				"mode":   "1v1",
				"agents": 2,
			},
		})
	}
	return trace
}

func TestCoverageAnalyzer(t *testing.T) {
	c := NewCoverageAnalyzer()

	// 3 transitions over the states s0..s3
	c.Analyze(0, "run", countingTrace(3))
	require.Equal(t, []int{4}, c.DataSet())

	// the same states again add nothing
	c.Analyze(1, "run", countingTrace(3))
	require.Equal(t, []int{4, 4}, c.DataSet())

	// a longer episode discovers one new state
	c.Analyze(2, "run", countingTrace(4))
	require.Equal(t, []int{4, 4, 5}, c.DataSet())

	c.Reset()
	require.Equal(t, []int{}, c.DataSet())
}

func TestEpisodeLengthAnalyzer(t *testing.T) {
	e := NewEpisodeLengthAnalyzer()
	e.Analyze(0, "run", countingTrace(3))
	e.Analyze(1, "run", countingTrace(7))
	require.Equal(t, []int{3, 7}, e.DataSet())

	e.Reset()
	require.Equal(t, []int{}, e.DataSet())
}

func TestModeBalanceAnalyzer(t *testing.T) {
	m := NewModeBalanceAnalyzer()
	m.Analyze(0, "run", countingTrace(5))

	trace := types.NewTrace()
	trace.Append(&fakeState{n: 0}, types.VecAction{0}, &types.StepResult{
		State: &fakeState{n: 1},
		Info: map[string]interface{}{
			"mode":   "2v2",
			"agents": 4,
		},
	})
	// steps without mode info are skipped
	trace.Append(&fakeState{n: 1}, types.VecAction{0}, &types.StepResult{
		State: &fakeState{n: 2},
	})
	m.Analyze(1, "run", trace)

	require.Equal(t, map[string]int{"1v1": 10, "2v2": 4}, m.DataSet())
	require.Equal(t, "1v1: 10 agent-steps\n2v2: 4 agent-steps\n", m.String())
}
