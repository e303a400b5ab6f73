package factory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nexus-rl/envbridge/components"
	"github.com/nexus-rl/envbridge/config"
)

func TestBuildUnknownComponent(t *testing.T) {
	_, err := Rewards.Build(config.ComponentSpec{Name: "does_not_exist"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownComponent))
	require.Contains(t, err.Error(), "does_not_exist")
}

func TestRegistryNames(t *testing.T) {
	names := Terminals.Names()
	require.Contains(t, names, "timeout")
	require.Contains(t, names, "goal_scored")
	require.Contains(t, names, "no_touch_timeout")
}

func TestBuildComponentsDefaults(t *testing.T) {
	bundle, err := BuildComponents(config.Defaults())
	require.NoError(t, err)

	require.IsType(t, &components.DefaultReward{}, bundle.Reward)
	require.IsType(t, &components.DefaultObs{}, bundle.Obs)
	require.IsType(t, &components.DiscreteAction{}, bundle.Parser)
	require.IsType(t, &components.DefaultState{}, bundle.Setter)

	require.Len(t, bundle.Terminals, 2)
	timeout, ok := bundle.Terminals[0].(*components.TimeoutCondition)
	require.True(t, ok)
	require.Equal(t, components.DefaultTimeoutSteps, timeout.MaxSteps)
	require.IsType(t, &components.GoalScoredCondition{}, bundle.Terminals[1])
}

func TestBuildComponentsFromSpecs(t *testing.T) {
	cfg := config.Defaults()
	cfg.RewardFunction = &config.ComponentSpec{
		Name: "event",
		Params: map[string]interface{}{
			"goal":  10.0,
			"touch": 0.5,
		},
	}
	cfg.TerminalConditions = []config.ComponentSpec{
		{Name: "timeout", Params: map[string]interface{}{"max_steps": 50}},
	}
	cfg.ActionParser = &config.ComponentSpec{Name: "continuous"}

	bundle, err := BuildComponents(cfg)
	require.NoError(t, err)

	event, ok := bundle.Reward.(*components.EventReward)
	require.True(t, ok)
	require.Equal(t, 10.0, event.Goal)
	require.Equal(t, 0.5, event.Touch)
	// omitted params keep their defaults
	require.Equal(t, -100.0, event.Concede)

	timeout, ok := bundle.Terminals[0].(*components.TimeoutCondition)
	require.True(t, ok)
	require.Equal(t, 50, timeout.MaxSteps)

	require.IsType(t, &components.ContinuousAction{}, bundle.Parser)
}

func TestBuildCombinedReward(t *testing.T) {
	spec := config.ComponentSpec{
		Name: "combined",
		Params: map[string]interface{}{
			"functions": []interface{}{
				"velocity_player_to_ball",
				map[string]interface{}{
					"name":   "event",
					"params": map[string]interface{}{"goal": 1.0},
				},
			},
			"weights": []interface{}{0.1, 1.0},
		},
	}
	reward, err := Rewards.Build(spec)
	require.NoError(t, err)
	require.IsType(t, &components.CombinedReward{}, reward)
}

func TestBuildCombinedRewardErrors(t *testing.T) {
	_, err := Rewards.Build(config.ComponentSpec{Name: "combined"})
	require.Error(t, err)

	_, err = Rewards.Build(config.ComponentSpec{
		Name: "combined",
		Params: map[string]interface{}{
			"functions": []interface{}{"nope"},
		},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownComponent))
}
