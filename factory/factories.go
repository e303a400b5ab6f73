package factory

import (
	"fmt"

	"github.com/nexus-rl/envbridge/components"
	"github.com/nexus-rl/envbridge/config"
)

// The five registries mirror the component kinds of the environment
// configuration. The stock components register themselves here.
var (
	Rewards   = NewRegistry[components.RewardFunction]("reward function")
	Terminals = NewRegistry[components.TerminalCondition]("terminal condition")
	Obs       = NewRegistry[components.ObsBuilder]("obs builder")
	Actions   = NewRegistry[components.ActionParser]("action parser")
	Setters   = NewRegistry[components.StateSetter]("state setter")
)

func init() {
	Rewards.Register("default", func(_ map[string]interface{}) (components.RewardFunction, error) {
		return components.NewDefaultReward(), nil
	})
	Rewards.Register("event", func(p map[string]interface{}) (components.RewardFunction, error) {
		return components.NewEventReward(
			floatParam(p, "goal", 100),
			floatParam(p, "concede", -100),
			floatParam(p, "touch", 1),
			floatParam(p, "shot", 5),
			floatParam(p, "save", 30),
		), nil
	})
	Rewards.Register("velocity_player_to_ball", func(_ map[string]interface{}) (components.RewardFunction, error) {
		return components.NewVelocityPlayerToBallReward(), nil
	})
	Rewards.Register("combined", buildCombinedReward)

	Terminals.Register("timeout", func(p map[string]interface{}) (components.TerminalCondition, error) {
		return components.NewTimeoutCondition(intParam(p, "max_steps", components.DefaultTimeoutSteps)), nil
	})
	Terminals.Register("goal_scored", func(_ map[string]interface{}) (components.TerminalCondition, error) {
		return components.NewGoalScoredCondition(), nil
	})
	Terminals.Register("no_touch_timeout", func(p map[string]interface{}) (components.TerminalCondition, error) {
		return components.NewNoTouchTimeoutCondition(intParam(p, "max_steps", components.DefaultTimeoutSteps)), nil
	})

	Obs.Register("default", func(_ map[string]interface{}) (components.ObsBuilder, error) {
		return components.NewDefaultObs(), nil
	})
	Obs.Register("padded", func(p map[string]interface{}) (components.ObsBuilder, error) {
		return components.NewPaddedObs(intParam(p, "max_players", 6)), nil
	})

	Actions.Register("discrete", func(p map[string]interface{}) (components.ActionParser, error) {
		return components.NewDiscreteAction(intParam(p, "bins", 3)), nil
	})
	Actions.Register("continuous", func(_ map[string]interface{}) (components.ActionParser, error) {
		return components.NewContinuousAction(), nil
	})

	Setters.Register("default", func(_ map[string]interface{}) (components.StateSetter, error) {
		return components.NewDefaultState(), nil
	})
	Setters.Register("random", func(_ map[string]interface{}) (components.StateSetter, error) {
		return components.NewRandomState(), nil
	})
}

func buildCombinedReward(p map[string]interface{}) (components.RewardFunction, error) {
	rawFuncs, ok := p["functions"].([]interface{})
	if !ok || len(rawFuncs) == 0 {
		return nil, fmt.Errorf("combined reward: a functions list is required")
	}
	funcs := make([]components.RewardFunction, 0, len(rawFuncs))
	for _, rf := range rawFuncs {
		spec, err := specFromValue(rf)
		if err != nil {
			return nil, err
		}
		f, err := Rewards.Build(spec)
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, f)
	}
	weights := floatsParam(p, "weights")
	if weights == nil {
		weights = make([]float64, len(funcs))
		for i := range weights {
			weights[i] = 1
		}
	}
	return components.NewCombinedReward(funcs, weights)
}

// Bundle is the resolved set of components for one environment config.
type Bundle struct {
	Reward    components.RewardFunction
	Terminals []components.TerminalCondition
	Obs       components.ObsBuilder
	Parser    components.ActionParser
	Setter    components.StateSetter
}

// default specs applied when a config leaves a component out
var (
	defaultRewardSpec = config.ComponentSpec{Name: "default"}
	defaultObsSpec    = config.ComponentSpec{Name: "default"}
	defaultParserSpec = config.ComponentSpec{Name: "discrete"}
	defaultSetterSpec = config.ComponentSpec{Name: "default"}
)

func defaultTerminalSpecs() []config.ComponentSpec {
	return []config.ComponentSpec{
		{Name: "timeout", Params: map[string]interface{}{"max_steps": components.DefaultTimeoutSteps}},
		{Name: "goal_scored"},
	}
}

// BuildComponents resolves the component specs of a config into concrete
// instances, applying the stock defaults for every omitted spec.
func BuildComponents(cfg *config.EnvConfig) (*Bundle, error) {
	b := &Bundle{}
	var err error

	if b.Reward, err = Rewards.Build(specOr(cfg.RewardFunction, defaultRewardSpec)); err != nil {
		return nil, err
	}

	termSpecs := cfg.TerminalConditions
	if len(termSpecs) == 0 {
		termSpecs = defaultTerminalSpecs()
	}
	b.Terminals = make([]components.TerminalCondition, 0, len(termSpecs))
	for _, spec := range termSpecs {
		tc, err := Terminals.Build(spec)
		if err != nil {
			return nil, err
		}
		b.Terminals = append(b.Terminals, tc)
	}

	if b.Obs, err = Obs.Build(specOr(cfg.ObsBuilder, defaultObsSpec)); err != nil {
		return nil, err
	}
	if b.Parser, err = Actions.Build(specOr(cfg.ActionParser, defaultParserSpec)); err != nil {
		return nil, err
	}
	if b.Setter, err = Setters.Build(specOr(cfg.StateSetter, defaultSetterSpec)); err != nil {
		return nil, err
	}
	return b, nil
}

func specOr(spec *config.ComponentSpec, def config.ComponentSpec) config.ComponentSpec {
	if spec == nil || spec.Name == "" {
		return def
	}
	return *spec
}
