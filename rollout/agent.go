package rollout

import (
	"fmt"

	"github.com/nexus-rl/envbridge/types"
)

// Agent runs a policy against an environment, one episode at a time.
type Agent struct {
	env     types.Environment
	policy  types.Policy
	horizon int
}

func NewAgent(env types.Environment, policy types.Policy, horizon int) *Agent {
	return &Agent{
		env:     env,
		policy:  policy,
		horizon: horizon,
	}
}

// RunEpisode plays a single episode, recording the trace and the outcome
// into the episode context.
func (a *Agent) RunEpisode(ectx *types.EpisodeContext) {
	st, err := a.env.Reset(ectx)
	if err != nil {
		ectx.SetError(fmt.Errorf("reset: %w", err))
		return
	}
	space := a.env.ActionSpace()

	for i := 0; i < a.horizon; i++ {
		select {
		case <-ectx.TimeoutContext.Done():
			ectx.TimedOut = true
			return
		default:
		}

		action, ok := a.policy.NextAction(i, st, space)
		if !ok {
			return
		}
		result, err := a.env.Step(action, ectx.StepContext(i))
		if err != nil {
			ectx.SetError(fmt.Errorf("step %d: %w", i, err))
			return
		}
		a.policy.Update(i, st, action, result)
		ectx.Trace.Append(st, action, result)
		ectx.Timesteps++

		st = result.State
		if result.Terminated || result.Truncated {
			return
		}
	}
	ectx.HorizonEnd = true
}
