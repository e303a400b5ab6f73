package rollout

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/nexus-rl/envbridge/types"
	"github.com/nexus-rl/envbridge/util"
)

// RunConfig controls a rollout run.
type RunConfig struct {
	Episodes       int
	Horizon        int
	EpisodeTimeout time.Duration
	Context        context.Context

	// thresholds to abort the run, zero disables the check
	ConsecutiveTimeoutsAbort int
	ConsecutiveErrorsAbort   int

	RecordTraces bool
	SavePath     string

	// EpisodeHook runs between episodes, after analyzers and policy
	// updates. The rollout command uses it to apply config updates.
	EpisodeHook func(episode int)
}

// Stats of a completed run.
type Stats struct {
	Episodes      int
	ValidEpisodes int
	Timesteps     int
	Timeouts      int
	Errors        int
	HorizonEnds   int
	Terminated    int
	TotalReward   float64
}

func (s *Stats) String() string {
	return fmt.Sprintf("episodes:%d valid:%d timesteps:%d terminated:%d horizon:%d timeouts:%d errors:%d reward:%.2f",
		s.Episodes, s.ValidEpisodes, s.Timesteps, s.Terminated, s.HorizonEnds, s.Timeouts, s.Errors, s.TotalReward)
}

// Runner executes the episodes of a named policy/environment pair and
// feeds every trace to the registered analyzers.
type Runner struct {
	Name      string
	env       types.Environment
	policy    types.Policy
	analyzers []Analyzer
	logger    *zap.Logger
}

type RunnerOption func(*Runner)

func WithAnalyzer(a Analyzer) RunnerOption {
	return func(r *Runner) {
		r.analyzers = append(r.analyzers, a)
	}
}

func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRunner(name string, policy types.Policy, env types.Environment, opts ...RunnerOption) *Runner {
	r := &Runner{
		Name:      name,
		env:       env,
		policy:    policy,
		analyzers: make([]Analyzer, 0),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run the configured number of episodes. The returned stats cover the
// episodes that executed, also when the run aborts early.
func (r *Runner) Run(rcfg *RunConfig) (*Stats, error) {
	ctx := rcfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	agent := NewAgent(r.env, r.policy, rcfg.Horizon)
	stats := &Stats{}
	consecutiveTimeouts := 0
	consecutiveErrors := 0

	for episode := 0; episode < rcfg.Episodes; episode++ {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		ectx := types.NewEpisodeContext(episode, rcfg.EpisodeTimeout)
		start := time.Now()
		r.runEpisode(ectx, agent)
		ectx.RunDuration = time.Since(start)
		ectx.Cancel()

		stats.Episodes++
		stats.Timesteps += ectx.Timesteps
		stats.TotalReward += ectx.Trace.TotalReward()

		if ectx.TimedOut {
			stats.Timeouts++
			consecutiveTimeouts++
		} else {
			consecutiveTimeouts = 0
		}
		if ectx.Err != nil {
			stats.Errors++
			consecutiveErrors++
			r.logger.Warn("episode failed",
				zap.String("run", r.Name),
				zap.Int("episode", episode),
				zap.Error(ectx.Err))
		} else {
			consecutiveErrors = 0
		}
		if !ectx.TimedOut && ectx.Err == nil {
			stats.ValidEpisodes++
			if ectx.HorizonEnd {
				stats.HorizonEnds++
			} else {
				stats.Terminated++
			}
		}

		// analyze the trace, even when the episode timed out or failed
		for _, a := range r.analyzers {
			a.Analyze(episode, r.Name, ectx.Trace)
		}
		r.policy.UpdateEpisode(episode, ectx.Trace)

		if rcfg.RecordTraces {
			if err := r.recordTrace(rcfg, ectx.Trace); err != nil {
				r.logger.Warn("recording trace", zap.Error(err))
			}
		}
		if rcfg.EpisodeHook != nil {
			rcfg.EpisodeHook(episode)
		}

		if rcfg.ConsecutiveTimeoutsAbort > 0 && consecutiveTimeouts >= rcfg.ConsecutiveTimeoutsAbort {
			r.logger.Warn("aborting run",
				zap.String("run", r.Name),
				zap.Int("consecutive_timeouts", consecutiveTimeouts))
			break
		}
		if rcfg.ConsecutiveErrorsAbort > 0 && consecutiveErrors >= rcfg.ConsecutiveErrorsAbort {
			r.logger.Warn("aborting run",
				zap.String("run", r.Name),
				zap.Int("consecutive_errors", consecutiveErrors))
			break
		}
	}
	return stats, nil
}

func (r *Runner) runEpisode(ectx *types.EpisodeContext, agent *Agent) {
	defer func() {
		if rec := recover(); rec != nil {
			ectx.SetError(fmt.Errorf("episode panic: %v", rec))
		}
	}()
	agent.RunEpisode(ectx)
}

func (r *Runner) recordTrace(rcfg *RunConfig, trace *types.Trace) error {
	bs, err := json.Marshal(trace)
	if err != nil {
		return err
	}
	tracesFile := path.Join(rcfg.SavePath, "traces", r.Name+".jsonl")
	return util.AppendToFile(tracesFile, string(bs))
}
