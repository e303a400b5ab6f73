package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nexus-rl/envbridge/backend"
	"github.com/nexus-rl/envbridge/bridge"
	"github.com/nexus-rl/envbridge/config"
	"github.com/nexus-rl/envbridge/policies"
	"github.com/nexus-rl/envbridge/rollout"
	"github.com/nexus-rl/envbridge/types"
)

func RolloutCommand() *cobra.Command {
	var policyName string
	var watch bool
	var recordTraces bool
	var plots bool

	cmd := &cobra.Command{
		Use:   "rollout <config>",
		Short: "Run rollout episodes of a configured environment on the headless backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			defer logger.Sync()

			cfg, err := config.Load(args[0], logger)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			env, err := bridge.New(cfg, backend.NewHeadless(seed),
				bridge.WithLogger(logger), bridge.WithSeed(seed))
			if err != nil {
				return err
			}
			defer env.Close()

			policy, err := buildPolicy(policyName)
			if err != nil {
				return err
			}

			coverage := rollout.NewCoverageAnalyzer()
			lengths := rollout.NewEpisodeLengthAnalyzer()
			modes := rollout.NewModeBalanceAnalyzer()
			runner := rollout.NewRunner(policyName, policy, env,
				rollout.WithLogger(logger),
				rollout.WithAnalyzer(coverage),
				rollout.WithAnalyzer(lengths),
				rollout.WithAnalyzer(modes))

			rcfg := &rollout.RunConfig{
				Episodes:                 episodes,
				Horizon:                  horizon,
				EpisodeTimeout:           30 * time.Second,
				Context:                  cmd.Context(),
				ConsecutiveTimeoutsAbort: 5,
				ConsecutiveErrorsAbort:   10,
				RecordTraces:             recordTraces,
				SavePath:                 savePath,
			}

			if watch {
				watcher, err := config.Watch(args[0], logger)
				if err != nil {
					return err
				}
				defer watcher.Close()
				rcfg.EpisodeHook = func(episode int) {
					select {
					case newCfg := <-watcher.Updates():
						if err := env.Reconfigure(newCfg); err != nil {
							logger.Warn("reconfigure failed",
								zap.Int("episode", episode), zap.Error(err))
						}
					default:
					}
				}
			}

			stats, err := runner.Run(rcfg)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", policyName, stats)
			fmt.Printf("mode balance:\n%s", modes)

			if plots {
				names := []string{policyName}
				rollout.CoveragePlotter(savePath)(names, []rollout.DataSet{coverage.DataSet()})
				rollout.EpisodeLengthPlotter(savePath)(names, []rollout.DataSet{lengths.DataSet()})
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&policyName, "policy", "p", "random", "Policy to roll out (random, softmax, greedy)")
	cmd.PersistentFlags().BoolVar(&watch, "watch", false, "Watch the config file and apply updates between episodes")
	cmd.PersistentFlags().BoolVar(&recordTraces, "record-traces", false, "Append the episode traces to a jsonl file")
	cmd.PersistentFlags().BoolVar(&plots, "plots", false, "Save coverage and episode length plots")
	return cmd
}

func buildPolicy(name string) (types.Policy, error) {
	switch name {
	case "random":
		return policies.NewRandom(seed), nil
	case "softmax":
		return policies.NewSoftmax(0.3, 0.7, seed), nil
	case "greedy":
		return policies.NewEpsilonGreedy(0.1, 0.99, 0.05, seed), nil
	}
	return nil, fmt.Errorf("unknown policy %q", name)
}
