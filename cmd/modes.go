package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexus-rl/envbridge/backend"
	"github.com/nexus-rl/envbridge/bridge"
	"github.com/nexus-rl/envbridge/config"
	"github.com/nexus-rl/envbridge/policies"
)

func ModesCommand() *cobra.Command {
	var resets int
	var stepsPerReset int

	cmd := &cobra.Command{
		Use:   "modes <config>",
		Short: "Print the game-mode schedule the dynamic selection produces",
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

			policy := policies.NewRandom(seed)
			space := env.ActionSpace()

			for i := 0; i < resets; i++ {
				st, err := env.Reset(nil)
				if err != nil {
					return err
				}
				fmt.Printf("reset %3d: mode %s\n", i, env.Mode())
				for j := 0; j < stepsPerReset; j++ {
					action, ok := policy.NextAction(j, st, space)
					if !ok {
						break
					}
					result, err := env.Step(action, nil)
					if err != nil {
						return err
					}
					st = result.State
					if result.Terminated {
						break
					}
				}
			}

			fmt.Println("agent-steps per mode:")
			for mode, steps := range env.ModeSteps() {
				fmt.Printf("  %s: %d\n", mode, steps)
			}
			return nil
		},
	}
	cmd.PersistentFlags().IntVar(&resets, "resets", 20, "Number of resets to simulate")
	cmd.PersistentFlags().IntVar(&stepsPerReset, "steps-per-reset", 10, "Steps taken after each reset")
	return cmd
}
