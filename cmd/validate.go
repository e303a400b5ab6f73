package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexus-rl/envbridge/config"
	"github.com/nexus-rl/envbridge/factory"
	"github.com/nexus-rl/envbridge/types"
)

func ValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Parse and validate an environment config file",
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
			bundle, err := factory.BuildComponents(cfg)
			if err != nil {
				return fmt.Errorf("invalid components: %w", err)
			}

			maxMode := cfg.MaxMode()
			fmt.Printf("config ok: %s\n", args[0])
			fmt.Printf("modes:")
			for _, m := range cfg.Modes() {
				fmt.Printf(" %s", m)
			}
			fmt.Println("")
			fmt.Printf("action space width:      %d\n", types.Width(bundle.Parser.Space()))
			fmt.Printf("observation space width: %d\n", types.Width(bundle.Obs.Space(maxMode.Agents())))
			fmt.Printf("terminal conditions:     %d\n", len(bundle.Terminals))
			if cfg.Dynamic() {
				fmt.Println("dynamic mode selection:  on")
			}
			return nil
		},
	}
	return cmd
}
