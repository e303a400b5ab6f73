package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	episodes int
	horizon  int
	savePath string
	seed     int64
	verbose  bool
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "envbridge",
		Short: "Bridge declarative environment configs to gym-style environments",
	}
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 100, "Number of episodes to run")
	rootCommand.PersistentFlags().IntVar(&horizon, "horizon", 500, "Horizon of each episode")
	rootCommand.PersistentFlags().StringVarP(&savePath, "save", "s", "results", "Folder to store the results")
	rootCommand.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for the backend and the policies")
	rootCommand.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	// adding the subcommands here
	rootCommand.AddCommand(ValidateCommand())
	rootCommand.AddCommand(RolloutCommand())
	rootCommand.AddCommand(ModesCommand())
	return rootCommand
}

func newLogger() *zap.Logger {
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		return logger
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
