package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag, logLevelFlag, logFormatFlag string
	var devFlag bool

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag, &devFlag)

	rootCmd := &cobra.Command{
		Use:           "fanlog",
		Short:         "Dispatch structured log records to configured transports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Level for fanlog's own output (overrides logging.level)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Format for fanlog's own output: console or json")
	rootCmd.PersistentFlags().BoolVar(&devFlag, "dev", false, "Include source locations in fanlog's own output")

	rootCmd.AddCommand(newEmitCommand(ctx))
	rootCmd.AddCommand(newTransportsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
