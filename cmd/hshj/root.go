package main

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var timeoutFlag time.Duration

	ctx := newCommandContext(&configFlag, &logLevelFlag, &timeoutFlag)

	rootCmd := &cobra.Command{
		Use:           "hshj",
		Short:         "Locate the 魂兽幻境 entry in a screenshot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "Settings.ini", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 30*time.Second, "Maximum time to wait for a cycle to settle")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newFileCommand(ctx))
	rootCmd.AddCommand(newProfilesCommand(ctx))

	return rootCmd
}
