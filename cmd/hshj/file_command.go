package main

import (
	"context"

	"github.com/spf13/cobra"

	"jordanella.com/hshj-locator/internal/cv"
)

func newFileCommand(ctx *commandContext) *cobra.Command {
	var save string

	cmd := &cobra.Command{
		Use:   "file <screenshot>",
		Short: "Locate the entry in a saved screenshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.openApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			runCtx, cancel := context.WithTimeout(cmd.Context(), ctx.timeout())
			defer cancel()

			return runCycle(runCtx, a, cv.FileTarget(args[0]), save, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&save, "save", "", "Write the annotated preview to this path (.png, .jpg, .webp)")
	return cmd
}
