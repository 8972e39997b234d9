package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"jordanella.com/hshj-locator/internal/cv"
	"jordanella.com/hshj-locator/internal/picker"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var display int
	var window string
	var pick bool
	var save string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Capture a window or display and locate the entry",
		Long: `Capture the target once, run template matching and both OCR passes,
and print one row per result.

Examples:
  hshj run                          # Primary display
  hshj run --display 1              # Second display
  hshj run --window 0x1A2B3C        # Window by handle
  hshj run --pick --save out.png    # Click a window, save annotated preview`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.openApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			runCtx, cancel := context.WithTimeout(cmd.Context(), ctx.timeout())
			defer cancel()

			var target cv.Target
			switch {
			case pick:
				session := picker.NewSession(picker.Options{Display: display}, a.Bus, a.Logger.Named("picker"))
				defer session.Close()
				fmt.Fprintln(cmd.ErrOrStderr(), "Click the target window...")
				target, err = session.Pick(runCtx)
				if err != nil {
					return fmt.Errorf("pick target: %w", err)
				}
			case window != "":
				handle, err := parseHandle(window)
				if err != nil {
					return err
				}
				target = cv.WindowTarget(handle, "")
			default:
				target = cv.DisplayTarget(display)
			}

			return runCycle(runCtx, a, target, save, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&display, "display", 0, "Display index to capture")
	cmd.Flags().StringVar(&window, "window", "", "Window handle (decimal or 0x hex)")
	cmd.Flags().BoolVar(&pick, "pick", false, "Select the window by clicking it")
	cmd.Flags().StringVar(&save, "save", "", "Write the annotated preview to this path (.png, .jpg, .webp)")
	cmd.MarkFlagsMutuallyExclusive("window", "pick")

	return cmd
}

func parseHandle(value string) (uintptr, error) {
	handle, err := strconv.ParseUint(strings.TrimSpace(value), 0, 64)
	if err != nil || handle == 0 {
		return 0, fmt.Errorf("invalid window handle %q", value)
	}
	return uintptr(handle), nil
}
