package main

import (
	"context"
	"fmt"
	"io"

	"jordanella.com/hshj-locator/internal/app"
	"jordanella.com/hshj-locator/internal/coordinator"
	"jordanella.com/hshj-locator/internal/cv"
	"jordanella.com/hshj-locator/internal/preview"
)

// runCycle captures target once, waits for every slot and prints the
// result table. The annotated preview is written to savePath if set.
func runCycle(ctx context.Context, a *app.App, target cv.Target, savePath string, out io.Writer) error {
	epoch, err := a.Coordinator.StartCycle(target)
	if err != nil {
		return fmt.Errorf("capture %s: %w", target, err)
	}

	state, err := a.Coordinator.Wait(ctx, epoch)
	if err != nil {
		return fmt.Errorf("cycle %d: %w", epoch, err)
	}

	fmt.Fprintln(out, renderCycle(state))

	if savePath != "" {
		img := a.Renderer.Render(state.Frame, state.Point(), state.FastBox(), state.AccurateBox())
		if err := preview.Save(img, savePath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Preview saved to %s\n", savePath)
	}
	return nil
}

func renderCycle(state coordinator.CycleState) string {
	summaries := state.Summaries()
	rows := make([][]string, 0, len(coordinator.Slots)+1)
	for _, slot := range coordinator.Slots {
		rows = append(rows, []string{string(slot), slotStatus(state, slot), summaries[string(slot)]})
	}

	size := "-"
	if state.Frame != nil {
		size = fmt.Sprintf("%dx%d", state.Frame.Width(), state.Frame.Height())
	}
	rows = append(rows, []string{"frame", size, fmt.Sprintf("epoch %d  %s", state.Epoch, state.Fingerprint)})

	return renderTable([]string{"Slot", "Status", "Result"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft})
}

func slotStatus(state coordinator.CycleState, slot coordinator.Slot) string {
	switch slot {
	case coordinator.SlotTemplate:
		if state.Template == nil {
			return "pending"
		}
		if state.Template.Found {
			return fmt.Sprintf("found x%.2f", state.Template.Scale)
		}
	case coordinator.SlotFast:
		if state.Fast == nil {
			return "pending"
		}
		if state.Fast.Found {
			return "found (" + state.Fast.Pass + ")"
		}
	case coordinator.SlotAccurate:
		if state.Accurate == nil {
			return "pending"
		}
		if state.Accurate.Found {
			return "found (" + state.Accurate.Pass + ")"
		}
	}
	return "not found"
}
