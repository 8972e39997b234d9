package gui

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"jordanella.com/hshj-locator/internal/app"
	"jordanella.com/hshj-locator/internal/coordinator"
	"jordanella.com/hshj-locator/internal/cv"
	"jordanella.com/hshj-locator/internal/events"
	"jordanella.com/hshj-locator/internal/picker"
	"jordanella.com/hshj-locator/internal/preview"
)

// Controller owns the locator window. Pipeline events reach it only
// through the UIQueue; it never blocks the Fyne thread on recognition.
type Controller struct {
	app     *app.App
	fyneApp fyne.App
	window  fyne.Window
	picker  *picker.Session
	queue   *UIQueue

	// Selected target and newest epoch seen
	mu       sync.Mutex
	target   cv.Target
	epoch    uint64
	lastShot *events.DisplayUpdate

	// Widgets
	handleLabel   *widget.Label
	statusLabel   *widget.Label
	matchLabel    *widget.Label
	fastLabel     *widget.Label
	accurateLabel *widget.Label
	previewImage  *canvas.Image
	pickBtn       *widget.Button
	runBtn        *widget.Button
	saveBtn       *widget.Button
	logPanel      *LogPanel
}

// NewController creates the window controller and hooks it to the bus
func NewController(a *app.App, fyneApp fyne.App, window fyne.Window) *Controller {
	c := &Controller{
		app:      a,
		fyneApp:  fyneApp,
		window:   window,
		picker:   picker.NewSession(picker.Options{}, a.Bus, a.Logger.Named("picker")),
		queue:    NewUIQueue(512),
		logPanel: NewLogPanel(),
	}

	c.queue.Handle(events.EventTypeLogLine, func(e events.Event) { c.logPanel.Append(events.LineFrom(e)) })
	c.queue.Handle(events.EventTypeTargetPicked, c.onTargetPicked)
	c.queue.Handle(events.EventTypeCycleStarted, c.onCycleStarted)
	c.queue.Handle(events.EventTypeCycleUpdated, c.onCycleUpdated)
	c.queue.Handle(events.EventTypeCycleSettled, c.onCycleUpdated)
	c.queue.Handle(events.EventTypeCycleFailed, c.onCycleFailed)
	c.queue.Attach(a.Bus)

	return c
}

// BuildUI constructs the main layout
func (c *Controller) BuildUI() fyne.CanvasObject {
	c.handleLabel = widget.NewLabel("句柄: 未选择")
	c.statusLabel = widget.NewLabel("就绪")
	c.matchLabel = widget.NewLabel("模板匹配坐标: -")
	c.fastLabel = widget.NewLabel("OCR[fast]坐标: -")
	c.accurateLabel = widget.NewLabel("OCR[accurate]坐标: -")

	c.pickBtn = widget.NewButtonWithIcon("选择窗口", theme.SearchIcon(), c.pickTarget)
	c.runBtn = widget.NewButtonWithIcon("执行魂兽幻境识别", theme.MediaPlayIcon(), c.runCycle)
	c.runBtn.Disable()
	c.saveBtn = widget.NewButtonWithIcon("保存预览", theme.DocumentSaveIcon(), c.saveSnapshot)
	c.saveBtn.Disable()

	c.previewImage = canvas.NewImageFromImage(nil)
	c.previewImage.FillMode = canvas.ImageFillContain
	c.previewImage.SetMinSize(fyne.NewSize(480, 270))

	controls := container.NewVBox(
		container.NewHBox(c.pickBtn, c.runBtn, c.saveBtn),
		c.handleLabel,
		c.statusLabel,
		widget.NewSeparator(),
		c.matchLabel,
		c.fastLabel,
		c.accurateLabel,
	)

	split := container.NewVSplit(c.previewImage, c.logPanel.Build())
	split.Offset = 0.6

	c.queue.Start()

	return container.NewBorder(controls, nil, nil, nil, split)
}

func (c *Controller) pickTarget() {
	c.pickBtn.Disable()
	c.statusLabel.SetText("请点击目标窗口...")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		target, err := c.picker.Pick(ctx)
		fyne.Do(func() {
			c.pickBtn.Enable()
			if err != nil {
				c.statusLabel.SetText(fmt.Sprintf("选择失败: %v", err))
				return
			}
			c.mu.Lock()
			c.target = target
			c.mu.Unlock()
			c.runBtn.Enable()
			c.statusLabel.SetText("就绪")
		})
	}()
}

func (c *Controller) runCycle() {
	c.mu.Lock()
	target := c.target
	c.mu.Unlock()

	if target.IsZero() {
		c.statusLabel.SetText("未选中窗口，无法执行")
		return
	}

	// capture blocks briefly; keep it off the Fyne thread
	go func() {
		if _, err := c.app.Coordinator.StartCycle(target); err != nil {
			c.app.Logger.Warn(fmt.Sprintf("Cycle not started: %v", err))
		}
	}()
}

func (c *Controller) saveSnapshot() {
	c.mu.Lock()
	shot := c.lastShot
	c.mu.Unlock()
	if shot == nil || shot.Preview == nil {
		return
	}

	name := fmt.Sprintf("hshj_%s_%d.png", time.Now().Format("20060102_150405"), shot.Epoch)
	path := filepath.Join(c.app.Config.SnapshotDir, name)
	if err := preview.Save(shot.Preview, path); err != nil {
		dialog.ShowError(err, c.window)
		return
	}
	c.app.Logger.Infof("Preview saved to %s", path)
}

func (c *Controller) onTargetPicked(e events.Event) {
	desc, _ := e.Data["target"].(string)
	c.handleLabel.SetText("句柄: " + desc)
}

func (c *Controller) onCycleStarted(e events.Event) {
	epoch, _ := e.Data["epoch"].(uint64)

	c.mu.Lock()
	if epoch < c.epoch {
		c.mu.Unlock()
		return
	}
	c.epoch = epoch
	c.mu.Unlock()

	c.statusLabel.SetText(fmt.Sprintf("识别中 (#%d, %vx%v)...", epoch, e.Data["width"], e.Data["height"]))
	c.matchLabel.SetText("模板匹配坐标: 等待中")
	c.fastLabel.SetText("OCR[fast]坐标: 等待中")
	c.accurateLabel.SetText("OCR[accurate]坐标: 等待中")
}

func (c *Controller) onCycleUpdated(e events.Event) {
	update, ok := events.UpdateFrom(e)
	if !ok {
		return
	}

	c.mu.Lock()
	if update.Epoch < c.epoch {
		c.mu.Unlock()
		return
	}
	c.epoch = update.Epoch
	c.lastShot = &update
	c.mu.Unlock()

	labels := map[coordinator.Slot]*widget.Label{
		coordinator.SlotTemplate: c.matchLabel,
		coordinator.SlotFast:     c.fastLabel,
		coordinator.SlotAccurate: c.accurateLabel,
	}
	for slot, label := range labels {
		if text, ok := update.Summaries[string(slot)]; ok {
			label.SetText(text)
		}
	}

	if update.Preview != nil {
		c.previewImage.Image = update.Preview
		c.previewImage.Refresh()
		c.saveBtn.Enable()
	}
	if update.Settled {
		c.statusLabel.SetText(fmt.Sprintf("识别完成 (#%d)", update.Epoch))
	}
}

func (c *Controller) onCycleFailed(e events.Event) {
	msg, _ := e.Data["error"].(string)
	c.statusLabel.SetText("截图失败: " + msg)
}

// Shutdown releases the picker hook and stops UI dispatch
func (c *Controller) Shutdown() {
	c.picker.Close()
	c.queue.Stop()
}
