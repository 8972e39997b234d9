package coordinator

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/google/uuid"

	"jordanella.com/hshj-locator/internal/cv"
	apperrors "jordanella.com/hshj-locator/internal/errors"
	"jordanella.com/hshj-locator/internal/events"
	"jordanella.com/hshj-locator/internal/logging"
	"jordanella.com/hshj-locator/internal/ocr"
)

// TemplateFinder locates the reference icon in a frame
type TemplateFinder interface {
	FindBestMatch(frame *cv.Frame) cv.MatchResult
}

// TextLocator locates a phrase in a frame with one OCR profile
type TextLocator interface {
	Locate(frame *cv.Frame, profile ocr.Profile, phrase ocr.Phrase) ocr.Result
}

// PreviewRenderer draws the combined results onto the frame
type PreviewRenderer interface {
	Render(frame *cv.Frame, point *image.Point, fast, accurate *image.Rectangle) *image.NRGBA
}

// Config selects the OCR profiles and the phrase searched each cycle
type Config struct {
	Fast     ocr.Profile
	Accurate ocr.Profile
	Phrase   ocr.Phrase
}

// cycle is the mutable state behind one epoch
type cycle struct {
	state      CycleState
	done       chan struct{}
	finish     sync.Once
	superseded bool
	seq        uint64 // merges applied, guarded by Coordinator.mu
	published  uint64 // last seq sent to the bus, guarded by Coordinator.publishMu
}

func (cyc *cycle) close() {
	cyc.finish.Do(func() { close(cyc.done) })
}

// Coordinator runs one template match and two OCR passes per capture,
// merging each result into the current cycle as it completes.
// A new StartCycle supersedes the running one; late results from older
// epochs are dropped.
type Coordinator struct {
	mu       sync.Mutex
	epoch    uint64
	phase    Phase
	current  *cycle
	lastHash *goimagehash.ImageHash

	publishMu sync.Mutex
	tasks     sync.WaitGroup

	capturer cv.Capturer
	finder   TemplateFinder
	locator  TextLocator
	renderer PreviewRenderer
	bus      events.Publisher
	config   Config
	logger   *logging.Logger
}

// New creates a coordinator
func New(capturer cv.Capturer, finder TemplateFinder, locator TextLocator, renderer PreviewRenderer, bus events.Publisher, config Config, logger *logging.Logger) *Coordinator {
	if len(config.Phrase) == 0 {
		config.Phrase = ocr.DefaultPhrase
	}
	return &Coordinator{
		capturer: capturer,
		finder:   finder,
		locator:  locator,
		renderer: renderer,
		bus:      bus,
		config:   config,
		logger:   logger,
	}
}

// StartCycle captures target and spawns the three recognition tasks.
// It returns the cycle's epoch. A capture failure publishes a failed event,
// spawns nothing and leaves the coordinator idle.
func (c *Coordinator) StartCycle(target cv.Target) (uint64, error) {
	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	if prev := c.current; prev != nil {
		if !prev.state.Settled() {
			prev.superseded = true
			c.logger.Infof("Cycle %d superseded by %d, pending %v", prev.state.Epoch, epoch, prev.state.Pending())
		}
		prev.close()
		c.current = nil
	}
	c.phase = PhaseCapturing
	c.mu.Unlock()

	c.logger.Infof("Starting cycle %d on %s", epoch, target)

	frame, err := c.capturer.Capture(target)
	if err != nil {
		c.fail(epoch, err)
		return epoch, err
	}

	fingerprint := c.fingerprint(frame)
	cyc := &cycle{
		state: CycleState{
			Epoch:       epoch,
			ID:          uuid.NewString(),
			Frame:       frame,
			Fingerprint: fingerprint,
			StartedAt:   time.Now(),
			Phase:       PhaseRunning,
		},
		done: make(chan struct{}),
	}

	c.mu.Lock()
	if c.epoch != epoch {
		// another StartCycle won while we were capturing
		current := c.epoch
		c.mu.Unlock()
		return epoch, apperrors.NewStaleResultError(epoch, current)
	}
	c.current = cyc
	c.phase = PhaseRunning
	c.mu.Unlock()

	c.bus.Publish(events.NewCycleStartedEvent(epoch, cyc.state.ID, frame.Width(), frame.Height(), fingerprint))

	fast, accurate, phrase := c.config.Fast, c.config.Accurate, c.config.Phrase
	c.spawn(epoch, SlotTemplate, func(o *outcome) {
		m := c.finder.FindBestMatch(frame)
		o.match = &m
	})
	c.spawn(epoch, SlotFast, func(o *outcome) {
		r := c.locator.Locate(frame, fast, phrase)
		o.text = &r
	})
	c.spawn(epoch, SlotAccurate, func(o *outcome) {
		r := c.locator.Locate(frame, accurate, phrase)
		o.text = &r
	})

	return epoch, nil
}

func (c *Coordinator) fail(epoch uint64, err error) {
	c.logger.Error(fmt.Sprintf("Cycle %d capture failed", epoch), err)

	c.mu.Lock()
	if c.epoch == epoch {
		c.phase = PhaseFailed
	}
	c.mu.Unlock()

	c.bus.Publish(events.NewCycleFailedEvent(epoch, err))

	c.mu.Lock()
	if c.epoch == epoch {
		c.phase = PhaseIdle
	}
	c.mu.Unlock()
}

// spawn runs one task on its own goroutine and merges its outcome.
// A panicking task resolves its slot to not found.
func (c *Coordinator) spawn(epoch uint64, slot Slot, run func(*outcome)) {
	c.tasks.Add(1)
	go func() {
		defer c.tasks.Done()

		started := time.Now()
		o := outcome{epoch: epoch, slot: slot}
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error(fmt.Sprintf("Task %s of cycle %d panicked", slot, epoch), fmt.Errorf("%v", r))
					o.match, o.text = nil, nil
				}
			}()
			run(&o)
		}()
		c.fillNotFound(&o)

		c.logger.Debugf("Task %s of cycle %d finished in %v", slot, epoch, time.Since(started))
		c.merge(o)
	}()
}

func (c *Coordinator) fillNotFound(o *outcome) {
	switch o.slot {
	case SlotTemplate:
		if o.match == nil {
			m := cv.NotFoundMatch()
			o.match = &m
		}
	case SlotFast:
		if o.text == nil {
			r := ocr.NotFound(c.config.Fast.ID, "")
			o.text = &r
		}
	case SlotAccurate:
		if o.text == nil {
			r := ocr.NotFound(c.config.Accurate.ID, "")
			o.text = &r
		}
	}
}

// merge stores o in its slot if o belongs to the current cycle and the
// slot is still empty, then publishes the combined view. It reports
// whether the state changed.
func (c *Coordinator) merge(o outcome) bool {
	c.mu.Lock()
	cyc := c.current
	if cyc == nil || o.epoch != c.epoch || cyc.state.Epoch != o.epoch {
		current := c.epoch
		c.mu.Unlock()
		c.logger.Debugf("Dropped %s result: %v", o.slot, apperrors.NewStaleResultError(o.epoch, current))
		return false
	}

	switch o.slot {
	case SlotTemplate:
		if cyc.state.Template != nil {
			c.mu.Unlock()
			return false
		}
		cyc.state.Template = o.match
	case SlotFast:
		if cyc.state.Fast != nil {
			c.mu.Unlock()
			return false
		}
		cyc.state.Fast = o.text
	case SlotAccurate:
		if cyc.state.Accurate != nil {
			c.mu.Unlock()
			return false
		}
		cyc.state.Accurate = o.text
	default:
		c.mu.Unlock()
		return false
	}

	cyc.seq++
	seq := cyc.seq
	settled := cyc.state.Settled()
	if settled {
		cyc.state.Phase = PhaseSettled
		c.phase = PhaseSettled
	}
	state := cyc.state
	c.mu.Unlock()

	summary := o.summary()
	c.logger.Info(summary)
	c.publish(cyc, seq, o.slot, summary, state)

	if settled {
		c.logger.Infof("Cycle %d settled in %v", state.Epoch, time.Since(state.StartedAt))
		cyc.close()
	}
	return true
}

// publish renders and emits the display update for state unless a later
// merge of the same cycle has already been published or the cycle was
// superseded.
func (c *Coordinator) publish(cyc *cycle, seq uint64, slot Slot, summary string, state CycleState) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	if seq <= cyc.published {
		return
	}
	c.mu.Lock()
	stale := c.epoch != state.Epoch
	c.mu.Unlock()
	if stale {
		return
	}
	cyc.published = seq

	point, fastBox, accurateBox := state.Point(), state.FastBox(), state.AccurateBox()
	update := events.DisplayUpdate{
		Epoch:       state.Epoch,
		CycleID:     state.ID,
		Slot:        string(slot),
		Summary:     summary,
		Summaries:   state.Summaries(),
		Point:       point,
		FastBox:     fastBox,
		AccurateBox: accurateBox,
		Preview:     c.renderer.Render(state.Frame, point, fastBox, accurateBox),
		Settled:     state.Settled(),
	}
	c.bus.Publish(events.NewCycleUpdatedEvent(update))
}

// fingerprint hashes the frame and notes when it matches the previous capture
func (c *Coordinator) fingerprint(frame *cv.Frame) string {
	hash, err := goimagehash.PerceptionHash(frame.RGBA())
	if err != nil {
		c.logger.Debugf("Frame fingerprint unavailable: %v", err)
		return ""
	}

	c.mu.Lock()
	prev := c.lastHash
	c.lastHash = hash
	c.mu.Unlock()

	if prev != nil {
		if d, err := prev.Distance(hash); err == nil && d == 0 {
			c.logger.Info("Frame unchanged since previous cycle")
		}
	}
	return hash.ToString()
}

// Wait blocks until the cycle for epoch settles or is superseded.
// A superseded cycle returns its partial state with a stale result error.
func (c *Coordinator) Wait(ctx context.Context, epoch uint64) (CycleState, error) {
	c.mu.Lock()
	cyc := c.current
	if cyc == nil || cyc.state.Epoch != epoch {
		current := c.epoch
		c.mu.Unlock()
		return CycleState{}, apperrors.NewStaleResultError(epoch, current)
	}
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return CycleState{}, ctx.Err()
	case <-cyc.done:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cyc.superseded {
		return cyc.state, apperrors.NewStaleResultError(epoch, c.epoch)
	}
	return cyc.state, nil
}

// Snapshot returns a copy of the current cycle, or only the phase when
// no cycle is current.
func (c *Coordinator) Snapshot() CycleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return CycleState{Epoch: c.epoch, Phase: c.phase}
	}
	return c.current.state
}

// Phase returns the coordinator's lifecycle state
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Epoch returns the most recently issued epoch
func (c *Coordinator) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Drain waits for every spawned task, including superseded ones
func (c *Coordinator) Drain() {
	c.tasks.Wait()
}
