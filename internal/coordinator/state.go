package coordinator

import (
	"image"
	"time"

	"jordanella.com/hshj-locator/internal/cv"
	"jordanella.com/hshj-locator/internal/ocr"
)

// Phase is the coordinator's lifecycle state
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCapturing
	PhaseRunning
	PhaseSettled
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCapturing:
		return "capturing"
	case PhaseRunning:
		return "running"
	case PhaseSettled:
		return "settled"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Slot names one of the three recognition tasks of a cycle
type Slot string

const (
	SlotTemplate Slot = "template"
	SlotFast     Slot = "fast"
	SlotAccurate Slot = "accurate"
)

// Slots lists every task slot in display order
var Slots = []Slot{SlotTemplate, SlotFast, SlotAccurate}

// CycleState is a snapshot of one recognition cycle.
// Nil result fields are still pending.
type CycleState struct {
	Epoch       uint64
	ID          string
	Frame       *cv.Frame
	Fingerprint string
	StartedAt   time.Time
	Phase       Phase

	Template *cv.MatchResult
	Fast     *ocr.Result
	Accurate *ocr.Result
}

// Pending returns the slots that have not completed yet
func (s CycleState) Pending() []Slot {
	var pending []Slot
	if s.Template == nil {
		pending = append(pending, SlotTemplate)
	}
	if s.Fast == nil {
		pending = append(pending, SlotFast)
	}
	if s.Accurate == nil {
		pending = append(pending, SlotAccurate)
	}
	return pending
}

// Settled reports whether all three slots are filled
func (s CycleState) Settled() bool {
	return s.Template != nil && s.Fast != nil && s.Accurate != nil
}

// Point returns the template match location, nil when pending or not found
func (s CycleState) Point() *image.Point {
	if s.Template == nil || !s.Template.Found {
		return nil
	}
	p := s.Template.Location
	return &p
}

// FastBox returns the fast profile box, nil when pending or not found
func (s CycleState) FastBox() *image.Rectangle {
	return boxOf(s.Fast)
}

// AccurateBox returns the accurate profile box, nil when pending or not found
func (s CycleState) AccurateBox() *image.Rectangle {
	return boxOf(s.Accurate)
}

func boxOf(r *ocr.Result) *image.Rectangle {
	if r == nil || !r.Found {
		return nil
	}
	b := r.Box
	return &b
}

// Summaries returns the result string of every filled slot, keyed by slot name
func (s CycleState) Summaries() map[string]string {
	out := make(map[string]string, len(Slots))
	if s.Template != nil {
		out[string(SlotTemplate)] = s.Template.Summary()
	}
	if s.Fast != nil {
		out[string(SlotFast)] = s.Fast.Summary()
	}
	if s.Accurate != nil {
		out[string(SlotAccurate)] = s.Accurate.Summary()
	}
	return out
}

// outcome is one task's completion, tagged with the epoch it was spawned under
type outcome struct {
	epoch uint64
	slot  Slot
	match *cv.MatchResult
	text  *ocr.Result
}

func (o outcome) summary() string {
	switch {
	case o.match != nil:
		return o.match.Summary()
	case o.text != nil:
		return o.text.Summary()
	default:
		return string(o.slot) + ": 未找到"
	}
}
