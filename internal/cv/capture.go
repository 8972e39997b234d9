package cv

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/kbinani/screenshot"

	apperrors "jordanella.com/hshj-locator/internal/errors"
	"jordanella.com/hshj-locator/internal/logging"
)

// TargetKind selects which capture backend serves a Target
type TargetKind int

const (
	// TargetWindow captures a top-level window by handle
	TargetWindow TargetKind = iota
	// TargetDisplay captures a whole display by index
	TargetDisplay
	// TargetRegion captures an absolute desktop rectangle
	TargetRegion
	// TargetFile replays a saved screenshot
	TargetFile
)

// Target is the opaque handle produced by target selection. The pipeline
// only passes it back to a Capturer.
type Target struct {
	Kind    TargetKind
	Handle  uintptr
	Title   string
	Display int
	Rect    image.Rectangle
	Path    string
}

// WindowTarget builds a window target
func WindowTarget(handle uintptr, title string) Target {
	return Target{Kind: TargetWindow, Handle: handle, Title: title}
}

// DisplayTarget builds a display target
func DisplayTarget(index int) Target {
	return Target{Kind: TargetDisplay, Display: index}
}

// RegionTarget builds a region target
func RegionTarget(rect image.Rectangle) Target {
	return Target{Kind: TargetRegion, Rect: rect}
}

// FileTarget builds a target that loads a screenshot from disk
func FileTarget(path string) Target {
	return Target{Kind: TargetFile, Path: path}
}

// IsZero reports whether no target has been selected
func (t Target) IsZero() bool {
	return t.Kind == TargetWindow && t.Handle == 0
}

func (t Target) String() string {
	switch t.Kind {
	case TargetWindow:
		if t.Title != "" {
			return fmt.Sprintf("window 0x%x %q", t.Handle, t.Title)
		}
		return fmt.Sprintf("window 0x%x", t.Handle)
	case TargetDisplay:
		return fmt.Sprintf("display %d", t.Display)
	case TargetFile:
		return fmt.Sprintf("file %s", t.Path)
	default:
		return fmt.Sprintf("region %v", t.Rect)
	}
}

// Capturer produces one Frame per call
type Capturer interface {
	Capture(target Target) (*Frame, error)
}

// DesktopCapturer serves windows through the platform backend,
// displays and regions through kbinani/screenshot, and files from disk.
type DesktopCapturer struct {
	logger *logging.Logger
}

// NewDesktopCapturer creates a capturer
func NewDesktopCapturer(logger *logging.Logger) *DesktopCapturer {
	return &DesktopCapturer{logger: logger}
}

// Capture grabs the target synchronously; every failure is a CaptureError
func (c *DesktopCapturer) Capture(target Target) (*Frame, error) {
	var (
		img  *image.RGBA
		rect image.Rectangle
		err  error
	)

	switch target.Kind {
	case TargetWindow:
		if target.Handle == 0 {
			return nil, apperrors.NewCaptureError(target.String(), fmt.Errorf("no window selected"))
		}
		img, rect, err = captureWindow(target.Handle)
	case TargetDisplay:
		if n := screenshot.NumActiveDisplays(); target.Display < 0 || target.Display >= n {
			return nil, apperrors.NewCaptureError(target.String(),
				fmt.Errorf("display index %d out of range (%d active)", target.Display, n))
		}
		rect = screenshot.GetDisplayBounds(target.Display)
		img, err = screenshot.CaptureRect(rect)
	case TargetRegion:
		rect = target.Rect
		if rect.Empty() {
			return nil, apperrors.NewCaptureError(target.String(), fmt.Errorf("empty region"))
		}
		img, err = screenshot.CaptureRect(rect)
	case TargetFile:
		img, rect, err = loadScreenshot(target.Path)
	default:
		err = fmt.Errorf("unknown target kind %d", target.Kind)
	}

	if err != nil {
		return nil, apperrors.NewCaptureError(target.String(), err)
	}

	c.logger.Infof("Captured region x=%d y=%d w=%d h=%d", rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy())

	frame, err := NewFrame(img)
	if err != nil {
		return nil, apperrors.NewCaptureError(target.String(), err)
	}

	c.logger.Infof("Capture complete, size %dx%d", frame.Width(), frame.Height())
	return frame, nil
}

func loadScreenshot(path string) (*image.RGBA, image.Rectangle, error) {
	src, err := imaging.Open(path)
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	b := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)
	return img, img.Bounds(), nil
}
