package cv

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	apperrors "jordanella.com/hshj-locator/internal/errors"
	"jordanella.com/hshj-locator/internal/logging"
)

func TestCaptureRejectsUnusableTargets(t *testing.T) {
	capturer := NewDesktopCapturer(logging.Discard())

	tests := []struct {
		name   string
		target Target
	}{
		{"no window selected", WindowTarget(0, "")},
		{"empty region", RegionTarget(image.Rect(10, 10, 10, 40))},
		{"negative display", DisplayTarget(-1)},
		{"missing file", FileTarget("does-not-exist.png")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := capturer.Capture(tt.target)
			if err == nil {
				t.Fatal("expected error")
			}
			if frame != nil {
				t.Error("frame should be nil on failure")
			}
			if !apperrors.IsCode(err, apperrors.ErrorCapture) {
				t.Errorf("error %v is not a capture error", err)
			}
		})
	}
}

func TestCaptureFileTarget(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	src.SetNRGBA(5, 6, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := imaging.Save(src, path); err != nil {
		t.Fatal(err)
	}

	frame, err := NewDesktopCapturer(logging.Discard()).Capture(FileTarget(path))
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if frame.Width() != 40 || frame.Height() != 30 {
		t.Errorf("size = %dx%d", frame.Width(), frame.Height())
	}
	if got := frame.RGBA().RGBAAt(5, 6); got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("pixel = %v", got)
	}
}
