package preview

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"jordanella.com/hshj-locator/internal/cv"
)

func gradientFrame(t *testing.T, w, h int) *cv.Frame {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 255})
		}
	}
	frame, err := cv.NewFrame(img)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	return frame
}

func TestRenderBoundsLongEdge(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxEdge      int
		wantW, wantH int
	}{
		{"landscape", 1920, 1080, 960, 960, 540},
		{"portrait", 500, 1000, 960, 480, 960},
		{"odd ratio", 1366, 768, 800, 800, 450},
		{"within bound", 640, 360, 960, 640, 360},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(tt.maxEdge)
			pt := image.Pt(tt.w/2, tt.h/2)
			box := image.Rect(10, 10, 60, 40)

			out := r.Render(gradientFrame(t, tt.w, tt.h), &pt, &box, nil)
			w, h := out.Bounds().Dx(), out.Bounds().Dy()

			if w > tt.maxEdge || h > tt.maxEdge {
				t.Errorf("%dx%d exceeds %d", w, h, tt.maxEdge)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRenderWithoutOverlaysKeepsFrame(t *testing.T) {
	frame := gradientFrame(t, 120, 80)
	out := NewRenderer(960).Render(frame, nil, nil, nil)

	if out.Bounds().Dx() != 120 || out.Bounds().Dy() != 80 {
		t.Fatalf("size = %v, want 120x80", out.Bounds())
	}
	src := frame.RGBA()
	for i := range src.Pix {
		if out.Pix[i] != src.Pix[i] {
			t.Fatalf("pixel byte %d = %d, want %d", i, out.Pix[i], src.Pix[i])
		}
	}
}

func TestRenderDrawsOverlays(t *testing.T) {
	frame := gradientFrame(t, 200, 150)
	r := NewRenderer(960)
	pt := image.Pt(100, 75)
	fast := image.Rect(10, 10, 50, 40)
	accurate := image.Rect(120, 20, 180, 60)

	out := r.Render(frame, &pt, &fast, &accurate)

	if got := out.NRGBAAt(10, 20); got != r.FastColor {
		t.Errorf("fast edge = %v, want %v", got, r.FastColor)
	}
	if got := out.NRGBAAt(150, 20); got != r.AccurateColor {
		t.Errorf("accurate edge = %v, want %v", got, r.AccurateColor)
	}
	if got := out.NRGBAAt(100+r.Radius-1, 75); got != r.PointColor {
		t.Errorf("marker ring = %v, want %v", got, r.PointColor)
	}
	// ring is hollow
	if got := out.NRGBAAt(100, 75); got == r.PointColor {
		t.Error("marker center should not be filled")
	}
	// frame itself untouched
	if got := frame.RGBA().RGBAAt(10, 20); got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("source frame mutated: %v", got)
	}
}

func TestRenderClipsOverlaysAtEdges(t *testing.T) {
	frame := gradientFrame(t, 50, 50)
	pt := image.Pt(0, 0)
	box := image.Rect(-20, -20, 500, 500)

	out := NewRenderer(960).Render(frame, &pt, &box, &box)
	if out.Bounds().Dx() != 50 {
		t.Errorf("size = %v", out.Bounds())
	}
}

func TestRenderNilFrame(t *testing.T) {
	if out := NewRenderer(0).Render(nil, nil, nil, nil); out == nil {
		t.Fatal("Render returned nil")
	}
}

func TestSaveFormats(t *testing.T) {
	img := NewRenderer(960).Render(gradientFrame(t, 40, 30), nil, nil, nil)
	dir := t.TempDir()

	for _, name := range []string{"out.png", "out.jpg", "nested/out.webp"} {
		path := filepath.Join(dir, name)
		if err := Save(img, path); err != nil {
			t.Fatalf("Save(%s) failed: %v", name, err)
		}
		st, err := os.Stat(path)
		if err != nil || st.Size() == 0 {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	back, err := imaging.Open(filepath.Join(dir, "out.png"))
	if err != nil {
		t.Fatalf("reopen png: %v", err)
	}
	if back.Bounds().Dx() != 40 || back.Bounds().Dy() != 30 {
		t.Errorf("png size = %v", back.Bounds())
	}
}
