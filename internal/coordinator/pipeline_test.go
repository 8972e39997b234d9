package coordinator

import (
	"context"
	"image"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"jordanella.com/hshj-locator/internal/assets"
	"jordanella.com/hshj-locator/internal/cv"
	"jordanella.com/hshj-locator/internal/events"
	"jordanella.com/hshj-locator/internal/logging"
	"jordanella.com/hshj-locator/internal/ocr"
	"jordanella.com/hshj-locator/internal/preview"
	"jordanella.com/hshj-locator/pkg/templates"
)

// symbolEngine emits the four label glyphs as separate symbols
type symbolEngine struct{}

func (symbolEngine) SetImage(img *image.Gray) error { return nil }
func (symbolEngine) Text() (string, error)          { return "魂 兽 幻 境", nil }
func (symbolEngine) Close() error                   { return nil }

func (symbolEngine) Fragments(unit ocr.Unit) ([]ocr.Fragment, error) {
	if unit == ocr.UnitWord {
		return []ocr.Fragment{{Unit: ocr.UnitWord, Text: "魂", Box: image.Rect(100, 50, 120, 70)}}, nil
	}
	return []ocr.Fragment{
		{Unit: ocr.UnitSymbol, Text: "魂", Confidence: 93, Box: image.Rect(100, 50, 120, 70)},
		{Unit: ocr.UnitSymbol, Text: "兽", Confidence: 88, Box: image.Rect(121, 50, 140, 70)},
		{Unit: ocr.UnitSymbol, Text: "幻", Confidence: 41, Box: image.Rect(141, 50, 160, 70)},
		{Unit: ocr.UnitSymbol, Text: "境", Confidence: 90, Box: image.Rect(161, 50, 180, 70)},
	}, nil
}

func iconTemplate(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.NRGBA{R: uint8(x * 255 / size), G: uint8(y * 255 / size), B: 30, A: 255}
			if (x/8+y/5)%3 == 0 {
				c.B = 220
			}
			if x > size/3 && x < size/2 && y > size/4 {
				c = color.NRGBA{R: 250, G: 250, B: 250, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func sceneFrame(t *testing.T, icon *image.NRGBA, at image.Point) *cv.Frame {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	canvas := image.NewRGBA(image.Rect(0, 0, 1920, 1080))
	rng.Read(canvas.Pix)
	for i := 3; i < len(canvas.Pix); i += 4 {
		canvas.Pix[i] = 255
	}
	b := icon.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := icon.NRGBAAt(x, y)
			canvas.SetRGBA(at.X+x, at.Y+y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	frame, err := cv.NewFrame(canvas)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	return frame
}

func TestPipelineEndToEnd(t *testing.T) {
	t.Setenv("TESSDATA_PREFIX", "")
	appDir := t.TempDir()

	icon := iconTemplate(64)
	if err := os.MkdirAll(filepath.Join(appDir, "assets", "tessdata"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(icon, filepath.Join(appDir, "assets", assets.DefaultTemplateName)); err != nil {
		t.Fatal(err)
	}
	for _, model := range []string{"chi_sim.traineddata", "chi_sim_best.traineddata"} {
		if err := os.WriteFile(filepath.Join(appDir, "assets", "tessdata", model), []byte(model), 0644); err != nil {
			t.Fatal(err)
		}
	}

	logger := logging.Discard()
	resolver := assets.NewResolver(assets.Options{AppDir: appDir, ModelDirs: []string{}}, logger)
	cache := templates.NewImageCache(resolver.LoadTemplateImage)
	matcher := cv.NewMatcher(cache, nil, logger)

	var mu sync.Mutex
	var specs []ocr.EngineSpec
	factory := func(spec ocr.EngineSpec) (ocr.Engine, error) {
		mu.Lock()
		specs = append(specs, spec)
		mu.Unlock()
		return symbolEngine{}, nil
	}
	localizer := ocr.NewLocalizer(resolver, ocr.NewAliasStager(t.TempDir()), factory, logger)

	frame := sceneFrame(t, imaging.Resize(icon, 45, 45, imaging.Box), image.Pt(800, 400))
	bus := newRecorder()
	coord := New(&fakeCapturer{frames: []*cv.Frame{frame}}, matcher, localizer, preview.NewRenderer(960), bus, testConfig, logger)

	epoch, err := coord.StartCycle(cv.DisplayTarget(0))
	if err != nil {
		t.Fatalf("StartCycle failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	state, err := coord.Wait(ctx, epoch)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	if loc := state.Template.Location; abs(loc.X-800) > 1 || abs(loc.Y-400) > 1 {
		t.Errorf("template at %v, want (800,400) ±1", loc)
	}
	if state.Template.Scale != 0.7 || state.Template.Score <= 0.9 {
		t.Errorf("template scale %.1f score %.4f", state.Template.Scale, state.Template.Score)
	}
	want := image.Rect(100, 50, 180, 70)
	for _, r := range []*ocr.Result{state.Fast, state.Accurate} {
		if !r.Found || r.Box != want {
			t.Errorf("%s box = %v, want %v", r.ProfileID, r.Box, want)
		}
	}

	if len(specs) != 2 {
		t.Fatalf("engines opened = %d, want 2", len(specs))
	}
	for _, spec := range specs {
		if spec.ProfileID == ocr.ProfileAccurate && filepath.Base(spec.DataDir) != ocr.ProfileAccurate {
			t.Errorf("accurate profile not staged: %s", spec.DataDir)
		}
	}

	settled := bus.ofType(events.EventTypeCycleSettled)
	if len(settled) != 1 {
		t.Fatalf("settled events = %d, want 1", len(settled))
	}
	update, _ := events.UpdateFrom(settled[0])
	if b := update.Preview.Bounds(); b.Dx() != 960 || b.Dy() != 540 {
		t.Errorf("preview = %v, want 960x540", b)
	}
	if stats := cache.Stats(); stats.Loads != 1 {
		t.Errorf("template loads = %d, want 1", stats.Loads)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
