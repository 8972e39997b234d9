package ocr

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"jordanella.com/hshj-locator/internal/cv"
	apperrors "jordanella.com/hshj-locator/internal/errors"
	"jordanella.com/hshj-locator/internal/logging"
)

// stubEngine replays canned recognition output and counts calls
type stubEngine struct {
	text    string
	textErr error
	words   []Fragment
	symbols []Fragment

	mu          sync.Mutex
	wordCalls   int
	symbolCalls int
	closed      bool
}

func (e *stubEngine) SetImage(img *image.Gray) error { return nil }

func (e *stubEngine) Text() (string, error) { return e.text, e.textErr }

func (e *stubEngine) Fragments(unit Unit) ([]Fragment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if unit == UnitSymbol {
		e.symbolCalls++
		return e.symbols, nil
	}
	e.wordCalls++
	return e.words, nil
}

func (e *stubEngine) Close() error {
	e.closed = true
	return nil
}

// stubFactory hands out engines per language and remembers the specs it saw
type stubFactory struct {
	engines map[string]*stubEngine
	specs   []EngineSpec
}

func (f *stubFactory) open(spec EngineSpec) (Engine, error) {
	f.specs = append(f.specs, spec)
	e, ok := f.engines[spec.Language]
	if !ok {
		return nil, errors.New("no such language")
	}
	return e, nil
}

// dirResolver resolves models inside one directory
type dirResolver struct {
	dir string
}

func (r dirResolver) ResolveModelPath(p Profile) (string, error) {
	path := filepath.Join(r.dir, p.ModelFile())
	if _, err := os.Stat(path); err != nil {
		return "", apperrors.NewAssetNotFoundError(p.ModelFile(), []string{path})
	}
	return path, nil
}

func modelDir(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("model:"+f), 0644); err != nil {
			t.Fatalf("failed to write model: %v", err)
		}
	}
	return dir
}

func testFrame(t *testing.T) *cv.Frame {
	t.Helper()
	frame, err := cv.NewFrame(image.NewRGBA(image.Rect(0, 0, 320, 200)))
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	return frame
}

func newTestLocalizer(t *testing.T, dir string, f *stubFactory) *Localizer {
	return NewLocalizer(dirResolver{dir: dir}, NewAliasStager(t.TempDir()), f.open, logging.Discard())
}

var fastProfile = Profile{ID: ProfileFast, Language: "chi_sim", Fallback: "eng"}

func TestLocateSymbolPass(t *testing.T) {
	engine := &stubEngine{
		text: "魂 兽 幻 境",
		symbols: []Fragment{
			{Unit: UnitSymbol, Text: "魂", Confidence: 91, Box: image.Rect(100, 50, 120, 70)},
			{Unit: UnitSymbol, Text: "兽", Confidence: 12, Box: image.Rect(121, 50, 140, 70)},
			{Unit: UnitSymbol, Text: "幻", Confidence: 88, Box: image.Rect(141, 50, 160, 70)},
			{Unit: UnitSymbol, Text: "境", Confidence: 70, Box: image.Rect(161, 50, 180, 70)},
		},
	}
	factory := &stubFactory{engines: map[string]*stubEngine{"chi_sim": engine}}
	l := newTestLocalizer(t, modelDir(t, "chi_sim.traineddata"), factory)

	result := l.Locate(testFrame(t), fastProfile, DefaultPhrase)

	if !result.Found {
		t.Fatal("phrase not found")
	}
	if want := image.Rect(100, 50, 180, 70); result.Box != want {
		t.Errorf("Box = %v, want %v", result.Box, want)
	}
	if result.Pass != "symbol" {
		t.Errorf("Pass = %s, want symbol", result.Pass)
	}
	if result.ProfileID != ProfileFast {
		t.Errorf("ProfileID = %s", result.ProfileID)
	}
	if !engine.closed {
		t.Error("engine not released")
	}
}

func TestLocateWordPassTakesPrecedence(t *testing.T) {
	engine := &stubEngine{
		text:  "进入魂兽幻境",
		words: []Fragment{{Unit: UnitWord, Text: "进入魂兽幻境", Box: image.Rect(10, 10, 90, 30)}},
		symbols: []Fragment{
			{Unit: UnitSymbol, Text: "魂", Box: image.Rect(100, 50, 120, 70)},
			{Unit: UnitSymbol, Text: "兽", Box: image.Rect(121, 50, 140, 70)},
			{Unit: UnitSymbol, Text: "幻", Box: image.Rect(141, 50, 160, 70)},
			{Unit: UnitSymbol, Text: "境", Box: image.Rect(161, 50, 180, 70)},
		},
	}
	factory := &stubFactory{engines: map[string]*stubEngine{"chi_sim": engine}}
	l := newTestLocalizer(t, modelDir(t, "chi_sim.traineddata"), factory)

	result := l.Locate(testFrame(t), fastProfile, DefaultPhrase)

	if result.Box != image.Rect(10, 10, 90, 30) {
		t.Errorf("Box = %v, want the word box", result.Box)
	}
	if result.Pass != "word" {
		t.Errorf("Pass = %s, want word", result.Pass)
	}
	if engine.symbolCalls != 0 {
		t.Errorf("symbol pass ran %d times, want 0", engine.symbolCalls)
	}
}

func TestLocateEmptyTextIsNotFound(t *testing.T) {
	engine := &stubEngine{text: "  \n"}
	factory := &stubFactory{engines: map[string]*stubEngine{"chi_sim": engine}}
	l := newTestLocalizer(t, modelDir(t, "chi_sim.traineddata"), factory)

	result := l.Locate(testFrame(t), fastProfile, DefaultPhrase)

	if result.Found || !result.Box.Empty() {
		t.Errorf("result = %+v, want not found", result)
	}
	if engine.wordCalls != 0 || engine.symbolCalls != 0 {
		t.Error("fragments requested for empty text")
	}
	if !engine.closed {
		t.Error("engine not released")
	}
}

func TestLocateFallsBackToSecondLanguage(t *testing.T) {
	primary := &stubEngine{textErr: errors.New("Failed loading language 'chi_sim'")}
	fallback := &stubEngine{
		text:  "HSHJ",
		words: []Fragment{{Unit: UnitWord, Text: "魂兽幻境", Box: image.Rect(1, 2, 3, 4)}},
	}
	factory := &stubFactory{engines: map[string]*stubEngine{"chi_sim": primary, "eng": fallback}}
	l := newTestLocalizer(t, modelDir(t, "chi_sim.traineddata", "eng.traineddata"), factory)

	result := l.Locate(testFrame(t), fastProfile, DefaultPhrase)

	if !result.Found {
		t.Fatal("expected fallback engine result")
	}
	if !primary.closed || !fallback.closed {
		t.Error("both engines must be released")
	}
	if len(factory.specs) != 2 || factory.specs[1].Language != "eng" {
		t.Errorf("specs = %+v", factory.specs)
	}
}

func TestLocateMissingModelIsNotFound(t *testing.T) {
	factory := &stubFactory{engines: map[string]*stubEngine{}}
	l := newTestLocalizer(t, modelDir(t), factory)

	result := l.Locate(testFrame(t), fastProfile, DefaultPhrase)

	if result.Found {
		t.Error("expected not found")
	}
	if len(factory.specs) != 0 {
		t.Error("engine opened without a model")
	}
}

func TestLocateStagesAliasedModel(t *testing.T) {
	engine := &stubEngine{text: "nothing here"}
	factory := &stubFactory{engines: map[string]*stubEngine{"chi_sim": engine}}
	dir := modelDir(t, "chi_sim_best.traineddata")
	stageRoot := t.TempDir()
	l := NewLocalizer(dirResolver{dir: dir}, NewAliasStager(stageRoot), factory.open, logging.Discard())

	accurate := Profile{ID: ProfileAccurate, Language: "chi_sim", Model: "chi_sim_best.traineddata"}
	l.Locate(testFrame(t), accurate, DefaultPhrase)

	if len(factory.specs) != 1 {
		t.Fatalf("specs = %+v", factory.specs)
	}
	want := filepath.Join(stageRoot, ProfileAccurate)
	if factory.specs[0].DataDir != want {
		t.Errorf("DataDir = %s, want %s", factory.specs[0].DataDir, want)
	}
	if _, err := os.Stat(filepath.Join(want, "chi_sim.traineddata")); err != nil {
		t.Errorf("aliased model missing: %v", err)
	}
}

func TestPreview(t *testing.T) {
	if got := preview(" a\n\tb   c ", 80); got != "a b c" {
		t.Errorf("preview = %q", got)
	}
	if got := preview("魂兽幻境魂兽幻境", 4); got != "魂兽幻境" {
		t.Errorf("preview = %q", got)
	}
}
