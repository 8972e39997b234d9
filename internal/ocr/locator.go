package ocr

import (
	"fmt"
	"image"
	"strings"
	"time"

	"jordanella.com/hshj-locator/internal/cv"
	apperrors "jordanella.com/hshj-locator/internal/errors"
	"jordanella.com/hshj-locator/internal/logging"
)

// ModelResolver locates the on-disk model file for a profile
type ModelResolver interface {
	ResolveModelPath(profile Profile) (string, error)
}

// Localizer finds a fixed phrase in a frame with a word pass followed, only
// when that fails, by a symbol-level state machine pass.
type Localizer struct {
	resolver ModelResolver
	stager   *AliasStager
	factory  EngineFactory
	logger   *logging.Logger
}

// NewLocalizer creates a localizer; a nil factory uses tesseract
func NewLocalizer(resolver ModelResolver, stager *AliasStager, factory EngineFactory, logger *logging.Logger) *Localizer {
	if factory == nil {
		factory = NewTesseractEngine
	}
	if stager == nil {
		stager = NewAliasStager("")
	}
	return &Localizer{
		resolver: resolver,
		stager:   stager,
		factory:  factory,
		logger:   logger,
	}
}

// Locate never returns an error: every failure is logged and reported as
// a not-found result for the profile.
func (l *Localizer) Locate(frame *cv.Frame, profile Profile, phrase Phrase) Result {
	log := l.logger.WithContext(map[string]interface{}{"profile": profile.ID})
	start := time.Now()

	engine, fullText, err := l.recognize(frame.Gray(), profile)
	if err != nil {
		log.Error("OCR unavailable", err)
		return NotFound(profile.ID, "")
	}
	defer engine.Close()

	log.Info("OCR text: " + preview(fullText, 80))
	if strings.TrimSpace(fullText) == "" {
		return NotFound(profile.ID, fullText)
	}

	words, err := engine.Fragments(UnitWord)
	if err != nil {
		log.Warn(fmt.Sprintf("word fragments unavailable: %v", err))
	}
	for _, w := range words {
		if phrase.mentions(w.Text) {
			log.Info(fmt.Sprintf("OCR fragment (word) '%s' conf=%.1f box=%s", w.Text, w.Confidence, formatBox(w.Box)))
		}
	}
	if w, ok := MatchWords(phrase, words); ok {
		log.Info(fmt.Sprintf("phrase found by word pass in %s", time.Since(start).Round(time.Millisecond)))
		return Result{Found: true, Box: w.Box, FullText: fullText, ProfileID: profile.ID, Pass: "word"}
	}

	symbols, err := engine.Fragments(UnitSymbol)
	if err != nil {
		log.Warn(fmt.Sprintf("symbol fragments unavailable: %v", err))
		return NotFound(profile.ID, fullText)
	}

	m := NewPhraseMatcher(phrase)
	for _, s := range symbols {
		box, ok := m.Feed(s.Text, s.Box)
		if phrase.mentions(s.Text) {
			log.Debug(fmt.Sprintf("OCR fragment (symbol) '%s' conf=%.1f box=%s stage=%d",
				s.Text, s.Confidence, formatBox(s.Box), m.Stage()))
		}
		if ok {
			log.Info(fmt.Sprintf("phrase found by symbol pass in %s", time.Since(start).Round(time.Millisecond)))
			return Result{Found: true, Box: box, FullText: fullText, ProfileID: profile.ID, Pass: "symbol"}
		}
	}

	log.Info(fmt.Sprintf("phrase %s not found", phrase))
	return NotFound(profile.ID, fullText)
}

// recognize opens an engine for profile and runs recognition, retrying
// once with the profile's fallback language. On success the caller owns
// the returned engine.
func (l *Localizer) recognize(page *image.Gray, profile Profile) (Engine, string, error) {
	engine, text, err := l.tryProfile(page, profile)
	if err == nil {
		return engine, text, nil
	}

	fallback, ok := profile.FallbackProfile()
	if !ok {
		return nil, "", err
	}

	l.logger.WarnWithContext(fmt.Sprintf("OCR init failed for %s, trying %s", profile.Language, fallback.Language),
		map[string]interface{}{"profile": profile.ID, "cause": err.Error()})

	return l.tryProfile(page, fallback)
}

func (l *Localizer) tryProfile(page *image.Gray, profile Profile) (Engine, string, error) {
	modelPath, err := l.resolver.ResolveModelPath(profile)
	if err != nil {
		return nil, "", err
	}

	dataDir, staged, err := l.stager.Stage(profile, modelPath)
	if err != nil {
		return nil, "", apperrors.NewEngineInitError(profile.ID, profile.Language, err)
	}
	if staged {
		l.logger.Infof("Staged %s as %s in %s", modelPath, profile.CanonicalModel(), dataDir)
	}

	engine, err := l.factory(EngineSpec{ProfileID: profile.ID, Language: profile.Language, DataDir: dataDir})
	if err != nil {
		return nil, "", apperrors.NewEngineInitError(profile.ID, profile.Language, err)
	}

	if err := engine.SetImage(page); err != nil {
		engine.Close()
		return nil, "", apperrors.NewEngineInitError(profile.ID, profile.Language, err)
	}

	text, err := engine.Text()
	if err != nil {
		engine.Close()
		return nil, "", apperrors.NewEngineInitError(profile.ID, profile.Language, err)
	}

	return engine, text, nil
}

// preview collapses whitespace and keeps the first n runes
func preview(text string, n int) string {
	s := strings.Join(strings.Fields(text), " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func formatBox(r image.Rectangle) string {
	return fmt.Sprintf("(%d,%d,%d,%d)", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}
