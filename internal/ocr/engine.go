package ocr

import "image"

// EngineSpec selects the language data an engine instance is bound to
type EngineSpec struct {
	ProfileID string
	Language  string
	DataDir   string // directory containing <Language>.traineddata
}

// Engine is one OCR engine instance. Instances are not shared between
// goroutines; each Locate call opens and closes its own.
type Engine interface {
	// SetImage hands the engine the page to recognize
	SetImage(img *image.Gray) error
	// Text runs full-page recognition and returns the plain text
	Text() (string, error)
	// Fragments returns recognized fragments at unit level in reading order
	Fragments(unit Unit) ([]Fragment, error)
	Close() error
}

// EngineFactory opens a new engine instance
type EngineFactory func(spec EngineSpec) (Engine, error)
