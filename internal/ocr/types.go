package ocr

import (
	"fmt"
	"image"
	"strings"
)

// Unit is the segmentation level of a recognized fragment
type Unit int

const (
	UnitWord Unit = iota
	UnitSymbol
)

func (u Unit) String() string {
	if u == UnitSymbol {
		return "symbol"
	}
	return "word"
}

// Fragment is one recognized word or symbol with its bounding box
type Fragment struct {
	Unit       Unit
	Text       string
	Confidence float64 // 0-100, diagnostics only
	Box        image.Rectangle
}

// Result is the outcome of one Locate call. Box is the empty rectangle
// when the phrase was not found.
type Result struct {
	Found     bool
	Box       image.Rectangle
	FullText  string
	ProfileID string
	Pass      string // "word" or "symbol" when found
}

// NotFound returns the invalid result for a profile
func NotFound(profileID, fullText string) Result {
	return Result{ProfileID: profileID, FullText: fullText}
}

// Summary formats the result the way the log pane shows it
func (r Result) Summary() string {
	if !r.Found {
		return fmt.Sprintf("OCR[%s]坐标: 未找到", r.ProfileID)
	}
	return fmt.Sprintf("OCR[%s]坐标: (%d,%d,%d,%d)",
		r.ProfileID, r.Box.Min.X, r.Box.Min.Y, r.Box.Dx(), r.Box.Dy())
}

// Phrase is the ordered list of glyphs to locate
type Phrase []string

// DefaultPhrase is the 魂兽幻境 label
var DefaultPhrase = ParsePhrase("魂兽幻境")

// ParsePhrase splits s into one glyph per rune
func ParsePhrase(s string) Phrase {
	var p Phrase
	for _, r := range s {
		p = append(p, string(r))
	}
	return p
}

func (p Phrase) String() string {
	return strings.Join(p, "")
}

// mentions reports whether text contains any glyph of the phrase
func (p Phrase) mentions(text string) bool {
	for _, g := range p {
		if strings.Contains(text, g) {
			return true
		}
	}
	return false
}
