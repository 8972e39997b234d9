package ocr

import (
	"image"
	"strings"
)

// PhraseMatcher consumes symbols in reading order and reports the union
// box once every glyph of the phrase has been seen contiguously. A
// mismatch that is itself the first glyph restarts the match there.
type PhraseMatcher struct {
	phrase Phrase
	stage  int
	accum  image.Rectangle
}

// NewPhraseMatcher creates a matcher at stage 0
func NewPhraseMatcher(phrase Phrase) *PhraseMatcher {
	return &PhraseMatcher{phrase: phrase}
}

// Stage returns the number of glyphs matched so far
func (m *PhraseMatcher) Stage() int {
	return m.stage
}

// Feed advances the state machine. It returns the accumulated box and
// true when the last glyph completes the phrase. Empty symbols are ignored.
func (m *PhraseMatcher) Feed(text string, box image.Rectangle) (image.Rectangle, bool) {
	if text == "" || len(m.phrase) == 0 {
		return image.Rectangle{}, false
	}

	switch {
	case strings.Contains(text, m.phrase[m.stage]):
		if m.stage == 0 {
			m.accum = box
		} else {
			m.accum = m.accum.Union(box)
		}
		m.stage++
		if m.stage == len(m.phrase) {
			found := m.accum
			m.Reset()
			return found, true
		}
	case strings.Contains(text, m.phrase[0]):
		m.stage = 1
		m.accum = box
	default:
		m.Reset()
	}
	return image.Rectangle{}, false
}

// Reset returns the matcher to stage 0 with an empty accumulator
func (m *PhraseMatcher) Reset() {
	m.stage = 0
	m.accum = image.Rectangle{}
}

// MatchSymbols runs the state machine over a symbol stream
func MatchSymbols(phrase Phrase, symbols []Fragment) (image.Rectangle, bool) {
	m := NewPhraseMatcher(phrase)
	for _, s := range symbols {
		if box, ok := m.Feed(s.Text, s.Box); ok {
			return box, true
		}
	}
	return image.Rectangle{}, false
}

// MatchWords returns the first word whose text contains the whole phrase
func MatchWords(phrase Phrase, words []Fragment) (Fragment, bool) {
	target := phrase.String()
	if target == "" {
		return Fragment{}, false
	}
	for _, w := range words {
		if strings.Contains(w.Text, target) {
			return w, true
		}
	}
	return Fragment{}, false
}
