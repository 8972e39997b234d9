package cv

import (
	"fmt"
	"time"

	apperrors "jordanella.com/hshj-locator/internal/errors"
	"jordanella.com/hshj-locator/internal/logging"
)

// TemplateSource supplies the reference template, typically from a cache
type TemplateSource interface {
	Template() (*TemplateImage, error)
}

// Matcher binds the template source, match config and logging into the
// template task run once per recognition cycle.
type Matcher struct {
	source TemplateSource
	config *MatchConfig
	logger *logging.Logger
}

// NewMatcher creates a template matcher service
func NewMatcher(source TemplateSource, config *MatchConfig, logger *logging.Logger) *Matcher {
	if config == nil {
		config = DefaultMatchConfig()
	}
	return &Matcher{
		source: source,
		config: config,
		logger: logger,
	}
}

// FindBestMatch locates the template in frame. Missing or broken assets
// are logged and reported as not found with score 0.
func (m *Matcher) FindBestMatch(frame *Frame) MatchResult {
	tmpl, err := m.source.Template()
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrorAssetNotFound) {
			m.logger.ErrorWithContext("Template image not available", err, map[string]interface{}{
				"searched": apperrors.Attempted(err),
			})
		} else {
			m.logger.Error("Template image failed to load", err)
		}
		return NotFoundMatch()
	}

	m.logger.Debugf("Template %s size %dx%d alpha=%v", tmpl.Name, tmpl.Width(), tmpl.Height(), tmpl.HasAlpha())

	start := time.Now()
	result, err := FindBestMatch(frame, tmpl, m.config)
	if err != nil {
		m.logger.Error("Template matching failed", err)
		return NotFoundMatch()
	}

	m.logger.InfoWithContext(fmt.Sprintf("Template match score max=%.4f", result.Score), map[string]interface{}{
		"scale":     result.Scale,
		"evaluated": result.Evaluated,
		"masked":    result.Masked,
		"elapsed":   time.Since(start).Round(time.Millisecond),
	})
	return result
}
