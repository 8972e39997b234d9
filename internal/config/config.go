package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"jordanella.com/hshj-locator/internal/assets"
	"jordanella.com/hshj-locator/internal/coordinator"
	"jordanella.com/hshj-locator/internal/cv"
	"jordanella.com/hshj-locator/internal/logging"
	"jordanella.com/hshj-locator/internal/ocr"
	"jordanella.com/hshj-locator/internal/preview"
)

// Environment overrides
const (
	EnvTemplate   = "HSHJ_TEMPLATE"
	EnvTessdata   = "HSHJ_TESSDATA"
	EnvPreviewMax = "HSHJ_PREVIEW_MAX"
)

// Config holds the locator settings
type Config struct {
	// Recognition
	Phrase          string
	FastProfile     string
	AccurateProfile string
	ProfilesPath    string
	Scales          []float64
	AlphaThreshold  float64
	MinTemplateSize int

	// Assets
	TemplatePath string
	TemplateName string
	TessdataDir  string
	AliasDir     string

	// Preview
	PreviewMaxEdge int
	SnapshotDir    string

	// Logging
	LogLevel       string
	LogDir         string
	LoggingEnabled bool
}

// NewDefaultConfig creates a config with default values
func NewDefaultConfig() *Config {
	return &Config{
		Phrase:          ocr.DefaultPhrase.String(),
		FastProfile:     ocr.ProfileFast,
		AccurateProfile: ocr.ProfileAccurate,
		ProfilesPath:    "profiles.yaml",
		Scales:          cv.DefaultScales(),
		AlphaThreshold:  10,
		MinTemplateSize: 2,
		TemplateName:    assets.DefaultTemplateName,
		PreviewMaxEdge:  preview.DefaultMaxEdge,
		SnapshotDir:     "snapshots",
		LogLevel:        "INFO",
		LogDir:          "logs",
		LoggingEnabled:  true,
	}
}

// ApplyEnv overrides settings from HSHJ_* environment variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvTemplate); v != "" {
		c.TemplatePath = v
	}
	if v := os.Getenv(EnvTessdata); v != "" {
		c.TessdataDir = v
	}
	if v := os.Getenv(EnvPreviewMax); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPreviewMax, v, err)
		}
		c.PreviewMaxEdge = n
	}
	return nil
}

// Validate checks the config for values the pipeline cannot run with
func (c *Config) Validate() error {
	if len(ocr.ParsePhrase(c.Phrase)) == 0 {
		return fmt.Errorf("phrase must not be empty")
	}
	if c.FastProfile == "" || c.AccurateProfile == "" {
		return fmt.Errorf("both OCR profiles must be set")
	}
	if len(c.Scales) == 0 {
		return fmt.Errorf("at least one match scale is required")
	}
	for _, s := range c.Scales {
		if s <= 0 || s > 4 {
			return fmt.Errorf("scale %.2f out of range (0, 4]", s)
		}
	}
	if c.AlphaThreshold < 0 || c.AlphaThreshold > 255 {
		return fmt.Errorf("alpha threshold %.0f out of range [0, 255]", c.AlphaThreshold)
	}
	if c.MinTemplateSize < 1 {
		return fmt.Errorf("min template size must be positive")
	}
	if c.PreviewMaxEdge < 16 {
		return fmt.Errorf("preview max edge %d too small", c.PreviewMaxEdge)
	}
	if lvl := logging.ParseLevel(c.LogLevel); string(lvl) != strings.ToUpper(strings.TrimSpace(c.LogLevel)) {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// MatchConfig builds the template matcher settings
func (c *Config) MatchConfig() *cv.MatchConfig {
	return &cv.MatchConfig{
		Scales:          append([]float64(nil), c.Scales...),
		AlphaThreshold:  float32(c.AlphaThreshold),
		MinTemplateSize: c.MinTemplateSize,
	}
}

// AssetOptions builds the asset resolver options
func (c *Config) AssetOptions() assets.Options {
	return assets.Options{
		TemplatePath: c.TemplatePath,
		TemplateName: c.TemplateName,
		TessdataDir:  c.TessdataDir,
	}
}

// CoordinatorConfig resolves the configured profiles from registry
func (c *Config) CoordinatorConfig(registry *ocr.ProfileRegistry) (coordinator.Config, error) {
	fast, ok := registry.Get(c.FastProfile)
	if !ok {
		return coordinator.Config{}, fmt.Errorf("unknown OCR profile %q", c.FastProfile)
	}
	accurate, ok := registry.Get(c.AccurateProfile)
	if !ok {
		return coordinator.Config{}, fmt.Errorf("unknown OCR profile %q", c.AccurateProfile)
	}
	return coordinator.Config{
		Fast:     fast,
		Accurate: accurate,
		Phrase:   ocr.ParsePhrase(c.Phrase),
	}, nil
}
