package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/ini.v1"

	"jordanella.com/hshj-locator/internal/ocr"
)

// LoadFromINI loads configuration from a Settings.ini file.
// Keys missing from the file keep their default values.
func LoadFromINI(path string) (*Config, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config := NewDefaultConfig()

	// Recognition
	section := cfg.Section("Recognition")
	config.Phrase = section.Key("phrase").MustString(config.Phrase)
	config.FastProfile = section.Key("fastProfile").MustString(config.FastProfile)
	config.AccurateProfile = section.Key("accurateProfile").MustString(config.AccurateProfile)
	config.ProfilesPath = section.Key("profiles").MustString(config.ProfilesPath)
	if section.HasKey("scales") {
		config.Scales = section.Key("scales").Float64s(",")
	}
	config.AlphaThreshold = section.Key("alphaThreshold").MustFloat64(config.AlphaThreshold)
	config.MinTemplateSize = section.Key("minTemplateSize").MustInt(config.MinTemplateSize)

	// Assets
	section = cfg.Section("Assets")
	config.TemplatePath = section.Key("template").MustString(config.TemplatePath)
	config.TemplateName = section.Key("templateName").MustString(config.TemplateName)
	config.TessdataDir = section.Key("tessdata").MustString(config.TessdataDir)
	config.AliasDir = section.Key("aliasDir").MustString(config.AliasDir)

	// Preview
	section = cfg.Section("Preview")
	config.PreviewMaxEdge = section.Key("maxEdge").MustInt(config.PreviewMaxEdge)
	config.SnapshotDir = section.Key("snapshotDir").MustString(config.SnapshotDir)

	// Logging
	section = cfg.Section("Logging")
	config.LogLevel = section.Key("logLevel").MustString(config.LogLevel)
	config.LogDir = section.Key("logDir").MustString(config.LogDir)
	config.LoggingEnabled = section.Key("loggingEnabled").MustBool(config.LoggingEnabled)

	return config, nil
}

// Load reads Settings.ini when present, applies environment overrides
// and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config, err := LoadFromINI(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		config = NewDefaultConfig()
	}
	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// LoadProfiles returns the built-in profiles merged with the profiles file,
// if one exists.
func LoadProfiles(path string) (*ocr.ProfileRegistry, error) {
	registry := ocr.NewProfileRegistry()
	if path == "" {
		return registry, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return registry, nil
	}
	if err := registry.LoadFromFile(path); err != nil {
		return nil, err
	}
	return registry, nil
}

// SaveToINI saves configuration to an INI file
func SaveToINI(config *Config, path string) error {
	cfg := ini.Empty()

	section := cfg.Section("Recognition")
	section.Key("phrase").SetValue(config.Phrase)
	section.Key("fastProfile").SetValue(config.FastProfile)
	section.Key("accurateProfile").SetValue(config.AccurateProfile)
	section.Key("profiles").SetValue(config.ProfilesPath)
	scales := make([]string, len(config.Scales))
	for i, s := range config.Scales {
		scales[i] = fmt.Sprintf("%g", s)
	}
	section.Key("scales").SetValue(strings.Join(scales, ","))
	section.Key("alphaThreshold").SetValue(fmt.Sprintf("%g", config.AlphaThreshold))
	section.Key("minTemplateSize").SetValue(fmt.Sprintf("%d", config.MinTemplateSize))

	section = cfg.Section("Assets")
	section.Key("template").SetValue(config.TemplatePath)
	section.Key("templateName").SetValue(config.TemplateName)
	section.Key("tessdata").SetValue(config.TessdataDir)
	section.Key("aliasDir").SetValue(config.AliasDir)

	section = cfg.Section("Preview")
	section.Key("maxEdge").SetValue(fmt.Sprintf("%d", config.PreviewMaxEdge))
	section.Key("snapshotDir").SetValue(config.SnapshotDir)

	section = cfg.Section("Logging")
	section.Key("logLevel").SetValue(config.LogLevel)
	section.Key("logDir").SetValue(config.LogDir)
	section.Key("loggingEnabled").SetValue(fmt.Sprintf("%t", config.LoggingEnabled))

	return cfg.SaveTo(path)
}
