package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"jordanella.com/hshj-locator/internal/assets"
	"jordanella.com/hshj-locator/internal/config"
	"jordanella.com/hshj-locator/internal/coordinator"
	"jordanella.com/hshj-locator/internal/cv"
	"jordanella.com/hshj-locator/internal/events"
	"jordanella.com/hshj-locator/internal/logging"
	"jordanella.com/hshj-locator/internal/ocr"
	"jordanella.com/hshj-locator/internal/preview"
	"jordanella.com/hshj-locator/pkg/templates"
)

// Options adjusts how the pipeline is assembled
type Options struct {
	// Component is the root logger name ("gui", "cli")
	Component string
	// LogToBus forwards every log line to the event bus for a log pane
	LogToBus bool
	// Console receives formatted log lines; nil means stdout
	Console io.Writer
	// Capturer replaces the desktop capturer, e.g. with a file source
	Capturer cv.Capturer
}

// App holds the assembled recognition pipeline
type App struct {
	SessionID   string
	Config      *config.Config
	Bus         events.EventBus
	Logger      *logging.Logger
	Profiles    *ocr.ProfileRegistry
	Resolver    *assets.Resolver
	Templates   *templates.ImageCache
	Renderer    *preview.Renderer
	Coordinator *coordinator.Coordinator

	journal *logging.EventLogger
	logFile *os.File
}

// New wires capture, matching, OCR, preview and the coordinator from cfg
func New(cfg *config.Config, opts Options) (*App, error) {
	if opts.Component == "" {
		opts.Component = "app"
	}

	a := &App{
		SessionID: uuid.NewString()[:8],
		Config:    cfg,
		Bus:       events.NewEventBus(256),
	}

	logger := logging.Discard().Named(opts.Component)
	logger.SetMinLevel(logging.ParseLevel(cfg.LogLevel))
	if opts.Console != nil {
		logger.AddOutput(opts.Console)
	} else {
		logger.AddOutput(os.Stdout)
	}
	if opts.LogToBus {
		logger.AddOutput(logging.NewSinkWriter(a.Bus))
	}
	a.Logger = logger

	if cfg.LoggingEnabled && cfg.LogDir != "" {
		if err := a.openLogs(); err != nil {
			logger.Warn(fmt.Sprintf("File logging disabled: %v", err))
		}
	}

	profiles, err := config.LoadProfiles(cfg.ProfilesPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load OCR profiles: %w", err)
	}
	a.Profiles = profiles

	coordConfig, err := cfg.CoordinatorConfig(profiles)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Resolver = assets.NewResolver(cfg.AssetOptions(), logger.Named("assets"))
	a.Templates = templates.NewImageCache(a.Resolver.LoadTemplateImage)
	a.Renderer = preview.NewRenderer(cfg.PreviewMaxEdge)

	capturer := opts.Capturer
	if capturer == nil {
		capturer = cv.NewDesktopCapturer(logger.Named("capture"))
	}

	matcher := cv.NewMatcher(a.Templates, cfg.MatchConfig(), logger.Named("matcher"))
	localizer := ocr.NewLocalizer(a.Resolver, ocr.NewAliasStager(cfg.AliasDir), nil, logger.Named("ocr"))

	a.Coordinator = coordinator.New(capturer, matcher, localizer, a.Renderer, a.Bus, coordConfig, logger.Named("coordinator"))

	logger.Infof("Session %s ready (fast=%s accurate=%s phrase=%s)",
		a.SessionID, coordConfig.Fast.ID, coordConfig.Accurate.ID, coordConfig.Phrase)
	return a, nil
}

func (a *App) openLogs() error {
	if err := os.MkdirAll(a.Config.LogDir, 0755); err != nil {
		return err
	}

	name := fmt.Sprintf("hshj_%s_%s.log", time.Now().Format("2006-01-02_15-04-05"), a.SessionID)
	f, err := os.OpenFile(filepath.Join(a.Config.LogDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	a.logFile = f
	a.Logger.AddOutput(f)

	journal, err := logging.NewEventLogger(a.Bus, a.Config.LogDir, a.SessionID)
	if err != nil {
		return err
	}
	a.journal = journal
	return nil
}

// Close waits for in-flight tasks, drains the bus and closes log files
func (a *App) Close() {
	if a.Coordinator != nil {
		a.Coordinator.Drain()
	}
	a.Bus.Stop()
	if a.journal != nil {
		a.journal.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}
