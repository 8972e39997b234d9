package main

import (
	"io"
	"strings"
	"sync"
	"time"

	"jordanella.com/hshj-locator/internal/app"
	"jordanella.com/hshj-locator/internal/config"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	timeoutFlag  *time.Duration

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, timeoutFlag *time.Duration) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		timeoutFlag:  timeoutFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.LogLevel = strings.TrimSpace(*c.logLevelFlag)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) timeout() time.Duration {
	if c.timeoutFlag == nil || *c.timeoutFlag <= 0 {
		return 30 * time.Second
	}
	return *c.timeoutFlag
}

// openApp assembles the pipeline with logs on stderr so stdout stays
// reserved for the result table.
func (c *commandContext) openApp(stderr io.Writer) (*app.App, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, app.Options{Component: "cli", Console: stderr})
}
