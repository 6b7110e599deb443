package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"clipflow/internal/config"
	"clipflow/internal/logging"
	"clipflow/internal/project"
	"clipflow/internal/whisperx"
	"clipflow/internal/workflow"
)

// serviceHooks lets tests swap the external collaborators. Nil in production.
var serviceHooks func(cfg *config.Config) (workflow.Transcriber, []workflow.Option)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	store *project.Store
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger returns a logger writing to clipflow.log. Foreground commands keep
// the terminal for their own output; console mirrors logs to stderr too.
func (c *commandContext) logger(console bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if console {
		return logging.NewFromConfig(cfg)
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "clipflow.log")},
	})
}

func (c *commandContext) openStore() (*project.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := project.Open(cfg)
	if err != nil {
		return nil, err
	}
	c.store = store
	return store, nil
}

// service wires a workflow.Service with the real ffprobe, ffmpeg, and
// WhisperX collaborators.
func (c *commandContext) service(console bool) (*workflow.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := c.openStore()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger(console)
	if err != nil {
		return nil, err
	}
	var (
		transcriber workflow.Transcriber
		opts        []workflow.Option
	)
	if serviceHooks != nil {
		transcriber, opts = serviceHooks(cfg)
	} else {
		transcriber = whisperx.NewCache(whisperx.ConfigFromSettings(cfg), logger)
	}
	return workflow.NewService(cfg, store, transcriber, logger, opts...), nil
}

func (c *commandContext) close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
