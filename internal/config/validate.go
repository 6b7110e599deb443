package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateWhisperX(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	switch c.Analysis.Mode {
	case "backtrack", "interval":
	default:
		return fmt.Errorf("analysis.mode must be backtrack or interval, got %q", c.Analysis.Mode)
	}
	if c.Analysis.PreBuffer < 0 {
		return errors.New("analysis.pre_buffer must be >= 0")
	}
	if c.Analysis.PostBuffer < 0 {
		return errors.New("analysis.post_buffer must be >= 0")
	}
	if c.Analysis.MaxWindowWords < 1 {
		return errors.New("analysis.max_window_words must be positive")
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.FPS < 1 {
		return errors.New("export.fps must be >= 1")
	}
	return nil
}

func (c *Config) validateWhisperX() error {
	switch c.WhisperX.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("whisperx.vad_method must be silero or pyannote, got %q", c.WhisperX.VADMethod)
	}
	if c.WhisperX.VADMethod == "pyannote" && c.WhisperX.HFToken == "" {
		return errors.New("whisperx.hf_token must be set when whisperx.vad_method is pyannote (or set HF_TOKEN)")
	}
	return nil
}

func (c *Config) validateWatch() error {
	return ensurePositiveMap(map[string]int{
		"watch.max_concurrent":  c.Watch.MaxConcurrent,
		"watch.settle_delay_ms": c.Watch.SettleDelayMS,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
