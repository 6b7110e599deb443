package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAnalysis()
	c.normalizeExport()
	c.normalizeWhisperX()
	c.normalizeRender()
	if err := c.normalizeWatch(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAnalysis() {
	c.Analysis.Mode = strings.ToLower(strings.TrimSpace(c.Analysis.Mode))
	if c.Analysis.Mode == "" {
		c.Analysis.Mode = defaultMode
	}
	if c.Analysis.MaxWindowWords == 0 {
		c.Analysis.MaxWindowWords = defaultMaxWindowWords
	}
	c.Analysis.NGKeywords = normalizeKeywords(c.Analysis.NGKeywords)
	c.Analysis.OKKeywords = normalizeKeywords(c.Analysis.OKKeywords)
	c.Analysis.StartKeywords = normalizeKeywords(c.Analysis.StartKeywords)
	c.Analysis.EndKeywords = normalizeKeywords(c.Analysis.EndKeywords)
}

// normalizeKeywords trims entries and drops blanks and exact duplicates while
// keeping the configured priority order.
func normalizeKeywords(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func (c *Config) normalizeExport() {
	if c.Export.FPS == 0 {
		c.Export.FPS = defaultFPS
	}
	c.Export.TitleSuffix = strings.TrimSpace(c.Export.TitleSuffix)
	c.Export.DefaultSourceName = strings.TrimSpace(c.Export.DefaultSourceName)
	if c.Export.DefaultSourceName == "" {
		c.Export.DefaultSourceName = defaultSourceName
	}
}

func (c *Config) normalizeWhisperX() {
	c.WhisperX.Model = strings.TrimSpace(c.WhisperX.Model)
	if c.WhisperX.Model == "" {
		c.WhisperX.Model = defaultWhisperXModel
	}
	c.WhisperX.Language = strings.ToLower(strings.TrimSpace(c.WhisperX.Language))
	if c.WhisperX.Language == "" {
		c.WhisperX.Language = defaultWhisperXLanguage
	}
	c.WhisperX.VADMethod = strings.ToLower(strings.TrimSpace(c.WhisperX.VADMethod))
	if c.WhisperX.VADMethod == "" {
		c.WhisperX.VADMethod = defaultWhisperXVAD
	}
	c.WhisperX.HFToken = strings.TrimSpace(c.WhisperX.HFToken)
	if c.WhisperX.HFToken == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.WhisperX.HFToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.WhisperX.HFToken = strings.TrimSpace(value)
		}
	}
	c.WhisperX.ComputeType = strings.ToLower(strings.TrimSpace(c.WhisperX.ComputeType))
	if c.WhisperX.ComputeType == "" {
		if c.WhisperX.CUDAEnabled {
			c.WhisperX.ComputeType = defaultComputeTypeCUDA
		} else {
			c.WhisperX.ComputeType = defaultComputeTypeCPU
		}
	}
}

func (c *Config) normalizeRender() {
	c.Render.VideoCodec = strings.TrimSpace(c.Render.VideoCodec)
	if c.Render.VideoCodec == "" {
		c.Render.VideoCodec = defaultVideoCodec
	}
	c.Render.Preset = strings.TrimSpace(c.Render.Preset)
	if c.Render.Preset == "" {
		c.Render.Preset = defaultVideoPreset
	}
	c.Render.AudioCodec = strings.TrimSpace(c.Render.AudioCodec)
	if c.Render.AudioCodec == "" {
		c.Render.AudioCodec = defaultAudioCodec
	}
}

func (c *Config) normalizeWatch() error {
	var err error
	if c.Watch.InboxDir, err = expandPath(strings.TrimSpace(c.Watch.InboxDir)); err != nil {
		return fmt.Errorf("watch.inbox_dir: %w", err)
	}
	if c.Watch.MaxConcurrent == 0 {
		c.Watch.MaxConcurrent = defaultWatchConcurrency
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
