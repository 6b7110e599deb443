package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Analysis contains the defaults copied into every new project's settings.
type Analysis struct {
	Mode           string   `toml:"mode"`
	PreBuffer      float64  `toml:"pre_buffer"`
	PostBuffer     float64  `toml:"post_buffer"`
	MaxWindowWords int      `toml:"max_window_words"`
	NGKeywords     []string `toml:"ng_keywords"`
	OKKeywords     []string `toml:"ok_keywords"`
	StartKeywords  []string `toml:"start_keywords"`
	EndKeywords    []string `toml:"end_keywords"`
}

// Export contains configuration for edit decision and subtitle documents.
type Export struct {
	FPS               float64 `toml:"fps"`
	TitleSuffix       string  `toml:"title_suffix"`
	DefaultSourceName string  `toml:"default_source_name"`
}

// WhisperX contains configuration for speech recognition.
type WhisperX struct {
	Model       string `toml:"model"`
	Language    string `toml:"language"`
	CUDAEnabled bool   `toml:"cuda_enabled"`
	VADMethod   string `toml:"vad_method"`
	HFToken     string `toml:"hf_token"`
	ComputeType string `toml:"compute_type"`
}

// Render contains encoder settings for the cut video export.
type Render struct {
	VideoCodec string `toml:"video_codec"`
	Preset     string `toml:"preset"`
	AudioCodec string `toml:"audio_codec"`
}

// Watch contains configuration for the inbox watcher.
type Watch struct {
	InboxDir      string `toml:"inbox_dir"`
	MaxConcurrent int    `toml:"max_concurrent"`
	SettleDelayMS int    `toml:"settle_delay_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ClipFlow.
//
// Configuration sections by subsystem:
//   - Paths: project data and log directories
//   - Analysis: marker keywords, slicing mode and buffers for new projects
//   - Export: frame rate and naming for EDL/XML/SRT documents
//   - WhisperX: transcription model and runtime settings
//   - Render: ffmpeg encoder settings for video export
//   - Watch: inbox directory ingestion
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Analysis Analysis `toml:"analysis"`
	Export   Export   `toml:"export"`
	WhisperX WhisperX `toml:"whisperx"`
	Render   Render   `toml:"render"`
	Watch    Watch    `toml:"watch"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipflow.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories. The watch inbox is
// created only when configured.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Watch.InboxDir) != "" {
		if err := os.MkdirAll(c.Watch.InboxDir, 0o755); err != nil {
			return fmt.Errorf("create inbox directory %q: %w", c.Watch.InboxDir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "clipflow.db")
}

// ProjectDir returns the per-project working directory.
func (c *Config) ProjectDir(projectID string) string {
	return filepath.Join(c.Paths.DataDir, "projects", projectID)
}

// FFmpegBinary returns the ffmpeg executable name used for extraction and rendering.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for duration probing.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// WhisperXRunner returns the launcher used to invoke WhisperX.
func (c *Config) WhisperXRunner() string {
	return "uvx"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
