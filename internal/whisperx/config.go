package whisperx

import (
	"strings"

	"clipflow/internal/config"
)

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the default model size when callers pass none.
	Model string
	// Language is the default spoken language when callers pass none.
	Language string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// VADMethod selects the voice activity detection method ("silero" or "pyannote").
	VADMethod string
	// HFToken is the Hugging Face token for pyannote VAD.
	HFToken string
	// ComputeType is the CTranslate2 quantization, e.g. "int8".
	ComputeType string
	// Launcher is the executable that runs WhisperX, normally uvx.
	Launcher string
}

// ConfigFromSettings maps the [whisperx] config section.
func ConfigFromSettings(cfg *config.Config) Config {
	return Config{
		Model:       cfg.WhisperX.Model,
		Language:    cfg.WhisperX.Language,
		CUDAEnabled: cfg.WhisperX.CUDAEnabled,
		VADMethod:   cfg.WhisperX.VADMethod,
		HFToken:     cfg.WhisperX.HFToken,
		ComputeType: cfg.WhisperX.ComputeType,
		Launcher:    cfg.WhisperXRunner(),
	}
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel
	}
	if strings.TrimSpace(c.VADMethod) == "" {
		c.VADMethod = VADMethodSilero
	}
	if strings.TrimSpace(c.ComputeType) == "" {
		if c.CUDAEnabled {
			c.ComputeType = CUDAComputeType
		} else {
			c.ComputeType = CPUComputeType
		}
	}
	if strings.TrimSpace(c.Launcher) == "" {
		c.Launcher = UVXCommand
	}
	return c
}

// WhisperX configuration constants.
const (
	DefaultModel      = "base"
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	BatchSize         = "4"
	ChunkSize         = "15"
	BeamSize          = "5"
	SegmentResolution = "sentence"
	OutputFormat      = "json"
	CPUDevice         = "cpu"
	CUDADevice        = "cuda"
	CPUComputeType    = "int8"
	CUDAComputeType   = "float16"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"
	UVXCommand        = "uvx"
)
