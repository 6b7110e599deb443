package project

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipflow/internal/config"
	"clipflow/internal/marker"
	"clipflow/internal/services"
	"clipflow/internal/slicer"
)

// Status represents the lifecycle of a project.
type Status string

const (
	StatusCreated   Status = "created"
	StatusUploaded  Status = "uploaded"
	StatusAnalyzing Status = "analyzing"
	StatusAnalyzed  Status = "analyzed"
	StatusError     Status = "error"
)

var allStatuses = []Status{
	StatusCreated,
	StatusUploaded,
	StatusAnalyzing,
	StatusAnalyzed,
	StatusError,
}

// AllStatuses returns every known project status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus converts a string into a Status, reporting whether it is known.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// HasSource reports whether a recording has been imported.
func (s Status) HasSource() bool {
	return s != StatusCreated
}

// Settings is the per-project analysis configuration, snapshotted from the
// global config when the project is created.
type Settings struct {
	Mode           string   `json:"mode"`
	Language       string   `json:"language"`
	Model          string   `json:"model_size"`
	NGKeywords     []string `json:"ng_keywords"`
	OKKeywords     []string `json:"ok_keywords"`
	StartKeywords  []string `json:"start_keywords"`
	EndKeywords    []string `json:"end_keywords"`
	PreBuffer      float64  `json:"pre_buffer"`
	PostBuffer     float64  `json:"post_buffer"`
	MaxWindowWords int      `json:"max_window_words"`
}

// SettingsFromConfig copies the analysis defaults out of cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Mode:           cfg.Analysis.Mode,
		Language:       cfg.WhisperX.Language,
		Model:          cfg.WhisperX.Model,
		NGKeywords:     cloneStrings(cfg.Analysis.NGKeywords),
		OKKeywords:     cloneStrings(cfg.Analysis.OKKeywords),
		StartKeywords:  cloneStrings(cfg.Analysis.StartKeywords),
		EndKeywords:    cloneStrings(cfg.Analysis.EndKeywords),
		PreBuffer:      cfg.Analysis.PreBuffer,
		PostBuffer:     cfg.Analysis.PostBuffer,
		MaxWindowWords: cfg.Analysis.MaxWindowWords,
	}
}

// Keywords returns the settings' keyword sets.
func (s Settings) Keywords() marker.KeywordSets {
	return marker.KeywordSets{
		NG:    s.NGKeywords,
		OK:    s.OKKeywords,
		Start: s.StartKeywords,
		End:   s.EndKeywords,
	}
}

// Validate checks the settings before they are stored or used.
func (s Settings) Validate() error {
	if _, err := slicer.ParseMode(s.Mode); err != nil {
		return services.Wrap(services.ErrValidation, "settings", "validate", err.Error(), nil)
	}
	if s.PreBuffer < 0 || s.PostBuffer < 0 {
		return services.Wrap(services.ErrValidation, "settings", "validate",
			fmt.Sprintf("buffers must be >= 0 (pre=%v post=%v)", s.PreBuffer, s.PostBuffer), nil)
	}
	if s.MaxWindowWords < 0 {
		return services.Wrap(services.ErrValidation, "settings", "validate",
			fmt.Sprintf("max window words must be >= 0, got %d", s.MaxWindowWords), nil)
	}
	return nil
}

// SliceOptions converts the settings into slicer options.
func (s Settings) SliceOptions() (slicer.Options, error) {
	mode, err := slicer.ParseMode(s.Mode)
	if err != nil {
		return slicer.Options{}, services.Wrap(services.ErrValidation, "settings", "slice options", err.Error(), nil)
	}
	return slicer.Options{Mode: mode, PreBuffer: s.PreBuffer, PostBuffer: s.PostBuffer}, nil
}

// Project is the persisted state of one rough-cut job.
type Project struct {
	ID              string
	Name            string
	Status          Status
	SourcePath      string
	SourceFilename  string
	DurationSeconds float64
	Settings        Settings
	ErrorMessage    string
	Progress        float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewProjectID returns a fresh "proj_" identifier.
func NewProjectID() string {
	id := uuid.New()
	return "proj_" + hex.EncodeToString(id[:4])
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
