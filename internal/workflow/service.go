package workflow

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"clipflow/internal/config"
	"clipflow/internal/deps"
	"clipflow/internal/export"
	"clipflow/internal/logging"
	"clipflow/internal/media/ffmpeg"
	"clipflow/internal/media/ffprobe"
	"clipflow/internal/project"
	"clipflow/internal/transcript"
	"clipflow/internal/whisperx"
)

// Prober reports the duration of a source recording.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// MediaTool extracts audio and renders cut videos.
type MediaTool interface {
	ExtractAudio(ctx context.Context, source, dest string) error
	Concat(ctx context.Context, source string, ranges []export.Range, dest string) error
}

// Transcriber turns an audio file into a transcript. whisperx.Cache
// satisfies it.
type Transcriber interface {
	Transcribe(ctx context.Context, audio, outputDir, model, language string, progress whisperx.ProgressFunc) (transcript.Transcript, error)
}

// Service coordinates project analysis, segment edits, and exports.
type Service struct {
	cfg         *config.Config
	store       *project.Store
	prober      Prober
	media       MediaTool
	transcriber Transcriber
	logger      *slog.Logger
	now         func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithProber replaces the ffprobe collaborator.
func WithProber(p Prober) Option {
	return func(s *Service) { s.prober = p }
}

// WithMediaTool replaces the ffmpeg collaborator.
func WithMediaTool(m MediaTool) Option {
	return func(s *Service) { s.media = m }
}

// NewService wires a Service. The transcriber is owned by the caller so its
// model cache can outlive a single analysis.
func NewService(cfg *config.Config, store *project.Store, transcriber Transcriber, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Service{
		cfg:         cfg,
		store:       store,
		prober:      ffprobe.NewProber(deps.ResolveFFprobe(cfg.FFmpegBinary(), cfg.FFprobeBinary())),
		media:       ffmpeg.New(cfg.FFmpegBinary(), ffmpeg.RenderOptionsFromConfig(cfg.Render)),
		transcriber: transcriber,
		logger:      logging.NewComponentLogger(logger, "workflow"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the underlying project store.
func (s *Service) Store() *project.Store {
	return s.store
}

func (s *Service) projectDir(id string) string {
	return s.cfg.ProjectDir(id)
}

func (s *Service) mediaDir(id string) string {
	return filepath.Join(s.projectDir(id), "media")
}

func (s *Service) workDir(id string) string {
	return filepath.Join(s.projectDir(id), "work")
}

// ExportDir returns where export documents for a project are written.
func (s *Service) ExportDir(id string) string {
	return filepath.Join(s.projectDir(id), "exports")
}

func (s *Service) audioPath(id string) string {
	return filepath.Join(s.workDir(id), "audio.wav")
}
