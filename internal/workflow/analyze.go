package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipflow/internal/logging"
	"clipflow/internal/marker"
	"clipflow/internal/project"
	"clipflow/internal/services"
	"clipflow/internal/slicer"
	"clipflow/internal/transcript"
)

// AnalysisResult summarizes a completed analysis.
type AnalysisResult struct {
	Project    *project.Project
	Transcript transcript.Transcript
	Markers    []marker.Marker
	Segments   []slicer.Segment
}

// Analyze runs the full pipeline for a project: probe, extract audio,
// transcribe, detect markers, and slice. Progress is persisted and forwarded
// to progress, which may be nil. A second concurrent analysis of the same
// project fails with services.ErrConflict.
func (s *Service) Analyze(ctx context.Context, projectID string, progress ProgressFunc) (*AnalysisResult, error) {
	return s.analyze(ctx, projectID, progress, false)
}

// Reslice re-runs marker detection and slicing on the stored transcript,
// picking up changed keywords, mode, or buffers without transcribing again.
func (s *Service) Reslice(ctx context.Context, projectID string, progress ProgressFunc) (*AnalysisResult, error) {
	return s.analyze(ctx, projectID, progress, true)
}

func (s *Service) analyze(ctx context.Context, projectID string, progress ProgressFunc, reuseTranscript bool) (*AnalysisResult, error) {
	if _, err := s.store.MustGet(ctx, projectID); err != nil {
		return nil, err
	}

	lock, err := acquireProjectLock(s.projectDir(projectID), projectID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.release(); err != nil {
			s.logger.Warn("failed to release analysis lock", logging.Error(err))
		}
	}()

	// Everything the run depends on is read under the lock.
	p, err := s.store.MustGet(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !p.Status.HasSource() || strings.TrimSpace(p.SourcePath) == "" {
		return nil, services.Wrap(services.ErrPrecondition, "analyze", "check source",
			fmt.Sprintf("project %s has no source video; import one first", projectID), nil)
	}

	var stored *transcript.Transcript
	if reuseTranscript {
		stored, err = s.store.Transcript(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if stored == nil || p.DurationSeconds <= 0 {
			return nil, services.Wrap(services.ErrPrecondition, "analyze", "load transcript",
				fmt.Sprintf("project %s has not been transcribed yet", projectID), nil)
		}
	}

	ctx = services.WithProjectID(ctx, projectID)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, s.logger)

	if p.Status == project.StatusAnalyzing {
		logger.Info("re-running stale analysis", logging.String(logging.FieldEventType, "analysis_stale"))
	}
	p.Status = project.StatusAnalyzing
	p.Progress = 0
	p.ErrorMessage = ""
	if err := s.store.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("persist analyzing status: %w", err)
	}

	started := s.now()
	logger.Info("analysis started",
		logging.String(logging.FieldEventType, "analysis_start"),
		logging.String("source_file", p.SourceFilename),
		logging.String("mode", p.Settings.Mode),
		logging.Bool("reuse_transcript", reuseTranscript),
	)

	tracker := newProgressTracker(s.store, projectID, progress, logger)
	result, err := s.runPipeline(ctx, p, stored, tracker, logger)
	if err != nil {
		s.markFailed(ctx, p, err, logger)
		return nil, err
	}

	p.Status = project.StatusAnalyzed
	p.Progress = ProgressDone
	if err := s.store.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("persist analyzed status: %w", err)
	}
	result.Project = p

	logger.Info("analysis completed",
		logging.String(logging.FieldEventType, "analysis_complete"),
		logging.Int("markers", len(result.Markers)),
		logging.Int("segments", len(result.Segments)),
		logging.Float64("kept_seconds", slicer.KeptDuration(result.Segments)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

func (s *Service) runPipeline(ctx context.Context, p *project.Project, stored *transcript.Transcript, tracker *progressTracker, logger *slog.Logger) (*AnalysisResult, error) {
	result := &AnalysisResult{}

	if stored != nil {
		result.Transcript = *stored
	} else {
		tr, err := s.transcribeSource(ctx, p, tracker, logger)
		if err != nil {
			return nil, err
		}
		result.Transcript = tr
	}

	tracker.report(ctx, "detect", ProgressDetect)
	detector := marker.NewDetector(marker.Options{
		MaxWindowWords: p.Settings.MaxWindowWords,
		Logger:         logger.With(logging.String(logging.FieldStage, "detect")),
	})
	result.Markers = detector.Detect(result.Transcript, p.Settings.Keywords())

	tracker.report(ctx, "slice", ProgressSlice)
	opts, err := p.Settings.SliceOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = logger.With(logging.String(logging.FieldStage, "slice"))
	segments, err := slicer.Slice(result.Markers, p.DurationSeconds, opts)
	if err != nil {
		return nil, err
	}
	result.Segments = segments

	if err := s.store.ReplaceAnalysis(ctx, p.ID, result.Markers, result.Segments); err != nil {
		return nil, err
	}
	tracker.report(ctx, "done", ProgressDone)
	return result, nil
}

func (s *Service) transcribeSource(ctx context.Context, p *project.Project, tracker *progressTracker, logger *slog.Logger) (transcript.Transcript, error) {
	tracker.report(ctx, "probe", ProgressProbe)
	duration, err := s.prober.Duration(services.WithStage(ctx, "probe"), p.SourcePath)
	if err != nil {
		return transcript.Transcript{}, err
	}
	p.DurationSeconds = duration
	if err := s.store.Update(ctx, p); err != nil {
		return transcript.Transcript{}, fmt.Errorf("persist duration: %w", err)
	}
	logger.Info("source probed", logging.Float64("duration_seconds", duration))

	tracker.report(ctx, "extract", ProgressExtract)
	audio := s.audioPath(p.ID)
	if err := s.media.ExtractAudio(services.WithStage(ctx, "extract"), p.SourcePath, audio); err != nil {
		return transcript.Transcript{}, err
	}

	tracker.report(ctx, "transcribe", ProgressTranscribeStart)
	if s.transcriber == nil {
		return transcript.Transcript{}, services.Wrap(services.ErrConfiguration, "transcribe", "", "no transcriber configured", nil)
	}
	tr, err := s.transcriber.Transcribe(
		services.WithStage(ctx, "transcribe"),
		audio,
		s.workDir(p.ID),
		p.Settings.Model,
		p.Settings.Language,
		func(fraction float64) {
			tracker.report(ctx, "transcribe", ProgressTranscribeStart+ProgressTranscribeSpan*fraction)
		},
	)
	if err != nil {
		return transcript.Transcript{}, err
	}
	tr.Normalize()
	if err := s.store.SaveTranscript(ctx, p.ID, tr); err != nil {
		return transcript.Transcript{}, err
	}
	return tr, nil
}

func (s *Service) markFailed(ctx context.Context, p *project.Project, cause error, logger *slog.Logger) {
	message := strings.TrimSpace(cause.Error())
	if errors.Is(cause, context.Canceled) {
		message = "analysis canceled"
	}
	p.Status = project.StatusError
	p.ErrorMessage = message

	logger.Error("analysis failed",
		logging.String(logging.FieldEventType, "analysis_failure"),
		logging.String("error_kind", services.Kind(cause)),
		logging.Error(cause),
	)
	if err := s.store.Update(context.WithoutCancel(ctx), p); err != nil {
		logger.Error("failed to persist analysis failure", logging.Error(err))
	}
}
