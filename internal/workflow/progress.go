package workflow

import (
	"context"
	"log/slog"

	"clipflow/internal/logging"
	"clipflow/internal/project"
)

// Analysis checkpoints, as fractions of the whole pipeline.
const (
	ProgressProbe           = 0.05
	ProgressExtract         = 0.10
	ProgressTranscribeStart = 0.20
	ProgressTranscribeSpan  = 0.50
	ProgressDetect          = 0.75
	ProgressSlice           = 0.85
	ProgressDone            = 1.0
)

// ProgressFunc receives pipeline progress in [0,1] with a stage label.
type ProgressFunc func(stage string, fraction float64)

// progressTracker keeps reported progress monotonic, persists it on the
// project row, and forwards it to the caller.
type progressTracker struct {
	store   *project.Store
	id      string
	notify  ProgressFunc
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	current float64
}

func newProgressTracker(store *project.Store, id string, notify ProgressFunc, logger *slog.Logger) *progressTracker {
	return &progressTracker{
		store:   store,
		id:      id,
		notify:  notify,
		logger:  logger,
		sampler: logging.NewProgressSampler(0.1),
	}
}

func (p *progressTracker) report(ctx context.Context, stage string, fraction float64) {
	switch {
	case fraction < 0:
		fraction = 0
	case fraction > 1:
		fraction = 1
	}
	if fraction < p.current {
		fraction = p.current
	}
	p.current = fraction
	if err := p.store.UpdateProgress(ctx, p.id, fraction); err != nil {
		p.logger.Warn("failed to persist progress",
			logging.Float64("progress", fraction),
			logging.Error(err),
		)
	}
	if p.sampler.ShouldLog(fraction, stage) {
		p.logger.Debug("analysis progress",
			logging.String(logging.FieldStage, stage),
			logging.Float64("progress", fraction),
		)
	}
	if p.notify != nil {
		p.notify(stage, fraction)
	}
}
