package workflow

import (
	"context"
	"fmt"

	"clipflow/internal/logging"
	"clipflow/internal/services"
	"clipflow/internal/slicer"
)

// ToggleSegment flips a segment's enabled flag.
func (s *Service) ToggleSegment(ctx context.Context, projectID, segmentID string) (slicer.Segment, error) {
	return s.editSegment(ctx, projectID, segmentID, "toggle", func(seg *slicer.Segment) error {
		seg.Toggle()
		return nil
	})
}

// PatchSegment moves a segment's start and/or end. A nil bound is left
// unchanged. The end may not pass the source duration.
func (s *Service) PatchSegment(ctx context.Context, projectID, segmentID string, start, end *float64) (slicer.Segment, error) {
	if start == nil && end == nil {
		return slicer.Segment{}, services.Wrap(services.ErrValidation, "edit", "patch segment", "start or end is required", nil)
	}
	return s.editSegment(ctx, projectID, segmentID, "patch", func(seg *slicer.Segment) error {
		return seg.Patch(start, end)
	})
}

func (s *Service) editSegment(ctx context.Context, projectID, segmentID, op string, mutate func(*slicer.Segment) error) (slicer.Segment, error) {
	p, err := s.store.MustGet(ctx, projectID)
	if err != nil {
		return slicer.Segment{}, err
	}
	running, err := s.AnalysisRunning(projectID)
	if err != nil {
		return slicer.Segment{}, err
	}
	if running {
		return slicer.Segment{}, services.Wrap(services.ErrConflict, "edit", op,
			fmt.Sprintf("project %s is being analyzed", projectID), nil)
	}

	segments, err := s.store.Segments(ctx, projectID)
	if err != nil {
		return slicer.Segment{}, err
	}
	if len(segments) == 0 {
		return slicer.Segment{}, services.Wrap(services.ErrPrecondition, "edit", op,
			fmt.Sprintf("project %s has no segments; run analysis first", projectID), nil)
	}
	idx := slicer.Find(segments, segmentID)
	if idx < 0 {
		return slicer.Segment{}, services.Wrap(services.ErrNotFound, "edit", op,
			fmt.Sprintf("segment %s not found in project %s", segmentID, projectID), nil)
	}

	seg := segments[idx]
	if err := mutate(&seg); err != nil {
		return slicer.Segment{}, err
	}
	if p.DurationSeconds > 0 && seg.End > p.DurationSeconds {
		return slicer.Segment{}, services.Wrap(services.ErrValidation, "edit", op,
			fmt.Sprintf("end %.3f is past the source duration %.3f", seg.End, p.DurationSeconds), nil)
	}
	if err := s.store.UpdateSegment(ctx, projectID, seg); err != nil {
		return slicer.Segment{}, err
	}

	logging.WithContext(services.WithProjectID(ctx, projectID), s.logger).Info("segment edited",
		logging.String(logging.FieldEventType, "segment_"+op),
		logging.String(logging.FieldSegmentID, seg.ID),
		logging.Float64("start", seg.Start),
		logging.Float64("end", seg.End),
		logging.Bool("enabled", seg.Enabled),
	)
	return seg, nil
}
