package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"clipflow/internal/logging"
	"clipflow/internal/services"
)

// Ingest creates a project named after the file at path, moves the file into
// it, and analyzes it. A failed import removes the new project again; a
// failed analysis leaves it in the error state for inspection.
func (s *Service) Ingest(ctx context.Context, path string) (*AnalysisResult, error) {
	if !IsVideoFile(path) {
		return nil, services.Wrap(services.ErrValidation, "ingest", "check extension",
			fmt.Sprintf("%s is not a supported video file", path), nil)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p, err := s.CreateProject(ctx, name, nil)
	if err != nil {
		return nil, err
	}
	if _, err := s.ImportSource(ctx, p.ID, path, ImportOptions{Move: true}); err != nil {
		if delErr := s.DeleteProject(context.WithoutCancel(ctx), p.ID); delErr != nil {
			s.logger.Warn("failed to remove project after import failure",
				logging.String(logging.FieldProjectID, p.ID),
				logging.Error(delErr),
			)
		}
		return nil, err
	}
	return s.Analyze(ctx, p.ID, nil)
}
