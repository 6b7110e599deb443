package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"clipflow/internal/fileutil"
	"clipflow/internal/logging"
	"clipflow/internal/project"
	"clipflow/internal/services"
	"clipflow/internal/textutil"
)

// VideoExtensions lists the source containers accepted by ImportSource.
var VideoExtensions = []string{".mp4", ".mov", ".mkv", ".avi", ".webm", ".mts"}

// IsVideoFile reports whether path has an accepted video extension.
func IsVideoFile(path string) bool {
	return slices.Contains(VideoExtensions, strings.ToLower(filepath.Ext(path)))
}

// ImportOptions controls how a source file enters a project.
type ImportOptions struct {
	// Move relocates the file instead of copying it.
	Move bool
}

// CreateProject creates a project, filling unset settings from config.
func (s *Service) CreateProject(ctx context.Context, name string, settings *project.Settings) (*project.Project, error) {
	resolved := project.SettingsFromConfig(s.cfg)
	if settings != nil {
		resolved = *settings
	}
	p, err := s.store.Create(ctx, name, resolved)
	if err != nil {
		return nil, err
	}
	s.logger.Info("project created",
		logging.String(logging.FieldProjectID, p.ID),
		logging.String("name", p.Name),
		logging.String("mode", p.Settings.Mode),
	)
	return p, nil
}

// ImportSource places a video into the project's media directory, records it
// as the project's source, and discards any previous analysis.
func (s *Service) ImportSource(ctx context.Context, projectID, sourcePath string, opts ImportOptions) (*project.Project, error) {
	p, err := s.store.MustGet(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !IsVideoFile(sourcePath) {
		return nil, services.Wrap(services.ErrValidation, "import", "check extension",
			fmt.Sprintf("unsupported file type %q (supported: %s)", filepath.Ext(sourcePath), strings.Join(VideoExtensions, ", ")), nil)
	}
	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "import", "stat source", sourcePath, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "import", "stat source", fmt.Sprintf("%s is a directory", sourcePath), nil)
	}
	running, err := s.AnalysisRunning(projectID)
	if err != nil {
		return nil, err
	}
	if running {
		return nil, services.Wrap(services.ErrConflict, "import", "lock",
			fmt.Sprintf("project %s is being analyzed", projectID), nil)
	}

	filename := filepath.Base(sourcePath)
	mediaDir := s.mediaDir(projectID)
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure media dir: %w", err)
	}
	dest := filepath.Join(mediaDir, textutil.ExportBaseName(filename, "source"+strings.ToLower(filepath.Ext(filename))))
	if opts.Move {
		err = fileutil.Move(sourcePath, dest)
	} else {
		_, err = fileutil.CopyVerified(sourcePath, dest)
	}
	if err != nil {
		return nil, fmt.Errorf("import source: %w", err)
	}
	if previous := strings.TrimSpace(p.SourcePath); previous != "" && previous != dest {
		_ = os.Remove(previous)
	}

	if err := s.store.ClearAnalysis(ctx, projectID); err != nil {
		return nil, err
	}
	p.Status = project.StatusUploaded
	p.SourcePath = dest
	p.SourceFilename = filename
	p.DurationSeconds = 0
	p.Progress = 0
	p.ErrorMessage = ""
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("source imported",
		logging.String(logging.FieldProjectID, projectID),
		logging.String("source_file", filename),
		logging.String("path", dest),
		logging.Bool("moved", opts.Move),
	)
	return p, nil
}

// DeleteProject removes the project row and its working directory.
func (s *Service) DeleteProject(ctx context.Context, projectID string) error {
	running, err := s.AnalysisRunning(projectID)
	if err != nil {
		return err
	}
	if running {
		return services.Wrap(services.ErrConflict, "delete", "lock",
			fmt.Sprintf("project %s is being analyzed", projectID), nil)
	}
	deleted, err := s.store.Delete(ctx, projectID)
	if err != nil {
		return err
	}
	if !deleted {
		return services.Wrap(services.ErrNotFound, "delete", "", fmt.Sprintf("project %s not found", projectID), nil)
	}
	if err := os.RemoveAll(s.projectDir(projectID)); err != nil {
		s.logger.Warn("failed to remove project directory",
			logging.String(logging.FieldProjectID, projectID),
			logging.Error(err),
		)
	}
	s.logger.Info("project deleted", logging.String(logging.FieldProjectID, projectID))
	return nil
}

// UpdateSettings replaces a project's analysis settings. The new settings
// take effect on the next Analyze or Reslice.
func (s *Service) UpdateSettings(ctx context.Context, projectID string, settings project.Settings) (*project.Project, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	p, err := s.store.MustGet(ctx, projectID)
	if err != nil {
		return nil, err
	}
	running, err := s.AnalysisRunning(projectID)
	if err != nil {
		return nil, err
	}
	if running {
		return nil, services.Wrap(services.ErrConflict, "settings", "lock",
			fmt.Sprintf("project %s is being analyzed", projectID), nil)
	}
	p.Settings = settings
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
