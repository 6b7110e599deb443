package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clipflow/internal/export"
	"clipflow/internal/logging"
	"clipflow/internal/project"
	"clipflow/internal/services"
	"clipflow/internal/slicer"
	"clipflow/internal/textutil"
)

// Format names an export target.
type Format string

const (
	FormatEDL   Format = "edl"
	FormatXML   Format = "xml"
	FormatSRT   Format = "srt"
	FormatVideo Format = "video"
)

// Formats lists every supported export format.
var Formats = []Format{FormatEDL, FormatXML, FormatSRT, FormatVideo}

// ParseFormat converts a user-supplied format name.
func ParseFormat(value string) (Format, error) {
	normalized := Format(strings.ToLower(strings.TrimSpace(value)))
	for _, f := range Formats {
		if f == normalized {
			return f, nil
		}
	}
	return "", services.Wrap(services.ErrValidation, "export", "parse format",
		fmt.Sprintf("unknown export format %q", value), nil)
}

// Extension returns the file extension written for the format.
func (f Format) Extension() string {
	if f == FormatVideo {
		return ".mp4"
	}
	return "." + string(f)
}

// ExportResult describes a written export.
type ExportResult struct {
	Format   Format
	Path     string
	Segments int
	// Content holds the document text for EDL, XML, and SRT exports.
	Content string
}

// Render builds the text document for format without writing it.
func (s *Service) Render(ctx context.Context, projectID string, format Format) (string, error) {
	if format == FormatVideo {
		return "", services.Wrap(services.ErrValidation, "export", "render", "video exports are written to a file", nil)
	}
	p, segments, err := s.exportInputs(ctx, projectID)
	if err != nil {
		return "", err
	}
	return s.renderDocument(ctx, p, segments, format)
}

// Export writes the requested format for a project. An empty output path
// writes into the project's exports directory.
func (s *Service) Export(ctx context.Context, projectID string, format Format, output string) (*ExportResult, error) {
	p, segments, err := s.exportInputs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(output) == "" {
		output = s.defaultExportPath(p, format)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, fmt.Errorf("ensure export dir: %w", err)
	}

	result := &ExportResult{Format: format, Path: output, Segments: len(export.Selected(segments))}
	if format == FormatVideo {
		if err := s.media.Concat(services.WithStage(ctx, "render"), p.SourcePath, export.KeepRanges(segments), output); err != nil {
			return nil, err
		}
	} else {
		content, err := s.renderDocument(ctx, p, segments, format)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(output, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s export: %w", format, err)
		}
		result.Content = content
	}

	logging.WithContext(services.WithProjectID(ctx, projectID), s.logger).Info("export written",
		logging.String(logging.FieldEventType, "export_complete"),
		logging.String("format", string(format)),
		logging.String("path", output),
		logging.Int("segments", result.Segments),
	)
	return result, nil
}

func (s *Service) exportInputs(ctx context.Context, projectID string) (*project.Project, []slicer.Segment, error) {
	p, err := s.store.MustGet(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	segments, err := s.store.Segments(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if len(segments) == 0 {
		return nil, nil, services.Wrap(services.ErrPrecondition, "export", "load segments",
			fmt.Sprintf("project %s has no segments; run analysis first", projectID), nil)
	}
	if len(export.Selected(segments)) == 0 {
		return nil, nil, services.Wrap(services.ErrPrecondition, "export", "select segments",
			fmt.Sprintf("project %s has no enabled keep segments to export", projectID), nil)
	}
	return p, segments, nil
}

func (s *Service) renderDocument(ctx context.Context, p *project.Project, segments []slicer.Segment, format Format) (string, error) {
	opts := s.documentOptions(p)
	switch format {
	case FormatEDL:
		return export.EDL(segments, opts), nil
	case FormatXML:
		return export.XML(segments, opts), nil
	case FormatSRT:
		tr, err := s.store.Transcript(ctx, p.ID)
		if err != nil {
			return "", err
		}
		if tr == nil {
			return "", services.Wrap(services.ErrPrecondition, "export", "srt",
				fmt.Sprintf("project %s has no transcript", p.ID), nil)
		}
		return export.SRT(segments, *tr, export.FilterKeywords(p.Settings.Keywords())), nil
	default:
		return "", services.Wrap(services.ErrValidation, "export", "render",
			fmt.Sprintf("format %q has no text document", format), nil)
	}
}

func (s *Service) documentOptions(p *project.Project) export.Options {
	source := strings.TrimSpace(p.SourceFilename)
	if source == "" {
		source = s.cfg.Export.DefaultSourceName
	}
	return export.Options{
		FPS:        s.cfg.Export.FPS,
		Title:      p.Name + s.cfg.Export.TitleSuffix,
		SourceName: source,
	}
}

func (s *Service) defaultExportPath(p *project.Project, format Format) string {
	base := textutil.ExportBaseName(p.Name, p.ID)
	if format == FormatVideo {
		base += "_export"
	}
	return filepath.Join(s.ExportDir(p.ID), base+format.Extension())
}
