package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"clipflow/internal/services"
)

// Create inserts a new project in the created state.
func (s *Store) Create(ctx context.Context, name string, settings Settings) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "project", "create", "name is required", nil)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}

	id := NewProjectID()
	timestamp := formatTime(time.Now())
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO projects (
            id, name, status, settings_json, progress, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		name,
		StatusCreated,
		string(settingsJSON),
		0.0,
		timestamp,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return s.Get(ctx, id)
}

// Get fetches a project by identifier. It returns nil when no row matches.
func (s *Store) Get(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// MustGet is Get that reports a missing project as ErrNotFound.
func (s *Store) MustGet(ctx context.Context, id string) (*Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, services.Wrap(services.ErrNotFound, "project", "get", fmt.Sprintf("project %s not found", id), nil)
	}
	return p, nil
}

// List returns projects newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Update persists every mutable column of p.
func (s *Store) Update(ctx context.Context, p *Project) error {
	if p == nil {
		return errors.New("project is nil")
	}
	settingsJSON, err := json.Marshal(p.Settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE projects SET
            name = ?, status = ?, source_path = ?, source_filename = ?,
            duration_seconds = ?, settings_json = ?, error_message = ?,
            progress = ?, updated_at = ?
        WHERE id = ?`,
		p.Name,
		p.Status,
		nullableString(p.SourcePath),
		nullableString(p.SourceFilename),
		p.DurationSeconds,
		string(settingsJSON),
		nullableString(p.ErrorMessage),
		p.Progress,
		formatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return requireRow(res, "update", p.ID)
}

// UpdateProgress records an analysis checkpoint.
func (s *Store) UpdateProgress(ctx context.Context, id string, progress float64) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE projects SET progress = ?, updated_at = ? WHERE id = ?`,
		progress,
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return requireRow(res, "progress", id)
}

// Delete removes a project and, by cascade, its analysis rows.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ResetStuckAnalyzing marks projects left in the analyzing state by a
// crashed process as failed.
func (s *Store) ResetStuckAnalyzing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE projects SET status = ?, error_message = ?, updated_at = ? WHERE status = ?`,
		StatusError,
		"analysis interrupted",
		formatTime(time.Now()),
		StatusAnalyzing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck analyzing: %w", err)
	}
	return res.RowsAffected()
}

// CountByStatus returns the number of projects in each status.
func (s *Store) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(*) FROM projects GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[Status(status)] = count
	}
	return counts, rows.Err()
}

func requireRow(res sql.Result, operation, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "project", operation, fmt.Sprintf("project %s not found", id), nil)
	}
	return nil
}
