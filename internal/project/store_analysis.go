package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clipflow/internal/marker"
	"clipflow/internal/services"
	"clipflow/internal/slicer"
	"clipflow/internal/transcript"
)

// SaveTranscript stores tr as the project's transcript, replacing any
// previous one.
func (s *Store) SaveTranscript(ctx context.Context, projectID string, tr transcript.Transcript) error {
	segmentsJSON, err := json.Marshal(tr.Segments)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO transcripts (project_id, language, segments_json, created_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(project_id) DO UPDATE SET
            language = excluded.language,
            segments_json = excluded.segments_json,
            created_at = excluded.created_at`,
		projectID,
		nullableString(tr.Language),
		string(segmentsJSON),
		formatTime(time.Now()),
	); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

// Transcript loads the project's transcript. It returns nil when the project
// has not been transcribed.
func (s *Store) Transcript(ctx context.Context, projectID string) (*transcript.Transcript, error) {
	var (
		language     sql.NullString
		segmentsJSON string
	)
	err := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT language, segments_json FROM transcripts WHERE project_id = ?`,
		projectID,
	).Scan(&language, &segmentsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	tr := &transcript.Transcript{Language: language.String}
	if err := json.Unmarshal([]byte(segmentsJSON), &tr.Segments); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return tr, nil
}

// ReplaceAnalysis swaps the project's markers and segments for the given
// ones in a single transaction.
func (s *Store) ReplaceAnalysis(ctx context.Context, projectID string, markers []marker.Marker, segments []slicer.Segment) error {
	ctx = ensureContext(ctx)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := clearAnalysis(ctx, tx, projectID); err != nil {
			return err
		}
		for i, m := range markers {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO markers (project_id, position, type, text, start_seconds, end_seconds, confidence)
                VALUES (?, ?, ?, ?, ?, ?, ?)`,
				projectID, i, m.Type.String(), m.Text, m.Start, m.End, m.Confidence,
			); err != nil {
				return fmt.Errorf("insert marker %d: %w", i, err)
			}
		}
		for i, seg := range segments {
			trigger, err := encodeTrigger(seg.Trigger)
			if err != nil {
				return fmt.Errorf("encode trigger: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO segments (project_id, id, position, kind, start_seconds, end_seconds, trigger_json, enabled, manual_adjusted)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				projectID, seg.ID, i, seg.Kind.String(), seg.Start, seg.End, trigger,
				boolToInt(seg.Enabled), boolToInt(seg.ManualAdjusted),
			); err != nil {
				return fmt.Errorf("insert segment %s: %w", seg.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace analysis: %w", err)
	}
	return nil
}

// ClearAnalysis drops the transcript, markers, and segments of a project.
func (s *Store) ClearAnalysis(ctx context.Context, projectID string) error {
	ctx = ensureContext(ctx)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := clearAnalysis(ctx, tx, projectID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM transcripts WHERE project_id = ?`, projectID)
		return err
	})
	if err != nil {
		return fmt.Errorf("clear analysis: %w", err)
	}
	return nil
}

func clearAnalysis(ctx context.Context, tx *sql.Tx, projectID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM markers WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("delete markers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("delete segments: %w", err)
	}
	return nil
}

// Markers returns the project's markers in detection order.
func (s *Store) Markers(ctx context.Context, projectID string) ([]marker.Marker, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT type, text, start_seconds, end_seconds, confidence
        FROM markers WHERE project_id = ? ORDER BY position`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list markers: %w", err)
	}
	defer rows.Close()

	var markers []marker.Marker
	for rows.Next() {
		m, err := scanMarker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan marker: %w", err)
		}
		markers = append(markers, m)
	}
	return markers, rows.Err()
}

// Segments returns the project's segments in timeline order.
func (s *Store) Segments(ctx context.Context, projectID string) ([]slicer.Segment, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT id, kind, start_seconds, end_seconds, trigger_json, enabled, manual_adjusted
        FROM segments WHERE project_id = ? ORDER BY position`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var segments []slicer.Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// UpdateSegment persists a user edit to one segment.
func (s *Store) UpdateSegment(ctx context.Context, projectID string, seg slicer.Segment) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE segments SET start_seconds = ?, end_seconds = ?, enabled = ?, manual_adjusted = ?
        WHERE project_id = ? AND id = ?`,
		seg.Start,
		seg.End,
		boolToInt(seg.Enabled),
		boolToInt(seg.ManualAdjusted),
		projectID,
		seg.ID,
	)
	if err != nil {
		return fmt.Errorf("update segment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "segment", "update",
			fmt.Sprintf("segment %s not found in project %s", seg.ID, projectID), nil)
	}
	return nil
}
