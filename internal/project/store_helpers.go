package project

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clipflow/internal/marker"
	"clipflow/internal/slicer"
)

const projectColumns = "id, name, status, source_path, source_filename, duration_seconds, settings_json, error_message, progress, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(scanner rowScanner) (*Project, error) {
	var (
		id             string
		name           string
		statusStr      string
		sourcePath     sql.NullString
		sourceFilename sql.NullString
		duration       sql.NullFloat64
		settingsRaw    string
		errorMessage   sql.NullString
		progress       sql.NullFloat64
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&name,
		&statusStr,
		&sourcePath,
		&sourceFilename,
		&duration,
		&settingsRaw,
		&errorMessage,
		&progress,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	p := &Project{
		ID:              id,
		Name:            name,
		Status:          Status(statusStr),
		SourcePath:      sourcePath.String,
		SourceFilename:  sourceFilename.String,
		DurationSeconds: duration.Float64,
		ErrorMessage:    errorMessage.String,
		Progress:        progress.Float64,
	}
	if err := json.Unmarshal([]byte(settingsRaw), &p.Settings); err != nil {
		return nil, fmt.Errorf("decode settings for %s: %w", id, err)
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		p.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		p.UpdatedAt = updated
	}
	return p, nil
}

func scanMarker(scanner rowScanner) (marker.Marker, error) {
	var (
		typeStr string
		m       marker.Marker
	)
	if err := scanner.Scan(&typeStr, &m.Text, &m.Start, &m.End, &m.Confidence); err != nil {
		return marker.Marker{}, err
	}
	t, err := marker.ParseType(typeStr)
	if err != nil {
		return marker.Marker{}, err
	}
	m.Type = t
	return m, nil
}

func scanSegment(scanner rowScanner) (slicer.Segment, error) {
	var (
		seg        slicer.Segment
		kindStr    string
		triggerRaw sql.NullString
		enabled    int64
		manual     int64
	)
	if err := scanner.Scan(&seg.ID, &kindStr, &seg.Start, &seg.End, &triggerRaw, &enabled, &manual); err != nil {
		return slicer.Segment{}, err
	}
	kind, err := slicer.ParseKind(kindStr)
	if err != nil {
		return slicer.Segment{}, err
	}
	seg.Kind = kind
	seg.Enabled = enabled != 0
	seg.ManualAdjusted = manual != 0
	if triggerRaw.Valid && triggerRaw.String != "" {
		var trigger marker.Marker
		if err := json.Unmarshal([]byte(triggerRaw.String), &trigger); err != nil {
			return slicer.Segment{}, fmt.Errorf("decode trigger for %s: %w", seg.ID, err)
		}
		seg.Trigger = &trigger
	}
	return seg, nil
}

func encodeTrigger(trigger *marker.Marker) (any, error) {
	if trigger == nil {
		return nil, nil
	}
	data, err := json.Marshal(trigger)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// timeLayout keeps a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
