package slicer

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"clipflow/internal/marker"
	"clipflow/internal/services"
)

// Kind distinguishes kept from discarded ranges.
type Kind int

const (
	// KindKeep is a range retained in the final edit.
	KindKeep Kind = iota
	// KindDiscard is a range cut from the final edit.
	KindDiscard
)

func (k Kind) String() string {
	switch k {
	case KindKeep:
		return "keep"
	case KindDiscard:
		return "discard"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts the stored string form back into a Kind.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "keep":
		return KindKeep, nil
	case "discard":
		return KindDiscard, nil
	default:
		return 0, fmt.Errorf("unknown segment kind %q", value)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindKeep, KindDiscard:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown segment kind %d", int(k))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Segment is a time range of the source recording.
type Segment struct {
	ID             string         `json:"id"`
	Kind           Kind           `json:"type"`
	Start          float64        `json:"start"`
	End            float64        `json:"end"`
	Trigger        *marker.Marker `json:"trigger_marker,omitempty"`
	Enabled        bool           `json:"enabled"`
	ManualAdjusted bool           `json:"manual_adjusted"`
}

// NewSegmentID returns a fresh "seg_" identifier.
func NewSegmentID() string {
	return "seg_" + shortID()
}

func shortID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:4])
}

func newKeep(start, end float64, trigger marker.Marker) Segment {
	m := trigger
	return Segment{
		ID:      NewSegmentID(),
		Kind:    KindKeep,
		Start:   round3(start),
		End:     round3(end),
		Trigger: &m,
		Enabled: true,
	}
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Exported reports whether the segment takes part in exports.
func (s Segment) Exported() bool {
	return s.Enabled && s.Kind == KindKeep
}

// Toggle flips the enabled flag and marks the segment as manually adjusted.
func (s *Segment) Toggle() {
	s.Enabled = !s.Enabled
	s.ManualAdjusted = true
}

// Patch moves either boundary. Nil leaves a boundary unchanged. The result
// must satisfy 0 <= start < end.
func (s *Segment) Patch(start, end *float64) error {
	newStart, newEnd := s.Start, s.End
	if start != nil {
		newStart = round3(*start)
	}
	if end != nil {
		newEnd = round3(*end)
	}
	if newStart < 0 {
		return services.Wrap(services.ErrValidation, "edit", "patch segment",
			fmt.Sprintf("start %.3f is negative", newStart), nil)
	}
	if newEnd <= newStart {
		return services.Wrap(services.ErrValidation, "edit", "patch segment",
			fmt.Sprintf("end %.3f must be after start %.3f", newEnd, newStart), nil)
	}
	s.Start, s.End = newStart, newEnd
	s.ManualAdjusted = true
	return nil
}

// Find returns the index of the segment with the given id, or -1.
func Find(segments []Segment, id string) int {
	for i := range segments {
		if segments[i].ID == id {
			return i
		}
	}
	return -1
}

// KeptDuration sums the lengths of exported segments.
func KeptDuration(segments []Segment) float64 {
	var total float64
	for _, s := range segments {
		if s.Exported() {
			total += s.Duration()
		}
	}
	return round3(total)
}
