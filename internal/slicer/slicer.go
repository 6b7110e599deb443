package slicer

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"clipflow/internal/logging"
	"clipflow/internal/marker"
	"clipflow/internal/services"
	"clipflow/internal/transcript"
)

const (
	// MinSegmentLength is the shortest range (seconds) worth keeping.
	MinSegmentLength = 0.1
	// MergeTolerance absorbs buffer rounding noise between adjacent ranges.
	MergeTolerance = 0.05
)

// Mode selects the slicing algorithm.
type Mode int

const (
	// ModeBacktrack keeps material approved by OK cues.
	ModeBacktrack Mode = iota
	// ModeInterval keeps material bracketed by START and END cues.
	ModeInterval
)

func (m Mode) String() string {
	switch m {
	case ModeBacktrack:
		return "backtrack"
	case ModeInterval:
		return "interval"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a configured mode name into a Mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "backtrack":
		return ModeBacktrack, nil
	case "interval":
		return ModeInterval, nil
	default:
		return 0, fmt.Errorf("unknown slice mode %q", value)
	}
}

// Options configures Slice.
type Options struct {
	Mode       Mode
	PreBuffer  float64
	PostBuffer float64
	Logger     *slog.Logger
}

// Slice validates its inputs and runs the selected algorithm.
func Slice(markers []marker.Marker, totalDuration float64, opts Options) ([]Segment, error) {
	if err := validate(totalDuration, opts); err != nil {
		return nil, err
	}
	logger := logging.NewComponentLogger(opts.Logger, "slicer")

	var segments []Segment
	switch opts.Mode {
	case ModeBacktrack:
		if len(marker.Filter(markers, marker.OK)) == 0 {
			logging.WarnWithContext(logger, "no OK markers; keeping the whole recording", "slice_fallback",
				logging.String(logging.FieldImpact, "entire source kept as one segment"),
				logging.String(logging.FieldErrorHint, "check OK keywords or switch to interval mode"),
			)
		}
		segments = Backtrack(markers, totalDuration, opts.PreBuffer, opts.PostBuffer)
	case ModeInterval:
		if len(marker.Filter(markers, marker.Start)) == 0 {
			logging.WarnWithContext(logger, "no START markers; nothing to keep", "slice_fallback",
				logging.String(logging.FieldImpact, "no segments produced"),
				logging.String(logging.FieldErrorHint, "check START keywords or switch to backtrack mode"),
			)
		}
		segments = Interval(markers, totalDuration, opts.PreBuffer, opts.PostBuffer)
	}

	logger.Info("slicing complete",
		logging.String("mode", opts.Mode.String()),
		logging.Int("segments", len(segments)),
		logging.Float64("kept_seconds", KeptDuration(segments)),
	)
	return segments, nil
}

func validate(totalDuration float64, opts Options) error {
	switch {
	case math.IsNaN(totalDuration) || totalDuration <= 0:
		return services.Wrap(services.ErrValidation, "slice", "validate",
			fmt.Sprintf("total duration must be positive, got %v", totalDuration), nil)
	case opts.PreBuffer < 0:
		return services.Wrap(services.ErrValidation, "slice", "validate",
			fmt.Sprintf("pre buffer must be >= 0, got %v", opts.PreBuffer), nil)
	case opts.PostBuffer < 0:
		return services.Wrap(services.ErrValidation, "slice", "validate",
			fmt.Sprintf("post buffer must be >= 0, got %v", opts.PostBuffer), nil)
	case opts.Mode != ModeBacktrack && opts.Mode != ModeInterval:
		return services.Wrap(services.ErrValidation, "slice", "validate",
			fmt.Sprintf("unknown mode %s", opts.Mode), nil)
	}
	return nil
}

// Backtrack keeps, for each OK cue, the material since the most recent NG
// cue that ended before it. Without an NG the range starts at the previous
// kept segment's end, or at zero. With no OK cues at all the whole recording
// is kept.
func Backtrack(markers []marker.Marker, totalDuration, preBuffer, postBuffer float64) []Segment {
	oks := byStart(marker.Filter(markers, marker.OK))
	ngs := byStart(marker.Filter(markers, marker.NG))

	if len(oks) == 0 {
		if totalDuration <= 0 {
			return nil
		}
		return []Segment{{
			ID:      NewSegmentID(),
			Kind:    KindKeep,
			Start:   0,
			End:     round3(totalDuration),
			Enabled: true,
		}}
	}

	var segments []Segment
	for _, ok := range oks {
		var start float64
		if ng, found := nearestBefore(ngs, ok.Start); found {
			start = math.Max(0, ng.End+postBuffer)
		} else if len(segments) > 0 {
			start = segments[len(segments)-1].End
		}
		end := math.Min(totalDuration, ok.Start-preBuffer)

		start = math.Max(0, start-preBuffer)
		end = math.Min(totalDuration, end+postBuffer)

		if end > start+MinSegmentLength {
			segments = append(segments, newKeep(start, end, ok))
		}
	}
	return Merge(segments)
}

// Interval keeps the material between each START cue and the first END cue
// that begins after it. An unpaired START runs to the next START or to the
// end of the recording. The range end is END.start; only the start carries
// the buffers.
func Interval(markers []marker.Marker, totalDuration, preBuffer, postBuffer float64) []Segment {
	starts := byStart(marker.Filter(markers, marker.Start))
	ends := byStart(marker.Filter(markers, marker.End))

	var segments []Segment
	for _, st := range starts {
		start := math.Max(0, st.End+postBuffer-preBuffer)
		end := totalDuration
		if e, found := firstAfter(ends, st.End); found {
			end = e.Start
		} else if next, found := firstAfter(starts, st.End); found {
			end = next.Start
		}
		end = math.Min(totalDuration, end)

		if end > start+MinSegmentLength {
			segments = append(segments, newKeep(start, end, st))
		}
	}
	return Merge(segments)
}

// Merge sorts segments by start and folds each one into its predecessor when
// it starts within MergeTolerance of the predecessor's end. The input slice is
// not modified. Merging an already merged list returns an equal list.
func Merge(segments []Segment) []Segment {
	if len(segments) == 0 {
		return segments
	}
	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []Segment{sorted[0]}
	for _, seg := range sorted[1:] {
		last := &merged[len(merged)-1]
		if seg.Start <= last.End+MergeTolerance {
			last.End = math.Max(last.End, seg.End)
			continue
		}
		merged = append(merged, seg)
	}
	return merged
}

// nearestBefore returns the latest marker (in start order) that ends before t.
func nearestBefore(markers []marker.Marker, t float64) (marker.Marker, bool) {
	var found marker.Marker
	ok := false
	for _, m := range markers {
		if m.End < t {
			found = m
			ok = true
		}
	}
	return found, ok
}

// firstAfter returns the earliest marker that starts after t.
func firstAfter(markers []marker.Marker, t float64) (marker.Marker, bool) {
	for _, m := range markers {
		if m.Start > t {
			return m, true
		}
	}
	return marker.Marker{}, false
}

func byStart(markers []marker.Marker) []marker.Marker {
	sort.SliceStable(markers, func(i, j int) bool { return markers[i].Start < markers[j].Start })
	return markers
}

func round3(v float64) float64 {
	return transcript.Round(v)
}
