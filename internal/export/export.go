package export

import (
	"sort"
	"strings"

	"clipflow/internal/marker"
	"clipflow/internal/slicer"
)

// Options carries document-level settings shared by EDL and XML rendering.
type Options struct {
	FPS        float64
	Title      string
	SourceName string
}

const (
	defaultTitle      = "ClipFlow Export"
	defaultSourceName = "source.mp4"
)

func (o Options) withDefaults() Options {
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	if strings.TrimSpace(o.Title) == "" {
		o.Title = defaultTitle
	}
	if strings.TrimSpace(o.SourceName) == "" {
		o.SourceName = defaultSourceName
	}
	return o
}

// Range is a source time range handed to the concatenation renderer.
type Range struct {
	Start float64
	End   float64
}

// Duration returns the range length in seconds.
func (r Range) Duration() float64 {
	return r.End - r.Start
}

// Selected returns the enabled keep segments sorted by start. The input is
// not modified.
func Selected(segments []slicer.Segment) []slicer.Segment {
	out := make([]slicer.Segment, 0, len(segments))
	for _, s := range segments {
		if s.Exported() {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// KeepRanges returns the ordered source ranges of the selected segments.
func KeepRanges(segments []slicer.Segment) []Range {
	selected := Selected(segments)
	ranges := make([]Range, 0, len(selected))
	for _, s := range selected {
		ranges = append(ranges, Range{Start: s.Start, End: s.End})
	}
	return ranges
}

// FilterKeywords returns every cue keyword, used to scrub cues from subtitles.
func FilterKeywords(sets marker.KeywordSets) []string {
	var out []string
	for _, kw := range sets.All() {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
