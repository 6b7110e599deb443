package export

import (
	"fmt"
	"regexp"
	"strings"

	"clipflow/internal/slicer"
	"clipflow/internal/transcript"
)

// SRT renders subtitles for the exported timeline. Every transcript sentence
// overlapping a selected segment is clipped to the segment, scrubbed of the
// filter keywords (case-insensitive), and re-timed relative to the segment's
// position in the output. Cues left empty by the scrub are dropped.
func SRT(segments []slicer.Segment, tr transcript.Transcript, filterKeywords []string) string {
	filters := compileFilters(filterKeywords)

	var entries []string
	counter := 1
	var offset float64
	for _, seg := range Selected(segments) {
		for _, sentence := range tr.Segments {
			if sentence.End <= seg.Start || sentence.Start >= seg.End {
				continue
			}
			text := scrub(sentence.Text, filters)
			if text == "" {
				continue
			}
			clippedStart := max(sentence.Start, seg.Start)
			clippedEnd := min(sentence.End, seg.End)
			entries = append(entries, fmt.Sprintf("%d\n%s --> %s\n%s\n",
				counter,
				SRTTimecode(offset+(clippedStart-seg.Start)),
				SRTTimecode(offset+(clippedEnd-seg.Start)),
				text,
			))
			counter++
		}
		offset += seg.Duration()
	}
	return strings.Join(entries, "\n")
}

func compileFilters(keywords []string) []*regexp.Regexp {
	filters := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		filters = append(filters, regexp.MustCompile("(?i)"+regexp.QuoteMeta(kw)))
	}
	return filters
}

// scrub removes each filter in order, trimming after every removal.
func scrub(text string, filters []*regexp.Regexp) string {
	text = strings.TrimSpace(text)
	for _, re := range filters {
		text = strings.TrimSpace(re.ReplaceAllLiteralString(text, ""))
	}
	return text
}
