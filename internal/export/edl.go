package export

import (
	"fmt"
	"strings"

	"clipflow/internal/slicer"
)

// EDL renders a CMX3600 edit decision list. Each event maps a source range
// onto the record timeline, which starts at zero and advances by each
// event's duration.
func EDL(segments []slicer.Segment, opts Options) string {
	opts = opts.withDefaults()
	lines := []string{
		"TITLE: " + opts.Title,
		"FCM: NON-DROP FRAME",
		"",
	}

	var record float64
	for i, seg := range Selected(segments) {
		duration := seg.Duration()
		lines = append(lines,
			fmt.Sprintf("%03d  AX       AA/V  C        %s %s %s %s",
				i+1,
				SMPTE(seg.Start, opts.FPS),
				SMPTE(seg.End, opts.FPS),
				SMPTE(record, opts.FPS),
				SMPTE(record+duration, opts.FPS),
			),
			"* FROM CLIP NAME: "+opts.SourceName,
			"",
		)
		record += duration
	}
	return strings.Join(lines, "\n")
}
