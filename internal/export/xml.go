package export

import (
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"clipflow/internal/slicer"
)

// XML renders an xmeml v5 sequence with one clip item per selected segment.
// Clip in/out points are source frames; start/end follow a running timeline
// frame offset, and the sequence duration is the sum of clip frame counts.
func XML(segments []slicer.Segment, opts Options) string {
	opts = opts.withDefaults()
	timebase := int64(math.RoundToEven(opts.FPS))
	name := escapeXML(opts.SourceName)

	var clips []string
	var offset int64
	for i, seg := range Selected(segments) {
		frames := Frames(seg.Duration(), opts.FPS)
		var b strings.Builder
		fmt.Fprintf(&b, "\n            <clipitem id=\"clipitem-%d\">", i+1)
		fmt.Fprintf(&b, "\n                <name>%s</name>", name)
		fmt.Fprintf(&b, "\n                <duration>%d</duration>", frames)
		fmt.Fprintf(&b, "\n                <rate><timebase>%d</timebase><ntsc>FALSE</ntsc></rate>", timebase)
		fmt.Fprintf(&b, "\n                <start>%d</start>", offset)
		fmt.Fprintf(&b, "\n                <end>%d</end>", offset+frames)
		fmt.Fprintf(&b, "\n                <in>%d</in>", Frames(seg.Start, opts.FPS))
		fmt.Fprintf(&b, "\n                <out>%d</out>", Frames(seg.End, opts.FPS))
		b.WriteString("\n                <file id=\"file-1\">")
		fmt.Fprintf(&b, "\n                    <name>%s</name>", name)
		fmt.Fprintf(&b, "\n                    <rate><timebase>%d</timebase><ntsc>FALSE</ntsc></rate>", timebase)
		b.WriteString("\n                </file>")
		b.WriteString("\n            </clipitem>")
		clips = append(clips, b.String())
		offset += frames
	}

	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<!DOCTYPE xmeml>\n")
	b.WriteString("<xmeml version=\"5\">\n")
	b.WriteString("    <sequence>\n")
	fmt.Fprintf(&b, "        <name>%s</name>\n", escapeXML(opts.Title))
	fmt.Fprintf(&b, "        <duration>%d</duration>\n", offset)
	fmt.Fprintf(&b, "        <rate><timebase>%d</timebase><ntsc>FALSE</ntsc></rate>\n", timebase)
	b.WriteString("        <media>\n")
	b.WriteString("            <video>\n")
	b.WriteString("                <track>")
	b.WriteString(strings.Join(clips, "\n"))
	b.WriteString("\n                </track>\n")
	b.WriteString("            </video>\n")
	b.WriteString("        </media>\n")
	b.WriteString("    </sequence>\n")
	b.WriteString("</xmeml>")
	return b.String()
}

func escapeXML(value string) string {
	var b strings.Builder
	// EscapeText only fails when the writer does; strings.Builder never does.
	_ = xml.EscapeText(&b, []byte(value))
	return b.String()
}
