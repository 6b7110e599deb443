package export

import (
	"reflect"
	"strings"
	"testing"

	"clipflow/internal/marker"
	"clipflow/internal/slicer"
	"clipflow/internal/transcript"
)

func keep(id string, start, end float64) slicer.Segment {
	return slicer.Segment{ID: id, Kind: slicer.KindKeep, Start: start, End: end, Enabled: true}
}

func TestEDLSingleSegment(t *testing.T) {
	got := EDL([]slicer.Segment{keep("a", 10, 15)}, Options{Title: "demo_clipflow", SourceName: "take1.mp4"})

	want := strings.Join([]string{
		"TITLE: demo_clipflow",
		"FCM: NON-DROP FRAME",
		"",
		"001  AX       AA/V  C        00:00:10:00 00:00:15:00 00:00:00:00 00:00:05:00",
		"* FROM CLIP NAME: take1.mp4",
		"",
	}, "\n")
	if got != want {
		t.Fatalf("EDL mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestEDLRecordTimelineAccumulates(t *testing.T) {
	segments := []slicer.Segment{
		keep("b", 20, 22.5),
		keep("a", 1, 4),
		{ID: "off", Kind: slicer.KindKeep, Start: 5, End: 8, Enabled: false},
		{ID: "cut", Kind: slicer.KindDiscard, Start: 9, End: 10, Enabled: true},
	}

	got := EDL(segments, Options{})

	lines := strings.Split(got, "\n")
	if lines[0] != "TITLE: ClipFlow Export" {
		t.Fatalf("unexpected default title line %q", lines[0])
	}
	if len(lines) != 3+2*3 {
		t.Fatalf("expected two events, got %d lines: %q", len(lines), got)
	}
	if lines[3] != "001  AX       AA/V  C        00:00:01:00 00:00:04:00 00:00:00:00 00:00:03:00" {
		t.Fatalf("unexpected first event %q", lines[3])
	}
	if lines[6] != "002  AX       AA/V  C        00:00:20:00 00:00:22:15 00:00:03:00 00:00:05:15" {
		t.Fatalf("unexpected second event %q", lines[6])
	}
	if lines[4] != "* FROM CLIP NAME: source.mp4" {
		t.Fatalf("unexpected clip name line %q", lines[4])
	}
}

func TestEDLEmptySelection(t *testing.T) {
	got := EDL(nil, Options{Title: "t"})
	if got != "TITLE: t\nFCM: NON-DROP FRAME\n" {
		t.Fatalf("unexpected empty EDL %q", got)
	}
}

func TestXMLDocument(t *testing.T) {
	segments := []slicer.Segment{keep("a", 10, 15), keep("b", 20, 21.5)}

	got := XML(segments, Options{FPS: 30, Title: "demo & co", SourceName: "take<1>.mp4"})

	want := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE xmeml>
<xmeml version="5">
    <sequence>
        <name>demo &amp; co</name>
        <duration>195</duration>
        <rate><timebase>30</timebase><ntsc>FALSE</ntsc></rate>
        <media>
            <video>
                <track>
            <clipitem id="clipitem-1">
                <name>take&lt;1&gt;.mp4</name>
                <duration>150</duration>
                <rate><timebase>30</timebase><ntsc>FALSE</ntsc></rate>
                <start>0</start>
                <end>150</end>
                <in>300</in>
                <out>450</out>
                <file id="file-1">
                    <name>take&lt;1&gt;.mp4</name>
                    <rate><timebase>30</timebase><ntsc>FALSE</ntsc></rate>
                </file>
            </clipitem>

            <clipitem id="clipitem-2">
                <name>take&lt;1&gt;.mp4</name>
                <duration>45</duration>
                <rate><timebase>30</timebase><ntsc>FALSE</ntsc></rate>
                <start>150</start>
                <end>195</end>
                <in>600</in>
                <out>645</out>
                <file id="file-1">
                    <name>take&lt;1&gt;.mp4</name>
                    <rate><timebase>30</timebase><ntsc>FALSE</ntsc></rate>
                </file>
            </clipitem>
                </track>
            </video>
        </media>
    </sequence>
</xmeml>`
	if got != want {
		t.Fatalf("XML mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestXMLEmptySelection(t *testing.T) {
	got := XML(nil, Options{})
	if !strings.Contains(got, "<duration>0</duration>") {
		t.Fatalf("expected zero duration, got %s", got)
	}
	if !strings.Contains(got, "<track>\n                </track>") {
		t.Fatalf("expected empty track, got %s", got)
	}
	if strings.Contains(got, "clipitem") {
		t.Fatalf("expected no clip items, got %s", got)
	}
}

func TestSRTClipsFiltersAndRetimes(t *testing.T) {
	tr := transcript.Transcript{Segments: []transcript.Segment{
		{Text: "before the cut", Start: 0, End: 1.5},
		{Text: "welcome to the show", Start: 1.8, End: 4.0},
		{Text: "NG", Start: 4.2, End: 4.6},
		{Text: "ok let's go", Start: 9.0, End: 10.5},
		{Text: "second part", Start: 12, End: 13},
	}}
	segments := []slicer.Segment{keep("a", 2.0, 5.0), keep("b", 10.0, 14.0)}

	got := SRT(segments, tr, []string{"NG", "OK"})

	want := "1\n00:00:00,000 --> 00:00:02,000\nwelcome to the show\n" +
		"\n" +
		"2\n00:00:03,000 --> 00:00:03,500\nlet's go\n" +
		"\n" +
		"3\n00:00:05,000 --> 00:00:06,000\nsecond part\n"
	if got != want {
		t.Fatalf("SRT mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestSRTEmpty(t *testing.T) {
	tr := transcript.Transcript{Segments: []transcript.Segment{{Text: "hello", Start: 0, End: 1}}}
	if got := SRT(nil, tr, nil); got != "" {
		t.Fatalf("expected empty SRT, got %q", got)
	}
	if got := SRT([]slicer.Segment{keep("a", 5, 6)}, tr, nil); got != "" {
		t.Fatalf("expected no cues outside segments, got %q", got)
	}
}

func TestKeepRangesAndFilterKeywords(t *testing.T) {
	segments := []slicer.Segment{
		keep("b", 8, 9),
		{ID: "off", Kind: slicer.KindKeep, Start: 3, End: 4},
		keep("a", 1, 2),
	}
	want := []Range{{Start: 1, End: 2}, {Start: 8, End: 9}}
	if got := KeepRanges(segments); !reflect.DeepEqual(got, want) {
		t.Fatalf("KeepRanges() = %v, want %v", got, want)
	}

	sets := marker.KeywordSets{NG: []string{"NG", " "}, OK: []string{"OK"}, Start: []string{"開始"}, End: []string{"結束"}}
	if got := FilterKeywords(sets); !reflect.DeepEqual(got, []string{"NG", "OK", "開始", "結束"}) {
		t.Fatalf("FilterKeywords() = %v", got)
	}
}
