package transcript

import "testing"

func TestNormalize(t *testing.T) {
	tr := Transcript{Segments: []Segment{{
		Text:  "  hello there  ",
		Start: 1.23456,
		End:   2.0004,
		Words: []Word{
			{Word: " there ", Start: 1.7, End: 2.0, Confidence: 0.91234},
			{Word: "hello", Start: 1.23456, End: 1.5, Confidence: 1.2},
			{Word: "  ", Start: 1.6, End: 1.6},
		},
	}}}

	tr.Normalize()

	seg := tr.Segments[0]
	if seg.Text != "hello there" {
		t.Fatalf("text = %q", seg.Text)
	}
	if seg.Start != 1.235 || seg.End != 2.0 {
		t.Fatalf("segment bounds = %v..%v", seg.Start, seg.End)
	}
	if len(seg.Words) != 2 {
		t.Fatalf("expected blank word dropped, got %d words", len(seg.Words))
	}
	if seg.Words[0].Word != "hello" || seg.Words[1].Word != "there" {
		t.Fatalf("words not sorted by start: %+v", seg.Words)
	}
	if seg.Words[0].Confidence != 1 {
		t.Fatalf("confidence not clamped: %v", seg.Words[0].Confidence)
	}
	if seg.Words[1].Confidence != 0.912 {
		t.Fatalf("confidence not rounded: %v", seg.Words[1].Confidence)
	}
}

func TestValidate(t *testing.T) {
	good := Transcript{Segments: []Segment{{Start: 1, End: 2, Words: []Word{{Word: "a", Start: 1, End: 1.5}}}}}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	badSegment := Transcript{Segments: []Segment{{Start: 3, End: 2}}}
	if err := badSegment.Validate(); err == nil {
		t.Fatal("expected error for inverted segment")
	}
	badWord := Transcript{Segments: []Segment{{Start: 1, End: 2, Words: []Word{{Word: "a", Start: 1.5, End: 1.2}}}}}
	if err := badWord.Validate(); err == nil {
		t.Fatal("expected error for inverted word")
	}
}

func TestTextAndCounts(t *testing.T) {
	tr := Transcript{Segments: []Segment{
		{Text: "first", Words: []Word{{Word: "first"}}},
		{Text: " "},
		{Text: "second take", Words: []Word{{Word: "second"}, {Word: "take"}}},
	}}
	if got := tr.Text(); got != "first second take" {
		t.Fatalf("Text() = %q", got)
	}
	if tr.WordCount() != 3 {
		t.Fatalf("WordCount() = %d", tr.WordCount())
	}
	if tr.Empty() || !(Transcript{}).Empty() {
		t.Fatal("Empty() mismatch")
	}
}
