package transcript

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Word is a single recognized word with timing.
type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Segment is one recognized sentence and its words in speech order.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

// Transcript is the ordered list of recognized sentences for one recording.
type Transcript struct {
	Language string    `json:"language,omitempty"`
	Segments []Segment `json:"segments"`
}

// Round returns v rounded to millisecond precision.
func Round(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Normalize trims text, rounds every timestamp and confidence to three
// decimals, orders words by start, and drops words that are empty after
// trimming. Segments keep their recognition order.
func (t *Transcript) Normalize() {
	if t == nil {
		return
	}
	for i := range t.Segments {
		seg := &t.Segments[i]
		seg.Text = strings.TrimSpace(seg.Text)
		seg.Start = Round(seg.Start)
		seg.End = Round(seg.End)
		words := seg.Words[:0]
		for _, w := range seg.Words {
			w.Word = strings.TrimSpace(w.Word)
			if w.Word == "" {
				continue
			}
			w.Start = Round(w.Start)
			w.End = Round(w.End)
			w.Confidence = Round(clamp01(w.Confidence))
			words = append(words, w)
		}
		sort.SliceStable(words, func(a, b int) bool { return words[a].Start < words[b].Start })
		seg.Words = words
	}
}

// Validate reports the first segment or word whose start is after its end.
func (t Transcript) Validate() error {
	for i, seg := range t.Segments {
		if seg.Start > seg.End {
			return fmt.Errorf("segment %d: start %.3f after end %.3f", i, seg.Start, seg.End)
		}
		for j, w := range seg.Words {
			if w.Start > w.End {
				return fmt.Errorf("segment %d word %d: start %.3f after end %.3f", i, j, w.Start, w.End)
			}
		}
	}
	return nil
}

// Empty reports whether the transcript has no sentences.
func (t Transcript) Empty() bool {
	return len(t.Segments) == 0
}

// WordCount returns the total number of words across all sentences.
func (t Transcript) WordCount() int {
	n := 0
	for _, seg := range t.Segments {
		n += len(seg.Words)
	}
	return n
}

// Text joins sentence texts with single spaces.
func (t Transcript) Text() string {
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
