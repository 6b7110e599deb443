package whisperx

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"clipflow/internal/transcript"
)

type payloadWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Score *float64 `json:"score"`
}

type payloadSegment struct {
	Text  string        `json:"text"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Words []payloadWord `json:"words"`
}

type payload struct {
	Language string           `json:"language"`
	Segments []payloadSegment `json:"segments"`
}

// LoadTranscript reads a WhisperX JSON result file.
func LoadTranscript(jsonPath string) (transcript.Transcript, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return transcript.Transcript{}, err
	}
	return ParseTranscript(data)
}

// ParseTranscript converts WhisperX JSON into a normalized transcript.
// Words WhisperX could not align (no timestamps) are dropped.
func ParseTranscript(data []byte) (transcript.Transcript, error) {
	var raw payload
	if err := json.Unmarshal(data, &raw); err != nil {
		return transcript.Transcript{}, fmt.Errorf("parse whisperx json: %w", err)
	}
	tr := transcript.Transcript{
		Language: strings.ToLower(strings.TrimSpace(raw.Language)),
		Segments: make([]transcript.Segment, 0, len(raw.Segments)),
	}
	for _, seg := range raw.Segments {
		out := transcript.Segment{
			Text:  seg.Text,
			Start: seg.Start,
			End:   seg.End,
			Words: make([]transcript.Word, 0, len(seg.Words)),
		}
		for _, w := range seg.Words {
			if w.Start == nil || w.End == nil {
				continue
			}
			word := transcript.Word{Word: w.Word, Start: *w.Start, End: *w.End}
			if w.Score != nil {
				word.Confidence = *w.Score
			}
			out.Words = append(out.Words, word)
		}
		tr.Segments = append(tr.Segments, out)
	}
	tr.Normalize()
	if err := tr.Validate(); err != nil {
		return transcript.Transcript{}, err
	}
	return tr, nil
}
