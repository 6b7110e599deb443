package marker

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"clipflow/internal/logging"
	"clipflow/internal/textutil"
	"clipflow/internal/transcript"
)

const (
	// Threshold is the minimum similarity for a keyword match.
	Threshold = 0.75
	// ShortKeywordRunes is the longest keyword matched against single words only.
	ShortKeywordRunes = 3
	// DuplicateTolerance is how close (seconds) both boundaries of a word-pass
	// match must be to an existing marker to be treated as the same cue.
	DuplicateTolerance = 0.1
	// DefaultMaxWindowWords bounds how many consecutive words are joined when
	// matching a long keyword.
	DefaultMaxWindowWords = 5
)

// Options tunes a Detector.
type Options struct {
	MaxWindowWords int
	Logger         *slog.Logger
}

// Detector finds cue markers in transcripts. It holds no mutable state and
// is safe for concurrent use.
type Detector struct {
	maxWindow int
	logger    *slog.Logger
}

// NewDetector constructs a Detector. Zero options select the defaults.
func NewDetector(opts Options) *Detector {
	window := opts.MaxWindowWords
	if window <= 0 {
		window = DefaultMaxWindowWords
	}
	return &Detector{
		maxWindow: window,
		logger:    logging.NewComponentLogger(opts.Logger, "marker"),
	}
}

type keyword struct {
	text  string
	typ   Type
	runes int
}

// Detect scans tr for the configured keywords and returns the markers found,
// sorted by start time.
func (d *Detector) Detect(tr transcript.Transcript, sets KeywordSets) []Marker {
	keywords := flatten(sets)
	var markers []Marker
	if len(keywords) == 0 || tr.Empty() {
		d.logger.Info("marker detection complete", logging.Int("markers", 0))
		return markers
	}

	for _, seg := range tr.Segments {
		if m, ok := matchSentence(seg, keywords); ok {
			markers = append(markers, m)
		}
	}

	for _, seg := range tr.Segments {
		markers = d.scanWords(seg.Words, keywords, markers)
	}

	sort.SliceStable(markers, func(i, j int) bool { return markers[i].Start < markers[j].Start })

	counts := Count(markers)
	d.logger.Info("marker detection complete",
		logging.Int("markers", len(markers)),
		logging.Int("ng", counts[NG]),
		logging.Int("ok", counts[OK]),
		logging.Int("start", counts[Start]),
		logging.Int("end", counts[End]),
	)
	for _, m := range markers {
		d.logger.Debug("marker",
			logging.String("type", m.Type.String()),
			logging.Float64("start", m.Start),
			logging.Float64("end", m.End),
			logging.String("text", m.Text),
			logging.Float64("confidence", m.Confidence),
		)
	}
	return markers
}

func flatten(sets KeywordSets) []keyword {
	var out []keyword
	for _, t := range Types {
		for _, kw := range sets.For(t) {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			out = append(out, keyword{text: kw, typ: t, runes: utf8.RuneCountInString(kw)})
		}
	}
	return out
}

// matchSentence returns a marker for the first keyword that matches the
// whole sentence text.
func matchSentence(seg transcript.Segment, keywords []keyword) (Marker, bool) {
	text := strings.TrimSpace(seg.Text)
	for _, kw := range keywords {
		score := textutil.Similarity(text, kw.text)
		if score >= Threshold {
			return Marker{
				Type:       kw.typ,
				Text:       text,
				Start:      seg.Start,
				End:        seg.End,
				Confidence: round3(score),
			}, true
		}
	}
	return Marker{}, false
}

// scanWords runs the word pass over one sentence and appends new markers.
func (d *Detector) scanWords(words []transcript.Word, keywords []keyword, markers []Marker) []Marker {
	i := 0
	for i < len(words) {
		matched := false
		for _, kw := range keywords {
			last, score, ok := d.matchWindow(words, i, kw)
			if !ok {
				continue
			}
			first := words[i]
			endWord := words[last]
			if !covered(markers, first.Start, endWord.End) {
				markers = append(markers, Marker{
					Type:       kw.typ,
					Text:       joinWords(words[i : last+1]),
					Start:      first.Start,
					End:        endWord.End,
					Confidence: round3(score),
				})
			}
			i = last + 1
			matched = true
			break
		}
		if !matched {
			i++
		}
	}
	return markers
}

// matchWindow tests kw against words starting at index start. Short keywords
// compare against the single word; longer ones try joining 1..maxWindow words
// and accept the first window that meets the threshold. It returns the index
// of the last word in the matching window.
func (d *Detector) matchWindow(words []transcript.Word, start int, kw keyword) (int, float64, bool) {
	if kw.runes <= ShortKeywordRunes {
		score := textutil.Similarity(words[start].Word, kw.text)
		return start, score, score >= Threshold
	}
	limit := min(d.maxWindow, len(words)-start)
	var b strings.Builder
	for span := 1; span <= limit; span++ {
		b.WriteString(words[start+span-1].Word)
		score := textutil.Similarity(b.String(), kw.text)
		if score >= Threshold {
			return start + span - 1, score, true
		}
	}
	return start, 0, false
}

func covered(markers []Marker, start, end float64) bool {
	for _, m := range markers {
		if math.Abs(m.Start-start) < DuplicateTolerance && math.Abs(m.End-end) < DuplicateTolerance {
			return true
		}
	}
	return false
}

func joinWords(words []transcript.Word) string {
	var b strings.Builder
	for _, w := range words {
		b.WriteString(w.Word)
	}
	return b.String()
}

func round3(v float64) float64 {
	return transcript.Round(v)
}
