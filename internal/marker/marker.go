package marker

import (
	"fmt"
	"strings"
)

// Type classifies a detected cue.
type Type int

const (
	// NG marks a failed take that should be discarded.
	NG Type = iota
	// OK approves the material spoken since the last NG.
	OK
	// Start opens an explicit keep interval.
	Start
	// End closes an explicit keep interval.
	End
)

// Types lists every marker type in detection priority order.
var Types = []Type{NG, OK, Start, End}

func (t Type) String() string {
	switch t {
	case NG:
		return "NG"
	case OK:
		return "OK"
	case Start:
		return "START"
	case End:
		return "END"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType converts the stored string form back into a Type.
func ParseType(value string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "NG":
		return NG, nil
	case "OK":
		return OK, nil
	case "START":
		return Start, nil
	case "END":
		return End, nil
	default:
		return 0, fmt.Errorf("unknown marker type %q", value)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	switch t {
	case NG, OK, Start, End:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("unknown marker type %d", int(t))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Marker is one detected cue occurrence.
type Marker struct {
	Type       Type    `json:"type"`
	Text       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// KeywordSets holds the ordered keywords for each marker type. Order within a
// set is the match priority inside that category.
type KeywordSets struct {
	NG    []string `json:"ng_keywords"`
	OK    []string `json:"ok_keywords"`
	Start []string `json:"start_keywords"`
	End   []string `json:"end_keywords"`
}

// For returns the keywords configured for t.
func (k KeywordSets) For(t Type) []string {
	switch t {
	case NG:
		return k.NG
	case OK:
		return k.OK
	case Start:
		return k.Start
	case End:
		return k.End
	default:
		return nil
	}
}

// All returns every keyword across the four sets in priority order.
func (k KeywordSets) All() []string {
	out := make([]string, 0, len(k.NG)+len(k.OK)+len(k.Start)+len(k.End))
	for _, t := range Types {
		out = append(out, k.For(t)...)
	}
	return out
}

// Filter returns the markers of the given type, preserving order.
func Filter(markers []Marker, t Type) []Marker {
	var out []Marker
	for _, m := range markers {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// Count tallies markers per type.
func Count(markers []Marker) map[Type]int {
	counts := make(map[Type]int, len(Types))
	for _, m := range markers {
		counts[m.Type]++
	}
	return counts
}
