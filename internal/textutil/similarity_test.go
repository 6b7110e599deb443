package textutil

import (
	"math"
	"testing"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii upper", "OK", "ok"},
		{"surrounding space", "  Take Two \n", "take two"},
		{"full width letters", "ＯＫ", "ok"},
		{"cjk untouched", "這段OK", "這段ok"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fold(tt.in); got != tt.want {
				t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 1.0},
		{"one empty", "abc", "", 0},
		{"identical", "again", "again", 1.0},
		{"shifted", "abcd", "bcde", 0.75},
		{"two blocks", "abxcd", "abcd", 8.0 / 9.0},
		{"disjoint", "abc", "xyz", 0},
		{"cjk single rune", "再來", "再来", 0.5},
		{"cjk prefix", "重來", "重来吧", 0.4},
		{"prefix", "ok", "okay", 4.0 / 6.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioSymmetricForSimpleInputs(t *testing.T) {
	pairs := [][2]string{{"abcd", "bcde"}, {"再來", "再来"}, {"hello", "yellow"}}
	for _, p := range pairs {
		if a, b := Ratio(p[0], p[1]), Ratio(p[1], p[0]); math.Abs(a-b) > 1e-9 {
			t.Errorf("Ratio not symmetric for %q/%q: %v vs %v", p[0], p[1], a, b)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		keyword string
		want    float64
	}{
		{"exact", "NG", "NG", 1.0},
		{"case insensitive", "ng", "NG", 1.0},
		{"keyword inside sentence", "好 這段OK了", "這段OK", 1.0},
		{"keyword inside lower", "that was ok", "OK", 1.0},
		{"full width keyword", "ＮＧ", "ng", 1.0},
		{"near miss", "abcd", "bcde", 0.75},
		{"text inside keyword is not containment", "ok", "okay", 4.0 / 6.0},
		{"unrelated", "hello", "NG", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.text, tt.keyword)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.text, tt.keyword, got, tt.want)
			}
		})
	}
}
