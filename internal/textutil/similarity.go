package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the comparison form of s: compatibility-normalized so
// full-width letters match their ASCII forms, Unicode case folded, and
// trimmed of surrounding whitespace.
func Fold(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	return strings.TrimSpace(cases.Fold().String(s))
}

// Similarity scores how closely text matches keyword in [0, 1]. Both values
// are folded first. Equal strings, and texts that contain the keyword, score
// 1.0; anything else scores the Ratio of the folded forms.
func Similarity(text, keyword string) float64 {
	t := Fold(text)
	k := Fold(keyword)
	if t == k || strings.Contains(t, k) {
		return 1.0
	}
	return Ratio(t, k)
}

// Ratio returns the Ratcliff/Obershelp similarity of a and b measured in
// runes: 2*M/T where M is the number of runes in matching blocks and T the
// combined length. Two empty strings are identical.
func Ratio(a, b string) float64 {
	ar := []rune(a)
	br := []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1.0
	}
	return 2 * float64(matchingRunes(ar, br)) / float64(total)
}

type runeSpan struct {
	alo, ahi, blo, bhi int
}

// matchingRunes sums the sizes of the matching blocks found by repeatedly
// taking the longest common block and recursing on both sides of it.
func matchingRunes(a, b []rune) int {
	index := make(map[rune][]int, len(b))
	for j, r := range b {
		index[r] = append(index[r], j)
	}

	matched := 0
	queue := []runeSpan{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, index, s)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			queue = append(queue, runeSpan{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, runeSpan{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest block shared by a[alo:ahi] and b[blo:bhi].
// Ties go to the block starting earliest in a, then earliest in b.
func longestMatch(a []rune, index map[rune][]int, s runeSpan) (int, int, int) {
	bestI, bestJ, bestSize := s.alo, s.blo, 0
	prev := map[int]int{}
	for i := s.alo; i < s.ahi; i++ {
		next := map[int]int{}
		for _, j := range index[a[i]] {
			if j < s.blo {
				continue
			}
			if j >= s.bhi {
				break
			}
			k := prev[j-1] + 1
			next[j] = k
			if k > bestSize {
				bestI, bestJ, bestSize = i-k+1, j-k+1, k
			}
		}
		prev = next
	}
	return bestI, bestJ, bestSize
}
