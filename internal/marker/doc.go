// Package marker detects spoken cue keywords (NG, OK, START, END) in a
// transcript.
//
// Detection runs two passes. The sentence pass scores each sentence's full
// text against every keyword in category priority order and emits at most
// one marker per sentence. The word pass slides over each sentence's words so
// cues spoken mid-sentence are still found, joining consecutive words when a
// keyword is longer than a single short word. Matches use the fuzzy
// similarity from package textutil with a fixed threshold.
//
// Detection never fails: an empty transcript or an empty keyword category
// simply yields no markers of that kind.
package marker
