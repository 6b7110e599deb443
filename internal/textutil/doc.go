// Package textutil provides text processing utilities for keyword similarity
// and filename sanitization.
//
// The primary use cases are:
//   - Folding spoken text and keywords into a comparable form
//   - Scoring fuzzy keyword matches with a Ratcliff/Obershelp ratio
//   - Sanitizing project names for safe filesystem use
//
// Similarity is measured in runes so CJK keywords score the same way as
// Latin ones.
package textutil
