// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Prober: runs ffprobe, with a swappable command runner for tests
//
// ClipFlow only needs the container duration and whether the source carries
// an audio stream; Duration covers both checks.
package ffprobe
