// Package ffmpeg runs the two ffmpeg jobs ClipFlow needs: extracting a
// speech-recognition friendly audio track and rendering the cut video.
//
// Argument construction is exposed separately from execution so callers and
// tests can inspect the exact command line. The command runner is swappable
// through WithCommandRunner.
package ffmpeg
