// Package whisperx wraps the WhisperX speech recognizer, launched through
// uvx, and converts its JSON output into a transcript.Transcript.
//
// Cache hands out one Model per model size. A Model remembers whether its
// weights have been fetched and serializes the first load so concurrent
// analyses do not download the same model twice. Callers own the Cache and
// inject it where transcription is needed.
package whisperx
