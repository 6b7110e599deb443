// Package workflow drives a project from imported video to export.
//
// Service.Analyze runs the analysis pipeline synchronously: probe the source
// duration, extract a 16 kHz mono WAV, transcribe it, detect cue markers, and
// slice keep segments. Progress moves through fixed checkpoints, is persisted
// on the project row, and never goes backwards. Failures leave the project in
// the error state with the message recorded.
//
// A per-project file lock guards analysis; edits, imports, and deletes are
// refused while it is held. Collaborators (ffprobe, ffmpeg, WhisperX) sit
// behind small interfaces so tests can substitute fakes.
package workflow
