// Package transcript defines the time-stamped speech transcript consumed by
// marker detection and subtitle export.
//
// A Transcript is produced once by the speech-recognition collaborator and is
// read-only afterwards. Times are seconds from the start of the source
// recording, rounded to millisecond precision on ingestion.
package transcript
