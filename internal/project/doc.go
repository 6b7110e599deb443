// Package project persists ClipFlow projects in SQLite.
//
// A project owns one source recording plus the artefacts of its latest
// analysis: the transcript, the detected markers, and the keep segments.
// Analysis results are replaced wholesale on every run; only user edits
// (segment toggle and boundary patches) update rows in place.
//
// Marker types and segment kinds are closed variants in Go and are stored as
// their string names.
package project
