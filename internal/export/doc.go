// Package export renders keep segments into edit decision and subtitle
// documents: CMX3600 EDL, xmeml v5 sequence XML, and SRT.
//
// Renderers are pure functions of their inputs. They consider only enabled
// keep segments, ordered by start, and lay them end to end on the output
// timeline. An empty selection renders an empty or skeleton document; callers
// that need at least one segment check that themselves.
package export
