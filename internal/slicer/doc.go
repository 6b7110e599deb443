// Package slicer turns detected markers into keep segments.
//
// Two algorithms are available. Backtrack treats every OK cue as approving
// the material spoken since the most recent NG cue. Interval keeps the
// material bracketed by START and END cues. Both finish with a merge pass so
// the returned segments never overlap and are sorted by start.
//
// Segments are later edited by the user (toggle, start/end patch); edits set
// ManualAdjusted and are never re-merged.
package slicer
