package logging

import "strings"

// ProgressSampler suppresses repetitive analysis progress logs while keeping a
// line whenever the stage changes or progress crosses a bucket boundary.
// Progress is expressed as a fraction in [0, 1].
type ProgressSampler struct {
	bucketSize float64
	lastStage  string
	lastBucket int
}

// NewProgressSampler constructs a sampler with the given bucket width
// (default 0.1, i.e. every 10%).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 || bucketSize > 1 {
		bucketSize = 0.1
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event should be logged. A negative
// fraction means "unknown" and only stage changes emit.
func (s *ProgressSampler) ShouldLog(fraction float64, stage string) bool {
	if s == nil {
		return true
	}
	stage = strings.TrimSpace(stage)
	emit := false
	if stage != "" && stage != s.lastStage {
		s.lastStage = stage
		s.lastBucket = -1
		emit = true
	}
	if fraction >= 0 {
		if fraction > 1 {
			fraction = 1
		}
		// Nudge before flooring so 0.3/0.1 lands in bucket 3.
		bucket := int(fraction/s.bucketSize + 1e-9)
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state before a new analysis run.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastStage = ""
	s.lastBucket = -1
}
