package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 0.1},
		{"default bucket size for negative", -1, 0.1},
		{"default bucket size above one", 5, 0.1},
		{"custom bucket size", 0.25, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(0.5, "transcribing") {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestProgressSampler_StageChange(t *testing.T) {
	s := NewProgressSampler(0.1)

	if !s.ShouldLog(0.05, "probing") {
		t.Error("first stage should log")
	}
	if s.ShouldLog(0.05, "probing") {
		t.Error("same stage and fraction should not log again")
	}
	if !s.ShouldLog(0.05, "  extracting  ") {
		t.Error("different stage should log")
	}
	if s.lastStage != "extracting" {
		t.Errorf("lastStage = %q, want extracting (trimmed)", s.lastStage)
	}
}

func TestProgressSampler_Buckets(t *testing.T) {
	s := NewProgressSampler(0.1)

	if !s.ShouldLog(0.2, "transcribing") {
		t.Error("0.2 should log (first call)")
	}
	if s.ShouldLog(0.25, "transcribing") {
		t.Error("0.25 should not log (same bucket)")
	}
	if !s.ShouldLog(0.3, "transcribing") {
		t.Error("0.3 should log (new bucket)")
	}
	if !s.ShouldLog(1, "transcribing") {
		t.Error("1.0 should log")
	}
	if s.ShouldLog(1.5, "transcribing") {
		t.Error("values above 1 should clamp to the final bucket")
	}
}

func TestProgressSampler_UnknownFraction(t *testing.T) {
	s := NewProgressSampler(0.1)
	if !s.ShouldLog(-1, "transcribing") {
		t.Error("first call should log even with unknown progress")
	}
	if s.ShouldLog(-1, "transcribing") {
		t.Error("unknown progress should not trigger bucket logging")
	}
}

func TestProgressSampler_Reset(t *testing.T) {
	s := NewProgressSampler(0.1)
	s.ShouldLog(0.5, "transcribing")

	s.Reset()

	if s.lastStage != "" || s.lastBucket != -1 {
		t.Fatalf("reset left state: stage=%q bucket=%d", s.lastStage, s.lastBucket)
	}
	if !s.ShouldLog(0.5, "transcribing") {
		t.Error("should log after reset")
	}
}
