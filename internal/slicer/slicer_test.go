package slicer

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"clipflow/internal/marker"
	"clipflow/internal/services"
)

func mk(t marker.Type, start, end float64) marker.Marker {
	return marker.Marker{Type: t, Text: t.String(), Start: start, End: end, Confidence: 1}
}

func bounds(segments []Segment) [][2]float64 {
	out := make([][2]float64, len(segments))
	for i, s := range segments {
		out[i] = [2]float64{s.Start, s.End}
	}
	return out
}

func assertWellFormed(t *testing.T, segments []Segment) {
	t.Helper()
	for i := 1; i < len(segments); i++ {
		prev, cur := segments[i-1], segments[i]
		if cur.Start < prev.Start {
			t.Fatalf("segments not sorted at %d: %v", i, bounds(segments))
		}
		if cur.Start < prev.End {
			t.Fatalf("segments overlap at %d: %v", i, bounds(segments))
		}
	}
}

func TestBacktrackLiteralScenario(t *testing.T) {
	markers := []marker.Marker{mk(marker.NG, 2.0, 2.5), mk(marker.OK, 10.0, 10.5)}

	got := Backtrack(markers, 20, 0.5, 0.3)

	if want := [][2]float64{{2.3, 9.8}}; !reflect.DeepEqual(bounds(got), want) {
		t.Fatalf("Backtrack() = %v, want %v", bounds(got), want)
	}
	seg := got[0]
	if seg.Kind != KindKeep || !seg.Enabled || seg.ManualAdjusted {
		t.Fatalf("unexpected flags %+v", seg)
	}
	if seg.Trigger == nil || seg.Trigger.Type != marker.OK || seg.Trigger.Start != 10.0 {
		t.Fatalf("expected OK trigger, got %+v", seg.Trigger)
	}
	if len(seg.ID) != len("seg_")+8 {
		t.Fatalf("unexpected id %q", seg.ID)
	}
}

func TestBacktrackWithoutOKKeepsWholeRecording(t *testing.T) {
	got := Backtrack([]marker.Marker{mk(marker.NG, 3, 4)}, 60, 0.5, 0.3)
	if want := [][2]float64{{0, 60}}; !reflect.DeepEqual(bounds(got), want) {
		t.Fatalf("Backtrack() = %v, want %v", bounds(got), want)
	}
	if got[0].Trigger != nil {
		t.Fatalf("fallback segment should have no trigger")
	}
}

func TestBacktrackChainsFromPreviousSegment(t *testing.T) {
	markers := []marker.Marker{
		mk(marker.OK, 10, 10.5),
		mk(marker.OK, 20, 20.5),
	}

	got := Backtrack(markers, 30, 0.5, 0.3)

	// First: [0-0.5 -> 0, 9.5+0.3]. Second starts at 9.8-0.5 = 9.3 and merges.
	if want := [][2]float64{{0, 19.8}}; !reflect.DeepEqual(bounds(got), want) {
		t.Fatalf("Backtrack() = %v, want %v", bounds(got), want)
	}
}

func TestBacktrackUsesNearestPrecedingNG(t *testing.T) {
	markers := []marker.Marker{
		mk(marker.NG, 1, 1.5),
		mk(marker.NG, 5, 5.5),
		mk(marker.OK, 12, 12.5),
		mk(marker.NG, 15, 15.5),
		mk(marker.OK, 25, 25.5),
	}

	got := Backtrack(markers, 40, 0.5, 0.3)

	want := [][2]float64{{5.3, 11.8}, {15.3, 24.8}}
	if !reflect.DeepEqual(bounds(got), want) {
		t.Fatalf("Backtrack() = %v, want %v", bounds(got), want)
	}
	assertWellFormed(t, got)
}

func TestBacktrackDropsShortRanges(t *testing.T) {
	markers := []marker.Marker{mk(marker.NG, 5, 5.5), mk(marker.OK, 5.55, 6)}
	if got := Backtrack(markers, 10, 0.5, 0.3); len(got) != 0 {
		t.Fatalf("expected no segments, got %v", bounds(got))
	}
}

func TestBacktrackClampsToDuration(t *testing.T) {
	markers := []marker.Marker{mk(marker.NG, 0.1, 0.2), mk(marker.OK, 9.9, 10)}
	got := Backtrack(markers, 9.5, 0.5, 0.3)
	if want := [][2]float64{{0, 9.5}}; !reflect.DeepEqual(bounds(got), want) {
		t.Fatalf("Backtrack() = %v, want %v", bounds(got), want)
	}
}

func TestIntervalPairsStartAndEnd(t *testing.T) {
	markers := []marker.Marker{
		mk(marker.Start, 2, 2.5),
		mk(marker.End, 10, 10.5),
		mk(marker.Start, 20, 20.5),
		mk(marker.End, 30, 30.5),
	}

	got := Interval(markers, 60, 0.5, 0.3)

	want := [][2]float64{{2.3, 10}, {20.3, 30}}
	if !reflect.DeepEqual(bounds(got), want) {
		t.Fatalf("Interval() = %v, want %v", bounds(got), want)
	}
	if got[1].Trigger == nil || got[1].Trigger.Type != marker.Start {
		t.Fatalf("expected START trigger, got %+v", got[1].Trigger)
	}
}

func TestIntervalUnpairedStartRunsToNextStartOrEnd(t *testing.T) {
	markers := []marker.Marker{
		mk(marker.End, 1, 1.2),
		mk(marker.Start, 5, 5.5),
	}
	got := Interval(markers, 12, 0.5, 0.3)
	if want := [][2]float64{{5.3, 12}}; !reflect.DeepEqual(bounds(got), want) {
		t.Fatalf("Interval() = %v, want %v", bounds(got), want)
	}

	// Without any END the first START runs up to the second one.
	markers = []marker.Marker{mk(marker.Start, 5, 5.5), mk(marker.Start, 8, 8.5)}
	got = Interval(markers, 12, 0.5, 0.3)
	if want := [][2]float64{{5.3, 8}, {8.3, 12}}; !reflect.DeepEqual(bounds(got), want) {
		t.Fatalf("Interval() = %v, want %v", bounds(got), want)
	}
}

func TestIntervalWithoutStartIsEmpty(t *testing.T) {
	markers := []marker.Marker{mk(marker.OK, 1, 2), mk(marker.End, 3, 4)}
	if got := Interval(markers, 60, 0.5, 0.3); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", bounds(got))
	}
}

func TestMergeOverlapsAndTolerance(t *testing.T) {
	segments := []Segment{
		{ID: "c", Kind: KindKeep, Start: 20, End: 25, Enabled: true},
		{ID: "a", Kind: KindKeep, Start: 0, End: 5, Enabled: true},
		{ID: "b", Kind: KindKeep, Start: 5.04, End: 8, Enabled: true},
		{ID: "d", Kind: KindKeep, Start: 21, End: 22, Enabled: true},
		{ID: "e", Kind: KindKeep, Start: 8.2, End: 9, Enabled: true},
	}

	got := Merge(segments)

	want := [][2]float64{{0, 8}, {8.2, 9}, {20, 25}}
	if !reflect.DeepEqual(bounds(got), want) {
		t.Fatalf("Merge() = %v, want %v", bounds(got), want)
	}
	if got[0].ID != "a" {
		t.Fatalf("merged segment should keep the earlier id, got %q", got[0].ID)
	}
	if segments[1].End != 5 {
		t.Fatal("Merge modified its input")
	}
	assertWellFormed(t, got)

	again := Merge(got)
	if !reflect.DeepEqual(again, got) {
		t.Fatalf("Merge not idempotent: %v vs %v", bounds(again), bounds(got))
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil); len(got) != 0 {
		t.Fatalf("Merge(nil) = %v", got)
	}
}

func TestSliceDispatchAndValidation(t *testing.T) {
	markers := []marker.Marker{mk(marker.NG, 2.0, 2.5), mk(marker.OK, 10.0, 10.5)}

	got, err := Slice(markers, 20, Options{Mode: ModeBacktrack, PreBuffer: 0.5, PostBuffer: 0.3})
	if err != nil {
		t.Fatalf("Slice returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one segment, got %v", bounds(got))
	}

	got, err = Slice(markers, 20, Options{Mode: ModeInterval, PreBuffer: 0.5, PostBuffer: 0.3})
	if err != nil {
		t.Fatalf("Slice returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("interval without START should be empty, got %v", bounds(got))
	}

	invalid := []struct {
		name     string
		duration float64
		opts     Options
	}{
		{"zero duration", 0, Options{}},
		{"negative duration", -1, Options{}},
		{"nan duration", math.NaN(), Options{}},
		{"negative pre buffer", 10, Options{PreBuffer: -0.1}},
		{"negative post buffer", 10, Options{PostBuffer: -0.1}},
		{"unknown mode", 10, Options{Mode: Mode(7)}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Slice(markers, tt.duration, tt.opts)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeBacktrack, ModeInterval} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("random"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
