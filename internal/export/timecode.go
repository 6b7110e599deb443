package export

import (
	"fmt"
	"math"
)

// DefaultFPS is the frame rate used when none is configured.
const DefaultFPS = 30.0

// SMPTE converts seconds to a non-drop-frame HH:MM:SS:FF timecode. The frame
// count is rounded half to even; fields use the integer part of fps as the
// frame base. Hours are not wrapped.
func SMPTE(seconds, fps float64) string {
	base := frameBase(fps)
	frames := int64(math.RoundToEven(math.Max(0, seconds) * fps))
	ff := frames % base
	totalSeconds := frames / base
	ss := totalSeconds % 60
	mm := (totalSeconds / 60) % 60
	hh := totalSeconds / 3600
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hh, mm, ss, ff)
}

// SRTTimecode converts seconds to an HH:MM:SS,mmm subtitle timestamp with
// millisecond precision.
func SRTTimecode(seconds float64) string {
	ms := int64(math.Round(math.Max(0, seconds) * 1000))
	totalSeconds := ms / 1000
	ms %= 1000
	ss := totalSeconds % 60
	mm := (totalSeconds / 60) % 60
	hh := totalSeconds / 3600
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hh, mm, ss, ms)
}

// Frames converts seconds to a frame count, rounding half to even.
func Frames(seconds, fps float64) int64 {
	return int64(math.RoundToEven(seconds * fps))
}

func frameBase(fps float64) int64 {
	base := int64(fps)
	if base < 1 {
		return 1
	}
	return base
}
