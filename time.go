package motioner

import (
	"errors"
	"math"
)

// Time conversion errors.
var (
	// ErrInvalidFPS is returned when a frame rate is zero, negative, or
	// not finite. Callers must always pass fps explicitly; there is no
	// global default to fall back to.
	ErrInvalidFPS = errors.New("motioner: fps must be positive and finite")

	// ErrInvalidTime is returned when a time value is not finite.
	ErrInvalidTime = errors.New("motioner: time must be finite")
)

// SecondsToFrame converts a time offset in seconds to a frame index:
// round(seconds * fps), clamped to non-negative. This function is the sole
// owner of the seconds-to-frames conversion; every boundary that accepts
// times in seconds goes through it.
func SecondsToFrame(seconds, fps float64) (int, error) {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return 0, ErrInvalidFPS
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, ErrInvalidTime
	}
	frame := int(math.Round(seconds * fps))
	if frame < 0 {
		frame = 0
	}
	return frame, nil
}
