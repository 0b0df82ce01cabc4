package runtime

import (
	"math"

	"github.com/aretw0/boardwalk/pkg/domain"
)

const (
	// MoveRatio is the share of the remaining distance covered per tick.
	MoveRatio = 0.2
	// ConvergenceThreshold is the per-axis distance in pixels under which a movement completes.
	ConvergenceThreshold = 1.0
)

// Approach advances pos toward dst by MoveRatio of the remaining distance.
// Once both axis distances are within ConvergenceThreshold it returns dst exactly and true.
func Approach(pos, dst domain.Point) (domain.Point, bool) {
	next := domain.Point{
		X: pos.X + (dst.X-pos.X)*MoveRatio,
		Y: pos.Y + (dst.Y-pos.Y)*MoveRatio,
	}
	if math.Abs(dst.X-next.X) <= ConvergenceThreshold && math.Abs(dst.Y-next.Y) <= ConvergenceThreshold {
		return dst, true
	}
	return next, false
}

// ConvergenceTicks returns how many ticks an animated movement from pos to dst takes.
// It returns 0 for non-finite coordinates, which never converge.
func ConvergenceTicks(pos, dst domain.Point) int {
	for _, v := range []float64{pos.X, pos.Y, dst.X, dst.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
	}
	ticks := 0
	for {
		ticks++
		var done bool
		if pos, done = Approach(pos, dst); done {
			return ticks
		}
	}
}
