package engine

import "math"

// EqualPower returns the outgoing and incoming volumes at progress p
// (clamped to 0..1) for a crossfade towards target. The summed power of the
// two channels stays constant across the sweep.
func EqualPower(p, target float64) (out, in float64) {
	p = min(max(p, 0), 1)
	angle := p * math.Pi / 2
	return math.Cos(angle) * target, math.Sin(angle) * target
}
