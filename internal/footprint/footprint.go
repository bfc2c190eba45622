// Package footprint computes the ground-visibility radius for the tracked
// object: how far from the sub-satellite point an observer can be and still
// see it above a minimum elevation.
package footprint

import (
	"math"

	"github.com/sky/skywatch/internal/transform"
)

// DefaultMinElevationDeg is the engine's overlay threshold. Deliberately
// distinct from the pass-prediction threshold.
const DefaultMinElevationDeg = 20.0

// RadiusKm returns the visibility radius in kilometres for a satellite at
// altitude altKm with minimum elevation minElevDeg.
//
// From the law of cosines on the Earth-centre/observer/satellite triangle at
// the elevation boundary: with ratio = R/(R+h),
//
//	ψ = acos(ratio·cos ε) − ε
//	radius = R·ψ
//
// The acos argument is clamped to [-1, 1] to guard against floating round-off
// at altitude 0 or ε = 90°; the result is never negative.
func RadiusKm(altKm, minElevDeg float64) float64 {
	const r = transform.EarthRadiusKm

	elev := minElevDeg * math.Pi / 180.0
	ratio := r / (r + altKm)

	arg := ratio * math.Cos(elev)
	if arg > 1 {
		arg = 1
	} else if arg < -1 {
		arg = -1
	}

	psi := math.Acos(arg) - elev
	return math.Max(0, r*psi)
}
