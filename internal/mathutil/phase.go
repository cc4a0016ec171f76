// Package mathutil provides phase, time and level conversions shared by the
// phase alignment components.
package mathutil

import (
	"math"
)

// WrapDegrees maps any angle into the half-open interval (-180, 180].
//
// NaN and infinite inputs map to 0 so callers on the audio path always get a
// usable phase.
func WrapDegrees(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}

	r := math.Mod(deg, fullTurnDegrees) // (-360, 360)
	if r <= -halfTurnDegrees {
		r += fullTurnDegrees
	} else if r > halfTurnDegrees {
		r -= fullTurnDegrees
	}
	return r
}

// DeltaDegrees returns the shortest signed rotation from 'from' to 'to',
// wrapped into (-180, 180]. A half-turn is reported as +180.
func DeltaDegrees(from, to float64) float64 {
	return WrapDegrees(to - from)
}

// DelayToPhaseDegrees converts a time offset in samples into the phase
// rotation (degrees, wrapped) that cancels it at freqHz.
//
// Energy arriving offsetSamples late sits at -360*f*offset/fs; the returned
// rotation is its negation, so a late bass gets a positive phase. Positive
// phases are realized by the rotator as the equivalent lag, one turn back.
func DelayToPhaseDegrees(offsetSamples, freqHz, sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return WrapDegrees(fullTurnDegrees * freqHz * offsetSamples / sampleRate)
}

// PhaseToLagDegrees maps a wrapped phase in (-180, 180] onto the equivalent
// causal lag in (-360, 0].
func PhaseToLagDegrees(phase float64) float64 {
	phase = WrapDegrees(phase)
	if phase > 0 {
		return phase - fullTurnDegrees
	}
	return phase
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / halfTurnDegrees
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * halfTurnDegrees / math.Pi
}
