package mathutil

import (
	"math"
)

// MsToSamples converts a duration in milliseconds to a whole number of
// samples, rounding to nearest.
func MsToSamples(ms, sampleRate float64) int {
	return int(math.Round(ms * sampleRate / msPerSecond))
}

// DBToLinear converts a level in dBFS to a linear amplitude.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/dbAmplitude)
}

// LinearToDB converts a linear amplitude to dBFS. Zero maps to -Inf.
func LinearToDB(amp float64) float64 {
	return dbAmplitude * math.Log10(amp)
}

// OnePoleCoefficient returns the smoothing coefficient exp(-1/(t*fs)) of a
// one-pole follower with time constant t given in milliseconds.
func OnePoleCoefficient(ms, sampleRate float64) float64 {
	t := ms / msPerSecond
	if t < minTimeConst || sampleRate <= 0 {
		return 0
	}
	return math.Exp(-1.0 / (t * sampleRate))
}

// BandwidthToQ converts a bandwidth in octaves to the quality factor of a
// second-order section: Q = sqrt(2^BW) / (2^BW - 1).
func BandwidthToQ(octaves float64) float64 {
	if octaves < minBandwidthOctaves {
		octaves = minBandwidthOctaves
	}
	p := math.Exp2(octaves)
	return math.Sqrt(p) / (p - 1)
}
