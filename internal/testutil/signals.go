package testutil

import (
	"math"
)

// Sine returns n samples of amp*sin(2*pi*freq*t + phaseDeg) at sampleRate.
func Sine(n int, freq, sampleRate, amp, phaseDeg float64) []float64 {
	out := make([]float64, n)
	ph := phaseDeg * math.Pi / 180
	w := 2 * math.Pi * freq / sampleRate
	for i := range out {
		out[i] = amp * math.Sin(w*float64(i)+ph)
	}
	return out
}

// KickTrain renders decaying sine kicks at every onset in a buffer of n
// samples. Each kick is amp*sin(2*pi*freq*t)*exp(-t/decay), decay in seconds,
// truncated after lengthSamples.
func KickTrain(n int, onsets []int, freq, sampleRate, amp, decay float64, lengthSamples int) []float64 {
	out := make([]float64, n)
	w := 2 * math.Pi * freq / sampleRate
	for _, on := range onsets {
		for k := 0; k < lengthSamples && on+k < n; k++ {
			if on+k < 0 {
				continue
			}
			tSec := float64(k) / sampleRate
			out[on+k] += amp * math.Sin(w*float64(k)) * math.Exp(-tSec/decay)
		}
	}
	return out
}

// BassBursts renders a Hann-windowed sine burst of the given length centered
// at onset+offset for every onset.
func BassBursts(n int, onsets []int, offset int, freq, sampleRate, amp float64, length int) []float64 {
	out := make([]float64, n)
	w := 2 * math.Pi * freq / sampleRate
	half := length / 2
	for _, on := range onsets {
		start := on + offset - half
		for k := range length {
			i := start + k
			if i < 0 || i >= n {
				continue
			}
			win := 0.5 - 0.5*math.Cos(2*math.Pi*float64(k)/float64(length-1))
			out[i] += amp * win * math.Sin(w*float64(i))
		}
	}
	return out
}

// Onsets returns count evenly spaced indices starting at first.
func Onsets(first, interval, count int) []int {
	out := make([]int, count)
	for i := range out {
		out[i] = first + i*interval
	}
	return out
}
