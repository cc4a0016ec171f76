// Package meter measures phase and gain between two signals at a single
// frequency with a windowed FFT. It is a verification tool for the rotator
// and the offline host; nothing on the audio path uses it.
package meter

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-phase-sync/internal/mathutil"
	"github.com/tphakala/go-phase-sync/internal/simdops"
)

// Errors returned by Meter.
var (
	ErrInvalidSize = errors.New("meter: invalid frame size")
	ErrShortInput  = errors.New("meter: input shorter than frame")
	ErrFrequency   = errors.New("meter: frequency outside analysis range")
)

// Measurement is the response of proc relative to ref at one frequency.
type Measurement struct {
	Frequency    float64 // Bin center actually measured, Hz
	Bin          int
	PhaseDegrees float64 // Phase of proc minus phase of ref, (-180, 180]
	Gain         float64 // |proc| / |ref|
	RefLevel     float64 // Amplitude of ref at the bin
}

// Meter holds an FFT plan and a Hann window for one frame size.
type Meter struct {
	n          int
	sampleRate float64
	fft        *fourier.FFT
	window     []float64
	frame      []float64
	refCoeffs  []complex128
	procCoeffs []complex128
}

// New creates a meter analyzing frames of n samples.
func New(n int, sampleRate float64) (*Meter, error) {
	if n < 4 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %g", ErrInvalidSize, sampleRate)
	}

	// Periodic Hann, scaled so a full-scale sine at a bin center reads 1.
	window := make([]float64, n)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}
	ops := simdops.Float64Ops()
	ops.Scale(window, window, 2/ops.Sum(window))

	return &Meter{
		n:          n,
		sampleRate: sampleRate,
		fft:        fourier.NewFFT(n),
		window:     window,
		frame:      make([]float64, n),
		refCoeffs:  make([]complex128, n/2+1),
		procCoeffs: make([]complex128, n/2+1),
	}, nil
}

// Size returns the frame size.
func (m *Meter) Size() int {
	return m.n
}

// BinFrequency returns the center frequency of the bin nearest to freq.
func (m *Meter) BinFrequency(freq float64) float64 {
	return float64(m.bin(freq)) * m.sampleRate / float64(m.n)
}

func (m *Meter) bin(freq float64) int {
	return int(math.Round(freq * float64(m.n) / m.sampleRate))
}

// Measure compares the last Size() samples of ref and proc at the bin
// nearest freq.
func (m *Meter) Measure(ref, proc []float64, freq float64) (Measurement, error) {
	k := m.bin(freq)
	if k < 1 || k >= m.n/2 {
		return Measurement{}, fmt.Errorf("%w: %g Hz with %d-point frame", ErrFrequency, freq, m.n)
	}
	if len(ref) < m.n || len(proc) < m.n {
		return Measurement{}, fmt.Errorf("%w: need %d, got %d and %d", ErrShortInput, m.n, len(ref), len(proc))
	}

	r := m.transform(ref[len(ref)-m.n:], m.refCoeffs)[k]
	p := m.transform(proc[len(proc)-m.n:], m.procCoeffs)[k]

	meas := Measurement{
		Frequency: float64(k) * m.sampleRate / float64(m.n),
		Bin:       k,
		RefLevel:  cmplx.Abs(r),
	}
	if meas.RefLevel > 0 {
		meas.Gain = cmplx.Abs(p) / meas.RefLevel
		meas.PhaseDegrees = mathutil.WrapDegrees(mathutil.Degrees(cmplx.Phase(p / r)))
	}
	return meas, nil
}

// Level returns the amplitude of the last Size() samples of x at the bin
// nearest freq. A full-scale sine at a bin center reads 1.
func (m *Meter) Level(x []float64, freq float64) (float64, error) {
	k := m.bin(freq)
	if k < 1 || k >= m.n/2 {
		return 0, fmt.Errorf("%w: %g Hz with %d-point frame", ErrFrequency, freq, m.n)
	}
	if len(x) < m.n {
		return 0, fmt.Errorf("%w: need %d, got %d", ErrShortInput, m.n, len(x))
	}
	return cmplx.Abs(m.transform(x[len(x)-m.n:], m.refCoeffs)[k]), nil
}

func (m *Meter) transform(x []float64, dst []complex128) []complex128 {
	mean := simdops.Mean(x)
	for i, v := range x {
		m.frame[i] = (v - mean) * m.window[i]
	}
	return m.fft.Coefficients(dst, m.frame)
}
