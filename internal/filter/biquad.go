// Package filter implements the all-pass phase rotator: second-order all-pass
// sections designed to hit an exact phase at a center frequency, cascaded into
// a chain that rotates a stereo signal without changing its magnitude.
package filter

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tphakala/go-phase-sync/internal/mathutil"
)

// ErrInvalidParams is returned for out-of-range filter parameters.
var ErrInvalidParams = errors.New("filter: invalid parameters")

// Coefficients holds normalized biquad coefficients (a0 = 1).
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Identity is the pass-through section.
var Identity = Coefficients{B0: 1}

// Response evaluates H(e^jw) at freq for the given sample rate:
//
//	H = (b0 + b1 e^-jw + b2 e^-2jw) / (1 + a1 e^-jw + a2 e^-2jw)
func (c Coefficients) Response(freq, sampleRate float64) complex128 {
	w := 2 * math.Pi * freq / sampleRate
	z1 := cmplx.Rect(1, -w)
	z2 := z1 * z1
	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
	return num / den
}

// Allpass returns the RBJ second-order all-pass centered at f0 with quality
// factor q. Its phase falls from 0 at DC through -180 degrees at f0 towards
// -360 degrees at Nyquist.
func Allpass(f0, q, sampleRate float64) Coefficients {
	w0 := 2 * math.Pi * f0 / sampleRate
	return allpassW0(w0, q)
}

func allpassW0(w0, q float64) Coefficients {
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha
	b0 := (1 - alpha) / a0
	b1 := -2 * math.Cos(w0) / a0
	return Coefficients{B0: b0, B1: b1, B2: 1, A1: b1, A2: b0}
}

// AllpassForPhase designs an all-pass section with quality factor q whose
// phase at fc is exactly lagDeg, which must lie in [-180, 0).
//
// The section center is solved from the bilinear-mapped analog prototype
// H(s) = (s^2 - s/Q + 1)/(s^2 + s/Q + 1). With h = -lag/2 and
// W = tan(wc/2)/tan(w0/2), the phase condition reduces to
// sin(h) W^2 + cos(h)/Q W - sin(h) = 0.
func AllpassForPhase(fc, lagDeg, q, sampleRate float64) (Coefficients, error) {
	switch {
	case sampleRate <= 0:
		return Identity, fmt.Errorf("%w: sample rate %g", ErrInvalidParams, sampleRate)
	case fc <= 0 || fc >= sampleRate/2:
		return Identity, fmt.Errorf("%w: frequency %g outside (0, %g)", ErrInvalidParams, fc, sampleRate/2)
	case q <= 0:
		return Identity, fmt.Errorf("%w: q %g", ErrInvalidParams, q)
	case !(lagDeg >= -180 && lagDeg < 0):
		return Identity, fmt.Errorf("%w: stage lag %g outside [-180, 0)", ErrInvalidParams, lagDeg)
	}

	h := mathutil.Radians(-lagDeg) / 2 // (0, pi/2]
	s, c := math.Sin(h), math.Cos(h)
	cq := c / q
	// Conjugate form of the positive root; cos(h) >= 0 so nothing cancels.
	ratio := 2 * s / (cq + math.Sqrt(cq*cq+4*s*s))

	wc := 2 * math.Pi * fc / sampleRate
	w0 := 2 * math.Atan(math.Tan(wc/2)/ratio)
	return allpassW0(w0, q), nil
}

// Stage is one all-pass section with independent state for two channels,
// in Direct Form II Transposed.
type Stage struct {
	Coefficients

	l0, l1 float64
	r0, r1 float64
}

// Process filters one stereo sample.
func (s *Stage) Process(l, r float64) (float64, float64) {
	yl := s.B0*l + s.l0
	s.l0 = s.B1*l - s.A1*yl + s.l1
	s.l1 = s.B2*l - s.A2*yl

	yr := s.B0*r + s.r0
	s.r0 = s.B1*r - s.A1*yr + s.r1
	s.r1 = s.B2*r - s.A2*yr
	return yl, yr
}

// Reset zeroes the filter state.
func (s *Stage) Reset() {
	s.l0, s.l1 = 0, 0
	s.r0, s.r1 = 0, 0
}
