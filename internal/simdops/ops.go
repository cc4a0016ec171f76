// Package simdops provides the SIMD vector kernels used by the phase
// alignment components.
//
// Only setup-time and block-level work goes through here (window seeds,
// meter normalization, channel layout). Per-sample recursions stay scalar.
package simdops

import (
	"github.com/tphakala/simd/f64"
)

// Ops provides SIMD-accelerated float64 operations.
type Ops struct {
	// DotProductUnsafe computes the dot product without bounds checking.
	// Use only when slices are guaranteed to have equal length.
	DotProductUnsafe func(a, b []float64) float64

	// Interleave2 interleaves two slices: dst[0]=a[0], dst[1]=b[0], dst[2]=a[1], ...
	Interleave2 func(dst, a, b []float64)

	// Deinterleave2 is the inverse of Interleave2: a[0]=src[0], b[0]=src[1], ...
	Deinterleave2 func(a, b, src []float64)

	// Add computes dst[i] = a[i] + b[i].
	Add func(dst, a, b []float64)

	// Sum returns the sum of all elements.
	Sum func(a []float64) float64

	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []float64, s float64)
}

var ops64 = Ops{
	DotProductUnsafe: f64.DotProductUnsafe,
	Interleave2:      f64.Interleave2,
	Deinterleave2:    f64.Deinterleave2,
	Add:              f64.Add,
	Sum:              f64.Sum,
	Scale:            f64.Scale,
}

// Float64Ops returns the float64 SIMD operations.
func Float64Ops() *Ops {
	return &ops64
}

// SumSquares returns the sum of a[i]^2.
func SumSquares(a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return f64.DotProductUnsafe(a, a)
}

// Mean returns the arithmetic mean of a, or 0 for an empty slice.
func Mean(a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return f64.Sum(a) / float64(len(a))
}

// Mid writes the mid signal 0.5*(left+right) into dst over the shortest of
// the three slices.
func Mid(dst, left, right []float64) {
	n := min(len(dst), len(left), len(right))
	f64.Add(dst[:n], left[:n], right[:n])
	f64.Scale(dst[:n], dst[:n], midGain)
}

const midGain = 0.5
