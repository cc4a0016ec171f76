// Package testutil provides reusable test helpers and synthetic signals for
// the phase alignment tests.
package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance   = 1e-10
	MagnitudeTolerance = 1e-9 // All-pass magnitude deviation from unity
	PhaseTolerance     = 1e-6 // Degrees
	MeterTolerance     = 1.0  // Degrees, FFT-measured phase
)

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange(t *testing.T, s []float64, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}

// AssertPhaseInRange verifies that every phase lies in (-180, 180].
func AssertPhaseInRange(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if !(v > -180 && v <= 180) {
			return assert.Fail(t, "phase out of range",
				"s[%d]=%f is outside (-180, 180]", i, v)
		}
	}
	return true
}

// AssertPhaseEqual verifies that two phases agree modulo 360 degrees.
func AssertPhaseEqual(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	d := math.Mod(actual-expected, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	if math.Abs(d) > tolerance {
		return assert.Fail(t, fmt.Sprintf("phase %f differs from %f by %f degrees (tolerance %f)",
			actual, expected, d, tolerance), msgAndArgs...)
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	if relError > tolerance {
		return assert.Fail(t, fmt.Sprintf("relative error %e exceeds tolerance %e (expected=%g, actual=%g)",
			relError, tolerance, expected, actual), msgAndArgs...)
	}
	return true
}
