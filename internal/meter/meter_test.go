package meter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-phase-sync/internal/filter"
	"github.com/tphakala/go-phase-sync/internal/testutil"
)

const testRate = 48000.0

func TestNew_Validation(t *testing.T) {
	_, err := New(2, testRate)
	require.ErrorIs(t, err, ErrInvalidSize)
	_, err = New(1024, 0)
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestMeter_KnownPhase(t *testing.T) {
	m, err := New(4800, testRate) // 10 Hz bins
	require.NoError(t, err)

	for _, shift := range []float64{-170, -90, -12.5, 0, 45, 179} {
		ref := testutil.Sine(9600, 100, testRate, 0.5, 0)
		proc := testutil.Sine(9600, 100, testRate, 0.25, shift)

		meas, err := m.Measure(ref, proc, 100)
		require.NoError(t, err)
		assert.Equal(t, 10, meas.Bin)
		assert.InDelta(t, 100.0, meas.Frequency, 1e-9)
		testutil.AssertPhaseEqual(t, shift, meas.PhaseDegrees, 1e-6)
		assert.InDelta(t, 0.5, meas.Gain, 1e-9)
		assert.InDelta(t, 0.5, meas.RefLevel, 1e-9)
	}
}

func TestMeter_Errors(t *testing.T) {
	m, err := New(1024, testRate)
	require.NoError(t, err)

	_, err = m.Measure(make([]float64, 100), make([]float64, 1024), 100)
	require.ErrorIs(t, err, ErrShortInput)
	_, err = m.Measure(make([]float64, 1024), make([]float64, 1024), 1)
	require.ErrorIs(t, err, ErrFrequency)
	_, err = m.Level(make([]float64, 1024), 30000)
	require.ErrorIs(t, err, ErrFrequency)

	// Silence in the reference measures nothing.
	meas, err := m.Measure(make([]float64, 1024), make([]float64, 1024), 470)
	require.NoError(t, err)
	assert.Zero(t, meas.Gain)
}

// The FFT-measured phase of the rotator output matches its design.
func TestMeter_RotatorPhase(t *testing.T) {
	m, err := New(4800, testRate)
	require.NoError(t, err)

	r, err := filter.NewRotator(filter.DefaultConfig(testRate))
	require.NoError(t, err)

	for _, target := range []float64{-150, -60, 30, 120} {
		r.SetTargetPhase(target)
		r.Reset()

		// Let the chain settle before the measured frame.
		ref := testutil.Sine(48000, 100, testRate, 0.8, 0)
		out := make([]float64, len(ref))
		for i, x := range ref {
			out[i], _ = r.Process(x, x)
		}

		meas, err := m.Measure(ref, out, 100)
		require.NoError(t, err)
		testutil.AssertPhaseEqual(t, target, meas.PhaseDegrees, testutil.MeterTolerance)
		assert.InDelta(t, 1.0, meas.Gain, 1e-3)
	}
}

func TestMeter_Level(t *testing.T) {
	m, err := New(2048, 2048) // 1 Hz bins
	require.NoError(t, err)
	lvl, err := m.Level(testutil.Sine(2048, 64, 2048, 0.3, 17), 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, lvl, 1e-9)
	assert.InDelta(t, 64.0, m.BinFrequency(64.2), 0)
	assert.Equal(t, 2048, m.Size())
}
