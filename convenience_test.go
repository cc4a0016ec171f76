package phasesync

import (
	"errors"
	"testing"

	"github.com/tphakala/go-phase-sync/internal/testutil"
)

// TestAlignStereo_CompensatesLatency verifies that with the correction
// bypassed the output lines up sample for sample with the input.
func TestAlignStereo_CompensatesLatency(t *testing.T) {
	const numSamples = 30000
	onsets := testutil.Onsets(2400, 12000, 3)
	sc := testutil.KickTrain(numSamples, onsets, 60, RateDAT, 0.9, 0.05, 6000)
	left := testutil.Sine(numSamples, 70, RateDAT, 0.5, 0)
	right := testutil.Sine(numSamples, 70, RateDAT, 0.5, 90)

	for _, name := range []string{"PhaseAmount", "DryWet"} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig(RateDAT)
			if name == "PhaseAmount" {
				cfg.PhaseAmountPercent = 0
			} else {
				cfg.DryWetPercent = 0
			}

			leftOut, rightOut, err := AlignStereo(sc, left, right, &cfg)
			if err != nil {
				t.Fatalf("AlignStereo failed: %v", err)
			}
			if len(leftOut) != numSamples || len(rightOut) != numSamples {
				t.Fatalf("output lengths %d/%d, want %d", len(leftOut), len(rightOut), numSamples)
			}
			for i := range numSamples {
				if leftOut[i] != left[i] || rightOut[i] != right[i] {
					t.Fatalf("sample %d: got (%v, %v), want (%v, %v)", i, leftOut[i], rightOut[i], left[i], right[i])
				}
			}
		})
	}
}

// TestAlignStereo_NilConfig verifies the 48 kHz defaults are used.
func TestAlignStereo_NilConfig(t *testing.T) {
	x := testutil.Sine(5000, 100, RateDAT, 0.5, 0)
	leftOut, _, err := AlignStereo(make([]float64, 5000), x, x, nil)
	if err != nil {
		t.Fatalf("AlignStereo failed: %v", err)
	}
	// No kicks: the rotator stays at identity.
	for i := range x {
		if leftOut[i] != x[i] {
			t.Fatalf("sample %d: got %v, want %v", i, leftOut[i], x[i])
		}
	}
}

// TestAlignStereo_ChangesPhaseAfterKicks verifies that a delayed bass is
// actually rotated once kicks are detected.
func TestAlignStereo_ChangesPhaseAfterKicks(t *testing.T) {
	const numSamples = 120000
	onsets := testutil.Onsets(2400, 24000, 5)
	sc := testutil.KickTrain(numSamples, onsets, 60, RateDAT, 0.9, 0.05, 12000)
	bass := testutil.BassBursts(numSamples, onsets, 260, 80, RateDAT, 0.5, 1200)

	leftOut, _, err := AlignStereo(sc, bass, bass, nil)
	if err != nil {
		t.Fatalf("AlignStereo failed: %v", err)
	}
	testutil.AssertNoNaNOrInf(t, leftOut)

	var diff float64
	for i := onsets[3]; i < onsets[4]; i++ {
		diff = max(diff, abs(leftOut[i]-bass[i]))
	}
	if diff < 0.01 {
		t.Errorf("bass after the fourth kick unchanged (max diff %v)", diff)
	}
}

// TestAlignStereo_LengthMismatch verifies buffers are checked up front.
func TestAlignStereo_LengthMismatch(t *testing.T) {
	_, _, err := AlignStereo(make([]float64, 100), make([]float64, 100), make([]float64, 99), nil)
	if !errors.Is(err, ErrBlockSize) {
		t.Fatalf("got %v, want ErrBlockSize", err)
	}
}

// TestAlignTracks_TooManyTracks verifies the track limit surfaces as a
// config error.
func TestAlignTracks_TooManyTracks(t *testing.T) {
	tracks := make([]StereoBuffer, 17)
	for i := range tracks {
		tracks[i] = StereoBuffer{Left: make([]float64, 10), Right: make([]float64, 10)}
	}
	_, err := AlignTracks(make([]float64, 10), tracks, nil)
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want *ConfigError", err)
	}
	if ce.Field != "MaxBassTracks" {
		t.Errorf("field = %q, want MaxBassTracks", ce.Field)
	}
}

// TestInterleaveDeinterleave verifies interleave/deinterleave roundtrip.
func TestInterleaveDeinterleave(t *testing.T) {
	left := []float64{1, 2, 3, 4, 5}
	right := []float64{-1, -2, -3, -4, -5, -6}

	interleaved := InterleaveToStereo(left, right)
	want := []float64{1, -1, 2, -2, 3, -3, 4, -4, 5, -5}
	if len(interleaved) != len(want) {
		t.Fatalf("interleaved length %d, want %d", len(interleaved), len(want))
	}
	for i := range want {
		if interleaved[i] != want[i] {
			t.Errorf("interleaved[%d] = %v, want %v", i, interleaved[i], want[i])
		}
	}

	l, r := DeinterleaveFromStereo(append(interleaved, 99))
	if len(l) != len(left) || len(r) != len(left) {
		t.Fatalf("deinterleaved lengths %d/%d, want %d", len(l), len(r), len(left))
	}
	for i := range left {
		if l[i] != left[i] || r[i] != right[i] {
			t.Errorf("sample %d: got (%v, %v)", i, l[i], r[i])
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
