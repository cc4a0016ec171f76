package phasesync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-phase-sync/internal/testutil"
)

func kickScene(numSamples int) (sc []float64, onsets []int) {
	onsets = testutil.Onsets(2400, 24000, numSamples/24000)
	return testutil.KickTrain(numSamples, onsets, 60, RateDAT, 0.9, 0.05, 12000), onsets
}

// Tracks share the kick detector but nothing else: a track's output does
// not depend on which other tracks run beside it.
func TestAlignTracks_TrackIndependence(t *testing.T) {
	const numSamples = 96000
	sc, onsets := kickScene(numSamples)
	a := testutil.BassBursts(numSamples, onsets, 260, 80, RateDAT, 0.5, 1200)
	b := testutil.BassBursts(numSamples, onsets, -200, 55, RateDAT, 0.8, 2400)

	alone, err := AlignTracks(sc, []StereoBuffer{{Left: a, Right: a}}, nil)
	require.NoError(t, err)
	both, err := AlignTracks(sc, []StereoBuffer{{Left: a, Right: a}, {Left: b, Right: b}}, nil)
	require.NoError(t, err)
	require.Len(t, both, 2)

	assert.Equal(t, alone[0].Left, both[0].Left)
	assert.Equal(t, alone[0].Right, both[0].Right)
	assert.NotEqual(t, both[0].Left, both[1].Left)
}

// Identical tracks produce identical output.
func TestAlignTracks_IdenticalTracks(t *testing.T) {
	const numSamples = 72000
	sc, onsets := kickScene(numSamples)
	bass := testutil.BassBursts(numSamples, onsets, 150, 90, RateDAT, 0.5, 1500)

	tracks := make([]StereoBuffer, 4)
	for i := range tracks {
		tracks[i] = StereoBuffer{Left: bass, Right: bass}
	}
	out, err := AlignTracks(sc, tracks, nil)
	require.NoError(t, err)
	for i := 1; i < len(out); i++ {
		assert.Equal(t, out[0].Left, out[i].Left, "track %d", i)
	}
}

// Streaming in uneven blocks gives the same result as one call.
func TestEngine_BlockSizeIndependence(t *testing.T) {
	const numSamples = 72000
	sc, onsets := kickScene(numSamples)
	bass := testutil.BassBursts(numSamples, onsets, 260, 80, RateDAT, 0.5, 1200)

	whole := newTestEngine(t, nil)
	wantL := make([]float64, numSamples)
	wantR := make([]float64, numSamples)
	require.NoError(t, whole.Process(sc,
		[]StereoBuffer{{Left: bass, Right: bass}},
		[]StereoBuffer{{Left: wantL, Right: wantR}}))

	streamed := newTestEngine(t, nil)
	gotL := make([]float64, numSamples)
	gotR := make([]float64, numSamples)
	sizes := []int{1, 7, 64, 333, 4096, 5000}
	for start, k := 0, 0; start < numSamples; k++ {
		end := min(start+sizes[k%len(sizes)], numSamples)
		require.NoError(t, streamed.Process(sc[start:end],
			[]StereoBuffer{{Left: bass[start:end], Right: bass[start:end]}},
			[]StereoBuffer{{Left: gotL[start:end], Right: gotR[start:end]}}))
		start = end
	}

	assert.Equal(t, wantL, gotL)
	assert.Equal(t, wantR, gotR)
	assert.Equal(t, whole.Telemetry().KickCount, streamed.Telemetry().KickCount)
}
