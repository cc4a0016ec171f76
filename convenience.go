package phasesync

import (
	"fmt"

	"github.com/tphakala/go-phase-sync/internal/simdops"
)

const stereoChannels = 2

// AlignStereo aligns one stereo bass track to a kick sidechain in a single
// call. The output has the input's length: the engine latency is flushed
// with silence and trimmed from the front. config may be nil for the
// defaults at 48 kHz; NumBassTracks is ignored.
func AlignStereo(sidechain, left, right []float64, config *Config) (leftOut, rightOut []float64, err error) {
	out, err := AlignTracks(sidechain, []StereoBuffer{{Left: left, Right: right}}, config)
	if err != nil {
		return nil, nil, err
	}
	return out[0].Left, out[0].Right, nil
}

// AlignTracks aligns several stereo bass tracks to one kick sidechain in a
// single call, with latency compensation as in AlignStereo. NumBassTracks is
// taken from len(tracks); MaxBassTracks is raised to fit if needed.
func AlignTracks(sidechain []float64, tracks []StereoBuffer, config *Config) ([]StereoBuffer, error) {
	cfg := DefaultConfig(RateDefault)
	if config != nil {
		cfg = *config
	}
	cfg.NumBassTracks = len(tracks)
	cfg.MaxBassTracks = max(cfg.MaxBassTracks, len(tracks))

	n := len(sidechain)
	for i, tr := range tracks {
		if len(tr.Left) != n || len(tr.Right) != n {
			return nil, fmt.Errorf("%w: track %d has %d/%d samples, sidechain has %d",
				ErrBlockSize, i, len(tr.Left), len(tr.Right), n)
		}
	}

	e, err := New(&cfg)
	if err != nil {
		return nil, err
	}

	latency := e.Latency()
	total := n + latency
	sc := padded(sidechain, total)
	in := make([]StereoBuffer, len(tracks))
	out := make([]StereoBuffer, len(tracks))
	for i, tr := range tracks {
		in[i] = StereoBuffer{Left: padded(tr.Left, total), Right: padded(tr.Right, total)}
		out[i] = StereoBuffer{Left: make([]float64, total), Right: make([]float64, total)}
	}

	if err := e.Process(sc, in, out); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].Left = out[i].Left[latency:]
		out[i].Right = out[i].Right[latency:]
	}
	return out, nil
}

// padded copies x into a zeroed slice of length n.
func padded(x []float64, n int) []float64 {
	p := make([]float64, n)
	copy(p, x)
	return p
}

// InterleaveToStereo converts two mono channels to interleaved stereo.
// Output format: [L0, R0, L1, R1, L2, R2, ...]
func InterleaveToStereo(left, right []float64) []float64 {
	minLen := min(len(left), len(right))
	result := make([]float64, minLen*stereoChannels)
	simdops.Float64Ops().Interleave2(result, left[:minLen], right[:minLen])
	return result
}

// DeinterleaveFromStereo converts interleaved stereo to two mono channels.
// Input format: [L0, R0, L1, R1, L2, R2, ...]; a trailing odd sample is
// ignored.
func DeinterleaveFromStereo(interleaved []float64) (left, right []float64) {
	frames := len(interleaved) / stereoChannels
	left = make([]float64, frames)
	right = make([]float64, frames)
	simdops.Float64Ops().Deinterleave2(left, right, interleaved)
	return left, right
}
