package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Setup)
		ok     bool
	}{
		{"Defaults", func(*Setup) {}, true},
		{"Rate too low", func(s *Setup) { s.SampleRate = 4000 }, false},
		{"Rate too high", func(s *Setup) { s.SampleRate = 400000 }, false},
		{"Lookahead too short", func(s *Setup) { s.LookaheadMs = 5 }, false},
		{"Lookahead too long", func(s *Setup) { s.LookaheadMs = 600 }, false},
		{"No tracks", func(s *Setup) { s.MaxBassTracks = 0 }, false},
		{"Too many tracks", func(s *Setup) { s.MaxBassTracks = 17 }, false},
		{"Zero block", func(s *Setup) { s.MaxBlockSize = 0 }, false},
		{"History too short", func(s *Setup) { s.HistorySize = 1 }, false},
		{"Edges", func(s *Setup) {
			s.SampleRate, s.LookaheadMs, s.MaxBassTracks, s.MaxBlockSize = 384000, 500, 16, 65536
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSetup(48000)
			tt.mutate(&s)
			if tt.ok {
				require.NoError(t, s.Validate())
			} else {
				require.ErrorIs(t, s.Validate(), ErrInvalidSetup)
			}
		})
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"Center too low", func(p *Params) { p.CenterHz = 30 }},
		{"Center too high", func(p *Params) { p.CenterHz = 300 }},
		{"Amount above one", func(p *Params) { p.PhaseAmount = 1.01 }},
		{"Negative dry/wet", func(p *Params) { p.DryWet = -0.1 }},
		{"Window too small", func(p *Params) { p.BassWindowMs = 5 }},
		{"Window beyond lookahead", func(p *Params) { p.BassWindowMs = 60 }},
		{"No tracks", func(p *Params) { p.NumTracks = 0 }},
		{"More tracks than setup", func(p *Params) { p.NumTracks = 3 }},
		{"Kick threshold", func(p *Params) { p.KickThresholdDB = -3 }},
		{"Spread", func(p *Params) { p.SpreadOctaves = 4 }},
		{"Span", func(p *Params) { p.StageSpanDegrees = 200 }},
		{"Transition threshold", func(p *Params) { p.TransitionThreshold = 0.95 }},
		{"Timeout", func(p *Params) { p.TimeoutIntervals = 20 }},
	}

	s := DefaultSetup(48000)
	s.LookaheadMs = 50
	s.MaxBassTracks = 2
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			require.ErrorIs(t, p.Validate(&s), ErrInvalidParams)
		})
	}

	p := DefaultParams()
	require.NoError(t, p.Validate(&s))
}

func TestSetup_Sizing(t *testing.T) {
	s := DefaultSetup(48000)
	assert.Equal(t, 4800, s.LookaheadSamples())
	assert.Equal(t, 4800, s.maxWindowSamples())
	assert.Equal(t, 9600, s.bufferCapacity())
	assert.Equal(t, 2+2, s.pendingCapacity())

	s.LookaheadMs = 500
	assert.Equal(t, 4800, s.maxWindowSamples())
	assert.Equal(t, 24001, s.bufferCapacity())
	assert.Equal(t, 10+2, s.pendingCapacity())
}
