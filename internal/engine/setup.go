package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-phase-sync/internal/controller"
	"github.com/tphakala/go-phase-sync/internal/filter"
	"github.com/tphakala/go-phase-sync/internal/kick"
	"github.com/tphakala/go-phase-sync/internal/mathutil"
)

// Errors returned by the engine.
var (
	ErrInvalidSetup  = errors.New("engine: invalid setup")
	ErrInvalidParams = errors.New("engine: invalid parameters")
	ErrBlockSize     = errors.New("engine: block length mismatch")
	ErrTrackCount    = errors.New("engine: track count mismatch")
)

// Setup holds the structural settings fixed at construction. Every buffer
// is sized from these.
type Setup struct {
	SampleRate    float64
	LookaheadMs   float64
	MaxBassTracks int
	MaxBlockSize  int
	HistorySize   int // Kick intervals kept for prediction
}

// DefaultSetup returns the default setup at sampleRate.
func DefaultSetup(sampleRate float64) Setup {
	return Setup{
		SampleRate:    sampleRate,
		LookaheadMs:   DefaultLookahead,
		MaxBassTracks: DefaultMaxTracks,
		MaxBlockSize:  DefaultBlockSize,
		HistorySize:   controller.DefaultHistorySize,
	}
}

// Validate checks the setup.
func (s *Setup) Validate() error {
	switch {
	case s.SampleRate < MinSampleRate || s.SampleRate > MaxSampleRate:
		return fmt.Errorf("%w: sample rate %g outside [%g, %g]", ErrInvalidSetup, s.SampleRate, MinSampleRate, MaxSampleRate)
	case s.LookaheadMs < MinLookaheadMs || s.LookaheadMs > MaxLookaheadMs:
		return fmt.Errorf("%w: lookahead %g ms outside [%g, %g]", ErrInvalidSetup, s.LookaheadMs, MinLookaheadMs, MaxLookaheadMs)
	case s.MaxBassTracks < MinTracks || s.MaxBassTracks > MaxTracks:
		return fmt.Errorf("%w: max tracks %d outside [%d, %d]", ErrInvalidSetup, s.MaxBassTracks, MinTracks, MaxTracks)
	case s.MaxBlockSize < MinBlockSize || s.MaxBlockSize > MaxBlockSizeCap:
		return fmt.Errorf("%w: max block size %d outside [%d, %d]", ErrInvalidSetup, s.MaxBlockSize, MinBlockSize, MaxBlockSizeCap)
	case s.HistorySize < controller.MinHistorySize || s.HistorySize > controller.MaxHistorySize:
		return fmt.Errorf("%w: history size %d outside [%d, %d]", ErrInvalidSetup, s.HistorySize, controller.MinHistorySize, controller.MaxHistorySize)
	}
	return nil
}

// LookaheadSamples returns the lookahead, which is also the latency.
func (s *Setup) LookaheadSamples() int {
	return mathutil.MsToSamples(s.LookaheadMs, s.SampleRate)
}

// maxWindowSamples is the largest bass window the setup can serve: the
// window may never exceed the lookahead.
func (s *Setup) maxWindowSamples() int {
	return mathutil.MsToSamples(math.Min(MaxBassWindowMs, s.LookaheadMs), s.SampleRate)
}

// bufferCapacity holds the output delay and a full analysis snapshot.
func (s *Setup) bufferCapacity() int {
	return max(s.LookaheadSamples()+1, 2*s.maxWindowSamples())
}

// pendingCapacity bounds the kicks in flight: each waits lookahead samples
// and kicks are at least minKickIntervalFloorMs apart.
func (s *Setup) pendingCapacity() int {
	floor := mathutil.MsToSamples(minKickIntervalFloorMs, s.SampleRate)
	return int(math.Ceil(float64(s.LookaheadSamples())/float64(floor))) + pendingSlack
}

// Params holds the settings that may change while audio runs. Fractions are
// in [0, 1].
type Params struct {
	KickThresholdDB     float64
	KickAttackMs        float64
	KickReleaseMs       float64
	MinKickIntervalMs   float64
	CenterHz            float64
	PhaseAmount         float64
	SpreadOctaves       float64
	Mode                controller.Mode
	TransitionThreshold float64
	DryWet              float64
	BassWindowMs        float64
	NumTracks           int
	HysteresisDegrees   float64
	StageSpanDegrees    float64
	TimeoutIntervals    int
}

// DefaultParams returns the default parameters.
func DefaultParams() Params {
	return Params{
		KickThresholdDB:     kick.DefaultThresholdDB,
		KickAttackMs:        kick.DefaultAttackMs,
		KickReleaseMs:       kick.DefaultReleaseMs,
		MinKickIntervalMs:   kick.DefaultMinIntervalMs,
		CenterHz:            DefaultCenterHz,
		PhaseAmount:         1,
		SpreadOctaves:       filter.DefaultSpread,
		Mode:                controller.LinearDrift,
		TransitionThreshold: controller.DefaultTransitionThreshold,
		DryWet:              1,
		BassWindowMs:        DefaultBassWindowMs,
		NumTracks:           1,
		HysteresisDegrees:   filter.DefaultHysteresis,
		StageSpanDegrees:    filter.DefaultStageSpan,
		TimeoutIntervals:    controller.DefaultTimeoutIntervals,
	}
}

// Validate checks the parameters against a setup. Component-level ranges
// are checked by the component configs built from them.
func (p *Params) Validate(s *Setup) error {
	switch {
	case p.CenterHz < MinCenterHz || p.CenterHz > MaxCenterHz:
		return fmt.Errorf("%w: center %g Hz outside [%g, %g]", ErrInvalidParams, p.CenterHz, MinCenterHz, MaxCenterHz)
	case p.PhaseAmount < 0 || p.PhaseAmount > 1:
		return fmt.Errorf("%w: phase amount %g outside [0, 1]", ErrInvalidParams, p.PhaseAmount)
	case p.DryWet < 0 || p.DryWet > 1:
		return fmt.Errorf("%w: dry/wet %g outside [0, 1]", ErrInvalidParams, p.DryWet)
	case p.BassWindowMs < MinBassWindowMs || p.BassWindowMs > MaxBassWindowMs:
		return fmt.Errorf("%w: bass window %g ms outside [%g, %g]", ErrInvalidParams, p.BassWindowMs, MinBassWindowMs, MaxBassWindowMs)
	case p.BassWindowMs > s.LookaheadMs:
		return fmt.Errorf("%w: bass window %g ms exceeds lookahead %g ms", ErrInvalidParams, p.BassWindowMs, s.LookaheadMs)
	case p.NumTracks < 1 || p.NumTracks > s.MaxBassTracks:
		return fmt.Errorf("%w: %d tracks outside [1, %d]", ErrInvalidParams, p.NumTracks, s.MaxBassTracks)
	}

	kc := p.kickConfig(s)
	if err := kc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	fc := p.filterConfig(s)
	if err := fc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	cc := p.controllerConfig(s)
	if err := cc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

func (p *Params) kickConfig(s *Setup) kick.Config {
	return kick.Config{
		ThresholdDB:   p.KickThresholdDB,
		AttackMs:      p.KickAttackMs,
		ReleaseMs:     p.KickReleaseMs,
		MinIntervalMs: p.MinKickIntervalMs,
		SampleRate:    s.SampleRate,
		AdaptiveRatio: kick.DefaultAdaptiveRatio,
		PeakHistory:   kick.DefaultPeakHistory,
	}
}

func (p *Params) filterConfig(s *Setup) filter.Config {
	return filter.Config{
		SampleRate:    s.SampleRate,
		CenterHz:      p.CenterHz,
		SpreadOctaves: p.SpreadOctaves,
		StageSpan:     p.StageSpanDegrees,
		Hysteresis:    p.HysteresisDegrees,
	}
}

func (p *Params) controllerConfig(s *Setup) controller.Config {
	return controller.Config{
		SampleRate:          s.SampleRate,
		CenterHz:            p.CenterHz,
		Mode:                p.Mode,
		TransitionThreshold: p.TransitionThreshold,
		TimeoutIntervals:    p.TimeoutIntervals,
		HistorySize:         s.HistorySize,
	}
}

func (p *Params) windowSamples(s *Setup) int {
	return mathutil.MsToSamples(p.BassWindowMs, s.SampleRate)
}
