package phasesync

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-phase-sync/internal/controller"
	"github.com/tphakala/go-phase-sync/internal/engine"
	"github.com/tphakala/go-phase-sync/internal/filter"
	"github.com/tphakala/go-phase-sync/internal/kick"
)

// Mode selects how the applied phase moves toward a new target between kicks.
type Mode = controller.Mode

const (
	// Immediate jumps to the target on the sample the kick is heard.
	Immediate = controller.Immediate

	// LinearDrift moves at a constant rate so the target is reached exactly
	// when the next kick is predicted.
	LinearDrift = controller.LinearDrift

	// Exponential starts slowly and accelerates toward the next kick.
	Exponential = controller.Exponential

	// LastMoment holds the current phase for most of the interval and
	// moves only in its final part.
	LastMoment = controller.LastMoment
)

// State is the controller state reported in telemetry.
type State = controller.State

// Controller states.
const (
	StateIdle          = controller.Idle
	StateArmed         = controller.Armed
	StateTransitioning = controller.Transitioning
	StateAligned       = controller.Aligned
)

// ParseMode accepts the mode names printed by Mode.String and a few aliases.
func ParseMode(s string) (Mode, error) {
	return controller.ParseMode(s)
}

// Common errors returned by the engine.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid phase sync configuration")

	// ErrBlockSize indicates mismatched buffer lengths in a Process call.
	ErrBlockSize = engine.ErrBlockSize

	// ErrTrackCount indicates the number of buffers passed to Process does
	// not match NumBassTracks.
	ErrTrackCount = engine.ErrTrackCount

	// ErrStructuralChange indicates Update was asked to change a field that
	// is fixed at construction.
	ErrStructuralChange = errors.New("structural setting cannot change after construction")
)

// ConfigError reports the first invalid field of a Config.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s = %v: %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidConfig) hold.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Config holds the engine configuration. The first group of fields is fixed
// when the engine is built; the rest may change through Engine.Update.
type Config struct {
	// SampleRate of all inputs in Hz.
	SampleRate float64

	// LookaheadMs is how far the engine looks ahead of the audio it outputs.
	// It is also the added latency.
	LookaheadMs float64

	// MaxBassTracks is the number of tracks allocated up front.
	MaxBassTracks int

	// MaxBlockSize bounds the internal work chunk. Longer blocks are
	// accepted and split.
	MaxBlockSize int

	// IntervalHistory is the number of kick intervals used to predict the
	// next kick.
	IntervalHistory int

	// KickThresholdDB is the fixed floor of the kick detector threshold.
	KickThresholdDB float64

	// KickAttackMs and KickReleaseMs shape the kick envelope follower.
	KickAttackMs  float64
	KickReleaseMs float64

	// MinKickIntervalMs is the shortest accepted gap between two kicks.
	MinKickIntervalMs float64

	// CenterFrequencyHz is where the rotator realizes its phase exactly.
	CenterFrequencyHz float64

	// PhaseAmountPercent scales the applied correction, 0 bypasses it.
	PhaseAmountPercent float64

	// FrequencySpreadOctaves is the bandwidth of each all-pass stage.
	FrequencySpreadOctaves float64

	// AdaptationMode selects the transition shape between kicks.
	AdaptationMode Mode

	// TransitionThresholdPercent is how far into the interval LastMoment
	// waits before moving.
	TransitionThresholdPercent float64

	// DryWetPercent mixes the delayed dry signal with the rotated one.
	DryWetPercent float64

	// BassWindowMs is the RMS window of the bass analyzer. It may not
	// exceed LookaheadMs.
	BassWindowMs float64

	// NumBassTracks is the number of tracks processed per call.
	NumBassTracks int

	// PhaseHysteresisDegrees suppresses filter redesigns for smaller changes.
	PhaseHysteresisDegrees float64

	// StageSpanDegrees is the most lag a single all-pass stage provides.
	StageSpanDegrees float64

	// TimeoutIntervals is how many predicted intervals without a kick send
	// the controller idle.
	TimeoutIntervals int
}

// DefaultConfig returns the default configuration at sampleRate.
func DefaultConfig(sampleRate float64) Config {
	return Config{
		SampleRate:                 sampleRate,
		LookaheadMs:                engine.DefaultLookahead,
		MaxBassTracks:              engine.DefaultMaxTracks,
		MaxBlockSize:               engine.DefaultBlockSize,
		IntervalHistory:            controller.DefaultHistorySize,
		KickThresholdDB:            kick.DefaultThresholdDB,
		KickAttackMs:               kick.DefaultAttackMs,
		KickReleaseMs:              kick.DefaultReleaseMs,
		MinKickIntervalMs:          kick.DefaultMinIntervalMs,
		CenterFrequencyHz:          engine.DefaultCenterHz,
		PhaseAmountPercent:         fullPercent,
		FrequencySpreadOctaves:     filter.DefaultSpread,
		AdaptationMode:             LinearDrift,
		TransitionThresholdPercent: controller.DefaultTransitionThreshold * fullPercent,
		DryWetPercent:              fullPercent,
		BassWindowMs:               engine.DefaultBassWindowMs,
		NumBassTracks:              1,
		PhaseHysteresisDegrees:     filter.DefaultHysteresis,
		StageSpanDegrees:           filter.DefaultStageSpan,
		TimeoutIntervals:           controller.DefaultTimeoutIntervals,
	}
}

// Validate checks every field and returns a *ConfigError for the first one
// out of range.
func (c *Config) Validate() error {
	ranges := []struct {
		field  string
		value  float64
		lo, hi float64
	}{
		{"SampleRate", c.SampleRate, engine.MinSampleRate, engine.MaxSampleRate},
		{"LookaheadMs", c.LookaheadMs, engine.MinLookaheadMs, engine.MaxLookaheadMs},
		{"MaxBassTracks", float64(c.MaxBassTracks), engine.MinTracks, engine.MaxTracks},
		{"MaxBlockSize", float64(c.MaxBlockSize), engine.MinBlockSize, engine.MaxBlockSizeCap},
		{"IntervalHistory", float64(c.IntervalHistory), controller.MinHistorySize, controller.MaxHistorySize},
		{"KickThresholdDB", c.KickThresholdDB, kick.MinThresholdDB, kick.MaxThresholdDB},
		{"KickAttackMs", c.KickAttackMs, kick.MinAttackMs, kick.MaxAttackMs},
		{"KickReleaseMs", c.KickReleaseMs, kick.MinReleaseMs, kick.MaxReleaseMs},
		{"MinKickIntervalMs", c.MinKickIntervalMs, kick.MinMinIntervalMs, kick.MaxMinIntervalMs},
		{"CenterFrequencyHz", c.CenterFrequencyHz, engine.MinCenterHz, engine.MaxCenterHz},
		{"PhaseAmountPercent", c.PhaseAmountPercent, 0, fullPercent},
		{"FrequencySpreadOctaves", c.FrequencySpreadOctaves, filter.MinSpread, filter.MaxSpread},
		{"TransitionThresholdPercent", c.TransitionThresholdPercent,
			controller.MinTransitionThreshold * fullPercent, controller.MaxTransitionThreshold * fullPercent},
		{"DryWetPercent", c.DryWetPercent, 0, fullPercent},
		{"BassWindowMs", c.BassWindowMs, engine.MinBassWindowMs, engine.MaxBassWindowMs},
		{"NumBassTracks", float64(c.NumBassTracks), engine.MinTracks, engine.MaxTracks},
		{"PhaseHysteresisDegrees", c.PhaseHysteresisDegrees, 0, filter.MaxHysteresis},
		{"StageSpanDegrees", c.StageSpanDegrees, filter.MinStageSpan, filter.MaxStageSpan},
		{"TimeoutIntervals", float64(c.TimeoutIntervals), controller.MinTimeoutIntervals, controller.MaxTimeoutIntervals},
	}
	for _, r := range ranges {
		// Negated so NaN fails.
		if !(r.value >= r.lo && r.value <= r.hi) {
			return &ConfigError{Field: r.field, Value: r.value, Reason: fmt.Sprintf("must be in [%g, %g]", r.lo, r.hi)}
		}
	}

	if !c.AdaptationMode.Valid() {
		return &ConfigError{Field: "AdaptationMode", Value: c.AdaptationMode, Reason: "unknown mode"}
	}
	if c.BassWindowMs > c.LookaheadMs {
		return &ConfigError{Field: "BassWindowMs", Value: c.BassWindowMs, Reason: "must not exceed LookaheadMs"}
	}
	if c.NumBassTracks > c.MaxBassTracks {
		return &ConfigError{Field: "NumBassTracks", Value: c.NumBassTracks, Reason: "must not exceed MaxBassTracks"}
	}
	return nil
}

// structuralChange names the first fixed field that differs from other, or
// returns "".
func (c *Config) structuralChange(other *Config) string {
	switch {
	case c.SampleRate != other.SampleRate:
		return "SampleRate"
	case c.LookaheadMs != other.LookaheadMs:
		return "LookaheadMs"
	case c.MaxBassTracks != other.MaxBassTracks:
		return "MaxBassTracks"
	case c.MaxBlockSize != other.MaxBlockSize:
		return "MaxBlockSize"
	case c.IntervalHistory != other.IntervalHistory:
		return "IntervalHistory"
	}
	return ""
}

func (c *Config) setup() engine.Setup {
	return engine.Setup{
		SampleRate:    c.SampleRate,
		LookaheadMs:   c.LookaheadMs,
		MaxBassTracks: c.MaxBassTracks,
		MaxBlockSize:  c.MaxBlockSize,
		HistorySize:   c.IntervalHistory,
	}
}

func (c *Config) params() engine.Params {
	return engine.Params{
		KickThresholdDB:     c.KickThresholdDB,
		KickAttackMs:        c.KickAttackMs,
		KickReleaseMs:       c.KickReleaseMs,
		MinKickIntervalMs:   c.MinKickIntervalMs,
		CenterHz:            c.CenterFrequencyHz,
		PhaseAmount:         c.PhaseAmountPercent / fullPercent,
		SpreadOctaves:       c.FrequencySpreadOctaves,
		Mode:                c.AdaptationMode,
		TransitionThreshold: c.TransitionThresholdPercent / fullPercent,
		DryWet:              c.DryWetPercent / fullPercent,
		BassWindowMs:        c.BassWindowMs,
		NumTracks:           c.NumBassTracks,
		HysteresisDegrees:   c.PhaseHysteresisDegrees,
		StageSpanDegrees:    c.StageSpanDegrees,
		TimeoutIntervals:    c.TimeoutIntervals,
	}
}
