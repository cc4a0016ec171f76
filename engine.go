package phasesync

import (
	"fmt"
	"sync/atomic"

	"github.com/tphakala/simd/cpu"

	"github.com/tphakala/go-phase-sync/internal/engine"
	"github.com/tphakala/go-phase-sync/internal/filter"
)

// StereoBuffer is one block of a stereo bass track.
type StereoBuffer = engine.Stereo

// Snapshot is a point-in-time copy of the engine's display state.
type Snapshot = engine.Telemetry

// TrackSnapshot is the display state of one bass track.
type TrackSnapshot = engine.TrackTelemetry

// Engine aligns bass tracks to a kick sidechain. Process and Reset must be
// called from a single goroutine; Update, Telemetry and the accessors may be
// called from any goroutine.
type Engine struct {
	core   *engine.Core
	config atomic.Pointer[Config]
}

// New creates an engine. All memory the engine needs is allocated here.
func New(config *Config) (*Engine, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	core, err := engine.New(config.setup(), config.params())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	e := &Engine{core: core}
	c := *config
	e.config.Store(&c)
	return e, nil
}

// Process aligns one block. Every buffer must have the length of sidechain
// and exactly NumBassTracks tracks must be passed in and out. out may alias
// in. Process does not allocate.
func (e *Engine) Process(sidechain []float64, in, out []StereoBuffer) error {
	return e.core.ProcessBlock(sidechain, in, out)
}

// Update applies a new configuration at the start of the next Process call.
// Only non-structural fields may change. In-flight phase transitions
// continue under the new settings.
func (e *Engine) Update(config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if field := e.config.Load().structuralChange(config); field != "" {
		return fmt.Errorf("%w: %s", ErrStructuralChange, field)
	}
	if err := e.core.Publish(config.params()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c := *config
	e.config.Store(&c)
	return nil
}

// Config returns the configuration last accepted by New or Update.
func (e *Engine) Config() Config {
	return *e.config.Load()
}

// Reset clears all audio state. The configuration is kept.
func (e *Engine) Reset() {
	e.core.Reset()
}

// Latency returns the delay the engine adds, in samples.
func (e *Engine) Latency() int {
	return e.core.Latency()
}

// Telemetry returns the state published at the end of the latest Process call.
func (e *Engine) Telemetry() Snapshot {
	return e.core.Telemetry()
}

// Info returns information about the engine.
func (e *Engine) Info() Info {
	cfg := e.config.Load()
	info := Info{
		Algorithm:    algorithmName,
		MaxStages:    filter.MaxStages,
		Latency:      e.core.Latency(),
		LatencyMs:    cfg.LookaheadMs,
		MaxTracks:    cfg.MaxBassTracks,
		ActiveTracks: len(e.core.Telemetry().Tracks),
		MemoryUsage:  e.core.MemoryBytes(),
	}
	if simd := cpu.Info(); simd != "" {
		info.SIMDEnabled = true
		info.SIMDType = simd
	}
	return info
}

// Info describes an engine instance.
type Info struct {
	// Algorithm describes the alignment method.
	Algorithm string

	// MaxStages is the most all-pass stages a track's rotator can use.
	MaxStages int

	// Latency is the processing latency in samples.
	Latency int

	// LatencyMs is the processing latency in milliseconds.
	LatencyMs float64

	// MaxTracks is the number of tracks allocated.
	MaxTracks int

	// ActiveTracks is the number of tracks processed per call.
	ActiveTracks int

	// MemoryUsage is the approximate sample storage in bytes.
	MemoryUsage int64

	// SIMDEnabled indicates if SIMD optimizations are active.
	SIMDEnabled bool

	// SIMDType describes the SIMD instruction set in use.
	SIMDType string
}
