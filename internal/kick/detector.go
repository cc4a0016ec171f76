// Package kick detects kick drum onsets in a sidechain signal with a one-pole
// envelope follower and an adaptive threshold.
package kick

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-phase-sync/internal/mathutil"
)

// ErrInvalidConfig is returned for out-of-range detector parameters.
var ErrInvalidConfig = errors.New("kick: invalid configuration")

// Event is a detected kick onset.
type Event struct {
	SampleIndex int64   // Absolute input sample index of the onset
	Amplitude   float64 // Envelope level at the onset (linear)
}

// Config holds the detector parameters.
type Config struct {
	ThresholdDB   float64
	AttackMs      float64
	ReleaseMs     float64
	MinIntervalMs float64
	SampleRate    float64

	// AdaptiveRatio scales the median of recent kick peaks into a threshold.
	// Zero selects DefaultAdaptiveRatio.
	AdaptiveRatio float64

	// PeakHistory is the number of kick peaks kept. Zero selects
	// DefaultPeakHistory.
	PeakHistory int
}

// DefaultConfig returns the default detector configuration at sampleRate.
func DefaultConfig(sampleRate float64) Config {
	return Config{
		ThresholdDB:   DefaultThresholdDB,
		AttackMs:      DefaultAttackMs,
		ReleaseMs:     DefaultReleaseMs,
		MinIntervalMs: DefaultMinIntervalMs,
		SampleRate:    sampleRate,
		AdaptiveRatio: DefaultAdaptiveRatio,
		PeakHistory:   DefaultPeakHistory,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate must be positive, got %g", ErrInvalidConfig, c.SampleRate)
	case c.ThresholdDB < MinThresholdDB || c.ThresholdDB > MaxThresholdDB:
		return fmt.Errorf("%w: threshold %g dB outside [%g, %g]", ErrInvalidConfig, c.ThresholdDB, MinThresholdDB, MaxThresholdDB)
	case c.AttackMs < MinAttackMs || c.AttackMs > MaxAttackMs:
		return fmt.Errorf("%w: attack %g ms outside [%g, %g]", ErrInvalidConfig, c.AttackMs, MinAttackMs, MaxAttackMs)
	case c.ReleaseMs < MinReleaseMs || c.ReleaseMs > MaxReleaseMs:
		return fmt.Errorf("%w: release %g ms outside [%g, %g]", ErrInvalidConfig, c.ReleaseMs, MinReleaseMs, MaxReleaseMs)
	case c.MinIntervalMs < MinMinIntervalMs || c.MinIntervalMs > MaxMinIntervalMs:
		return fmt.Errorf("%w: min interval %g ms outside [%g, %g]", ErrInvalidConfig, c.MinIntervalMs, MinMinIntervalMs, MaxMinIntervalMs)
	case c.AdaptiveRatio < 0 || c.AdaptiveRatio > 1:
		return fmt.Errorf("%w: adaptive ratio %g outside [0, 1]", ErrInvalidConfig, c.AdaptiveRatio)
	case c.PeakHistory < 0 || c.PeakHistory > MaxPeakHistory:
		return fmt.Errorf("%w: peak history %d outside [0, %d]", ErrInvalidConfig, c.PeakHistory, MaxPeakHistory)
	}
	return nil
}

// Detector turns a sidechain stream into kick events.
//
// A kick fires on the rising edge of the envelope through the threshold, at
// most once per minimum interval. After each kick the envelope is followed
// until it starts to fall; that peak feeds the adaptive threshold. Detector
// is not safe for concurrent use.
type Detector struct {
	attackCoeff  float64
	releaseCoeff float64
	fixed        float64 // Fixed threshold (linear)
	ratio        float64
	minInterval  int64

	env       float64
	prevEnv   float64
	threshold float64

	lastEvent int64
	hasEvent  bool

	tracking bool
	peak     float64

	peaks   []float64 // ring of recent kick peaks
	nPeaks  int
	pos     int
	scratch []float64
}

// New creates a detector. Storage for the peak history is allocated here.
func New(cfg Config) (*Detector, error) {
	if cfg.PeakHistory == 0 {
		cfg.PeakHistory = DefaultPeakHistory
	}
	d := &Detector{
		peaks:   make([]float64, cfg.PeakHistory),
		scratch: make([]float64, cfg.PeakHistory),
	}
	if err := d.SetParams(cfg); err != nil {
		return nil, err
	}
	return d, nil
}

// SetParams applies new parameters without disturbing the envelope or the
// peak history. PeakHistory is fixed at construction and ignored here.
func (d *Detector) SetParams(cfg Config) error {
	if cfg.AdaptiveRatio == 0 {
		cfg.AdaptiveRatio = DefaultAdaptiveRatio
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	d.attackCoeff = mathutil.OnePoleCoefficient(cfg.AttackMs, cfg.SampleRate)
	d.releaseCoeff = mathutil.OnePoleCoefficient(cfg.ReleaseMs, cfg.SampleRate)
	d.fixed = mathutil.DBToLinear(cfg.ThresholdDB)
	d.ratio = cfg.AdaptiveRatio
	d.minInterval = int64(mathutil.MsToSamples(cfg.MinIntervalMs, cfg.SampleRate))
	d.updateThreshold()
	return nil
}

// Process feeds one sidechain sample at absolute index and reports whether a
// kick starts there.
func (d *Detector) Process(x float64, index int64) (Event, bool) {
	a := math.Abs(x)
	if a > d.env {
		d.env = d.attackCoeff*d.env + (1-d.attackCoeff)*a
	} else {
		d.env = d.releaseCoeff*d.env + (1-d.releaseCoeff)*a
	}
	env := d.env
	prev := d.prevEnv
	d.prevEnv = env

	if d.tracking {
		if env >= d.peak {
			d.peak = env
		} else {
			d.recordPeak(d.peak)
			d.tracking = false
		}
	}

	if !(env > d.threshold && prev <= d.threshold) {
		return Event{}, false
	}
	if d.hasEvent && index-d.lastEvent < d.minInterval {
		return Event{}, false
	}

	if d.tracking {
		d.recordPeak(d.peak)
	}
	d.lastEvent = index
	d.hasEvent = true
	d.tracking = true
	d.peak = env
	return Event{SampleIndex: index, Amplitude: env}, true
}

// ProcessBlock runs Process over xs, whose first sample has absolute index
// start, and stores detected events into dst. It returns the number of events
// stored; events beyond len(dst) are still applied to the detector state but
// not reported.
func (d *Detector) ProcessBlock(xs []float64, start int64, dst []Event) int {
	n := 0
	for i, x := range xs {
		if ev, ok := d.Process(x, start+int64(i)); ok {
			if n < len(dst) {
				dst[n] = ev
				n++
			}
		}
	}
	return n
}

// Reset clears the envelope, the peak history and the interval gate.
func (d *Detector) Reset() {
	d.env = 0
	d.prevEnv = 0
	d.lastEvent = 0
	d.hasEvent = false
	d.tracking = false
	d.peak = 0
	d.nPeaks = 0
	d.pos = 0
	clear(d.peaks)
	d.updateThreshold()
}

// Envelope returns the current envelope level (linear).
func (d *Detector) Envelope() float64 {
	return d.env
}

// Threshold returns the effective detection threshold (linear).
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// MinIntervalSamples returns the minimum spacing between events.
func (d *Detector) MinIntervalSamples() int64 {
	return d.minInterval
}

func (d *Detector) recordPeak(p float64) {
	d.peaks[d.pos] = p
	d.pos++
	if d.pos == len(d.peaks) {
		d.pos = 0
	}
	if d.nPeaks < len(d.peaks) {
		d.nPeaks++
	}
	d.updateThreshold()
}

func (d *Detector) updateThreshold() {
	d.threshold = d.fixed
	if d.nPeaks == 0 {
		return
	}
	s := d.scratch[:d.nPeaks]
	copy(s, d.peaks[:d.nPeaks])
	if adaptive := d.ratio * mathutil.SelectUpperMedian(s); adaptive > d.threshold {
		d.threshold = adaptive
	}
}
