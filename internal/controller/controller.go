// Package controller steers the rotator phase between kicks.
//
// At each kick the controller computes the phase that cancels the measured
// bass offset at the center frequency and predicts when the next kick will
// come from the median of recent intervals. Between kicks it moves the phase
// towards the target along the curve of the selected Mode, finishing as the
// predicted next kick arrives.
package controller

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-phase-sync/internal/mathutil"
)

// ErrInvalidConfig is returned for out-of-range controller parameters.
var ErrInvalidConfig = errors.New("controller: invalid configuration")

// Config holds the controller parameters.
type Config struct {
	SampleRate          float64
	CenterHz            float64
	Mode                Mode
	TransitionThreshold float64 // LastMoment hold fraction, 0.1..0.9
	TimeoutIntervals    int     // Predicted intervals without a kick before Idle
	HistorySize         int     // Fixed at construction
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig(sampleRate float64) Config {
	return Config{
		SampleRate:          sampleRate,
		CenterHz:            100,
		Mode:                LinearDrift,
		TransitionThreshold: DefaultTransitionThreshold,
		TimeoutIntervals:    DefaultTimeoutIntervals,
		HistorySize:         DefaultHistorySize,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %g", ErrInvalidConfig, c.SampleRate)
	case c.CenterHz <= 0:
		return fmt.Errorf("%w: center frequency %g", ErrInvalidConfig, c.CenterHz)
	case !c.Mode.Valid():
		return fmt.Errorf("%w: mode %v", ErrInvalidConfig, c.Mode)
	case c.TransitionThreshold < MinTransitionThreshold || c.TransitionThreshold > MaxTransitionThreshold:
		return fmt.Errorf("%w: transition threshold %g outside [%g, %g]",
			ErrInvalidConfig, c.TransitionThreshold, MinTransitionThreshold, MaxTransitionThreshold)
	case c.TimeoutIntervals < MinTimeoutIntervals || c.TimeoutIntervals > MaxTimeoutIntervals:
		return fmt.Errorf("%w: timeout %d intervals outside [%d, %d]",
			ErrInvalidConfig, c.TimeoutIntervals, MinTimeoutIntervals, MaxTimeoutIntervals)
	case c.HistorySize < MinHistorySize || c.HistorySize > MaxHistorySize:
		return fmt.Errorf("%w: history size %d outside [%d, %d]",
			ErrInvalidConfig, c.HistorySize, MinHistorySize, MaxHistorySize)
	}
	return nil
}

// PhaseState is the controller's phase bookkeeping.
type PhaseState struct {
	Current  float64 // Degrees, (-180, 180]
	Target   float64 // Degrees, (-180, 180]
	Progress int64   // Samples advanced since the last kick's transition began
}

// Controller is the per-track phase state machine. It is not safe for
// concurrent use.
type Controller struct {
	cfg     Config
	history *IntervalHistory

	state     State
	phase     PhaseState
	start     float64 // phase at the kick
	delta     float64 // shortest rotation from start to target
	predicted int64

	lastKick  int64
	hasKick   bool
	sinceKick int64
	expNorm   float64
}

// New creates an idle controller at phase 0.
func New(cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Controller{
		cfg:     cfg,
		history: NewIntervalHistory(cfg.HistorySize),
		expNorm: 1 / (math.Exp(exponentialK) - 1),
	}, nil
}

// SetParams applies new parameters. An in-flight transition keeps its start,
// target and progress; the new mode and threshold shape the rest of it.
// HistorySize is fixed at construction and ignored.
func (c *Controller) SetParams(cfg Config) error {
	cfg.HistorySize = c.cfg.HistorySize
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// CorrectionDegrees returns the phase that cancels a bass offset in samples
// at the center frequency. A late bass (positive offset) gets a positive
// rotation, which pulls its phase at the center back onto the kick.
func (c *Controller) CorrectionDegrees(offset int) float64 {
	return mathutil.DelayToPhaseDegrees(float64(offset), c.cfg.CenterHz, c.cfg.SampleRate)
}

// OnKick starts a new cycle for a kick at absolute index kick. When hasPeak
// is false the bass was silent and the target stays at the current phase.
func (c *Controller) OnKick(kick int64, offset int, hasPeak bool) {
	if c.hasKick {
		// Zero and negative intervals are dropped; the prediction holds.
		c.history.Push(kick - c.lastKick)
	}
	c.lastKick = kick
	c.hasKick = true
	c.sinceKick = 0

	c.predicted = c.history.Median()
	c.start = c.phase.Current
	if hasPeak {
		c.phase.Target = c.CorrectionDegrees(offset)
	} else {
		c.phase.Target = c.phase.Current
	}
	c.delta = mathutil.DeltaDegrees(c.start, c.phase.Target)
	c.phase.Progress = 0

	if c.predicted <= 0 {
		c.state = Armed
		return
	}
	c.state = Transitioning
}

// Advance moves the controller one sample forward and returns the phase to
// apply, in (-180, 180].
func (c *Controller) Advance() float64 {
	if c.state == Idle {
		return c.phase.Current
	}

	c.sinceKick++
	if c.state == Transitioning {
		c.phase.Progress++
		p := float64(c.phase.Progress) / float64(c.predicted)
		if c.cfg.Mode == Immediate || p >= 1 {
			c.phase.Current = c.phase.Target
			c.state = Aligned
		} else {
			c.phase.Current = mathutil.WrapDegrees(c.start + c.delta*c.curve(p))
		}
		return c.phase.Current
	}

	if c.predicted > 0 && c.sinceKick > int64(c.cfg.TimeoutIntervals)*c.predicted {
		c.state = Idle
	}
	return c.phase.Current
}

// curve maps progress p in (0, 1) to transition completion for the mode.
func (c *Controller) curve(p float64) float64 {
	switch c.cfg.Mode {
	case LinearDrift:
		return p
	case Exponential:
		return (math.Exp(exponentialK*p) - 1) * c.expNorm
	case LastMoment:
		thr := c.cfg.TransitionThreshold
		if p <= thr+progressEpsilon {
			return 0
		}
		return (p - thr) / (1 - thr)
	default:
		return 1
	}
}

// Phase returns the current phase.
func (c *Controller) Phase() float64 {
	return c.phase.Current
}

// PhaseState returns a copy of the phase bookkeeping.
func (c *Controller) PhaseState() PhaseState {
	return c.phase
}

// State returns the state machine position.
func (c *Controller) State() State {
	return c.state
}

// PredictedInterval returns the predicted kick interval in samples, or 0
// when no prediction exists.
func (c *Controller) PredictedInterval() int64 {
	return c.predicted
}

// History exposes the interval history.
func (c *Controller) History() *IntervalHistory {
	return c.history
}

// Reset returns the controller to Idle at phase 0 and forgets all intervals.
func (c *Controller) Reset() {
	c.history.Reset()
	c.state = Idle
	c.phase = PhaseState{}
	c.start = 0
	c.delta = 0
	c.predicted = 0
	c.lastKick = 0
	c.hasKick = false
	c.sinceKick = 0
}
