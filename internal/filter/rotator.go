package filter

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tphakala/go-phase-sync/internal/mathutil"
)

// Config holds the rotator parameters.
type Config struct {
	SampleRate    float64
	CenterHz      float64 // Frequency at which the target phase is exact
	SpreadOctaves float64 // Bandwidth of each section; sets its Q
	StageSpan     float64 // Maximum lag per section in degrees
	Hysteresis    float64 // Minimum target change that triggers a redesign, degrees
}

// DefaultConfig returns a rotator configuration centered at 100 Hz.
func DefaultConfig(sampleRate float64) Config {
	return Config{
		SampleRate:    sampleRate,
		CenterHz:      100,
		SpreadOctaves: DefaultSpread,
		StageSpan:     DefaultStageSpan,
		Hysteresis:    DefaultHysteresis,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %g", ErrInvalidParams, c.SampleRate)
	case c.CenterHz <= 0 || c.CenterHz >= c.SampleRate/2:
		return fmt.Errorf("%w: center %g Hz outside (0, %g)", ErrInvalidParams, c.CenterHz, c.SampleRate/2)
	case c.SpreadOctaves < MinSpread || c.SpreadOctaves > MaxSpread:
		return fmt.Errorf("%w: spread %g octaves outside [%g, %g]", ErrInvalidParams, c.SpreadOctaves, MinSpread, MaxSpread)
	case c.StageSpan < MinStageSpan || c.StageSpan > MaxStageSpan:
		return fmt.Errorf("%w: stage span %g outside [%g, %g]", ErrInvalidParams, c.StageSpan, MinStageSpan, MaxStageSpan)
	case c.Hysteresis < 0 || c.Hysteresis > MaxHysteresis:
		return fmt.Errorf("%w: hysteresis %g outside [0, %g]", ErrInvalidParams, c.Hysteresis, MaxHysteresis)
	}
	return nil
}

// Rotator is a cascade of up to MaxStages all-pass sections whose combined
// phase at the center frequency equals the requested target.
//
// A positive target is realized as the equivalent lag (target - 360), since
// a causal all-pass can only delay. Small nonzero lags are pushed one more
// turn back. Once the chain is active, later targets keep the turn count
// that lies nearest the current lag. Each active section contributes an equal share of the lag, and
// the number of sections grows with the lag so no section exceeds the
// configured span.
//
// Rotator is not safe for concurrent use.
type Rotator struct {
	cfg    Config
	q      float64
	stages [MaxStages]Stage
	active int
	phase  float64 // cached target, wrapped
	lag    float64 // realized chain lag, 0 or at most -minChainLag
}

// NewRotator creates a transparent rotator (phase 0).
func NewRotator(cfg Config) (*Rotator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Rotator{cfg: cfg}
	r.q = mathutil.BandwidthToQ(cfg.SpreadOctaves)
	r.redesign()
	return r, nil
}

// SetTargetPhase sets the phase in degrees the chain must produce at the
// center frequency. The chain is redesigned only when the target moves by
// more than the hysteresis; the return value reports whether it was.
func (r *Rotator) SetTargetPhase(deg float64) bool {
	deg = mathutil.WrapDegrees(deg)
	if math.Abs(mathutil.DeltaDegrees(r.phase, deg)) <= r.cfg.Hysteresis {
		return false
	}
	r.phase = deg
	r.redesign()
	return true
}

// SetCenterFrequency moves the center frequency and redesigns at the cached
// phase.
func (r *Rotator) SetCenterFrequency(hz float64) error {
	cfg := r.cfg
	cfg.CenterHz = hz
	return r.SetConfig(cfg)
}

// SetSpread changes the section bandwidth and redesigns at the cached phase.
func (r *Rotator) SetSpread(octaves float64) error {
	cfg := r.cfg
	cfg.SpreadOctaves = octaves
	return r.SetConfig(cfg)
}

// SetConfig applies a new configuration. Changes to the center, spread or
// span redesign the chain at the cached phase; filter state is kept for
// sections that stay active.
func (r *Rotator) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	dirty := cfg.SampleRate != r.cfg.SampleRate ||
		cfg.CenterHz != r.cfg.CenterHz ||
		cfg.SpreadOctaves != r.cfg.SpreadOctaves ||
		cfg.StageSpan != r.cfg.StageSpan
	r.cfg = cfg
	if dirty {
		r.q = mathutil.BandwidthToQ(cfg.SpreadOctaves)
		r.redesign()
	}
	return nil
}

// Config returns the current configuration.
func (r *Rotator) Config() Config {
	return r.cfg
}

// realizeLag picks the chain lag for the cached phase. Of the lags equal to
// the phase modulo a turn, it takes the one nearest the current lag, so a
// phase drifting across 0 degrees adds or removes one section at a time
// instead of jumping between branches. From a transparent chain it takes
// the shallowest lag.
func (r *Rotator) realizeLag() float64 {
	base := mathutil.PhaseToLagDegrees(r.phase)
	if math.Abs(base) < identityLagEpsilon {
		base = 0
	} else if base > -minChainLag {
		base -= 360
	}
	if r.lag == 0 {
		return base
	}

	k := math.Round((base - r.lag) / 360)
	if k <= 0 {
		return base
	}
	lag := base - 360*k
	if math.Ceil(-lag/r.cfg.StageSpan-1e-12) > MaxStages {
		return base
	}
	return lag
}

func (r *Rotator) redesign() {
	r.lag = r.realizeLag()

	n := 0
	if r.lag != 0 {
		n = int(math.Ceil(math.Abs(r.lag)/r.cfg.StageSpan - 1e-12))
		n = max(1, min(n, MaxStages))
	}

	if n > 0 {
		per := r.lag / float64(n)
		c, err := AllpassForPhase(r.cfg.CenterHz, per, r.q, r.cfg.SampleRate)
		if err != nil {
			// Unreachable with a validated config: the per-section lag is
			// within [-180, 0).
			n = 0
		} else {
			for i := range n {
				r.stages[i].Coefficients = c
			}
		}
	}

	// Sections entering or leaving the chain start from silence.
	lo, hi := min(n, r.active), max(n, r.active)
	for i := lo; i < hi; i++ {
		r.stages[i].Reset()
	}
	for i := n; i < MaxStages; i++ {
		r.stages[i].Coefficients = Identity
	}
	r.active = n
}

// Process rotates one stereo sample.
func (r *Rotator) Process(l, rt float64) (float64, float64) {
	for i := range r.active {
		l, rt = r.stages[i].Process(l, rt)
	}
	return l, rt
}

// ProcessBlock rotates left and right in place.
func (r *Rotator) ProcessBlock(left, right []float64) {
	n := min(len(left), len(right))
	for i := range n {
		left[i], right[i] = r.Process(left[i], right[i])
	}
}

// Response returns the complex response of the active chain at freq.
func (r *Rotator) Response(freq float64) complex128 {
	h := complex(1, 0)
	for i := range r.active {
		h *= r.stages[i].Response(freq, r.cfg.SampleRate)
	}
	return h
}

// Phase returns the cached target phase in degrees, in (-180, 180].
func (r *Rotator) Phase() float64 {
	return r.phase
}

// Lag returns the realized chain lag at the center frequency in degrees.
// It is zero for a transparent chain and otherwise at most -10.
func (r *Rotator) Lag() float64 {
	return r.lag
}

// ActiveStages returns the number of sections in the chain.
func (r *Rotator) ActiveStages() int {
	return r.active
}

// Reset zeroes the filter state of every section. The design is kept.
func (r *Rotator) Reset() {
	for i := range r.stages {
		r.stages[i].Reset()
	}
}

// Clear returns the rotator to a transparent chain with zeroed filter state.
func (r *Rotator) Clear() {
	r.phase = 0
	r.lag = 0
	r.redesign()
	r.Reset()
}

// FilterResponse holds a sampled frequency response.
type FilterResponse struct {
	Frequencies []float64 // Hz
	Magnitude   []float64 // Linear
	Phase       []float64 // Degrees, wrapped to (-180, 180]
}

// FrequencyResponse samples the chain response at numPoints frequencies
// spaced logarithmically between lo and hi Hz.
func (r *Rotator) FrequencyResponse(lo, hi float64, numPoints int) FilterResponse {
	if numPoints <= 0 {
		numPoints = defaultResponsePoints
	}
	resp := FilterResponse{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
		Phase:       make([]float64, numPoints),
	}
	ratio := 1.0
	if numPoints > 1 {
		ratio = math.Pow(hi/lo, 1/float64(numPoints-1))
	}
	f := lo
	for k := range numPoints {
		h := r.Response(f)
		resp.Frequencies[k] = f
		resp.Magnitude[k] = cmplx.Abs(h)
		resp.Phase[k] = mathutil.WrapDegrees(mathutil.Degrees(cmplx.Phase(h)))
		f *= ratio
	}
	return resp
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}
