package filter

const (
	// MaxStages is the number of preallocated all-pass stages per rotator.
	MaxStages = 16

	// Stage span bounds (degrees of lag a single stage may contribute).
	DefaultStageSpan = 90.0
	MinStageSpan     = 22.5
	MaxStageSpan     = 180.0

	// Recompute hysteresis bounds (degrees).
	DefaultHysteresis = 0.1
	MaxHysteresis     = 10.0

	// Frequency spread bounds (octaves).
	DefaultSpread = 0.5
	MinSpread     = 0.1
	MaxSpread     = 2.0

	// Chain lags below this magnitude (degrees) leave the rotator transparent.
	identityLagEpsilon = 1e-9

	// Lags smaller than this (degrees) are realized one turn further, so no
	// section is ever tuned near Nyquist where its poles approach z = -1.
	minChainLag = 10.0

	// Frequency response defaults
	defaultResponsePoints = 512
	minMagnitude          = 1e-10 // Avoid log(0)
	dbMultiplier          = 20.0  // 20*log10 for magnitude
)
