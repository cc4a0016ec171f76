package kick

// Default detector parameters.
const (
	DefaultThresholdDB   = -18.0
	DefaultAttackMs      = 3.0
	DefaultReleaseMs     = 150.0
	DefaultMinIntervalMs = 100.0
	DefaultAdaptiveRatio = 0.5 // Adaptive threshold as a fraction of the median kick peak
	DefaultPeakHistory   = 16  // Kick peaks remembered for the adaptive threshold
)

// Parameter ranges.
const (
	MinThresholdDB   = -36.0
	MaxThresholdDB   = -6.0
	MinAttackMs      = 1.0
	MaxAttackMs      = 10.0
	MinReleaseMs     = 50.0
	MaxReleaseMs     = 500.0
	MinMinIntervalMs = 50.0
	MaxMinIntervalMs = 500.0
	MaxPeakHistory   = 64
)
