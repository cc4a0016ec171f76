package controller

const (
	// DefaultHistorySize is the number of kick intervals kept for prediction.
	DefaultHistorySize = 8
	MinHistorySize     = 2
	MaxHistorySize     = 32

	// DefaultTimeoutIntervals is how many predicted intervals may pass
	// without a kick before the controller goes idle.
	DefaultTimeoutIntervals = 4
	MinTimeoutIntervals     = 1
	MaxTimeoutIntervals     = 16

	// Transition threshold bounds for LastMoment, as a fraction of the interval.
	DefaultTransitionThreshold = 0.7
	MinTransitionThreshold     = 0.1
	MaxTransitionThreshold     = 0.9

	// Ease-in steepness of the Exponential curve.
	exponentialK = 3.0

	// Slack on the LastMoment hold comparison so p == threshold holds.
	progressEpsilon = 1e-12
)
