package engine

// Setup bounds.
const (
	MinSampleRate    = 8000.0
	MaxSampleRate    = 384000.0
	MinLookaheadMs   = 10.0
	MaxLookaheadMs   = 500.0
	MinTracks        = 1
	MaxTracks        = 16
	MinBlockSize     = 1
	MaxBlockSizeCap  = 65536
	DefaultLookahead = 100.0
	DefaultMaxTracks = 8
	DefaultBlockSize = 4096
)

// Parameter bounds.
const (
	MinCenterHz     = 40.0
	MaxCenterHz     = 250.0
	MinBassWindowMs = 10.0
	MaxBassWindowMs = 100.0

	DefaultCenterHz     = 100.0
	DefaultBassWindowMs = 20.0
)

const (
	// Shortest kick spacing the pending queue is sized for.
	minKickIntervalFloorMs = 50.0

	// Extra pending slots beyond the worst case.
	pendingSlack = 2

	bytesPerFloat64 = 8
	buffersPerTrack = 3 // left, right, mid
)
