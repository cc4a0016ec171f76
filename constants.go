package phasesync

const (
	fullPercent = 100.0

	// Name reported in Info.Algorithm.
	algorithmName = "kick-synced all-pass phase rotation"
)

// Common sample rates.
const (
	// RateCD is the CD quality sample rate.
	RateCD = 44100

	// RateDAT is the DAT/DVD and video production sample rate.
	RateDAT = 48000

	// RateDefault is used by the convenience functions when no config is given.
	RateDefault = RateDAT
)
