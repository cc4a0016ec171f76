package mathutil

// Phase constants in degrees.
const (
	fullTurnDegrees = 360.0
	halfTurnDegrees = 180.0
)

// Unit conversion constants.
const (
	msPerSecond  = 1000.0
	dbAmplitude  = 20.0 // 20*log10 for amplitude ratios
	minTimeConst = 1e-9 // Smallest time constant (seconds) accepted by OnePoleCoefficient
)

// Bandwidth-to-Q conversion uses 2^BW; octaves below this are treated as this.
const minBandwidthOctaves = 1e-6
