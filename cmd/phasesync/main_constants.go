package main

// Default command-line flag values
const (
	defaultSampleRate = 48000.0 // DAT/DVD sample rate
	defaultBPM        = 120.0
	defaultBassDelay  = 5.0 // ms between kick onset and bass peak
	defaultBassHz     = 80.0
	defaultDuration   = 8.0 // seconds
	defaultBlockSize  = 512
)

// Synthetic scene parameters
const (
	kickFrequency    = 60.0 // Hz
	kickAmplitude    = 0.9
	kickDecay        = 0.05 // seconds
	kickLengthMs     = 250.0
	bassAmplitude    = 0.5
	bassBurstMs      = 25.0
	firstKickMs      = 50.0
	secondsPerMinute = 60.0
)

// Memory conversion
const (
	bytesPerKilobyte = 1024
)
