// Command analyze-rotator prints the designed and measured response of the
// all-pass rotator chain across the bass band for a set of target phases.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tphakala/go-phase-sync/internal/filter"
	"github.com/tphakala/go-phase-sync/internal/meter"
	"github.com/tphakala/go-phase-sync/internal/testutil"
)

const (
	// Analysis band
	bandLow    = 30.0  // Hz
	bandHigh   = 300.0 // Hz
	bandPoints = 10

	// Measurement
	meterFrame     = 16384
	settleSamples  = 32768 // Let the chain ring in before measuring
	toneAmplitude  = 0.5
	defaultRate    = 48000.0
	defaultCenter  = 100.0
	defaultTargets = "0,-45,-90,-135,180,135,90,45,-5"
)

func main() {
	rate := flag.Float64("rate", defaultRate, "Sample rate in Hz")
	center := flag.Float64("center", defaultCenter, "Center frequency in Hz")
	spread := flag.Float64("spread", filter.DefaultSpread, "Stage bandwidth in octaves")
	span := flag.Float64("span", filter.DefaultStageSpan, "Maximum lag per stage in degrees")
	targets := flag.String("targets", defaultTargets, "Comma-separated target phases in degrees")
	flag.Parse()

	phases, err := parseTargets(*targets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := filter.Config{
		SampleRate:    *rate,
		CenterHz:      *center,
		SpreadOctaves: *spread,
		StageSpan:     *span,
	}
	m, err := meter.New(meterFrame, *rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Analyzing Rotator Phase ===")
	fmt.Printf("  Center: %.1f Hz, spread %.2f oct, span %.1f°, %.0f Hz\n", *center, *spread, *span, *rate)

	for _, target := range phases {
		r, err := filter.NewRotator(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		r.SetTargetPhase(target)

		fmt.Printf("\nTarget %.1f° (chain lag %.1f°, %d stages)\n", target, r.Lag(), r.ActiveStages())
		meas, err := measure(r, m, *center, *rate)
		if err != nil {
			fmt.Printf("  measurement failed: %v\n", err)
		} else {
			fmt.Printf("  Measured at %.2f Hz: %.2f° (gain %.6f)\n", meas.Frequency, meas.PhaseDegrees, meas.Gain)
		}

		resp := r.FrequencyResponse(bandLow, bandHigh, bandPoints)
		fmt.Printf("  %10s %10s %12s\n", "freq Hz", "phase °", "mag dB")
		for k, f := range resp.Frequencies {
			fmt.Printf("  %10.1f %10.2f %12.2e\n", f, resp.Phase[k], filter.MagnitudeDB(resp.Magnitude[k]))
		}
	}
}

// measure runs a tone at the meter's nearest bin to freq through a reset
// chain and reports the phase it picked up.
func measure(r *filter.Rotator, m *meter.Meter, freq, rate float64) (meter.Measurement, error) {
	f := m.BinFrequency(freq)
	n := settleSamples + m.Size()
	ref := testutil.Sine(n, f, rate, toneAmplitude, 0)
	left := append([]float64(nil), ref...)
	right := append([]float64(nil), ref...)
	r.Reset()
	r.ProcessBlock(left, right)
	return m.Measure(ref, left, f)
}
