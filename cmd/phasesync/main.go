// Command phasesync runs the aligner on a synthetic kick and bass scene and
// prints the engine's telemetry after every kick.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	phasesync "github.com/tphakala/go-phase-sync"
	"github.com/tphakala/go-phase-sync/internal/mathutil"
)

func main() {
	var (
		sampleRate = flag.Float64("rate", defaultSampleRate, "Sample rate in Hz")
		bpm        = flag.Float64("bpm", defaultBPM, "Kick tempo in beats per minute")
		delayMs    = flag.Float64("delay", defaultBassDelay, "Bass delay after each kick in ms")
		bassHz     = flag.Float64("bass", defaultBassHz, "Bass frequency in Hz")
		duration   = flag.Float64("duration", defaultDuration, "Scene length in seconds")
		block      = flag.Int("block", defaultBlockSize, "Frames per Process call")
		mode       = flag.String("mode", "linear", "Adaptation mode: immediate, linear, exponential, last-moment")
		verbose    = flag.Bool("v", false, "Log every block at debug level")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	m, err := phasesync.ParseMode(*mode)
	if err != nil {
		logger.Error("bad mode", "err", err)
		os.Exit(1)
	}

	cfg := phasesync.DefaultConfig(*sampleRate)
	cfg.AdaptationMode = m
	e, err := phasesync.New(&cfg)
	if err != nil {
		logger.Error("failed to create engine", "err", err)
		os.Exit(1)
	}

	info := e.Info()
	fmt.Printf("Engine created:\n")
	fmt.Printf("  Algorithm: %s\n", info.Algorithm)
	fmt.Printf("  Mode: %s\n", m)
	fmt.Printf("  Max stages: %d\n", info.MaxStages)
	fmt.Printf("  Latency: %d samples (%.1f ms)\n", info.Latency, info.LatencyMs)
	fmt.Printf("  Tracks: %d active of %d\n", info.ActiveTracks, info.MaxTracks)
	fmt.Printf("  Memory usage: %.2f KB\n", float64(info.MemoryUsage)/bytesPerKilobyte)
	fmt.Printf("  SIMD: %v (%s)\n", info.SIMDEnabled, info.SIMDType)

	sc, bass := scene(*sampleRate, *bpm, *delayMs, *bassHz, *duration)
	delay := mathutil.MsToSamples(*delayMs, *sampleRate)
	fmt.Printf("\nScene: %.0f BPM, bass %.0f Hz delayed %d samples, expected correction %.1f°\n",
		*bpm, *bassHz, delay, mathutil.DelayToPhaseDegrees(float64(delay), cfg.CenterFrequencyHz, *sampleRate))
	fmt.Printf("\n%8s %10s %8s %10s %10s %7s %s\n", "kick", "sample", "offset", "target", "applied", "stages", "state")

	outL := make([]float64, *block)
	outR := make([]float64, *block)
	out := []phasesync.StereoBuffer{{Left: outL, Right: outR}}
	in := make([]phasesync.StereoBuffer, 1)
	var seen int64
	for start := 0; start < len(sc); start += *block {
		end := min(start+*block, len(sc))
		in[0] = phasesync.StereoBuffer{Left: bass[start:end], Right: bass[start:end]}
		out[0] = phasesync.StereoBuffer{Left: outL[:end-start], Right: outR[:end-start]}
		if err := e.Process(sc[start:end], in, out); err != nil {
			logger.Error("processing failed", "err", err)
			os.Exit(1)
		}

		tel := e.Telemetry()
		logger.Debug("block", "end", end, "kicks", tel.KickCount)
		tr := tel.Tracks[0]
		if tr.Kicks == seen {
			continue
		}
		seen = tr.Kicks
		fmt.Printf("%8d %10d %8d %9.1f° %9.1f° %7d %s\n",
			tr.Kicks, tel.LastKick, tr.BassOffset, tr.TargetPhase, tr.Phase, tr.ActiveStages, tr.State)
	}

	tel := e.Telemetry()
	fmt.Printf("\nProcessed %d samples, %d kicks, predicted interval %d samples\n",
		tel.SamplesProcessed, tel.KickCount, tel.Tracks[0].PredictedInterval)
}

// scene renders a kick sidechain and a bass that peaks delayMs after every
// kick.
func scene(rate, bpm, delayMs, bassHz, seconds float64) (sc, bass []float64) {
	n := int(seconds * rate)
	interval := secondsPerMinute / bpm * rate
	first := mathutil.MsToSamples(firstKickMs, rate)
	kickLen := mathutil.MsToSamples(kickLengthMs, rate)
	burst := mathutil.MsToSamples(bassBurstMs, rate)
	delay := mathutil.MsToSamples(delayMs, rate)

	sc = make([]float64, n)
	bass = make([]float64, n)
	wk := 2 * math.Pi * kickFrequency / rate
	wb := 2 * math.Pi * bassHz / rate
	for on := float64(first); int(on) < n; on += interval {
		onset := int(on)
		for k := 0; k < kickLen && onset+k < n; k++ {
			sc[onset+k] += kickAmplitude * math.Sin(wk*float64(k)) * math.Exp(-float64(k)/rate/kickDecay)
		}
		center := onset + delay
		for k := -burst; k <= burst; k++ {
			i := center + k
			if i < 0 || i >= n {
				continue
			}
			hann := 0.5 * (1 + math.Cos(math.Pi*float64(k)/float64(burst)))
			bass[i] += bassAmplitude * hann * math.Sin(wb*float64(i))
		}
	}
	return sc, bass
}
