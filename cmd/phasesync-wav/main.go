// Command phasesync-wav aligns bass WAV files to a kick WAV file.
//
// Usage:
//
//	phasesync-wav -kick kick.wav bass.wav
//	phasesync-wav -kick kick.wav -mode last-moment -threshold 80 bass.wav synth.wav
//	phasesync-wav -kick kick.wav -out aligned/ -report bass.wav
//
// Every bass file is written next to its input with an "-aligned" suffix, or
// into -out. Output keeps the length, rate, bit depth and channel count of
// its input; the engine latency is compensated.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	phasesync "github.com/tphakala/go-phase-sync"
)

const (
	// Frames handed to the engine per Process call.
	defaultBlockFrames = 4096

	// Channel counts accepted on input.
	monoChannels   = 1
	stereoChannels = 2

	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Conversion constants
	maxInt16         = 32767.0
	maxInt24         = 8388607.0
	maxInt32         = 2147483647.0
	progressInterval = 10 // Log progress every N%
	percentScale     = 100

	// WAV audio format tag for integer PCM.
	wavFormatPCM = 1

	// Frame size of the -report phase measurement.
	reportFrame = 8192

	defaultSuffix    = "-aligned"
	minRequiredArg   = 1
	bytesPerKilobyte = 1024
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, errUsage) {
			slog.Error("phasesync-wav failed", "err", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if opts.cpuprofile != "" {
		f, err := os.Create(opts.cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	kick, err := readWAV(opts.kickPath)
	if err != nil {
		return err
	}
	logger.Debug("sidechain loaded", "path", opts.kickPath, "rate", kick.rate,
		"channels", kick.channels, "bits", kick.bitDepth, "frames", kick.frames())

	tracks := make([]*wavAudio, len(opts.bassPaths))
	for i, path := range opts.bassPaths {
		if tracks[i], err = readWAV(path); err != nil {
			return err
		}
		if tracks[i].rate != kick.rate {
			return fmt.Errorf("%s: sample rate %d Hz differs from sidechain %d Hz", path, tracks[i].rate, kick.rate)
		}
		logger.Debug("bass loaded", "path", path, "channels", tracks[i].channels,
			"bits", tracks[i].bitDepth, "frames", tracks[i].frames())
	}

	cfg := opts.config
	cfg.SampleRate = float64(kick.rate)
	cfg.NumBassTracks = len(tracks)
	cfg.MaxBassTracks = max(cfg.MaxBassTracks, len(tracks))

	e, err := phasesync.New(&cfg)
	if err != nil {
		return err
	}
	info := e.Info()
	logger.Debug("engine ready", "algorithm", info.Algorithm, "latency", info.Latency,
		"memory_kb", info.MemoryUsage/bytesPerKilobyte, "simd", info.SIMDType, "mode", cfg.AdaptationMode)

	start := time.Now()
	aligned, err := alignFiles(e, kick.mid(), tracks, opts.block, newProgressTracker(logger))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	for i, tr := range tracks {
		out := tr.withSamples(aligned[i])
		path := outputPath(opts.bassPaths[i], opts.outDir, opts.suffix)
		if err := writeWAV(path, out); err != nil {
			return err
		}
		fmt.Printf("Aligned %s -> %s\n", filepath.Base(opts.bassPaths[i]), path)
	}

	tel := e.Telemetry()
	seconds := float64(kick.frames()) / float64(kick.rate)
	fmt.Printf("  %d Hz, %d track(s), %d kicks detected", kick.rate, len(tracks), tel.KickCount)
	if tel.DroppedKicks > 0 {
		fmt.Printf(" (%d dropped)", tel.DroppedKicks)
	}
	fmt.Printf("\n  Latency compensated: %d samples (%.1f ms)\n", info.Latency, info.LatencyMs)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n", elapsed.Seconds(), seconds/elapsed.Seconds())

	if opts.report {
		if err := printReport(tracks, aligned, tel, cfg.CenterFrequencyHz, float64(kick.rate)); err != nil {
			return err
		}
	}
	return nil
}

// options are the parsed command line.
type options struct {
	kickPath   string
	bassPaths  []string
	outDir     string
	suffix     string
	block      int
	report     bool
	verbose    bool
	cpuprofile string
	config     phasesync.Config
}

// parseArgs binds every engine option to a flag. The sample rate is taken
// from the sidechain file later.
func parseArgs(args []string) (*options, error) {
	opts := &options{config: phasesync.DefaultConfig(phasesync.RateDefault)}
	cfg := &opts.config

	fs := flag.NewFlagSet("phasesync-wav", flag.ContinueOnError)
	fs.StringVar(&opts.kickPath, "kick", "", "Kick sidechain WAV file (required)")
	fs.StringVar(&opts.outDir, "out", "", "Output directory (default: next to each input)")
	fs.StringVar(&opts.suffix, "suffix", defaultSuffix, "Suffix added to output file names")
	fs.IntVar(&opts.block, "block", defaultBlockFrames, "Frames per processing block")
	fs.BoolVar(&opts.report, "report", false, "Print measured phase per track")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")
	fs.StringVar(&opts.cpuprofile, "cpuprofile", "", "Write CPU profile to file")

	fs.Float64Var(&cfg.LookaheadMs, "lookahead", cfg.LookaheadMs, "Lookahead and latency in ms (10-500)")
	fs.IntVar(&cfg.MaxBlockSize, "max-block", cfg.MaxBlockSize, "Internal work chunk in samples")
	fs.IntVar(&cfg.IntervalHistory, "history", cfg.IntervalHistory, "Kick intervals used for tempo prediction (2-32)")
	fs.Float64Var(&cfg.KickThresholdDB, "kick-threshold", cfg.KickThresholdDB, "Kick threshold in dB (-36 to -6)")
	fs.Float64Var(&cfg.KickAttackMs, "attack", cfg.KickAttackMs, "Kick envelope attack in ms (1-10)")
	fs.Float64Var(&cfg.KickReleaseMs, "release", cfg.KickReleaseMs, "Kick envelope release in ms (50-500)")
	fs.Float64Var(&cfg.MinKickIntervalMs, "min-interval", cfg.MinKickIntervalMs, "Minimum kick interval in ms (50-500)")
	fs.Float64Var(&cfg.CenterFrequencyHz, "center", cfg.CenterFrequencyHz, "Rotator center frequency in Hz (40-250)")
	fs.Float64Var(&cfg.PhaseAmountPercent, "amount", cfg.PhaseAmountPercent, "Phase correction amount in % (0-100)")
	fs.Float64Var(&cfg.FrequencySpreadOctaves, "spread", cfg.FrequencySpreadOctaves, "All-pass stage bandwidth in octaves (0.1-2)")
	modeName := fs.String("mode", cfg.AdaptationMode.String(), "Adaptation mode: immediate, linear, exponential, last-moment")
	fs.Float64Var(&cfg.TransitionThresholdPercent, "threshold", cfg.TransitionThresholdPercent, "Last-moment transition point in % (10-90)")
	fs.Float64Var(&cfg.DryWetPercent, "mix", cfg.DryWetPercent, "Dry/wet mix in % (0-100)")
	fs.Float64Var(&cfg.BassWindowMs, "window", cfg.BassWindowMs, "Bass RMS window in ms (10-100)")
	fs.Float64Var(&cfg.PhaseHysteresisDegrees, "hysteresis", cfg.PhaseHysteresisDegrees, "Phase change ignored below this many degrees (0-10)")
	fs.Float64Var(&cfg.StageSpanDegrees, "span", cfg.StageSpanDegrees, "Maximum lag per all-pass stage in degrees (22.5-180)")
	fs.IntVar(&cfg.TimeoutIntervals, "timeout", cfg.TimeoutIntervals, "Predicted intervals without a kick before going idle (1-16)")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: phasesync-wav [options] -kick kick.wav bass.wav [bass2.wav ...]\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, errors.Join(errUsage, err)
	}
	opts.bassPaths = fs.Args()
	if opts.kickPath == "" || len(opts.bassPaths) < minRequiredArg {
		fs.Usage()
		return nil, fmt.Errorf("%w: need -kick and at least one bass file", errUsage)
	}
	if opts.block < 1 {
		return nil, fmt.Errorf("%w: -block must be positive", errUsage)
	}

	mode, err := phasesync.ParseMode(*modeName)
	if err != nil {
		return nil, err
	}
	cfg.AdaptationMode = mode
	return opts, nil
}
