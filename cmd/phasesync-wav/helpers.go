package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	phasesync "github.com/tphakala/go-phase-sync"
	"github.com/tphakala/go-phase-sync/internal/meter"
	"github.com/tphakala/go-phase-sync/internal/simdops"
)

// wavAudio is a decoded WAV file as normalized planar samples. Mono files
// have Right aliased to Left.
type wavAudio struct {
	rate     int
	bitDepth int
	channels int
	left     []float64
	right    []float64
}

func (w *wavAudio) frames() int {
	return len(w.left)
}

// mid returns the mono sum used as the kick sidechain.
func (w *wavAudio) mid() []float64 {
	if w.channels == monoChannels {
		return w.left
	}
	m := make([]float64, len(w.left))
	simdops.Mid(m, w.left, w.right)
	return m
}

// withSamples returns a copy of the format carrying new samples.
func (w *wavAudio) withSamples(s phasesync.StereoBuffer) *wavAudio {
	out := *w
	out.left, out.right = s.Left, s.Right
	return &out
}

// getMaxValue returns the maximum sample value for the given bit depth.
func getMaxValue(bitDepth int) (float64, error) {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16, nil
	case bitsPerSample24:
		return maxInt24, nil
	case bitsPerSample32:
		return maxInt32, nil
	default:
		return 0, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
}

// readWAV decodes a whole mono or stereo PCM file.
func readWAV(path string) (*wavAudio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data from %s: %w", path, err)
	}

	channels := buf.Format.NumChannels
	if channels != monoChannels && channels != stereoChannels {
		return nil, fmt.Errorf("%s: %d channels, only mono and stereo are supported", path, channels)
	}
	bitDepth := int(decoder.BitDepth)
	maxVal, err := getMaxValue(bitDepth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	left, right := deinterleave(buf.Data, channels, 1/maxVal)
	return &wavAudio{
		rate:     buf.Format.SampleRate,
		bitDepth: bitDepth,
		channels: channels,
		left:     left,
		right:    right,
	}, nil
}

// deinterleave converts interleaved int samples to normalized planar
// channels.
func deinterleave(data []int, channels int, invMaxVal float64) (left, right []float64) {
	frames := len(data) / channels
	if channels == monoChannels {
		left = make([]float64, frames)
		for i := range frames {
			left[i] = float64(data[i]) * invMaxVal
		}
		return left, left
	}

	interleaved := make([]float64, frames*stereoChannels)
	for i := range interleaved {
		interleaved[i] = float64(data[i]) * invMaxVal
	}
	return phasesync.DeinterleaveFromStereo(interleaved)
}

// toInts denormalizes interleaved samples, clamping to [-1, 1].
func toInts(interleaved []float64, maxVal float64) []int {
	out := make([]int, len(interleaved))
	for i, s := range interleaved {
		out[i] = int(max(-1, min(1, s)) * maxVal)
	}
	return out
}

// writeWAV encodes w with its own rate, bit depth and channel count.
func writeWAV(path string, w *wavAudio) (err error) {
	maxVal, err := getMaxValue(w.bitDepth)
	if err != nil {
		return err
	}

	var samples []float64
	if w.channels == monoChannels {
		samples = w.left
	} else {
		samples = phasesync.InterleaveToStereo(w.left, w.right)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	enc := wav.NewEncoder(f, w.rate, w.bitDepth, w.channels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: w.channels, SampleRate: w.rate},
		Data:           toInts(samples, maxVal),
		SourceBitDepth: w.bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	// Close writes the final chunk sizes into the header.
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}

// outputPath places the aligned file next to its input or into dir.
func outputPath(input, dir, suffix string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext) + suffix + ext
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, name)
}

// progressTracker handles progress reporting.
type progressTracker struct {
	logger       *slog.Logger
	lastProgress int
}

func newProgressTracker(logger *slog.Logger) *progressTracker {
	return &progressTracker{logger: logger}
}

// reportIfNeeded logs at debug level each time another progressInterval
// percent is done.
func (p *progressTracker) reportIfNeeded(done, total int) {
	if p == nil || total <= 0 {
		return
	}
	progress := done * percentScale / total
	if progress >= p.lastProgress+progressInterval {
		p.logger.Debug("progress", "percent", progress)
		p.lastProgress = progress
	}
}

// alignFiles streams the sidechain and tracks through the engine in blocks
// and returns latency-compensated output with the length of the longest
// input. Shorter inputs are padded with silence.
func alignFiles(e *phasesync.Engine, sidechain []float64, tracks []*wavAudio, block int, progress *progressTracker) ([]phasesync.StereoBuffer, error) {
	frames := len(sidechain)
	for _, tr := range tracks {
		frames = max(frames, tr.frames())
	}
	latency := e.Latency()
	total := frames + latency

	sc := padTo(sidechain, total)
	src := make([]phasesync.StereoBuffer, len(tracks))
	dst := make([]phasesync.StereoBuffer, len(tracks))
	for i, tr := range tracks {
		src[i] = phasesync.StereoBuffer{Left: padTo(tr.left, total), Right: padTo(tr.right, total)}
		dst[i] = phasesync.StereoBuffer{Left: make([]float64, total), Right: make([]float64, total)}
	}

	in := make([]phasesync.StereoBuffer, len(tracks))
	out := make([]phasesync.StereoBuffer, len(tracks))
	for start := 0; start < total; start += block {
		end := min(start+block, total)
		for i := range tracks {
			in[i] = phasesync.StereoBuffer{Left: src[i].Left[start:end], Right: src[i].Right[start:end]}
			out[i] = phasesync.StereoBuffer{Left: dst[i].Left[start:end], Right: dst[i].Right[start:end]}
		}
		if err := e.Process(sc[start:end], in, out); err != nil {
			return nil, fmt.Errorf("processing failed at frame %d: %w", start, err)
		}
		progress.reportIfNeeded(end, total)
	}

	for i := range dst {
		dst[i].Left = dst[i].Left[latency:]
		dst[i].Right = dst[i].Right[latency:]
	}
	return dst, nil
}

func padTo(x []float64, n int) []float64 {
	p := make([]float64, n)
	copy(p, x)
	return p
}

// printReport measures, over the last reportFrame samples, the phase each
// track was rotated by at the center frequency.
func printReport(tracks []*wavAudio, aligned []phasesync.StereoBuffer, tel phasesync.Snapshot, centerHz, rate float64) error {
	fmt.Printf("\nPhase report at %.1f Hz:\n", centerHz)
	for i, tr := range tracks {
		ts := tel.Tracks[i]
		fmt.Printf("  Track %d: state %s, target %.1f°, applied %.1f°, bass offset %d samples, %d stages\n",
			i, ts.State, ts.TargetPhase, ts.Phase, ts.BassOffset, ts.ActiveStages)

		n := min(reportFrame, tr.frames())
		m, err := meter.New(n, rate)
		if err != nil {
			return err
		}
		meas, err := m.Measure(tr.mid(), midOf(aligned[i]), centerHz)
		if err != nil {
			fmt.Printf("           measurement unavailable: %v\n", err)
			continue
		}
		fmt.Printf("           measured %.1f° (gain %.3f, bin %.1f Hz)\n",
			meas.PhaseDegrees, meas.Gain, meas.Frequency)
	}
	return nil
}

func midOf(s phasesync.StereoBuffer) []float64 {
	m := make([]float64, len(s.Left))
	simdops.Mid(m, s.Left, s.Right)
	return m
}
