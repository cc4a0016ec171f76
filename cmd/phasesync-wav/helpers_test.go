package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	phasesync "github.com/tphakala/go-phase-sync"
	"github.com/tphakala/go-phase-sync/internal/testutil"
)

func TestReadWAV_FileNotFound(t *testing.T) {
	_, err := readWAV("/nonexistent/file.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestReadWAV_InvalidWAV(t *testing.T) {
	invalidFile := filepath.Join(t.TempDir(), "invalid.wav")
	require.NoError(t, os.WriteFile(invalidFile, []byte("not a wav file"), 0o644))

	_, err := readWAV(invalidFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid WAV file")
}

func TestWAVRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		bitDepth int
	}{
		{"Stereo16", 2, 16},
		{"Mono16", 1, 16},
		{"Stereo24", 2, 24},
		{"Mono32", 1, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left := testutil.Sine(1000, 440, 48000, 0.8, 0)
			right := left
			if tt.channels == stereoChannels {
				right = testutil.Sine(1000, 220, 48000, 0.5, 45)
			}
			in := &wavAudio{rate: 48000, bitDepth: tt.bitDepth, channels: tt.channels, left: left, right: right}

			path := filepath.Join(t.TempDir(), "out.wav")
			require.NoError(t, writeWAV(path, in))

			got, err := readWAV(path)
			require.NoError(t, err)
			assert.Equal(t, 48000, got.rate)
			assert.Equal(t, tt.channels, got.channels)
			assert.Equal(t, tt.bitDepth, got.bitDepth)
			require.Equal(t, 1000, got.frames())

			maxVal, err := getMaxValue(tt.bitDepth)
			require.NoError(t, err)
			for i := range left {
				require.InDelta(t, left[i], got.left[i], 1.5/maxVal, "left %d", i)
				require.InDelta(t, right[i], got.right[i], 1.5/maxVal, "right %d", i)
			}
		})
	}
}

func TestWriteWAV_Errors(t *testing.T) {
	in := &wavAudio{rate: 48000, bitDepth: 12, channels: 1, left: []float64{0}, right: []float64{0}}
	err := writeWAV(filepath.Join(t.TempDir(), "x.wav"), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported bit depth")

	in.bitDepth = 16
	err = writeWAV("/nonexistent/dir/output.wav", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestToInts_Clamps(t *testing.T) {
	got := toInts([]float64{-2, -1, 0, 0.5, 1, 3}, maxInt16)
	assert.Equal(t, []int{-32767, -32767, 0, 16383, 32767, 32767}, got)
}

func TestMid(t *testing.T) {
	stereo := &wavAudio{channels: 2, left: []float64{1, 0}, right: []float64{0, -1}}
	assert.Equal(t, []float64{0.5, -0.5}, stereo.mid())

	mono := &wavAudio{channels: 1, left: []float64{0.25}, right: []float64{0.25}}
	assert.Equal(t, []float64{0.25}, mono.mid())
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, dir, suffix, want string
	}{
		{"/a/b/bass.wav", "", "-aligned", "/a/b/bass-aligned.wav"},
		{"bass.wav", "", "-aligned", "bass-aligned.wav"},
		{"/a/b/bass.wav", "/out", "-x", "/out/bass-x.wav"},
		{"/a/b/bass", "/out", "-x", "/out/bass-x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, outputPath(tt.input, tt.dir, tt.suffix))
	}
}

func TestParseArgs(t *testing.T) {
	opts, err := parseArgs([]string{
		"-kick", "k.wav", "-mode", "last-moment", "-threshold", "80",
		"-center", "60", "-amount", "50", "-lookahead", "200", "-report",
		"a.wav", "b.wav",
	})
	require.NoError(t, err)
	assert.Equal(t, "k.wav", opts.kickPath)
	assert.Equal(t, []string{"a.wav", "b.wav"}, opts.bassPaths)
	assert.True(t, opts.report)
	assert.Equal(t, defaultBlockFrames, opts.block)
	assert.Equal(t, phasesync.LastMoment, opts.config.AdaptationMode)
	assert.InDelta(t, 80.0, opts.config.TransitionThresholdPercent, 0)
	assert.InDelta(t, 60.0, opts.config.CenterFrequencyHz, 0)
	assert.InDelta(t, 50.0, opts.config.PhaseAmountPercent, 0)
	assert.InDelta(t, 200.0, opts.config.LookaheadMs, 0)

	defaults, err := parseArgs([]string{"-kick", "k.wav", "a.wav"})
	require.NoError(t, err)
	assert.Equal(t, phasesync.DefaultConfig(phasesync.RateDefault), defaults.config)
}

func TestParseArgs_Errors(t *testing.T) {
	_, err := parseArgs([]string{"a.wav"})
	require.ErrorIs(t, err, errUsage)

	_, err = parseArgs([]string{"-kick", "k.wav"})
	require.ErrorIs(t, err, errUsage)

	_, err = parseArgs([]string{"-kick", "k.wav", "-block", "0", "a.wav"})
	require.ErrorIs(t, err, errUsage)

	_, err = parseArgs([]string{"-kick", "k.wav", "-mode", "sideways", "a.wav"})
	require.Error(t, err)
}

func TestAlignFiles_BypassIsLatencyCompensated(t *testing.T) {
	cfg := phasesync.DefaultConfig(48000)
	cfg.DryWetPercent = 0
	cfg.NumBassTracks = 2
	e, err := phasesync.New(&cfg)
	require.NoError(t, err)

	onsets := testutil.Onsets(1000, 24000, 2)
	sc := testutil.KickTrain(50000, onsets, 60, 48000, 0.9, 0.05, 12000)
	long := testutil.Sine(50000, 80, 48000, 0.5, 0)
	short := testutil.Sine(30000, 55, 48000, 0.5, 30)
	tracks := []*wavAudio{
		{rate: 48000, bitDepth: 16, channels: 1, left: long, right: long},
		{rate: 48000, bitDepth: 16, channels: 1, left: short, right: short},
	}

	out, err := alignFiles(e, sc, tracks, 1000, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Len(t, out[0].Left, 50000)
	assert.Len(t, out[1].Left, 50000)
	assert.Equal(t, long, out[0].Left)
	assert.Equal(t, short, out[1].Left[:30000])
	for _, v := range out[1].Left[30000:] {
		require.Zero(t, v)
	}
}

func TestProgressTracker(t *testing.T) {
	var p *progressTracker
	p.reportIfNeeded(10, 100) // nil tracker is a no-op

	p = newProgressTracker(slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.reportIfNeeded(5, 100)
	assert.Zero(t, p.lastProgress)
	p.reportIfNeeded(25, 100)
	assert.Equal(t, 25, p.lastProgress)
	p.reportIfNeeded(30, 0)
	assert.Equal(t, 25, p.lastProgress)
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	const frames = 96000
	onsets := testutil.Onsets(2400, 24000, 4)
	kick := testutil.KickTrain(frames, onsets, 60, 48000, 0.9, 0.05, 12000)
	bass := testutil.BassBursts(frames, onsets, 260, 80, 48000, 0.5, 1200)

	kickPath := filepath.Join(dir, "kick.wav")
	bassPath := filepath.Join(dir, "bass.wav")
	require.NoError(t, writeWAV(kickPath, &wavAudio{rate: 48000, bitDepth: 16, channels: 1, left: kick, right: kick}))
	require.NoError(t, writeWAV(bassPath, &wavAudio{rate: 48000, bitDepth: 24, channels: 2, left: bass, right: bass}))

	require.NoError(t, run([]string{"-kick", kickPath, "-report", bassPath}))

	got, err := readWAV(filepath.Join(dir, "bass-aligned.wav"))
	require.NoError(t, err)
	assert.Equal(t, frames, got.frames())
	assert.Equal(t, 24, got.bitDepth)
	assert.Equal(t, 2, got.channels)
	testutil.AssertAllInRange(t, got.left, -1, 1)
}

func TestRun_RateMismatch(t *testing.T) {
	dir := t.TempDir()
	x := make([]float64, 100)
	kickPath := filepath.Join(dir, "kick.wav")
	bassPath := filepath.Join(dir, "bass.wav")
	require.NoError(t, writeWAV(kickPath, &wavAudio{rate: 48000, bitDepth: 16, channels: 1, left: x, right: x}))
	require.NoError(t, writeWAV(bassPath, &wavAudio{rate: 44100, bitDepth: 16, channels: 1, left: x, right: x}))

	err := run([]string{"-kick", kickPath, bassPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "differs from sidechain")
}
