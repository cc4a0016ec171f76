// Package engine runs the phase alignment pipeline: one shared kick
// detector feeding per-track bass analysis, phase control and rotation,
// with the bass delayed by the lookahead so each kick's correction is ready
// before the kick is heard.
package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/tphakala/go-phase-sync/internal/kick"
)

// Stereo is one block of a stereo signal.
type Stereo struct {
	Left, Right []float64
}

// Core is the real-time engine. ProcessBlock, Reset and SetParams belong to
// the audio goroutine; Publish, Telemetry and the accessors may be called
// from any goroutine.
type Core struct {
	setup     Setup
	lookahead int

	params  atomic.Pointer[Params]
	applied *Params

	detector *kick.Detector
	tracks   []*track
	active   int
	pending  pendingQueue

	window      int
	phaseAmount float64
	dryWet      float64

	index     int64 // input index of the next sample
	lastKick  int64
	kickCount int64

	telemetry *telemetry
}

// New builds a core. All buffers for MaxBassTracks tracks are allocated
// here; nothing on the processing path allocates.
func New(setup Setup, params Params) (*Core, error) {
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(&setup); err != nil {
		return nil, err
	}

	det, err := kick.New(params.kickConfig(&setup))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	c := &Core{
		setup:     setup,
		lookahead: setup.LookaheadSamples(),
		detector:  det,
		tracks:    make([]*track, setup.MaxBassTracks),
		pending:   newPendingQueue(setup.pendingCapacity(), setup.MaxBassTracks),
		lastKick:  -1,
		telemetry: newTelemetry(setup.MaxBassTracks),
	}
	for i := range c.tracks {
		if c.tracks[i], err = newTrack(&setup, &params); err != nil {
			return nil, err
		}
	}

	p := params
	c.applyParams(&p)
	c.params.Store(&p)
	c.publishTelemetry()
	return c, nil
}

// Setup returns the structural settings.
func (c *Core) Setup() Setup {
	return c.setup
}

// Params returns the most recently published parameters.
func (c *Core) Params() Params {
	return *c.params.Load()
}

// Publish hands new parameters to the audio goroutine. They take effect at
// the start of the next block.
func (c *Core) Publish(p Params) error {
	if err := p.Validate(&c.setup); err != nil {
		return err
	}
	c.params.Store(&p)
	return nil
}

// Latency returns the added delay in samples.
func (c *Core) Latency() int {
	return c.lookahead
}

// ActiveTracks returns the number of tracks processed per block.
func (c *Core) ActiveTracks() int {
	return c.active
}

// MemoryBytes estimates the sample storage held by the core.
func (c *Core) MemoryBytes() int64 {
	var total int64
	for _, t := range c.tracks {
		total += t.memoryBytes()
	}
	return total
}

// Telemetry returns a copy of the latest published display state.
func (c *Core) Telemetry() Telemetry {
	return c.telemetry.snapshot()
}

// applyParams reconfigures every component. Tracks that become active are
// reset so they do not replay stale audio.
func (c *Core) applyParams(p *Params) {
	if err := c.detector.SetParams(p.kickConfig(&c.setup)); err != nil {
		return
	}
	for _, t := range c.tracks {
		if err := t.apply(&c.setup, p); err != nil {
			return
		}
	}
	for i := c.active; i < p.NumTracks; i++ {
		c.tracks[i].reset()
	}
	c.active = p.NumTracks
	c.window = p.windowSamples(&c.setup)
	c.phaseAmount = p.PhaseAmount
	c.dryWet = p.DryWet
	c.applied = p
}

// ProcessBlock aligns one block. sidechain and every in/out channel must
// have the same length, and in/out must hold exactly ActiveTracks entries
// as of the last published parameters. out may alias in.
func (c *Core) ProcessBlock(sidechain []float64, in, out []Stereo) error {
	if p := c.params.Load(); p != c.applied {
		c.applyParams(p)
	}
	if err := c.checkBlock(sidechain, in, out); err != nil {
		return err
	}

	for start := 0; start < len(sidechain); start += c.setup.MaxBlockSize {
		end := min(start+c.setup.MaxBlockSize, len(sidechain))
		for i := start; i < end; i++ {
			c.processSample(sidechain[i], in, out, i)
		}
		c.publishTelemetry()
	}
	return nil
}

func (c *Core) checkBlock(sidechain []float64, in, out []Stereo) error {
	if len(in) != c.active || len(out) != c.active {
		return fmt.Errorf("%w: got %d in, %d out, want %d", ErrTrackCount, len(in), len(out), c.active)
	}
	n := len(sidechain)
	for i := range in {
		if len(in[i].Left) != n || len(in[i].Right) != n || len(out[i].Left) != n || len(out[i].Right) != n {
			return fmt.Errorf("%w: track %d does not match sidechain length %d", ErrBlockSize, i, n)
		}
	}
	return nil
}

func (c *Core) processSample(sc float64, in, out []Stereo, i int) {
	n := c.index
	c.index++

	for t := range c.active {
		tr := c.tracks[t]
		l, r := in[t].Left[i], in[t].Right[i]
		tr.left.Write(l)
		tr.right.Write(r)
		tr.mid.Write(0.5 * (l + r))
	}

	if ev, ok := c.detector.Process(sc, n); ok {
		if c.pending.push(ev.SampleIndex, ev.SampleIndex+int64(c.window), ev.SampleIndex+int64(c.lookahead)) {
			c.lastKick = ev.SampleIndex
			c.kickCount++
		}
	}

	for pk := c.pending.nextToAnalyze(n); pk != nil; pk = c.pending.nextToAnalyze(n) {
		for t := range c.active {
			peak, ok := c.tracks[t].analyzer.Analyze(c.tracks[t].mid, pk.kick, n)
			pk.offsets[t] = peak.Offset
			pk.hasPeak[t] = ok
		}
	}

	// Controllers step before a kick fires, so a transition started on this
	// sample holds here and reaches progress k at sample n+k.
	for t := range c.active {
		c.tracks[t].ctrl.Advance()
	}

	for pk := c.pending.nextToFire(n); pk != nil; pk = c.pending.nextToFire(n) {
		for t := range c.active {
			tr := c.tracks[t]
			tr.ctrl.OnKick(pk.kick, pk.offsets[t], pk.hasPeak[t])
			tr.lastOffset = pk.offsets[t]
			tr.lastPeak = pk.hasPeak[t]
			tr.kicks++
		}
		c.pending.pop()
	}

	wet := c.dryWet
	dry := 1 - wet
	for t := range c.active {
		tr := c.tracks[t]
		tr.rotator.SetTargetPhase(tr.ctrl.Phase() * c.phaseAmount)
		dl := tr.left.Read(c.lookahead)
		dr := tr.right.Read(c.lookahead)
		wl, wr := tr.rotator.Process(dl, dr)
		out[t].Left[i] = dry*dl + wet*wl
		out[t].Right[i] = dry*dr + wet*wr
	}
}

func (c *Core) publishTelemetry() {
	tel := c.telemetry
	tel.samples.Store(c.index)
	tel.lastKick.Store(c.lastKick)
	tel.kickCount.Store(c.kickCount)
	tel.dropped.Store(c.pending.dropped)
	tel.active.Store(int32(c.active))
	for t := range c.active {
		tel.storeTrack(t, c.tracks[t])
	}
}

// Reset clears all audio state: buffers, filters, controllers, the detector
// and pending kicks. Parameters are kept.
func (c *Core) Reset() {
	c.detector.Reset()
	for _, t := range c.tracks {
		t.reset()
	}
	c.pending.reset()
	c.index = 0
	c.lastKick = -1
	c.kickCount = 0
	c.telemetry.reset()
	c.publishTelemetry()
}
