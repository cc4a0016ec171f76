package engine

import (
	"math"
	"sync/atomic"

	"github.com/tphakala/go-phase-sync/internal/controller"
)

// TrackTelemetry is the display state of one track.
type TrackTelemetry struct {
	Phase             float64 // Phase applied to the rotator, degrees
	TargetPhase       float64 // Controller target before phase amount, degrees
	BassOffset        int     // Last measured bass offset, samples
	HasPeak           bool    // Whether the last analysis found bass energy
	State             controller.State
	PredictedInterval int64 // Samples, 0 when unknown
	ActiveStages      int
	Kicks             int64 // Kicks applied to this track's controller
}

// Telemetry is a point-in-time copy of the engine's display state.
type Telemetry struct {
	SamplesProcessed int64
	LastKick         int64 // Input sample index of the latest kick, -1 before the first
	KickCount        int64
	DroppedKicks     int64
	Tracks           []TrackTelemetry
}

// trackCells are the atomics one track publishes into.
type trackCells struct {
	phase     atomic.Uint64
	target    atomic.Uint64
	offset    atomic.Int64
	hasPeak   atomic.Bool
	state     atomic.Int32
	predicted atomic.Int64
	stages    atomic.Int32
	kicks     atomic.Int64
}

// telemetry is written by the audio goroutine at block end and read from
// anywhere. Fields are individually atomic; a reader may see a mix of two
// consecutive blocks.
type telemetry struct {
	samples   atomic.Int64
	lastKick  atomic.Int64
	kickCount atomic.Int64
	dropped   atomic.Int64
	active    atomic.Int32
	tracks    []trackCells
}

func newTelemetry(tracks int) *telemetry {
	t := &telemetry{tracks: make([]trackCells, tracks)}
	t.lastKick.Store(-1)
	return t
}

func (t *telemetry) storeTrack(i int, tr *track) {
	c := &t.tracks[i]
	ps := tr.ctrl.PhaseState()
	c.phase.Store(math.Float64bits(tr.rotator.Phase()))
	c.target.Store(math.Float64bits(ps.Target))
	c.offset.Store(int64(tr.lastOffset))
	c.hasPeak.Store(tr.lastPeak)
	c.state.Store(int32(tr.ctrl.State()))
	c.predicted.Store(tr.ctrl.PredictedInterval())
	c.stages.Store(int32(tr.rotator.ActiveStages()))
	c.kicks.Store(tr.kicks)
}

func (t *telemetry) snapshot() Telemetry {
	active := int(t.active.Load())
	s := Telemetry{
		SamplesProcessed: t.samples.Load(),
		LastKick:         t.lastKick.Load(),
		KickCount:        t.kickCount.Load(),
		DroppedKicks:     t.dropped.Load(),
		Tracks:           make([]TrackTelemetry, active),
	}
	for i := range s.Tracks {
		c := &t.tracks[i]
		s.Tracks[i] = TrackTelemetry{
			Phase:             math.Float64frombits(c.phase.Load()),
			TargetPhase:       math.Float64frombits(c.target.Load()),
			BassOffset:        int(c.offset.Load()),
			HasPeak:           c.hasPeak.Load(),
			State:             controller.State(c.state.Load()),
			PredictedInterval: c.predicted.Load(),
			ActiveStages:      int(c.stages.Load()),
			Kicks:             c.kicks.Load(),
		}
	}
	return s
}

func (t *telemetry) reset() {
	t.samples.Store(0)
	t.lastKick.Store(-1)
	t.kickCount.Store(0)
	t.dropped.Store(0)
	for i := range t.tracks {
		c := &t.tracks[i]
		c.phase.Store(0)
		c.target.Store(0)
		c.offset.Store(0)
		c.hasPeak.Store(false)
		c.state.Store(int32(controller.Idle))
		c.predicted.Store(0)
		c.stages.Store(0)
		c.kicks.Store(0)
	}
}
