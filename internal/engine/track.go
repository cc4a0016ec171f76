package engine

import (
	"fmt"

	"github.com/tphakala/go-phase-sync/internal/bass"
	"github.com/tphakala/go-phase-sync/internal/controller"
	"github.com/tphakala/go-phase-sync/internal/filter"
	"github.com/tphakala/go-phase-sync/internal/lookahead"
)

// track is the processing context of one stereo bass input. Nothing in it
// is shared with other tracks.
type track struct {
	left, right, mid *lookahead.Buffer
	analyzer         *bass.Analyzer
	rotator          *filter.Rotator
	ctrl             *controller.Controller

	lastOffset int
	lastPeak   bool
	kicks      int64 // kicks applied to the controller
}

func newTrack(s *Setup, p *Params) (*track, error) {
	capacity := s.bufferCapacity()
	left, err := lookahead.New(capacity)
	if err != nil {
		return nil, err
	}
	right, err := lookahead.New(capacity)
	if err != nil {
		return nil, err
	}
	mid, err := lookahead.New(capacity)
	if err != nil {
		return nil, err
	}
	if err := left.CheckDelay(s.LookaheadSamples()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
	}

	analyzer, err := bass.New(s.maxWindowSamples(), p.windowSamples(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	rotator, err := filter.NewRotator(p.filterConfig(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	ctrl, err := controller.New(p.controllerConfig(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	return &track{
		left:     left,
		right:    right,
		mid:      mid,
		analyzer: analyzer,
		rotator:  rotator,
		ctrl:     ctrl,
	}, nil
}

// apply pushes new parameters into the track's components. In-flight
// transitions and filter state are kept.
func (t *track) apply(s *Setup, p *Params) error {
	if err := t.analyzer.SetWindow(p.windowSamples(s)); err != nil {
		return err
	}
	if err := t.rotator.SetConfig(p.filterConfig(s)); err != nil {
		return err
	}
	return t.ctrl.SetParams(p.controllerConfig(s))
}

func (t *track) reset() {
	t.left.Reset()
	t.right.Reset()
	t.mid.Reset()
	t.rotator.Clear()
	t.ctrl.Reset()
	t.lastOffset = 0
	t.lastPeak = false
	t.kicks = 0
}

// memoryBytes estimates the sample storage of the track.
func (t *track) memoryBytes() int64 {
	samples := int64(buffersPerTrack*t.left.Cap()) + int64(2*t.analyzer.MaxWindow())
	return samples * bytesPerFloat64
}
