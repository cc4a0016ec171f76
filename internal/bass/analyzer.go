// Package bass locates the energy peak of a bass signal around a kick.
//
// The analyzer takes a snapshot of 2M samples centered on the kick (M being
// the analysis window), scans every window of M samples for the highest mean
// square energy and reports the signed distance from the kick to the centre
// of that window.
package bass

import (
	"errors"
	"fmt"
	"math"
)

// ErrWindowTooLarge is returned when a window exceeds the preallocated size.
var ErrWindowTooLarge = errors.New("bass: window size out of range")

// Snapshotter copies the most recent samples of a stream, oldest first.
type Snapshotter interface {
	SnapshotInto(count int, out []float64) (int, error)
}

// Peak describes the bass energy peak relative to a kick.
type Peak struct {
	Position int64   // Absolute sample index of the window centre
	Offset   int     // Position minus the kick index; positive means the bass is late
	RMS      float64 // Root mean square of the peak window
}

// Analyzer finds bass peaks. All storage is allocated at construction.
type Analyzer struct {
	maxWindow int
	window    int
	scratch   []float64
}

// New creates an analyzer whose window can grow up to maxWindow samples.
func New(maxWindow, window int) (*Analyzer, error) {
	if maxWindow < 1 {
		return nil, fmt.Errorf("%w: max window %d", ErrWindowTooLarge, maxWindow)
	}
	a := &Analyzer{
		maxWindow: maxWindow,
		scratch:   make([]float64, 2*maxWindow),
	}
	if err := a.SetWindow(window); err != nil {
		return nil, err
	}
	return a, nil
}

// SetWindow changes the analysis window size.
func (a *Analyzer) SetWindow(window int) error {
	if window < 1 || window > a.maxWindow {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrWindowTooLarge, window, a.maxWindow)
	}
	a.window = window
	return nil
}

// Window returns the analysis window size in samples.
func (a *Analyzer) Window() int {
	return a.window
}

// MaxWindow returns the largest window the analyzer can take.
func (a *Analyzer) MaxWindow() int {
	return a.maxWindow
}

// SnapshotLen returns the number of samples Analyze reads from its source.
func (a *Analyzer) SnapshotLen() int {
	return 2 * a.window
}

// Analyze snapshots the most recent 2M samples of src, whose newest sample
// has absolute index now, and returns the bass peak relative to kick.
// It reports false when the snapshot is silent or cannot be taken.
func (a *Analyzer) Analyze(src Snapshotter, kick, now int64) (Peak, bool) {
	count := a.SnapshotLen()
	n, err := src.SnapshotInto(count, a.scratch)
	if err != nil || n < a.window {
		return Peak{}, false
	}
	return a.locate(a.scratch[:n], now-int64(n)+1, kick)
}

// AnalyzeBuffer runs the peak search on x, whose first sample has absolute
// index base. It is the offline counterpart of Analyze.
func (a *Analyzer) AnalyzeBuffer(x []float64, base, kick int64) (Peak, bool) {
	return a.locate(x, base, kick)
}

func (a *Analyzer) locate(x []float64, base, kick int64) (Peak, bool) {
	start, energy := ScanPeak(x, a.window)
	if start < 0 || energy <= 0 {
		return Peak{}, false
	}
	pos := base + int64(start+a.window/2)
	return Peak{
		Position: pos,
		Offset:   int(pos - kick),
		RMS:      math.Sqrt(energy),
	}, true
}
