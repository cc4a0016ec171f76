package controller

import (
	"github.com/tphakala/go-phase-sync/internal/mathutil"
)

// IntervalHistory is a fixed-capacity ring of recent kick intervals in
// samples. Only strictly positive intervals are stored.
type IntervalHistory struct {
	data    []int64
	pos     int
	count   int
	scratch []float64
}

// NewIntervalHistory creates a history holding up to size intervals.
func NewIntervalHistory(size int) *IntervalHistory {
	size = max(size, 1)
	return &IntervalHistory{
		data:    make([]int64, size),
		scratch: make([]float64, size),
	}
}

// Push records an interval and reports whether it was kept. Zero and
// negative intervals are discarded.
func (h *IntervalHistory) Push(interval int64) bool {
	if interval <= 0 {
		return false
	}
	h.data[h.pos] = interval
	h.pos++
	if h.pos == len(h.data) {
		h.pos = 0
	}
	if h.count < len(h.data) {
		h.count++
	}
	return true
}

// Median returns the upper median of the stored intervals, or 0 when the
// history is empty.
func (h *IntervalHistory) Median() int64 {
	if h.count == 0 {
		return 0
	}
	s := h.scratch[:h.count]
	for i := range s {
		s[i] = float64(h.data[i])
	}
	return int64(mathutil.SelectUpperMedian(s))
}

// Len returns the number of stored intervals.
func (h *IntervalHistory) Len() int {
	return h.count
}

// Cap returns the history capacity.
func (h *IntervalHistory) Cap() int {
	return len(h.data)
}

// Reset forgets all intervals.
func (h *IntervalHistory) Reset() {
	clear(h.data)
	h.pos = 0
	h.count = 0
}
