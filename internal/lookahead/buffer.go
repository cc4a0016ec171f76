// Package lookahead provides the fixed-capacity delay line that holds bass
// audio while a kick is analyzed ahead of its playback.
package lookahead

import (
	"errors"
	"fmt"
)

// Errors returned by Buffer.
var (
	ErrInvalidCapacity = errors.New("lookahead: capacity must be at least 1")
	ErrDelayOutOfRange = errors.New("lookahead: delay out of range")
	ErrSnapshotSize    = errors.New("lookahead: invalid snapshot size")
)

// Buffer is a circular delay line of fixed capacity.
//
// The buffer is zero-filled at construction, so reads before enough samples
// were written return silence. It is not safe for concurrent use; it belongs
// to the audio goroutine.
type Buffer struct {
	data     []float64
	capacity int
	head     int   // index of the next write
	written  int64 // total samples written since construction or Reset
}

// New creates a buffer holding the most recent capacity samples.
func New(capacity int) (*Buffer, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return &Buffer{
		data:     make([]float64, capacity),
		capacity: capacity,
	}, nil
}

// Write appends one sample, overwriting the oldest.
func (b *Buffer) Write(sample float64) {
	b.data[b.head] = sample
	b.head++
	if b.head == b.capacity {
		b.head = 0
	}
	b.written++
}

// WriteBlock appends samples in order.
func (b *Buffer) WriteBlock(samples []float64) {
	for _, s := range samples {
		b.Write(s)
	}
}

// Read returns the sample written delay steps before the most recent write.
// Delay 0 is the most recent sample. Delay is reduced modulo the capacity;
// use CheckDelay at setup to make sure the delay is meaningful.
func (b *Buffer) Read(delay int) float64 {
	d := delay % b.capacity
	if d < 0 {
		d += b.capacity
	}
	idx := b.head - 1 - d
	if idx < 0 {
		idx += b.capacity
	}
	return b.data[idx]
}

// CheckDelay reports whether delay can be read without aliasing.
func (b *Buffer) CheckDelay(delay int) error {
	if delay < 0 || delay >= b.capacity {
		return fmt.Errorf("%w: delay %d with capacity %d", ErrDelayOutOfRange, delay, b.capacity)
	}
	return nil
}

// SnapshotInto copies the most recent count samples into out[:count],
// oldest first, and returns count.
func (b *Buffer) SnapshotInto(count int, out []float64) (int, error) {
	if count < 0 || count > b.capacity || len(out) < count {
		return 0, fmt.Errorf("%w: count %d, capacity %d, out %d",
			ErrSnapshotSize, count, b.capacity, len(out))
	}
	if count == 0 {
		return 0, nil
	}

	start := b.head - count
	if start >= 0 {
		copy(out[:count], b.data[start:b.head])
		return count, nil
	}

	// Wrapped: tail segment then head segment.
	start += b.capacity
	n := copy(out, b.data[start:])
	copy(out[n:count], b.data[:b.head])
	return count, nil
}

// Reset zero-fills the buffer and rewinds the write position.
func (b *Buffer) Reset() {
	clear(b.data)
	b.head = 0
	b.written = 0
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return b.capacity
}

// Written returns the number of samples written since construction or Reset.
func (b *Buffer) Written() int64 {
	return b.written
}
