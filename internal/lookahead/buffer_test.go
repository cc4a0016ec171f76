package lookahead

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidCapacity(t *testing.T) {
	for _, c := range []int{0, -1} {
		b, err := New(c)
		require.ErrorIs(t, err, ErrInvalidCapacity)
		assert.Nil(t, b)
	}
}

func TestBuffer_ZeroFilled(t *testing.T) {
	b, err := New(16)
	require.NoError(t, err)
	for d := range 16 {
		assert.InDelta(t, 0.0, b.Read(d), 0)
	}
}

// Read(d) returns exactly the sample written d steps earlier.
func TestBuffer_ReadReturnsDelayedSample(t *testing.T) {
	capacities := []int{1, 2, 7, 64, 4800}
	rng := rand.New(rand.NewPCG(7, 11))

	for _, c := range capacities {
		b, err := New(c)
		require.NoError(t, err)

		total := 3*c + 5
		history := make([]float64, 0, total)
		for range total {
			v := rng.Float64()*2 - 1
			b.Write(v)
			history = append(history, v)

			n := len(history)
			for d := 0; d < c && d < n; d++ {
				if history[n-1-d] != b.Read(d) {
					require.Failf(t, "delay mismatch", "capacity %d, delay %d after %d writes", c, d, n)
				}
			}
		}
		assert.Equal(t, int64(total), b.Written())
	}
}

func TestBuffer_ReadWrapsDelay(t *testing.T) {
	b, err := New(4)
	require.NoError(t, err)
	b.WriteBlock([]float64{1, 2, 3, 4})

	assert.InDelta(t, 4.0, b.Read(4), 0)
	assert.InDelta(t, 3.0, b.Read(-3), 0)
}

func TestBuffer_CheckDelay(t *testing.T) {
	b, err := New(10)
	require.NoError(t, err)
	require.NoError(t, b.CheckDelay(0))
	require.NoError(t, b.CheckDelay(9))
	require.ErrorIs(t, b.CheckDelay(10), ErrDelayOutOfRange)
	require.ErrorIs(t, b.CheckDelay(-1), ErrDelayOutOfRange)
}

func TestBuffer_SnapshotInto(t *testing.T) {
	b, err := New(5)
	require.NoError(t, err)
	out := make([]float64, 5)

	t.Run("Before wrap", func(t *testing.T) {
		b.WriteBlock([]float64{1, 2, 3})
		n, err := b.SnapshotInto(3, out)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, []float64{1, 2, 3}, out[:n])
	})

	t.Run("Across wrap", func(t *testing.T) {
		b.WriteBlock([]float64{4, 5, 6, 7})
		n, err := b.SnapshotInto(5, out)
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 4, 5, 6, 7}, out[:n])

		n, err = b.SnapshotInto(2, out)
		require.NoError(t, err)
		assert.Equal(t, []float64{6, 7}, out[:n])
	})

	t.Run("Invalid sizes", func(t *testing.T) {
		_, err := b.SnapshotInto(6, make([]float64, 6))
		require.ErrorIs(t, err, ErrSnapshotSize)
		_, err = b.SnapshotInto(3, make([]float64, 2))
		require.ErrorIs(t, err, ErrSnapshotSize)
	})
}

func TestBuffer_Reset(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)
	b.WriteBlock([]float64{1, 2, 3, 4})
	b.Reset()

	assert.Equal(t, int64(0), b.Written())
	for d := range 3 {
		assert.InDelta(t, 0.0, b.Read(d), 0)
	}
	b.Write(9)
	assert.InDelta(t, 9.0, b.Read(0), 0)
}

func TestBuffer_ZeroAllocations(t *testing.T) {
	b, err := New(4800)
	require.NoError(t, err)
	out := make([]float64, 1920)
	var sink float64

	allocs := testing.AllocsPerRun(100, func() {
		for i := range 512 {
			b.Write(float64(i))
			sink += b.Read(i % 4800)
		}
		_, _ = b.SnapshotInto(1920, out)
	})
	assert.Zero(t, allocs)
	_ = sink
}
