package bass

import (
	"github.com/tphakala/go-phase-sync/internal/simdops"
)

// reseedRatio is the fraction of the energy churned through the running sum
// below which the sum is recomputed.
const reseedRatio = 1e-6

// windowEnergy is the incremental mean-square scanner shared by ScanPeak and
// SlidingEnergy. The running sum of squares is re-seeded exactly every m
// positions, and earlier when it falls below reseedRatio of the energy that
// has passed through it since the last seed: after a loud passage the sum
// of a quiet window would otherwise be mostly rounding error.
type windowEnergy struct {
	x     []float64
	m     int
	inv   float64
	sum   float64
	churn float64 // energy added plus removed since the last seed
}

func (w *windowEnergy) seed(start int) {
	w.sum = simdops.SumSquares(w.x[start : start+w.m])
	w.churn = w.sum
}

func (w *windowEnergy) at(start int) float64 {
	if start%w.m == 0 {
		w.seed(start)
	} else {
		out := w.x[start-1]
		in := w.x[start+w.m-1]
		in2, out2 := in*in, out*out
		w.sum += in2 - out2
		w.churn += in2 + out2
		if w.sum < w.churn*reseedRatio {
			w.seed(start)
		}
	}
	if w.sum < 0 {
		w.sum = 0
	}
	return w.sum * w.inv
}

// windows returns the number of full windows of size m in n samples.
func windows(n, m int) int {
	if m < 1 || n < m {
		return 0
	}
	return n - m + 1
}

// ScanPeak returns the start of the window of size m with the highest mean
// square energy in x, and that energy. Ties resolve to the earliest window.
// It returns (-1, 0) when x holds no full window.
func ScanPeak(x []float64, m int) (start int, energy float64) {
	n := windows(len(x), m)
	if n == 0 {
		return -1, 0
	}
	w := windowEnergy{x: x, m: m, inv: 1 / float64(m)}
	start, energy = 0, w.at(0)
	for s := 1; s < n; s++ {
		if e := w.at(s); e > energy {
			start, energy = s, e
		}
	}
	return start, energy
}

// SlidingEnergy writes the mean square of every window of size m in x into
// dst and returns the number of windows. dst must hold len(x)-m+1 values.
func SlidingEnergy(x []float64, m int, dst []float64) int {
	n := windows(len(x), m)
	if n > len(dst) {
		n = len(dst)
	}
	if n == 0 {
		return 0
	}
	w := windowEnergy{x: x, m: m, inv: 1 / float64(m)}
	for s := range n {
		dst[s] = w.at(s)
	}
	return n
}

// NaiveEnergy is the O(N*M) reference for SlidingEnergy.
func NaiveEnergy(x []float64, m int, dst []float64) int {
	n := windows(len(x), m)
	if n > len(dst) {
		n = len(dst)
	}
	for s := range n {
		var sum float64
		for _, v := range x[s : s+m] {
			sum += v * v
		}
		dst[s] = sum / float64(m)
	}
	return n
}
