package mathutil

// SelectUpperMedian returns the element of rank len(a)/2 (the upper middle
// for even lengths) using in-place quickselect. The contents of a are
// reordered. An empty slice returns 0.
//
// The pivot is the median of three so sorted histories, the common case for
// steady tempos, stay linear.
func SelectUpperMedian(a []float64) float64 {
	n := len(a)
	if n == 0 {
		return 0
	}
	k := n / 2
	lo, hi := 0, n-1
	for lo < hi {
		mid := lo + (hi-lo)/2
		// Order a[lo] <= a[mid] <= a[hi], then use a[mid] as pivot.
		if a[mid] < a[lo] {
			a[mid], a[lo] = a[lo], a[mid]
		}
		if a[hi] < a[lo] {
			a[hi], a[lo] = a[lo], a[hi]
		}
		if a[hi] < a[mid] {
			a[hi], a[mid] = a[mid], a[hi]
		}
		pivot := a[mid]

		i, j := lo, hi
		for i <= j {
			for a[i] < pivot {
				i++
			}
			for a[j] > pivot {
				j--
			}
			if i <= j {
				a[i], a[j] = a[j], a[i]
				i++
				j--
			}
		}
		switch {
		case k <= j:
			hi = j
		case k >= i:
			lo = i
		default:
			return a[k]
		}
	}
	return a[k]
}
