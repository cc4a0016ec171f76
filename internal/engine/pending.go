package engine

// pendingKick is a detected kick waiting for its analysis and for its audio
// to reach the delayed output.
type pendingKick struct {
	kick      int64
	analyzeAt int64 // kick + window: the snapshot is centered on the kick
	fireAt    int64 // kick + lookahead: the kick is being emitted
	offsets   []int
	hasPeak   []bool
}

// pendingQueue is a fixed ring of pending kicks ordered by kick index.
// Entries [head, head+analyzed) have been analyzed.
type pendingQueue struct {
	items    []pendingKick
	head     int
	count    int
	analyzed int
	dropped  int64
}

func newPendingQueue(capacity, tracks int) pendingQueue {
	q := pendingQueue{items: make([]pendingKick, capacity)}
	for i := range q.items {
		q.items[i].offsets = make([]int, tracks)
		q.items[i].hasPeak = make([]bool, tracks)
	}
	return q
}

// push enqueues a kick. A full queue drops the new kick and reports false.
func (q *pendingQueue) push(kick, analyzeAt, fireAt int64) bool {
	if q.count == len(q.items) {
		q.dropped++
		return false
	}
	it := &q.items[(q.head+q.count)%len(q.items)]
	it.kick = kick
	it.analyzeAt = analyzeAt
	it.fireAt = fireAt
	clear(it.offsets)
	clear(it.hasPeak)
	q.count++
	return true
}

// nextToAnalyze returns the oldest entry not yet analyzed if it is due at n.
func (q *pendingQueue) nextToAnalyze(n int64) *pendingKick {
	if q.analyzed == q.count {
		return nil
	}
	it := &q.items[(q.head+q.analyzed)%len(q.items)]
	if it.analyzeAt > n {
		return nil
	}
	q.analyzed++
	return it
}

// nextToFire returns the oldest entry if it is due at n. Only analyzed
// entries fire.
func (q *pendingQueue) nextToFire(n int64) *pendingKick {
	if q.analyzed == 0 {
		return nil
	}
	it := &q.items[q.head]
	if it.fireAt > n {
		return nil
	}
	return it
}

// pop removes the oldest entry.
func (q *pendingQueue) pop() {
	if q.count == 0 {
		return
	}
	q.head = (q.head + 1) % len(q.items)
	q.count--
	if q.analyzed > 0 {
		q.analyzed--
	}
}

func (q *pendingQueue) len() int {
	return q.count
}

func (q *pendingQueue) reset() {
	q.head = 0
	q.count = 0
	q.analyzed = 0
	q.dropped = 0
}
