package kick

import (
	"testing"

	"github.com/tphakala/go-phase-sync/internal/testutil"
)

func BenchmarkDetector_ProcessBlock(b *testing.B) {
	d, err := New(DefaultConfig(testRate))
	if err != nil {
		b.Fatal(err)
	}
	onsets := testutil.Onsets(0, 24000, 2)
	sc := testutil.KickTrain(48000, onsets, 60, testRate, 1, 0.05, 12000)
	events := make([]Event, 8)
	var start int64

	b.ReportAllocs()
	for b.Loop() {
		d.ProcessBlock(sc, start, events)
		start += int64(len(sc))
	}
}
