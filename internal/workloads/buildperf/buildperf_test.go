package buildperf

import (
	"context"
	"testing"

	"benchforge/internal/scoring"
	"benchforge/internal/workload"
)

func TestWorkloadsDeclaredOrderAndIdentity(t *testing.T) {
	wls := Workloads()
	wantIDs := []string{"single_thread", "multi_thread", "mixed_rcw", "sustained_write"}
	if len(wls) != len(wantIDs) {
		t.Fatalf("got %d workloads, want %d", len(wls), len(wantIDs))
	}
	for i, w := range wls {
		if w.ID() != wantIDs[i] {
			t.Fatalf("workload[%d].ID() = %q, want %q", i, w.ID(), wantIDs[i])
		}
		if w.Category() != workload.BuildPerformance {
			t.Fatalf("workload %q Category() = %v, want BuildPerformance", w.ID(), w.Category())
		}
	}
}

func assertBestBandFirst(t *testing.T, name string, table scoring.Table) {
	t.Helper()
	for i := 1; i < len(table.Bands); i++ {
		prev, cur := table.Bands[i-1].Threshold, table.Bands[i].Threshold
		if table.Direction == scoring.HigherIsBetter && prev <= cur {
			t.Errorf("%s: HigherIsBetter bands must descend, got %v", name, table.Bands)
		}
	}
}

func TestScoringTablesAreMonotoneBestFirst(t *testing.T) {
	assertBestBandFirst(t, "single_thread", singleThreadTable)
	assertBestBandFirst(t, "multi_thread", multiThreadTable)
	assertBestBandFirst(t, "mixed_rcw", mixedRCWTable)
	assertBestBandFirst(t, "sustained_write", sustainedWriteTable)
}

func TestMultiThreadTableScalesSingleThreadByFour(t *testing.T) {
	for i := range singleThreadTable.Bands {
		want := singleThreadTable.Bands[i].Threshold * 4
		if multiThreadTable.Bands[i].Threshold != want {
			t.Fatalf("multiThreadTable.Bands[%d].Threshold = %v, want %v (4x single-thread)", i, multiThreadTable.Bands[i].Threshold, want)
		}
	}
}

func TestCompressOnceCompressesSmallBuffer(t *testing.T) {
	buf := randomBuffer(64*1024, 5)
	if _, _, err := compressOnce(buf); err != nil {
		t.Fatalf("compressOnce: %v", err)
	}
}

func TestRunUntilAccumulatesAtLeastMinSeconds(t *testing.T) {
	buf := randomBuffer(64*1024, 6)
	series, totalSec, err := runUntil(noopProgress{}, buf, 0.05)
	if err != nil {
		t.Fatalf("runUntil: %v", err)
	}
	if totalSec < 0.05 {
		t.Fatalf("totalSec = %v, want >= 0.05", totalSec)
	}
	if len(series) == 0 {
		t.Fatal("expected at least one recorded sample")
	}
}

func TestRunUntilRespectsCancellation(t *testing.T) {
	buf := randomBuffer(64*1024, 7)
	series, _, err := runUntil(&cancelledProgress{}, buf, 5.0)
	if err != nil {
		t.Fatalf("runUntil: %v", err)
	}
	if len(series) != 0 {
		t.Fatalf("cancelled runUntil should stop before recording any sample, got %v", series)
	}
}

type cancelledProgress struct{}

func (*cancelledProgress) Update(float64, string) {}
func (*cancelledProgress) IsCancelled() bool       { return true }

func TestMixedRCWChecksCancellationPerChunk(t *testing.T) {
	outcome := mixedRCW{}.Run(context.Background(), &cancelledProgress{})
	if outcome.Kind != workload.Cancelled {
		t.Fatalf("Kind = %v, want Cancelled when every chunk task observes cancellation", outcome.Kind)
	}
}

func TestNewPRNGNeverSticksAtZeroSeed(t *testing.T) {
	p := newPRNG(0)
	if p.state == 0 {
		t.Fatal("newPRNG(0) should substitute a non-zero seed to avoid a degenerate xorshift state")
	}
	if p.next() == 0 {
		t.Fatal("xorshift next() should not be trivially zero")
	}
}
