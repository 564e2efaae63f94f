package responsiveness

import (
	"testing"

	"benchforge/internal/scoring"
	"benchforge/internal/workload"
	"benchforge/internal/workloads/projectops"
)

func TestWorkloadsDeclaredOrderAndIdentity(t *testing.T) {
	wls := Workloads()
	wantIDs := []string{"storage_latency", "memory_latency", "process_spawn", "thread_wake", "memory_bandwidth"}
	if len(wls) != len(wantIDs) {
		t.Fatalf("got %d workloads, want %d", len(wls), len(wantIDs))
	}
	for i, w := range wls {
		if w.ID() != wantIDs[i] {
			t.Fatalf("workload[%d].ID() = %q, want %q", i, w.ID(), wantIDs[i])
		}
		if w.Category() != workload.Responsiveness {
			t.Fatalf("workload %q Category() = %v, want Responsiveness", w.ID(), w.Category())
		}
	}
}

func TestStorageLatencySharesBandsButDeclaresItsOwnMax(t *testing.T) {
	if len(storageLatencyTable.Bands) != len(projectops.RandomReadTable.Bands) {
		t.Fatalf("storageLatencyTable should share random_read's band list")
	}
	for i, b := range storageLatencyTable.Bands {
		if b != projectops.RandomReadTable.Bands[i] {
			t.Fatalf("band %d = %v, want %v (shared with random_read)", i, b, projectops.RandomReadTable.Bands[i])
		}
	}
	if storageLatencyTable.Max != 700 {
		t.Fatalf("storageLatencyTable.Max = %d, want 700 (distinct from random_read's 600)", storageLatencyTable.Max)
	}
	if projectops.RandomReadTable.Max != 600 {
		t.Fatalf("RandomReadTable.Max = %d, want 600", projectops.RandomReadTable.Max)
	}
}

func assertBestBandFirst(t *testing.T, name string, table scoring.Table) {
	t.Helper()
	for i := 1; i < len(table.Bands); i++ {
		prev, cur := table.Bands[i-1].Threshold, table.Bands[i].Threshold
		switch table.Direction {
		case scoring.HigherIsBetter:
			if prev <= cur {
				t.Errorf("%s: HigherIsBetter bands must descend, got %v", name, table.Bands)
			}
		case scoring.LowerIsBetter:
			if prev >= cur {
				t.Errorf("%s: LowerIsBetter bands must ascend, got %v", name, table.Bands)
			}
		}
	}
}

func TestScoringTablesAreMonotoneBestFirst(t *testing.T) {
	assertBestBandFirst(t, "storage_latency", storageLatencyTable)
	assertBestBandFirst(t, "memory_latency", memoryLatencyTable)
	assertBestBandFirst(t, "process_spawn", processSpawnTable)
	assertBestBandFirst(t, "thread_wake", threadWakeTable)
	assertBestBandFirst(t, "memory_bandwidth", memoryBandwidthTable)
}

func TestDoNothingCommandIsPlatformAppropriate(t *testing.T) {
	name, _ := doNothingCommand()
	if name == "" {
		t.Fatal("doNothingCommand must return a runnable command name")
	}
}
