package projectops

import (
	"testing"

	"benchforge/internal/scoring"
	"benchforge/internal/workload"
)

func TestWorkloadsDeclaredOrderAndIdentity(t *testing.T) {
	wls := Workloads()
	wantIDs := []string{"file_enum", "random_read", "metadata_ops", "dir_traversal", "large_seq_read"}
	if len(wls) != len(wantIDs) {
		t.Fatalf("got %d workloads, want %d", len(wls), len(wantIDs))
	}
	for i, w := range wls {
		if w.ID() != wantIDs[i] {
			t.Fatalf("workload[%d].ID() = %q, want %q", i, w.ID(), wantIDs[i])
		}
		if w.Category() != workload.ProjectOperations {
			t.Fatalf("workload %q Category() = %v, want ProjectOperations", w.ID(), w.Category())
		}
		if w.Name() == "" || w.Description() == "" {
			t.Fatalf("workload %q missing Name/Description", w.ID())
		}
		if w.EstimatedDurationSeconds() <= 0 {
			t.Fatalf("workload %q EstimatedDurationSeconds() = %d, want > 0", w.ID(), w.EstimatedDurationSeconds())
		}
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
	assertBestBandFirst(t, "file_enum", fileEnumTable)
	assertBestBandFirst(t, "metadata_ops", metadataOpsTable)
	assertBestBandFirst(t, "dir_traversal", dirTraversalTable)
	assertBestBandFirst(t, "large_seq_read", largeSeqReadTable)
	assertBestBandFirst(t, "random_read", RandomReadTable)
}

func TestMetadataOpsScoreInverseLatencyHandlesZeroMean(t *testing.T) {
	score := metadataOpsTable.Score(0)
	if score != metadataOpsTable.Fallback {
		t.Fatalf("Score(0) = %d, want fallback %d", score, metadataOpsTable.Fallback)
	}
}
