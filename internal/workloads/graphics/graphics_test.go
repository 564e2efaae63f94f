package graphics

import (
	"context"
	"testing"

	"benchforge/internal/capability"
	"benchforge/internal/workload"
)

type noopProgress struct{}

func (noopProgress) Update(float64, string) {}
func (noopProgress) IsCancelled() bool      { return false }

func TestWorkloadsDeclaredOrderAndIdentity(t *testing.T) {
	wls := Workloads()
	wantIDs := []string{"adapter_classification", "vector_2d_fps", "mesh_3d_fps", "frame_time_consistency", "texture_upload"}
	if len(wls) != len(wantIDs) {
		t.Fatalf("got %d workloads, want %d", len(wls), len(wantIDs))
	}
	for i, w := range wls {
		if w.ID() != wantIDs[i] {
			t.Fatalf("workload[%d].ID() = %q, want %q", i, w.ID(), wantIDs[i])
		}
		if w.Category() != workload.Graphics {
			t.Fatalf("workload %q Category() = %v, want Graphics", w.ID(), w.Category())
		}
	}
}

func TestEveryWorkloadSkipsWithoutDisplayAdapter(t *testing.T) {
	noAdapter := capability.Mock{DisplayAdapter: false}
	tests := []workload.Workload{
		adapterClass{Capability: noAdapter},
		vector2D{Capability: noAdapter},
		mesh3D{Capability: noAdapter},
		frameTimeConsistency{Capability: noAdapter},
		textureUpload{Capability: noAdapter},
	}
	for _, w := range tests {
		outcome := w.Run(context.Background(), noopProgress{})
		if outcome.Kind != workload.Skipped {
			t.Errorf("%s: Kind = %v, want Skipped when no display adapter is present", w.ID(), outcome.Kind)
		}
	}
}

func TestAdapterClassCompletesWithDisplayAdapter(t *testing.T) {
	w := adapterClass{Capability: capability.Mock{DisplayAdapter: true}}
	outcome := w.Run(context.Background(), noopProgress{})
	if outcome.Kind != workload.Completed {
		t.Fatalf("Kind = %v, want Completed", outcome.Kind)
	}
	if outcome.Result.Score != adapterClassTable.Max {
		t.Fatalf("Score = %d, want max %d for a present adapter", outcome.Result.Score, adapterClassTable.Max)
	}
}

func TestTextureUploadCompletesWithDisplayAdapter(t *testing.T) {
	w := textureUpload{Capability: capability.Mock{DisplayAdapter: true}}
	outcome := w.Run(context.Background(), noopProgress{})
	if outcome.Kind != workload.Completed {
		t.Fatalf("Kind = %v, want Completed", outcome.Kind)
	}
	if outcome.Result.Score < 0 || outcome.Result.Score > textureUploadTable.Max {
		t.Fatalf("Score = %d out of range [0,%d]", outcome.Result.Score, textureUploadTable.Max)
	}
}

func TestSimulatedFrameSeriesStopsOnCancellation(t *testing.T) {
	series, err := simulatedFrameSeries(cancelledProgress{}, 500)
	if err != nil {
		t.Fatalf("simulatedFrameSeries: %v", err)
	}
	if len(series) != 0 {
		t.Fatalf("cancelled frame series should stop immediately, got %d samples", len(series))
	}
}

type cancelledProgress struct{}

func (cancelledProgress) Update(float64, string) {}
func (cancelledProgress) IsCancelled() bool      { return true }
