package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"benchforge/internal/benchlog"
	"benchforge/internal/config"
	"benchforge/internal/orchestrator"
	"benchforge/internal/report"
	"benchforge/internal/telemetry"
	"benchforge/internal/workload"
)

type fakeWorkload struct {
	id  string
	cat workload.Category
}

func (f fakeWorkload) ID() string                   { return f.id }
func (f fakeWorkload) Name() string                 { return f.id }
func (f fakeWorkload) Description() string          { return "" }
func (f fakeWorkload) Category() workload.Category  { return f.cat }
func (f fakeWorkload) EstimatedDurationSeconds() int { return 1 }
func (f fakeWorkload) Run(ctx context.Context, p workload.Progress) workload.Outcome {
	return workload.Complete(workload.Result{})
}

func testRegistry() *orchestrator.Registry {
	return orchestrator.NewRegistry(
		fakeWorkload{id: "file_enum", cat: workload.ProjectOperations},
		fakeWorkload{id: "single_thread", cat: workload.BuildPerformance},
		fakeWorkload{id: "vector_2d_fps", cat: workload.Graphics},
	)
}

func TestResolveSelectionDefaultsExcludeGraphics(t *testing.T) {
	cfg := &config.Config{}
	selection := resolveSelection(cfg, testRegistry())

	if !selection["file_enum"] || !selection["single_thread"] {
		t.Fatalf("non-graphics workloads should be selected by default: %v", selection)
	}
	if selection["vector_2d_fps"] {
		t.Fatalf("graphics workloads must opt in explicitly, got %v", selection)
	}
}

func TestResolveSelectionExplicitListIncludesGraphics(t *testing.T) {
	cfg := &config.Config{Selection: []string{"vector_2d_fps"}}
	selection := resolveSelection(cfg, testRegistry())

	if len(selection) != 1 || !selection["vector_2d_fps"] {
		t.Fatalf("explicit selection should be used verbatim, got %v", selection)
	}
}

func TestSessionObserverFansOutToLoggerAndCollector(t *testing.T) {
	dir := t.TempDir()
	logger, err := benchlog.New(dir)
	if err != nil {
		t.Fatalf("benchlog.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	collector := telemetry.NewCollector(ctx, 2)
	defer collector.Close()

	obs := &sessionObserver{logger: logger, collector: collector}

	obs.WorkloadStarted("file_enum")
	if collector.Snapshot().ActiveWorkload != "file_enum" {
		t.Fatalf("collector should see the active workload after WorkloadStarted")
	}

	obs.WorkloadFinished("file_enum", workload.Complete(workload.Result{Score: 400, MaxScore: 500}))
	obs.WorkloadStarted("random_read")
	obs.WorkloadFinished("random_read", workload.Skip("no scratch space"))
	logger.Close()

	if collector.Snapshot().Completed != 2 {
		t.Fatalf("collector.Completed = %d, want 2 after two WorkloadFinished calls", collector.Snapshot().Completed)
	}

	data, err := os.ReadFile(filepath.Join(dir, "00_run.log"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	log := string(data)
	for _, want := range []string{"file_enum", "random_read", "no scratch space"} {
		if !strings.Contains(log, want) {
			t.Fatalf("expected run log to mention %q, got:\n%s", want, log)
		}
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	run := report.NewBenchmarkRun("host", nil, "", report.SystemInfo{})
	run.Finalize()

	path := filepath.Join(t.TempDir(), "run.json")
	if err := writeJSON(run, path); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var decoded report.BenchmarkRun
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.ID != run.ID {
		t.Fatalf("decoded.ID = %q, want %q", decoded.ID, run.ID)
	}
}
