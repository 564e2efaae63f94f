package benchlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewCreatesBothLogFiles(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	for _, name := range []string{"00_run.log", "01_debug.log"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
}

func TestWorkloadEventsAppearInRunLog(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.WorkloadStarted("file_enum")
	l.WorkloadCompleted("file_enum", 80, 100)
	l.WorkloadSkipped("gpu_fill", "no adapter")
	l.WorkloadFailed("broken", "boom")
	l.WorkloadCancelled("cut_short")
	l.Close()

	data, err := os.ReadFile(filepath.Join(dir, "00_run.log"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"START: file_enum",
		"COMPLETED: file_enum (score 80/100)",
		"SKIPPED: gpu_fill: no adapter",
		"FAILED: broken: boom",
		"CANCELLED: cut_short",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("run log missing %q, got:\n%s", want, content)
		}
	}
}

func TestSummaryWritesTotalsAndScore(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Summary(5, 3, 1, 1, 240, 300, 2*time.Second)
	l.Close()

	data, err := os.ReadFile(filepath.Join(dir, "00_run.log"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "Score:           240/300") {
		t.Errorf("summary missing score line, got:\n%s", content)
	}
	if !strings.Contains(content, "Total workloads: 5") {
		t.Errorf("summary missing total line, got:\n%s", content)
	}
}
