package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingConsumer struct {
	mu      sync.Mutex
	updates []EngineStatus
}

func (r *recordingConsumer) OnStatsUpdate(status EngineStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, status)
}

func (r *recordingConsumer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

func TestCollectorWorkloadCompletedIncrementsSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := NewCollector(ctx, 5)
	defer c.Close()

	c.WorkloadStarted("file_enum")
	if got := c.Snapshot().ActiveWorkload; got != "file_enum" {
		t.Fatalf("ActiveWorkload = %q, want file_enum", got)
	}
	c.WorkloadCompleted()
	snap := c.Snapshot()
	if snap.Completed != 1 {
		t.Fatalf("Completed = %d, want 1", snap.Completed)
	}
	if snap.ActiveWorkload != "" {
		t.Fatalf("ActiveWorkload should clear on completion, got %q", snap.ActiveWorkload)
	}
}

func TestCollectorNotifiesConsumersOnTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := NewCollector(ctx, 1)
	defer c.Close()

	consumer := &recordingConsumer{}
	c.AddConsumer(consumer)

	deadline := time.Now().Add(3 * time.Second)
	for consumer.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if consumer.count() == 0 {
		t.Fatal("consumer received no updates within 3s of 1Hz sampling")
	}
}

func TestCollectorCloseStopsTheSamplingLoop(t *testing.T) {
	c := NewCollector(context.Background(), 1)
	c.Close()
	// Close must return promptly and not panic on a second Close-adjacent
	// Snapshot call.
	_ = c.Snapshot()
}
