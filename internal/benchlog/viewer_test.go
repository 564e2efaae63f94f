package benchlog

import (
	"bytes"
	"os"
	"testing"
	"time"
)

func TestDumpWritesEntireLogSoFar(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.WorkloadStarted("a")
	l.WorkloadCompleted("a", 10, 10)
	l.Close()

	var buf bytes.Buffer
	if err := NewViewer(dir).Dump(&buf); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("START: a")) {
		t.Fatalf("dump missing expected content, got:\n%s", buf.String())
	}
}

func TestFollowStopsWhenStopChannelCloses(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.WorkloadStarted("a")
	l.Close()

	stop := make(chan struct{})
	var buf bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- NewViewer(dir).Follow(&buf, 10*time.Millisecond, stop)
	}()

	time.Sleep(30 * time.Millisecond)
	close(stop)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Follow: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Follow did not return after stop was closed")
	}
	if !bytes.Contains(buf.Bytes(), []byte("START: a")) {
		t.Fatalf("follow missing content written before stop, got:\n%s", buf.String())
	}
}

func TestDumpMissingFileReturnsError(t *testing.T) {
	v := NewViewer(t.TempDir())
	err := v.Dump(new(bytes.Buffer))
	if err == nil || !os.IsNotExist(err) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}
}
