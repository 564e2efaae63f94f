// Package benchlog provides run-scoped logging for a benchmark session:
// a chronological event log, a verbose debug log, and an optional
// per-workload raw-sample dump. Adapted from log.Logger's multi-file
// layout, cut down from dsynth's eight build-result logs to the two a
// benchmark run needs plus the per-workload detail file from
// log.PackageLogger.
package benchlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Logger manages a session's log files.
type Logger struct {
	dir       string
	runFile   *os.File
	debugFile *os.File
	mu        sync.Mutex
}

// New creates a Logger writing into dir (created if absent).
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	l := &Logger{dir: dir}

	var err error
	l.runFile, err = os.Create(filepath.Join(dir, "00_run.log"))
	if err != nil {
		return nil, err
	}
	l.debugFile, err = os.Create(filepath.Join(dir, "01_debug.log"))
	if err != nil {
		l.runFile.Close()
		return nil, err
	}

	l.writeHeader()
	return l, nil
}

func (l *Logger) writeHeader() {
	timestamp := time.Now().Format(time.RFC3339)
	fmt.Fprintf(l.runFile, "benchforge run log - %s\n", timestamp)
	fmt.Fprintf(l.runFile, "%s\n\n", strings.Repeat("=", 70))
	fmt.Fprintf(l.debugFile, "Debug log - %s\n\n", timestamp)
}

// Close closes all log files.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.runFile != nil {
		l.runFile.Close()
	}
	if l.debugFile != nil {
		l.debugFile.Close()
	}
}

// WorkloadStarted logs a workload beginning execution.
func (l *Logger) WorkloadStarted(id string) {
	l.writeRun("START", id)
}

// WorkloadCompleted logs a Completed outcome with its earned score.
func (l *Logger) WorkloadCompleted(id string, score, maxScore int) {
	l.writeRun("COMPLETED", fmt.Sprintf("%s (score %d/%d)", id, score, maxScore))
}

// WorkloadSkipped logs a Skipped outcome and its reason.
func (l *Logger) WorkloadSkipped(id, reason string) {
	l.writeRun("SKIPPED", fmt.Sprintf("%s: %s", id, reason))
}

// WorkloadFailed logs a Failed outcome and its reason.
func (l *Logger) WorkloadFailed(id, reason string) {
	l.writeRun("FAILED", fmt.Sprintf("%s: %s", id, reason))
}

// WorkloadCancelled logs that the session was cancelled during id.
func (l *Logger) WorkloadCancelled(id string) {
	l.writeRun("CANCELLED", id)
}

func (l *Logger) writeRun(kind, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	timestamp := time.Now().Format("15:04:05")
	fmt.Fprintf(l.runFile, "[%s] %s: %s\n", timestamp, kind, detail)
	l.runFile.Sync()
}

// Debug logs verbose diagnostic detail, not surfaced in the run log.
func (l *Logger) Debug(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	timestamp := time.Now().Format("15:04:05")
	fmt.Fprintf(l.debugFile, "[%s] %s\n", timestamp, msg)
	l.debugFile.Sync()
}

// Summary writes the final session summary to the run log.
func (l *Logger) Summary(total, completed, skipped, failed int, overall, overallMax int, duration time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.runFile, "\n%s\n", strings.Repeat("=", 70))
	fmt.Fprintf(l.runFile, "RUN SUMMARY\n")
	fmt.Fprintf(l.runFile, "%s\n", strings.Repeat("=", 70))
	fmt.Fprintf(l.runFile, "Total workloads: %d\n", total)
	fmt.Fprintf(l.runFile, "Completed:       %d\n", completed)
	fmt.Fprintf(l.runFile, "Skipped:         %d\n", skipped)
	fmt.Fprintf(l.runFile, "Failed:          %d\n", failed)
	fmt.Fprintf(l.runFile, "Score:           %d/%d\n", overall, overallMax)
	fmt.Fprintf(l.runFile, "Duration:        %s\n", duration)
	fmt.Fprintf(l.runFile, "%s\n", strings.Repeat("=", 70))
	l.runFile.Sync()
}
