// Package telemetry publishes a live EngineStatus snapshot once per second
// while an orchestrator session runs, and sizes down the internal worker
// pool used by multi_thread/mixed_rcw/memory_bandwidth under host
// pressure. It is strictly additive to the workload.Progress contract in
// spec.md §4.6 — a workload never depends on telemetry, it only emits the
// update(fraction, message)/is_cancelled() calls the contract requires;
// telemetry observes those calls at the orchestrator boundary. Adapted
// from stats.TopInfo/StatsCollector/WorkerThrottler (go-synth), generalised
// from "build rate across packages" to "workload rate across a session".
package telemetry

import (
	"fmt"
	"time"
)

// EngineStatus is the unified live-status payload shared across consumers
// (the TUI dashboard, and ActiveSnapshot records in historydb).
type EngineStatus struct {
	ActiveWorkload string // ID of the workload currently running, "" if idle
	Completed      int
	Total          int
	Elapsed        time.Duration
	StartTime      time.Time

	// Rate is workloads/minute over a 60s sliding window; Impulse is
	// instantaneous completions/sec over the last 1s bucket — same shape
	// as TopInfo.Rate/Impulse, re-keyed to workload completions instead of
	// package builds.
	Rate    float64
	Impulse float64

	Load    float64
	SwapPct int
}

// StatsConsumer receives an EngineStatus snapshot once per second.
type StatsConsumer interface {
	OnStatsUpdate(status EngineStatus)
}

// FormatDuration renders a duration as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatRate formats a workloads/minute rate for display.
func FormatRate(rate float64) string {
	if rate < 0.01 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", rate)
}
