// Package common provides the scratch-lifecycle and reduce-then-score
// scaffolding shared by every concrete workload, so individual workload
// files only implement the measurement loop itself.
package common

import (
	"errors"
	"sync"

	"benchforge/internal/scoring"
	"benchforge/internal/scratch"
	"benchforge/internal/stats"
	"benchforge/internal/telemetry"
	"benchforge/internal/workload"
)

// pool holds the process-wide throttling configuration every parallel
// kernel's pool-sizing call reads from. It is configured once, before the
// orchestrator runs any workload (run.go calls Configure right after
// loading config.Config), not per-invocation — pool sizing is a host
// policy, not per-workload state.
var pool struct {
	mu          sync.RWMutex
	throttler   *telemetry.Throttler
	repetitions map[string]int
}

// Configure installs the throttling and per-workload repetition-count
// policy every workload's PoolSize/Repetitions call reads from. maxWorkers
// <= 0 means "every hardware thread" (telemetry.NewThrottler's default);
// throttleEnabled false makes PoolSize always return the requested cap
// unthrottled, matching spec.md §4.5's default of the full hardware-thread
// count. repetitions may be nil.
func Configure(maxWorkers int, throttleEnabled bool, repetitions map[string]int) {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	pool.throttler = telemetry.NewThrottler(maxWorkers, !throttleEnabled)
	pool.repetitions = repetitions
}

// Repetitions returns the configured repeat count for workload id, or def
// if Configure was never called or carries no override for id.
func Repetitions(id string, def int) int {
	pool.mu.RLock()
	defer pool.mu.RUnlock()
	if n, ok := pool.repetitions[id]; ok && n > 0 {
		return n
	}
	return def
}

// PoolSize returns the worker count multi_thread, mixed_rcw, and
// memory_bandwidth should use for their internal pools, given ceiling (the
// workload's own structural upper bound, e.g. mixed_rcw's min(threads, 8)).
// Before Configure is ever called, PoolSize is a no-op and returns ceiling.
func PoolSize(ceiling int) int {
	pool.mu.RLock()
	t := pool.throttler
	pool.mu.RUnlock()
	if t == nil {
		return ceiling
	}
	load, swapPct := telemetry.CurrentLoadAndSwap()
	if dyn := t.CalculateDynMax(load, swapPct); dyn < ceiling {
		return dyn
	}
	return ceiling
}

// WithScratch acquires a scratch area under base with the given prefix,
// invokes fn, and releases the area on every exit path — success,
// failure, or cancellation — regardless of what fn returns. A failed
// acquisition converts directly to a Skipped outcome, matching the
// SetupError -> Skipped conversion in spec.md §7.
func WithScratch(base, prefix string, fn func(area *scratch.Area) workload.Outcome) workload.Outcome {
	area, err := scratch.Acquire(base, prefix)
	if err != nil {
		return workload.Skip(err.Error())
	}
	defer area.Release()
	return fn(area)
}

// Reduced is the outcome of reducing a raw sample series and scoring its
// primary metric.
type Reduced struct {
	Details stats.TestDetails
	Value   float64
	Score   int
}

// ReduceAndScore reduces series with the given outlier policy, derives the
// primary metric via valueOf, and scores it with table. A SampleError from
// the reduction step is the caller's cue to return a Failed outcome rather
// than Completed — SampleError is always fatal to the workload per
// spec.md §7.
func ReduceAndScore(series []float64, durationSec float64, policy stats.OutlierPolicy, table scoring.Table, valueOf func(stats.TestDetails) float64) (Reduced, error) {
	details, err := stats.ReduceWithPolicy(series, durationSec, policy)
	if err != nil {
		return Reduced{}, err
	}
	value := valueOf(details)
	return Reduced{Details: details, Value: value, Score: table.Score(value)}, nil
}

// ToResult assembles a workload.Result from a Reduced measurement, a unit,
// and the table's declared maximum.
func ToResult(r Reduced, unit string, maxScore int, secondary map[string]float64) workload.Result {
	var pct *workload.ResultPercentiles
	if r.Details.Percentiles != nil {
		pct = &workload.ResultPercentiles{
			P50: r.Details.Percentiles.P50, P75: r.Details.Percentiles.P75,
			P90: r.Details.Percentiles.P90, P95: r.Details.Percentiles.P95,
			P99: r.Details.Percentiles.P99, P999: r.Details.Percentiles.P999,
			LowSample: r.Details.Percentiles.LowSample,
		}
	}
	return workload.Result{
		Value:      r.Value,
		Unit:       unit,
		Score:      r.Score,
		MaxScore:   maxScore,
		Iterations: r.Details.Iterations,
		DurationS:  r.Details.DurationSec,
		Min:        r.Details.Min,
		Max:        r.Details.Max,
		Mean:       r.Details.Mean,
		Median:     r.Details.Median,
		StdDev:     r.Details.StdDev,
		Percentile: pct,
		Secondary:  secondary,
	}
}

// IsCancelled is a tiny helper for the common `if progress.IsCancelled()
// { return workload.Cancel() }` check sprinkled through measurement loops.
func IsCancelled(p workload.Progress) bool {
	return p.IsCancelled()
}

// ErrCancelled lets internal helpers (e.g. a worker-pool stage) signal
// cancellation through a normal error return, which the calling workload
// then converts into workload.Cancel().
var ErrCancelled = errors.New("cancelled")
