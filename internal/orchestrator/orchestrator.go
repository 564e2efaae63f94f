// Package orchestrator selects and runs workloads in a fixed declared
// order, publishes remapped progress, honors cooperative cancellation, and
// assembles the final report.BenchmarkRun (C7). The orchestrator itself is
// single-threaded and blocking from the caller's perspective; individual
// workloads are free to spawn internal worker pools.
package orchestrator

import (
	"context"
	"fmt"

	"benchforge/internal/invariant"
	"benchforge/internal/report"
	"benchforge/internal/workload"
)

// InternalError wraps a C2/C3 invariant violation (percentile misorder,
// negative score) surfaced as a panic from inside a workload's Run. It is
// treated as a bug: the orchestrator recovers it, records full context,
// converts the affected workload to Failed, and continues the session. A
// panic originating from shared infrastructure (clock, worker pool) is
// deliberately NOT recovered here and propagates per spec.md §7.
type InternalError struct {
	WorkloadID string
	Err        error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in workload %s: %v", e.WorkloadID, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

// SysInfoProvider is the one-shot external collaborator that supplies the
// SystemInfo snapshot for the envelope.
type SysInfoProvider func() (report.SystemInfo, error)

// Observer receives per-workload lifecycle notifications as Run executes
// the session, so external collaborators (the run log, the live telemetry
// collector) stay in sync with the session without polling the returned
// BenchmarkRun. Both hooks are called for every workload Run iterates,
// regardless of outcome; Finished is called exactly once per Started.
type Observer interface {
	WorkloadStarted(id string)
	WorkloadFinished(id string, outcome workload.Outcome)
}

// CapabilityProvider is the optional external collaborator used by
// individual workloads (via their own wiring, not the orchestrator
// directly) to check host capabilities before running. Options carries no
// provider; each workload receives one through its own construction.
type CapabilityProvider interface {
	HasDisplayAdapter() bool
	CanDropFileCache() bool
	DurableSyncSupported() bool
}

// Registry holds the fixed declared iteration order of every known
// workload, keyed by ID. Order matters: later workloads may reuse scratch
// data or assumptions from earlier ones where documented, so iteration
// always follows Order, filtered by the caller's Selection, never the
// order Selection happens to list IDs in.
type Registry struct {
	Order     []string
	workloads map[string]workload.Workload
}

// NewRegistry builds a Registry from workloads in their declared order.
func NewRegistry(workloads ...workload.Workload) *Registry {
	r := &Registry{workloads: make(map[string]workload.Workload, len(workloads))}
	for _, w := range workloads {
		r.Order = append(r.Order, w.ID())
		r.workloads[w.ID()] = w
	}
	return r
}

// Lookup returns the workload registered under id, if any.
func (r *Registry) Lookup(id string) (workload.Workload, bool) {
	w, ok := r.workloads[id]
	return w, ok
}

// All returns every registered workload in declared order.
func (r *Registry) All() []workload.Workload {
	out := make([]workload.Workload, 0, len(r.Order))
	for _, id := range r.Order {
		out = append(out, r.workloads[id])
	}
	return out
}

// Options configures a single orchestrator session.
type Options struct {
	Selection   map[string]bool
	Progress    workload.Progress
	SysInfo     SysInfoProvider
	MachineName string
	Tags        []string
	Notes       string
	// Observer, if non-nil, is notified of every workload's start and
	// finish as Run iterates the session.
	Observer Observer
}

// progressSpan remaps a workload's local [0,1] fraction into its span of
// the overall session's [0,1] progress range before forwarding to the
// caller's Progress collaborator.
type progressSpan struct {
	outer      workload.Progress
	start, end float64
}

func (p *progressSpan) Update(fraction float64, message string) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	global := p.start + fraction*(p.end-p.start)
	p.outer.Update(global, message)
}

func (p *progressSpan) IsCancelled() bool { return p.outer.IsCancelled() }

// Run executes every workload in reg.Order that is present in
// opts.Selection, in that fixed order, and returns a well-formed
// BenchmarkRun. Cancellation observed mid-workload halts the loop after
// that workload's Outcome is recorded as Cancelled/contributes nothing;
// the run returned is still valid and emittable (spec.md §4.7, §7).
func Run(ctx context.Context, reg *Registry, opts Options) (*report.BenchmarkRun, error) {
	var sysInfo report.SystemInfo
	if opts.SysInfo != nil {
		info, err := opts.SysInfo()
		if err != nil {
			return nil, fmt.Errorf("collecting system info: %w", err)
		}
		sysInfo = info
	}

	run := report.NewBenchmarkRun(opts.MachineName, opts.Tags, opts.Notes, sysInfo)

	if opts.Progress == nil {
		opts.Progress = noProgress{}
	}

	selected := make([]workload.Workload, 0, len(reg.Order))
	for _, id := range reg.Order {
		if opts.Selection != nil && !opts.Selection[id] {
			continue
		}
		w, ok := reg.Lookup(id)
		if !ok {
			continue
		}
		selected = append(selected, w)
	}

	total := len(selected)
	for i, w := range selected {
		if opts.Progress.IsCancelled() {
			break
		}

		span := &progressSpan{
			outer: opts.Progress,
			start: float64(i) / float64(max(total, 1)),
			end:   float64(i+1) / float64(max(total, 1)),
		}

		if opts.Observer != nil {
			opts.Observer.WorkloadStarted(w.ID())
		}
		outcome := invokeRecovered(ctx, w, span)
		if opts.Observer != nil {
			opts.Observer.WorkloadFinished(w.ID(), outcome)
		}

		switch outcome.Kind {
		case workload.Completed:
			res := report.ToTestResult(w.ID(), w.Name(), w.Description(), *outcome.Result)
			run.Results.Append(w.Category(), res)
		case workload.Cancelled:
			run.Finalize()
			return run, nil
		case workload.Skipped, workload.Failed:
			// Contributes 0/0 to the category — nothing to append.
		}
	}

	run.Finalize()
	return run, nil
}

// invokeRecovered calls w.Run, converting a panic raised inside it into a
// Failed outcome carrying an *InternalError, but only when the panic value
// is an invariant.Violation — the marker stats/scoring raise for a genuine
// C2/C3 bug. Any other panic (clock, worker pool, or anything else) is
// infrastructure failure and is re-panicked, per spec.md §7.
func invokeRecovered(ctx context.Context, w workload.Workload, p workload.Progress) (outcome workload.Outcome) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		iv, ok := r.(invariant.Violation)
		if !ok {
			panic(r)
		}
		outcome = workload.Fail((&InternalError{WorkloadID: w.ID(), Err: iv}).Error(), nil)
	}()
	return w.Run(ctx, p)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// noProgress is used when the caller supplies no Progress collaborator, so
// workloads always have a non-nil Progress to call into.
type noProgress struct{}

func (noProgress) Update(float64, string) {}
func (noProgress) IsCancelled() bool      { return false }
