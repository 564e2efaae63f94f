package telemetry

import "runtime"

// Throttler sizes down the worker pool used by a parallel workload kernel
// when 1-minute load or swap usage is elevated, so a benchmark run sharing
// the host with other work doesn't itself induce the contention it is
// trying to measure. Disabled by default — spec.md §4.5 wants the full
// hardware-thread count — and only meant for a "background run" profile.
// Adapted verbatim in algorithm from stats.WorkerThrottler's three-cap
// linear-interpolation scheme.
type Throttler struct {
	maxWorkers int
	ncpus      int
	disabled   bool
}

// NewThrottler creates a Throttler bounded at maxWorkers (runtime.NumCPU()
// when maxWorkers <= 0). If disabled is true, CalculateDynMax always
// returns maxWorkers.
func NewThrottler(maxWorkers int, disabled bool) *Throttler {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	return &Throttler{maxWorkers: maxWorkers, ncpus: runtime.NumCPU(), disabled: disabled}
}

// CalculateDynMax returns the dynamic worker limit given current load and
// swap usage. Returns maxWorkers when disabled, or when both metrics read
// zero (unavailable) to avoid false throttling.
func (t *Throttler) CalculateDynMax(load float64, swapPct int) int {
	if t.disabled {
		return t.maxWorkers
	}
	if load == 0 && swapPct == 0 {
		return t.maxWorkers
	}

	loadCap := t.calculateLoadCap(load)
	swapCap := t.calculateSwapCap(swapPct)

	dynMax := loadCap
	if swapCap < dynMax {
		dynMax = swapCap
	}
	if dynMax < 1 {
		dynMax = 1
	}
	return dynMax
}

// calculateLoadCap linearly interpolates between 1.5x and 5.0x ncpus load,
// reducing from 100% to 25% of maxWorkers.
func (t *Throttler) calculateLoadCap(load float64) int {
	minLoad := 1.5 * float64(t.ncpus)
	maxLoad := 5.0 * float64(t.ncpus)

	if load < minLoad {
		return t.maxWorkers
	}
	if load >= maxLoad {
		return t.maxWorkers / 4
	}
	ratio := (load - minLoad) / (maxLoad - minLoad)
	reduction := int(float64(t.maxWorkers) * 0.75 * ratio)
	return t.maxWorkers - reduction
}

// calculateSwapCap linearly interpolates between 10% and 40% swap usage,
// reducing from 100% to 25% of maxWorkers.
func (t *Throttler) calculateSwapCap(swapPct int) int {
	const minSwap = 10
	const maxSwap = 40

	if swapPct < minSwap {
		return t.maxWorkers
	}
	if swapPct >= maxSwap {
		return t.maxWorkers / 4
	}
	ratio := float64(swapPct-minSwap) / float64(maxSwap-minSwap)
	reduction := int(float64(t.maxWorkers) * 0.75 * ratio)
	return t.maxWorkers - reduction
}
