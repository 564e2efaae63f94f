// Package workerpool provides the bounded concurrent worker pool used
// internally by parallel workload kernels (multi_thread, mixed_rcw,
// memory_bandwidth). It is deliberately minimal — one pool per workload
// invocation, never shared across workloads, since spec.md §5 guarantees
// two workloads never run concurrently. Adapted from build.BuildContext's
// queue-and-waitgroup worker dispatch, generalised from "build a port" to
// "run an arbitrary per-worker task".
package workerpool

import (
	"context"
	"runtime"
	"sync"
)

// NumHardwareThreads reports the host's hardware thread count, the default
// pool size for a kernel that wants to use every thread (multi_thread,
// memory_bandwidth).
func NumHardwareThreads() int {
	return runtime.NumCPU()
}

// Run fans n independent tasks out across a pool bounded to size
// concurrent workers (runtime.NumCPU() when size <= 0), and returns each
// task's result slice indexed by task number. Each task receives its
// task index in [0, n) and the shared context, so it can honor cancellation
// by observing ctx.Done() at its own chunk boundaries.
func Run(ctx context.Context, size, n int, task func(ctx context.Context, worker int) []float64) [][]float64 {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if size > n {
		size = n
	}

	results := make([][]float64, n)
	sem := make(chan struct{}, size)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = task(ctx, i)
		}(i)
	}
	wg.Wait()
	return results
}
