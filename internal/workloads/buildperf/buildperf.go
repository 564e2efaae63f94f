// Package buildperf implements the BuildPerformance category named in
// spec.md §4.5.2: single- and multi-threaded compute throughput, a mixed
// read-compress-write pipeline, and sustained durable writes. Compute
// kernels compress random data with LZ4 (github.com/pierrec/lz4/v4), the
// compression library this repo's surrounding example pack standardises
// on, as a compute-bound stand-in for "a representative build workload"
// rather than invoking an actual compiler toolchain.
package buildperf

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"

	"benchforge/internal/capability"
	"benchforge/internal/clock"
	"benchforge/internal/scoring"
	"benchforge/internal/scratch"
	"benchforge/internal/stats"
	"benchforge/internal/workerpool"
	"benchforge/internal/workload"
	"benchforge/internal/workloads/common"
	"benchforge/internal/workloads/registry"
)

func init() {
	for _, w := range Workloads() {
		registry.Register(w)
	}
}

// Workloads returns every BuildPerformance workload in the fixed order
// declared by the table in spec.md §4.5.2.
func Workloads() []workload.Workload {
	return []workload.Workload{
		singleThread{},
		multiThread{},
		mixedRCW{},
		sustainedWrite{Capability: capability.Host()},
	}
}

const (
	singleThreadBufSize = 256 << 20 // 256 MiB
	minRunDuration       = 5.0       // seconds
)

// compressOnce streams src through an lz4.Writer into io.Discard and
// returns the start and end instants of the pass. Compressing into Discard isolates the
// CPU-bound compression cost from any I/O the kernel isn't meant to
// measure (mixed_rcw adds real I/O deliberately, on top of this).
func compressOnce(src []byte) (clock.Instant, clock.Instant, error) {
	w := lz4.NewWriter(io.Discard)
	start := clock.Now()
	if _, err := w.Write(src); err != nil {
		return start, start, err
	}
	if err := w.Close(); err != nil {
		return start, start, err
	}
	return start, clock.Now(), nil
}

func randomBuffer(size int, seed int64) []byte {
	buf := make([]byte, size)
	src := newPRNG(seed)
	for i := range buf {
		buf[i] = byte(src.next())
	}
	return buf
}

// newPRNG is a tiny xorshift generator used only to fill compute-kernel
// input buffers — no cryptographic or statistical quality is required,
// just enough entropy that LZ4 can't degenerate to a trivial run-length
// case on an all-zero buffer.
type prng struct{ state uint64 }

func newPRNG(seed int64) *prng {
	s := uint64(seed)
	if s == 0 {
		s = 1
	}
	return &prng{state: s}
}

func (p *prng) next() uint64 {
	p.state ^= p.state << 13
	p.state ^= p.state >> 7
	p.state ^= p.state << 17
	return p.state
}

// --- single_thread ---

type singleThread struct{}

func (singleThread) ID() string                   { return "single_thread" }
func (singleThread) Name() string                 { return "Single-Thread Compute" }
func (singleThread) Description() string {
	return "Repeatedly LZ4-compresses a 256 MiB random buffer on a single thread for at least 5 seconds."
}
func (singleThread) Category() workload.Category  { return workload.BuildPerformance }
func (singleThread) EstimatedDurationSeconds() int { return 8 }

var singleThreadTable = scoring.Table{
	Direction: scoring.HigherIsBetter,
	Bands: []scoring.Band{
		{Threshold: 700, Points: 600},
		{Threshold: 500, Points: 450},
		{Threshold: 350, Points: 300},
		{Threshold: 200, Points: 150},
		{Threshold: 100, Points: 50},
	},
	Fallback: 10,
	Max:      600,
}

func (singleThread) Run(ctx context.Context, p workload.Progress) workload.Outcome {
	buf := randomBuffer(singleThreadBufSize, 1)
	series, totalSec, err := runUntil(p, buf, minRunDuration)
	if p.IsCancelled() {
		return workload.Cancel()
	}
	if err != nil {
		return workload.Fail(err.Error(), series)
	}
	reduced, err := common.ReduceAndScore(series, totalSec, stats.OutlierPolicy{}, singleThreadTable, func(d stats.TestDetails) float64 { return d.Mean })
	if err != nil {
		return workload.Fail(err.Error(), series)
	}
	return workload.Complete(common.ToResult(reduced, "MB/s", singleThreadTable.Max, nil))
}

// runUntil repeatedly compresses buf, recording each pass's MB/s, until
// the cumulative elapsed time reaches minSeconds.
func runUntil(p workload.Progress, buf []byte, minSeconds float64) ([]float64, float64, error) {
	sampler := clock.NewSampler("MB/s", 16)
	var totalSec float64
	for totalSec < minSeconds {
		if p.IsCancelled() {
			return sampler.Series(), totalSec, nil
		}
		start, end, err := compressOnce(buf)
		if err != nil {
			return sampler.Series(), totalSec, err
		}
		elapsed := clock.Since(start, end).Seconds()
		totalSec += elapsed
		sampler.Record(float64(len(buf)) / (1024 * 1024) / elapsed)
		p.Update(min1(totalSec/minSeconds), "compressing")
	}
	return sampler.Series(), totalSec, nil
}

func min1(f float64) float64 {
	if f > 1 {
		return 1
	}
	return f
}

// --- multi_thread ---

type multiThread struct{}

func (multiThread) ID() string                   { return "multi_thread" }
func (multiThread) Name() string                 { return "Multi-Thread Compute" }
func (multiThread) Description() string {
	return "Runs the single-thread compression kernel on every hardware thread in parallel for at least 5 seconds."
}
func (multiThread) Category() workload.Category  { return workload.BuildPerformance }
func (multiThread) EstimatedDurationSeconds() int { return 8 }

var multiThreadTable = scoring.Table{
	Direction: scoring.HigherIsBetter,
	Bands: []scoring.Band{
		{Threshold: 700 * 4, Points: 600},
		{Threshold: 500 * 4, Points: 450},
		{Threshold: 350 * 4, Points: 300},
		{Threshold: 200 * 4, Points: 150},
		{Threshold: 100 * 4, Points: 50},
	},
	Fallback: 10,
	Max:      600,
}

func (multiThread) Run(ctx context.Context, p workload.Progress) workload.Outcome {
	threads := common.PoolSize(workerpool.NumHardwareThreads())

	// A short single-thread baseline run, kept local to this workload so
	// it stays stateless per spec.md §4.6 rather than depending on the
	// separately-scored single_thread workload's result.
	baselineBuf := randomBuffer(singleThreadBufSize, 2)
	baselineSeries, _, err := runUntil(noopProgress{}, baselineBuf, 1.0)
	if err != nil {
		return workload.Fail(err.Error(), nil)
	}
	baselineDetails, err := stats.Reduce(baselineSeries, 0)
	if err != nil {
		return workload.Fail(err.Error(), nil)
	}

	perThread := workerpool.Run(ctx, threads, threads, func(ctx context.Context, worker int) []float64 {
		buf := randomBuffer(singleThreadBufSize, int64(worker+10))
		series, _, _ := runUntil(p, buf, minRunDuration)
		return series
	})
	if p.IsCancelled() {
		return workload.Cancel()
	}

	var flattened []float64
	for _, series := range perThread {
		flattened = append(flattened, series...)
	}

	// The primary metric is the sum of each thread's own mean throughput,
	// not a statistic of the flattened series — threads can complete
	// different sample counts in the same wall-clock budget.
	reduced, err := common.ReduceAndScore(flattened, minRunDuration, stats.OutlierPolicy{}, multiThreadTable, func(stats.TestDetails) float64 {
		return sumMeans(perThread)
	})
	if err != nil {
		return workload.Fail(err.Error(), flattened)
	}

	efficiency := 0.0
	if baselineDetails.Mean > 0 && threads > 0 {
		efficiency = reduced.Value / (baselineDetails.Mean * float64(threads))
	}

	return workload.Complete(common.ToResult(reduced, "MB/s", multiThreadTable.Max, map[string]float64{
		"scaling_efficiency": efficiency,
		"threads":            float64(threads),
	}))
}

func sumMeans(perThread [][]float64) float64 {
	var sum float64
	for _, series := range perThread {
		if len(series) == 0 {
			continue
		}
		var s float64
		for _, v := range series {
			s += v
		}
		sum += s / float64(len(series))
	}
	return sum
}

type noopProgress struct{}

func (noopProgress) Update(float64, string) {}
func (noopProgress) IsCancelled() bool      { return false }

// --- mixed_rcw ---

type mixedRCW struct{}

func (mixedRCW) ID() string                   { return "mixed_rcw" }
func (mixedRCW) Name() string                 { return "Mixed Read-Compress-Write" }
func (mixedRCW) Description() string {
	return "Reads 4 MiB chunks from a 256 MiB input, compresses, and writes to scratch, overlapped across a bounded thread pool."
}
func (mixedRCW) Category() workload.Category  { return workload.BuildPerformance }
func (mixedRCW) EstimatedDurationSeconds() int { return 10 }

var mixedRCWTable = scoring.Table{
	Direction: scoring.HigherIsBetter,
	Bands: []scoring.Band{
		{Threshold: 1500, Points: 700},
		{Threshold: 1000, Points: 550},
		{Threshold: 600, Points: 350},
		{Threshold: 300, Points: 150},
	},
	Fallback: 20,
	Max:      700,
}

const (
	mixedRCWInputSize = 256 << 20
	mixedRCWChunkSize = 4 << 20
)

func (mixedRCW) Run(ctx context.Context, p workload.Progress) workload.Outcome {
	return common.WithScratch("", "mixed_rcw", func(area *scratch.Area) workload.Outcome {
		input := randomBuffer(mixedRCWInputSize, 3)
		chunks := mixedRCWInputSize / mixedRCWChunkSize
		poolSize := workerpool.NumHardwareThreads()
		if poolSize > 8 {
			poolSize = 8
		}
		poolSize = common.PoolSize(poolSize)

		start := clock.Now()
		results := workerpool.Run(ctx, poolSize, chunks, func(ctx context.Context, worker int) []float64 {
			if p.IsCancelled() {
				return nil
			}
			chunk := input[worker*mixedRCWChunkSize : (worker+1)*mixedRCWChunkSize]
			outPath := filepath.Join(area.Path(), fmt.Sprintf("chunk%06d", worker))
			f, err := os.Create(outPath)
			if err != nil {
				return nil
			}
			defer f.Close()
			w := lz4.NewWriter(f)
			_, werr := w.Write(chunk)
			if werr == nil {
				werr = w.Close()
			}
			if werr != nil {
				return nil
			}
			return []float64{float64(len(chunk))}
		})
		elapsed := clock.Since(start, clock.Now())

		var totalBytes float64
		for _, r := range results {
			if len(r) == 1 {
				totalBytes += r[0]
			}
		}
		if p.IsCancelled() {
			return workload.Cancel()
		}

		mbps := totalBytes / (1024 * 1024) / elapsed.Seconds()
		series := []float64{mbps}
		reduced, err := common.ReduceAndScore(series, elapsed.Seconds(), stats.OutlierPolicy{}, mixedRCWTable, func(d stats.TestDetails) float64 { return d.Mean })
		if err != nil {
			return workload.Fail(err.Error(), series)
		}
		return workload.Complete(common.ToResult(reduced, "MB/s", mixedRCWTable.Max, nil))
	})
}

// --- sustained_write ---

type sustainedWrite struct {
	Capability capability.Provider
}

func (sustainedWrite) ID() string                   { return "sustained_write" }
func (sustainedWrite) Name() string                 { return "Sustained Write" }
func (sustainedWrite) Description() string {
	return "Writes 4 GiB in 4 MiB chunks, syncing durably every 256 MiB, and reports the median throughput of each window."
}
func (sustainedWrite) Category() workload.Category  { return workload.BuildPerformance }
func (sustainedWrite) EstimatedDurationSeconds() int { return 25 }

var sustainedWriteTable = scoring.Table{
	Direction: scoring.HigherIsBetter,
	Bands: []scoring.Band{
		{Threshold: 2500, Points: 600},
		{Threshold: 1500, Points: 450},
		{Threshold: 800, Points: 300},
		{Threshold: 400, Points: 150},
		{Threshold: 200, Points: 50},
	},
	Fallback: 10,
	Max:      600,
}

const (
	sustainedWriteTotal  = 4 << 30 // 4 GiB
	sustainedWriteChunk  = 4 << 20 // 4 MiB
	sustainedWriteWindow = 256 << 20
)

func (w sustainedWrite) Run(ctx context.Context, p workload.Progress) workload.Outcome {
	return common.WithScratch("", "sustained_write", func(area *scratch.Area) workload.Outcome {
		path := filepath.Join(area.Path(), "sustained.bin")
		f, err := os.Create(path)
		if err != nil {
			return workload.Skip(err.Error())
		}
		defer f.Close()

		chunk := make([]byte, sustainedWriteChunk)
		rng := newPRNG(11)
		for i := range chunk {
			chunk[i] = byte(rng.next())
		}

		chunksPerWindow := sustainedWriteWindow / sustainedWriteChunk
		windows := sustainedWriteTotal / sustainedWriteWindow
		sampler := clock.NewSampler("MB/s", windows)

		for win := 0; win < windows; win++ {
			windowStart := clock.Now()
			for c := 0; c < chunksPerWindow; c++ {
				if p.IsCancelled() {
					return workload.Cancel()
				}
				if _, err := f.Write(chunk); err != nil {
					return workload.Fail(err.Error(), sampler.Series())
				}
			}

			durable := w.Capability != nil && w.Capability.DurableSyncSupported()
			if durable {
				if err := f.Sync(); err != nil {
					return workload.Fail(err.Error(), sampler.Series())
				}
			}
			elapsed := clock.Since(windowStart, clock.Now())
			sampler.Record(float64(sustainedWriteWindow) / (1024 * 1024) / elapsed.Seconds())
			p.Update(float64(win+1)/float64(windows), "sustained write window complete")
		}

		reduced, err := common.ReduceAndScore(sampler.Series(), 0, stats.OutlierPolicy{}, sustainedWriteTable, func(d stats.TestDetails) float64 { return d.Median })
		if err != nil {
			return workload.Fail(err.Error(), sampler.Series())
		}
		return workload.Complete(common.ToResult(reduced, "MB/s", sustainedWriteTable.Max, nil))
	})
}
