// Package projectops implements the ProjectOperations category named in
// spec.md §4.5.1: file enumeration, random reads, metadata churn,
// directory traversal, and large sequential reads against a scratch file
// tree. Each workload registers itself with registry.Register from init(),
// in the table's declared order.
package projectops

import (
	"context"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"

	"benchforge/internal/capability"
	"benchforge/internal/clock"
	"benchforge/internal/scoring"
	"benchforge/internal/scratch"
	"benchforge/internal/stats"
	"benchforge/internal/workload"
	"benchforge/internal/workloads/common"
	"benchforge/internal/workloads/registry"
)

func init() {
	for _, w := range Workloads() {
		registry.Register(w)
	}
}

// Workloads returns every ProjectOperations workload in the fixed order
// declared by the table in spec.md §4.5.1. Exported so
// internal/workloads.DefaultRegistry can assemble the full cross-category
// order explicitly, rather than depending on Go's package init order
// across the sibling workloads/* packages.
func Workloads() []workload.Workload {
	return []workload.Workload{
		fileEnum{},
		randomRead{},
		metadataOps{},
		dirTraversal{},
		largeSeqRead{Capability: capability.Host()},
	}
}

const (
	treeDirs        = 500
	treeFilesPerDir = 60 // 500 * 60 = 30,000 files
)

// --- file_enum ---

type fileEnum struct{}

func (fileEnum) ID() string                     { return "file_enum" }
func (fileEnum) Name() string                   { return "File Enumeration" }
func (fileEnum) Description() string {
	return "Creates 30,000 small files across 500 directories and enumerates the tree recursively five times."
}
func (fileEnum) Category() workload.Category    { return workload.ProjectOperations }
func (fileEnum) EstimatedDurationSeconds() int   { return 20 }

var fileEnumTable = scoring.Table{
	Direction: scoring.HigherIsBetter,
	Bands: []scoring.Band{
		{Threshold: 60000, Points: 500},
		{Threshold: 45000, Points: 400},
		{Threshold: 30000, Points: 300},
		{Threshold: 15000, Points: 150},
		{Threshold: 5000, Points: 50},
	},
	Fallback: 25,
	Max:      500,
}

func (fileEnum) Run(ctx context.Context, p workload.Progress) workload.Outcome {
	return common.WithScratch("", "file_enum", func(area *scratch.Area) workload.Outcome {
		if err := area.CreateTree(treeDirs, treeFilesPerDir, 512, scratch.Zero, 1); err != nil {
			return workload.Skip(err.Error())
		}
		p.Update(0.3, "tree created")

		passes := common.Repetitions("file_enum", 5)
		sampler := clock.NewSampler("files/s", passes)
		for i := 0; i < passes; i++ {
			if p.IsCancelled() {
				return workload.Cancel()
			}
			start := clock.Now()
			count, err := enumerate(area.Path())
			elapsed := clock.Since(start, clock.Now())
			if err != nil {
				return workload.Fail(err.Error(), sampler.Series())
			}
			sampler.Record(float64(count) / elapsed.Seconds())
			p.Update(0.3+0.7*float64(i+1)/passes, "enumeration pass complete")
		}

		reduced, err := common.ReduceAndScore(sampler.Series(), 0, stats.OutlierPolicy{Warmup: 1}, fileEnumTable, func(d stats.TestDetails) float64 { return d.Median })
		if err != nil {
			return workload.Fail(err.Error(), sampler.Series())
		}
		return workload.Complete(common.ToResult(reduced, "files/s", fileEnumTable.Max, nil))
	})
}

func enumerate(root string) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	return count, err
}

// --- random_read ---

type randomRead struct{}

func (randomRead) ID() string                   { return "random_read" }
func (randomRead) Name() string                 { return "Random Read Latency" }
func (randomRead) Description() string {
	return "Issues 10,000 random 4 KiB aligned reads against a 1 GiB file and measures per-read latency."
}
func (randomRead) Category() workload.Category  { return workload.ProjectOperations }
func (randomRead) EstimatedDurationSeconds() int { return 15 }

// RandomReadTable is shared with responsiveness.storageLatency per
// spec.md §9's resolution of the source's ambiguous overlap between the
// two workloads: distinct categories, same band table.
var RandomReadTable = scoring.Table{
	Direction: scoring.LowerIsBetter,
	Bands: []scoring.Band{
		{Threshold: 0.5, Points: 700},
		{Threshold: 1, Points: 550},
		{Threshold: 2, Points: 400},
		{Threshold: 5, Points: 250},
		{Threshold: 10, Points: 150},
		{Threshold: 25, Points: 75},
		{Threshold: 50, Points: 30},
	},
	Fallback: 10,
	Max:      600,
}

const (
	randomReadFileSize = 1 << 30 // 1 GiB
	randomReadChunk    = 4096
	randomReadCount    = 10000
)

func (randomRead) Run(ctx context.Context, p workload.Progress) workload.Outcome {
	return common.WithScratch("", "random_read", func(area *scratch.Area) workload.Outcome {
		if err := area.CreateFile("data.bin", randomReadFileSize, scratch.Random, 42); err != nil {
			return workload.Skip(err.Error())
		}
		p.Update(0.2, "data file created")

		f, err := os.Open(filepath.Join(area.Path(), "data.bin"))
		if err != nil {
			return workload.Skip(err.Error())
		}
		defer f.Close()

		series, outcome := timedRandomReads(p, f, randomReadFileSize, 0.2, 1.0)
		if outcome != nil {
			return *outcome
		}

		reduced, err := common.ReduceAndScore(series, 0, stats.OutlierPolicy{Warmup: 100, TrimWorstStall: true}, RandomReadTable, func(d stats.TestDetails) float64 { return d.Percentiles.P99 })
		if err != nil {
			return workload.Fail(err.Error(), series)
		}
		return workload.Complete(common.ToResult(reduced, "ms", RandomReadTable.Max, nil))
	})
}

// timedRandomReads performs randomReadCount 4 KiB reads at uniformly
// random aligned offsets, recording per-read latency in milliseconds.
// Used by random_read only; responsiveness.storage_latency times its own
// reads (randomReadSeries) against its own data file.
func timedRandomReads(p workload.Progress, f *os.File, fileSize int64, progStart, progEnd float64) ([]float64, *workload.Outcome) {
	buf := make([]byte, randomReadChunk)
	maxOffset := fileSize/randomReadChunk - 1
	rng := rand.New(rand.NewSource(7))
	sampler := clock.NewSampler("ms", randomReadCount)

	for i := 0; i < randomReadCount; i++ {
		if i%256 == 0 && p.IsCancelled() {
			out := workload.Cancel()
			return nil, &out
		}
		offset := rng.Int63n(maxOffset+1) * randomReadChunk
		start := clock.Now()
		if _, err := f.ReadAt(buf, offset); err != nil {
			out := workload.Fail(err.Error(), sampler.Series())
			return nil, &out
		}
		elapsed := clock.Since(start, clock.Now())
		sampler.Record(float64(elapsed.Microseconds()) / 1000.0)
		if i%500 == 0 {
			p.Update(progStart+(progEnd-progStart)*float64(i)/randomReadCount, "reading")
		}
	}
	return sampler.Series(), nil
}

// --- metadata_ops ---

type metadataOps struct{}

func (metadataOps) ID() string                     { return "metadata_ops" }
func (metadataOps) Name() string                   { return "Metadata Operations" }
func (metadataOps) Description() string {
	return "Creates, writes 4 KiB to, closes, and deletes a file 5,000 times in a flat directory."
}
func (metadataOps) Category() workload.Category    { return workload.ProjectOperations }
func (metadataOps) EstimatedDurationSeconds() int   { return 10 }

var metadataOpsTable = scoring.Table{
	Direction: scoring.HigherIsBetter,
	Bands: []scoring.Band{
		{Threshold: 5000, Points: 500},
		{Threshold: 3000, Points: 350},
		{Threshold: 1500, Points: 200},
		{Threshold: 500, Points: 100},
	},
	Fallback: 25,
	Max:      500,
}

const metadataOpsIterations = 5000

func (metadataOps) Run(ctx context.Context, p workload.Progress) workload.Outcome {
	return common.WithScratch("", "metadata_ops", func(area *scratch.Area) workload.Outcome {
		iterations := common.Repetitions("metadata_ops", metadataOpsIterations)
		buf := make([]byte, 4096)
		sampler := clock.NewSampler("s", iterations)

		for i := 0; i < iterations; i++ {
			if i%200 == 0 && p.IsCancelled() {
				return workload.Cancel()
			}
			path := filepath.Join(area.Path(), "m"+strconv.Itoa(i))

			start := clock.Now()
			f, err := os.Create(path)
			if err == nil {
				_, err = f.Write(buf)
			}
			if err == nil {
				err = f.Close()
			}
			if err == nil {
				err = os.Remove(path)
			}
			elapsed := clock.Since(start, clock.Now())
			if err != nil {
				return workload.Fail(err.Error(), sampler.Series())
			}
			sampler.Record(elapsed.Seconds())
			if i%500 == 0 {
				p.Update(float64(i)/float64(iterations), "metadata churn")
			}
		}

		reduced, err := common.ReduceAndScore(sampler.Series(), 0, stats.OutlierPolicy{Warmup: 50}, metadataOpsTable, func(d stats.TestDetails) float64 {
			if d.Mean <= 0 {
				return 0
			}
			return 1 / d.Mean
		})
		if err != nil {
			return workload.Fail(err.Error(), sampler.Series())
		}
		return workload.Complete(common.ToResult(reduced, "ops/s", metadataOpsTable.Max, nil))
	})
}

// --- dir_traversal ---

type dirTraversal struct{}

func (dirTraversal) ID() string                   { return "dir_traversal" }
func (dirTraversal) Name() string                 { return "Directory Traversal" }
func (dirTraversal) Description() string {
	return "Enumerates a 30,000-file tree and reads the first 1 KiB of each file."
}
func (dirTraversal) Category() workload.Category  { return workload.ProjectOperations }
func (dirTraversal) EstimatedDurationSeconds() int { return 20 }

var dirTraversalTable = scoring.Table{
	Direction: scoring.HigherIsBetter,
	Bands: []scoring.Band{
		{Threshold: 20000, Points: 400},
		{Threshold: 10000, Points: 250},
		{Threshold: 5000, Points: 150},
		{Threshold: 1000, Points: 50},
	},
	Fallback: 25,
	Max:      400,
}

func (dirTraversal) Run(ctx context.Context, p workload.Progress) workload.Outcome {
	return common.WithScratch("", "dir_traversal", func(area *scratch.Area) workload.Outcome {
		if err := area.CreateTree(treeDirs, treeFilesPerDir, 4096, scratch.Text, 2); err != nil {
			return workload.Skip(err.Error())
		}
		p.Update(0.2, "tree created")

		passes := common.Repetitions("dir_traversal", 3)
		sampler := clock.NewSampler("files/s", passes)
		buf := make([]byte, 1024)
		for i := 0; i < passes; i++ {
			if p.IsCancelled() {
				return workload.Cancel()
			}
			start := clock.Now()
			count, err := traverseAndRead(area.Path(), buf)
			elapsed := clock.Since(start, clock.Now())
			if err != nil {
				return workload.Fail(err.Error(), sampler.Series())
			}
			sampler.Record(float64(count) / elapsed.Seconds())
			p.Update(0.2+0.8*float64(i+1)/passes, "traversal pass complete")
		}

		reduced, err := common.ReduceAndScore(sampler.Series(), 0, stats.OutlierPolicy{Warmup: 1}, dirTraversalTable, func(d stats.TestDetails) float64 { return d.Median })
		if err != nil {
			return workload.Fail(err.Error(), sampler.Series())
		}
		return workload.Complete(common.ToResult(reduced, "files/s", dirTraversalTable.Max, nil))
	})
}

func traverseAndRead(root string, buf []byte) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		f, ferr := os.Open(path)
		if ferr != nil {
			return ferr
		}
		_, ferr = f.Read(buf)
		f.Close()
		if ferr != nil {
			return ferr
		}
		count++
		return nil
	})
	return count, err
}

// --- large_seq_read ---

type largeSeqRead struct {
	Capability capability.Provider
}

func (largeSeqRead) ID() string                   { return "large_seq_read" }
func (largeSeqRead) Name() string                 { return "Large Sequential Read" }
func (largeSeqRead) Description() string {
	return "Reads a 2 GiB file in 1 MiB chunks, dropping the page cache between repeats where the platform permits."
}
func (largeSeqRead) Category() workload.Category  { return workload.ProjectOperations }
func (largeSeqRead) EstimatedDurationSeconds() int { return 30 }

var largeSeqReadTable = scoring.Table{
	Direction: scoring.HigherIsBetter,
	Bands: []scoring.Band{
		{Threshold: 3000, Points: 500},
		{Threshold: 2000, Points: 400},
		{Threshold: 1000, Points: 250},
		{Threshold: 500, Points: 150},
		{Threshold: 200, Points: 75},
	},
	Fallback: 25,
	Max:      500,
}

const (
	largeSeqReadFileSize = 2 << 30 // 2 GiB
	largeSeqReadChunk    = 1 << 20 // 1 MiB
	largeSeqReadRepeats  = 3
)

func (w largeSeqRead) Run(ctx context.Context, p workload.Progress) workload.Outcome {
	return common.WithScratch("", "large_seq_read", func(area *scratch.Area) workload.Outcome {
		if err := area.CreateFile("seq.bin", largeSeqReadFileSize, scratch.Random, 9); err != nil {
			return workload.Skip(err.Error())
		}
		p.Update(0.1, "data file created")

		repeats := common.Repetitions("large_seq_read", largeSeqReadRepeats)
		path := filepath.Join(area.Path(), "seq.bin")
		buf := make([]byte, largeSeqReadChunk)
		sampler := clock.NewSampler("MB/s", repeats)

		for i := 0; i < repeats; i++ {
			if p.IsCancelled() {
				return workload.Cancel()
			}
			f, err := os.Open(path)
			if err != nil {
				return workload.Fail(err.Error(), sampler.Series())
			}
			if w.Capability != nil && w.Capability.CanDropFileCache() {
				dropCache(f)
			}

			start := clock.Now()
			var read int64
			for {
				n, rerr := f.Read(buf)
				read += int64(n)
				if rerr != nil {
					break
				}
				if read%(64*largeSeqReadChunk) == 0 && p.IsCancelled() {
					f.Close()
					return workload.Cancel()
				}
			}
			elapsed := clock.Since(start, clock.Now())
			f.Close()

			mbps := float64(read) / (1024 * 1024) / elapsed.Seconds()
			sampler.Record(mbps)
			p.Update(0.1+0.9*float64(i+1)/float64(repeats), "sequential read pass complete")
		}

		reduced, err := common.ReduceAndScore(sampler.Series(), 0, stats.OutlierPolicy{}, largeSeqReadTable, func(d stats.TestDetails) float64 { return d.Median })
		if err != nil {
			return workload.Fail(err.Error(), sampler.Series())
		}
		return workload.Complete(common.ToResult(reduced, "MB/s", largeSeqReadTable.Max, nil))
	})
}

// dropCache best-effort advises the kernel to evict a file's cached pages,
// so the next read measures cold storage rather than page-cache hits.
// Ignored errors here are intentional — the capability check upstream
// already gated on CanDropFileCache; a failure mid-loop just means this
// particular repeat stays warm.
func dropCache(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_DONTNEED)
}
