// Package report defines the result-and-score model emitted by a
// benchmark session: TestResult, CategoryResults, Scores, and the
// top-level BenchmarkRun envelope, plus their JSON encoding per the
// file-format contract in spec.md §6. TestResult, CategoryResults, and
// Scores form a DAG owned entirely by BenchmarkRun — there are no cycles
// in this model.
package report

import (
	"time"

	"github.com/google/uuid"

	"benchforge/internal/scoring"
	"benchforge/internal/workload"
)

// Percentiles mirrors workload.ResultPercentiles for JSON purposes, named
// per the §6 field contract (p50, p75, ... p999).
type Percentiles struct {
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	P90   float64 `json:"p90"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	P999  float64 `json:"p999"`
	Low   bool    `json:"low_sample,omitempty"`
}

// Details is the §6 `details` object: iterations, total duration, the five
// moment statistics, and an optional percentile ladder.
type Details struct {
	Iterations  int          `json:"iterations"`
	DurationSec float64      `json:"duration_secs"`
	Min         float64      `json:"min"`
	Max         float64      `json:"max"`
	Mean        float64      `json:"mean"`
	Median      float64      `json:"median"`
	StdDev      float64      `json:"std_dev"`
	Percentiles *Percentiles `json:"percentiles,omitempty"`
}

// TestResult is one workload's identity, primary metric, and earned score.
// Invariant: 0 <= Score <= MaxScore and Value is finite and non-negative.
type TestResult struct {
	TestID      string            `json:"test_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Value       float64           `json:"value"`
	Unit        string            `json:"unit"`
	Score       int               `json:"score"`
	MaxScore    int               `json:"max_score"`
	Details     Details           `json:"details"`
	Secondary   map[string]float64 `json:"secondary,omitempty"`
}

// CategoryResults bags TestResults by category. Graphics is tagged
// omitempty so an empty Graphics bag (no usable display adapter)
// serialises as a missing key rather than an empty array — absence is
// meaningful, per spec.md §3.
type CategoryResults struct {
	ProjectOperations []TestResult `json:"ProjectOperations"`
	BuildPerformance  []TestResult `json:"BuildPerformance"`
	Responsiveness    []TestResult `json:"Responsiveness"`
	Graphics          []TestResult `json:"Graphics,omitempty"`
	GraphicsPresent   bool         `json:"-"`
}

// Append inserts res into the bag for cat, preserving the orchestrator's
// deterministic iteration order (later additions appear later).
func (c *CategoryResults) Append(cat workload.Category, res TestResult) {
	switch cat {
	case workload.ProjectOperations:
		c.ProjectOperations = append(c.ProjectOperations, res)
	case workload.BuildPerformance:
		c.BuildPerformance = append(c.BuildPerformance, res)
	case workload.Responsiveness:
		c.Responsiveness = append(c.Responsiveness, res)
	case workload.Graphics:
		c.Graphics = append(c.Graphics, res)
		c.GraphicsPresent = true
	}
}

// CategoryScore sums a category's child scores and derives a Rating from
// the resulting percentage. Percentage is 0 when MaxScore is 0, which also
// maps to Inadequate per scoring.PercentageToRating.
type CategoryScore struct {
	Score      int            `json:"score"`
	MaxScore   int            `json:"max_score"`
	Percentage float64        `json:"percentage"`
	Rating     scoring.Rating `json:"rating"`
}

func sumCategory(results []TestResult) CategoryScore {
	var score, max int
	for _, r := range results {
		score += r.Score
		max += r.MaxScore
	}
	pct := 0.0
	if max > 0 {
		pct = 100 * float64(score) / float64(max)
	}
	return CategoryScore{Score: score, MaxScore: max, Percentage: pct, Rating: scoring.PercentageToRating(pct)}
}

// Scores is the overall rollup: sum and max across the present categories,
// overall rating, and each category's own CategoryScore. Overall max is
// 10000 when Graphics is present, 7500 when it is absent — the denominator
// is always the sum of present categories' max_score (spec.md §9, Open
// Questions).
type Scores struct {
	Overall           int           `json:"overall"`
	OverallMax        int           `json:"overall_max"`
	OverallPercentage float64       `json:"overall_percentage"`
	OverallRating     scoring.Rating `json:"overall_rating"`
	ProjectOperations CategoryScore `json:"project_operations"`
	BuildPerformance  CategoryScore `json:"build_performance"`
	Responsiveness    CategoryScore `json:"responsiveness"`
	Graphics          *CategoryScore `json:"graphics,omitempty"`
}

// ComputeScores derives Scores from CategoryResults. Graphics contributes
// only when at least one Graphics TestResult was appended.
func ComputeScores(results CategoryResults) Scores {
	po := sumCategory(results.ProjectOperations)
	bp := sumCategory(results.BuildPerformance)
	rs := sumCategory(results.Responsiveness)

	s := Scores{
		ProjectOperations: po,
		BuildPerformance:  bp,
		Responsiveness:    rs,
		Overall:           po.Score + bp.Score + rs.Score,
		OverallMax:        po.MaxScore + bp.MaxScore + rs.MaxScore,
	}
	if results.GraphicsPresent {
		gx := sumCategory(results.Graphics)
		s.Graphics = &gx
		s.Overall += gx.Score
		s.OverallMax += gx.MaxScore
	}
	if s.OverallMax > 0 {
		s.OverallPercentage = 100 * float64(s.Overall) / float64(s.OverallMax)
	}
	s.OverallRating = scoring.PercentageToRating(s.OverallPercentage)
	return s
}

// CPUInfo is the CPU facet of a SystemInfo snapshot.
type CPUInfo struct {
	Name        string  `json:"name"`
	Vendor      string  `json:"vendor"`
	Cores       int     `json:"cores"`
	Threads     int     `json:"threads"`
	BaseFreqMHz float64 `json:"base_freq_mhz"`
	MaxFreqMHz  float64 `json:"max_freq_mhz"`
	L3Bytes     int64   `json:"l3_bytes"`
}

// MemoryInfo is the memory facet of a SystemInfo snapshot.
type MemoryInfo struct {
	Bytes   int64  `json:"bytes"`
	SpeedMT int    `json:"speed_mt"`
	Type    string `json:"type"`
}

// DeviceKind enumerates the storage device kinds named in spec.md §3.
type DeviceKind string

const (
	NVMe    DeviceKind = "NVMe"
	SSD     DeviceKind = "SSD"
	HDD     DeviceKind = "HDD"
	Unknown DeviceKind = "Unknown"
)

// StorageDevice is one enumerated storage device.
type StorageDevice struct {
	Name       string     `json:"name"`
	Kind       DeviceKind `json:"kind"`
	CapacityB  int64      `json:"capacity_bytes"`
}

// GPUInfo is the optional GPU facet of a SystemInfo snapshot.
type GPUInfo struct {
	Name    string `json:"name"`
	VRAMMB  int64  `json:"vram_mb"`
	Driver  string `json:"driver"`
}

// OSInfo is the operating system facet of a SystemInfo snapshot.
type OSInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Build   string `json:"build"`
}

// SystemInfo is a one-shot snapshot produced by an external collaborator
// (internal/sysinfo in this repo); the core treats it as an opaque value
// object carried unchanged into the envelope.
type SystemInfo struct {
	CPU     CPUInfo         `json:"cpu"`
	Memory  MemoryInfo      `json:"memory"`
	Storage []StorageDevice `json:"storage"`
	GPU     *GPUInfo        `json:"gpu,omitempty"`
	OS      OSInfo          `json:"os"`
}

// BenchmarkRun is the full, immutable envelope produced by an orchestrator
// session: stable UUID, UTC timestamp, machine identity, tags, SystemInfo,
// CategoryResults, and Scores.
type BenchmarkRun struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	MachineName string          `json:"machine_name"`
	Notes       string          `json:"notes,omitempty"`
	Tags        []string        `json:"tags"`
	SystemInfo  SystemInfo      `json:"system_info"`
	Results     CategoryResults `json:"results"`
	Scores      Scores          `json:"scores"`
}

// NewBenchmarkRun assembles a well-formed, empty envelope with a fresh
// UUID and the current UTC timestamp, ready for the orchestrator to
// populate via Results.Append and then finalise via ComputeScores.
func NewBenchmarkRun(machineName string, tags []string, notes string, sysInfo SystemInfo) *BenchmarkRun {
	if tags == nil {
		tags = []string{}
	}
	return &BenchmarkRun{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		MachineName: machineName,
		Notes:       notes,
		Tags:        tags,
		SystemInfo:  sysInfo,
		Results: CategoryResults{
			ProjectOperations: []TestResult{},
			BuildPerformance:  []TestResult{},
			Responsiveness:    []TestResult{},
		},
	}
}

// Finalize computes Scores from the accumulated Results. Call once after
// the orchestrator loop ends (whether by completion or cancellation).
func (b *BenchmarkRun) Finalize() {
	b.Scores = ComputeScores(b.Results)
}

// ToTestResult assembles a report.TestResult from static workload metadata
// and a workload.Result payload produced by Run.
func ToTestResult(id, name, description string, r workload.Result) TestResult {
	var pct *Percentiles
	if r.Percentile != nil {
		pct = &Percentiles{
			P50: r.Percentile.P50, P75: r.Percentile.P75, P90: r.Percentile.P90,
			P95: r.Percentile.P95, P99: r.Percentile.P99, P999: r.Percentile.P999,
			Low: r.Percentile.LowSample,
		}
	}
	return TestResult{
		TestID:      id,
		Name:        name,
		Description: description,
		Value:       r.Value,
		Unit:        r.Unit,
		Score:       r.Score,
		MaxScore:    r.MaxScore,
		Secondary:   r.Secondary,
		Details: Details{
			Iterations:  r.Iterations,
			DurationSec: r.DurationS,
			Min:         r.Min,
			Max:         r.Max,
			Mean:        r.Mean,
			Median:      r.Median,
			StdDev:      r.StdDev,
			Percentiles: pct,
		},
	}
}
