package clock

import "testing"

func TestSinceReportsElapsedDuration(t *testing.T) {
	start := Now()
	for i := 0; i < 1000; i++ {
		_ = Now()
	}
	end := Now()
	if Since(start, end) <= 0 {
		t.Fatal("Since should report a positive duration across many samples")
	}
}

func TestResolutionNSIsPositiveAndStable(t *testing.T) {
	a := ResolutionNS()
	b := ResolutionNS()
	if a <= 0 {
		t.Fatalf("ResolutionNS = %v, want > 0", a)
	}
	if a != b {
		t.Fatalf("ResolutionNS should be frozen after first call: %v != %v", a, b)
	}
}

func TestSamplerRecordAndSeries(t *testing.T) {
	s := NewSampler("ms", 4)
	s.Record(1.5)
	s.Record(2.5)
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if s.Unit() != "ms" {
		t.Fatalf("Unit() = %q, want ms", s.Unit())
	}
	series := s.Series()
	if len(series) != 2 || series[0] != 1.5 || series[1] != 2.5 {
		t.Fatalf("Series() = %v, want [1.5 2.5]", series)
	}
}

func TestMergeConcatenatesAllSamplers(t *testing.T) {
	a := NewSampler("ops/s", 2)
	a.Record(1)
	a.Record(2)
	b := NewSampler("ops/s", 2)
	b.Record(3)

	merged := Merge(a, b)
	if len(merged) != 3 {
		t.Fatalf("Merge length = %d, want 3", len(merged))
	}
}

func TestMergeWithNoSamplersReturnsEmpty(t *testing.T) {
	merged := Merge()
	if len(merged) != 0 {
		t.Fatalf("Merge() = %v, want empty", merged)
	}
}
