package scoring

import "testing"

func higherTable() Table {
	return Table{
		Direction: HigherIsBetter,
		Bands: []Band{
			{Threshold: 100, Points: 500},
			{Threshold: 50, Points: 300},
			{Threshold: 10, Points: 100},
		},
		Fallback: 10,
		Max:      500,
	}
}

func lowerTable() Table {
	return Table{
		Direction: LowerIsBetter,
		Bands: []Band{
			{Threshold: 1, Points: 500},
			{Threshold: 5, Points: 300},
			{Threshold: 20, Points: 100},
		},
		Fallback: 10,
		Max:      500,
	}
}

func TestTableScoreHigherIsBetter(t *testing.T) {
	table := higherTable()
	tests := []struct {
		metric float64
		want   int
	}{
		{0, 10},
		{10, 100},
		{49, 100},
		{50, 300},
		{99, 300},
		{100, 500},
		{1000, 500},
	}
	for _, tt := range tests {
		if got := table.Score(tt.metric); got != tt.want {
			t.Errorf("Score(%v) = %d, want %d", tt.metric, got, tt.want)
		}
	}
}

func TestTableScoreLowerIsBetter(t *testing.T) {
	table := lowerTable()
	tests := []struct {
		metric float64
		want   int
	}{
		{0.5, 500},
		{3, 300},
		{15, 100},
		{100, 10},
	}
	for _, tt := range tests {
		if got := table.Score(tt.metric); got != tt.want {
			t.Errorf("Score(%v) = %d, want %d", tt.metric, got, tt.want)
		}
	}
}

func TestTableScoreMonotoneHigherIsBetter(t *testing.T) {
	table := higherTable()
	prev := -1
	for m := 0.0; m <= 200; m += 1 {
		got := table.Score(m)
		if got < prev {
			t.Fatalf("score decreased as metric increased: at %v got %d after %d", m, got, prev)
		}
		prev = got
	}
}

func TestTableScoreClampsToMax(t *testing.T) {
	table := Table{
		Direction: HigherIsBetter,
		Bands:     []Band{{Threshold: 1, Points: 9999}},
		Fallback:  0,
		Max:       500,
	}
	if got := table.Score(5); got != 500 {
		t.Errorf("Score should clamp band points to Max, got %d", got)
	}
}

func TestTableScorePanicsOnNegativeFallback(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on negative fallback")
		}
	}()
	Table{Fallback: -1, Max: 100}.Score(0)
}

func TestTableScorePanicsOnNegativeBandPoints(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on negative band points")
		}
	}()
	Table{
		Direction: HigherIsBetter,
		Bands:     []Band{{Threshold: 0, Points: -5}},
		Max:       100,
	}.Score(1)
}

func TestPercentageToRating(t *testing.T) {
	tests := []struct {
		pct  float64
		want Rating
	}{
		{0, Inadequate},
		{29.9, Inadequate},
		{30, Poor},
		{49.9, Poor},
		{50, Acceptable},
		{69.9, Acceptable},
		{70, Good},
		{89.9, Good},
		{90, Excellent},
		{100, Excellent},
	}
	for _, tt := range tests {
		if got := PercentageToRating(tt.pct); got != tt.want {
			t.Errorf("PercentageToRating(%v) = %v, want %v", tt.pct, got, tt.want)
		}
	}
}

func TestPercentageToRatingMonotone(t *testing.T) {
	prev := Inadequate
	for p := 0.0; p <= 100; p += 0.5 {
		got := PercentageToRating(p)
		if got < prev {
			t.Fatalf("rating decreased as percentage increased: at %v got %v after %v", p, got, prev)
		}
		prev = got
	}
}
