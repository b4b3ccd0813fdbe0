package analysis

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSummarizeLinearInterpolation(t *testing.T) {
	q := Summarize([]float64{4, 1, 3, 2})
	if q.Count != 4 {
		t.Fatalf("count = %d, want 4", q.Count)
	}
	if !approx(q.Low05, 1.15) || !approx(q.Median, 2.5) || !approx(q.High95, 3.85) {
		t.Fatalf("summary = %+v", q)
	}
	if got := q.String(); got != "1.15 – 3.85 (median 2.50)" {
		t.Fatalf("String() = %q", got)
	}
}

func TestSummarizeEmptyIsDistinctFromZeros(t *testing.T) {
	empty := Summarize(nil)
	zeros := Summarize([]float64{0, 0, 0})
	if !empty.Empty() || empty.Count != 0 {
		t.Fatalf("empty summary = %+v", empty)
	}
	if zeros.Empty() || zeros.Count != 3 {
		t.Fatalf("zero summary = %+v", zeros)
	}
	if empty == zeros {
		t.Fatalf("empty and zero summaries must differ")
	}
	if empty.String() != "N/A" {
		t.Fatalf("empty String() = %q", empty.String())
	}
}

func TestSummarizeIgnoresNonFinite(t *testing.T) {
	q := Summarize([]float64{math.NaN(), 5, math.Inf(1)})
	if q.Count != 1 || q.Median != 5 {
		t.Fatalf("summary = %+v", q)
	}
}

func TestPreferred(t *testing.T) {
	mk := func(n int) QuantileSummary { return QuantileSummary{Count: n} }
	cases := []struct {
		a, b         int
		wantA, wantB bool
	}{
		{10, 3, true, false},
		{3, 10, false, true},
		{4, 4, true, true},
		{0, 0, false, false},
		{0, 2, false, true},
	}
	for _, c := range cases {
		a, b := Preferred(mk(c.a), mk(c.b))
		if a != c.wantA || b != c.wantB {
			t.Fatalf("Preferred(%d,%d) = (%v,%v), want (%v,%v)", c.a, c.b, a, b, c.wantA, c.wantB)
		}
	}
}
