package analysis

import (
	"fmt"
	"math"
	"sort"
)

// QuantileSummary is the 5-95% band and median of a sample. Count == 0 means
// "no data"; the numeric fields are then meaningless and always zero.
type QuantileSummary struct {
	Low05  float64 `json:"low_05" yaml:"low_05"`
	Median float64 `json:"median" yaml:"median"`
	High95 float64 `json:"high_95" yaml:"high_95"`
	Count  int     `json:"sample_count" yaml:"sample_count"`
}

// Empty reports whether the summary was computed from no values.
func (q QuantileSummary) Empty() bool { return q.Count == 0 }

// String renders "lo – hi (median m)" or "N/A" for an empty summary.
func (q QuantileSummary) String() string {
	if q.Empty() {
		return "N/A"
	}
	return fmt.Sprintf("%.2f – %.2f (median %.2f)", q.Low05, q.High95, q.Median)
}

// Summarize computes empirical 5%, 50% and 95% quantiles with linear
// interpolation between order statistics. Non-finite values are ignored.
func Summarize(values []float64) QuantileSummary {
	sorted := sortedFinite(values)
	if len(sorted) == 0 {
		return QuantileSummary{}
	}
	return QuantileSummary{
		Low05:  quantile(sorted, 0.05),
		Median: quantile(sorted, 0.50),
		High95: quantile(sorted, 0.95),
		Count:  len(sorted),
	}
}

// Preferred decides which of two summaries gets display emphasis. A side is
// preferred when its count is at least the other's and non-zero, so equal
// non-zero counts mark both and two empty summaries mark neither.
func Preferred(a, b QuantileSummary) (preferA, preferB bool) {
	preferA = a.Count > 0 && a.Count >= b.Count
	preferB = b.Count > 0 && b.Count >= a.Count
	return preferA, preferB
}

func sortedFinite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

// quantile expects sorted input; position q*(n-1) is interpolated linearly.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
