package analysis

import "math"

// Bin width bounds and defaults for the concentration and pH histograms.
const (
	DefaultBinWidthMM  = 1.0
	MinBinWidthMM      = 0.01
	MaxBinWidthMM      = 10.0
	DefaultBinWidthPct = 0.25
	MinBinWidthPct     = 0.005
	MaxBinWidthPct     = 3.0
	PHBinWidth         = 0.25
	// MaxHistogramBins bounds the bin span of one histogram.
	MaxHistogramBins = 1 << 20
)

// ClampBinWidth bounds w to [lo, hi]; non-positive or NaN widths become def.
func ClampBinWidth(w, lo, hi, def float64) float64 {
	if math.IsNaN(w) || w <= 0 {
		w = def
	}
	return math.Max(lo, math.Min(w, hi))
}

// Bin is one histogram bucket covering [Lower, Upper).
type Bin struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
	Count int     `json:"count" yaml:"count"`
}

// Histogram buckets finite values into fixed-width bins aligned to multiples
// of width. Empty bins are omitted. A value range wider than MaxHistogramBins
// bins yields nil.
func Histogram(values []float64, width float64) []Bin {
	sorted := sortedFinite(values)
	if len(sorted) == 0 || width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return nil
	}
	start := math.Floor(sorted[0]/width) * width
	if span := (sorted[len(sorted)-1] - start) / width; !(span < MaxHistogramBins) {
		return nil
	}
	var bins []Bin
	last := -1
	for _, v := range sorted {
		idx := int(math.Floor((v - start) / width))
		if idx < 0 {
			idx = 0
		}
		if idx != last {
			lower := start + float64(idx)*width
			bins = append(bins, Bin{Lower: lower, Upper: lower + width})
			last = idx
		}
		bins[len(bins)-1].Count++
	}
	return bins
}

// Range is a closed numeric interval.
type Range struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// FocusRange narrows the display range to the IQR fences
// [q1 - 1.5·IQR, q3 + 1.5·IQR], clipped to the data extent. It needs at least
// three values and a non-degenerate fence interval.
func FocusRange(values []float64) (Range, bool) {
	sorted := sortedFinite(values)
	if len(sorted) < 3 {
		return Range{}, false
	}
	q1, q3 := quantile(sorted, 0.25), quantile(sorted, 0.75)
	iqr := q3 - q1
	lo, hi := q1-1.5*iqr, q3+1.5*iqr
	if !(lo < hi) {
		return Range{}, false
	}
	return Range{
		Lower: math.Max(sorted[0], lo),
		Upper: math.Min(sorted[len(sorted)-1], hi),
	}, true
}
