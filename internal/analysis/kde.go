package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultKDEPoints is the grid resolution used when none is requested.
const DefaultKDEPoints = 200

// DensityCurve is a sampled density estimate. An empty curve means the
// sample was too small or had zero variance.
type DensityCurve struct {
	Grid    []float64 `json:"grid_points" yaml:"grid_points"`
	Density []float64 `json:"density_values" yaml:"density_values"`
}

// Empty reports whether the estimator declined to produce a curve.
func (c DensityCurve) Empty() bool { return len(c.Grid) == 0 }

// Scaled returns a copy whose density values are multiplied by factor.
func (c DensityCurve) Scaled(factor float64) DensityCurve {
	if c.Empty() {
		return DensityCurve{}
	}
	out := DensityCurve{
		Grid:    append([]float64(nil), c.Grid...),
		Density: make([]float64, len(c.Density)),
	}
	floats.ScaleTo(out.Density, factor, c.Density)
	return out
}

// EstimateDensity computes a Gaussian kernel density estimate over an evenly
// spaced grid spanning [min, max] of the finite sample values. Bandwidth
// follows Silverman's rule h = 1.06 * σ * n^(-1/5) with the population σ.
// Resolutions below 2 fall back to DefaultKDEPoints.
func EstimateDensity(sample []float64, points int) DensityCurve {
	if points < 2 {
		points = DefaultKDEPoints
	}
	x := make([]float64, 0, len(sample))
	for _, v := range sample {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		x = append(x, v)
	}
	n := len(x)
	if n < 2 {
		return DensityCurve{}
	}
	lo, hi := floats.Min(x), floats.Max(x)
	std := stat.PopStdDev(x, nil)
	if lo == hi || std == 0 {
		return DensityCurve{}
	}
	h := 1.06 * std * math.Pow(float64(n), -0.2)
	norm := math.Sqrt(2*math.Pi) * h

	grid := floats.Span(make([]float64, points), lo, hi)
	density := make([]float64, points)
	for i, g := range grid {
		var sum float64
		for _, xi := range x {
			u := (g - xi) / h
			sum += math.Exp(-0.5*u*u) / norm
		}
		density[i] = sum / float64(n)
	}
	return DensityCurve{Grid: grid, Density: density}
}

// OverlayScale is the approximate per-bin count used to lift a density curve
// onto a histogram of the given bin width: n / max(round((max-min)/width), 1).
func OverlayScale(n int, lo, hi, binWidth float64) float64 {
	bins := 1.0
	if binWidth > 0 {
		if b := math.RoundToEven((hi - lo) / binWidth); b > 1 {
			bins = b
		}
	}
	return float64(n) / bins
}
