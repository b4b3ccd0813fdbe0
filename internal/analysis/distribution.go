package analysis

// Distribution bundles everything needed to draw one histogram panel.
type Distribution struct {
	Summary   QuantileSummary `json:"summary" yaml:"summary"`
	BinWidth  float64         `json:"bin_width" yaml:"bin_width"`
	Histogram []Bin           `json:"histogram" yaml:"histogram"`
	// Density is the unscaled estimate; Overlay is lifted to bin-count height.
	Density DensityCurve `json:"density" yaml:"density"`
	Overlay DensityCurve `json:"overlay" yaml:"overlay"`
	Focus   *Range       `json:"focus,omitempty" yaml:"focus,omitempty"`
}

// DistributionOptions selects the optional parts of Describe.
type DistributionOptions struct {
	BinWidth  float64
	KDEPoints int
	// Density computes the KDE and its histogram overlay.
	Density bool
	// FocusIQR computes the IQR focus range.
	FocusIQR bool
}

// Describe summarizes a numeric sample for display.
func Describe(values []float64, opt DistributionOptions) Distribution {
	d := Distribution{
		Summary:   Summarize(values),
		BinWidth:  opt.BinWidth,
		Histogram: Histogram(values, opt.BinWidth),
	}
	if d.Summary.Empty() {
		return d
	}
	if opt.Density {
		d.Density = EstimateDensity(values, opt.KDEPoints)
		if !d.Density.Empty() {
			lo, hi := d.Density.Grid[0], d.Density.Grid[len(d.Density.Grid)-1]
			d.Overlay = d.Density.Scaled(OverlayScale(d.Summary.Count, lo, hi, opt.BinWidth))
		}
	}
	if opt.FocusIQR {
		if r, ok := FocusRange(values); ok {
			d.Focus = &r
		}
	}
	return d
}
