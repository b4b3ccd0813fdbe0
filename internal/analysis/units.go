package analysis

import (
	"math"
	"strconv"
	"strings"
)

// ConcentrationSplit partitions concentration readings into millimolar and
// percent buckets. It is recomputed for every record set.
type ConcentrationSplit struct {
	Millimolar []float64 `json:"millimolar_values" yaml:"millimolar_values"`
	Percent    []float64 `json:"percent_values" yaml:"percent_values"`
}

// SplitConcentrations selects a bucket per record without doing any unit math:
//   - unit "mm" (case-insensitive, trimmed): ConcentrationValue -> Millimolar
//   - unit "%" (exact after trim): ConcentrationValue -> Percent
//   - any other non-empty unit: ConcentrationConverted -> Millimolar
//
// Records without a unit, or without the value their bucket needs, contribute nothing.
func SplitConcentrations(records []ConditionRecord) ConcentrationSplit {
	var split ConcentrationSplit
	for _, r := range records {
		if r.ConcentrationUnit == nil {
			continue
		}
		unit := strings.TrimSpace(*r.ConcentrationUnit)
		switch {
		case unit == "":
			continue
		case strings.ToLower(unit) == "mm":
			if r.ConcentrationValue != nil {
				split.Millimolar = append(split.Millimolar, *r.ConcentrationValue)
			}
		case unit == "%":
			if r.ConcentrationValue != nil {
				split.Percent = append(split.Percent, *r.ConcentrationValue)
			}
		default:
			// exotic units arrive pre-converted to mM
			if r.ConcentrationConverted != nil {
				split.Millimolar = append(split.Millimolar, *r.ConcentrationConverted)
			}
		}
	}
	return split
}

// ParsePH extracts a numeric pH from strings like "PH 7.5", "ph7" or "7.5".
// The second return value is false when the input is missing or unparsable.
func ParsePH(raw string) (float64, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "PH"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// PHValues parses the pH of every record, dropping missing and unparsable values.
func PHValues(records []ConditionRecord) []float64 {
	var out []float64
	for _, r := range records {
		if r.PH == nil {
			continue
		}
		if v, ok := ParsePH(*r.PH); ok {
			out = append(out, v)
		}
	}
	return out
}
