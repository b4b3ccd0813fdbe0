package analysis

import (
	"math"
	"sort"
)

// DefaultOverviewLimit caps the overview ranking.
const DefaultOverviewLimit = 50

// ChemicalGroup is one chemical's share of the record set.
type ChemicalGroup struct {
	Name           string  `json:"name" yaml:"name"`
	Count          int     `json:"count" yaml:"count"`
	Percent        float64 `json:"percent" yaml:"percent"`
	UniqueProteins int     `json:"unique_proteins" yaml:"unique_proteins"`
}

// RankChemicals groups records by chemical, ranks groups by count (ties by
// name ascending) and truncates to limit (0 = no limit). Percent is relative
// to all records, including those without a chemical, rounded to 2 decimals.
func RankChemicals(records []ConditionRecord, limit int) []ChemicalGroup {
	type acc struct {
		count    int
		proteins map[string]struct{}
	}
	groups := map[string]*acc{}
	for _, r := range records {
		name, ok := r.Chemical()
		if !ok {
			continue
		}
		g := groups[name]
		if g == nil {
			g = &acc{proteins: map[string]struct{}{}}
			groups[name] = g
		}
		g.count++
		g.proteins[r.ProteinID] = struct{}{}
	}
	total := max(len(records), 1)
	out := make([]ChemicalGroup, 0, len(groups))
	for name, g := range groups {
		out = append(out, ChemicalGroup{
			Name:           name,
			Count:          g.count,
			Percent:        roundTo(float64(g.count)*100/float64(total), 2),
			UniqueProteins: len(g.proteins),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Name < out[j].Name
		}
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ChemicalNames returns the group names sorted ascending, as used to populate
// chemical pickers.
func ChemicalNames(groups []ChemicalGroup) []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	sort.Strings(names)
	return names
}

func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
