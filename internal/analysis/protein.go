package analysis

import "sort"

// ConditionRow is one line of a protein's condition table.
type ConditionRow struct {
	Chemical      *string  `json:"chemical" yaml:"chemical"`
	Concentration *float64 `json:"concentration" yaml:"concentration"`
	Unit          *string  `json:"unit" yaml:"unit"`
	PH            *string  `json:"ph" yaml:"ph"`
}

// ProteinProfile is the drill-down for a single protein.
type ProteinProfile struct {
	ProteinID  string         `json:"protein_id" yaml:"protein_id"`
	Found      bool           `json:"found" yaml:"found"`
	Conditions []ConditionRow `json:"conditions" yaml:"conditions"`
	Sequence   SequenceStats  `json:"sequence" yaml:"sequence"`
}

// ProfileProtein builds the condition table (sorted by chemical, then
// concentration, missing values last) and the composition of all sequences
// attached to the records.
func ProfileProtein(proteinID string, records []ConditionRecord) ProteinProfile {
	p := ProteinProfile{ProteinID: proteinID, Found: len(records) > 0}
	var seqs []string
	for _, r := range records {
		p.Conditions = append(p.Conditions, ConditionRow{
			Chemical:      r.PrecipitateName,
			Concentration: r.ConcentrationValue,
			Unit:          r.ConcentrationUnit,
			PH:            r.PH,
		})
		if r.Sequence != nil {
			seqs = append(seqs, *r.Sequence)
		}
	}
	sort.SliceStable(p.Conditions, func(i, j int) bool {
		a, b := p.Conditions[i], p.Conditions[j]
		if c := compareStringPtr(a.Chemical, b.Chemical); c != 0 {
			return c < 0
		}
		return compareFloatPtr(a.Concentration, b.Concentration) < 0
	})
	p.Sequence = AnalyzeSequences(seqs...)
	return p
}

func compareStringPtr(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

func compareFloatPtr(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}
