package analysis

// PubChemCompoundURL is the prefix for compound links.
const PubChemCompoundURL = "https://pubchem.ncbi.nlm.nih.gov/compound/"

// ChemicalSummary describes the records of one selected chemical.
type ChemicalSummary struct {
	Chemical       string  `json:"chemical" yaml:"chemical"`
	Occurrences    int     `json:"occurrences" yaml:"occurrences"`
	PercentOfAll   float64 `json:"percent_of_all" yaml:"percent_of_all"`
	UniqueProteins int     `json:"unique_proteins" yaml:"unique_proteins"`
	CompoundID     string  `json:"compound_id,omitempty" yaml:"compound_id,omitempty"`
	PubChemURL     string  `json:"pubchem_url,omitempty" yaml:"pubchem_url,omitempty"`
	// AvgSequenceLength is nil when no record carries a sequence.
	AvgSequenceLength *float64        `json:"avg_sequence_length,omitempty" yaml:"avg_sequence_length,omitempty"`
	Millimolar        QuantileSummary `json:"millimolar" yaml:"millimolar"`
	Percent           QuantileSummary `json:"percent" yaml:"percent"`
	PreferMillimolar  bool            `json:"prefer_millimolar" yaml:"prefer_millimolar"`
	PreferPercent     bool            `json:"prefer_percent" yaml:"prefer_percent"`
}

// SummarizeChemical builds the summary block for the records of one chemical.
// totalRecords is the size of the whole table and drives PercentOfAll.
func SummarizeChemical(chemical string, records []ConditionRecord, totalRecords int) ChemicalSummary {
	s := ChemicalSummary{
		Chemical:     chemical,
		Occurrences:  len(records),
		PercentOfAll: roundTo(float64(len(records))*100/float64(max(totalRecords, 1)), 2),
	}
	proteins := map[string]struct{}{}
	var lenSum, lenN int
	for _, r := range records {
		proteins[r.ProteinID] = struct{}{}
		if s.CompoundID == "" && r.CompoundID != nil && *r.CompoundID != "" {
			s.CompoundID = *r.CompoundID
		}
		if r.Sequence != nil {
			lenSum += SequenceLength(*r.Sequence)
			lenN++
		}
	}
	s.UniqueProteins = len(proteins)
	if s.CompoundID != "" {
		s.PubChemURL = PubChemCompoundURL + s.CompoundID
	}
	if lenN > 0 {
		avg := float64(lenSum) / float64(lenN)
		s.AvgSequenceLength = &avg
	}

	split := SplitConcentrations(records)
	s.Millimolar = Summarize(split.Millimolar)
	s.Percent = Summarize(split.Percent)
	s.PreferMillimolar, s.PreferPercent = Preferred(s.Millimolar, s.Percent)
	return s
}
