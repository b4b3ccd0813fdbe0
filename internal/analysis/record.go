package analysis

// ConditionRecord is one crystallization trial as handed over by the row-store.
// Every field except ProteinID may be nil, meaning the value is missing (never zero).
type ConditionRecord struct {
	ProteinID              string   `json:"protein_id" yaml:"protein_id"`
	PrecipitateName        *string  `json:"precipitate_name,omitempty" yaml:"precipitate_name,omitempty"`
	CompoundID             *string  `json:"compound_id,omitempty" yaml:"compound_id,omitempty"`
	ConcentrationValue     *float64 `json:"concentration_value,omitempty" yaml:"concentration_value,omitempty"`
	ConcentrationUnit      *string  `json:"concentration_unit,omitempty" yaml:"concentration_unit,omitempty"`
	ConcentrationConverted *float64 `json:"concentration_converted,omitempty" yaml:"concentration_converted,omitempty"`
	// PH holds the raw pH text, e.g. "PH 7.5". Numeric store columns are
	// rendered to text at the store boundary.
	PH       *string `json:"ph,omitempty" yaml:"ph,omitempty"`
	Sequence *string `json:"sequence,omitempty" yaml:"sequence,omitempty"`
}

// Chemical returns the precipitate name and whether it is present.
func (r ConditionRecord) Chemical() (string, bool) {
	if r.PrecipitateName == nil {
		return "", false
	}
	return *r.PrecipitateName, true
}
