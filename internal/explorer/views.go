package explorer

import (
	"time"

	"github.com/KaramelBytes/crystaleda-cli/internal/analysis"
)

// Meta identifies one rendered view.
type Meta struct {
	ReportID    string    `json:"report_id" yaml:"report_id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// Overview is the ranked chemical table.
type Overview struct {
	Meta         `yaml:",inline"`
	TotalRecords int                      `json:"total_records" yaml:"total_records"`
	Limit        int                      `json:"limit" yaml:"limit"`
	Chemicals    []analysis.ChemicalGroup `json:"chemicals" yaml:"chemicals"`
}

// ChemicalList is the chemical dropdown.
type ChemicalList struct {
	Meta      `yaml:",inline"`
	Chemicals []string `json:"chemicals" yaml:"chemicals"`
}

// Summary is the summary block of one chemical.
type Summary struct {
	Meta                     `yaml:",inline"`
	analysis.ChemicalSummary `yaml:",inline"`
}

// Concentration holds the mM and % panels of one chemical.
type Concentration struct {
	Meta       `yaml:",inline"`
	Chemical   string                `json:"chemical" yaml:"chemical"`
	ShowAll    bool                  `json:"show_all" yaml:"show_all"`
	Millimolar analysis.Distribution `json:"millimolar" yaml:"millimolar"`
	Percent    analysis.Distribution `json:"percent" yaml:"percent"`
}

// PH is the pH panel of one chemical.
type PH struct {
	Meta         `yaml:",inline"`
	Chemical     string                `json:"chemical" yaml:"chemical"`
	ShowAll      bool                  `json:"show_all" yaml:"show_all"`
	Distribution analysis.Distribution `json:"distribution" yaml:"distribution"`
}

// Cooccurrence is the co-occurrence panel of one chemical.
type Cooccurrence struct {
	Meta                        `yaml:",inline"`
	analysis.CooccurrenceResult `yaml:",inline"`
}

// Protein is the drill-down of one protein.
type Protein struct {
	Meta                    `yaml:",inline"`
	analysis.ProteinProfile `yaml:",inline"`
}

// ChemicalReport bundles every panel of one chemical.
type ChemicalReport struct {
	Meta          `yaml:",inline"`
	Summary       Summary       `json:"summary" yaml:"summary"`
	Concentration Concentration `json:"concentration" yaml:"concentration"`
	PH            PH            `json:"ph" yaml:"ph"`
	Cooccurrence  Cooccurrence  `json:"cooccurrence" yaml:"cooccurrence"`
}
