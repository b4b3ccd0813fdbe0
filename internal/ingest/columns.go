package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/crystaleda-cli/internal/analysis"
)

type field int

const (
	fieldProtein field = iota
	fieldPrecipitate
	fieldCompound
	fieldValue
	fieldUnit
	fieldConverted
	fieldPH
	fieldSequence
	fieldCount
)

// headerAliases maps a normalized header to its record field. Normalization
// lowercases and folds spaces, dashes and dots into underscores.
var headerAliases = map[string]field{
	"protein_id":               fieldProtein,
	"protein":                  fieldProtein,
	"pdb_id":                   fieldProtein,
	"standardized_precipitate": fieldPrecipitate,
	"precipitate":              fieldPrecipitate,
	"chemical":                 fieldPrecipitate,
	"cid":                      fieldCompound,
	"pubchem_cid":              fieldCompound,
	"concentration_value":      fieldValue,
	"concentration":            fieldValue,
	"concentration_unit":       fieldUnit,
	"unit":                     fieldUnit,
	"concentration_converted":  fieldConverted,
	"concentration_mm":         fieldConverted,
	"ph":                       fieldPH,
	"fasta_sequence":           fieldSequence,
	"sequence":                 fieldSequence,
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	h = strings.ToLower(h)
	h = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(h)
	return h
}

// columnMap holds the source column index of each field, -1 when absent.
type columnMap [fieldCount]int

func mapHeader(header []string) (columnMap, error) {
	var m columnMap
	for i := range m {
		m[i] = -1
	}
	for i, h := range header {
		f, ok := headerAliases[normalizeHeader(h)]
		if !ok || m[f] >= 0 {
			continue
		}
		m[f] = i
	}
	if m[fieldProtein] < 0 {
		return m, fmt.Errorf("%w (header: %s)", ErrMissingProteinColumn, strings.Join(header, ", "))
	}
	return m, nil
}

func (m columnMap) cell(row []string, f field) string {
	i := m[f]
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// record converts one data row. ok is false when the row has no protein id.
func (m columnMap) record(row []string) (rec analysis.ConditionRecord, ok bool) {
	id := m.cell(row, fieldProtein)
	if id == "" {
		return rec, false
	}
	rec.ProteinID = id
	rec.PrecipitateName = text(m.cell(row, fieldPrecipitate))
	rec.CompoundID = identifier(m.cell(row, fieldCompound))
	rec.ConcentrationValue = number(m.cell(row, fieldValue))
	rec.ConcentrationUnit = text(m.cell(row, fieldUnit))
	rec.ConcentrationConverted = number(m.cell(row, fieldConverted))
	rec.PH = text(m.cell(row, fieldPH))
	rec.Sequence = text(m.cell(row, fieldSequence))
	return rec, true
}

// missingMarkers are cell values exported by spreadsheet tools for absent data.
var missingMarkers = map[string]bool{"na": true, "n/a": true, "nan": true, "null": true, "none": true, "-": true}

func text(s string) *string {
	if s == "" || missingMarkers[strings.ToLower(s)] {
		return nil
	}
	return &s
}

// identifier strips the ".0" spreadsheets append to integer ids.
func identifier(s string) *string {
	p := text(s)
	if p == nil {
		return nil
	}
	if strings.HasSuffix(s, ".0") {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
			out := strconv.FormatInt(int64(f), 10)
			return &out
		}
	}
	return p
}

// number parses a numeric cell; decimal commas are accepted when no dot is present.
// Unparsable values are treated as missing.
func number(s string) *float64 {
	if text(s) == nil {
		return nil
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
