package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/crystaleda-cli/internal/analysis"
)

// columns are the conditions table columns, in record field order.
var columns = []string{
	"Protein_ID",
	"Standardized_Precipitate",
	"CID",
	"Concentration_Value",
	"Concentration_Unit",
	"Concentration_Converted",
	"pH",
	"FASTA_Sequence",
}

var columnList = strings.Join(columns, ", ")

type dialect struct {
	name        string
	driverName  string
	createTable string
	orderColumn string
	dollar      bool
}

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return dialect{
			name:       "sqlite",
			driverName: "sqlite",
			createTable: `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	Protein_ID TEXT NOT NULL,
	Standardized_Precipitate TEXT,
	CID TEXT,
	Concentration_Value REAL,
	Concentration_Unit TEXT,
	Concentration_Converted REAL,
	pH TEXT,
	FASTA_Sequence TEXT
)`,
			orderColumn: "rowid",
		}, nil
	case "postgres", "postgresql", "pgx":
		return dialect{
			name:       "postgres",
			driverName: "pgx",
			createTable: `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	id BIGSERIAL PRIMARY KEY,
	Protein_ID TEXT NOT NULL,
	Standardized_Precipitate TEXT,
	CID TEXT,
	Concentration_Value DOUBLE PRECISION,
	Concentration_Unit TEXT,
	Concentration_Converted DOUBLE PRECISION,
	pH TEXT,
	FASTA_Sequence TEXT
)`,
			orderColumn: "id",
			dollar:      true,
		}, nil
	default:
		return dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

func (d dialect) bind(n int) string {
	if d.dollar {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// jsonValues renders a subquery yielding the elements of the JSON string
// array bound at position n.
func (d dialect) jsonValues(n int) string {
	if d.dollar {
		return `SELECT jsonb_array_elements_text(` + d.bind(n) + `::jsonb)`
	}
	return `SELECT value FROM json_each(` + d.bind(n) + `)`
}

// placeholders renders count comma separated bind markers starting at from.
func (d dialect) placeholders(from, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = d.bind(from + i)
	}
	return strings.Join(parts, ", ")
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullFloat(p *float64) any {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return nil
	}
	return *p
}

// recordFromRow validates one scanned row. Rows without a protein id are dropped.
func recordFromRow(raw []any) (analysis.ConditionRecord, bool) {
	id := textValue(raw[0])
	if id == nil || strings.TrimSpace(*id) == "" {
		return analysis.ConditionRecord{}, false
	}
	return analysis.ConditionRecord{
		ProteinID:              *id,
		PrecipitateName:        textValue(raw[1]),
		CompoundID:             identifierValue(raw[2]),
		ConcentrationValue:     floatValue(raw[3]),
		ConcentrationUnit:      textValue(raw[4]),
		ConcentrationConverted: floatValue(raw[5]),
		PH:                     textValue(raw[6]),
		Sequence:               textValue(raw[7]),
	}, true
}

// textValue renders whatever the driver returned as text; NULL and blank become nil.
func textValue(v any) *string {
	var s string
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		s = x
	case []byte:
		s = string(x)
	case float64:
		if math.IsNaN(x) {
			return nil
		}
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int64:
		s = strconv.FormatInt(x, 10)
	default:
		s = fmt.Sprint(x)
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// identifierValue is textValue with integral floats rendered without a fraction.
func identifierValue(v any) *string {
	if f, ok := v.(float64); ok && f == math.Trunc(f) && !math.IsInf(f, 0) {
		s := strconv.FormatInt(int64(f), 10)
		return &s
	}
	s := textValue(v)
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && f == math.Trunc(f) && strings.HasSuffix(trimmed, ".0") {
		out := strconv.FormatInt(int64(f), 10)
		return &out
	}
	return &trimmed
}

func floatValue(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = p
	case []byte:
		p, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		if err != nil {
			return nil
		}
		f = p
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
