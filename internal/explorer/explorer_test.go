package explorer

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/crystaleda-cli/internal/analysis"
)

func strp(s string) *string   { return &s }
func fltp(f float64) *float64 { return &f }

// memSource is an in-memory Source with the store's matching rules.
type memSource struct {
	records []analysis.ConditionRecord
	calls   int
}

func (m *memSource) CountConditions(context.Context) (int, error) {
	m.calls++
	return len(m.records), nil
}

func (m *memSource) AllConditions(context.Context) ([]analysis.ConditionRecord, error) {
	m.calls++
	return append([]analysis.ConditionRecord(nil), m.records...), nil
}

func (m *memSource) ConditionsByPrecipitate(_ context.Context, name string) ([]analysis.ConditionRecord, error) {
	m.calls++
	var out []analysis.ConditionRecord
	for _, r := range m.records {
		if r.PrecipitateName != nil && *r.PrecipitateName == name {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memSource) ConditionsByProtein(_ context.Context, id string) ([]analysis.ConditionRecord, error) {
	m.calls++
	var out []analysis.ConditionRecord
	for _, r := range m.records {
		if strings.EqualFold(r.ProteinID, strings.TrimSpace(id)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memSource) ConditionsByProteins(_ context.Context, ids []string) ([]analysis.ConditionRecord, error) {
	m.calls++
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []analysis.ConditionRecord
	for _, r := range m.records {
		if want[r.ProteinID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func cond(protein, chemical string, value float64, unit, ph string) analysis.ConditionRecord {
	r := analysis.ConditionRecord{ProteinID: protein, ConcentrationValue: fltp(value)}
	if chemical != "" {
		r.PrecipitateName = strp(chemical)
	}
	if unit != "" {
		r.ConcentrationUnit = strp(unit)
	}
	if ph != "" {
		r.PH = strp(ph)
	}
	return r
}

func fixture() *memSource {
	return &memSource{records: []analysis.ConditionRecord{
		cond("1ABC", "PEG 3350", 20, "%", "7.5"),
		cond("1ABC", "NaCl", 200, "mM", "7.5"),
		cond("2XYZ", "PEG 3350", 25, "%", "pH 6.5"),
		cond("2XYZ", "NaCl", 100, "mM", "6.5"),
		cond("2XYZ", "Tris", 50, "mM", "8"),
		cond("3DEF", "PEG 3350", 150, "mM", "n/a"),
		cond("4GHI", "Glycerol", 10, "%", ""),
		cond("4GHI", "", 1, "", ""),
	}}
}

func newTestExplorer(src Source, logs *bytes.Buffer) *Explorer {
	var logger *log.Logger
	if logs != nil {
		logger = log.New(logs, "", 0)
	}
	e := New(src, DefaultOptions(), logger)
	e.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestOverviewAndChemicals(t *testing.T) {
	e := newTestExplorer(fixture(), nil)
	ov := e.Overview(context.Background())
	if ov.TotalRecords != 8 || len(ov.Chemicals) != 4 || ov.Chemicals[0].Name != "PEG 3350" {
		t.Fatalf("overview = %+v", ov)
	}
	if ov.ReportID == "" {
		t.Fatalf("missing report id")
	}
	list := e.Chemicals(context.Background())
	if strings.Join(list.Chemicals, ",") != "Glycerol,NaCl,PEG 3350,Tris" {
		t.Fatalf("chemicals = %v", list.Chemicals)
	}
	md := ov.Markdown()
	if !strings.Contains(md, "[CHEMICAL OVERVIEW]") || !strings.Contains(md, "| 1 | PEG 3350 | 3 | 37.50 | 3 |") {
		t.Fatalf("markdown:\n%s", md)
	}
}

func TestSummary(t *testing.T) {
	e := newTestExplorer(fixture(), nil)
	s, err := e.Summary(context.Background(), "PEG 3350")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.Occurrences != 3 || s.PercentOfAll != 37.5 || s.Percent.Count != 2 || s.Millimolar.Count != 1 {
		t.Fatalf("summary = %+v", s.ChemicalSummary)
	}
	if !s.PreferPercent {
		t.Fatalf("percent should be preferred")
	}
	if _, err := e.Summary(context.Background(), "  "); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("blank chemical err = %v", err)
	}
	if md := s.Markdown(); !strings.Contains(md, "Occurrences: 3 (37.50% of all conditions)") {
		t.Fatalf("markdown:\n%s", md)
	}
}

func TestConcentrationClampsWidths(t *testing.T) {
	e := newTestExplorer(fixture(), nil)
	c, err := e.Concentration(context.Background(), "NaCl", ConcentrationQuery{BinWidthMM: 500, BinWidthPct: 0.0001, ShowAll: true})
	if err != nil {
		t.Fatalf("Concentration: %v", err)
	}
	if c.Millimolar.BinWidth != analysis.MaxBinWidthMM || c.Percent.BinWidth != analysis.MinBinWidthPct {
		t.Fatalf("widths = %v / %v", c.Millimolar.BinWidth, c.Percent.BinWidth)
	}
	if c.Millimolar.Summary.Count != 2 || !c.Percent.Summary.Empty() {
		t.Fatalf("split = %d mm, %d pct", c.Millimolar.Summary.Count, c.Percent.Summary.Count)
	}
	if len(c.Millimolar.Density.Grid) != analysis.DefaultKDEPoints {
		t.Fatalf("density grid = %d", len(c.Millimolar.Density.Grid))
	}
	def, _ := e.Concentration(context.Background(), "NaCl", ConcentrationQuery{})
	if def.Millimolar.BinWidth != analysis.DefaultBinWidthMM {
		t.Fatalf("default width = %v", def.Millimolar.BinWidth)
	}
}

func TestPHView(t *testing.T) {
	e := newTestExplorer(fixture(), nil)
	p, err := e.PH(context.Background(), "PEG 3350", false)
	if err != nil {
		t.Fatalf("PH: %v", err)
	}
	// "n/a" is dropped; "pH 6.5" parses
	if p.Distribution.Summary.Count != 2 {
		t.Fatalf("pH count = %d", p.Distribution.Summary.Count)
	}
	if p.Distribution.BinWidth != analysis.PHBinWidth || !p.Distribution.Density.Empty() {
		t.Fatalf("pH distribution = %+v", p.Distribution)
	}
}

func TestFocusHidesOutlierBins(t *testing.T) {
	d := analysis.Describe([]float64{1, 2, 3, 4, 100}, analysis.DistributionOptions{BinWidth: 1, FocusIQR: true})
	focused := focus(d, false)
	for _, b := range focused.Histogram {
		if b.Lower >= 100 {
			t.Fatalf("outlier bin kept: %+v", focused.Histogram)
		}
	}
	if all := focus(d, true); len(all.Histogram) != len(d.Histogram) {
		t.Fatalf("show all dropped bins")
	}
}

func TestFocusBinEdges(t *testing.T) {
	d := analysis.Distribution{
		Histogram: []analysis.Bin{{Lower: 0, Upper: 1, Count: 2}, {Lower: 1, Upper: 2, Count: 3}, {Lower: 3, Upper: 4, Count: 1}, {Lower: 4, Upper: 5, Count: 1}},
		Focus:     &analysis.Range{Lower: 1, Upper: 3},
	}
	got := focus(d, false).Histogram
	if len(got) != 2 || got[0].Lower != 1 || got[1].Lower != 3 {
		t.Fatalf("focused bins = %+v, want [1,2) and [3,4)", got)
	}
}

func TestCooccurrence(t *testing.T) {
	src := fixture()
	e := newTestExplorer(src, nil)
	co, err := e.Cooccurrence(context.Background(), "PEG 3350")
	if err != nil {
		t.Fatalf("Cooccurrence: %v", err)
	}
	if !co.HasData() || co.Ranked[0].Chemical != "NaCl" || co.Ranked[0].Proteins != 2 {
		t.Fatalf("cooccurrence = %+v", co.CooccurrenceResult)
	}
	if md := co.Markdown(); !strings.Contains(md, "1. NaCl — 2 proteins") || !strings.Contains(md, "[MATRIX]") {
		t.Fatalf("markdown:\n%s", md)
	}
	none, _ := e.Cooccurrence(context.Background(), "Unobtainium")
	if none.Status != analysis.CooccurrenceNoProteins {
		t.Fatalf("status = %s", none.Status)
	}
	solo, _ := e.Cooccurrence(context.Background(), "Glycerol")
	if solo.Status != analysis.CooccurrenceEmptySubset {
		t.Fatalf("status = %s", solo.Status)
	}
}

func TestProtein(t *testing.T) {
	e := newTestExplorer(fixture(), nil)
	p, err := e.Protein(context.Background(), " 2xyz ")
	if err != nil {
		t.Fatalf("Protein: %v", err)
	}
	if !p.Found || p.ProteinID != "2XYZ" || len(p.Conditions) != 3 || *p.Conditions[0].Chemical != "NaCl" {
		t.Fatalf("protein = %+v", p.ProteinProfile)
	}
	missing, _ := e.Protein(context.Background(), "9NOPE")
	if missing.Found || !strings.Contains(missing.Markdown(), "Protein not found.") {
		t.Fatalf("missing protein = %+v", missing)
	}
	if _, err := e.Protein(context.Background(), ""); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("blank id err = %v", err)
	}
}

func TestStoreFailureYieldsEmptyViews(t *testing.T) {
	var logs bytes.Buffer
	e := newTestExplorer(UnavailableSource{Err: errors.New("disk on fire")}, &logs)
	ov := e.Overview(context.Background())
	if ov.TotalRecords != 0 || len(ov.Chemicals) != 0 {
		t.Fatalf("overview = %+v", ov)
	}
	s, err := e.Summary(context.Background(), "NaCl")
	if err != nil || s.Occurrences != 0 {
		t.Fatalf("summary = %+v, %v", s, err)
	}
	co, err := e.Cooccurrence(context.Background(), "NaCl")
	if err != nil || co.Status != analysis.CooccurrenceNoProteins {
		t.Fatalf("cooccurrence = %+v, %v", co, err)
	}
	if !strings.Contains(logs.String(), "⚠ Warning:") || !strings.Contains(logs.String(), "disk on fire") {
		t.Fatalf("logs = %q", logs.String())
	}
}

func TestChemicalReport(t *testing.T) {
	e := newTestExplorer(fixture(), nil)
	r, err := e.Chemical(context.Background(), "PEG 3350", ConcentrationQuery{})
	if err != nil {
		t.Fatalf("Chemical: %v", err)
	}
	md := r.Markdown()
	for _, want := range []string{"[CHEMICAL REPORT]", "[SUMMARY]", "[MILLIMOLAR]", "[PERCENT]", "[PH]", "[CO-OCCURRENCE]"} {
		if !strings.Contains(md, want) {
			t.Fatalf("missing %s in:\n%s", want, md)
		}
	}
	if _, err := e.Chemical(context.Background(), "  ", ConcentrationQuery{}); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("blank chemical err = %v", err)
	}
}
