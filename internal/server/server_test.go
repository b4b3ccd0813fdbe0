package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/KaramelBytes/crystaleda-cli/internal/analysis"
	"github.com/KaramelBytes/crystaleda-cli/internal/explorer"
)

type fakeSource struct{ records []analysis.ConditionRecord }

func (f fakeSource) CountConditions(context.Context) (int, error) { return len(f.records), nil }

func (f fakeSource) AllConditions(context.Context) ([]analysis.ConditionRecord, error) {
	return f.records, nil
}

func (f fakeSource) ConditionsByPrecipitate(_ context.Context, name string) ([]analysis.ConditionRecord, error) {
	var out []analysis.ConditionRecord
	for _, r := range f.records {
		if n, ok := r.Chemical(); ok && n == name {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f fakeSource) ConditionsByProtein(_ context.Context, id string) ([]analysis.ConditionRecord, error) {
	var out []analysis.ConditionRecord
	for _, r := range f.records {
		if strings.EqualFold(r.ProteinID, id) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f fakeSource) ConditionsByProteins(_ context.Context, ids []string) ([]analysis.ConditionRecord, error) {
	var out []analysis.ConditionRecord
	for _, r := range f.records {
		for _, id := range ids {
			if r.ProteinID == id {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func record(protein, chemical string, value float64, unit string) analysis.ConditionRecord {
	return analysis.ConditionRecord{ProteinID: protein, PrecipitateName: &chemical, ConcentrationValue: &value, ConcentrationUnit: &unit}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	src := fakeSource{records: []analysis.ConditionRecord{
		record("1ABC", "PEG 3350", 20, "%"),
		record("1ABC", "NaCl", 200, "mM"),
		record("2XYZ", "PEG 3350", 25, "%"),
		record("2XYZ", "NaCl", 100, "mM"),
		record("3DEF", "Sodium/potassium phosphate", 100, "mM"),
	}}
	srv := httptest.NewServer(New(explorer.New(src, explorer.DefaultOptions(), nil), nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, want int, out any) http.Header {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s status = %d, want %d: %s", url, resp.StatusCode, want, b)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.Header
}

func TestOverviewEndpoint(t *testing.T) {
	srv := newTestServer(t)
	var ov explorer.Overview
	h := getJSON(t, srv.URL+"/api/v1/overview", http.StatusOK, &ov)
	if _, err := uuid.Parse(h.Get(RequestIDHeader)); err != nil {
		t.Fatalf("request id %q: %v", h.Get(RequestIDHeader), err)
	}
	if ov.TotalRecords != 5 || len(ov.Chemicals) != 3 {
		t.Fatalf("overview = %+v", ov)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t)
	id := uuid.NewString()
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get(RequestIDHeader) != id {
		t.Fatalf("request id = %q, want %q", resp.Header.Get(RequestIDHeader), id)
	}
}

func TestChemicalEndpoints(t *testing.T) {
	srv := newTestServer(t)
	var sum explorer.Summary
	getJSON(t, srv.URL+"/api/v1/chemicals/PEG%203350/summary", http.StatusOK, &sum)
	if sum.Occurrences != 2 || sum.UniqueProteins != 2 {
		t.Fatalf("summary = %+v", sum.ChemicalSummary)
	}

	var conc explorer.Concentration
	getJSON(t, srv.URL+"/api/v1/chemicals/NaCl/concentration?bin_mm=25&show_all=true", http.StatusOK, &conc)
	if conc.Millimolar.BinWidth != analysis.MaxBinWidthMM || !conc.ShowAll || conc.Millimolar.Summary.Count != 2 {
		t.Fatalf("concentration = %+v", conc)
	}

	var co explorer.Cooccurrence
	getJSON(t, srv.URL+"/api/v1/chemicals/PEG%203350/cooccurrence", http.StatusOK, &co)
	if co.Status != analysis.CooccurrenceOK || co.Ranked[0].Chemical != "NaCl" {
		t.Fatalf("cooccurrence = %+v", co.CooccurrenceResult)
	}

	var escaped explorer.Summary
	getJSON(t, srv.URL+"/api/v1/chemicals/Sodium%2Fpotassium%20phosphate/summary", http.StatusOK, &escaped)
	if escaped.Occurrences != 1 {
		t.Fatalf("escaped name summary = %+v", escaped.ChemicalSummary)
	}

	var ph explorer.PH
	getJSON(t, srv.URL+"/api/v1/chemicals/NaCl/ph", http.StatusOK, &ph)
	if !ph.Distribution.Summary.Empty() {
		t.Fatalf("pH = %+v", ph.Distribution.Summary)
	}
}

func TestBadQueryParameters(t *testing.T) {
	srv := newTestServer(t)
	var body map[string]string
	getJSON(t, srv.URL+"/api/v1/chemicals/NaCl/concentration?bin_mm=wide", http.StatusBadRequest, &body)
	if !strings.Contains(body["error"], "bin_mm") {
		t.Fatalf("error = %q", body["error"])
	}
	getJSON(t, srv.URL+"/api/v1/chemicals/NaCl/ph?show_all=maybe", http.StatusBadRequest, nil)
}

func TestProteinEndpoint(t *testing.T) {
	srv := newTestServer(t)
	var p explorer.Protein
	getJSON(t, srv.URL+"/api/v1/proteins/1abc", http.StatusOK, &p)
	if p.ProteinID != "1ABC" || len(p.Conditions) != 2 {
		t.Fatalf("protein = %+v", p.ProteinProfile)
	}
	var body map[string]string
	getJSON(t, srv.URL+"/api/v1/proteins/9NOPE", http.StatusNotFound, &body)
	if !strings.Contains(body["error"], "not found") {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	getJSON(t, srv.URL+"/api/v1/chemicals", http.StatusOK, nil)
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), `crystaleda_http_requests_total{code="200",route="GET /api/v1/chemicals"} 1`) {
		t.Fatalf("metrics missing request counter:\n%s", b)
	}
}
