package analysis

import (
	"reflect"
	"testing"
)

func cooccurrenceFixture() []ConditionRecord {
	return []ConditionRecord{
		rec("p1", "PEG"), rec("p1", "NaCl"), rec("p1", "NaCl"), rec("p1", "Tris"),
		rec("p2", "PEG"), rec("p2", "NaCl"), rec("p2", "HEPES"),
		rec("p3", "PEG"), rec("p3", "Tris"), rec("p3", ""),
		rec("p4", "NaCl"), rec("p4", "Tris"), // p4 never saw PEG
		rec("p5", "Glycerol"),
	}
}

func TestBuildCooccurrence(t *testing.T) {
	res := BuildCooccurrence(cooccurrenceFixture(), "PEG", DefaultCooccurrenceOptions())
	if !res.HasData() {
		t.Fatalf("status = %s, want ok", res.Status)
	}
	wantRanked := []ChemicalCount{{"NaCl", 2}, {"Tris", 2}, {"HEPES", 1}}
	if !reflect.DeepEqual(res.Ranked, wantRanked) {
		t.Fatalf("ranked = %+v, want %+v", res.Ranked, wantRanked)
	}
	if want := []string{"NaCl", "Tris", "HEPES"}; !reflect.DeepEqual(res.Chemicals, want) {
		t.Fatalf("axis = %v, want %v", res.Chemicals, want)
	}
	want := [][]int{
		{2, 1, 1},
		{1, 2, 0},
		{1, 0, 1},
	}
	if !reflect.DeepEqual(res.Matrix, want) {
		t.Fatalf("matrix = %v, want %v", res.Matrix, want)
	}
}

func TestBuildCooccurrenceSymmetricWithProteinDiagonal(t *testing.T) {
	res := BuildCooccurrence(cooccurrenceFixture(), "Tris", DefaultCooccurrenceOptions())
	if !res.HasData() {
		t.Fatalf("status = %s", res.Status)
	}
	counts := map[string]int{}
	for _, rc := range res.Ranked {
		counts[rc.Chemical] = rc.Proteins
	}
	for i := range res.Matrix {
		if res.Matrix[i][i] != counts[res.Chemicals[i]] {
			t.Fatalf("diagonal %s = %d, want %d", res.Chemicals[i], res.Matrix[i][i], counts[res.Chemicals[i]])
		}
		for j := range res.Matrix {
			if res.Matrix[i][j] != res.Matrix[j][i] {
				t.Fatalf("matrix not symmetric at (%d,%d): %v", i, j, res.Matrix)
			}
		}
	}
}

func TestBuildCooccurrenceCaps(t *testing.T) {
	res := BuildCooccurrence(cooccurrenceFixture(), "PEG", CooccurrenceOptions{MatrixTopK: 2, RankedTopK: 1})
	if len(res.Chemicals) != 2 || len(res.Matrix) != 2 || len(res.Matrix[0]) != 2 {
		t.Fatalf("matrix axis = %v (%dx?)", res.Chemicals, len(res.Matrix))
	}
	if len(res.Ranked) != 1 || res.Ranked[0].Chemical != "NaCl" {
		t.Fatalf("ranked = %+v", res.Ranked)
	}
}

func TestBuildCooccurrenceNoData(t *testing.T) {
	records := cooccurrenceFixture()
	res := BuildCooccurrence(records, "Unobtainium", DefaultCooccurrenceOptions())
	if res.HasData() || res.Status != CooccurrenceNoProteins {
		t.Fatalf("status = %s, want %s", res.Status, CooccurrenceNoProteins)
	}
	if res.Matrix != nil || res.Chemicals != nil {
		t.Fatalf("no-data result must not carry a matrix: %+v", res)
	}

	res = BuildCooccurrence(records, "Glycerol", DefaultCooccurrenceOptions())
	if res.Status != CooccurrenceEmptySubset {
		t.Fatalf("status = %s, want %s", res.Status, CooccurrenceEmptySubset)
	}

	res = BuildCooccurrence(nil, "PEG", DefaultCooccurrenceOptions())
	if res.Status != CooccurrenceNoProteins {
		t.Fatalf("empty input status = %s", res.Status)
	}
}
