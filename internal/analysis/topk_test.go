package analysis

import (
	"reflect"
	"testing"
)

func TestRankChemicals(t *testing.T) {
	records := []ConditionRecord{rec("p1", "X"), rec("p2", "X"), rec("p3", "Y")}
	got := RankChemicals(records, DefaultOverviewLimit)
	want := []ChemicalGroup{
		{Name: "X", Count: 2, Percent: 66.67, UniqueProteins: 2},
		{Name: "Y", Count: 1, Percent: 33.33, UniqueProteins: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RankChemicals = %+v, want %+v", got, want)
	}
}

func TestRankChemicalsTiesMissingAndLimit(t *testing.T) {
	records := []ConditionRecord{
		rec("p1", "Zn"), rec("p1", "Zn"), rec("p2", "Ca"), rec("p3", "Ca"),
		rec("p4", "Mg"), rec("p5", ""), rec("p6", ""),
	}
	got := RankChemicals(records, 0)
	names := make([]string, len(got))
	for i, g := range got {
		names[i] = g.Name
	}
	if want := []string{"Ca", "Zn", "Mg"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("order = %v, want %v", names, want)
	}
	// percent is relative to every record, including unnamed ones
	if got[0].Percent != 28.57 {
		t.Fatalf("Ca percent = %v, want 28.57", got[0].Percent)
	}
	if got[1].UniqueProteins != 1 {
		t.Fatalf("Zn unique proteins = %d, want 1", got[1].UniqueProteins)
	}
	if top := RankChemicals(records, 2); len(top) != 2 {
		t.Fatalf("limit 2 returned %d groups", len(top))
	}
	if out := RankChemicals(nil, 50); len(out) != 0 {
		t.Fatalf("empty input returned %+v", out)
	}
}

func TestChemicalNamesSorted(t *testing.T) {
	groups := []ChemicalGroup{{Name: "b"}, {Name: "C"}, {Name: "a"}}
	if got, want := ChemicalNames(groups), []string{"C", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ChemicalNames = %v, want %v", got, want)
	}
}
