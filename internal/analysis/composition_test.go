package analysis

import (
	"math"
	"testing"
)

func TestAnalyzeSequencesStandardOnly(t *testing.T) {
	st := AnalyzeSequences("AAAC")
	if st.Length != 4 {
		t.Fatalf("length = %d, want 4", st.Length)
	}
	if st.Composition["A"] != 0.75 || st.Composition["C"] != 0.25 {
		t.Fatalf("composition = %v", st.Composition)
	}
	if len(st.Composition) != len(StandardResidues) {
		t.Fatalf("composition has %d keys, want %d", len(st.Composition), len(StandardResidues))
	}
	var sum float64
	for aa, f := range st.Composition {
		if aa != "A" && aa != "C" && f != 0 {
			t.Fatalf("%s = %v, want 0", aa, f)
		}
		sum += f
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("fractions sum to %v", sum)
	}
}

func TestAnalyzeSequencesStripsAndConcatenates(t *testing.T) {
	st := AnalyzeSequences("mk v\n", "\tLK ")
	if st.Length != 5 {
		t.Fatalf("length = %d, want 5", st.Length)
	}
	if !approx(st.Composition["K"], 0.4) || !approx(st.Composition["M"], 0.2) {
		t.Fatalf("composition = %v", st.Composition)
	}
}

func TestAnalyzeSequencesNonStandardInflatesDenominator(t *testing.T) {
	st := AnalyzeSequences("AAXB")
	if st.Length != 4 {
		t.Fatalf("length = %d", st.Length)
	}
	if st.Composition["A"] != 0.5 {
		t.Fatalf("A = %v, want 0.5", st.Composition["A"])
	}
	if _, ok := st.Composition["X"]; ok {
		t.Fatalf("non-standard residue reported: %v", st.Composition)
	}
}

func TestAnalyzeSequencesEmpty(t *testing.T) {
	for _, in := range [][]string{nil, {""}, {"  \n "}} {
		st := AnalyzeSequences(in...)
		if st.Length != 0 {
			t.Fatalf("length = %d", st.Length)
		}
		for aa, f := range st.Composition {
			if f != 0 {
				t.Fatalf("%s = %v, want 0", aa, f)
			}
		}
	}
}

func TestSequenceLength(t *testing.T) {
	if got := SequenceLength("MKV LL\n  AG\r\n"); got != 7 {
		t.Fatalf("SequenceLength = %d, want 7", got)
	}
}
