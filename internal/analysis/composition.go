package analysis

import (
	"strings"
	"unicode"
)

// StandardResidues are the 20 standard amino-acid letters, in report order.
const StandardResidues = "ACDEFGHIKLMNPQRSTVWY"

// CompositionVector maps each standard residue letter to its fraction of all
// residues. Non-standard letters count toward the denominator only.
type CompositionVector map[string]float64

// SequenceStats is the length and residue composition of one or more sequences.
type SequenceStats struct {
	Length      int               `json:"length" yaml:"length"`
	Composition CompositionVector `json:"composition" yaml:"composition"`
}

// CleanSequence removes all whitespace and upper-cases the residues.
func CleanSequence(seq string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, seq))
}

// SequenceLength counts residues after whitespace is stripped.
func SequenceLength(seq string) int {
	return len([]rune(CleanSequence(seq)))
}

// AnalyzeSequences concatenates the cleaned sequences and computes their
// length and composition. Empty input yields all-zero fractions.
func AnalyzeSequences(seqs ...string) SequenceStats {
	counts := map[rune]int{}
	total := 0
	for _, s := range seqs {
		for _, r := range CleanSequence(s) {
			counts[r]++
			total++
		}
	}
	comp := make(CompositionVector, len(StandardResidues))
	for _, aa := range StandardResidues {
		if total == 0 {
			comp[string(aa)] = 0
			continue
		}
		comp[string(aa)] = float64(counts[aa]) / float64(total)
	}
	return SequenceStats{Length: total, Composition: comp}
}
