package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// CooccurrenceStatus tells populated results apart from the two "no data" cases.
type CooccurrenceStatus string

const (
	CooccurrenceOK          CooccurrenceStatus = "ok"
	CooccurrenceNoProteins  CooccurrenceStatus = "no_proteins"
	CooccurrenceEmptySubset CooccurrenceStatus = "empty_subset"
)

// CooccurrenceOptions caps the matrix axis and the ranked list.
type CooccurrenceOptions struct {
	MatrixTopK int
	RankedTopK int
}

// DefaultCooccurrenceOptions returns the dashboard caps (15 matrix, 10 ranked).
func DefaultCooccurrenceOptions() CooccurrenceOptions {
	return CooccurrenceOptions{MatrixTopK: 15, RankedTopK: 10}
}

// ChemicalCount pairs a chemical with the number of distinct proteins it shares
// with the selected chemical.
type ChemicalCount struct {
	Chemical string `json:"chemical" yaml:"chemical"`
	Proteins int    `json:"shared_protein_count" yaml:"shared_protein_count"`
}

// CooccurrenceResult is a symmetric count matrix over Chemicals plus the
// ranked list. Matrix[i][j] is the number of proteins seen with both
// Chemicals[i] and Chemicals[j]; the diagonal is each chemical's protein count.
type CooccurrenceResult struct {
	Selected  string             `json:"selected" yaml:"selected"`
	Status    CooccurrenceStatus `json:"status" yaml:"status"`
	Chemicals []string           `json:"chemicals" yaml:"chemicals"`
	Matrix    [][]int            `json:"matrix" yaml:"matrix"`
	Ranked    []ChemicalCount    `json:"ranked" yaml:"ranked"`
}

// HasData reports whether a matrix was built.
func (r CooccurrenceResult) HasData() bool { return r.Status == CooccurrenceOK }

// BuildCooccurrence relates the selected chemical to every other chemical
// tested on the same proteins. Duplicate protein/chemical pairs count once.
func BuildCooccurrence(records []ConditionRecord, selected string, opt CooccurrenceOptions) CooccurrenceResult {
	def := DefaultCooccurrenceOptions()
	if opt.MatrixTopK <= 0 {
		opt.MatrixTopK = def.MatrixTopK
	}
	if opt.RankedTopK <= 0 {
		opt.RankedTopK = def.RankedTopK
	}
	res := CooccurrenceResult{Selected: selected}

	proteins := map[string]struct{}{}
	for _, r := range records {
		if name, ok := r.Chemical(); ok && name == selected {
			proteins[r.ProteinID] = struct{}{}
		}
	}
	if len(proteins) == 0 {
		res.Status = CooccurrenceNoProteins
		return res
	}

	// incidence keyed by chemical, then protein; order slices keep first-seen order
	incidence := map[string]map[string]struct{}{}
	var chemOrder, protOrder []string
	seenProt := map[string]struct{}{}
	for _, r := range records {
		if _, ok := proteins[r.ProteinID]; !ok {
			continue
		}
		name, ok := r.Chemical()
		if !ok || name == selected {
			continue
		}
		set := incidence[name]
		if set == nil {
			set = map[string]struct{}{}
			incidence[name] = set
			chemOrder = append(chemOrder, name)
		}
		set[r.ProteinID] = struct{}{}
		if _, ok := seenProt[r.ProteinID]; !ok {
			seenProt[r.ProteinID] = struct{}{}
			protOrder = append(protOrder, r.ProteinID)
		}
	}
	if len(chemOrder) == 0 {
		res.Status = CooccurrenceEmptySubset
		return res
	}

	ranked := make([]ChemicalCount, len(chemOrder))
	for i, name := range chemOrder {
		ranked[i] = ChemicalCount{Chemical: name, Proteins: len(incidence[name])}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Proteins > ranked[j].Proteins })

	k := min(opt.MatrixTopK, len(ranked))
	axis := make([]string, k)
	for i := range axis {
		axis[i] = ranked[i].Chemical
	}

	// binary protein x chemical incidence; co-occurrence counts are XᵀX
	x := mat.NewDense(len(protOrder), k, nil)
	for row, p := range protOrder {
		for col, name := range axis {
			if _, ok := incidence[name][p]; ok {
				x.Set(row, col, 1)
			}
		}
	}
	var co mat.Dense
	co.Mul(x.T(), x)

	res.Status = CooccurrenceOK
	res.Chemicals = axis
	res.Matrix = make([][]int, k)
	for i := 0; i < k; i++ {
		res.Matrix[i] = make([]int, k)
		for j := 0; j < k; j++ {
			res.Matrix[i][j] = int(math.Round(co.At(i, j)))
		}
	}
	res.Ranked = ranked[:min(opt.RankedTopK, len(ranked))]
	return res
}
