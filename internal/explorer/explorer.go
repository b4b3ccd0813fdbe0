// Package explorer answers dashboard-style questions about the condition
// table. Every call fetches its own record set from the Source, runs the
// analysis engine and returns a self-contained view.
package explorer

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/crystaleda-cli/internal/analysis"
)

// ErrEmptySelection is returned when no chemical or protein was selected.
var ErrEmptySelection = errors.New("nothing selected")

// Source is the row-store the explorer reads from.
type Source interface {
	CountConditions(ctx context.Context) (int, error)
	AllConditions(ctx context.Context) ([]analysis.ConditionRecord, error)
	ConditionsByPrecipitate(ctx context.Context, name string) ([]analysis.ConditionRecord, error)
	ConditionsByProtein(ctx context.Context, proteinID string) ([]analysis.ConditionRecord, error)
	ConditionsByProteins(ctx context.Context, proteinIDs []string) ([]analysis.ConditionRecord, error)
}

// UnavailableSource fails every read with Err. It stands in for a store
// that could not be opened so views degrade to empty.
type UnavailableSource struct{ Err error }

func (u UnavailableSource) CountConditions(context.Context) (int, error) { return 0, u.Err }
func (u UnavailableSource) AllConditions(context.Context) ([]analysis.ConditionRecord, error) {
	return nil, u.Err
}
func (u UnavailableSource) ConditionsByPrecipitate(context.Context, string) ([]analysis.ConditionRecord, error) {
	return nil, u.Err
}
func (u UnavailableSource) ConditionsByProtein(context.Context, string) ([]analysis.ConditionRecord, error) {
	return nil, u.Err
}
func (u UnavailableSource) ConditionsByProteins(context.Context, []string) ([]analysis.ConditionRecord, error) {
	return nil, u.Err
}

// Options tune the views.
type Options struct {
	OverviewLimit int
	MatrixTopK    int
	RankedTopK    int
	KDEPoints     int
	BinWidthMM    float64
	BinWidthPct   float64
	PHBinWidth    float64
	FocusIQR      bool
	// QueryTimeout bounds each store call; zero disables it.
	QueryTimeout time.Duration
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		OverviewLimit: analysis.DefaultOverviewLimit,
		MatrixTopK:    15,
		RankedTopK:    10,
		KDEPoints:     analysis.DefaultKDEPoints,
		BinWidthMM:    analysis.DefaultBinWidthMM,
		BinWidthPct:   analysis.DefaultBinWidthPct,
		PHBinWidth:    analysis.PHBinWidth,
		FocusIQR:      true,
		QueryTimeout:  30 * time.Second,
	}
}

// Explorer builds views from a Source.
type Explorer struct {
	src   Source
	opt   Options
	log   *log.Logger
	debug bool
	now   func() time.Time
}

// New returns an Explorer. A nil logger discards warnings.
func New(src Source, opt Options, logger *log.Logger) *Explorer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opt.PHBinWidth <= 0 {
		opt.PHBinWidth = analysis.PHBinWidth
	}
	return &Explorer{src: src, opt: opt, log: logger, now: time.Now}
}

// SetDebug enables per-call debug lines.
func (e *Explorer) SetDebug(on bool) { e.debug = on }

// Options returns the effective options.
func (e *Explorer) Options() Options { return e.opt }

func (e *Explorer) meta() Meta {
	return Meta{ReportID: uuid.NewString(), GeneratedAt: e.now().UTC()}
}

func (e *Explorer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opt.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.opt.QueryTimeout)
}

// fetch runs one store read. Failures are logged and yield an empty set.
func (e *Explorer) fetch(ctx context.Context, what string, read func(context.Context) ([]analysis.ConditionRecord, error)) []analysis.ConditionRecord {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	start := e.now()
	recs, err := read(ctx)
	if err != nil {
		e.log.Printf("⚠ Warning: %s: %v (treating as empty)", what, err)
		return nil
	}
	if e.debug {
		e.log.Printf("debug: %s: %d records in %s", what, len(recs), e.now().Sub(start))
	}
	return recs
}

func (e *Explorer) count(ctx context.Context) int {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	n, err := e.src.CountConditions(ctx)
	if err != nil {
		e.log.Printf("⚠ Warning: count conditions: %v (treating as empty)", err)
		return 0
	}
	return n
}

func (e *Explorer) chemicalRecords(ctx context.Context, name string) ([]analysis.ConditionRecord, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptySelection
	}
	return e.fetch(ctx, "conditions for "+name, func(ctx context.Context) ([]analysis.ConditionRecord, error) {
		return e.src.ConditionsByPrecipitate(ctx, name)
	}), nil
}

// Overview ranks chemicals by occurrence over the whole table.
func (e *Explorer) Overview(ctx context.Context) Overview {
	all := e.fetch(ctx, "all conditions", e.src.AllConditions)
	return Overview{
		Meta:         e.meta(),
		TotalRecords: len(all),
		Limit:        e.opt.OverviewLimit,
		Chemicals:    analysis.RankChemicals(all, e.opt.OverviewLimit),
	}
}

// Chemicals lists the selectable chemical names (the overview's, sorted).
func (e *Explorer) Chemicals(ctx context.Context) ChemicalList {
	all := e.fetch(ctx, "all conditions", e.src.AllConditions)
	return ChemicalList{
		Meta:      e.meta(),
		Chemicals: analysis.ChemicalNames(analysis.RankChemicals(all, e.opt.OverviewLimit)),
	}
}

// Summary describes one chemical against the whole table.
func (e *Explorer) Summary(ctx context.Context, chemical string) (Summary, error) {
	recs, err := e.chemicalRecords(ctx, chemical)
	if err != nil {
		return Summary{}, err
	}
	total := e.count(ctx)
	return Summary{Meta: e.meta(), ChemicalSummary: analysis.SummarizeChemical(chemical, recs, total)}, nil
}

// ConcentrationQuery carries per-request view settings; zero widths use the configured defaults.
type ConcentrationQuery struct {
	BinWidthMM  float64
	BinWidthPct float64
	ShowAll     bool
}

// Concentration builds the mM and % distribution panels of one chemical.
func (e *Explorer) Concentration(ctx context.Context, chemical string, q ConcentrationQuery) (Concentration, error) {
	recs, err := e.chemicalRecords(ctx, chemical)
	if err != nil {
		return Concentration{}, err
	}
	mm := q.BinWidthMM
	if mm == 0 {
		mm = e.opt.BinWidthMM
	}
	pct := q.BinWidthPct
	if pct == 0 {
		pct = e.opt.BinWidthPct
	}
	mm = analysis.ClampBinWidth(mm, analysis.MinBinWidthMM, analysis.MaxBinWidthMM, analysis.DefaultBinWidthMM)
	pct = analysis.ClampBinWidth(pct, analysis.MinBinWidthPct, analysis.MaxBinWidthPct, analysis.DefaultBinWidthPct)

	split := analysis.SplitConcentrations(recs)
	return Concentration{
		Meta:       e.meta(),
		Chemical:   chemical,
		ShowAll:    q.ShowAll,
		Millimolar: focus(analysis.Describe(split.Millimolar, e.distOptions(mm)), q.ShowAll),
		Percent:    focus(analysis.Describe(split.Percent, e.distOptions(pct)), q.ShowAll),
	}, nil
}

// PH builds the pH distribution panel of one chemical.
func (e *Explorer) PH(ctx context.Context, chemical string, showAll bool) (PH, error) {
	recs, err := e.chemicalRecords(ctx, chemical)
	if err != nil {
		return PH{}, err
	}
	opt := e.distOptions(e.opt.PHBinWidth)
	opt.Density = false
	return PH{
		Meta:         e.meta(),
		Chemical:     chemical,
		ShowAll:      showAll,
		Distribution: focus(analysis.Describe(analysis.PHValues(recs), opt), showAll),
	}, nil
}

// Cooccurrence builds the matrix and ranked list for one chemical. Only the
// rows of proteins that used the chemical are fetched.
func (e *Explorer) Cooccurrence(ctx context.Context, chemical string) (Cooccurrence, error) {
	sel, err := e.chemicalRecords(ctx, chemical)
	if err != nil {
		return Cooccurrence{}, err
	}
	seen := map[string]struct{}{}
	var ids []string
	for _, r := range sel {
		if _, ok := seen[r.ProteinID]; !ok {
			seen[r.ProteinID] = struct{}{}
			ids = append(ids, r.ProteinID)
		}
	}
	var related []analysis.ConditionRecord
	if len(ids) > 0 {
		related = e.fetch(ctx, "conditions sharing proteins with "+chemical, func(ctx context.Context) ([]analysis.ConditionRecord, error) {
			return e.src.ConditionsByProteins(ctx, ids)
		})
	}
	res := analysis.BuildCooccurrence(related, chemical, analysis.CooccurrenceOptions{
		MatrixTopK: e.opt.MatrixTopK,
		RankedTopK: e.opt.RankedTopK,
	})
	return Cooccurrence{Meta: e.meta(), CooccurrenceResult: res}, nil
}

// Protein builds the drill-down for one protein id (case-insensitive).
func (e *Explorer) Protein(ctx context.Context, proteinID string) (Protein, error) {
	id := strings.TrimSpace(proteinID)
	if id == "" {
		return Protein{}, ErrEmptySelection
	}
	recs := e.fetch(ctx, "conditions for protein "+id, func(ctx context.Context) ([]analysis.ConditionRecord, error) {
		return e.src.ConditionsByProtein(ctx, id)
	})
	if len(recs) > 0 {
		id = recs[0].ProteinID
	}
	return Protein{Meta: e.meta(), ProteinProfile: analysis.ProfileProtein(id, recs)}, nil
}

// Chemical assembles every panel of one chemical.
func (e *Explorer) Chemical(ctx context.Context, chemical string, q ConcentrationQuery) (ChemicalReport, error) {
	sum, err := e.Summary(ctx, chemical)
	if err != nil {
		return ChemicalReport{}, err
	}
	conc, err := e.Concentration(ctx, chemical, q)
	if err != nil {
		return ChemicalReport{}, err
	}
	ph, err := e.PH(ctx, chemical, q.ShowAll)
	if err != nil {
		return ChemicalReport{}, err
	}
	co, err := e.Cooccurrence(ctx, chemical)
	if err != nil {
		return ChemicalReport{}, err
	}
	return ChemicalReport{Meta: e.meta(), Summary: sum, Concentration: conc, PH: ph, Cooccurrence: co}, nil
}

func (e *Explorer) distOptions(width float64) analysis.DistributionOptions {
	return analysis.DistributionOptions{
		BinWidth:  width,
		KDEPoints: e.opt.KDEPoints,
		Density:   true,
		FocusIQR:  e.opt.FocusIQR,
	}
}

// focus drops histogram bins that lie entirely outside the IQR focus range
// unless showAll is set. Bins are half-open, so one ending at the lower fence
// holds no focused value.
func focus(d analysis.Distribution, showAll bool) analysis.Distribution {
	if showAll || d.Focus == nil {
		return d
	}
	kept := make([]analysis.Bin, 0, len(d.Histogram))
	for _, b := range d.Histogram {
		if b.Upper <= d.Focus.Lower || b.Lower > d.Focus.Upper {
			continue
		}
		kept = append(kept, b)
	}
	d.Histogram = kept
	return d
}
