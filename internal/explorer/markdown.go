package explorer

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KaramelBytes/crystaleda-cli/internal/analysis"
)

var printer = message.NewPrinter(language.English)

// safeCell escapes pipes and flattens newlines for table cells.
func safeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func optString(p *string) string {
	if p == nil {
		return "—"
	}
	return safeCell(*p)
}

func header(b *strings.Builder, m Meta, title string) {
	fmt.Fprintf(b, "[%s]\n", title)
	fmt.Fprintf(b, "Report: %s\n", m.ReportID)
	fmt.Fprintf(b, "Generated: %s\n\n", m.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
}

// Markdown renders the overview table.
func (o Overview) Markdown() string {
	var b strings.Builder
	header(&b, o.Meta, "CHEMICAL OVERVIEW")
	printer.Fprintf(&b, "Conditions: %d\n", o.TotalRecords)
	if o.Limit > 0 {
		fmt.Fprintf(&b, "Showing: top %d by occurrence\n", o.Limit)
	}
	b.WriteString("\n")
	if len(o.Chemicals) == 0 {
		b.WriteString("No chemical data available.\n")
		return b.String()
	}
	b.WriteString("| # | Chemical | Count | % of conditions | Unique proteins |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for i, g := range o.Chemicals {
		printer.Fprintf(&b, "| %d | %s | %d | %.2f | %d |\n", i+1, safeCell(g.Name), g.Count, g.Percent, g.UniqueProteins)
	}
	return b.String()
}

// Markdown renders the chemical list.
func (l ChemicalList) Markdown() string {
	var b strings.Builder
	header(&b, l.Meta, "CHEMICALS")
	if len(l.Chemicals) == 0 {
		b.WriteString("No chemicals available.\n")
		return b.String()
	}
	for _, c := range l.Chemicals {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	return b.String()
}

// Markdown renders the summary block.
func (s Summary) Markdown() string {
	var b strings.Builder
	header(&b, s.Meta, "CHEMICAL SUMMARY")
	s.writeBody(&b)
	return b.String()
}

func (s Summary) writeBody(b *strings.Builder) {
	fmt.Fprintf(b, "Chemical: %s\n", s.Chemical)
	if s.Occurrences == 0 {
		b.WriteString("No conditions recorded for this chemical.\n")
		return
	}
	printer.Fprintf(b, "- Occurrences: %d (%.2f%% of all conditions)\n", s.Occurrences, s.PercentOfAll)
	printer.Fprintf(b, "- Unique proteins: %d\n", s.UniqueProteins)
	if s.CompoundID != "" {
		fmt.Fprintf(b, "- PubChem CID: %s (%s)\n", s.CompoundID, s.PubChemURL)
	} else {
		b.WriteString("- PubChem CID: N/A\n")
	}
	if s.AvgSequenceLength != nil {
		fmt.Fprintf(b, "- Average sequence length: %.1f residues\n", *s.AvgSequenceLength)
	} else {
		b.WriteString("- Average sequence length: N/A\n")
	}
	fmt.Fprintf(b, "- Typical range (mM, n=%d): %s%s\n", s.Millimolar.Count, s.Millimolar, preferMark(s.PreferMillimolar))
	fmt.Fprintf(b, "- Typical range (%%, n=%d): %s%s\n", s.Percent.Count, s.Percent, preferMark(s.PreferPercent))
}

func preferMark(on bool) string {
	if on {
		return " ★"
	}
	return ""
}

func writeDistribution(b *strings.Builder, title, unit string, d analysis.Distribution, showAll bool) {
	fmt.Fprintf(b, "[%s]\n", title)
	if d.Summary.Empty() {
		b.WriteString("No data.\n\n")
		return
	}
	fmt.Fprintf(b, "- Values: %d\n", d.Summary.Count)
	fmt.Fprintf(b, "- 5–95%%: %s\n", d.Summary)
	fmt.Fprintf(b, "- Bin width: %g %s\n", d.BinWidth, unit)
	if d.Focus != nil {
		mode := "focused"
		if showAll {
			mode = "all values"
		}
		fmt.Fprintf(b, "- IQR focus: %.4g – %.4g (%s)\n", d.Focus.Lower, d.Focus.Upper, mode)
	}
	if !d.Density.Empty() {
		peak := 0
		for i, v := range d.Density.Density {
			if v > d.Density.Density[peak] {
				peak = i
			}
		}
		fmt.Fprintf(b, "- Density peak: %.4g %s\n", d.Density.Grid[peak], unit)
	}
	b.WriteString("\n| Bin | Count |\n| --- | --- |\n")
	for _, bin := range d.Histogram {
		printer.Fprintf(b, "| %.4g – %.4g | %d |\n", bin.Lower, bin.Upper, bin.Count)
	}
	b.WriteString("\n")
}

// Markdown renders both concentration panels.
func (c Concentration) Markdown() string {
	var b strings.Builder
	header(&b, c.Meta, "CONCENTRATION")
	fmt.Fprintf(&b, "Chemical: %s\n\n", c.Chemical)
	c.writeBody(&b)
	return b.String()
}

func (c Concentration) writeBody(b *strings.Builder) {
	writeDistribution(b, "MILLIMOLAR", "mM", c.Millimolar, c.ShowAll)
	writeDistribution(b, "PERCENT", "%", c.Percent, c.ShowAll)
}

// Markdown renders the pH panel.
func (p PH) Markdown() string {
	var b strings.Builder
	header(&b, p.Meta, "PH DISTRIBUTION")
	fmt.Fprintf(&b, "Chemical: %s\n\n", p.Chemical)
	writeDistribution(&b, "PH", "pH", p.Distribution, p.ShowAll)
	return b.String()
}

// Markdown renders the matrix and ranked list.
func (c Cooccurrence) Markdown() string {
	var b strings.Builder
	header(&b, c.Meta, "CO-OCCURRENCE")
	c.writeBody(&b)
	return b.String()
}

func (c Cooccurrence) writeBody(b *strings.Builder) {
	fmt.Fprintf(b, "Chemical: %s\n", c.Selected)
	switch c.Status {
	case analysis.CooccurrenceNoProteins:
		b.WriteString("No proteins found for this chemical.\n\n")
		return
	case analysis.CooccurrenceEmptySubset:
		b.WriteString("No co-occurring chemicals found.\n\n")
		return
	}
	b.WriteString("\n[TOP CO-OCCURRING CHEMICALS]\n")
	for i, rc := range c.Ranked {
		printer.Fprintf(b, "%d. %s — %d proteins\n", i+1, rc.Chemical, rc.Proteins)
	}
	b.WriteString("\n[MATRIX]\n| |")
	for _, name := range c.Chemicals {
		fmt.Fprintf(b, " %s |", safeCell(name))
	}
	b.WriteString("\n| --- |")
	for range c.Chemicals {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for i, row := range c.Matrix {
		fmt.Fprintf(b, "| %s |", safeCell(c.Chemicals[i]))
		for _, v := range row {
			fmt.Fprintf(b, " %d |", v)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// Markdown renders the protein drill-down.
func (p Protein) Markdown() string {
	var b strings.Builder
	header(&b, p.Meta, "PROTEIN")
	fmt.Fprintf(&b, "Protein: %s\n", p.ProteinID)
	if !p.Found {
		b.WriteString("Protein not found.\n")
		return b.String()
	}
	b.WriteString("\n[CONDITIONS]\n| Chemical | Concentration | Unit | pH |\n| --- | --- | --- | --- |\n")
	for _, row := range p.Conditions {
		conc := "—"
		if row.Concentration != nil {
			conc = fmt.Sprintf("%g", *row.Concentration)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", optString(row.Chemical), conc, optString(row.Unit), optString(row.PH))
	}
	b.WriteString("\n[SEQUENCE COMPOSITION]\n")
	if p.Sequence.Length == 0 {
		b.WriteString("No sequence available.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Length: %d\n", p.Sequence.Length)
	residues := make([]string, 0, len(p.Sequence.Composition))
	for aa := range p.Sequence.Composition {
		residues = append(residues, aa)
	}
	sort.Strings(residues)
	for _, aa := range residues {
		fmt.Fprintf(&b, "- %s: %.2f%%\n", aa, p.Sequence.Composition[aa]*100)
	}
	return b.String()
}

// Markdown renders every panel of the chemical.
func (r ChemicalReport) Markdown() string {
	var b strings.Builder
	header(&b, r.Meta, "CHEMICAL REPORT")
	b.WriteString("[SUMMARY]\n")
	r.Summary.writeBody(&b)
	b.WriteString("\n")
	r.Concentration.writeBody(&b)
	writeDistribution(&b, "PH", "pH", r.PH.Distribution, r.PH.ShowAll)
	b.WriteString("[CO-OCCURRENCE]\n")
	r.Cooccurrence.writeBody(&b)
	return b.String()
}
