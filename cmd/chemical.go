package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/crystaleda-cli/internal/explorer"
	"github.com/spf13/cobra"
)

var (
	chemView    string
	chemBinMM   float64
	chemBinPct  float64
	chemShowAll bool
)

var chemicalCmd = &cobra.Command{
	Use:   "chemical <name>",
	Short: "Summarize one chemical: ranges, pH and co-occurring chemicals",
	Long: `Summarize one chemical. Multi-word names may be quoted or passed as separate words.

Views:
  summary        occurrences, unique proteins, PubChem id, typical ranges
  concentration  mM and % histograms with density overlays
  ph             pH histogram
  cooccurrence   chemicals sharing proteins with this one
  all            every view (default)`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		ctx := cmd.Context()
		exp, done := openExplorer(ctx, cmd, stderrLogger(cmd))
		defer done()
		q := explorer.ConcentrationQuery{BinWidthMM: chemBinMM, BinWidthPct: chemBinPct, ShowAll: chemShowAll}

		var (
			view markdowner
			err  error
		)
		switch strings.ToLower(chemView) {
		case "", "all":
			view, err = exp.Chemical(ctx, name, q)
		case "summary":
			view, err = exp.Summary(ctx, name)
		case "concentration", "conc":
			view, err = exp.Concentration(ctx, name, q)
		case "ph":
			view, err = exp.PH(ctx, name, chemShowAll)
		case "cooccurrence", "co":
			view, err = exp.Cooccurrence(ctx, name)
		default:
			return fmt.Errorf("unsupported --view: %s (use summary|concentration|ph|cooccurrence|all)", chemView)
		}
		if err != nil {
			return err
		}
		return render(cmd, view)
	},
}

func init() {
	rootCmd.AddCommand(chemicalCmd)
	chemicalCmd.Flags().StringVar(&chemView, "view", "all", "summary|concentration|ph|cooccurrence|all")
	chemicalCmd.Flags().Float64Var(&chemBinMM, "bin-mm", 0, "mM histogram bin width, clamped to [0.01, 10] (default from config)")
	chemicalCmd.Flags().Float64Var(&chemBinPct, "bin-pct", 0, "% histogram bin width, clamped to [0.005, 3] (default from config)")
	chemicalCmd.Flags().BoolVar(&chemShowAll, "show-all", false, "show every histogram bin instead of the IQR focus range")
}
