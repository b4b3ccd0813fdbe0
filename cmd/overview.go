package cmd

import (
	"github.com/spf13/cobra"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Rank chemicals by how often they appear",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, done := openExplorer(cmd.Context(), cmd, stderrLogger(cmd))
		defer done()
		return render(cmd, exp.Overview(cmd.Context()))
	},
}

var chemicalsCmd = &cobra.Command{
	Use:   "chemicals",
	Short: "List the chemicals available for drill-down",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, done := openExplorer(cmd.Context(), cmd, stderrLogger(cmd))
		defer done()
		return render(cmd, exp.Chemicals(cmd.Context()))
	},
}

func init() {
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(chemicalsCmd)
}
