package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var proteinCmd = &cobra.Command{
	Use:   "protein <id>",
	Short: "Show a protein's conditions and sequence composition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, done := openExplorer(cmd.Context(), cmd, stderrLogger(cmd))
		defer done()
		view, err := exp.Protein(cmd.Context(), strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}
		return render(cmd, view)
	},
}

func init() {
	rootCmd.AddCommand(proteinCmd)
}
