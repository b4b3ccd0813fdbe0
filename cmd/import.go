package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/crystaleda-cli/internal/analysis"
	"github.com/KaramelBytes/crystaleda-cli/internal/ingest"
	"github.com/KaramelBytes/crystaleda-cli/internal/store"
	"github.com/spf13/cobra"
)

var (
	impDelimiter string
	impSheet     string
	impReplace   bool
	impQuiet     bool
)

// maxImportWarnings caps the per-row warnings echoed to stderr for each input.
const maxImportWarnings = 10

var importCmd = &cobra.Command{
	Use:   "import <path|glob|s3://bucket/key>...",
	Short: "Load condition tables (CSV/TSV/XLSX) into the database",
	Long: `Load one or more condition tables into the database. Local arguments may be glob
patterns; s3://bucket/key arguments are fetched with the configured S3 settings.
All inputs are read before anything is written, so a bad file leaves the database untouched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		delim, ok := ingest.ParseDelimiter(impDelimiter)
		if !ok {
			return fmt.Errorf("unsupported --delimiter: %s (use ',' ';' or tab)", impDelimiter)
		}
		inputs, err := expandInputs(args)
		if err != nil {
			return err
		}
		s3cfg := ingest.S3Config{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}
		ctx := cmd.Context()
		out, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

		var records []analysis.ConditionRecord
		skipped := 0
		for i, in := range inputs {
			if !impQuiet && len(inputs) > 1 {
				fmt.Fprintf(out, "[%d/%d] Reading %s...\n", i+1, len(inputs), in)
			}
			res, err := ingest.Load(ctx, in, ingest.Options{Delimiter: delim, Sheet: impSheet}, s3cfg)
			if err != nil {
				return fmt.Errorf("read %s: %w", in, err)
			}
			for j, w := range res.Warnings {
				if j == maxImportWarnings {
					fmt.Fprintf(stderr, "⚠ Warning: %s: ... and %d more\n", filepath.Base(in), len(res.Warnings)-maxImportWarnings)
					break
				}
				fmt.Fprintf(stderr, "⚠ Warning: %s\n", w)
			}
			records = append(records, res.Records...)
			skipped += res.Skipped
		}

		st, err := store.Open(ctx, storeConfig(true))
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		if err := st.EnsureSchema(ctx); err != nil {
			return err
		}
		write := st.Insert
		if impReplace {
			write = st.Replace
		}
		n, err := write(ctx, records)
		if err != nil {
			return fmt.Errorf("store conditions: %w", err)
		}
		source := inputs[0]
		if len(inputs) > 1 {
			source = fmt.Sprintf("%d files", len(inputs))
		}
		fmt.Fprintf(out, "✓ Imported %d conditions from %s\n", n, source)
		if skipped > 0 {
			fmt.Fprintf(out, "  skipped %d rows without a protein id\n", skipped)
		}
		if impReplace {
			fmt.Fprintln(out, "  existing conditions were replaced")
		}
		return nil
	},
}

// expandInputs resolves globs for local paths and keeps s3 URIs as given.
func expandInputs(args []string) ([]string, error) {
	var local, remote []string
	seen := map[string]struct{}{}
	add := func(list *[]string, p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		*list = append(*list, p)
	}
	for _, arg := range args {
		if ingest.IsS3URI(arg) {
			add(&remote, arg)
			continue
		}
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err != nil {
				return nil, fmt.Errorf("no input matched %s", arg)
			}
			matches = []string{arg}
		}
		for _, m := range matches {
			add(&local, m)
		}
	}
	sort.Strings(local)
	return append(local, remote...), nil
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&impDelimiter, "delimiter", "", "CSV delimiter: ',' ';' or 'tab' (default: detect)")
	importCmd.Flags().StringVar(&impSheet, "sheet", "", "XLSX worksheet name (default: first sheet)")
	importCmd.Flags().BoolVar(&impReplace, "replace", false, "replace existing conditions instead of appending")
	importCmd.Flags().BoolVarP(&impQuiet, "quiet", "q", false, "suppress per-file progress")
}
