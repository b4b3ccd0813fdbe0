package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	cfgpkg "github.com/KaramelBytes/crystaleda-cli/internal/config"
	"github.com/KaramelBytes/crystaleda-cli/internal/explorer"
	"github.com/KaramelBytes/crystaleda-cli/internal/store"
	"github.com/KaramelBytes/crystaleda-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile    string
	debug      bool
	flagDB     string
	flagDriver string
	flagFormat string
	flagOutput string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "crystaleda",
	Short: "CrystalEDA CLI: explore protein crystallization conditions",
	Long: `CrystalEDA summarizes a table of protein crystallization conditions: which chemicals
are used, at what concentrations and pH, which chemicals appear together on the same
proteins, and what each protein's conditions and sequence look like.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error { return loadConfig() }
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.crystaleda/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "database driver: sqlite|postgres (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "markdown", "output format: markdown|json|yaml")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "write output to a file instead of stdout")
}

func loadConfig() error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	f := rootCmd.PersistentFlags()
	if f.Changed("db") && flagDB != "" {
		c.DBPath = flagDB
	}
	if f.Changed("driver") && flagDriver != "" {
		c.DBDriver = flagDriver
	}
	cfg = c
	return nil
}

func storeConfig(create bool) store.Config {
	return store.Config{Driver: cfg.DBDriver, Path: cfg.DBPath, DSN: cfg.DBDSN, Create: create}
}

func explorerOptions() explorer.Options {
	opt := explorer.DefaultOptions()
	opt.OverviewLimit = cfg.OverviewLimit
	opt.MatrixTopK = cfg.MatrixTopK
	opt.RankedTopK = cfg.RankedTopK
	opt.KDEPoints = cfg.KDEPoints
	opt.BinWidthMM = cfg.BinWidthMM
	opt.BinWidthPct = cfg.BinWidthPct
	opt.PHBinWidth = cfg.PHBinWidth
	opt.FocusIQR = cfg.FocusIQR
	opt.QueryTimeout = cfg.QueryTimeout()
	return opt
}

// openExplorer connects to the store. An unreachable store is reported as a
// warning and every view comes back empty.
func openExplorer(ctx context.Context, cmd *cobra.Command, logger *log.Logger) (*explorer.Explorer, func()) {
	closeFn := func() {}
	var src explorer.Source
	st, err := store.Open(ctx, storeConfig(false))
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v; results will be empty\n", err)
		src = explorer.UnavailableSource{Err: err}
	} else {
		src = st
		closeFn = func() { _ = st.Close() }
	}
	exp := explorer.New(src, explorerOptions(), logger)
	exp.SetDebug(debug)
	return exp, closeFn
}

func stderrLogger(cmd *cobra.Command) *log.Logger {
	return log.New(cmd.ErrOrStderr(), "", 0)
}

type markdowner interface {
	Markdown() string
}

// render writes a view in the selected --format to stdout or --output.
func render(cmd *cobra.Command, v markdowner) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(flagFormat)) {
	case "", "markdown", "md":
		data = []byte(v.Markdown())
	case "json":
		data, err = utils.PrettyJSON(v)
	case "yaml", "yml":
		data, err = utils.YAML(v)
	default:
		return fmt.Errorf("unsupported --format: %s (use markdown|json|yaml)", flagFormat)
	}
	if err != nil {
		return err
	}
	if flagOutput != "" {
		if err := utils.SafeWriteFile(flagOutput, data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", flagOutput)
		return nil
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
