package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/crystaleda-cli/internal/config"
	"github.com/KaramelBytes/crystaleda-cli/internal/store"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set CrystalEDA configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "db_driver: %s\n", cfg.DBDriver)
		fmt.Fprintf(out, "db_path: %s\n", cfg.DBPath)
		if cfg.DBDSN != "" {
			fmt.Fprintf(out, "db_dsn: %s\n", maskDSN(cfg.DBDSN))
		}
		fmt.Fprintf(out, "overview_limit: %d\n", cfg.OverviewLimit)
		fmt.Fprintf(out, "matrix_top_k: %d\n", cfg.MatrixTopK)
		fmt.Fprintf(out, "ranked_top_k: %d\n", cfg.RankedTopK)
		fmt.Fprintf(out, "kde_points: %d\n", cfg.KDEPoints)
		fmt.Fprintf(out, "bin_width_mm: %g\n", cfg.BinWidthMM)
		fmt.Fprintf(out, "bin_width_pct: %g\n", cfg.BinWidthPct)
		fmt.Fprintf(out, "ph_bin_width: %g\n", cfg.PHBinWidth)
		fmt.Fprintf(out, "focus_iqr: %t\n", cfg.FocusIQR)
		fmt.Fprintf(out, "query_timeout_sec: %d\n", cfg.QueryTimeoutSec)
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		if cfg.S3Endpoint != "" {
			fmt.Fprintf(out, "s3_endpoint: %s\n", cfg.S3Endpoint)
		}
		fmt.Fprintf(out, "s3_region: %s\n", cfg.S3Region)
		fmt.Fprintf(out, "s3_path_style: %t\n", cfg.S3PathStyle)
		if cfg.S3AccessKeyID != "" {
			fmt.Fprintf(out, "s3_access_key_id: %s\n", mask(cfg.S3AccessKeyID))
		}
		if cfg.S3SecretAccessKey != "" {
			fmt.Fprintf(out, "s3_secret_access_key: %s\n", mask(cfg.S3SecretAccessKey))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// reload so --db/--driver overrides are not persisted
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := setKey(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setKey(c *cfgpkg.Global, key, val string) error {
	positiveInt := func(dst *int) error {
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		*dst = i
		return nil
	}
	positiveFloat := func(dst *float64) error {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid positive float for %s: %v", key, val)
		}
		*dst = f
		return nil
	}
	boolean := func(dst *bool) error {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for %s: %v", key, val)
		}
		*dst = b
		return nil
	}
	switch key {
	case "db_driver":
		d := strings.ToLower(val)
		if d != "sqlite" && d != "postgres" {
			return fmt.Errorf("%w: %s (use sqlite or postgres)", store.ErrUnsupportedDriver, val)
		}
		c.DBDriver = d
	case "db_path":
		c.DBPath = val
	case "db_dsn":
		c.DBDSN = val
	case "overview_limit":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for overview_limit: %v (0 = no limit)", val)
		}
		c.OverviewLimit = i
	case "matrix_top_k":
		return positiveInt(&c.MatrixTopK)
	case "ranked_top_k":
		return positiveInt(&c.RankedTopK)
	case "kde_points":
		i, err := strconv.Atoi(val)
		if err != nil || i < 2 {
			return fmt.Errorf("invalid int for kde_points: %v (minimum 2)", val)
		}
		c.KDEPoints = i
	case "bin_width_mm":
		return positiveFloat(&c.BinWidthMM)
	case "bin_width_pct":
		return positiveFloat(&c.BinWidthPct)
	case "ph_bin_width":
		return positiveFloat(&c.PHBinWidth)
	case "focus_iqr":
		return boolean(&c.FocusIQR)
	case "query_timeout_sec":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for query_timeout_sec: %v (0 = no timeout)", val)
		}
		c.QueryTimeoutSec = i
	case "listen_addr":
		c.ListenAddr = val
	case "s3_region":
		c.S3Region = val
	case "s3_endpoint":
		c.S3Endpoint = val
	case "s3_path_style":
		return boolean(&c.S3PathStyle)
	case "s3_access_key_id":
		c.S3AccessKeyID = val
	case "s3_secret_access_key":
		c.S3SecretAccessKey = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}

// maskDSN hides the password of a postgres URL or key/value DSN.
func maskDSN(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		rest := dsn[i+3:]
		at := strings.LastIndex(rest, "@")
		if at < 0 {
			return dsn
		}
		user, _, hasPass := strings.Cut(rest[:at], ":")
		if !hasPass {
			return dsn
		}
		return dsn[:i+3] + user + ":****" + rest[at:]
	}
	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(strings.ToLower(f), "password=") {
			fields[i] = "password=****"
		}
	}
	return strings.Join(fields, " ")
}
