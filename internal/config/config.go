package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides (CRYSTALEDA_DB_DRIVER, ...).
const EnvPrefix = "CRYSTALEDA"

// DatabaseFile is the default SQLite file name.
const DatabaseFile = "CrystallizationEDA.db"

// Global configuration structure.
type Global struct {
	DBDriver string `mapstructure:"db_driver" yaml:"db_driver"`
	DBPath   string `mapstructure:"db_path" yaml:"db_path"`
	DBDSN    string `mapstructure:"db_dsn" yaml:"db_dsn"`

	// Explorer tuning
	OverviewLimit   int     `mapstructure:"overview_limit" yaml:"overview_limit"`
	MatrixTopK      int     `mapstructure:"matrix_top_k" yaml:"matrix_top_k"`
	RankedTopK      int     `mapstructure:"ranked_top_k" yaml:"ranked_top_k"`
	KDEPoints       int     `mapstructure:"kde_points" yaml:"kde_points"`
	BinWidthMM      float64 `mapstructure:"bin_width_mm" yaml:"bin_width_mm"`
	BinWidthPct     float64 `mapstructure:"bin_width_pct" yaml:"bin_width_pct"`
	PHBinWidth      float64 `mapstructure:"ph_bin_width" yaml:"ph_bin_width"`
	FocusIQR        bool    `mapstructure:"focus_iqr" yaml:"focus_iqr"`
	QueryTimeoutSec int     `mapstructure:"query_timeout_sec" yaml:"query_timeout_sec"`

	// HTTP API
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`

	// S3 import source (AWS or MinIO)
	S3Region          string `mapstructure:"s3_region" yaml:"s3_region"`
	S3Endpoint        string `mapstructure:"s3_endpoint" yaml:"s3_endpoint"`
	S3PathStyle       bool   `mapstructure:"s3_path_style" yaml:"s3_path_style"`
	S3AccessKeyID     string `mapstructure:"s3_access_key_id" yaml:"s3_access_key_id"`
	S3SecretAccessKey string `mapstructure:"s3_secret_access_key" yaml:"s3_secret_access_key"`
}

// QueryTimeout converts QueryTimeoutSec; non-positive disables the deadline.
func (c *Global) QueryTimeout() time.Duration {
	if c.QueryTimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.QueryTimeoutSec) * time.Second
}

// Dir returns ~/.crystaleda.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".crystaleda"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.crystaleda/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// the plain DB_PATH variable is honored for existing deployments
	_ = v.BindEnv("db_path", EnvPrefix+"_DB_PATH", "DB_PATH")

	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_path", "")
	v.SetDefault("db_dsn", "")
	v.SetDefault("overview_limit", 50)
	v.SetDefault("matrix_top_k", 15)
	v.SetDefault("ranked_top_k", 10)
	v.SetDefault("kde_points", 200)
	v.SetDefault("bin_width_mm", 1.0)
	v.SetDefault("bin_width_pct", 0.25)
	v.SetDefault("ph_bin_width", 0.25)
	v.SetDefault("focus_iqr", true)
	v.SetDefault("query_timeout_sec", 30)
	v.SetDefault("listen_addr", ":8050")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_path_style", false)
	v.SetDefault("s3_access_key_id", "")
	v.SetDefault("s3_secret_access_key", "")

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(dir, DatabaseFile)
	}
	return &c, nil
}
