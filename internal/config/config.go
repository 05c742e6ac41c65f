// Package config loads pkgctx configuration from defaults, an optional
// YAML file and PKGCTX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/b-rodrigues/pkgctx/internal/logging"
)

// EnvPrefix prefixes every environment variable, e.g. PKGCTX_STORAGE_DB_PATH
const EnvPrefix = "PKGCTX"

// Config holds the complete application configuration
type Config struct {
	Output  OutputConfig  `mapstructure:"output"`
	Extract ExtractConfig `mapstructure:"extract"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// OutputConfig controls record rendering
type OutputConfig struct {
	Format  string `mapstructure:"format"` // yaml, json, markdown
	Compact bool   `mapstructure:"compact"`
}

// ExtractConfig controls the extraction pipeline
type ExtractConfig struct {
	IncludeInternal bool `mapstructure:"include_internal"`
	HoistCommonArgs bool `mapstructure:"hoist_common_args"`
	Workers         int  `mapstructure:"workers"`
}

// FetchConfig controls package acquisition
type FetchConfig struct {
	CRANMirror string        `mapstructure:"cran_mirror"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	Rscript    string        `mapstructure:"rscript"`
}

// StorageConfig locates the index database
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns a new configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: "yaml",
		},
		Extract: ExtractConfig{
			Workers: 4,
		},
		Fetch: FetchConfig{
			CRANMirror: "https://cloud.r-project.org",
			Timeout:    60 * time.Second,
			MaxRetries: 3,
			Rscript:    "Rscript",
		},
		Storage: StorageConfig{
			DBPath: DefaultDBPath(),
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// DefaultDBPath returns ~/.cache/pkgctx/index.db
func DefaultDBPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "pkgctx", "index.db")
}

// New returns a viper instance with defaults, env binding and config search
// paths set. configPath overrides the search.
func New(configPath string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("pkgctx")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/pkgctx")
	}
	return v
}

// Load reads the config file, if any, and unmarshals v into a Config
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "yaml", "json", "markdown":
	default:
		return fmt.Errorf("invalid output format: %s (must be yaml, json, or markdown)", c.Output.Format)
	}

	if c.Extract.Workers < 1 {
		return fmt.Errorf("extract.workers must be >= 1, got %d", c.Extract.Workers)
	}

	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("fetch.max_retries must be >= 0, got %d", c.Fetch.MaxRetries)
	}

	if c.Fetch.CRANMirror == "" {
		return fmt.Errorf("fetch.cran_mirror is required")
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	return nil
}

// LoggerConfig converts the logging section for logging.New
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:   logging.Level(c.Logging.Level),
		Console: c.Logging.Console,
		Output:  os.Stderr,
	}
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.compact", defaults.Output.Compact)
	v.SetDefault("extract.include_internal", defaults.Extract.IncludeInternal)
	v.SetDefault("extract.hoist_common_args", defaults.Extract.HoistCommonArgs)
	v.SetDefault("extract.workers", defaults.Extract.Workers)
	v.SetDefault("fetch.cran_mirror", defaults.Fetch.CRANMirror)
	v.SetDefault("fetch.timeout", defaults.Fetch.Timeout)
	v.SetDefault("fetch.max_retries", defaults.Fetch.MaxRetries)
	v.SetDefault("fetch.rscript", defaults.Fetch.Rscript)
	v.SetDefault("storage.db_path", defaults.Storage.DBPath)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.console", defaults.Logging.Console)
}
