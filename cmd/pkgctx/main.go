package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/b-rodrigues/pkgctx/internal/config"
	"github.com/b-rodrigues/pkgctx/internal/fetch"
	"github.com/b-rodrigues/pkgctx/internal/indexer"
	"github.com/b-rodrigues/pkgctx/internal/introspect"
	"github.com/b-rodrigues/pkgctx/internal/logging"
	"github.com/b-rodrigues/pkgctx/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// flagKeys maps command line flags onto configuration keys
var flagKeys = map[string]string{
	"format":            "output.format",
	"compact":           "output.compact",
	"include-internal":  "extract.include_internal",
	"hoist-common-args": "extract.hoist_common_args",
	"workers":           "extract.workers",
	"cran-mirror":       "fetch.cran_mirror",
	"rscript":           "fetch.rscript",
	"db":                "storage.db_path",
	"log-level":         "logging.level",
}

// app carries the loaded configuration to the subcommands
type app struct {
	configFile string
	cfg        *config.Config
	logger     zerolog.Logger
}

func main() {
	// Stdout carries records and the MCP protocol; logs go to stderr.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pkgctx",
		Short: "Extract compact, LLM-ready API records from R packages",
		Long: `pkgctx reads an R package (local directory, GitHub repository or CRAN
package), parses its Rd documentation and R sources, and emits one record per
exported function: signature, purpose, arguments, return value and examples.

Configuration is read from --config, ./pkgctx.yaml or
$HOME/.config/pkgctx/pkgctx.yaml, and PKGCTX_* environment variables
(e.g. PKGCTX_STORAGE_DB_PATH). Flags override both.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("pkgctx %s\nBuild Time: %s\nBuild Mode: %s\nSQLite Driver: %s\n",
		version, buildTime, storage.BuildMode, storage.DriverName))

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default is ./pkgctx.yaml or $HOME/.config/pkgctx/pkgctx.yaml)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newExtractCmd(a),
		newIndexCmd(a),
		newSearchCmd(a),
		newShowCmd(a),
		newListCmd(a),
		newStatusCmd(a),
		newServeCmd(a),
	)
	return root
}

// load reads the configuration with the command's flags bound on top and
// builds the logger
func (a *app) load(cmd *cobra.Command) error {
	v := config.New(a.configFile)
	if err := bindFlags(v, cmd); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// newIndexer builds the pipeline. store may be nil for extract-only use.
func (a *app) newIndexer(store storage.Storage) (*indexer.Indexer, error) {
	fcfg := fetch.DefaultConfig()
	fcfg.CRANMirror = a.cfg.Fetch.CRANMirror
	fcfg.Timeout = a.cfg.Fetch.Timeout
	fcfg.Retry.MaxRetries = a.cfg.Fetch.MaxRetries
	fcfg.Logger = logging.Component(a.logger, "fetch")

	fetcher, err := fetch.New(fcfg)
	if err != nil {
		return nil, err
	}

	idx := indexer.New(fetcher, store, logging.Component(a.logger, "indexer"))
	idx.SetIntrospector(introspect.New(introspect.ExecRunner{}, a.cfg.Fetch.Rscript, logging.Component(a.logger, "introspect")))
	return idx, nil
}

// openStore opens the index database, creating its directory
func (a *app) openStore() (*storage.SQLiteStorage, error) {
	path := a.cfg.Storage.DBPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}
	a.logger.Debug().Str("path", path).Str("driver", storage.DriverName).Msg("opened index")
	return store, nil
}

// indexerConfig collects the extraction options from the loaded configuration
func (a *app) indexerConfig(installed bool) *indexer.Config {
	return &indexer.Config{
		IncludeInternal: a.cfg.Extract.IncludeInternal,
		Compact:         a.cfg.Output.Compact,
		HoistCommonArgs: a.cfg.Extract.HoistCommonArgs,
		Installed:       installed,
		Workers:         a.cfg.Extract.Workers,
	}
}
