package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/b-rodrigues/pkgctx/internal/mcp"
	"github.com/b-rodrigues/pkgctx/internal/output"
	"github.com/b-rodrigues/pkgctx/internal/storage"
	"github.com/b-rodrigues/pkgctx/pkg/types"
)

// addExtractionFlags registers the flags shared by r and index
func addExtractionFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("compact", false, "keep only first sentences and drop examples")
	cmd.Flags().Bool("include-internal", false, "include dot-prefixed and unexported functions")
	cmd.Flags().Bool("hoist-common-args", false, "move arguments shared by 3+ functions to the package record")
	cmd.Flags().Bool("installed", false, "introspect the installed package with Rscript instead of reading sources")
	cmd.Flags().Int("workers", 0, "concurrent file workers")
	cmd.Flags().String("cran-mirror", "", "CRAN mirror URL")
	cmd.Flags().String("rscript", "", "Rscript executable used with --installed")
}

// addOutputFlags registers the record rendering flags
func addOutputFlags(cmd *cobra.Command, render *bool, style *string) {
	cmd.Flags().StringP("format", "f", "", "output format: yaml, json, markdown")
	cmd.Flags().BoolVar(render, "render", false, "style markdown output for the terminal")
	cmd.Flags().StringVar(style, "style", "", "glamour style for --render (dark, light, notty, ...)")
}

func (a *app) writeRecords(records []types.Record, render bool, style string) error {
	format, err := output.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return err
	}
	if render && format != output.FormatMarkdown {
		return fmt.Errorf("--render requires --format markdown")
	}
	w := output.NewWriter(os.Stdout, format, output.Options{Render: render, Style: style})
	return w.Write(records)
}

func newExtractCmd(a *app) *cobra.Command {
	var render bool
	var style string

	cmd := &cobra.Command{
		Use:   "r <package>",
		Short: "Extract the API records of an R package",
		Long: `Extract the API records of an R package and write them to stdout.

<package> is a CRAN name (dplyr), github:owner/repo[@ref], or a path to a
package source directory (., ./pkg, /abs/pkg, ~/pkg, local:pkg).`,
		Example: `  pkgctx r dplyr
  pkgctx r github:tidyverse/dplyr@v1.1.4 --compact --hoist-common-args
  pkgctx r . --include-internal --format json
  pkgctx r stats --installed --format markdown --render`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			installed, _ := cmd.Flags().GetBool("installed")

			idx, err := a.newIndexer(nil)
			if err != nil {
				return err
			}
			ext, err := idx.Extract(cmd.Context(), args[0], a.indexerConfig(installed))
			if err != nil {
				return err
			}
			if ext.Stats.FilesFailed > 0 {
				a.logger.Warn().Int("files_failed", ext.Stats.FilesFailed).Strs("errors", ext.Stats.ErrorMessages).Msg("some files were skipped")
			}
			return a.writeRecords(ext.Records, render, style)
		},
	}

	addExtractionFlags(cmd)
	addOutputFlags(cmd, &render, &style)
	return cmd
}

func newIndexCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <package>",
		Short: "Extract an R package and store it in the search index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			installed, _ := cmd.Flags().GetBool("installed")

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			idx, err := a.newIndexer(store)
			if err != nil {
				return err
			}
			stats, err := idx.IndexPackage(cmd.Context(), args[0], a.indexerConfig(installed))
			if err != nil {
				return err
			}

			fmt.Printf("Indexed %s %s from %s\n", stats.Package, stats.Version, stats.Source)
			fmt.Printf("  Functions stored: %d\n", stats.FunctionsStored)
			fmt.Printf("  Files parsed:     %d\n", stats.FilesParsed)
			fmt.Printf("  Files failed:     %d\n", stats.FilesFailed)
			fmt.Printf("  Warnings:         %d\n", stats.Warnings)
			fmt.Printf("  Duration:         %v\n", stats.Duration)
			fmt.Printf("  Run ID:           %s\n", stats.RunID)
			for _, msg := range stats.ErrorMessages {
				fmt.Printf("  ! %s\n", msg)
			}
			return nil
		},
	}

	addExtractionFlags(cmd)
	cmd.Flags().String("db", "", "index database path")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var limit int
	var pkg string
	var exportedOnly bool

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search indexed functions by keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			filters := &storage.SearchFilters{ExportedOnly: exportedOnly}
			if pkg != "" {
				filters.Packages = []string{pkg}
			}

			results, err := store.SearchFunctions(cmd.Context(), strings.Join(args, " "), limit, filters)
			if errors.Is(err, storage.ErrEmptyQuery) {
				return fmt.Errorf("query %q contains no searchable terms", strings.Join(args, " "))
			}
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Println("No matching functions.")
				return nil
			}
			for _, r := range results {
				fmt.Printf("%2d. %s::%s  (%.2f)\n", r.Rank, r.Package, r.Function.Name, r.RelevanceScore)
				fmt.Printf("    %s\n", r.Function.Signature)
				if r.Function.Purpose != "" {
					fmt.Printf("    %s\n", r.Function.Purpose)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", storage.DefaultSearchLimit, "maximum number of results")
	cmd.Flags().StringVarP(&pkg, "package", "p", "", "only search this package")
	cmd.Flags().BoolVar(&exportedOnly, "exported-only", false, "skip internal functions")
	cmd.Flags().String("db", "", "index database path")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var render bool
	var style string

	cmd := &cobra.Command{
		Use:   "show <package> <function>",
		Short: "Print the stored record of one function",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			fn, err := store.GetFunction(cmd.Context(), args[0], args[1])
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%s::%s is not in the index", args[0], args[1])
			}
			if err != nil {
				return err
			}
			return a.writeRecords([]types.Record{types.NewFunctionRecord(fn.ToRecord())}, render, style)
		},
	}

	addOutputFlags(cmd, &render, &style)
	cmd.Flags().String("db", "", "index database path")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			packages, err := store.ListPackages(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range packages {
				fmt.Printf("%-24s %-12s %5d functions  %s\n",
					p.Name, p.Version, p.FunctionCount, p.LastIndexedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	cmd.Flags().String("db", "", "index database path")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <package>",
		Short: "Show index statistics of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			status, err := store.GetStatus(cmd.Context(), args[0])
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%s is not indexed", args[0])
			}
			if err != nil {
				return err
			}

			p := status.Package
			fmt.Printf("%s %s (%s)\n", p.Name, p.Version, p.Source)
			fmt.Printf("  Last indexed:  %s\n", p.LastIndexedAt.Format("2006-01-02 15:04:05"))
			fmt.Printf("  Functions:     %d (%d exported)\n", status.FunctionsCount, status.ExportedCount)
			fmt.Printf("  Arguments:     %d\n", status.ArgumentsCount)
			fmt.Printf("  Examples:      %d\n", status.ExamplesCount)
			fmt.Printf("  Common args:   %d\n", len(p.CommonArguments))
			fmt.Printf("  Index size:    %.2f MB\n", status.IndexSizeMB)
			if run := status.LastRun; run != nil {
				fmt.Printf("  Last run:      %s (%d files, %d failed, %d warnings, %v)\n",
					run.RunID, run.FilesParsed, run.FilesFailed, run.Warnings, run.Duration)
			}
			return nil
		},
	}
	cmd.Flags().String("db", "", "index database path")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			idx, err := a.newIndexer(store)
			if err != nil {
				return err
			}
			server, err := mcp.NewServer(store, idx, a.logger)
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			err = server.Serve(cmd.Context())
			a.logger.Info().Msg("server stopped")
			return err
		},
	}
	cmd.Flags().String("db", "", "index database path")
	cmd.Flags().String("cran-mirror", "", "CRAN mirror URL")
	cmd.Flags().String("rscript", "", "Rscript executable for installed packages")
	return cmd
}
