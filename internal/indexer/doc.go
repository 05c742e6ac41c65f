// Package indexer turns package specifiers into stored, searchable API
// records.
//
// The indexer ties the fetch, extractor, transform and storage packages
// together. It is the one place that knows the order of the stages.
//
// # Basic Usage
//
//	f, _ := fetch.New(fetch.DefaultConfig())
//	store, _ := storage.NewSQLiteStorage("~/.cache/pkgctx/index.db")
//	idx := indexer.New(f, store, logger)
//
//	stats, err := idx.IndexPackage(ctx, "github:tidyverse/dplyr", &indexer.Config{
//	    HoistCommonArgs: true,
//	})
//
//	fmt.Printf("Stored %d functions of %s %s\n",
//	    stats.FunctionsStored, stats.Package, stats.Version)
//
// # Pipeline
//
//  1. Resolve: parse the specifier (local path, github:owner/repo[@ref],
//     or a CRAN name) and fetch the package tree to disk
//  2. Extract: parse man/*.Rd and scan R/*.R concurrently, join docs to
//     signatures (see package extractor)
//  3. Transform: optional compaction, then optional hoisting of shared
//     arguments to the package record
//  4. Store: upsert the package, replace its functions and record the run
//     statistics in a single transaction
//
// Downloaded trees live in a temporary directory that is removed when the
// run ends, whether it succeeded or not.
//
// Extract runs stages 1 to 3 only and is what `pkgctx r` and the
// extract_package tool use.
//
// # Installed Packages
//
// With Config.Installed the fetch and extract stages are replaced by R
// introspection of an installed package (see package introspect). The
// indexer must have been given an introspector:
//
//	idx.SetIntrospector(introspect.New(nil, "Rscript", logger))
//	ext, err := idx.Extract(ctx, "stats", &indexer.Config{Installed: true})
//
// # Concurrency
//
// IndexPackage is guarded by an IndexLock. A second call while a run is
// active returns ErrIndexingInProgress immediately:
//
//	if _, err := idx.IndexPackage(ctx, spec, cfg); errors.Is(err, indexer.ErrIndexingInProgress) {
//	    // retry later
//	}
//
// Extract takes no lock. File level parallelism lives inside the
// extractor and is sized by Config.Workers (default: NumCPU).
//
// # Error Handling
//
// Unreadable files are not fatal. They show up in Statistics.FilesFailed
// and Statistics.ErrorMessages. Fetch failures, a missing DESCRIPTION and
// storage errors abort the run; a failed store leaves the previous index
// of the package untouched.
package indexer
