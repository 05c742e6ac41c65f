// Package storage provides SQLite-based persistence for extracted package APIs.
//
// The storage layer manages:
//   - Package metadata and hoisted common arguments
//   - Function records with their arguments and examples
//   - Extraction run history
//   - Full-text search indexes
//
// # Database Schema
//
// Tables:
//   - packages: One row per package name (version, description, source)
//   - functions: Function records in stream order
//   - arguments: Documented arguments, ordered as in the signature
//   - examples: Example blocks, at most three per function
//   - extraction_runs: Statistics of every indexing run
//   - functions_fts: FTS5 index over name, signature, purpose and returns
//
// Migrations are versioned with semantic versions and applied on open.
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.cache/pkgctx/index.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	pkg := &storage.Package{Name: "dplyr", Version: "1.1.4"}
//	if err := db.UpsertPackage(ctx, pkg); err != nil {
//	    return err
//	}
//	n, err := db.ReplaceFunctions(ctx, pkg.ID, functions)
//
// # Transactions
//
// Use transactions for atomic operations:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	_ = tx.UpsertPackage(ctx, pkg)
//	_, _ = tx.ReplaceFunctions(ctx, pkg.ID, functions)
//	_ = tx.RecordRun(ctx, run)
//
//	if err := tx.Commit(); err != nil {
//	    return err
//	}
//
// ReplaceFunctions always deletes the package's previous functions first, so
// re-indexing a package never leaves stale rows behind.
//
// # Full-Text Search
//
// Query using BM25 ranking:
//
//	results, err := db.SearchFunctions(ctx, "join data frames", 10, nil)
//	for _, r := range results {
//	    fmt.Printf("%s::%s %.3f\n", r.Package, r.Function.Name, r.RelevanceScore)
//	}
//
// Free text is split into terms which are quoted and joined with OR, so FTS5
// syntax in user input is matched literally. Scores are normalized to (0, 1].
//
// # Build Tags
//
// Pure Go build (default):
//
//   - Uses modernc.org/sqlite driver
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build ./...
//
// CGO build (sqlite_cgo tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//   - Requires a C compiler and the sqlite_fts5 tag
//
//     CGO_ENABLED=1 go build -tags "sqlite_cgo sqlite_fts5" ./...
package storage
