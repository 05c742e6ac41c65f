package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/b-rodrigues/pkgctx/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrEmptyQuery is returned when a search query has no searchable terms
	ErrEmptyQuery = errors.New("empty search query")
)

// DefaultSearchLimit is used when a search asks for no limit
const DefaultSearchLimit = 10

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Package operations

// upsertPackageWithQuerier inserts or updates a package keyed by name
func (s *SQLiteStorage) upsertPackageWithQuerier(ctx context.Context, q querier, pkg *Package) error {
	common, err := encodeMap(pkg.CommonArguments)
	if err != nil {
		return err
	}
	if pkg.Language == "" {
		pkg.Language = "R"
	}
	if pkg.LastIndexedAt.IsZero() {
		pkg.LastIndexedAt = time.Now()
	}

	query := `
		INSERT INTO packages (name, version, language, description, source, extraction_id,
		                      common_arguments, last_indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			language = excluded.language,
			description = excluded.description,
			source = excluded.source,
			extraction_id = excluded.extraction_id,
			common_arguments = excluded.common_arguments,
			last_indexed_at = excluded.last_indexed_at,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	_, err = q.ExecContext(ctx, query,
		pkg.Name, pkg.Version, pkg.Language, pkg.Description, pkg.Source, pkg.ExtractionID,
		common, pkg.LastIndexedAt, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert package: %w", err)
	}

	// LastInsertId is unreliable on the update path
	stored, err := s.getPackageWithQuerier(ctx, q, pkg.Name)
	if err != nil {
		return err
	}
	pkg.ID = stored.ID
	pkg.FunctionCount = stored.FunctionCount
	pkg.CreatedAt = stored.CreatedAt
	pkg.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *SQLiteStorage) UpsertPackage(ctx context.Context, pkg *Package) error {
	return s.upsertPackageWithQuerier(ctx, s.querier(), pkg)
}

const packageColumns = `
	id, name, version, language, description, source, extraction_id,
	common_arguments, function_count, last_indexed_at, created_at, updated_at
`

// scanner is implemented by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPackage(row scanner) (*Package, error) {
	var pkg Package
	var description, source, extractionID, common sql.NullString
	var lastIndexedAt sql.NullTime
	err := row.Scan(
		&pkg.ID, &pkg.Name, &pkg.Version, &pkg.Language, &description, &source, &extractionID,
		&common, &pkg.FunctionCount, &lastIndexedAt, &pkg.CreatedAt, &pkg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	pkg.Description = description.String
	pkg.Source = source.String
	pkg.ExtractionID = extractionID.String
	if lastIndexedAt.Valid {
		pkg.LastIndexedAt = lastIndexedAt.Time
	}
	if pkg.CommonArguments, err = decodeMap(common.String); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// getPackageWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getPackageWithQuerier(ctx context.Context, q querier, name string) (*Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE name = ?`
	pkg, err := scanPackage(q.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

func (s *SQLiteStorage) GetPackage(ctx context.Context, name string) (*Package, error) {
	return s.getPackageWithQuerier(ctx, s.querier(), name)
}

// listPackagesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listPackagesWithQuerier(ctx context.Context, q querier) ([]*Package, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+packageColumns+` FROM packages ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	packages := make([]*Package, 0)
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, pkg)
	}
	return packages, rows.Err()
}

func (s *SQLiteStorage) ListPackages(ctx context.Context) ([]*Package, error) {
	return s.listPackagesWithQuerier(ctx, s.querier())
}

// deletePackageWithQuerier removes a package and everything stored under it
func (s *SQLiteStorage) deletePackageWithQuerier(ctx context.Context, q querier, name string) error {
	pkg, err := s.getPackageWithQuerier(ctx, q, name)
	if err != nil {
		return err
	}
	// Delete functions explicitly so the FTS triggers see every row
	if _, err := q.ExecContext(ctx, `DELETE FROM functions WHERE package_id = ?`, pkg.ID); err != nil {
		return fmt.Errorf("failed to delete functions: %w", err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM packages WHERE id = ?`, pkg.ID); err != nil {
		return fmt.Errorf("failed to delete package: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) DeletePackage(ctx context.Context, name string) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.DeletePackage(ctx, name); err != nil {
		return err
	}
	return tx.Commit()
}

// Function operations

// replaceFunctionsWithQuerier deletes the package's functions and inserts
// the given records in order. It returns the number of stored functions.
func (s *SQLiteStorage) replaceFunctionsWithQuerier(ctx context.Context, q querier, packageID int64, records []*types.FunctionRecord) (int, error) {
	if _, err := q.ExecContext(ctx, `DELETE FROM functions WHERE package_id = ?`, packageID); err != nil {
		return 0, fmt.Errorf("failed to delete old functions: %w", err)
	}

	now := time.Now()
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return 0, fmt.Errorf("invalid function record %d: %w", i, err)
		}
		fn := FromRecord(rec, packageID, i)

		result, err := q.ExecContext(ctx, `
			INSERT INTO functions (package_id, position, name, exported, signature, purpose, returns, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, fn.PackageID, fn.Position, fn.Name, fn.Exported, fn.Signature, fn.Purpose, fn.Returns, now)
		if err != nil {
			return 0, fmt.Errorf("failed to store function %s: %w", fn.Name, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return 0, err
		}

		for _, arg := range fn.Arguments {
			_, err := q.ExecContext(ctx, `
				INSERT INTO arguments (function_id, position, name, description)
				VALUES (?, ?, ?, ?)
			`, id, arg.Position, arg.Name, arg.Description)
			if err != nil {
				return 0, fmt.Errorf("failed to store argument %s of %s: %w", arg.Name, fn.Name, err)
			}
		}
		for pos, code := range fn.Examples {
			_, err := q.ExecContext(ctx, `
				INSERT INTO examples (function_id, position, code)
				VALUES (?, ?, ?)
			`, id, pos, code)
			if err != nil {
				return 0, fmt.Errorf("failed to store example of %s: %w", fn.Name, err)
			}
		}
	}

	_, err := q.ExecContext(ctx, `UPDATE packages SET function_count = ?, updated_at = ? WHERE id = ?`,
		len(records), now, packageID)
	if err != nil {
		return 0, fmt.Errorf("failed to update function count: %w", err)
	}
	return len(records), nil
}

func (s *SQLiteStorage) ReplaceFunctions(ctx context.Context, packageID int64, records []*types.FunctionRecord) (int, error) {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	n, err := tx.ReplaceFunctions(ctx, packageID, records)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return n, nil
}

const functionColumns = `
	f.id, f.package_id, p.name, f.position, f.name, f.exported, f.signature,
	f.purpose, f.returns, f.created_at
`

func scanFunction(row scanner) (*Function, error) {
	var fn Function
	var purpose, returns sql.NullString
	err := row.Scan(
		&fn.ID, &fn.PackageID, &fn.PackageName, &fn.Position, &fn.Name, &fn.Exported, &fn.Signature,
		&purpose, &returns, &fn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	fn.Purpose = purpose.String
	fn.Returns = returns.String
	return &fn, nil
}

// loadDetails fills in the arguments and examples of fn
func (s *SQLiteStorage) loadDetails(ctx context.Context, q querier, fn *Function) error {
	rows, err := q.QueryContext(ctx, `
		SELECT name, description, position FROM arguments
		WHERE function_id = ? ORDER BY position
	`, fn.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var arg Argument
		var desc sql.NullString
		if err := rows.Scan(&arg.Name, &desc, &arg.Position); err != nil {
			_ = rows.Close()
			return err
		}
		arg.Description = desc.String
		fn.Arguments = append(fn.Arguments, arg)
	}
	if err := rows.Close(); err != nil {
		return err
	}

	rows, err = q.QueryContext(ctx, `
		SELECT code FROM examples WHERE function_id = ? ORDER BY position
	`, fn.ID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return err
		}
		fn.Examples = append(fn.Examples, code)
	}
	return rows.Err()
}

// queryFunctions runs a function query and loads each row's details
func (s *SQLiteStorage) queryFunctions(ctx context.Context, q querier, query string, args ...interface{}) ([]*Function, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	functions := make([]*Function, 0)
	for rows.Next() {
		fn, err := scanFunction(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		functions = append(functions, fn)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	// Details are loaded after the cursor closes; the pool has a single connection.
	for _, fn := range functions {
		if err := s.loadDetails(ctx, q, fn); err != nil {
			return nil, fmt.Errorf("failed to load details of %s: %w", fn.Name, err)
		}
	}
	return functions, nil
}

func (s *SQLiteStorage) listFunctionsWithQuerier(ctx context.Context, q querier, packageID int64) ([]*Function, error) {
	return s.queryFunctions(ctx, q, `
		SELECT `+functionColumns+`
		FROM functions f JOIN packages p ON p.id = f.package_id
		WHERE f.package_id = ?
		ORDER BY f.position
	`, packageID)
}

func (s *SQLiteStorage) ListFunctions(ctx context.Context, packageID int64) ([]*Function, error) {
	return s.listFunctionsWithQuerier(ctx, s.querier(), packageID)
}

// getFunctionWithQuerier returns the first definition of name in pkg
func (s *SQLiteStorage) getFunctionWithQuerier(ctx context.Context, q querier, pkg, name string) (*Function, error) {
	functions, err := s.queryFunctions(ctx, q, `
		SELECT `+functionColumns+`
		FROM functions f JOIN packages p ON p.id = f.package_id
		WHERE p.name = ? AND f.name = ?
		ORDER BY f.position
		LIMIT 1
	`, pkg, name)
	if err != nil {
		return nil, err
	}
	if len(functions) == 0 {
		return nil, ErrNotFound
	}
	return functions[0], nil
}

func (s *SQLiteStorage) GetFunction(ctx context.Context, pkg, name string) (*Function, error) {
	return s.getFunctionWithQuerier(ctx, s.querier(), pkg, name)
}

// Search operations

// searchFunctionsWithQuerier runs a BM25 ranked full-text search
func (s *SQLiteStorage) searchFunctionsWithQuerier(ctx context.Context, q querier, query string, limit int, filters *SearchFilters) ([]*types.SearchResult, error) {
	match := sanitizeFTSQuery(query)
	if match == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	// In FTS5, bm25() is lower for better matches (negative values).
	sqlQuery := `
		SELECT f.id, bm25(functions_fts) AS score, p.version
		FROM functions_fts
		JOIN functions f ON f.id = functions_fts.rowid
		JOIN packages p ON p.id = f.package_id
		WHERE functions_fts MATCH ?
	`
	args := []interface{}{match}
	sqlQuery, args = applySearchFilters(sqlQuery, args, filters)
	sqlQuery += " ORDER BY score LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FTS search: %w", err)
	}

	type hit struct {
		id      int64
		score   float64
		version string
	}
	var hits []hit
	for rows.Next() {
		var h hit
		if err := rows.Scan(&h.id, &h.score, &h.version); err != nil {
			_ = rows.Close()
			return nil, err
		}
		hits = append(hits, h)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	results := make([]*types.SearchResult, 0, len(hits))
	for _, h := range hits {
		score := normalizeBM25(h.score)
		if filters != nil && filters.MinRelevance > 0 && score < filters.MinRelevance {
			continue
		}

		functions, err := s.queryFunctions(ctx, q, `
			SELECT `+functionColumns+`
			FROM functions f JOIN packages p ON p.id = f.package_id
			WHERE f.id = ?
		`, h.id)
		if err != nil {
			return nil, err
		}
		if len(functions) == 0 {
			continue
		}
		fn := functions[0]

		results = append(results, &types.SearchResult{
			FunctionID:     fn.ID,
			Rank:           len(results) + 1,
			RelevanceScore: score,
			Package:        fn.PackageName,
			Version:        h.version,
			Function:       fn.ToRecord(),
		})
	}
	return results, nil
}

func (s *SQLiteStorage) SearchFunctions(ctx context.Context, query string, limit int, filters *SearchFilters) ([]*types.SearchResult, error) {
	return s.searchFunctionsWithQuerier(ctx, s.querier(), query, limit, filters)
}

// applySearchFilters adds WHERE clause filters for function search
func applySearchFilters(query string, args []interface{}, filters *SearchFilters) (string, []interface{}) {
	if filters == nil {
		return query, args
	}

	if len(filters.Packages) > 0 {
		query += " AND p.name IN (" + strings.TrimSuffix(strings.Repeat("?,", len(filters.Packages)), ",") + ")"
		for _, pkg := range filters.Packages {
			args = append(args, pkg)
		}
	}
	if filters.ExportedOnly {
		query += " AND f.exported = 1"
	}
	return query, args
}

// normalizeBM25 maps a BM25 score (negative, lower is better) into (0, 1]
func normalizeBM25(score float64) float64 {
	// BM25 scores are typically in range [-50, 0]
	return 1.0 / (1.0 + math.Abs(score)/50.0)
}

// sanitizeFTSQuery turns free text into an FTS5 query of quoted terms joined
// by OR, so operators and syntax characters in the input are matched
// literally. Terms are split on anything that is not a letter, digit, '.' or
// '_', the characters of R identifiers.
func sanitizeFTSQuery(query string) string {
	terms := strings.FieldsFunc(query, func(r rune) bool {
		return !(r == '.' || r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 127)
	})

	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.Trim(t, ".")
		if t == "" {
			continue
		}
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " OR ")
}

// Run history

func (s *SQLiteStorage) recordRunWithQuerier(ctx context.Context, q querier, run *ExtractionRun) error {
	now := time.Now()
	result, err := q.ExecContext(ctx, `
		INSERT INTO extraction_runs (run_id, package_id, files_parsed, files_failed,
		                             functions_found, warnings, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.PackageID, run.FilesParsed, run.FilesFailed,
		run.FunctionsFound, run.Warnings, run.Duration.Milliseconds(), now)
	if err != nil {
		return fmt.Errorf("failed to record extraction run: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		run.ID = id
	}
	run.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) RecordRun(ctx context.Context, run *ExtractionRun) error {
	return s.recordRunWithQuerier(ctx, s.querier(), run)
}

func (s *SQLiteStorage) lastRun(ctx context.Context, q querier, packageID int64) (*ExtractionRun, error) {
	var run ExtractionRun
	var durationMS int64
	err := q.QueryRowContext(ctx, `
		SELECT id, run_id, package_id, files_parsed, files_failed, functions_found,
		       warnings, duration_ms, created_at
		FROM extraction_runs
		WHERE package_id = ?
		ORDER BY id DESC
		LIMIT 1
	`, packageID).Scan(&run.ID, &run.RunID, &run.PackageID, &run.FilesParsed, &run.FilesFailed,
		&run.FunctionsFound, &run.Warnings, &durationMS, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

// Status operations

func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier, name string) (*PackageStatus, error) {
	pkg, err := s.getPackageWithQuerier(ctx, q, name)
	if err != nil {
		return nil, err
	}

	status := &PackageStatus{Package: pkg}

	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(exported), 0) FROM functions WHERE package_id = ?
	`, pkg.ID).Scan(&status.FunctionsCount, &status.ExportedCount)
	if err != nil {
		return nil, err
	}

	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM arguments a
		JOIN functions f ON a.function_id = f.id
		WHERE f.package_id = ?
	`, pkg.ID).Scan(&status.ArgumentsCount)
	if err != nil {
		return nil, err
	}

	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM examples e
		JOIN functions f ON e.function_id = f.id
		WHERE f.package_id = ?
	`, pkg.ID).Scan(&status.ExamplesCount)
	if err != nil {
		return nil, err
	}

	if status.LastRun, err = s.lastRun(ctx, q, pkg.ID); err != nil {
		return nil, err
	}

	// Calculate database size
	var pageCount, pageSize int
	if err := q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	var ftsName string
	ftsErr := q.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='functions_fts'").Scan(&ftsName)
	status.Health = HealthStatus{
		DatabaseAccessible: true,
		FTSIndexesBuilt:    ftsErr == nil,
	}

	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context, name string) (*PackageStatus, error) {
	return s.getStatusWithQuerier(ctx, s.querier(), name)
}

func encodeMap(m map[string]string) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode map: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeMap(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("failed to decode map: %w", err)
	}
	return m, nil
}

// Transaction methods - delegate to storage methods using the transaction querier

func (t *sqliteTx) UpsertPackage(ctx context.Context, pkg *Package) error {
	return t.storage.upsertPackageWithQuerier(ctx, t.querier(), pkg)
}

func (t *sqliteTx) GetPackage(ctx context.Context, name string) (*Package, error) {
	return t.storage.getPackageWithQuerier(ctx, t.querier(), name)
}

func (t *sqliteTx) ListPackages(ctx context.Context) ([]*Package, error) {
	return t.storage.listPackagesWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) DeletePackage(ctx context.Context, name string) error {
	return t.storage.deletePackageWithQuerier(ctx, t.querier(), name)
}

func (t *sqliteTx) ReplaceFunctions(ctx context.Context, packageID int64, records []*types.FunctionRecord) (int, error) {
	return t.storage.replaceFunctionsWithQuerier(ctx, t.querier(), packageID, records)
}

func (t *sqliteTx) ListFunctions(ctx context.Context, packageID int64) ([]*Function, error) {
	return t.storage.listFunctionsWithQuerier(ctx, t.querier(), packageID)
}

func (t *sqliteTx) GetFunction(ctx context.Context, pkg, name string) (*Function, error) {
	return t.storage.getFunctionWithQuerier(ctx, t.querier(), pkg, name)
}

func (t *sqliteTx) SearchFunctions(ctx context.Context, query string, limit int, filters *SearchFilters) ([]*types.SearchResult, error) {
	return t.storage.searchFunctionsWithQuerier(ctx, t.querier(), query, limit, filters)
}

func (t *sqliteTx) RecordRun(ctx context.Context, run *ExtractionRun) error {
	return t.storage.recordRunWithQuerier(ctx, t.querier(), run)
}

func (t *sqliteTx) GetStatus(ctx context.Context, name string) (*PackageStatus, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier(), name)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
