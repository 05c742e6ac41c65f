package storage

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/b-rodrigues/pkgctx/pkg/types"
)

// Storage defines the interface for persisting and querying extracted package APIs
type Storage interface {
	// Package operations
	UpsertPackage(ctx context.Context, pkg *Package) error
	GetPackage(ctx context.Context, name string) (*Package, error)
	ListPackages(ctx context.Context) ([]*Package, error)
	DeletePackage(ctx context.Context, name string) error

	// Function operations
	ReplaceFunctions(ctx context.Context, packageID int64, functions []*types.FunctionRecord) (int, error)
	ListFunctions(ctx context.Context, packageID int64) ([]*Function, error)
	GetFunction(ctx context.Context, pkg, name string) (*Function, error)

	// Search operations
	SearchFunctions(ctx context.Context, query string, limit int, filters *SearchFilters) ([]*types.SearchResult, error)

	// Run history
	RecordRun(ctx context.Context, run *ExtractionRun) error

	// Status operations
	GetStatus(ctx context.Context, name string) (*PackageStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Package represents an indexed R package
type Package struct {
	ID              int64
	Name            string
	Version         string
	Language        string
	Description     string
	Source          string // source specifier the package was fetched from
	ExtractionID    string // run ID of the extraction that produced the stored functions
	CommonArguments map[string]string
	FunctionCount   int
	LastIndexedAt   time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Function represents a stored function record
type Function struct {
	ID          int64
	PackageID   int64
	PackageName string
	Position    int // order within the package's record stream
	Name        string
	Exported    bool
	Signature   string
	Purpose     string
	Returns     string
	Arguments   []Argument
	Examples    []string
	CreatedAt   time.Time
}

// Argument is one documented argument of a stored function
type Argument struct {
	Name        string
	Description string
	Position    int
}

// ExtractionRun records the statistics of one indexing run
type ExtractionRun struct {
	ID             int64
	RunID          string
	PackageID      int64
	FilesParsed    int
	FilesFailed    int
	FunctionsFound int
	Warnings       int
	Duration       time.Duration
	CreatedAt      time.Time
}

// SearchFilters contains filters for narrowing search results
type SearchFilters struct {
	Packages     []string // Filter by package names
	ExportedOnly bool     // Skip internal functions
	MinRelevance float64  // Minimum relevance score
}

// PackageStatus contains statistics about an indexed package
type PackageStatus struct {
	Package        *Package
	FunctionsCount int
	ExportedCount  int
	ArgumentsCount int
	ExamplesCount  int
	LastRun        *ExtractionRun
	IndexSizeMB    float64
	Health         HealthStatus
}

// HealthStatus represents the health of the index
type HealthStatus struct {
	DatabaseAccessible bool
	FTSIndexesBuilt    bool
}

// ToRecord converts a stored function back to a function record
func (f *Function) ToRecord() *types.FunctionRecord {
	rec := &types.FunctionRecord{
		Name:      f.Name,
		Exported:  f.Exported,
		Signature: f.Signature,
		Purpose:   f.Purpose,
		Returns:   f.Returns,
	}
	if len(f.Arguments) > 0 {
		rec.Arguments = make(map[string]string, len(f.Arguments))
		for _, a := range f.Arguments {
			rec.Arguments[a.Name] = a.Description
		}
	}
	for _, code := range f.Examples {
		rec.Examples = append(rec.Examples, types.Example{Code: code})
	}
	return rec
}

// FromRecord converts a function record for storage. Arguments are ordered
// by their position in the signature; documented names missing from the
// signature follow in name order.
func FromRecord(rec *types.FunctionRecord, packageID int64, position int) *Function {
	fn := &Function{
		PackageID: packageID,
		Position:  position,
		Name:      rec.Name,
		Exported:  rec.Exported,
		Signature: rec.Signature,
		Purpose:   rec.Purpose,
		Returns:   rec.Returns,
	}
	for _, ex := range rec.Examples {
		fn.Examples = append(fn.Examples, ex.Code)
	}

	seen := make(map[string]bool, len(rec.Arguments))
	for _, name := range signatureParams(rec.Signature) {
		if desc, ok := rec.Arguments[name]; ok && !seen[name] {
			fn.Arguments = append(fn.Arguments, Argument{Name: name, Description: desc, Position: len(fn.Arguments)})
			seen[name] = true
		}
	}
	rest := make([]string, 0, len(rec.Arguments))
	for name := range rec.Arguments {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		fn.Arguments = append(fn.Arguments, Argument{Name: name, Description: rec.Arguments[name], Position: len(fn.Arguments)})
	}
	return fn
}

// signatureParams returns the parameter names of a rendered name(params) signature
func signatureParams(signature string) []string {
	open := strings.IndexByte(signature, '(')
	if open < 0 || !strings.HasSuffix(signature, ")") {
		return nil
	}
	sig := types.SignatureRecord{Params: signature[open+1 : len(signature)-1]}
	return sig.ParamNames()
}
