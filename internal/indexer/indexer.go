package indexer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/b-rodrigues/pkgctx/internal/extractor"
	"github.com/b-rodrigues/pkgctx/internal/fetch"
	"github.com/b-rodrigues/pkgctx/internal/storage"
	"github.com/b-rodrigues/pkgctx/internal/transform"
	"github.com/b-rodrigues/pkgctx/pkg/types"
)

var (
	// ErrIndexingInProgress is returned when another index run holds the lock
	ErrIndexingInProgress = errors.New("indexing already in progress")

	// ErrNoIntrospector is returned for installed extraction without Rscript support
	ErrNoIntrospector = errors.New("installed package introspection is not configured")

	// ErrNoStorage is returned by IndexPackage on an extract-only indexer
	ErrNoStorage = errors.New("no index storage configured")
)

// Fetcher makes a package source available on disk
type Fetcher interface {
	Fetch(ctx context.Context, src fetch.Source) (*fetch.Package, error)
}

// Introspector extracts records from an installed package
type Introspector interface {
	Extract(ctx context.Context, pkg string, includeInternal bool) ([]types.Record, error)
}

// Indexer coordinates the pipeline: fetch -> extract -> transform -> store
type Indexer struct {
	fetcher      Fetcher
	extractor    *extractor.Extractor
	introspector Introspector
	storage      storage.Storage
	lock         IndexLock
	logger       zerolog.Logger
}

// Config controls one extraction or index run
type Config struct {
	IncludeInternal bool // keep dot-prefixed and unexported functions
	Compact         bool // first sentences only, no examples
	HoistCommonArgs bool // move shared arguments to the package record
	Installed       bool // introspect an installed package instead of reading sources
	Workers         int  // concurrent file workers (default: runtime.NumCPU())
}

// Statistics contains statistics about one run
type Statistics struct {
	Package         string
	Version         string
	Source          string
	RunID           string
	FilesParsed     int
	FilesFailed     int
	FunctionsFound  int
	FunctionsStored int
	Warnings        int
	Duration        time.Duration
	ErrorMessages   []string
}

// Extraction is the transformed record stream of one package
type Extraction struct {
	Records []types.Record
	Stats   *Statistics
}

// New creates a new Indexer. store may be nil for an extract-only indexer.
func New(fetcher Fetcher, store storage.Storage, logger zerolog.Logger) *Indexer {
	return &Indexer{
		fetcher:   fetcher,
		extractor: extractor.New(logger),
		storage:   store,
		logger:    logger,
	}
}

// SetIntrospector enables Config.Installed runs
func (idx *Indexer) SetIntrospector(in Introspector) {
	idx.introspector = in
}

// Extract produces the records of the package named by spec without storing them
func (idx *Indexer) Extract(ctx context.Context, spec string, config *Config) (*Extraction, error) {
	if config == nil {
		config = &Config{}
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}

	startTime := time.Now()
	var ext *Extraction
	var err error
	if config.Installed {
		ext, err = idx.introspect(ctx, spec, config)
	} else {
		ext, err = idx.extractSource(ctx, spec, config)
	}
	if err != nil {
		return nil, err
	}

	if config.Compact {
		ext.Records = transform.Compact(ext.Records)
	}
	// Hoisting after compaction keeps the common descriptions short as well.
	if config.HoistCommonArgs {
		ext.Records = transform.HoistCommonArgs(ext.Records)
	}

	if pkg := types.Packages(ext.Records); pkg != nil {
		ext.Stats.Package = pkg.Name
		ext.Stats.Version = pkg.Version
	}
	ext.Stats.Duration = time.Since(startTime)
	return ext, nil
}

func (idx *Indexer) extractSource(ctx context.Context, spec string, config *Config) (*Extraction, error) {
	src, err := fetch.ParseSource(spec)
	if err != nil {
		return nil, err
	}
	if idx.fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured for %s", src)
	}

	pkg, err := idx.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", src, err)
	}
	defer func() {
		if err := pkg.Cleanup(); err != nil {
			idx.logger.Warn().Err(err).Str("package", pkg.Name).Msg("failed to remove temporary files")
		}
	}()

	result, err := idx.extractor.Extract(ctx, pkg, extractor.Options{
		IncludeInternal: config.IncludeInternal,
		Workers:         config.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", src, err)
	}

	return &Extraction{
		Records: result.Records,
		Stats: &Statistics{
			Source:         src.String(),
			RunID:          result.Stats.RunID,
			FilesParsed:    result.Stats.FilesParsed,
			FilesFailed:    result.Stats.FilesFailed,
			FunctionsFound: result.Stats.FunctionsFound,
			Warnings:       result.Stats.Warnings,
			ErrorMessages:  result.Stats.ErrorMessages,
		},
	}, nil
}

func (idx *Indexer) introspect(ctx context.Context, name string, config *Config) (*Extraction, error) {
	if idx.introspector == nil {
		return nil, ErrNoIntrospector
	}

	records, err := idx.introspector.Extract(ctx, name, config.IncludeInternal)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect %s: %w", name, err)
	}
	return &Extraction{
		Records: records,
		Stats: &Statistics{
			Source:         "installed:" + name,
			RunID:          uuid.NewString(),
			FunctionsFound: len(types.Functions(records)),
			ErrorMessages:  make([]string, 0),
		},
	}, nil
}

// IndexPackage extracts the package named by spec and replaces its stored
// functions. Only one run may be active per Indexer.
func (idx *Indexer) IndexPackage(ctx context.Context, spec string, config *Config) (*Statistics, error) {
	if idx.storage == nil {
		return nil, ErrNoStorage
	}
	if !idx.lock.TryAcquire() {
		return nil, ErrIndexingInProgress
	}
	defer idx.lock.Release()

	ext, err := idx.Extract(ctx, spec, config)
	if err != nil {
		return nil, err
	}

	if err := idx.store(ctx, ext); err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", ext.Stats.Package, err)
	}

	idx.logger.Info().
		Str("package", ext.Stats.Package).
		Str("version", ext.Stats.Version).
		Int("functions", ext.Stats.FunctionsStored).
		Dur("duration", ext.Stats.Duration).
		Msg("package indexed")
	return ext.Stats, nil
}

// store writes package, functions and run statistics in one transaction
func (idx *Indexer) store(ctx context.Context, ext *Extraction) error {
	rec := types.Packages(ext.Records)
	if rec == nil {
		return errors.New("extraction produced no package record")
	}

	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	pkg := &storage.Package{
		Name:            rec.Name,
		Version:         rec.Version,
		Language:        rec.Language,
		Description:     rec.Description,
		Source:          ext.Stats.Source,
		ExtractionID:    ext.Stats.RunID,
		CommonArguments: rec.CommonArguments,
	}
	if err := tx.UpsertPackage(ctx, pkg); err != nil {
		return err
	}

	n, err := tx.ReplaceFunctions(ctx, pkg.ID, types.Functions(ext.Records))
	if err != nil {
		return err
	}
	ext.Stats.FunctionsStored = n

	run := &storage.ExtractionRun{
		RunID:          ext.Stats.RunID,
		PackageID:      pkg.ID,
		FilesParsed:    ext.Stats.FilesParsed,
		FilesFailed:    ext.Stats.FilesFailed,
		FunctionsFound: ext.Stats.FunctionsFound,
		Warnings:       ext.Stats.Warnings,
		Duration:       ext.Stats.Duration,
	}
	if err := tx.RecordRun(ctx, run); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
