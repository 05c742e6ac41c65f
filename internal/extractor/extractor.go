package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/b-rodrigues/pkgctx/internal/fetch"
	"github.com/b-rodrigues/pkgctx/internal/manifest"
	"github.com/b-rodrigues/pkgctx/internal/rd"
	"github.com/b-rodrigues/pkgctx/internal/rsource"
	"github.com/b-rodrigues/pkgctx/pkg/types"
)

const (
	ManDir    = "man"
	SourceDir = "R"
)

// Extractor coordinates the extraction pipeline: read manifests -> parse docs
// -> scan sources -> join into records
type Extractor struct {
	parser *rd.Parser
	logger zerolog.Logger
}

// Options controls one extraction run
type Options struct {
	IncludeInternal bool // keep dot-prefixed and unexported functions
	Workers         int  // concurrent file workers (default: runtime.NumCPU())
}

// Statistics contains statistics about one extraction run
type Statistics struct {
	RunID          string
	FilesParsed    int
	FilesFailed    int
	DocsParsed     int
	FunctionsFound int
	Warnings       int
	Duration       time.Duration
	ErrorMessages  []string
}

// Result is the output of one extraction run
type Result struct {
	Records  []types.Record // package record first, then functions in file order
	Warnings []types.ParseWarning
	Stats    *Statistics
}

// New creates a new Extractor
func New(logger zerolog.Logger) *Extractor {
	return &Extractor{parser: rd.New(), logger: logger}
}

// Extract builds the records of the package tree rooted at pkg.Root
func (e *Extractor) Extract(ctx context.Context, pkg *fetch.Package, opts Options) (*Result, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	startTime := time.Now()
	stats := &Statistics{
		RunID:         uuid.NewString(),
		ErrorMessages: make([]string, 0),
	}
	log := e.logger.With().Str("package", pkg.Name).Str("run_id", stats.RunID).Logger()

	desc, err := manifest.ReadDescription(pkg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to read package description: %w", err)
	}
	exports, err := manifest.ReadNamespace(pkg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to read namespace: %w", err)
	}

	docFiles, err := discoverFiles(filepath.Join(pkg.Root, ManDir), ".Rd")
	if err != nil {
		return nil, fmt.Errorf("failed to discover documentation files: %w", err)
	}
	srcFiles, err := discoverFiles(filepath.Join(pkg.Root, SourceDir), ".R", ".r")
	if err != nil {
		return nil, fmt.Errorf("failed to discover source files: %w", err)
	}
	log.Debug().Int("docs", len(docFiles)).Int("sources", len(srcFiles)).Msg("discovered files")

	var mu sync.Mutex // Protect stats.ErrorMessages
	var failed int32
	fail := func(path string, err error) {
		atomic.AddInt32(&failed, 1)
		mu.Lock()
		stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", path, err))
		mu.Unlock()
		log.Warn().Err(err).Str("file", path).Msg("skipping unreadable file")
	}

	docs := make([]*types.RdDoc, len(docFiles))
	err = forEach(ctx, opts.Workers, docFiles, func(i int, path string) {
		doc, err := e.parser.ParseFile(path)
		if err != nil {
			fail(path, err)
			return
		}
		docs[i] = doc
	})
	if err != nil {
		return nil, err
	}

	scanner := rsource.New(exports, opts.IncludeInternal)
	scans := make([]*types.ScanResult, len(srcFiles))
	err = forEach(ctx, opts.Workers, srcFiles, func(i int, path string) {
		res, err := scanner.ScanFile(path)
		if err != nil {
			fail(path, err)
			return
		}
		scans[i] = res
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Stats: stats}
	byName := make(map[string]*types.RdDoc)
	for i, doc := range docs {
		if doc == nil {
			continue
		}
		stats.DocsParsed++
		result.Warnings = append(result.Warnings, doc.Warnings...)
		// The file stem wins over an alias of another unit.
		stem := strings.TrimSuffix(filepath.Base(docFiles[i]), filepath.Ext(docFiles[i]))
		byName[stem] = doc
	}
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		for _, alias := range append([]string{doc.Name}, doc.Aliases...) {
			if _, ok := byName[alias]; !ok {
				byName[alias] = doc
			}
		}
	}

	result.Records = append(result.Records, types.NewPackageRecord(packageRecord(pkg, desc)))
	for _, res := range scans {
		if res == nil {
			continue
		}
		result.Warnings = append(result.Warnings, res.Warnings...)
		for _, sig := range res.Signatures {
			result.Records = append(result.Records, types.NewFunctionRecord(FunctionRecord(sig, byName[sig.Name])))
			stats.FunctionsFound++
		}
	}

	for _, w := range result.Warnings {
		log.Debug().Str("file", w.File).Int("line", w.Line).Str("kind", string(w.Kind)).Msg(w.Message)
	}

	stats.FilesFailed = int(failed)
	stats.FilesParsed = len(docFiles) + len(srcFiles) - stats.FilesFailed
	stats.Warnings = len(result.Warnings)
	stats.Duration = time.Since(startTime)

	log.Info().
		Int("functions", stats.FunctionsFound).
		Int("docs", stats.DocsParsed).
		Int("failed", stats.FilesFailed).
		Dur("duration", stats.Duration).
		Msg("extraction complete")

	return result, nil
}

// FunctionRecord joins a scanned signature with its documentation unit.
// doc may be nil.
func FunctionRecord(sig types.SignatureRecord, doc *types.RdDoc) *types.FunctionRecord {
	rec := &types.FunctionRecord{
		Name:      sig.Name,
		Exported:  sig.Exported,
		Signature: sig.Signature(),
	}
	if doc == nil {
		return rec
	}

	rec.Purpose = doc.Title
	rec.Returns = doc.Value
	if len(doc.Arguments) > 0 {
		rec.Arguments = make(map[string]string, len(doc.Arguments))
		for _, a := range doc.Arguments {
			rec.Arguments[a.Name] = a.Description
		}
	}
	for _, ex := range doc.Examples {
		rec.Examples = append(rec.Examples, types.Example{Code: ex.Code})
	}
	return rec
}

func packageRecord(pkg *fetch.Package, desc manifest.Description) *types.PackageRecord {
	name := desc.Package
	if name == "" {
		name = pkg.Name
	}
	version := desc.Version
	if version == "" {
		version = pkg.Version
	}
	if version == "" {
		version = fetch.UnknownVersion
	}
	return &types.PackageRecord{
		SchemaVersion: types.SchemaVersion,
		Name:          name,
		Version:       version,
		Language:      "R",
		Description:   desc.Summary(),
	}
}

// discoverFiles lists the regular files of dir with one of exts, sorted by
// name. A missing directory yields no files.
func discoverFiles(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, ext := range exts {
			if filepath.Ext(entry.Name()) == ext {
				files = append(files, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// forEach runs fn over files with at most workers in flight. Only context
// cancellation is returned as an error; fn reports per-file failures itself.
func forEach(ctx context.Context, workers int, files []string, fn func(i int, path string)) error {
	semaphore := make(chan struct{}, workers)
	g, gctx := errgroup.WithContext(ctx)

	for i, path := range files {
		select {
		case <-gctx.Done():
			_ = g.Wait()
			return gctx.Err()
		case semaphore <- struct{}{}:
			// Acquire semaphore
		}

		g.Go(func() error {
			defer func() { <-semaphore }()
			fn(i, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
