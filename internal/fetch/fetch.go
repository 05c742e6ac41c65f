package fetch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/b-rodrigues/pkgctx/internal/manifest"
)

// Fetch errors
var (
	ErrInvalidSource   = errors.New("invalid package source")
	ErrNotRPackage     = errors.New("not an R package: DESCRIPTION not found")
	ErrPackageNotFound = errors.New("package not found")
	ErrInvalidArchive  = errors.New("invalid archive")
)

const (
	// DefaultCRANMirror is the CRAN mirror used when none is configured
	DefaultCRANMirror = "https://cloud.r-project.org"

	// DefaultGitHubBaseURL serves github.com archive tarballs
	DefaultGitHubBaseURL = "https://github.com"

	// DefaultIndexCacheSize is the number of CRAN indexes kept in memory
	DefaultIndexCacheSize = 8

	// UnknownVersion is reported when no version can be determined
	UnknownVersion = "unknown"
)

// Config configures a Fetcher
type Config struct {
	CRANMirror     string
	GitHubBaseURL  string
	Timeout        time.Duration
	Retry          RetryConfig
	IndexCacheSize int
	Logger         zerolog.Logger
}

// DefaultConfig returns default fetch settings
func DefaultConfig() Config {
	return Config{
		CRANMirror:     DefaultCRANMirror,
		GitHubBaseURL:  DefaultGitHubBaseURL,
		Timeout:        60 * time.Second,
		Retry:          DefaultRetryConfig(),
		IndexCacheSize: DefaultIndexCacheSize,
		Logger:         zerolog.Nop(),
	}
}

// Package is a package source tree on local disk
type Package struct {
	Name    string
	Version string
	Root    string // directory holding DESCRIPTION, man/ and R/
	Source  Source

	tempDir string
}

// Cleanup removes the temporary directory of a downloaded package.
// It is a no-op for local packages.
func (p *Package) Cleanup() error {
	if p.tempDir == "" {
		return nil
	}
	return os.RemoveAll(p.tempDir)
}

// Fetcher resolves package sources to directories
type Fetcher struct {
	cfg    Config
	client *http.Client
	index  *lru.Cache[string, map[string]string] // mirror -> name -> version
	logger zerolog.Logger
}

// New creates a Fetcher
func New(cfg Config) (*Fetcher, error) {
	if cfg.CRANMirror == "" {
		cfg.CRANMirror = DefaultCRANMirror
	}
	if cfg.GitHubBaseURL == "" {
		cfg.GitHubBaseURL = DefaultGitHubBaseURL
	}
	if cfg.IndexCacheSize <= 0 {
		cfg.IndexCacheSize = DefaultIndexCacheSize
	}

	cache, err := lru.New[string, map[string]string](cfg.IndexCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create index cache: %w", err)
	}

	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		index:  cache,
		logger: cfg.Logger,
	}, nil
}

// Fetch makes the package available on disk. Callers must call Cleanup on
// the returned package.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (*Package, error) {
	switch src.Kind {
	case SourceLocal:
		return f.fetchLocal(src)
	case SourceGitHub:
		return f.fetchGitHub(ctx, src)
	case SourceCRAN:
		return f.fetchCRAN(ctx, src)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidSource, src.Kind)
	}
}

func (f *Fetcher) fetchLocal(src Source) (*Package, error) {
	pkg := &Package{Root: src.Path, Source: src}
	if err := describe(pkg, filepath.Base(src.Path)); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (f *Fetcher) fetchGitHub(ctx context.Context, src Source) (*Package, error) {
	url := fmt.Sprintf("%s/%s/%s/archive/%s.tar.gz",
		strings.TrimRight(f.cfg.GitHubBaseURL, "/"), src.Owner, src.Repo, src.Ref)

	pkg, err := f.download(ctx, url, src)
	if err != nil {
		return nil, err
	}
	if err := describe(pkg, src.Repo); err != nil {
		pkg.Cleanup()
		return nil, err
	}
	return pkg, nil
}

func (f *Fetcher) fetchCRAN(ctx context.Context, src Source) (*Package, error) {
	versions, err := f.cranIndex(ctx)
	if err != nil {
		return nil, err
	}
	version, ok := versions[src.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not on CRAN", ErrPackageNotFound, src.Name)
	}

	url := fmt.Sprintf("%s/src/contrib/%s_%s.tar.gz", f.mirror(), src.Name, version)
	pkg, err := f.download(ctx, url, src)
	if err != nil {
		return nil, err
	}
	if err := describe(pkg, src.Name); err != nil {
		pkg.Cleanup()
		return nil, err
	}
	if pkg.Version == UnknownVersion {
		pkg.Version = version
	}
	return pkg, nil
}

// download fetches and extracts a tarball into a fresh temp directory
func (f *Fetcher) download(ctx context.Context, url string, src Source) (*Package, error) {
	tempDir, err := os.MkdirTemp("", "pkgctx-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	f.logger.Debug().Str("url", url).Msg("downloading package")
	root, err := retryWithBackoff(ctx, f.cfg.Retry, func() (string, error) {
		body, err := f.get(ctx, url)
		if err != nil {
			return "", err
		}
		defer body.Close()

		// A failed attempt may leave partial files behind.
		if err := clearDir(tempDir); err != nil {
			return "", permanent(err)
		}
		root, err := extractTarGz(body, tempDir)
		if errors.Is(err, ErrInvalidArchive) {
			return "", permanent(err)
		}
		return root, err
	})
	if err != nil {
		os.RemoveAll(tempDir)
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}

	return &Package{Root: root, Source: src, tempDir: tempDir}, nil
}

// get issues a GET request. 4xx responses are permanent failures.
func (f *Fetcher) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", "pkgctx")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusNotFound {
			return nil, permanent(fmt.Errorf("%w: %v", ErrPackageNotFound, err))
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, permanent(err)
		}
		return nil, err
	}
	return resp.Body, nil
}

// cranIndex returns the name to version map of the mirror's PACKAGES file
func (f *Fetcher) cranIndex(ctx context.Context) (map[string]string, error) {
	mirror := f.mirror()
	if versions, ok := f.index.Get(mirror); ok {
		return versions, nil
	}

	url := mirror + "/src/contrib/PACKAGES"
	versions, err := retryWithBackoff(ctx, f.cfg.Retry, func() (map[string]string, error) {
		body, err := f.get(ctx, url)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		return ParsePackagesIndex(body)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read CRAN index: %w", err)
	}

	f.index.Add(mirror, versions)
	f.logger.Debug().Str("mirror", mirror).Int("packages", len(versions)).Msg("loaded CRAN index")
	return versions, nil
}

func (f *Fetcher) mirror() string {
	return strings.TrimRight(f.cfg.CRANMirror, "/")
}

// ParsePackagesIndex reads a CRAN PACKAGES file: stanzas of "Key: value"
// lines separated by blank lines
func ParsePackagesIndex(r io.Reader) (map[string]string, error) {
	versions := make(map[string]string)
	var name, version string
	flush := func() {
		if name != "" && version != "" {
			versions[name] = version
		}
		name, version = "", ""
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case strings.TrimSpace(line) == "":
			flush()
		case strings.HasPrefix(line, "Package:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "Package:"))
		case strings.HasPrefix(line, "Version:"):
			version = strings.TrimSpace(strings.TrimPrefix(line, "Version:"))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	flush()
	return versions, nil
}

// describe fills name and version from the package DESCRIPTION
func describe(pkg *Package, fallbackName string) error {
	if _, err := os.Stat(filepath.Join(pkg.Root, manifest.DescriptionFile)); err != nil {
		return fmt.Errorf("%w: %s", ErrNotRPackage, pkg.Root)
	}
	d, err := manifest.ReadDescription(pkg.Root)
	if err != nil {
		return err
	}

	pkg.Name = d.Package
	if pkg.Name == "" {
		pkg.Name = fallbackName
	}
	pkg.Version = d.Version
	if pkg.Version == "" {
		pkg.Version = UnknownVersion
	}
	return nil
}

func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
