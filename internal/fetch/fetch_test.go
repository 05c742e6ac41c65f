package fetch

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const description = "Package: sum2\nVersion: 0.3.1\nTitle: Sum Two Numbers\n"

func TestParseSource(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		spec    string
		want    Source
		wantErr bool
	}{
		{"cran", "dplyr", Source{Kind: SourceCRAN, Spec: "dplyr", Name: "dplyr"}, false},
		{"github", "github:ropensci/rix", Source{Kind: SourceGitHub, Spec: "github:ropensci/rix", Owner: "ropensci", Repo: "rix", Ref: "HEAD"}, false},
		{"github with ref", "github:tidyverse/glue@v1.7.0", Source{Kind: SourceGitHub, Spec: "github:tidyverse/glue@v1.7.0", Owner: "tidyverse", Repo: "glue", Ref: "v1.7.0"}, false},
		{"local absolute", dir, Source{Kind: SourceLocal, Spec: dir, Path: dir}, false},
		{"local prefix", "local:" + dir, Source{Kind: SourceLocal, Spec: "local:" + dir, Path: dir}, false},
		{"github missing repo", "github:owner", Source{}, true},
		{"github too many parts", "github:a/b/c", Source{}, true},
		{"missing local", filepath.Join(dir, "nope"), Source{}, true},
		{"empty", "  ", Source{}, true},
		{"not a name", "some thing", Source{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSource(tt.spec)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSource)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSourceRelative(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "pkg"), 0o755))
	t.Chdir(dir)

	src, err := ParseSource("./pkg")
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, src.Kind)
	assert.True(t, filepath.IsAbs(src.Path))
	assert.Equal(t, "local:"+src.Path, src.String())
}

func TestFetchLocal(t *testing.T) {
	f := newTestFetcher(t, "")

	t.Run("reads name and version", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "DESCRIPTION"), []byte(description), 0o644))

		pkg, err := f.Fetch(context.Background(), Source{Kind: SourceLocal, Path: dir})
		require.NoError(t, err)
		assert.Equal(t, "sum2", pkg.Name)
		assert.Equal(t, "0.3.1", pkg.Version)
		assert.Equal(t, dir, pkg.Root)
		assert.NoError(t, pkg.Cleanup())
		assert.DirExists(t, dir)
	})

	t.Run("falls back to directory name", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "mypkg")
		require.NoError(t, os.Mkdir(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "DESCRIPTION"), []byte("Title: X\n"), 0o644))

		pkg, err := f.Fetch(context.Background(), Source{Kind: SourceLocal, Path: dir})
		require.NoError(t, err)
		assert.Equal(t, "mypkg", pkg.Name)
		assert.Equal(t, UnknownVersion, pkg.Version)
	})

	t.Run("requires DESCRIPTION", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), Source{Kind: SourceLocal, Path: t.TempDir()})
		assert.ErrorIs(t, err, ErrNotRPackage)
	})
}

func TestFetchGitHub(t *testing.T) {
	tarball := buildTarball(t, map[string]string{
		"rix-main/DESCRIPTION": "Package: rix\nVersion: 0.9.0\n",
		"rix-main/R/rix.R":     "rix <- function(r_ver) NULL\n",
	})

	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		w.Write(tarball)
	}))
	defer srv.Close()

	f := newTestFetcher(t, "")
	f.cfg.GitHubBaseURL = srv.URL

	pkg, err := f.Fetch(context.Background(), Source{Kind: SourceGitHub, Owner: "ropensci", Repo: "rix", Ref: "main"})
	require.NoError(t, err)
	defer pkg.Cleanup()

	assert.Equal(t, "/ropensci/rix/archive/main.tar.gz", path.Load())
	assert.Equal(t, "rix", pkg.Name)
	assert.Equal(t, "0.9.0", pkg.Version)
	assert.FileExists(t, filepath.Join(pkg.Root, "R", "rix.R"))

	require.NoError(t, pkg.Cleanup())
	assert.NoDirExists(t, pkg.Root)
}

func TestFetchCRAN(t *testing.T) {
	tarball := buildTarball(t, map[string]string{
		"sum2/DESCRIPTION": description,
		"sum2/man/sum2.Rd": `\title{Sum two numbers}`,
	})

	var indexHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/src/contrib/PACKAGES", func(w http.ResponseWriter, r *http.Request) {
		indexHits.Add(1)
		w.Write([]byte("Package: other\nVersion: 1.0\n\nPackage: sum2\nVersion: 0.3.1\nDepends: R\n"))
	})
	mux.HandleFunc("/src/contrib/sum2_0.3.1.tar.gz", func(w http.ResponseWriter, r *http.Request) {
		w.Write(tarball)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := newTestFetcher(t, srv.URL)

	pkg, err := f.Fetch(context.Background(), Source{Kind: SourceCRAN, Name: "sum2"})
	require.NoError(t, err)
	defer pkg.Cleanup()
	assert.Equal(t, "sum2", pkg.Name)
	assert.Equal(t, "0.3.1", pkg.Version)
	assert.FileExists(t, filepath.Join(pkg.Root, "man", "sum2.Rd"))

	_, err = f.Fetch(context.Background(), Source{Kind: SourceCRAN, Name: "absent"})
	assert.ErrorIs(t, err, ErrPackageNotFound)
	assert.Equal(t, int32(1), indexHits.Load(), "index is cached per mirror")
}

func TestFetchRetries(t *testing.T) {
	tarball := buildTarball(t, map[string]string{"p/DESCRIPTION": "Package: p\n"})

	t.Run("server errors are retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write(tarball)
		}))
		defer srv.Close()

		f := newTestFetcher(t, "")
		f.cfg.GitHubBaseURL = srv.URL
		pkg, err := f.Fetch(context.Background(), Source{Kind: SourceGitHub, Owner: "o", Repo: "p", Ref: "HEAD"})
		require.NoError(t, err)
		defer pkg.Cleanup()
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("not found is permanent", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.NotFound(w, r)
		}))
		defer srv.Close()

		f := newTestFetcher(t, "")
		f.cfg.GitHubBaseURL = srv.URL
		_, err := f.Fetch(context.Background(), Source{Kind: SourceGitHub, Owner: "o", Repo: "p", Ref: "HEAD"})
		assert.ErrorIs(t, err, ErrPackageNotFound)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		f := newTestFetcher(t, "")
		f.cfg.GitHubBaseURL = srv.URL
		f.cfg.Retry.BaseDelay = time.Second
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := f.Fetch(ctx, Source{Kind: SourceGitHub, Owner: "o", Repo: "p", Ref: "HEAD"})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestExtractTarGzRejectsEscape(t *testing.T) {
	tarball := buildTarball(t, map[string]string{"../evil": "x"})
	_, err := extractTarGz(bytes.NewReader(tarball), t.TempDir())
	assert.ErrorIs(t, err, ErrInvalidArchive)
}

func TestParsePackagesIndex(t *testing.T) {
	index := "Package: a\r\nVersion: 1.0\r\n\r\nPackage: b\nVersion: 2.1-3\nImports:\n    stats\n\nPackage: noversion\n"
	got, err := ParsePackagesIndex(bytes.NewReader([]byte(index)))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1.0", "b": "2.1-3"}, got)
}

func newTestFetcher(t *testing.T, mirror string) *Fetcher {
	t.Helper()
	cfg := DefaultConfig()
	if mirror != "" {
		cfg.CRANMirror = mirror
	}
	cfg.Retry = RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
	f, err := New(cfg)
	require.NoError(t, err)
	return f
}

func buildTarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}
