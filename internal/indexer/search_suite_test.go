package indexer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"github.com/b-rodrigues/pkgctx/internal/fetch"
	"github.com/b-rodrigues/pkgctx/internal/storage"
)

// SearchTestSuite indexes the statlite fixture package and queries the index
type SearchTestSuite struct {
	suite.Suite
	storage     *storage.SQLiteStorage
	indexer     *Indexer
	fixturesDir string
	stats       *Statistics
	ctx         context.Context
}

// SetupSuite runs once before all tests
func (s *SearchTestSuite) SetupSuite() {
	s.ctx = context.Background()

	dir, err := filepath.Abs(filepath.Join("testdata", "statlite"))
	s.Require().NoError(err)
	s.fixturesDir = dir
}

// SetupTest runs before each test
func (s *SearchTestSuite) SetupTest() {
	store, err := storage.NewSQLiteStorage(":memory:")
	s.Require().NoError(err)
	s.storage = store

	f, err := fetch.New(fetch.DefaultConfig())
	s.Require().NoError(err)
	s.indexer = New(f, store, zerolog.Nop())

	s.stats, err = s.indexer.IndexPackage(s.ctx, s.fixturesDir, &Config{HoistCommonArgs: true})
	s.Require().NoError(err)
	s.T().Logf("Indexed %s %s: %d functions in %v",
		s.stats.Package, s.stats.Version, s.stats.FunctionsStored, s.stats.Duration)
}

// TearDownTest runs after each test
func (s *SearchTestSuite) TearDownTest() {
	if s.storage != nil {
		s.Require().NoError(s.storage.Close())
	}
}

func (s *SearchTestSuite) TestIndexedPackage() {
	s.Equal("statlite", s.stats.Package)
	s.Equal("0.2.0", s.stats.Version)
	s.Equal(5, s.stats.FilesParsed)
	s.Equal(0, s.stats.FilesFailed)
	s.Equal(3, s.stats.FunctionsStored)

	pkg, err := s.storage.GetPackage(s.ctx, "statlite")
	s.Require().NoError(err)
	s.Equal("Lightweight Summary Statistics", pkg.Description)
	s.Equal(map[string]string{
		"x":     "A numeric vector.",
		"na.rm": "Drop missing values before computing.",
	}, pkg.CommonArguments)
}

func (s *SearchTestSuite) TestFunctionOrder() {
	pkg, err := s.storage.GetPackage(s.ctx, "statlite")
	s.Require().NoError(err)

	functions, err := s.storage.ListFunctions(s.ctx, pkg.ID)
	s.Require().NoError(err)

	var names []string
	for _, fn := range functions {
		names = append(names, fn.Name)
	}
	// Files are read in name order: spread.R before summary.R.
	s.Equal([]string{"iqr_spread", "trim_mean", "robust_median"}, names)
}

func (s *SearchTestSuite) TestSearchByPurpose() {
	tests := []struct {
		query string
		want  string
	}{
		{"median", "robust_median"},
		{"interquartile", "iqr_spread"},
		{"quartile", "iqr_spread"},
		{"trimmed mean", "trim_mean"},
	}

	for _, tt := range tests {
		s.Run(tt.query, func() {
			results, err := s.storage.SearchFunctions(s.ctx, tt.query, 10, nil)
			s.Require().NoError(err)
			s.Require().NotEmpty(results)
			s.Equal(tt.want, results[0].Function.Name)
			s.Equal("statlite", results[0].Package)
			s.Equal("0.2.0", results[0].Version)
			s.NoError(results[0].Validate())
		})
	}
}

func (s *SearchTestSuite) TestStoredFunction() {
	fn, err := s.storage.GetFunction(s.ctx, "statlite", "trim_mean")
	s.Require().NoError(err)

	s.Equal("trim_mean(x, trim = 0.1, na.rm = FALSE)", fn.Signature)
	s.Equal("Trimmed mean of a numeric vector", fn.Purpose)
	s.Equal("A single number.", fn.Returns)
	s.Require().Len(fn.Arguments, 3)
	s.Equal("x", fn.Arguments[0].Name)
	s.Equal("trim", fn.Arguments[1].Name)
	s.Equal("Fraction of observations trimmed from each end.", fn.Arguments[1].Description)
	s.Equal("na.rm", fn.Arguments[2].Name)
	s.Equal([]string{"trim_mean(c(1, 2, 3, 100))", "trim_mean(c(1, NA, 3), na.rm = TRUE)"}, fn.Examples)
}

func (s *SearchTestSuite) TestInternalFunctions() {
	_, err := s.indexer.IndexPackage(s.ctx, s.fixturesDir, &Config{IncludeInternal: true})
	s.Require().NoError(err)

	status, err := s.storage.GetStatus(s.ctx, "statlite")
	s.Require().NoError(err)
	s.Equal(5, status.FunctionsCount)
	s.Equal(3, status.ExportedCount)
	s.Equal(2, status.ExamplesCount)

	results, err := s.storage.SearchFunctions(s.ctx, "check", 10, nil)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(".check_numeric", results[0].Function.Name)

	results, err = s.storage.SearchFunctions(s.ctx, "check", 10, &storage.SearchFilters{ExportedOnly: true})
	s.Require().NoError(err)
	s.Empty(results)
}

// TestSearchTestSuite runs the suite
func TestSearchTestSuite(t *testing.T) {
	suite.Run(t, new(SearchTestSuite))
}
