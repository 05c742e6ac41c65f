package extractor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b-rodrigues/pkgctx/internal/fetch"
	"github.com/b-rodrigues/pkgctx/pkg/types"
)

const sumSource = `# Adds two numbers
sum2 <- function(x, y = 1, ...) {
  x + y
}

sum2_safe <- function(x, y = 1, ...) tryCatch(sum2(x, y), error = function(e) NA)

.helper <- function() NULL
hidden <- function(z) z
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// setupPackage writes a small source package and returns it
func setupPackage(t *testing.T) *fetch.Package {
	t.Helper()
	root := t.TempDir()

	rd, err := os.ReadFile(filepath.Join("..", "rd", "testdata", "sum2.Rd"))
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "DESCRIPTION"), "Package: sum2\nVersion: 0.3.1\nTitle: Sum Two Numbers\nDescription: Adds things\n    together.\n")
	writeFile(t, filepath.Join(root, "NAMESPACE"), "# Generated by roxygen2\nexport(sum2)\nexport(sum2_safe)\nimportFrom(stats, na.omit)\n")
	writeFile(t, filepath.Join(root, "man", "sum2.Rd"), string(rd))
	writeFile(t, filepath.Join(root, "R", "sum2.R"), sumSource)
	writeFile(t, filepath.Join(root, "R", "utils.r"), "sum3 <- function(a) a\n")
	writeFile(t, filepath.Join(root, "R", "notes.txt"), "f <- function(x) x\n")

	return &fetch.Package{Name: "sum2", Version: "0.3.1", Root: root}
}

func TestExtract(t *testing.T) {
	pkg := setupPackage(t)
	ext := New(zerolog.Nop())

	result, err := ext.Extract(context.Background(), pkg, Options{Workers: 2})
	require.NoError(t, err)

	require.Len(t, result.Records, 3)
	assert.Equal(t, types.KindPackage, result.Records[0].Kind)

	pr := types.Packages(result.Records)
	require.NotNil(t, pr)
	assert.Equal(t, "sum2", pr.Name)
	assert.Equal(t, "0.3.1", pr.Version)
	assert.Equal(t, "R", pr.Language)
	assert.Equal(t, "Sum Two Numbers", pr.Description)
	assert.Equal(t, types.SchemaVersion, pr.SchemaVersion)

	fns := types.Functions(result.Records)
	require.Len(t, fns, 2)

	sum2 := fns[0]
	assert.Equal(t, "sum2", sum2.Name)
	assert.True(t, sum2.Exported)
	assert.Equal(t, "sum2(x, y = 1, ...)", sum2.Signature)
	assert.Equal(t, "Sum two numbers", sum2.Purpose)
	assert.Equal(t, "The elementwise sum of x and y.", sum2.Returns)
	assert.Equal(t, "A numeric vector.", sum2.Arguments["x"])
	assert.Equal(t, "A second value, see sum.", sum2.Arguments["y"])
	require.Len(t, sum2.Examples, 3)
	assert.Equal(t, "sum2(1, 2)", sum2.Examples[0].Code)

	safe := fns[1]
	assert.Equal(t, "sum2_safe", safe.Name)
	assert.Equal(t, "sum2_safe(x, y = 1, ...)", safe.Signature)
	assert.Equal(t, "Sum two numbers", safe.Purpose, "documented through its alias")

	stats := result.Stats
	assert.NotEmpty(t, stats.RunID)
	assert.Equal(t, 3, stats.FilesParsed)
	assert.Equal(t, 0, stats.FilesFailed)
	assert.Equal(t, 1, stats.DocsParsed)
	assert.Equal(t, 2, stats.FunctionsFound)
	assert.Empty(t, stats.ErrorMessages)
}

func TestExtractIncludeInternal(t *testing.T) {
	pkg := setupPackage(t)

	result, err := New(zerolog.Nop()).Extract(context.Background(), pkg, Options{IncludeInternal: true})
	require.NoError(t, err)

	var names []string
	exported := make(map[string]bool)
	for _, fn := range types.Functions(result.Records) {
		names = append(names, fn.Name)
		exported[fn.Name] = fn.Exported
	}
	assert.Equal(t, []string{"sum2", "sum2_safe", ".helper", "hidden", "sum3"}, names)
	assert.True(t, exported["sum2"])
	assert.False(t, exported[".helper"])
	assert.False(t, exported["hidden"])
	assert.False(t, exported["sum3"])
}

func TestExtractWithoutNamespace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "DESCRIPTION"), "Package: tiny\n")
	writeFile(t, filepath.Join(root, "R", "tiny.R"), "tiny <- function(n) n\n.hidden <- function() 1\n")

	result, err := New(zerolog.Nop()).Extract(context.Background(), &fetch.Package{Name: "tiny", Root: root}, Options{})
	require.NoError(t, err)

	pr := types.Packages(result.Records)
	require.NotNil(t, pr)
	assert.Equal(t, fetch.UnknownVersion, pr.Version)

	fns := types.Functions(result.Records)
	require.Len(t, fns, 1, "an empty export set exports every non-internal name")
	assert.Equal(t, "tiny", fns[0].Name)
	assert.True(t, fns[0].Exported)
	assert.Empty(t, fns[0].Purpose)
	assert.Nil(t, fns[0].Arguments)
}

func TestExtractErrors(t *testing.T) {
	t.Run("missing DESCRIPTION", func(t *testing.T) {
		_, err := New(zerolog.Nop()).Extract(context.Background(), &fetch.Package{Root: t.TempDir()}, Options{})
		assert.Error(t, err)
	})

	t.Run("unreadable file is counted and skipped", func(t *testing.T) {
		pkg := setupPackage(t)
		require.NoError(t, os.Symlink(filepath.Join(pkg.Root, "missing"), filepath.Join(pkg.Root, "man", "broken.Rd")))

		result, err := New(zerolog.Nop()).Extract(context.Background(), pkg, Options{})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Stats.FilesFailed)
		require.Len(t, result.Stats.ErrorMessages, 1)
		assert.Contains(t, result.Stats.ErrorMessages[0], "broken.Rd")
		assert.Len(t, types.Functions(result.Records), 2)
	})

	t.Run("cancelled context", func(t *testing.T) {
		pkg := setupPackage(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(zerolog.Nop()).Extract(ctx, pkg, Options{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestExtractWarnings(t *testing.T) {
	pkg := setupPackage(t)
	writeFile(t, filepath.Join(pkg.Root, "man", "broken.Rd"), "\\name{broken}\n\\title{Never closes\n\\description{OK}\n")

	result, err := New(zerolog.Nop()).Extract(context.Background(), pkg, Options{})
	require.NoError(t, err)

	require.NotEmpty(t, result.Warnings)
	assert.Equal(t, types.WarnTruncatedSection, result.Warnings[0].Kind)
	assert.Equal(t, len(result.Warnings), result.Stats.Warnings)
	assert.Equal(t, 2, result.Stats.DocsParsed)
}

func TestFunctionRecord(t *testing.T) {
	sig := types.SignatureRecord{Name: "f", Exported: true, Params: "x, ..."}

	rec := FunctionRecord(sig, nil)
	assert.Equal(t, "f(x, ...)", rec.Signature)
	assert.Nil(t, rec.Arguments)
	assert.Nil(t, rec.Examples)

	doc := &types.RdDoc{
		Title: "Do f",
		Value: "Nothing.",
		Arguments: []types.Argument{
			{Name: "x", Description: "Input."},
			{Name: "extra", Description: "Documented but not in the signature."},
		},
		Examples: []types.ExampleBlock{{Code: "f(1)"}},
	}
	rec = FunctionRecord(sig, doc)
	assert.Equal(t, "Do f", rec.Purpose)
	assert.Equal(t, "Nothing.", rec.Returns)
	assert.Equal(t, map[string]string{"x": "Input.", "extra": "Documented but not in the signature."}, rec.Arguments)
	assert.Equal(t, []types.Example{{Code: "f(1)"}}, rec.Examples)
}

func BenchmarkExtract(b *testing.B) {
	root := b.TempDir()
	rd, err := os.ReadFile(filepath.Join("..", "rd", "testdata", "sum2.Rd"))
	require.NoError(b, err)
	require.NoError(b, os.WriteFile(filepath.Join(root, "DESCRIPTION"), []byte("Package: sum2\nVersion: 0.3.1\n"), 0o644))
	require.NoError(b, os.MkdirAll(filepath.Join(root, "man"), 0o755))
	require.NoError(b, os.MkdirAll(filepath.Join(root, "R"), 0o755))
	require.NoError(b, os.WriteFile(filepath.Join(root, "man", "sum2.Rd"), rd, 0o644))
	require.NoError(b, os.WriteFile(filepath.Join(root, "R", "sum2.R"), []byte(sumSource), 0o644))

	ext := New(zerolog.Nop())
	pkg := &fetch.Package{Name: "sum2", Root: root}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ext.Extract(context.Background(), pkg, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
