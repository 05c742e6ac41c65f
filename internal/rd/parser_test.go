package rd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b-rodrigues/pkgctx/pkg/types"
)

func TestParseUnitScenarios(t *testing.T) {
	p := New()

	t.Run("title and description round trip", func(t *testing.T) {
		doc := p.ParseUnit("sum2", `\title{Sum two numbers}\description{Adds \code{x} and \code{y}.}`)
		assert.Equal(t, "Sum two numbers", doc.Title)
		assert.Equal(t, "Adds x and y.", doc.Description)
		assert.Empty(t, doc.Warnings)
	})

	t.Run("nested item with link", func(t *testing.T) {
		doc := p.ParseUnit("f", `\arguments{\item{x}{A \link{numeric} vector.}}`)
		require.Len(t, doc.Arguments, 1)
		assert.Equal(t, "x", doc.Arguments[0].Name)
		assert.Equal(t, "A numeric vector.", doc.Arguments[0].Description)
	})

	t.Run("dontrun unwrap", func(t *testing.T) {
		doc := p.ParseUnit("foo", "\\examples{\\dontrun{\nfoo(1)\n}}")
		require.Len(t, doc.Examples, 1)
		assert.Equal(t, "foo(1)", doc.Examples[0].Code)
	})

	t.Run("unterminated section tolerance", func(t *testing.T) {
		doc := p.ParseUnit("broken", "\\title{Broken\n\\description{OK}")
		assert.Empty(t, doc.Title)
		assert.Equal(t, "OK", doc.Description)
		require.Len(t, doc.Warnings, 1)
		assert.Equal(t, types.WarnTruncatedSection, doc.Warnings[0].Kind)
		assert.Equal(t, "broken", doc.Warnings[0].File)
	})

	t.Run("empty unit", func(t *testing.T) {
		doc := p.ParseUnit("empty", "")
		assert.Equal(t, "empty", doc.Name)
		assert.Empty(t, doc.Title)
		assert.Empty(t, doc.Arguments)
		assert.Empty(t, doc.Examples)
	})
}

func TestParseFile(t *testing.T) {
	p := New()
	doc, err := p.ParseFile(filepath.Join("testdata", "sum2.Rd"))
	require.NoError(t, err)

	assert.Equal(t, "sum2", doc.Name)
	assert.Equal(t, []string{"sum2", "sum2_safe"}, doc.Aliases)
	assert.Equal(t, "Sum two numbers", doc.Title)
	assert.Equal(t, "Adds x and y. Missing values propagate unless na.rm = TRUE.", doc.Description)
	assert.Equal(t, "The elementwise sum of x and y.", doc.Value)
	assert.Equal(t, "sum2(x, y = 1, ...)", doc.Usage)
	assert.Equal(t, "Works on R vectors. Returns NA on empty input.", doc.Details)

	require.Len(t, doc.Arguments, 3)
	assert.Equal(t, types.Argument{Name: "x", Description: "A numeric vector."}, doc.Arguments[0])
	assert.Equal(t, "A second value, see sum.", doc.Arguments[1].Description)
	assert.Equal(t, `\dots`, doc.Arguments[2].Name)
	assert.Equal(t, "Passed to sum.", doc.Arguments[2].Description)

	require.Len(t, doc.Examples, 3)
	assert.Equal(t, "sum2(1, 2)", doc.Examples[0].Code)
	assert.Equal(t, "sum2(\n  x = 1:10,\n  y = 2\n)", doc.Examples[1].Code)
	assert.Equal(t, "sum2(3, 4)", doc.Examples[2].Code)

	desc, ok := doc.Argument("y")
	assert.True(t, ok)
	assert.Equal(t, "A second value, see sum.", desc)
	assert.Empty(t, doc.Warnings)
}

func TestParseFileErrors(t *testing.T) {
	p := New()

	t.Run("missing file", func(t *testing.T) {
		_, err := p.ParseFile(filepath.Join(t.TempDir(), "missing.Rd"))
		assert.Error(t, err)
	})

	t.Run("warnings carry the file path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.Rd")
		require.NoError(t, os.WriteFile(path, []byte("\\name{bad}\n\\title{never closed\n"), 0o644))

		doc, err := p.ParseFile(path)
		require.NoError(t, err)
		require.Len(t, doc.Warnings, 1)
		assert.Equal(t, path, doc.Warnings[0].File)
		assert.Equal(t, 2, doc.Warnings[0].Line)
	})
}

func TestParseUnitDeterministic(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("testdata", "sum2.Rd"))
	require.NoError(t, err)

	p := New()
	first := p.ParseUnit("sum2", string(content))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.ParseUnit("sum2", string(content)))
	}
}

func BenchmarkParseUnit(b *testing.B) {
	content, err := os.ReadFile(filepath.Join("testdata", "sum2.Rd"))
	if err != nil {
		b.Fatal(err)
	}
	p := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.ParseUnit("sum2", string(content))
	}
}
