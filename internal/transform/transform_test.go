package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b-rodrigues/pkgctx/pkg/types"
)

func TestFirstSentence(t *testing.T) {
	long := strings.Repeat("word ", 30)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"first of two", "First sentence. Second sentence.", "First sentence."},
		{"question", "Is it? Yes.", "Is it?"},
		{"terminator at end", "Only one.", "Only one."},
		{"upper case after dot", "Ends here.Next starts", "Ends here."},
		{"decimal is not a boundary", "Uses 0.5 as default", "Uses 0.5 as default"},
		{"short without boundary", "Short text", "Short text"},
		{"long cut at word", long, strings.TrimSpace(long[:100]) + "..."},
		{"long without spaces", strings.Repeat("x", 120), strings.Repeat("x", 100) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstSentence(tt.in))
		})
	}
}

func TestFirstSentenceLongCut(t *testing.T) {
	s := "This is a very long description that goes on and on without any sentence boundaries and just keeps going forever"
	got := FirstSentence(s)
	assert.Less(t, len(got), len(s))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.True(t, strings.HasPrefix(s, strings.TrimSuffix(got, "...")+" "))
}

func TestCompact(t *testing.T) {
	records := []types.Record{
		types.NewPackageRecord(&types.PackageRecord{Name: "p", Description: "Tools. For things."}),
		types.NewFunctionRecord(&types.FunctionRecord{
			Name:        "f",
			Signature:   "f(x)",
			Purpose:     "Does f. Really.",
			Returns:     "A value! Always.",
			Arguments:   map[string]string{"x": "Input. Must be numeric."},
			Examples:    []types.Example{{Code: "f(1)"}},
			Constraints: []string{"x > 0"},
			Related:     []string{"g"},
		}),
	}

	out := Compact(records)
	require.Len(t, out, 2)
	assert.Equal(t, "Tools.", out[0].Package.Description)

	fn := out[1].Function
	assert.Equal(t, "Does f.", fn.Purpose)
	assert.Equal(t, "A value!", fn.Returns)
	assert.Equal(t, "Input.", fn.Arguments["x"])
	assert.Nil(t, fn.Examples)
	assert.Nil(t, fn.Constraints)
	assert.Nil(t, fn.Related)
	assert.Equal(t, "f(x)", fn.Signature)
}

func TestHoistCommonArgs(t *testing.T) {
	fn := func(name string, args map[string]string) types.Record {
		return types.NewFunctionRecord(&types.FunctionRecord{Name: name, Signature: name + "()", Arguments: args})
	}
	records := []types.Record{
		types.NewPackageRecord(&types.PackageRecord{Name: "p"}),
		fn("a", map[string]string{"data": "", "x": "Only in a."}),
		fn("b", map[string]string{"data": "A data frame.", "na.rm": "Drop NA."}),
		fn("c", map[string]string{"data": "Another description.", "na.rm": "Drop NA."}),
	}

	out := HoistCommonArgs(records)

	pkg := types.Packages(out)
	require.NotNil(t, pkg)
	assert.Equal(t, map[string]string{"data": "A data frame."}, pkg.CommonArguments)

	fns := types.Functions(out)
	for _, f := range fns {
		assert.Equal(t, types.CommonArgumentRef, f.Arguments["data"], f.Name)
	}
	assert.Equal(t, "Only in a.", fns[0].Arguments["x"])
	assert.Equal(t, "Drop NA.", fns[1].Arguments["na.rm"], "two occurrences are not enough")
}

func TestHoistCommonArgsNoChange(t *testing.T) {
	t.Run("no package record", func(t *testing.T) {
		records := []types.Record{
			types.NewFunctionRecord(&types.FunctionRecord{Name: "a", Signature: "a()", Arguments: map[string]string{"x": "X."}}),
		}
		out := HoistCommonArgs(records)
		assert.Equal(t, "X.", out[0].Function.Arguments["x"])
	})

	t.Run("all descriptions empty", func(t *testing.T) {
		records := []types.Record{types.NewPackageRecord(&types.PackageRecord{Name: "p"})}
		for _, n := range []string{"a", "b", "c"} {
			records = append(records, types.NewFunctionRecord(&types.FunctionRecord{
				Name: n, Signature: n + "()", Arguments: map[string]string{"x": ""},
			}))
		}
		out := HoistCommonArgs(records)
		assert.Nil(t, types.Packages(out).CommonArguments)
		assert.Equal(t, "", out[1].Function.Arguments["x"])
	})
}
