package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRecordJSON(t *testing.T) {
	rec := NewFunctionRecord(&FunctionRecord{
		Name:      "trim_mean",
		Exported:  true,
		Signature: "trim_mean(x, trim = 0.1)",
	})

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"function","name":"trim_mean","exported":true,"signature":"trim_mean(x, trim = 0.1)"}`, string(data))
	assert.True(t, strings.HasPrefix(string(data), `{"kind":"function",`))

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, rec, back)
}

func TestRecordYAMLKindFirst(t *testing.T) {
	rec := NewPackageRecord(&PackageRecord{
		SchemaVersion: SchemaVersion,
		Name:          "statlite",
		Version:       "0.2.0",
		Language:      "R",
	})

	data, err := yaml.Marshal(rec)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "kind: package\n"), string(data))
	assert.Contains(t, string(data), "schema_version: \"1.1\"")

	var back Record
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, KindPackage, back.Kind)
	assert.Equal(t, "statlite", back.Package.Name)
}

func TestRecordDecodeUnknownKind(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"kind":"method","name":"x"}`), &r)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	err = yaml.Unmarshal([]byte("kind: method\nname: x\n"), &r)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		wantErr error
	}{
		{"function", NewFunctionRecord(&FunctionRecord{Name: "f", Signature: "f()"}), nil},
		{"missing signature", NewFunctionRecord(&FunctionRecord{Name: "f"}), ErrMissingSignature},
		{"missing name", NewFunctionRecord(&FunctionRecord{Signature: "()"}), ErrMissingName},
		{"kind mismatch", Record{Kind: KindPackage, Function: &FunctionRecord{Name: "f"}}, ErrInvalidRecord},
		{"two variants", Record{
			Kind:     KindFunction,
			Function: &FunctionRecord{Name: "f", Signature: "f()"},
			Class:    &ClassRecord{Name: "c"},
		}, ErrInvalidRecord},
		{"workflow", Record{Kind: KindWorkflow, Workflow: &WorkflowRecord{Name: "w"}}, nil},
		{"nameless class", Record{Kind: KindClass, Class: &ClassRecord{}}, ErrMissingName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMarshalInvalidRecord(t *testing.T) {
	_, err := json.Marshal(Record{Kind: KindFunction})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestStreamHelpers(t *testing.T) {
	records := []Record{
		NewPackageRecord(&PackageRecord{Name: "p", SchemaVersion: SchemaVersion}),
		NewFunctionRecord(&FunctionRecord{Name: "a", Signature: "a()"}),
		NewFunctionRecord(&FunctionRecord{Name: "b", Signature: "b()"}),
	}

	require.NotNil(t, Packages(records))
	assert.Equal(t, "p", Packages(records).Name)
	fns := Functions(records)
	require.Len(t, fns, 2)
	assert.Equal(t, "b", fns[1].Name)
	assert.Nil(t, Packages(records[1:]))
}

func TestParamNames(t *testing.T) {
	tests := []struct {
		params string
		want   []string
	}{
		{"", nil},
		{"x", []string{"x"}},
		{"x, trim = 0.1, na.rm = FALSE", []string{"x", "trim", "na.rm"}},
		{"x, f = function(a, b) a + b, ...", []string{"x", "f", "..."}},
		{`sep = ",", y = c(1, 2)`, []string{"sep", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.params, func(t *testing.T) {
			sig := SignatureRecord{Name: "f", Params: tt.params}
			assert.Equal(t, tt.want, sig.ParamNames())
		})
	}
}

func TestExportSet(t *testing.T) {
	assert.True(t, ExportSet(nil).Exported("anything"))

	set := NewExportSet("a", "b")
	assert.True(t, set.Exported("a"))
	assert.False(t, set.Exported("c"))
}
