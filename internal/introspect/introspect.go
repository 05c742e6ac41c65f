// Package introspect extracts records from an installed R package by running
// Rscript.
//
// The R side prints one JSON document between StartMarker and EndMarker. It
// lists each function with its formals and the raw Rd text of the topic that
// aliases it; the Rd text is parsed here with the rd package so installed and
// source extraction share one documentation parser.
package introspect

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/b-rodrigues/pkgctx/internal/manifest"
	"github.com/b-rodrigues/pkgctx/internal/rd"
	"github.com/b-rodrigues/pkgctx/pkg/types"
)

const (
	StartMarker = "<<<PKGCTX_JSON_START>>>"
	EndMarker   = "<<<PKGCTX_JSON_END>>>"
)

//go:embed introspect.R
var script string

var (
	ErrMarkerNotFound   = errors.New("introspection output markers not found")
	ErrIntrospectFailed = errors.New("R introspection failed")
)

// PackageInfo is the document printed by the introspection script
type PackageInfo struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Functions   []FunctionInfo `json:"functions"`
}

// FunctionInfo describes one function of an installed package
type FunctionInfo struct {
	Name      string         `json:"name"`
	Exported  bool           `json:"exported"`
	Arguments []ArgumentInfo `json:"arguments"`
	Rd        string         `json:"rd"`
}

// ArgumentInfo is one formal argument. Default is nil when there is none.
type ArgumentInfo struct {
	Name    string  `json:"name"`
	Default *string `json:"default"`
}

// Runner runs an external command
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run implements Runner
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Introspector extracts records from installed packages
type Introspector struct {
	runner  Runner
	rscript string
	parser  *rd.Parser
	logger  zerolog.Logger
}

// New creates an Introspector. rscript is the Rscript executable.
func New(runner Runner, rscript string, logger zerolog.Logger) *Introspector {
	if runner == nil {
		runner = ExecRunner{}
	}
	if rscript == "" {
		rscript = "Rscript"
	}
	return &Introspector{runner: runner, rscript: rscript, parser: rd.New(), logger: logger}
}

// Introspect runs the script for pkg and decodes its output
func (in *Introspector) Introspect(ctx context.Context, pkg string, includeInternal bool) (*PackageInfo, error) {
	flag := "FALSE"
	if includeInternal {
		flag = "TRUE"
	}

	in.logger.Debug().Str("package", pkg).Bool("include_internal", includeInternal).Msg("running R introspection")
	stdout, stderr, err := in.runner.Run(ctx, in.rscript, "--vanilla", "-e", script, pkg, flag)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v: %s", ErrIntrospectFailed, err, strings.TrimSpace(string(stderr)))
	}

	payload, err := ExtractJSON(stdout)
	if err != nil {
		return nil, err
	}
	return Decode(payload)
}

// Extract introspects pkg and converts the result to records
func (in *Introspector) Extract(ctx context.Context, pkg string, includeInternal bool) ([]types.Record, error) {
	info, err := in.Introspect(ctx, pkg, includeInternal)
	if err != nil {
		return nil, err
	}
	return in.ToRecords(info), nil
}

// ExtractJSON returns the bytes between the start and end markers
func ExtractJSON(stdout []byte) ([]byte, error) {
	start := bytes.Index(stdout, []byte(StartMarker))
	if start < 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMarkerNotFound, StartMarker)
	}
	rest := stdout[start+len(StartMarker):]
	end := bytes.Index(rest, []byte(EndMarker))
	if end < 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMarkerNotFound, EndMarker)
	}
	return rest[:end], nil
}

// Decode parses the introspection document
func Decode(payload []byte) (*PackageInfo, error) {
	var info PackageInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return nil, fmt.Errorf("failed to parse introspection JSON (%d bytes): %w", len(payload), err)
	}
	if info.Name == "" {
		return nil, fmt.Errorf("%w: package name missing", ErrIntrospectFailed)
	}
	return &info, nil
}

// ToRecords converts introspection output to a package record followed by
// one function record per function
func (in *Introspector) ToRecords(info *PackageInfo) []types.Record {
	desc := manifest.Description{Title: collapse(info.Title), Description: collapse(info.Description)}
	version := info.Version
	if version == "" {
		version = "unknown"
	}

	records := []types.Record{types.NewPackageRecord(&types.PackageRecord{
		SchemaVersion: types.SchemaVersion,
		Name:          info.Name,
		Version:       version,
		Language:      "R",
		Description:   desc.Summary(),
	})}

	for _, fn := range info.Functions {
		records = append(records, types.NewFunctionRecord(in.functionRecord(fn)))
	}
	return records
}

func (in *Introspector) functionRecord(fn FunctionInfo) *types.FunctionRecord {
	var doc *types.RdDoc
	if fn.Rd != "" {
		doc = in.parser.ParseUnit(fn.Name, fn.Rd)
		for _, w := range doc.Warnings {
			in.logger.Debug().Str("function", fn.Name).Str("kind", string(w.Kind)).Msg(w.Message)
		}
	}

	params := make([]string, 0, len(fn.Arguments))
	arguments := make(map[string]string)
	for _, a := range fn.Arguments {
		param := a.Name
		if a.Default != nil {
			param += " = " + *a.Default
		}
		params = append(params, param)

		var text string
		if doc != nil {
			text, _ = doc.Argument(a.Name)
		}
		if text == "" && a.Default != nil {
			text = "default: " + *a.Default
		}
		if text != "" {
			arguments[a.Name] = text
		}
	}

	rec := &types.FunctionRecord{
		Name:      fn.Name,
		Exported:  fn.Exported,
		Signature: fn.Name + "(" + strings.Join(params, ", ") + ")",
		Arguments: arguments,
	}
	if doc != nil {
		rec.Purpose = doc.Title
		rec.Returns = doc.Value
		for _, ex := range doc.Examples {
			rec.Examples = append(rec.Examples, types.Example{Code: ex.Code})
		}
	}
	if len(rec.Arguments) == 0 {
		rec.Arguments = nil
	}
	return rec
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
