// Package output serializes record streams as YAML, JSON or Markdown.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"gopkg.in/yaml.v3"

	"github.com/b-rodrigues/pkgctx/pkg/types"
)

// Format names an output encoding
type Format string

const (
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported formats
var Formats = []Format{FormatYAML, FormatJSON, FormatMarkdown}

// DefaultWrap is the word wrap width of rendered Markdown
const DefaultWrap = 100

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want yaml, json or markdown)", s)
}

// Options configures a Writer
type Options struct {
	Render bool   // style Markdown for the terminal
	Style  string // glamour style; empty selects one from the terminal background
	Wrap   int    // word wrap width for rendered Markdown
}

// Writer encodes records to an io.Writer
type Writer struct {
	w      io.Writer
	format Format
	opts   Options
}

// NewWriter creates a Writer for format
func NewWriter(w io.Writer, format Format, opts Options) *Writer {
	if opts.Wrap <= 0 {
		opts.Wrap = DefaultWrap
	}
	return &Writer{w: w, format: format, opts: opts}
}

// Write encodes all records
func (w *Writer) Write(records []types.Record) error {
	switch w.format {
	case FormatYAML:
		return w.writeYAML(records)
	case FormatJSON:
		return w.writeJSON(records)
	case FormatMarkdown:
		return w.writeMarkdown(records)
	default:
		return fmt.Errorf("unknown output format %q", w.format)
	}
}

// writeYAML writes each record as its own document preceded by ---
func (w *Writer) writeYAML(records []types.Record) error {
	for _, r := range records {
		if _, err := io.WriteString(w.w, "---\n"); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w.w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode %s record %q: %w", r.Kind, r.Name(), err)
		}
		if err := enc.Close(); err != nil {
			return err
		}
	}
	return nil
}

// writeJSON writes each record pretty printed, one after another
func (w *Writer) writeJSON(records []types.Record) error {
	for _, r := range records {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode %s record %q: %w", r.Kind, r.Name(), err)
		}
		if _, err := w.w.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeMarkdown(records []types.Record) error {
	md := Markdown(records)
	if w.opts.Render {
		rendered, err := Render(md, w.opts.Style, w.opts.Wrap)
		if err != nil {
			return err
		}
		md = rendered
	}
	_, err := io.WriteString(w.w, md)
	return err
}

// YAML encodes records the way the yaml format writes them
func YAML(records []types.Record) (string, error) {
	var b strings.Builder
	if err := NewWriter(&b, FormatYAML, Options{}).Write(records); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Render styles Markdown for the terminal with glamour
func Render(md, style string, wrap int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wrap)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// Markdown renders records as a human readable document
func Markdown(records []types.Record) string {
	var b strings.Builder
	for _, r := range records {
		switch r.Kind {
		case types.KindPackage:
			if r.Package != nil {
				writePackage(&b, r.Package)
			}
		case types.KindFunction:
			if r.Function != nil {
				writeFunction(&b, r.Function)
			}
		case types.KindClass:
			if r.Class != nil {
				fmt.Fprintf(&b, "## Class `%s`\n\n", r.Class.Name)
				writeMap(&b, "Methods", r.Class.Methods)
			}
		case types.KindWorkflow:
			if r.Workflow != nil {
				fmt.Fprintf(&b, "## Workflow: %s\n\n", r.Workflow.Name)
				for i, step := range r.Workflow.Steps {
					fmt.Fprintf(&b, "%d. %s\n", i+1, step)
				}
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func writePackage(b *strings.Builder, p *types.PackageRecord) {
	fmt.Fprintf(b, "# %s %s\n\n", p.Name, p.Version)
	if p.Description != "" {
		fmt.Fprintf(b, "%s\n\n", p.Description)
	}
	for _, hint := range p.LLMHints {
		fmt.Fprintf(b, "> %s\n", hint)
	}
	if len(p.LLMHints) > 0 {
		b.WriteString("\n")
	}
	writeMap(b, "Common arguments", p.CommonArguments)
}

func writeFunction(b *strings.Builder, f *types.FunctionRecord) {
	fmt.Fprintf(b, "## %s\n\n", f.Name)
	fmt.Fprintf(b, "```r\n%s\n```\n\n", f.Signature)
	if !f.Exported {
		b.WriteString("*Internal.*\n\n")
	}
	if f.Purpose != "" {
		fmt.Fprintf(b, "%s\n\n", f.Purpose)
	}
	writeMap(b, "Arguments", f.Arguments)
	if f.Returns != "" {
		fmt.Fprintf(b, "**Returns:** %s\n\n", f.Returns)
	}
	for _, ex := range f.Examples {
		fmt.Fprintf(b, "```r\n%s\n```\n\n", ex.Code)
	}
	if len(f.Related) > 0 {
		fmt.Fprintf(b, "**See also:** %s\n\n", strings.Join(f.Related, ", "))
	}
}

// writeMap writes a sorted bullet list under a bold heading
func writeMap(b *strings.Builder, heading string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(b, "**%s:**\n\n", heading)
	for _, k := range keys {
		fmt.Fprintf(b, "- `%s`: %s\n", k, m[k])
	}
	b.WriteString("\n")
}
