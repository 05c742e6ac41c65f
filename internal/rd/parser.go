package rd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/b-rodrigues/pkgctx/pkg/types"
)

// Parser turns Rd documentation units into structured records
type Parser struct {
	maxExamples int
}

// New creates a new Parser keeping at most MaxExamples example blocks per unit
func New() *Parser {
	return &Parser{maxExamples: MaxExamples}
}

// ParseFile reads and parses one .Rd file. Only the read can fail; malformed
// markup is reported through RdDoc.Warnings.
func (p *Parser) ParseFile(filePath string) (*types.RdDoc, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	doc := p.ParseUnit(stem, string(content))
	for i := range doc.Warnings {
		doc.Warnings[i].File = filePath
	}
	return doc, nil
}

// ParseUnit parses the text of one documentation unit. name is used when the
// unit has no \name{} entry.
func (p *Parser) ParseUnit(name, text string) *types.RdDoc {
	doc := &types.RdDoc{Name: name}
	if names := extractTopLevel(text, "name"); len(names) > 0 {
		doc.Name = names[0]
	}
	doc.Aliases = extractTopLevel(text, "alias")

	sections, warnings := extractSections(text)
	doc.Warnings = append(doc.Warnings, warnings...)

	for _, s := range sections {
		switch s.Name {
		case types.SectionTitle:
			doc.Title = Strip(s.Content)
		case types.SectionDescription:
			doc.Description = Strip(s.Content)
		case types.SectionValue:
			doc.Value = Strip(s.Content)
		case types.SectionUsage:
			doc.Usage = Strip(s.Content)
		case types.SectionDetails:
			doc.Details = Strip(s.Content)
		case types.SectionArguments:
			args, argWarnings := parseArguments(s.Content)
			doc.Arguments = args
			for _, w := range argWarnings {
				w.Line = s.Line
				doc.Warnings = append(doc.Warnings, w)
			}
		case types.SectionExamples:
			doc.Examples = SegmentExamples(RemoveWrappers(s.Content), p.maxExamples)
		}
	}

	for i := range doc.Warnings {
		doc.Warnings[i].File = name
	}
	return doc
}
