package rsource

import (
	"fmt"
	"os"
	"strings"

	"github.com/b-rodrigues/pkgctx/internal/scan"
	"github.com/b-rodrigues/pkgctx/pkg/types"
)

// assignOps are the spellings of a function assignment, matched in order
var assignOps = []string{"<- function(", "= function(", "<-function(", "=function("}

// internalPrefix marks names R treats as internal
const internalPrefix = "."

// Scanner locates function definitions in R source
type Scanner struct {
	exports         types.ExportSet
	includeInternal bool
}

// New creates a Scanner. With includeInternal false, dot-prefixed names and
// names missing from a non-empty export set are skipped.
func New(exports types.ExportSet, includeInternal bool) *Scanner {
	return &Scanner{exports: exports, includeInternal: includeInternal}
}

// ScanSignatures scans src and returns its function signatures in source order
func ScanSignatures(src string, exports types.ExportSet, includeInternal bool) []types.SignatureRecord {
	return New(exports, includeInternal).Scan("", src).Signatures
}

// ScanFile reads and scans one R file
func (s *Scanner) ScanFile(filePath string) (*types.ScanResult, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return s.Scan(filePath, string(content)), nil
}

// Scan scans the text of one file. file only labels records and warnings.
func (s *Scanner) Scan(file, src string) *types.ScanResult {
	result := &types.ScanResult{File: file}
	lines := strings.Split(src, "\n")

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "#") {
			continue
		}

		for _, op := range assignOps {
			pos := strings.Index(line, op)
			if pos < 0 {
				continue
			}

			name := strings.TrimSpace(line[:pos])
			if name == "" || strings.ContainsAny(name, " \t") {
				result.AddWarning(types.WarnRejectedSignature, i+1,
					fmt.Sprintf("assignment target %q is not a plain name", name))
				continue
			}

			exported := s.exports.Exported(name)
			if !s.includeInternal && (strings.HasPrefix(name, internalPrefix) || !exported) {
				break
			}

			params, ok := collectParams(lines, i, line[pos+len(op):])
			if !ok {
				result.AddWarning(types.WarnRejectedSignature, i+1,
					fmt.Sprintf("parameter list of %s never closes", name))
				break
			}

			result.Signatures = append(result.Signatures, types.SignatureRecord{
				Name:     name,
				Exported: exported,
				Params:   params,
				File:     file,
				Line:     i + 1,
			})
			break
		}
	}

	return result
}

// collectParams accumulates the parameter list that starts after the
// opening paren on line i. Parens are counted naively, so a paren inside a
// string literal desynchronizes the count.
func collectParams(lines []string, i int, rest string) (string, bool) {
	depth := scan.NewCounter(scan.Parens)
	depth.Set(1)

	var sig strings.Builder
	text := rest
	for {
		if end := depth.Scan(text); end >= 0 {
			sig.WriteString(text[:end])
			return strings.TrimSpace(sig.String()), true
		}
		sig.WriteString(text)

		i++
		if i >= len(lines) {
			return "", false
		}
		text = strings.TrimSpace(lines[i])
		if text != "" && sig.Len() > 0 {
			sig.WriteByte(' ')
		}
	}
}
