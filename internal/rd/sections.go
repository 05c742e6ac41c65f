package rd

import (
	"fmt"
	"strings"

	"github.com/b-rodrigues/pkgctx/internal/scan"
	"github.com/b-rodrigues/pkgctx/pkg/types"
)

// openSection is a section whose closing brace has not been seen yet
type openSection struct {
	name  types.SectionName
	line  int
	depth *scan.Counter
	buf   strings.Builder
}

// sectionExtractor splits one unit into top-level sections
type sectionExtractor struct {
	sections []types.Section
	seen     map[types.SectionName]bool
	open     *openSection
	warnings []types.ParseWarning
}

// ExtractSections returns the raw content of every finalized section keyed
// by name
func ExtractSections(text string) map[types.SectionName]string {
	sections, _ := extractSections(text)
	out := make(map[types.SectionName]string, len(sections))
	for _, s := range sections {
		out[s.Name] = s.Content
	}
	return out
}

// ExtractSectionList returns finalized sections in source order
func ExtractSectionList(text string) []types.Section {
	sections, _ := extractSections(text)
	return sections
}

func extractSections(text string) ([]types.Section, []types.ParseWarning) {
	e := &sectionExtractor{seen: make(map[types.SectionName]bool)}
	for i, line := range strings.Split(text, "\n") {
		e.line(i+1, strings.TrimSuffix(line, "\r"))
	}
	if e.open != nil {
		e.truncate()
	}
	return e.sections, e.warnings
}

// line processes one source line. After a section closes mid-line the rest
// of the line is scanned again at depth zero.
func (e *sectionExtractor) line(lineNo int, line string) {
	if isComment(line) {
		return
	}

	rest := line
	atLineStart := true
	for {
		if e.open == nil {
			name, body, ok := matchOpener(rest)
			if !ok {
				return
			}
			e.open = &openSection{name: name, line: lineNo, depth: scan.NewCounter(scan.Braces)}
			e.open.depth.Set(1)
			rest = body
			atLineStart = false
			continue
		}

		// A top-level opener at the start of a line means the open section
		// was never closed.
		if atLineStart {
			if _, _, ok := matchOpener(rest); ok {
				e.truncate()
				continue
			}
			e.open.buf.WriteByte('\n')
		}

		end := e.open.depth.Scan(rest)
		if end < 0 {
			e.open.buf.WriteString(rest)
			return
		}
		e.open.buf.WriteString(rest[:end])
		e.finalize()
		rest = rest[end+1:]
		atLineStart = false
	}
}

// finalize stores the open section unless one of the same name exists
func (e *sectionExtractor) finalize() {
	s := e.open
	e.open = nil
	if e.seen[s.name] {
		return
	}
	e.seen[s.name] = true
	e.sections = append(e.sections, types.Section{
		Name:    s.name,
		Content: s.buf.String(),
		Line:    s.line,
	})
}

// truncate drops the open section
func (e *sectionExtractor) truncate() {
	s := e.open
	e.open = nil
	e.warnings = append(e.warnings, types.ParseWarning{
		Line:    s.line,
		Kind:    types.WarnTruncatedSection,
		Message: fmt.Sprintf(`unterminated \%s section dropped`, s.name),
	})
}

// matchOpener tests s, after leading whitespace, against the section openers
func matchOpener(s string) (types.SectionName, string, bool) {
	t := strings.TrimLeft(s, " \t")
	for _, name := range types.SectionNames {
		if opener := name.Opener(); strings.HasPrefix(t, opener) {
			return name, t[len(opener):], true
		}
	}
	return "", "", false
}

// isComment reports an Rd comment line
func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "%")
}

// extractTopLevel returns the content of every single-line top-level
// \cmd{...} whose name is cmd, e.g. \alias{} entries
func extractTopLevel(text, cmd string) []string {
	prefix := `\` + cmd + "{"
	var out []string
	for _, line := range strings.Split(text, "\n") {
		t := strings.TrimSpace(line)
		if !strings.HasPrefix(t, prefix) {
			continue
		}
		inner, _, ok := scan.Group(t, len(prefix)-1, scan.Braces)
		if !ok {
			continue
		}
		if v := strings.TrimSpace(inner); v != "" {
			out = append(out, v)
		}
	}
	return out
}
