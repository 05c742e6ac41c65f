package rd

import (
	"strings"

	"github.com/b-rodrigues/pkgctx/internal/scan"
	"github.com/b-rodrigues/pkgctx/pkg/types"
)

// MaxExamples caps the example blocks kept per unit
const MaxExamples = 3

// RemoveWrappers replaces \dontrun{..}, \donttest{..}, \dontshow{..} and
// \donteval{..} with their content. An unterminated wrapper loses only its
// opening marker.
func RemoveWrappers(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		if text[i] == '\\' {
			if marker, ok := wrapperAt(text, i); ok {
				open := i + len(marker) - 1
				if inner, next, ok := scan.Group(text, open, scan.Braces); ok {
					b.WriteString(RemoveWrappers(inner))
					i = next
				} else {
					i = open + 1
				}
				continue
			}
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}

func wrapperAt(text string, i int) (string, bool) {
	for _, name := range wrapperNames {
		if marker := `\` + name + "{"; strings.HasPrefix(text[i:], marker) {
			return marker, true
		}
	}
	return "", false
}

// segmenter accumulates example lines into blocks
type segmenter struct {
	max    int
	depth  *scan.Counter
	lines  []string
	blocks []types.ExampleBlock
}

// SegmentExamples splits an examples body into at most max runnable blocks.
// Wrappers must already be removed.
func SegmentExamples(text string, max int) []types.ExampleBlock {
	s := &segmenter{max: max, depth: scan.NewCodeCounter(scan.Parens)}
	for _, line := range strings.Split(text, "\n") {
		if s.full() {
			break
		}
		s.line(strings.TrimRight(line, " \t\r"))
	}
	s.flush()
	return s.blocks
}

func (s *segmenter) full() bool {
	return s.max > 0 && len(s.blocks) >= s.max
}

func (s *segmenter) line(line string) {
	if strings.TrimSpace(line) == "" {
		if s.depth.Balanced() {
			s.flush()
		}
		return
	}

	s.lines = append(s.lines, line)
	s.depth.FeedLine(line)

	if s.depth.Depth() < 0 {
		// More closers than openers; validation discards the block.
		s.flush()
		return
	}
	if !s.depth.Balanced() {
		return
	}
	code := codePart(strings.TrimSpace(line))
	if strings.HasSuffix(code, ",") || strings.HasSuffix(code, "(") {
		return
	}
	if strings.HasSuffix(code, ")") || !strings.ContainsAny(code, "()") {
		s.flush()
	}
}

// flush closes the current block and keeps it when valid
func (s *segmenter) flush() {
	lines := s.lines
	s.lines = nil
	s.depth.Reset()
	if len(lines) == 0 || s.full() {
		return
	}
	code := unescape(dedent(lines))
	if validExample(code) {
		s.blocks = append(s.blocks, types.ExampleBlock{Code: code})
	}
}

// validExample rejects empty blocks, lone braces, leftover commands and
// blocks whose parens or strings do not close
func validExample(code string) bool {
	switch {
	case code == "", code == "{", code == "}":
		return false
	case strings.HasPrefix(code, `\`):
		return false
	}
	c := scan.NewCodeCounter(scan.Parens)
	for _, line := range strings.Split(code, "\n") {
		c.FeedLine(line)
	}
	return c.Balanced()
}

// codePart drops a trailing # comment that is not inside a string
func codePart(line string) string {
	c := scan.NewCodeCounter(scan.Parens)
	for i, r := range line {
		if r == '#' && !c.InString() {
			return strings.TrimSpace(line[:i])
		}
		c.Feed(r)
	}
	return line
}

// dedent removes the indentation common to all lines and trims the block
func dedent(lines []string) string {
	indent := -1
	for _, l := range lines {
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l[indent:]
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// unescape resolves the Rd escapes that are legal inside example code
func unescape(code string) string {
	return strings.NewReplacer(`\%`, `%`, `\{`, `{`, `\}`, `}`).Replace(code)
}
