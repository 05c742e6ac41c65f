package rd

import (
	"strings"

	"github.com/b-rodrigues/pkgctx/internal/scan"
)

// stripper holds the state of one rewrite over a single text
type stripper struct {
	src string
	pos int
	out *strings.Builder
}

// Strip rewrites Rd markup to plain text. Commands are resolved through the
// command table, stray braces are dropped and whitespace runs collapse to a
// single space.
func Strip(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	stripInto(&b, text)
	return collapseSpace(b.String())
}

func stripInto(out *strings.Builder, text string) {
	s := &stripper{src: text, out: out}
	s.run()
}

func (s *stripper) run() {
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; c {
		case '\\':
			s.command()
		case '{', '}':
			s.pos++
		default:
			s.out.WriteByte(c)
			s.pos++
		}
	}
}

func (s *stripper) peek() byte {
	if s.pos < len(s.src) {
		return s.src[s.pos]
	}
	return 0
}

// command handles the markup starting at a backslash
func (s *stripper) command() {
	s.pos++
	name := s.readName()
	if name == "" {
		s.escaped()
		return
	}

	cmd := Classify(name)
	switch cmd.Class {
	case LiteralSubstitute:
		s.out.WriteString(cmd.Text)

	case Verbatim:
		s.verbatim()

	case KeepContent, RecurseContent, SkipWrapper, ExtractFirstArg:
		s.skipOption()
		if inner, ok := s.group(); ok {
			stripInto(s.out, inner)
		}

	case ExtractSecondOfTwoArgs:
		first, ok := s.group()
		if !ok {
			return
		}
		if s.peek() == '{' {
			if second, ok := s.group(); ok {
				stripInto(s.out, second)
			}
			return
		}
		s.out.WriteString(first)

	case ExtractNamedThenDescription:
		if _, ok := s.group(); !ok {
			return
		}
		if second, ok := s.group(); ok {
			stripInto(s.out, second)
		}

	case DropEntirely:
		s.skipOption()
		s.group()

	default:
		if s.peek() == '{' {
			if inner, ok := s.group(); ok {
				stripInto(s.out, inner)
			}
			return
		}
		s.out.WriteString(name)
	}
}

// readName reads a command name: a letter followed by letters or digits
func (s *stripper) readName() string {
	start := s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if isLetter(c) || (s.pos > start && c >= '0' && c <= '9') {
			s.pos++
			continue
		}
		break
	}
	return s.src[start:s.pos]
}

// escaped emits a backslash escaped character such as \% or \&
func (s *stripper) escaped() {
	if s.pos >= len(s.src) {
		return
	}
	c := s.src[s.pos]
	s.pos++
	switch c {
	case '{', '}', '\\':
	default:
		s.out.WriteByte(c)
	}
}

// group consumes a brace group at the current position. An unterminated
// group is left in place so the loop drops its brace and keeps the text.
func (s *stripper) group() (string, bool) {
	inner, next, ok := scan.Group(s.src, s.pos, scan.Braces)
	if !ok {
		return "", false
	}
	s.pos = next
	return inner, true
}

// skipOption consumes an optional [..] argument, as in \link[pkg]{topic}
func (s *stripper) skipOption() {
	if _, next, ok := scan.Group(s.src, s.pos, scan.Brackets); ok {
		s.pos = next
	}
}

// verbatim emits a \verb body unchanged; the body is brace or pipe delimited
func (s *stripper) verbatim() {
	switch s.peek() {
	case '{':
		if inner, ok := s.group(); ok {
			s.out.WriteString(inner)
		}
	case '|':
		end := strings.IndexByte(s.src[s.pos+1:], '|')
		if end < 0 {
			s.pos++
			return
		}
		s.out.WriteString(s.src[s.pos+1 : s.pos+1+end])
		s.pos += end + 2
	}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
