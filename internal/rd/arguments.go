package rd

import (
	"fmt"
	"strings"

	"github.com/b-rodrigues/pkgctx/internal/scan"
	"github.com/b-rodrigues/pkgctx/pkg/types"
)

const itemMarker = `\item`

// argState is the state of the argument list scanner
type argState int

const (
	stateIdle argState = iota
	stateSeenItemOpen
	stateCollectingName
	stateCollectingDescription
)

// argParser scans one \arguments section body
type argParser struct {
	src   string
	state argState
	depth *scan.Counter

	itemStart int // offset of the \item being collected
	name      strings.Builder
	desc      strings.Builder
	descOpen  bool

	args     []types.Argument
	index    map[string]int
	warnings []types.ParseWarning
}

// ParseArguments returns the (name, description) pairs of an \arguments
// section body in first-seen order. Descriptions are stripped of markup.
// A repeated name keeps its first position and takes the later description.
func ParseArguments(section string) []types.Argument {
	args, _ := parseArguments(section)
	return args
}

func parseArguments(section string) ([]types.Argument, []types.ParseWarning) {
	p := &argParser{
		src:   section,
		depth: scan.NewCounter(scan.Braces),
		index: make(map[string]int),
	}
	p.run()
	return p.args, p.warnings
}

func (p *argParser) run() {
	i := 0
	for i < len(p.src) {
		c := p.src[i]
		switch p.state {
		case stateIdle:
			if p.atItem(i) {
				p.itemStart = i
				p.state = stateSeenItemOpen
				i += len(itemMarker)
				continue
			}

		case stateSeenItemOpen:
			switch {
			case isSpace(c):
			case c == '{':
				p.name.Reset()
				p.desc.Reset()
				p.descOpen = false
				p.depth.Reset()
				p.depth.Set(1)
				p.state = stateCollectingName
			default:
				p.abandon("item without a name")
				continue
			}

		case stateCollectingName:
			if p.depth.Feed(rune(c)) {
				p.depth.Reset()
				p.state = stateCollectingDescription
			} else {
				p.name.WriteByte(c)
			}

		case stateCollectingDescription:
			if !p.descOpen {
				switch {
				case isSpace(c):
				case c == '{':
					p.descOpen = true
					p.depth.Set(1)
				default:
					p.abandon(fmt.Sprintf("item %q without a description", strings.TrimSpace(p.name.String())))
					continue
				}
				break
			}
			if p.depth.Feed(rune(c)) {
				p.finish()
			} else {
				p.desc.WriteByte(c)
			}
		}
		i++
	}

	if p.state != stateIdle {
		// Unterminated item: resume the scan just past its marker so the
		// items it swallowed are still found.
		resume := p.itemStart + len(itemMarker)
		p.abandon("unterminated item")
		p.src = p.src[resume:]
		p.run()
	}
}

// atItem reports an \item marker at offset i that is not a longer command
// such as \itemize
func (p *argParser) atItem(i int) bool {
	if !strings.HasPrefix(p.src[i:], itemMarker) {
		return false
	}
	next := i + len(itemMarker)
	return next >= len(p.src) || !isLetter(p.src[next])
}

// finish inserts the collected item, overwriting a previous one of the same name
func (p *argParser) finish() {
	p.state = stateIdle
	name := strings.TrimSpace(p.name.String())
	if name == "" {
		p.warn("item with an empty name")
		return
	}
	arg := types.Argument{Name: name, Description: Strip(p.desc.String())}
	if pos, ok := p.index[name]; ok {
		p.args[pos] = arg
		return
	}
	p.index[name] = len(p.args)
	p.args = append(p.args, arg)
}

// abandon drops the current item and returns to idle
func (p *argParser) abandon(msg string) {
	p.state = stateIdle
	p.warn(msg)
}

func (p *argParser) warn(msg string) {
	p.warnings = append(p.warnings, types.ParseWarning{
		Kind:    types.WarnMalformedItem,
		Message: msg,
	})
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
