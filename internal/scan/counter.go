package scan

// Pair is an open/close delimiter pair
type Pair struct {
	Open  rune
	Close rune
}

var (
	Braces   = Pair{Open: '{', Close: '}'}
	Parens   = Pair{Open: '(', Close: ')'}
	Brackets = Pair{Open: '[', Close: ']'}
)

// Counter tracks the nesting depth of one delimiter pair
type Counter struct {
	pair  Pair
	depth int

	// Code mode only
	code      bool
	quote     rune // active string quote, 0 when outside a string
	escaped   bool
	inComment bool
}

// NewCounter returns a counter that counts every delimiter it sees
func NewCounter(p Pair) *Counter {
	return &Counter{pair: p}
}

// NewCodeCounter returns a counter that ignores delimiters inside R string
// literals and # comments
func NewCodeCounter(p Pair) *Counter {
	return &Counter{pair: p, code: true}
}

// Depth returns the current nesting depth
func (c *Counter) Depth() int {
	return c.depth
}

// InString reports whether a string literal is open
func (c *Counter) InString() bool {
	return c.quote != 0
}

// Balanced reports depth zero with no open string
func (c *Counter) Balanced() bool {
	return c.depth == 0 && c.quote == 0
}

// Set overrides the depth, e.g. after the caller consumed an opener
func (c *Counter) Set(depth int) {
	c.depth = depth
}

// Reset clears all state
func (c *Counter) Reset() {
	c.depth = 0
	c.quote = 0
	c.escaped = false
	c.inComment = false
}

// EndLine terminates an open comment
func (c *Counter) EndLine() {
	c.inComment = false
	c.escaped = false
}

// Feed consumes one rune and reports whether it closed the outermost group,
// that is, moved the depth from positive to zero or below.
func (c *Counter) Feed(r rune) bool {
	if c.code {
		if r == '\n' {
			c.inComment = false
			c.escaped = false
			return false
		}
		if c.inComment {
			return false
		}
		if c.quote != 0 {
			switch {
			case c.escaped:
				c.escaped = false
			case r == '\\':
				c.escaped = true
			case r == c.quote:
				c.quote = 0
			}
			return false
		}
		switch r {
		case '"', '\'':
			c.quote = r
			return false
		case '#':
			c.inComment = true
			return false
		}
	}

	switch r {
	case c.pair.Open:
		c.depth++
	case c.pair.Close:
		c.depth--
		return c.depth == 0
	}
	return false
}

// Scan feeds s until the outermost group closes. It returns the byte index
// of the closing delimiter, or -1 when s was consumed without closing.
func (c *Counter) Scan(s string) int {
	for i, r := range s {
		if c.Feed(r) {
			return i
		}
	}
	return -1
}

// FeedLine feeds a whole line and ends it, returning the resulting depth
func (c *Counter) FeedLine(line string) int {
	for _, r := range line {
		c.Feed(r)
	}
	c.EndLine()
	return c.depth
}

// Delta returns the net depth change of s: opens minus closes
func Delta(p Pair, s string) int {
	d := 0
	for _, r := range s {
		switch r {
		case p.Open:
			d++
		case p.Close:
			d--
		}
	}
	return d
}

// Group returns the content of the balanced group whose opener is at s[i],
// and the index just past its closer. ok is false when s[i] is not the
// opener or the group never closes.
func Group(s string, i int, p Pair) (inner string, next int, ok bool) {
	if i >= len(s) || rune(s[i]) != p.Open {
		return "", i, false
	}
	c := NewCounter(p)
	c.Set(1)
	end := c.Scan(s[i+1:])
	if end < 0 {
		return "", i, false
	}
	end += i + 1
	return s[i+1 : end], end + 1, true
}
