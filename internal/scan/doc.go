// Package scan provides the delimiter depth counter shared by the Rd and R
// source parsers.
//
// A Counter tracks the nesting of one delimiter pair while text is fed to it
// one rune, one string, or one line at a time. It has no knowledge of the
// language being scanned: an unescaped delimiter always moves the depth, so
// braces inside Rd verbatim text or parens inside R comments are counted.
//
// # Plain Counting
//
//	c := scan.NewCounter(scan.Braces)
//	c.Set(1) // an opener was already consumed
//	if i := c.Scan(`Sum \code{x}} trailing`); i >= 0 {
//	    content := text[:i] // "Sum \code{x}"
//	}
//
// Delta is the stateless form used when only the net change of a fragment
// matters.
//
// # Code Counting
//
// NewCodeCounter additionally tracks R string literals and comments, so
// parens inside "strings" or after # do not move the depth. A backslash
// escaped quote does not end a string. Comment state ends at a newline or
// an explicit EndLine call:
//
//	c := scan.NewCodeCounter(scan.Parens)
//	c.FeedLine(`plot(x, main = "a (b")`)
//	c.Depth()    // 0
//	c.InString() // false
//
// # Groups
//
// Group extracts the content of a balanced group starting at an opener:
//
//	inner, next, ok := scan.Group(`\code{a{b}c} rest`, 5, scan.Braces)
//	// inner == "a{b}c", next == 12, ok == true
package scan
