// Package rsource finds function definitions in R source files without
// parsing R.
//
// The scanner is line oriented. A line defines a function when it contains
// one of the assignment spellings `<- function(`, `= function(`,
// `<-function(` or `=function(` and the text before it is a single name.
// The parameter list is accumulated across following lines until the paren
// count returns to zero:
//
//	sigs := rsource.ScanSignatures("foo <- function(x,\n  y = 1) {", nil, false)
//	// sigs[0].Name == "foo", sigs[0].Params == "x, y = 1"
//
// Counting is naive: a string literal holding an unbalanced paren ends or
// extends the list at the wrong place. Full-line # comments are skipped.
//
// Every definition is kept, including repeated names. Order follows the
// input; across files it follows the order the caller scans them in.
package rsource
