// Package rd recovers structured documentation from Rd markup.
//
// Rd files are not parsed against a grammar. Each stage tracks brace depth by
// hand through the shared scan.Counter and produces the best result the text
// allows: a section that never closes is dropped, a malformed \item is
// skipped, an unknown command degrades to its content. Nothing in this
// package returns an error for malformed markup.
//
// # Basic Usage
//
//	p := rd.New()
//	doc, err := p.ParseFile("man/sum2.Rd")
//	if err != nil {
//	    log.Fatal(err) // the file could not be read
//	}
//
//	fmt.Println(doc.Title)
//	for _, arg := range doc.Arguments {
//	    fmt.Printf("%s: %s\n", arg.Name, arg.Description)
//	}
//
// # Stages
//
// A unit flows through four stages:
//   - ExtractSections splits the unit into the \title, \description, \value,
//     \arguments, \examples, \usage and \details sections. The first finalized
//     occurrence of a name wins.
//   - ParseArguments reads \item{name}{description} pairs from the arguments
//     body.
//   - Strip rewrites inline commands to plain text using the fixed command
//     table (see Classify).
//   - RemoveWrappers and SegmentExamples unwrap \dontrun style wrappers and
//     split example code into at most MaxExamples runnable blocks.
//
// # Inline Commands
//
// Every known command belongs to one Class. A command that is not in the
// table recurses into its content when a brace group follows it and is
// emitted as its bare name otherwise:
//
//	rd.Strip(`Adds \code{x} and \code{y}.`)      // "Adds x and y."
//	rd.Strip(`See \href{https://x.org}{the site}`) // "See the site"
//	rd.Strip(`\strange{kept} \alone`)             // "kept alone"
//
// Stray braces are dropped and whitespace is collapsed, so Strip is stable
// under repetition on text without commands.
//
// # Warnings
//
// Dropped sections and abandoned items are listed in RdDoc.Warnings with
// their line so callers can log them. Invalid example blocks are excluded
// silently.
package rd
