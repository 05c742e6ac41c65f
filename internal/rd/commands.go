package rd

// Class is the handling class of an inline markup command
type Class int

const (
	Unknown Class = iota
	KeepContent
	ExtractFirstArg
	ExtractSecondOfTwoArgs
	ExtractNamedThenDescription
	DropEntirely
	LiteralSubstitute
	RecurseContent
	SkipWrapper
	Verbatim
)

var classNames = map[Class]string{
	Unknown:                     "unknown",
	KeepContent:                 "keep_content",
	ExtractFirstArg:             "extract_first_arg",
	ExtractSecondOfTwoArgs:      "extract_second_of_two_args",
	ExtractNamedThenDescription: "extract_named_then_description",
	DropEntirely:                "drop_entirely",
	LiteralSubstitute:           "literal_substitute",
	RecurseContent:              "recurse_content",
	SkipWrapper:                 "skip_wrapper",
	Verbatim:                    "verbatim",
}

// String returns the class name
func (c Class) String() string {
	if s, ok := classNames[c]; ok {
		return s
	}
	return "unknown"
}

// Command is an inline markup command and how it is rewritten
type Command struct {
	Name  string
	Class Class
	Text  string // replacement for LiteralSubstitute
}

// commands is the fixed command table. Anything absent is Unknown.
var commands = buildCommands()

func buildCommands() map[string]Command {
	table := make(map[string]Command)
	add := func(class Class, names ...string) {
		for _, n := range names {
			table[n] = Command{Name: n, Class: class}
		}
	}

	add(KeepContent,
		"code", "link", "pkg", "emph", "strong", "bold", "sQuote", "dQuote",
		"file", "option", "var", "env", "command", "dfn", "cite", "acronym",
		"samp", "kbd")
	add(ExtractSecondOfTwoArgs, "href", "url")
	add(ExtractFirstArg, "linkS4class", "linkS3class")
	add(DropEntirely,
		"section", "subsection", "seealso", "author", "references", "source",
		"format", "note", "keyword", "concept", "alias", "name", "docType",
		"title", "encoding", "Rdversion")
	add(ExtractNamedThenDescription, "item")
	add(RecurseContent, "describe", "itemize", "enumerate")
	add(SkipWrapper, wrapperNames...)
	add(Verbatim, "verb")

	for name, text := range map[string]string{
		"dots":  "...",
		"ldots": "...",
		"R":     "R",
		"cr":    " ",
		"tab":   " ",
	} {
		table[name] = Command{Name: name, Class: LiteralSubstitute, Text: text}
	}
	return table
}

// wrapperNames are the example wrappers whose content is kept
var wrapperNames = []string{"dontrun", "donttest", "dontshow", "donteval"}

// Classify returns the command for name, with Class Unknown when the name is
// not in the table
func Classify(name string) Command {
	if cmd, ok := commands[name]; ok {
		return cmd
	}
	return Command{Name: name, Class: Unknown}
}
