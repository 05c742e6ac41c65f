package types

// SectionName identifies a top-level Rd section
type SectionName string

const (
	SectionTitle       SectionName = "title"
	SectionDescription SectionName = "description"
	SectionValue       SectionName = "value"
	SectionArguments   SectionName = "arguments"
	SectionExamples    SectionName = "examples"
	SectionUsage       SectionName = "usage"
	SectionDetails     SectionName = "details"
)

// SectionNames lists every recognized section in opener match order
var SectionNames = []SectionName{
	SectionTitle,
	SectionDescription,
	SectionValue,
	SectionArguments,
	SectionExamples,
	SectionUsage,
	SectionDetails,
}

// Opener returns the markup that starts the section, e.g. `\title{`
func (n SectionName) Opener() string {
	return `\` + string(n) + "{"
}

// Section is the raw, unstripped content of one finalized section
type Section struct {
	Name    SectionName
	Content string
	Line    int // 1-based line of the opener
}

// Argument is one documented argument of a function
type Argument struct {
	Name        string
	Description string
}

// ExampleBlock is one self-contained runnable example snippet
type ExampleBlock struct {
	Code string
}

// RdDoc is the structured documentation recovered from one Rd unit
type RdDoc struct {
	// Identification
	Name    string   // \name{} or the file stem
	Aliases []string // \alias{} entries

	// Stripped section text
	Title       string
	Description string
	Value       string
	Usage       string
	Details     string

	Arguments []Argument
	Examples  []ExampleBlock

	// Fragments dropped while parsing
	Warnings []ParseWarning
}

// Argument returns the description documented for name
func (d *RdDoc) Argument(name string) (string, bool) {
	for _, a := range d.Arguments {
		if a.Name == name {
			return a.Description, true
		}
	}
	return "", false
}

// AddWarning records a non-fatal parse warning
func (d *RdDoc) AddWarning(kind WarningKind, line int, msg string) {
	d.Warnings = append(d.Warnings, ParseWarning{
		File:    d.Name,
		Line:    line,
		Kind:    kind,
		Message: msg,
	})
}
