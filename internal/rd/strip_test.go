package rd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "Adds two numbers.", "Adds two numbers."},
		{"keep content", `Adds \code{x} and \code{y}.`, "Adds x and y."},
		{"nested keep content", `\strong{very \emph{important}}`, "very important"},
		{"link with option", `see \link[stats]{median}`, "see median"},
		{"href two groups", `see \href{https://r-project.org}{the \emph{R} site}`, "see the R site"},
		{"url one group", `at \url{https://cran.r-project.org/}`, "at https://cran.r-project.org/"},
		{"class link", `an \linkS4class{Matrix} object`, "an Matrix object"},
		{"drop entirely", `text \seealso{\code{other}} more`, "text more"},
		{"inline title dropped", `a \title{X} b`, "a b"},
		{"item in description", `\describe{\item{a}{first} \item{b}{second}}`, "first second"},
		{"itemize recurses", `\itemize{\item one \item two}`, "one two"},
		{"dots", `passed to \code{\dots}`, "passed to ..."},
		{"ldots with braces", `x, \ldots{}`, "x, ..."},
		{"R literal", `an \R object`, "an R object"},
		{"cr and tab", `line\cr next\tab cell`, "line next cell"},
		{"verbatim braces", `\verb{a \code{b}}`, `a \code{b}`},
		{"verbatim pipes", `\verb|x{y}|`, "x{y}"},
		{"unknown with group recurses", `\strange{kept \code{x}}`, "kept x"},
		{"unknown without group emits name", `use \alone here`, "use alone here"},
		{"stray braces dropped", "a } b { c", "a b c"},
		{"escaped percent", `50\% done`, "50% done"},
		{"whitespace collapsed", "  a\n\n   b\t c  ", "a b c"},
		{"unterminated group keeps text", `\code{never closed`, "never closed"},
		{"skip wrapper", `\dontrun{foo(1)}`, "foo(1)"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strip(tt.in))
		})
	}
}

func TestStripIdempotent(t *testing.T) {
	inputs := []string{
		"plain   text\nwith lines",
		"{stray} braces } here {",
		`an \unknowncmd word`,
		`\unknown{content} and more`,
		"  leading and trailing  ",
	}

	for _, in := range inputs {
		once := Strip(in)
		assert.Equal(t, once, Strip(once), "input %q", in)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		class Class
	}{
		{"code", KeepContent},
		{"kbd", KeepContent},
		{"href", ExtractSecondOfTwoArgs},
		{"url", ExtractSecondOfTwoArgs},
		{"linkS4class", ExtractFirstArg},
		{"Rdversion", DropEntirely},
		{"item", ExtractNamedThenDescription},
		{"enumerate", RecurseContent},
		{"donteval", SkipWrapper},
		{"verb", Verbatim},
		{"ldots", LiteralSubstitute},
		{"eqn", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Classify(tt.name)
			assert.Equal(t, tt.class, cmd.Class, "got %s", cmd.Class)
			assert.Equal(t, tt.name, cmd.Name)
		})
	}

	assert.Equal(t, "...", Classify("dots").Text)
	assert.Equal(t, " ", Classify("cr").Text)
}

func BenchmarkStrip(b *testing.B) {
	s := `A \link[base]{numeric} vector, see \href{https://x.org}{docs}. Passed to \code{\dots}.`
	for i := 0; i < b.N; i++ {
		Strip(s)
	}
}
