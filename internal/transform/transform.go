// Package transform post-processes extracted records for token efficient
// output.
package transform

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/b-rodrigues/pkgctx/pkg/types"
)

const (
	// MaxUnbroken is the byte length beyond which text without a sentence
	// boundary is cut at a word boundary
	MaxUnbroken = 100

	// MinCommonOccurrences is how many functions must share an argument
	// before it is hoisted
	MinCommonOccurrences = 3
)

// Compact shortens descriptions to their first sentence and drops examples,
// constraints and related names. Records are modified in place.
func Compact(records []types.Record) []types.Record {
	for _, r := range records {
		switch r.Kind {
		case types.KindPackage:
			if r.Package != nil {
				r.Package.Description = FirstSentence(r.Package.Description)
			}
		case types.KindFunction:
			if r.Function != nil {
				compactFunction(r.Function)
			}
		case types.KindClass:
			if r.Class != nil {
				for k, v := range r.Class.Methods {
					r.Class.Methods[k] = FirstSentence(v)
				}
			}
		}
	}
	return records
}

func compactFunction(f *types.FunctionRecord) {
	f.Purpose = FirstSentence(f.Purpose)
	f.Returns = FirstSentence(f.Returns)
	for k, v := range f.Arguments {
		f.Arguments[k] = FirstSentence(v)
	}
	f.Examples = nil
	f.Constraints = nil
	f.Related = nil
}

// FirstSentence returns s up to its first sentence terminator. A terminator
// is '.', '!' or '?' at the end of s or followed by whitespace or an upper
// case letter. Without one, text longer than MaxUnbroken is cut at the last
// space before the limit and marked with "...".
func FirstSentence(s string) string {
	for i, r := range s {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next >= len(s) {
			return s
		}
		if n, _ := utf8.DecodeRuneInString(s[next:]); unicode.IsSpace(n) || unicode.IsUpper(n) {
			return s[:next]
		}
	}

	if len(s) <= MaxUnbroken {
		return s
	}
	cut := s[:MaxUnbroken]
	if pos := strings.LastIndexByte(cut, ' '); pos >= 0 {
		cut = cut[:pos]
	} else {
		// Keep the cut on a rune boundary.
		for len(cut) > 0 && !utf8.ValidString(cut) {
			cut = cut[:len(cut)-1]
		}
	}
	return cut + "..."
}

// HoistCommonArgs moves arguments shared by at least MinCommonOccurrences
// functions to the package record's CommonArguments. Each function keeps the
// argument with CommonArgumentRef as its description. The first non-empty
// description in record order wins. Without a package record nothing changes.
func HoistCommonArgs(records []types.Record) []types.Record {
	pkg := types.Packages(records)
	if pkg == nil {
		return records
	}

	counts := make(map[string]int)
	descriptions := make(map[string]string)
	for _, fn := range types.Functions(records) {
		for name, desc := range fn.Arguments {
			counts[name]++
			if _, ok := descriptions[name]; !ok && desc != "" {
				descriptions[name] = desc
			}
		}
	}

	common := make(map[string]string)
	for name, n := range counts {
		if desc, ok := descriptions[name]; ok && n >= MinCommonOccurrences {
			common[name] = desc
		}
	}
	if len(common) == 0 {
		return records
	}

	pkg.CommonArguments = common
	for _, fn := range types.Functions(records) {
		for name := range common {
			if _, ok := fn.Arguments[name]; ok {
				fn.Arguments[name] = types.CommonArgumentRef
			}
		}
	}
	return records
}
