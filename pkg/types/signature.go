package types

import "strings"

// SignatureRecord is a function definition located in R source
type SignatureRecord struct {
	Name     string
	Exported bool
	Params   string // parameter list without the enclosing parens
	File     string
	Line     int // 1-based line of the assignment
}

// Signature renders the record as name(params)
func (s SignatureRecord) Signature() string {
	return s.Name + "(" + s.Params + ")"
}

// ParamNames returns the parameter names in declaration order.
// Defaults are dropped; splitting respects nested parens and brackets.
func (s SignatureRecord) ParamNames() []string {
	var names []string
	depth := 0
	start := 0
	var quote rune
	emit := func(part string) {
		if i := strings.Index(part, "="); i >= 0 {
			part = part[:i]
		}
		part = strings.TrimSpace(part)
		if part != "" {
			names = append(names, part)
		}
	}
	for i, r := range s.Params {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			depth--
		case r == ',' && depth == 0:
			emit(s.Params[start:i])
			start = i + 1
		}
	}
	emit(s.Params[start:])
	return names
}

// ExportSet is the set of names a package makes public
type ExportSet map[string]struct{}

// NewExportSet builds an export set from names
func NewExportSet(names ...string) ExportSet {
	set := make(ExportSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Exported reports whether name is public. An empty set exports everything.
func (s ExportSet) Exported(name string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[name]
	return ok
}
