// Package manifest reads the DESCRIPTION and NAMESPACE files of an R package.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/b-rodrigues/pkgctx/pkg/types"
)

const (
	DescriptionFile = "DESCRIPTION"
	NamespaceFile   = "NAMESPACE"
)

// Description holds the DESCRIPTION fields pkgctx uses
type Description struct {
	Package     string
	Version     string
	Title       string
	Description string
}

// Summary returns the title, falling back to the description
func (d Description) Summary() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Description
}

// ParseDescription reads the Package, Version, Title and Description fields.
// Description continuation lines start with a space or tab.
func ParseDescription(text string) Description {
	var d Description
	var desc []string
	inDescription := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if inDescription {
			if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
				desc = append(desc, strings.TrimSpace(line))
				continue
			}
			inDescription = false
		}

		switch {
		case strings.HasPrefix(line, "Package:"):
			d.Package = field(line, "Package:")
		case strings.HasPrefix(line, "Version:"):
			d.Version = field(line, "Version:")
		case strings.HasPrefix(line, "Title:"):
			d.Title = field(line, "Title:")
		case strings.HasPrefix(line, "Description:"):
			desc = append(desc, field(line, "Description:"))
			inDescription = true
		}
	}

	d.Description = collapse(strings.Join(desc, " "))
	return d
}

// ReadDescription parses root/DESCRIPTION
func ReadDescription(root string) (Description, error) {
	content, err := os.ReadFile(filepath.Join(root, DescriptionFile))
	if err != nil {
		return Description{}, fmt.Errorf("failed to read DESCRIPTION: %w", err)
	}
	return ParseDescription(string(content)), nil
}

// ParseNamespace collects the names listed in export(...) directives. Other
// directives, such as exportPattern or S3method, are ignored.
func ParseNamespace(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "export(") || !strings.HasSuffix(line, ")") {
			continue
		}
		inner := line[len("export(") : len(line)-1]
		for _, name := range strings.Split(inner, ",") {
			name = strings.Trim(strings.TrimSpace(name), "\"`")
			if name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// ReadNamespace returns the export set of root/NAMESPACE. A missing file
// yields an empty set, which exports everything.
func ReadNamespace(root string) (types.ExportSet, error) {
	content, err := os.ReadFile(filepath.Join(root, NamespaceFile))
	if errors.Is(err, fs.ErrNotExist) {
		return types.ExportSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read NAMESPACE: %w", err)
	}
	return types.NewExportSet(ParseNamespace(string(content))...), nil
}

func field(line, key string) string {
	return collapse(strings.TrimPrefix(line, key))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
