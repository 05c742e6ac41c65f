package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SourceKind identifies where a package comes from
type SourceKind string

const (
	SourceLocal  SourceKind = "local"
	SourceGitHub SourceKind = "github"
	SourceCRAN   SourceKind = "cran"
)

// DefaultGitHubRef is used when a github: specifier names no ref
const DefaultGitHubRef = "HEAD"

// Source is a parsed package specifier
type Source struct {
	Kind SourceKind
	Spec string // the specifier as given

	Path  string // local: absolute directory
	Owner string // github
	Repo  string // github
	Ref   string // github
	Name  string // cran
}

// String renders the canonical specifier
func (s Source) String() string {
	switch s.Kind {
	case SourceLocal:
		return "local:" + s.Path
	case SourceGitHub:
		return fmt.Sprintf("github:%s/%s@%s", s.Owner, s.Repo, s.Ref)
	default:
		return s.Name
	}
}

// ParseSource parses a package specifier:
//   - ".", "./pkg", "/abs/pkg", "~/pkg" or "local:path" for a local directory
//   - "github:owner/repo" or "github:owner/repo@ref"
//   - anything else is a CRAN package name
func ParseSource(spec string) (Source, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Source{}, fmt.Errorf("%w: empty specifier", ErrInvalidSource)
	}

	if isLocal(spec) {
		path, err := resolveLocal(strings.TrimPrefix(spec, "local:"))
		if err != nil {
			return Source{}, err
		}
		return Source{Kind: SourceLocal, Spec: spec, Path: path}, nil
	}

	if rest, ok := strings.CutPrefix(spec, "github:"); ok {
		repoPart, ref, hasRef := strings.Cut(rest, "@")
		if !hasRef || ref == "" {
			ref = DefaultGitHubRef
		}
		parts := strings.Split(repoPart, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return Source{}, fmt.Errorf("%w: expected 'github:owner/repo', got %q", ErrInvalidSource, spec)
		}
		return Source{Kind: SourceGitHub, Spec: spec, Owner: parts[0], Repo: parts[1], Ref: ref}, nil
	}

	if strings.ContainsAny(spec, " /\\:") {
		return Source{}, fmt.Errorf("%w: %q is not a CRAN package name", ErrInvalidSource, spec)
	}
	return Source{Kind: SourceCRAN, Spec: spec, Name: spec}, nil
}

func isLocal(spec string) bool {
	return strings.HasPrefix(spec, ".") ||
		strings.HasPrefix(spec, "/") ||
		strings.HasPrefix(spec, "~") ||
		strings.HasPrefix(spec, "local:")
}

func resolveLocal(path string) (string, error) {
	if rest, ok := strings.CutPrefix(path, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand home directory: %w", err)
		}
		path = home + rest
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: local path does not exist: %s", ErrInvalidSource, abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: local path is not a directory: %s", ErrInvalidSource, abs)
	}
	return abs, nil
}
