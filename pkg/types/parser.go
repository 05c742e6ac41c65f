package types

import "fmt"

// WarningKind classifies a fragment a parser had to drop
type WarningKind string

const (
	WarnTruncatedSection  WarningKind = "truncated_section"
	WarnMalformedItem     WarningKind = "malformed_item"
	WarnRejectedSignature WarningKind = "rejected_signature"
	WarnUnreadableFile    WarningKind = "unreadable_file"
)

// ParseWarning describes input that was skipped without aborting the parse
type ParseWarning struct {
	File    string
	Line    int
	Kind    WarningKind
	Message string
}

// Error implements the error interface
func (pw *ParseWarning) Error() string {
	if pw.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", pw.File, pw.Line, pw.Message)
	}
	return pw.Message
}

// ScanResult is the output of scanning one R source file
type ScanResult struct {
	File       string
	Signatures []SignatureRecord
	Warnings   []ParseWarning
}

// HasWarnings returns true if any fragment was dropped
func (sr *ScanResult) HasWarnings() bool {
	return len(sr.Warnings) > 0
}

// AddWarning adds a scan warning to the result
func (sr *ScanResult) AddWarning(kind WarningKind, line int, msg string) {
	sr.Warnings = append(sr.Warnings, ParseWarning{
		File:    sr.File,
		Line:    line,
		Kind:    kind,
		Message: msg,
	})
}
