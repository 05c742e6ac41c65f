package types

import (
	"errors"
	"fmt"
)

// SchemaVersion is the version of the record schema emitted by pkgctx
const SchemaVersion = "1.1"

// RecordKind tags the variant carried by a Record
type RecordKind string

const (
	KindPackage  RecordKind = "package"
	KindFunction RecordKind = "function"
	KindClass    RecordKind = "class"
	KindWorkflow RecordKind = "workflow"
)

// CommonArgumentRef replaces a hoisted argument description on a function
const CommonArgumentRef = "(see common_arguments)"

// Record is one self-describing entry of the output stream
type Record struct {
	Kind     RecordKind
	Package  *PackageRecord
	Function *FunctionRecord
	Class    *ClassRecord
	Workflow *WorkflowRecord
}

// PackageRecord carries package level metadata
type PackageRecord struct {
	SchemaVersion   string            `json:"schema_version" yaml:"schema_version"`
	Name            string            `json:"name" yaml:"name"`
	Version         string            `json:"version" yaml:"version"`
	Language        string            `json:"language" yaml:"language"`
	Description     string            `json:"description,omitempty" yaml:"description,omitempty"`
	LLMHints        []string          `json:"llm_hints,omitempty" yaml:"llm_hints,omitempty"`
	CommonArguments map[string]string `json:"common_arguments,omitempty" yaml:"common_arguments,omitempty"`
}

// FunctionRecord describes one function of the package API
type FunctionRecord struct {
	Name        string            `json:"name" yaml:"name"`
	Exported    bool              `json:"exported" yaml:"exported"`
	Signature   string            `json:"signature" yaml:"signature"`
	Purpose     string            `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	Role        string            `json:"role,omitempty" yaml:"role,omitempty"`
	Arguments   map[string]string `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	ArgTypes    map[string]string `json:"arg_types,omitempty" yaml:"arg_types,omitempty"`
	Returns     string            `json:"returns,omitempty" yaml:"returns,omitempty"`
	ReturnType  string            `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	Constraints []string          `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Examples    []Example         `json:"examples,omitempty" yaml:"examples,omitempty"`
	Related     []string          `json:"related,omitempty" yaml:"related,omitempty"`
}

// Example is a code example with optional annotations
type Example struct {
	Code  string   `json:"code" yaml:"code"`
	Shows []string `json:"shows,omitempty" yaml:"shows,omitempty"`
}

// ClassRecord describes an object class
type ClassRecord struct {
	Name          string            `json:"name" yaml:"name"`
	ConstructedBy []string          `json:"constructed_by,omitempty" yaml:"constructed_by,omitempty"`
	Methods       map[string]string `json:"methods,omitempty" yaml:"methods,omitempty"`
}

// WorkflowRecord shows a canonical usage pattern
type WorkflowRecord struct {
	Name    string   `json:"name" yaml:"name"`
	Steps   []string `json:"steps" yaml:"steps"`
	Purpose string   `json:"purpose,omitempty" yaml:"purpose,omitempty"`
}

// NewPackageRecord wraps a package record
func NewPackageRecord(p *PackageRecord) Record {
	return Record{Kind: KindPackage, Package: p}
}

// NewFunctionRecord wraps a function record
func NewFunctionRecord(f *FunctionRecord) Record {
	return Record{Kind: KindFunction, Function: f}
}

// Name returns the name of the carried variant
func (r Record) Name() string {
	switch r.Kind {
	case KindPackage:
		if r.Package != nil {
			return r.Package.Name
		}
	case KindFunction:
		if r.Function != nil {
			return r.Function.Name
		}
	case KindClass:
		if r.Class != nil {
			return r.Class.Name
		}
	case KindWorkflow:
		if r.Workflow != nil {
			return r.Workflow.Name
		}
	}
	return ""
}

// Validate checks that the record carries exactly the variant named by Kind
func (r Record) Validate() error {
	set := 0
	for _, present := range []bool{r.Package != nil, r.Function != nil, r.Class != nil, r.Workflow != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return ErrInvalidRecord
	}

	switch r.Kind {
	case KindPackage:
		if r.Package == nil {
			return ErrInvalidRecord
		}
		return r.Package.Validate()
	case KindFunction:
		if r.Function == nil {
			return ErrInvalidRecord
		}
		return r.Function.Validate()
	case KindClass:
		if r.Class == nil {
			return ErrInvalidRecord
		}
	case KindWorkflow:
		if r.Workflow == nil {
			return ErrInvalidRecord
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRecord, r.Kind)
	}

	if r.Name() == "" {
		return ErrMissingName
	}
	return nil
}

// Validate checks required package fields
func (p *PackageRecord) Validate() error {
	if p.Name == "" {
		return ErrMissingName
	}
	if p.SchemaVersion == "" {
		return errors.New("schema version is required")
	}
	return nil
}

// Validate checks required function fields
func (f *FunctionRecord) Validate() error {
	if f.Name == "" {
		return ErrMissingName
	}
	if f.Signature == "" {
		return ErrMissingSignature
	}
	return nil
}

// Packages returns the package record of a stream, if any
func Packages(records []Record) *PackageRecord {
	for _, r := range records {
		if r.Kind == KindPackage && r.Package != nil {
			return r.Package
		}
	}
	return nil
}

// Functions returns the function records of a stream in order
func Functions(records []Record) []*FunctionRecord {
	var out []*FunctionRecord
	for _, r := range records {
		if r.Kind == KindFunction && r.Function != nil {
			out = append(out, r.Function)
		}
	}
	return out
}
