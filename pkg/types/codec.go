package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// variant returns the value carried by the record
func (r Record) variant() (interface{}, error) {
	switch r.Kind {
	case KindPackage:
		if r.Package != nil {
			return r.Package, nil
		}
	case KindFunction:
		if r.Function != nil {
			return r.Function, nil
		}
	case KindClass:
		if r.Class != nil {
			return r.Class, nil
		}
	case KindWorkflow:
		if r.Workflow != nil {
			return r.Workflow, nil
		}
	}
	return nil, fmt.Errorf("%w: kind %q", ErrInvalidRecord, r.Kind)
}

// MarshalJSON flattens the variant and prefixes it with its kind
func (r Record) MarshalJSON() ([]byte, error) {
	v, err := r.variant()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"kind":`)
	kind, _ := json.Marshal(string(r.Kind))
	buf.Write(kind)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the kind tag and decodes the matching variant
func (r *Record) UnmarshalJSON(data []byte) error {
	var probe struct {
		Kind RecordKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	out := Record{Kind: probe.Kind}
	var target interface{}
	switch probe.Kind {
	case KindPackage:
		out.Package = &PackageRecord{}
		target = out.Package
	case KindFunction:
		out.Function = &FunctionRecord{}
		target = out.Function
	case KindClass:
		out.Class = &ClassRecord{}
		target = out.Class
	case KindWorkflow:
		out.Workflow = &WorkflowRecord{}
		target = out.Workflow
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidRecord, probe.Kind)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return err
	}
	*r = out
	return nil
}

// MarshalYAML emits the variant as a mapping whose first key is kind
func (r Record) MarshalYAML() (interface{}, error) {
	v, err := r.variant()
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return nil, err
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: variant did not encode as a mapping", ErrInvalidRecord)
	}

	kind := []*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: "kind"},
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(r.Kind)},
	}
	node.Content = append(kind, node.Content...)
	return &node, nil
}

// UnmarshalYAML reads the kind tag and decodes the matching variant
func (r *Record) UnmarshalYAML(value *yaml.Node) error {
	var probe struct {
		Kind RecordKind `yaml:"kind"`
	}
	if err := value.Decode(&probe); err != nil {
		return err
	}

	out := Record{Kind: probe.Kind}
	var err error
	switch probe.Kind {
	case KindPackage:
		out.Package = &PackageRecord{}
		err = value.Decode(out.Package)
	case KindFunction:
		out.Function = &FunctionRecord{}
		err = value.Decode(out.Function)
	case KindClass:
		out.Class = &ClassRecord{}
		err = value.Decode(out.Class)
	case KindWorkflow:
		out.Workflow = &WorkflowRecord{}
		err = value.Decode(out.Workflow)
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidRecord, probe.Kind)
	}
	if err != nil {
		return err
	}
	*r = out
	return nil
}
