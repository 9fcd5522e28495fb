package spec

import (
	"errors"
	"fmt"

	"github.com/blimu-dev/typegen/pkg/naming"
	"github.com/blimu-dev/typegen/pkg/schema"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingVersion = errors.New("document has no openapi version")
	ErrEmptyDocument  = errors.New("document has neither paths nor component schemas")
)

// Decode parses a JSON or YAML OpenAPI document.
func Decode(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	var doc Document
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if doc.OpenAPI == "" {
		return nil, ErrMissingVersion
	}
	if len(doc.Paths) == 0 && len(doc.Components.Schemas) == 0 {
		return nil, ErrEmptyDocument
	}
	return &doc, nil
}

func (p *Paths) UnmarshalYAML(value *yaml.Node) error {
	return eachEntry(value, "paths", func(key string, v *yaml.Node) error {
		item := &PathItem{}
		if err := v.Decode(item); err != nil {
			return fmt.Errorf("path %s: %w", key, err)
		}
		*p = append(*p, PathEntry{Route: key, Item: item})
		return nil
	})
}

func (r *Responses) UnmarshalYAML(value *yaml.Node) error {
	return eachEntry(value, "responses", func(key string, v *yaml.Node) error {
		resp := &Response{}
		if err := v.Decode(resp); err != nil {
			return fmt.Errorf("response %s: %w", key, err)
		}
		*r = append(*r, ResponseEntry{Code: key, Response: resp})
		return nil
	})
}

func (n *NamedSchemas) UnmarshalYAML(value *yaml.Node) error {
	return eachEntry(value, "schemas", func(key string, v *yaml.Node) error {
		*n = append(*n, NamedSchema{Name: key, Schema: schema.NewNode(v)})
		return nil
	})
}

func eachEntry(value *yaml.Node, what string, fn func(key string, v *yaml.Node) error) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("%s: expected a mapping, got %s", what, kindName(value.Kind))
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		if err := fn(value.Content[i].Value, value.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

// Parameter follows a local $ref through components.parameters.
func (d *Document) Parameter(p *Parameter) (*Parameter, error) {
	if p == nil || p.Ref == "" {
		return p, nil
	}
	name := naming.ResolveRef(p.Ref)
	if target, ok := d.Components.Parameters[name]; ok && target != nil {
		return target, nil
	}
	return nil, fmt.Errorf("unresolved parameter reference %s", p.Ref)
}

// Response follows a local $ref through components.responses.
func (d *Document) Response(r *Response) (*Response, error) {
	if r == nil || r.Ref == "" {
		return r, nil
	}
	name := naming.ResolveRef(r.Ref)
	if target, ok := d.Components.Responses[name]; ok && target != nil {
		return target, nil
	}
	return nil, fmt.Errorf("unresolved response reference %s", r.Ref)
}

// RequestBody follows a local $ref through components.requestBodies.
func (d *Document) RequestBody(b *RequestBody) (*RequestBody, error) {
	if b == nil || b.Ref == "" {
		return b, nil
	}
	name := naming.ResolveRef(b.Ref)
	if target, ok := d.Components.RequestBodies[name]; ok && target != nil {
		return target, nil
	}
	return nil, fmt.Errorf("unresolved request body reference %s", b.Ref)
}

// TagNames returns the declared tags in order. When the document declares
// none, the tags used by operations are collected in first-seen order.
func (d *Document) TagNames() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, t := range d.Tags {
		add(t.Name)
	}
	if len(names) > 0 {
		return names
	}
	for _, entry := range d.Paths {
		for _, mo := range entry.Item.Operations() {
			for _, t := range mo.Operation.Tags {
				add(t)
			}
		}
	}
	return names
}

// TagDescription returns the description of a declared tag.
func (d *Document) TagDescription(name string) string {
	for _, t := range d.Tags {
		if t.Name == name {
			return t.Description
		}
	}
	return ""
}
