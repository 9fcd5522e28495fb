// Package schema classifies JSON-Schema-like fragments taken from an OpenAPI
// document into the closed set of shape categories the generator understands.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vendor extension keys recognised on schema nodes.
const (
	KeyEnumValues              = "x-enum-values"
	KeyEnumReference           = "x-enum-reference"
	KeyEnumIsBitmask           = "x-enum-is-bitmask"
	KeyDictionaryKey           = "x-dictionary-key"
	KeyMobileManifestName      = "x-mobile-manifest-name"
	KeyComponentTypeDependency = "x-destiny-component-type-dependency"
)

// Node is a read-only, order-preserving view over one schema fragment.
// The zero value represents an absent schema.
type Node struct {
	y *yaml.Node
}

// Property is a named entry of a schema's properties map.
type Property struct {
	Name   string
	Schema Node
}

// EnumValue is one entry of x-enum-values.
type EnumValue struct {
	NumericValue string
	Identifier   string
	Description  string
}

// NewNode wraps a yaml node, unwrapping documents and aliases.
func NewNode(y *yaml.Node) Node {
	return Node{y: resolve(y)}
}

// Parse decodes a JSON or YAML fragment into a Node.
func Parse(data []byte) (Node, error) {
	var y yaml.Node
	if err := yaml.Unmarshal(data, &y); err != nil {
		return Node{}, fmt.Errorf("failed to parse schema: %w", err)
	}
	return NewNode(&y), nil
}

// MustParse is like Parse but panics on malformed input. Intended for
// fixtures and tests.
func MustParse(s string) Node {
	n, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return n
}

// UnmarshalYAML lets a Node be embedded in structs decoded with yaml.v3.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	*n = NewNode(value)
	return nil
}

// IsZero reports whether the node is absent.
func (n Node) IsZero() bool {
	return n.y == nil || isNull(n.y)
}

// Has reports whether key is present with a non-null value.
func (n Node) Has(key string) bool {
	v := n.lookup(key)
	return v != nil && !isNull(v)
}

// Get returns the child node stored under key.
func (n Node) Get(key string) (Node, bool) {
	v := n.lookup(key)
	if v == nil || isNull(v) {
		return Node{}, false
	}
	return Node{y: v}, true
}

// Str returns the scalar value stored under key, or "".
func (n Node) Str(key string) string {
	v := n.lookup(key)
	if v == nil || v.Kind != yaml.ScalarNode || isNull(v) {
		return ""
	}
	return v.Value
}

// Bool returns true when key holds the boolean true.
func (n Node) Bool(key string) bool {
	v := n.lookup(key)
	return v != nil && v.Kind == yaml.ScalarNode && v.Value == "true"
}

// Type returns the declared type. For OAS 3.1 type arrays the first entry
// other than "null" wins; an array holding only "null" yields "null".
func (n Node) Type() string {
	v := n.lookup("type")
	if v == nil {
		return ""
	}
	switch v.Kind {
	case yaml.ScalarNode:
		if isNull(v) {
			return ""
		}
		return v.Value
	case yaml.SequenceNode:
		first := ""
		for _, c := range v.Content {
			c = resolve(c)
			if c.Kind != yaml.ScalarNode {
				continue
			}
			if first == "" {
				first = c.Value
			}
			if c.Value != "null" {
				return c.Value
			}
		}
		return first
	}
	return ""
}

// Ref returns the $ref URI, if any.
func (n Node) Ref() string { return n.Str("$ref") }

// Description returns the description keyword.
func (n Node) Description() string { return n.Str("description") }

// Format returns the format keyword.
func (n Node) Format() string { return n.Str("format") }

// Nullable reports nullable: true or a type array containing "null".
func (n Node) Nullable() bool {
	if n.Bool("nullable") {
		return true
	}
	v := n.lookup("type")
	if v == nil || v.Kind != yaml.SequenceNode {
		return false
	}
	for _, c := range v.Content {
		if c = resolve(c); c.Value == "null" {
			return true
		}
	}
	return false
}

// Properties returns the properties map in document order.
func (n Node) Properties() []Property {
	v := n.lookup("properties")
	if v == nil || v.Kind != yaml.MappingNode {
		return nil
	}
	props := make([]Property, 0, len(v.Content)/2)
	for i := 0; i+1 < len(v.Content); i += 2 {
		props = append(props, Property{Name: v.Content[i].Value, Schema: NewNode(v.Content[i+1])})
	}
	return props
}

// Items returns the items schema of an array.
func (n Node) Items() Node {
	item, _ := n.Get("items")
	return item
}

// AllOf returns the allOf entries in order.
func (n Node) AllOf() []Node {
	return n.sequence("allOf")
}

// AdditionalProperties returns the additionalProperties schema. Any non-null
// value counts as present, the boolean false included; see Forbidden.
func (n Node) AdditionalProperties() (Node, bool) {
	v := n.lookup("additionalProperties")
	if v == nil || isNull(v) {
		return Node{}, false
	}
	return Node{y: v}, true
}

// Forbidden reports whether the node is the boolean false, which as an
// additionalProperties value allows no extra keys.
func (n Node) Forbidden() bool {
	return n.y != nil && n.y.Kind == yaml.ScalarNode && n.y.Value == "false"
}

// Unconstrained reports whether the node accepts any value: the boolean
// true or an empty mapping.
func (n Node) Unconstrained() bool {
	if n.y == nil {
		return false
	}
	switch n.y.Kind {
	case yaml.ScalarNode:
		return n.y.Value == "true"
	case yaml.MappingNode:
		return len(n.y.Content) == 0
	}
	return false
}

// EnumValues returns x-enum-values in order.
func (n Node) EnumValues() []EnumValue {
	entries := n.sequence(KeyEnumValues)
	values := make([]EnumValue, 0, len(entries))
	for _, e := range entries {
		values = append(values, EnumValue{
			NumericValue: e.Str("numericValue"),
			Identifier:   e.Str("identifier"),
			Description:  e.Str("description"),
		})
	}
	return values
}

// EnumReference returns the x-enum-reference node.
func (n Node) EnumReference() (Node, bool) {
	return n.Get(KeyEnumReference)
}

// IsBitmask reports x-enum-is-bitmask.
func (n Node) IsBitmask() bool { return n.Bool(KeyEnumIsBitmask) }

// DictionaryKey returns the x-dictionary-key schema describing map keys.
func (n Node) DictionaryKey() (Node, bool) { return n.Get(KeyDictionaryKey) }

// ManifestName returns x-mobile-manifest-name.
func (n Node) ManifestName() string { return n.Str(KeyMobileManifestName) }

// ComponentTypeDependency returns x-destiny-component-type-dependency.
func (n Node) ComponentTypeDependency() string { return n.Str(KeyComponentTypeDependency) }

// JSON serialises the node as compact JSON, keeping key order.
func (n Node) JSON() string {
	if n.y == nil {
		return "null"
	}
	var buf bytes.Buffer
	writeJSON(&buf, n.y)
	return buf.String()
}

func (n Node) String() string { return n.JSON() }

func (n Node) lookup(key string) *yaml.Node {
	if n.y == nil || n.y.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.y.Content); i += 2 {
		if n.y.Content[i].Value == key {
			return resolve(n.y.Content[i+1])
		}
	}
	return nil
}

func (n Node) sequence(key string) []Node {
	v := n.lookup(key)
	if v == nil || v.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]Node, 0, len(v.Content))
	for _, c := range v.Content {
		out = append(out, NewNode(c))
	}
	return out
}

func resolve(y *yaml.Node) *yaml.Node {
	for y != nil {
		switch y.Kind {
		case yaml.DocumentNode:
			if len(y.Content) == 0 {
				return nil
			}
			y = y.Content[0]
		case yaml.AliasNode:
			y = y.Alias
		default:
			return y
		}
	}
	return nil
}

func isNull(y *yaml.Node) bool {
	return y.Kind == yaml.ScalarNode && y.Tag == "!!null"
}

func writeJSON(buf *bytes.Buffer, y *yaml.Node) {
	y = resolve(y)
	if y == nil {
		buf.WriteString("null")
		return
	}
	switch y.Kind {
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(y.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, y.Content[i].Value)
			buf.WriteByte(':')
			writeJSON(buf, y.Content[i+1])
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, c := range y.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSON(buf, c)
		}
		buf.WriteByte(']')
	default:
		switch y.Tag {
		case "!!null":
			buf.WriteString("null")
		case "!!bool", "!!int", "!!float":
			buf.WriteString(strings.ToLower(y.Value))
		default:
			writeString(buf, y.Value)
		}
	}
}

func writeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
