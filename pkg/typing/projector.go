package typing

import (
	"fmt"

	"github.com/blimu-dev/typegen/pkg/naming"
	"github.com/blimu-dev/typegen/pkg/schema"
)

// Projector renders schema nodes as concrete and documentation types.
// $ref targets are rendered by name and never inlined, so cyclic schema
// graphs terminate; recursion only follows physically nested nodes.
type Projector struct {
	dialect  Dialect
	resolver naming.Resolver
}

// New returns a Projector for dialect, resolving names with resolver.
func New(dialect Dialect, resolver naming.Resolver) *Projector {
	return &Projector{dialect: dialect, resolver: resolver}
}

// Dialect returns the dialect in use.
func (p *Projector) Dialect() Dialect { return p.dialect }

// Resolver returns the identifier resolver in use.
func (p *Projector) Resolver() naming.Resolver { return p.resolver }

// RefName renders the qualified name of the schema a $ref points at.
func (p *Projector) RefName(ref string) string {
	return p.dialect.Qualify(p.resolver.Segments(naming.ResolveRef(ref)))
}

// TypeOf returns the concrete type expression of node.
func (p *Projector) TypeOf(node schema.Node) (string, error) {
	category, err := schema.Classify(node)
	if err != nil {
		return "", err
	}

	switch category {
	case schema.Reference:
		return p.RefName(node.Ref()), nil
	case schema.EnumReference:
		target, _ := node.EnumReference()
		return p.RefName(target.Ref()), nil
	case schema.Boolean, schema.Integer, schema.Number, schema.String, schema.Enum:
		return p.dialect.Primitive(category), nil
	case schema.Array:
		elem, err := p.TypeOf(node.Items())
		if err != nil {
			return "", err
		}
		return p.dialect.List(elem), nil
	case schema.ObjectLiteral:
		if !node.Has("properties") {
			return p.dialect.OpaqueObject(), nil
		}
		return p.record(node)
	case schema.CompositeObject:
		entries := node.AllOf()
		parts := make([]string, 0, len(entries))
		for _, entry := range entries {
			t, err := p.TypeOf(entry)
			if err != nil {
				return "", err
			}
			parts = append(parts, t)
		}
		return p.dialect.Intersection(parts), nil
	case schema.ArrayObject:
		fixed, err := p.record(node)
		if err != nil {
			return "", err
		}
		return p.dialect.Intersection([]string{fixed, p.dialect.Map()}), nil
	case schema.DictionaryObject:
		return p.dialect.Map(), nil
	default:
		panic(fmt.Sprintf("typing: unhandled category %s", category))
	}
}

// DocTypeOf returns the documentation type of node. Lists and dictionaries
// are rendered with the dialect's list notation; everything else matches
// TypeOf.
func (p *Projector) DocTypeOf(node schema.Node) (string, error) {
	category, err := schema.Classify(node)
	if err != nil {
		return "", err
	}

	switch category {
	case schema.Array:
		elem, err := p.DocTypeOf(node.Items())
		if err != nil {
			return "", err
		}
		return p.dialect.DocList(elem), nil
	case schema.DictionaryObject:
		value, _ := node.AdditionalProperties()
		if value.Unconstrained() || value.Forbidden() {
			return p.dialect.DocList(p.dialect.Any()), nil
		}
		elem, err := p.DocTypeOf(value)
		if err != nil {
			return "", err
		}
		return p.dialect.DocList(elem), nil
	case schema.Reference, schema.EnumReference, schema.Boolean, schema.Integer,
		schema.Number, schema.String, schema.Enum, schema.ObjectLiteral,
		schema.CompositeObject, schema.ArrayObject:
		return p.TypeOf(node)
	default:
		panic(fmt.Sprintf("typing: unhandled category %s", category))
	}
}

func (p *Projector) record(node schema.Node) (string, error) {
	props := node.Properties()
	members := make([]Member, 0, len(props))
	for _, prop := range props {
		t, err := p.TypeOf(prop.Schema)
		if err != nil {
			return "", fmt.Errorf("property %s: %w", prop.Name, err)
		}
		members = append(members, Member{Name: prop.Name, Type: t})
	}
	return p.dialect.Record(members), nil
}
