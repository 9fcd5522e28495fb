package generator

import (
	"fmt"

	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/schema"
	"github.com/blimu-dev/typegen/pkg/typing"
)

// SchemaRenderer turns named component schemas into models.
type SchemaRenderer struct {
	projector *typing.Projector
}

// NewSchemaRenderer returns a renderer projecting types with p.
func NewSchemaRenderer(p *typing.Projector) *SchemaRenderer {
	return &SchemaRenderer{projector: p}
}

// Render builds the model for the schema registered under identifier.
// Arrays and dictionaries yield (nil, nil): they are used inline and need no
// declaration of their own. Categories that cannot be declared return a
// *Diagnostic; classification failures return a *schema.UnknownTypeError.
func (r *SchemaRenderer) Render(identifier string, node schema.Node) (*ir.Model, error) {
	category, err := schema.Classify(node)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", identifier, err)
	}

	resolver := r.projector.Resolver()
	model := &ir.Model{
		Identifier:   identifier,
		Namespace:    resolver.Namespace(identifier),
		Name:         resolver.TypeName(identifier),
		Description:  node.Description(),
		ManifestName: node.ManifestName(),
	}

	switch category {
	case schema.Enum:
		if !node.Has("enum") {
			return nil, &Diagnostic{Identifier: identifier, Code: CodeNonEnumInteger, Category: category, Type: node.Type()}
		}
		if model.Underlying, err = r.projector.TypeOf(node); err != nil {
			return nil, fmt.Errorf("%s: %w", identifier, err)
		}
		model.Kind = ir.KindEnum
		model.Bitmask = node.IsBitmask()
		for _, v := range node.EnumValues() {
			model.Cases = append(model.Cases, ir.EnumCase{
				Identifier:  v.Identifier,
				Value:       v.NumericValue,
				Description: v.Description,
			})
		}
		return model, nil
	case schema.ObjectLiteral:
		model.Kind = ir.KindRecord
		if model.Members, err = r.members(node); err != nil {
			return nil, fmt.Errorf("%s: %w", identifier, err)
		}
		return model, nil
	case schema.ArrayObject:
		model.Kind = ir.KindRecord
		if model.Members, err = r.members(node); err != nil {
			return nil, fmt.Errorf("%s: %w", identifier, err)
		}
		ap, _ := node.AdditionalProperties()
		if ap.Forbidden() {
			return model, nil
		}
		if ap.Unconstrained() {
			model.Extension = r.projector.Dialect().Any()
		} else if model.Extension, err = r.projector.DocTypeOf(ap); err != nil {
			return nil, fmt.Errorf("%s: additionalProperties: %w", identifier, err)
		}
		return model, nil
	case schema.DictionaryObject, schema.Array:
		return nil, nil
	case schema.Reference, schema.EnumReference, schema.Boolean, schema.Integer,
		schema.Number, schema.String, schema.CompositeObject:
		return nil, &Diagnostic{Identifier: identifier, Code: CodeUnsupportedTopLevel, Category: category, Type: node.Type()}
	default:
		panic(fmt.Sprintf("generator: unhandled category %s", category))
	}
}

func (r *SchemaRenderer) members(node schema.Node) ([]ir.Member, error) {
	dialect := r.projector.Dialect()
	props := node.Properties()
	members := make([]ir.Member, 0, len(props))
	for _, prop := range props {
		typ, err := r.projector.TypeOf(prop.Schema)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", prop.Name, err)
		}
		doc, err := r.projector.DocTypeOf(prop.Schema)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", prop.Name, err)
		}
		nullable := prop.Schema.Nullable()
		if nullable {
			typ = dialect.Nullable(typ)
			doc = dialect.Nullable(doc)
		}
		members = append(members, ir.Member{
			Name:        prop.Name,
			Type:        typ,
			DocType:     doc,
			Description: prop.Schema.Description(),
			Nullable:    nullable,
		})
	}
	return members, nil
}
