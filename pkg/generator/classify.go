package generator

import (
	"github.com/blimu-dev/typegen/pkg/naming"
	"github.com/blimu-dev/typegen/pkg/schema"
	"github.com/blimu-dev/typegen/pkg/spec"
	"github.com/blimu-dev/typegen/pkg/typing"
)

// Classification is the classifier and projector verdict for one named schema.
type Classification struct {
	Identifier string
	Category   schema.Category
	Type       string
	DocType    string
	Err        error
}

// Classify runs the classifier and projector over every component schema in
// document order. Failures are recorded per entry.
func Classify(doc *spec.Document, vendor string, dialect typing.Dialect) []Classification {
	projector := typing.New(dialect, naming.New(vendor))
	out := make([]Classification, 0, len(doc.Components.Schemas))
	for _, named := range doc.Components.Schemas {
		c := Classification{Identifier: named.Name}
		c.Category, c.Err = schema.Classify(named.Schema)
		if c.Err == nil {
			c.Type, c.Err = projector.TypeOf(named.Schema)
		}
		if c.Err == nil {
			c.DocType, c.Err = projector.DocTypeOf(named.Schema)
		}
		out = append(out, c)
	}
	return out
}
