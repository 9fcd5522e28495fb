package typescript

import (
	"strings"

	"github.com/blimu-dev/typegen/pkg/schema"
	"github.com/blimu-dev/typegen/pkg/typing"
)

// Dialect renders TypeScript type expressions. TypeScript has no separate
// documentation notation, so DocList and List share a form.
type Dialect struct{}

var _ typing.Dialect = Dialect{}

func (Dialect) Name() string { return "typescript" }

func (Dialect) Qualify(segments []string) string { return strings.Join(segments, ".") }

func (Dialect) Primitive(c schema.Category) string {
	switch c {
	case schema.Boolean:
		return "boolean"
	case schema.String:
		return "string"
	default:
		return "number"
	}
}

func (Dialect) List(elem string) string {
	// Wrap unions/intersections in parentheses
	if strings.Contains(elem, " | ") || strings.Contains(elem, " & ") {
		return "(" + elem + ")[]"
	}
	return elem + "[]"
}

func (Dialect) Record(members []typing.Member) string {
	if len(members) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(members))
	for _, m := range members {
		parts = append(parts, quoteTSPropertyName(m.Name)+": "+m.Type)
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func (Dialect) OpaqueObject() string { return "Record<string, unknown>" }

func (Dialect) Intersection(parts []string) string { return strings.Join(parts, " & ") }

func (Dialect) Map() string { return "Record<string, unknown>" }

func (d Dialect) DocList(elem string) string { return d.List(elem) }

func (Dialect) Any() string { return "unknown" }

func (Dialect) Void() string { return "void" }

func (Dialect) Nullable(t string) string {
	if t == "unknown" || strings.HasSuffix(t, " | null") {
		return t
	}
	if strings.Contains(t, " & ") {
		return "(" + t + ") | null"
	}
	return t + " | null"
}

// quoteTSPropertyName quotes TypeScript property names that contain special characters
func quoteTSPropertyName(name string) string {
	needsQuoting := name == ""
	for _, char := range name {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_' || char == '$') {
			needsQuoting = true
			break
		}
	}

	// Also quote if the name starts with a number
	if len(name) > 0 && name[0] >= '0' && name[0] <= '9' {
		needsQuoting = true
	}

	if needsQuoting {
		return "\"" + strings.ReplaceAll(name, "\"", "\\\"") + "\""
	}
	return name
}
