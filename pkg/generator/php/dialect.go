package php

import (
	"strings"

	"github.com/blimu-dev/typegen/pkg/schema"
	"github.com/blimu-dev/typegen/pkg/typing"
)

// Dialect renders PHP type expressions. Concrete types follow PHPStan
// notation so array shapes survive into docblocks; nativeType narrows them
// to what PHP accepts in a signature.
type Dialect struct{}

var _ typing.Dialect = Dialect{}

func (Dialect) Name() string { return "php" }

func (Dialect) Qualify(segments []string) string {
	return `\` + strings.Join(segments, `\`)
}

func (Dialect) Primitive(c schema.Category) string {
	switch c {
	case schema.Boolean:
		return "bool"
	case schema.Integer, schema.Enum:
		return "int"
	case schema.Number:
		return "float"
	default:
		return "string"
	}
}

func (Dialect) List(string) string { return "array" }

func (Dialect) Record(members []typing.Member) string {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		parts = append(parts, m.Name+": "+m.Type)
	}
	return "array{" + strings.Join(parts, ", ") + "}"
}

func (Dialect) OpaqueObject() string { return "array" }

func (Dialect) Intersection(parts []string) string { return strings.Join(parts, " & ") }

func (Dialect) Map() string { return "array" }

func (Dialect) DocList(elem string) string {
	if strings.ContainsAny(elem, " |") {
		return "(" + elem + ")[]"
	}
	return elem + "[]"
}

func (Dialect) Any() string { return "mixed" }

func (Dialect) Void() string { return "void" }

func (Dialect) Nullable(t string) string {
	if t == "mixed" || strings.HasPrefix(t, "?") {
		return t
	}
	if strings.Contains(t, " & ") {
		return "(" + t + ")|null"
	}
	return "?" + t
}

// nativeType converts a documentation type into one PHP accepts in a
// parameter, property or return declaration.
func nativeType(t string) string {
	switch {
	case t == "":
		return "mixed"
	case strings.HasSuffix(t, ")|null"):
		inner := nativeType(strings.TrimSuffix(strings.TrimPrefix(t, "("), ")|null"))
		if inner == "mixed" {
			return inner
		}
		if strings.Contains(inner, "&") {
			return "(" + inner + ")|null"
		}
		return "?" + inner
	case strings.HasPrefix(t, "?"):
		inner := nativeType(t[1:])
		if inner == "mixed" {
			return inner
		}
		return "?" + inner
	case strings.HasPrefix(t, "array{"), strings.HasSuffix(t, "[]"):
		return "array"
	case strings.Contains(t, " & "):
		parts := strings.Split(t, " & ")
		for _, p := range parts {
			if !strings.HasPrefix(p, `\`) {
				// Intersections are only legal between class types.
				return "array"
			}
		}
		return strings.Join(parts, "&")
	}
	return t
}
