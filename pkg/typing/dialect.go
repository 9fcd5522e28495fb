// Package typing projects classified schema nodes into target-language type
// expressions.
package typing

import "github.com/blimu-dev/typegen/pkg/schema"

// Member is one field of an inline record type.
type Member struct {
	Name string
	Type string
}

// Dialect supplies the tokens and composition rules of a target language.
type Dialect interface {
	// Name identifies the dialect ("php", "typescript", "go").
	Name() string
	// Qualify renders the fully qualified name of a type from its
	// namespace segments (vendor root first, type name last).
	Qualify(segments []string) string
	// Primitive returns the token for Boolean, Integer, Number, String and Enum.
	Primitive(c schema.Category) string
	// List renders a sequence of elem.
	List(elem string) string
	// Record renders an inline anonymous record.
	Record(members []Member) string
	// OpaqueObject is the token for an object with no declared properties.
	OpaqueObject() string
	// Intersection combines several types into one.
	Intersection(parts []string) string
	// Map is the token for a string-keyed dictionary.
	Map() string
	// DocList renders the documentation form of a list or map of elem.
	DocList(elem string) string
	// Any is the token for an unconstrained value.
	Any() string
	// Void is the return type of an operation without a response body.
	Void() string
	// Nullable marks t as accepting null.
	Nullable(t string) string
}
