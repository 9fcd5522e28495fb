package golang

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/blimu-dev/typegen/pkg/schema"
	"github.com/blimu-dev/typegen/pkg/typing"
	"github.com/blimu-dev/typegen/pkg/utils"
)

// Dialect renders Go type expressions. A generated package is flat, so
// qualified names join every segment after the vendor root.
type Dialect struct{}

var _ typing.Dialect = Dialect{}

func (Dialect) Name() string { return "go" }

func (Dialect) Qualify(segments []string) string {
	if len(segments) > 1 {
		segments = segments[1:]
	}
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(exported(s))
	}
	return b.String()
}

func (Dialect) Primitive(c schema.Category) string {
	switch c {
	case schema.Boolean:
		return "bool"
	case schema.Number:
		return "float64"
	case schema.String:
		return "string"
	default:
		return "int64"
	}
}

func (Dialect) List(elem string) string { return "[]" + elem }

func (Dialect) Record(members []typing.Member) string {
	if len(members) == 0 {
		return "struct{}"
	}
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	idents := fieldNames(names)
	fields := make([]string, 0, len(members))
	for i, m := range members {
		fields = append(fields, idents[i]+" "+m.Type+" "+jsonTag(m.Name))
	}
	return "struct { " + strings.Join(fields, "; ") + " }"
}

func (Dialect) OpaqueObject() string { return "map[string]any" }

// Intersection embeds named parts and inlines the fields of literal
// structs. Anything else is kept in a field hidden from JSON.
func (Dialect) Intersection(parts []string) string {
	var fields []string
	for i, p := range parts {
		switch {
		case token.IsIdentifier(p):
			fields = append(fields, p)
		case p == "struct{}":
		case strings.HasPrefix(p, "struct { ") && strings.HasSuffix(p, " }"):
			fields = append(fields, strings.TrimSuffix(strings.TrimPrefix(p, "struct { "), " }"))
		case strings.HasPrefix(p, "map["):
			fields = append(fields, "AdditionalProperties "+p+" `json:\"-\"`")
		default:
			fields = append(fields, "Part"+strconv.Itoa(i+1)+" "+p+" `json:\"-\"`")
		}
	}
	if len(fields) == 0 {
		return "struct{}"
	}
	return "struct { " + strings.Join(fields, "; ") + " }"
}

func (Dialect) Map() string { return "map[string]any" }

func (Dialect) DocList(elem string) string { return "[]" + elem }

func (Dialect) Any() string { return "any" }

// Void is empty: operations without a response body only return an error.
func (Dialect) Void() string { return "" }

func (Dialect) Nullable(t string) string {
	switch {
	case t == "" || t == "any",
		strings.HasPrefix(t, "*"),
		strings.HasPrefix(t, "[]"),
		strings.HasPrefix(t, "map["):
		return t
	}
	return "*" + t
}

// exported upper-cases the first rune, leaving the rest of the segment alone
// so identifiers like GroupV2 survive.
func exported(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// fieldName converts a JSON property name into an exported Go field name
func fieldName(name string) string {
	f := utils.ToPascalCase(name)
	if f == "" || !unicode.IsLetter(rune(f[0])) {
		f = "X" + f
	}
	return f
}

// fieldNames converts property names into distinct field names. A name that
// collides with an earlier one, or with reserved, gets a numeric suffix.
func fieldNames(names []string, reserved ...string) []string {
	used := make(map[string]bool, len(names)+len(reserved))
	for _, r := range reserved {
		used[r] = true
	}
	out := make([]string, len(names))
	for i, name := range names {
		f := fieldName(name)
		for n := 2; used[f]; n++ {
			f = fieldName(name) + strconv.Itoa(n)
		}
		used[f] = true
		out[i] = f
	}
	return out
}

func jsonTag(name string) string {
	return "`json:\"" + name + "\"`"
}
