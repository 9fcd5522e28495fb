package schema

import "fmt"

// Category is the structural shape a schema node was classified as.
// Variants are declared in classification precedence order.
type Category int

const (
	Reference Category = iota
	EnumReference
	Boolean
	Integer
	Number
	String
	Enum
	Array
	ObjectLiteral
	CompositeObject
	DictionaryObject
	ArrayObject
)

var categoryNames = [...]string{
	Reference:        "Reference",
	EnumReference:    "EnumReference",
	Boolean:          "Boolean",
	Integer:          "Integer",
	Number:           "Number",
	String:           "String",
	Enum:             "Enum",
	Array:            "Array",
	ObjectLiteral:    "ObjectLiteral",
	CompositeObject:  "CompositeObject",
	DictionaryObject: "DictionaryObject",
	ArrayObject:      "ArrayObject",
}

// Categories returns every category in precedence order.
func Categories() []Category {
	out := make([]Category, len(categoryNames))
	for i := range categoryNames {
		out[i] = Category(i)
	}
	return out
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Valid reports whether c is one of the declared variants.
func (c Category) Valid() bool {
	return c >= 0 && int(c) < len(categoryNames)
}
