package schema

// Classify assigns node to exactly one category. Predicates are evaluated in
// a fixed order and the first match wins, so a node carrying both $ref and
// type "object" is a Reference, and one with allOf and additionalProperties
// is a CompositeObject.
func Classify(node Node) (Category, error) {
	typ := node.Type()
	switch {
	case node.Has("$ref"):
		return Reference, nil
	case node.Has(KeyEnumReference):
		return EnumReference, nil
	case typ == "boolean":
		return Boolean, nil
	case typ == "integer" && !node.Has("enum") && !node.Has(KeyEnumReference):
		return Integer, nil
	case typ == "number":
		return Number, nil
	case typ == "string":
		return String, nil
	case node.Has("enum"):
		return Enum, nil
	case typ == "array":
		return Array, nil
	case typ == "object" && !node.Has("allOf") && !hasAdditional(node):
		return ObjectLiteral, nil
	case typ == "object" && node.Has("allOf"):
		return CompositeObject, nil
	case typ == "object" && hasAdditional(node) && !node.Has("properties"):
		return DictionaryObject, nil
	case typ == "object" && hasAdditional(node) && node.Has("properties"):
		return ArrayObject, nil
	}
	return 0, &UnknownTypeError{Type: typ, Dump: node.JSON()}
}

// MustClassify is like Classify but panics on unknown shapes.
func MustClassify(node Node) Category {
	c, err := Classify(node)
	if err != nil {
		panic(err)
	}
	return c
}

func hasAdditional(node Node) bool {
	_, ok := node.AdditionalProperties()
	return ok
}
