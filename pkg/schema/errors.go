package schema

import (
	"errors"
	"fmt"
)

// ErrUnknownSchemaType matches any *UnknownTypeError via errors.Is.
var ErrUnknownSchemaType = errors.New("unknown schema type")

// UnknownTypeError is returned when a node matches none of the categories.
type UnknownTypeError struct {
	// Type is the raw value of the node's type keyword ("" when absent).
	Type string
	// Dump is the node serialised as JSON.
	Dump string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown schema type `%s`: %s", e.Type, e.Dump)
}

// Is makes errors.Is(err, ErrUnknownSchemaType) succeed.
func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownSchemaType
}
