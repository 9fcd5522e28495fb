package generator

import (
	"errors"
	"fmt"

	"github.com/blimu-dev/typegen/pkg/schema"
)

// DiagnosticCode classifies why a schema produced no artifact.
type DiagnosticCode string

const (
	// CodeNonEnumInteger marks an enum-shaped schema without an enum keyword.
	CodeNonEnumInteger DiagnosticCode = "non-enum-integer"
	// CodeUnsupportedTopLevel marks a category that cannot stand alone as a type.
	CodeUnsupportedTopLevel DiagnosticCode = "unsupported-top-level"
)

// ErrSkipped matches every *Diagnostic.
var ErrSkipped = errors.New("schema skipped")

// Diagnostic is a non-fatal reason a named schema was skipped.
type Diagnostic struct {
	Identifier string
	Code       DiagnosticCode
	Category   schema.Category
	Type       string
}

func (d *Diagnostic) Error() string {
	switch d.Code {
	case CodeNonEnumInteger:
		return fmt.Sprintf("non-enum integer schema: `%s`", d.Identifier)
	default:
		return fmt.Sprintf("unsupported schema type `%s` (`%s`) for `%s`", d.Category, d.Type, d.Identifier)
	}
}

func (d *Diagnostic) Is(target error) bool {
	return target == ErrSkipped
}
