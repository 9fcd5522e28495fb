// Package ir holds the language-neutral models produced from an OpenAPI
// document. Type strings inside a model are already projected for the
// target's dialect, so formatters only lay out text.
package ir

// ModelKind distinguishes the artifacts a component schema can produce.
type ModelKind string

const (
	KindEnum   ModelKind = "enum"
	KindRecord ModelKind = "record"
)

// Model represents one generated type for a components.schemas entry
type Model struct {
	Kind ModelKind
	// Identifier is the schema key, e.g. "User.Models.GeneralUser"
	Identifier string
	// Namespace holds the vendor root and every segment but the type name
	Namespace   []string
	Name        string
	Description string

	// Enum
	Underlying string
	Bitmask    bool
	Cases      []EnumCase

	// Record
	Members []Member
	// Extension is the documentation type of additionalProperties on a
	// record that also declares properties. It is not a member.
	Extension string

	// ManifestName carries x-mobile-manifest-name
	ManifestName string
}

// EnumCase is one named value of an enum model
type EnumCase struct {
	Identifier  string
	Value       string
	Description string
}

// Member represents a property of a record model
type Member struct {
	Name        string
	Type        string
	DocType     string
	Description string
	Nullable    bool
}

// Service represents the operations grouped under one tag
type Service struct {
	Tag         string
	Description string
	Namespace   []string
	Name        string
	Methods     []Method
}

// Method represents a single API operation (endpoint + method)
type Method struct {
	Name        string
	HTTPMethod  string
	Path        string
	OperationID string
	Summary     string
	Description string
	Deprecated  bool
	PathParams  []Param
	QueryParams []Param
	Body        *Body
	ReturnType  string
	// ReturnDocType is the documentation form of ReturnType
	ReturnDocType string
}

// Param represents a path or query parameter
type Param struct {
	Name        string
	In          string
	Type        string
	DocType     string
	Description string
	Required    bool
}

// Body represents a JSON request body
type Body struct {
	Type        string
	DocType     string
	Description string
	Required    bool
}

// Artifact is the unit handed to a formatter. Exactly one field is set.
type Artifact struct {
	Model   *Model
	Service *Service
}

// File is rendered output, with Path relative to the target's output directory.
type File struct {
	Path    string
	Content []byte
}
