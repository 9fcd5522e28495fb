// Package spec is an order-preserving object model of the OpenAPI document
// parts the generator reads. Unlike kin-openapi's maps, every collection
// whose iteration order reaches the output keeps document order.
package spec

import (
	"sort"
	"strings"

	"github.com/blimu-dev/typegen/pkg/schema"
)

// HTTP methods in the order operations are visited within one path item.
var Methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

type Document struct {
	OpenAPI      string        `yaml:"openapi"`
	Info         Info          `yaml:"info"`
	Servers      []Server      `yaml:"servers"`
	Paths        Paths         `yaml:"paths"`
	Components   Components    `yaml:"components"`
	Tags         []Tag         `yaml:"tags"`
	ExternalDocs *ExternalDocs `yaml:"externalDocs"`
}

type Info struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
}

type Server struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

type Tag struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type ExternalDocs struct {
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
}

// Paths keeps routes in document order.
type Paths []PathEntry

// PathEntry is one route of the paths object.
type PathEntry struct {
	Route string
	Item  *PathItem
}

// PathItem holds the operations available on a single route.
type PathItem struct {
	Summary     string       `yaml:"summary"`
	Description string       `yaml:"description"`
	Parameters  []*Parameter `yaml:"parameters"`
	Get         *Operation   `yaml:"get"`
	Put         *Operation   `yaml:"put"`
	Post        *Operation   `yaml:"post"`
	Delete      *Operation   `yaml:"delete"`
	Options     *Operation   `yaml:"options"`
	Head        *Operation   `yaml:"head"`
	Patch       *Operation   `yaml:"patch"`
	Trace       *Operation   `yaml:"trace"`
}

// MethodOperation pairs an operation with the HTTP method it is bound to.
type MethodOperation struct {
	Method    string
	Operation *Operation
}

// Operations returns the operations defined on the item, ordered as Methods.
func (p *PathItem) Operations() []MethodOperation {
	if p == nil {
		return nil
	}
	all := []*Operation{p.Get, p.Put, p.Post, p.Delete, p.Options, p.Head, p.Patch, p.Trace}
	var out []MethodOperation
	for i, op := range all {
		if op != nil {
			out = append(out, MethodOperation{Method: Methods[i], Operation: op})
		}
	}
	return out
}

type Operation struct {
	Tags        []string     `yaml:"tags"`
	Summary     string       `yaml:"summary"`
	Description string       `yaml:"description"`
	OperationID string       `yaml:"operationId"`
	Parameters  []*Parameter `yaml:"parameters"`
	RequestBody *RequestBody `yaml:"requestBody"`
	Responses   Responses    `yaml:"responses"`
	Deprecated  bool         `yaml:"deprecated"`
}

type Parameter struct {
	Ref         string      `yaml:"$ref"`
	Name        string      `yaml:"name"`
	In          string      `yaml:"in"`
	Description string      `yaml:"description"`
	Required    bool        `yaml:"required"`
	Schema      schema.Node `yaml:"schema"`
}

type RequestBody struct {
	Ref         string  `yaml:"$ref"`
	Description string  `yaml:"description"`
	Required    bool    `yaml:"required"`
	Content     Content `yaml:"content"`
}

type Response struct {
	Ref         string  `yaml:"$ref"`
	Description string  `yaml:"description"`
	Content     Content `yaml:"content"`
}

type MediaType struct {
	Schema schema.Node `yaml:"schema"`
}

// Content maps media types to their payload description.
type Content map[string]*MediaType

// Schema picks the payload schema, preferring application/json, then any
// other JSON media type, then whatever sorts first.
func (c Content) Schema() (schema.Node, bool) {
	if len(c) == 0 {
		return schema.Node{}, false
	}
	if mt, ok := c["application/json"]; ok && mt != nil && !mt.Schema.IsZero() {
		return mt.Schema, true
	}
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.HasSuffix(k, "+json") || strings.HasSuffix(k, "/json") {
			if mt := c[k]; mt != nil && !mt.Schema.IsZero() {
				return mt.Schema, true
			}
		}
	}
	for _, k := range keys {
		if mt := c[k]; mt != nil && !mt.Schema.IsZero() {
			return mt.Schema, true
		}
	}
	return schema.Node{}, false
}

// ResponseEntry is one status code of a responses object.
type ResponseEntry struct {
	Code     string
	Response *Response
}

// Responses keeps status codes in document order.
type Responses []ResponseEntry

// Get returns the response declared for code.
func (r Responses) Get(code string) (*Response, bool) {
	for _, e := range r {
		if e.Code == code {
			return e.Response, true
		}
	}
	return nil, false
}

// NamedSchema is one entry of components.schemas.
type NamedSchema struct {
	Name   string
	Schema schema.Node
}

// NamedSchemas keeps components.schemas in document order.
type NamedSchemas []NamedSchema

// Get returns the schema registered under name.
func (n NamedSchemas) Get(name string) (schema.Node, bool) {
	for _, s := range n {
		if s.Name == name {
			return s.Schema, true
		}
	}
	return schema.Node{}, false
}

type Components struct {
	Schemas       NamedSchemas            `yaml:"schemas"`
	Responses     map[string]*Response    `yaml:"responses"`
	Parameters    map[string]*Parameter   `yaml:"parameters"`
	RequestBodies map[string]*RequestBody `yaml:"requestBodies"`
}
