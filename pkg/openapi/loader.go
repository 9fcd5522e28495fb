// Package openapi reads OpenAPI documents from disk or over HTTP and
// validates them with kin-openapi.
package openapi

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/blimu-dev/typegen/pkg/spec"
	"github.com/getkin/kin-openapi/openapi3"
)

// DefaultReader reads http(s) URLs with the default client and everything
// else from the filesystem.
var DefaultReader = openapi3.ReadFromURIs(openapi3.ReadFromHTTP(http.DefaultClient), openapi3.ReadFromFile)

// IsURL reports whether input should be fetched over HTTP.
func IsURL(input string) bool {
	u, err := url.Parse(input)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Location converts a file path or URL into the URL form kin-openapi readers expect.
func Location(input string) (*url.URL, error) {
	if IsURL(input) {
		return url.Parse(input)
	}
	return &url.URL{Path: filepath.ToSlash(input)}, nil
}

// ReadDocument returns the raw bytes of the document at input.
func ReadDocument(input string) ([]byte, error) {
	return ReadDocumentWithReader(DefaultReader, input)
}

// ReadDocumentWithReader reads input with a custom kin-openapi URI reader.
func ReadDocumentWithReader(read openapi3.ReadFromURIFunc, input string) ([]byte, error) {
	location, err := Location(input)
	if err != nil {
		return nil, fmt.Errorf("invalid spec location %q: %w", input, err)
	}
	data, err := read(openapi3.NewLoader(), location)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec %s: %w", input, err)
	}
	return data, nil
}

// LoadDocument loads an OpenAPI document from a local file path or an HTTP(S) URL
// into the order-preserving object model.
func LoadDocument(input string) (*spec.Document, error) {
	return LoadDocumentWithReader(DefaultReader, input)
}

// LoadDocumentWithReader loads a document using a custom URI reader.
func LoadDocumentWithReader(read openapi3.ReadFromURIFunc, input string) (*spec.Document, error) {
	data, err := ReadDocumentWithReader(read, input)
	if err != nil {
		return nil, err
	}
	doc, err := spec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load spec %s: %w", input, err)
	}
	return doc, nil
}

// ValidateDocument validates an OpenAPI document
func ValidateDocument(input string) error {
	loader := &openapi3.Loader{IsExternalRefsAllowed: true}
	var (
		doc *openapi3.T
		err error
	)
	if IsURL(input) {
		u, _ := url.Parse(input)
		doc, err = loader.LoadFromURI(u)
	} else {
		doc, err = loader.LoadFromFile(input)
	}
	if err != nil {
		return fmt.Errorf("failed to load spec %s: %w", input, err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return fmt.Errorf("spec %s is invalid: %w", input, err)
	}
	return nil
}
