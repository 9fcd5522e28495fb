// Package naming maps dotted schema identifiers and $ref URIs onto namespace
// segments rooted under a vendor segment.
package naming

import (
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// DefaultRoot is the vendor segment used when none is configured.
const DefaultRoot = "Bungie"

// Resolver turns identifiers such as "User.Models.Foo" into namespace paths.
type Resolver struct {
	root string
}

// New returns a Resolver rooted at root. An empty root falls back to DefaultRoot.
func New(root string) Resolver {
	if root == "" {
		root = DefaultRoot
	}
	return Resolver{root: root}
}

// Root returns the vendor segment.
func (r Resolver) Root() string { return r.root }

// Segments splits identifier on dots and prepends the vendor root.
// The result always holds at least two entries.
//
//	"User.Models.Foo" -> ["Bungie", "User", "Models", "Foo"]
func (r Resolver) Segments(identifier string) []string {
	parts := strings.Split(identifier, ".")
	return append([]string{r.root}, parts...)
}

// Namespace returns every segment except the final type name.
func (r Resolver) Namespace(identifier string) []string {
	segs := r.Segments(identifier)
	return segs[:len(segs)-1]
}

// TypeName returns the final segment of identifier.
func (r Resolver) TypeName(identifier string) string {
	segs := r.Segments(identifier)
	return segs[len(segs)-1]
}

// QualifiedName joins all segments with sep and prepends prefix, which marks
// the name as fully qualified in the target language.
func (r Resolver) QualifiedName(identifier, sep, prefix string) string {
	return prefix + strings.Join(r.Segments(identifier), sep)
}

// ResolveRef extracts the identifier a $ref points at: the last "/" segment.
// JSON pointer fragments are decoded so escaped names survive.
func ResolveRef(ref string) string {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		if p, err := jsonpointer.New(ref[i+1:]); err == nil {
			if tokens := p.DecodedTokens(); len(tokens) > 0 {
				return tokens[len(tokens)-1]
			}
		}
	}
	return ref[strings.LastIndexByte(ref, '/')+1:]
}
