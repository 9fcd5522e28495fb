// Package golang renders a flat Go package: integer enums with typed
// constants, JSON-tagged structs and service structs on a Requester.
package golang

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"go/token"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/blimu-dev/typegen/pkg/config"
	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/typing"
	"github.com/blimu-dev/typegen/pkg/utils"
)

//go:embed templates/*
var templatesFS embed.FS

var (
	invalidPkgChars = regexp.MustCompile(`[^a-z0-9_]`)
	templates       = template.Must(template.New("go").Funcs(funcMap()).ParseFS(templatesFS, "templates/*.gotmpl"))
)

// names the generated method bodies use for their own variables
var reservedParams = map[string]bool{"ctx": true, "s": true, "query": true, "body": true, "out": true, "err": true}

// Target implements the go output
type Target struct {
	cfg config.Target
	pkg string
}

// New creates a new Go target. The package name comes from packageName,
// falling back to the output directory's base name.
func New(cfg config.Target) *Target {
	name := cfg.PackageName
	if name == "" {
		name = filepath.Base(cfg.OutDir)
	}
	return &Target{cfg: cfg, pkg: sanitizePackageName(name)}
}

// GetType returns the target type identifier
func (t *Target) GetType() string { return config.TypeGo }

// Dialect returns the Go type dialect
func (t *Target) Dialect() typing.Dialect { return Dialect{} }

// Package returns the package clause used by every generated file
func (t *Target) Package() string { return t.pkg }

// ModelPath maps Bungie.User.Models.Foo to user_models_foo.go
func (t *Target) ModelPath(m ir.Model) string {
	return fileName(typeName(m))
}

// ServicePath maps the User service to user_service.go
func (t *Target) ServicePath(s ir.Service) string {
	return fileName(serviceType(s))
}

func fileName(ident string) string {
	base := utils.ToSnakeCase(ident)
	if strings.HasSuffix(base, "_test") {
		base += "_"
	}
	return base + ".go"
}

// Format renders a model or a service and runs it through gofmt
func (t *Target) Format(a ir.Artifact) ([]byte, error) {
	var (
		name string
		data = map[string]any{"Package": t.pkg}
	)
	switch {
	case a.Model != nil && a.Model.Kind == ir.KindEnum:
		name, data["Model"] = "enum.go.gotmpl", a.Model
	case a.Model != nil:
		name, data["Model"] = "struct.go.gotmpl", a.Model
	case a.Service != nil:
		name, data["Service"] = "service.go.gotmpl", a.Service
	default:
		return nil, fmt.Errorf("go: empty artifact")
	}
	return render(name, data)
}

// SupportFiles returns the Requester interface and the path helper
func (t *Target) SupportFiles(vendor string) ([]ir.File, error) {
	content, err := render("requester.go.gotmpl", map[string]any{"Package": t.pkg, "Vendor": vendor})
	if err != nil {
		return nil, err
	}
	return []ir.File{{Path: "requester.go", Content: content}}, nil
}

func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format %s output: %w", name, err)
	}
	return out, nil
}

func funcMap() template.FuncMap {
	fm := template.FuncMap{
		"comment":        comment,
		"typeName":       func(m *ir.Model) string { return typeName(*m) },
		"typeDoc":        typeDoc,
		"caseName":       func(m *ir.Model, c ir.EnumCase) string { return typeName(*m) + exported(c.Identifier) },
		"memberFields":   memberFields,
		"queryFields":    queryFields,
		"tag":            jsonTag,
		"serviceType":    func(s *ir.Service) string { return serviceType(*s) },
		"queryType":      queryType,
		"queryFieldType": queryFieldType,
		"methodName":     func(m ir.Method) string { return exported(m.Name) },
		"methodDoc":      methodDoc,
		"params":         params,
		"results":        results,
		"callPath":       callPath,
		"callQuery":      callQuery,
	}
	// Merge sprig functions
	for k, v := range sprig.FuncMap() {
		if _, ok := fm[k]; !ok {
			fm[k] = v
		}
	}
	return fm
}

func typeName(m ir.Model) string {
	return Dialect{}.Qualify(append(append([]string{}, m.Namespace...), m.Name))
}

func serviceType(s ir.Service) string {
	return Dialect{}.Qualify(append(append([]string{}, s.Namespace...), s.Name)) + "Service"
}

func queryType(s *ir.Service, m ir.Method) string {
	return strings.TrimSuffix(serviceType(*s), "Service") + exported(m.Name) + "Query"
}

// queryFieldType makes optional scalars pointers so unset differs from zero
func queryFieldType(p ir.Param) string {
	if p.Required {
		return p.Type
	}
	return Dialect{}.Nullable(p.Type)
}

// formatGoComment converts a description to Go comment format
func formatGoComment(s string) string {
	if s == "" {
		return ""
	}

	// Split into lines and prefix each with //
	lines := strings.Split(s, "\n")
	var result []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			result = append(result, "//")
		} else {
			result = append(result, "// "+line)
		}
	}

	return strings.Join(result, "\n")
}

// comment formats a description as comment lines at the given indentation
func comment(indent, s string) string {
	c := formatGoComment(strings.TrimSpace(s))
	if c == "" || indent == "" {
		return c
	}
	return indent + strings.ReplaceAll(c, "\n", "\n"+indent)
}

func typeDoc(m *ir.Model) string {
	text := typeName(*m) + " is generated from " + m.Identifier + "."
	if m.Description != "" {
		text += "\n\n" + punctuate(m.Description)
	}
	if m.Bitmask {
		text += "\n\nValues may be combined with bitwise OR."
	}
	if m.ManifestName != "" {
		text += "\n\nManifest: " + m.ManifestName
	}
	if m.Extension != "" {
		text += "\n\nAdditional properties: " + m.Extension
	}
	return formatGoComment(text)
}

func methodDoc(m ir.Method) string {
	text := exported(m.Name) + " calls " + m.HTTPMethod + " " + m.Path + "."
	if m.Description != "" {
		text += "\n\n" + punctuate(m.Description)
	}
	if m.Deprecated {
		text += "\n\nDeprecated: the API marks this operation as deprecated."
	}
	return formatGoComment(text)
}

// punctuate ends every paragraph with a period unless it already ends in
// punctuation. gofmt otherwise turns a short capitalised line followed by
// another paragraph into a "# heading".
func punctuate(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		lines[i] = line
		if line == "" || (i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "") {
			continue
		}
		if !strings.ContainsAny(line[len(line)-1:], ".!?:;,") {
			lines[i] = line + "."
		}
	}
	return strings.Join(lines, "\n")
}

// variable turns a parameter name into a Go identifier that cannot clash
// with keywords or the locals of a generated method.
func variable(name string) string {
	v := name
	if !token.IsIdentifier(v) {
		v = utils.ToCamelCase(name)
	}
	if v == "" {
		v = "param"
	}
	if token.IsKeyword(v) || reservedParams[v] {
		v += "Param"
	}
	return v
}

func params(s *ir.Service, m ir.Method) string {
	parts := []string{"ctx context.Context"}
	for _, p := range m.PathParams {
		parts = append(parts, variable(p.Name)+" "+p.Type)
	}
	if len(m.QueryParams) > 0 {
		parts = append(parts, "query "+queryType(s, m))
	}
	if m.Body != nil {
		typ := m.Body.Type
		if !m.Body.Required {
			typ = Dialect{}.Nullable(typ)
		}
		parts = append(parts, "body "+typ)
	}
	return strings.Join(parts, ", ")
}

func results(m ir.Method) string {
	if m.ReturnType == "" {
		return "error"
	}
	return "(" + m.ReturnType + ", error)"
}

func callPath(m ir.Method) string {
	route := strconv.Quote(m.Path)
	if len(m.PathParams) == 0 {
		return route
	}
	pairs := make([]string, 0, len(m.PathParams))
	for _, p := range m.PathParams {
		pairs = append(pairs, strconv.Quote(p.Name)+": "+variable(p.Name))
	}
	return "expandPath(" + route + ", map[string]any{" + strings.Join(pairs, ", ") + "})"
}

// memberFields names the struct fields of a record model, keeping clear of
// the AdditionalProperties field an extension adds.
func memberFields(m *ir.Model) []string {
	names := make([]string, len(m.Members))
	for i, member := range m.Members {
		names[i] = member.Name
	}
	if m.Extension != "" {
		return fieldNames(names, "AdditionalProperties")
	}
	return fieldNames(names)
}

func queryFields(params []ir.Param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return fieldNames(names)
}

func callQuery(m ir.Method) string {
	if len(m.QueryParams) == 0 {
		return "nil"
	}
	fields := queryFields(m.QueryParams)
	pairs := make([]string, 0, len(m.QueryParams))
	for i, p := range m.QueryParams {
		pairs = append(pairs, strconv.Quote(p.Name)+": query."+fields[i])
	}
	return "map[string]any{" + strings.Join(pairs, ", ") + "}"
}

// sanitizePackageName ensures the package name is valid for Go
func sanitizePackageName(name string) string {
	// Extract the last part of the package name if it looks like a module path
	parts := strings.Split(name, "/")
	if len(parts) > 0 {
		name = parts[len(parts)-1]
	}

	// Convert to lowercase and replace invalid characters
	name = strings.ToLower(name)
	name = invalidPkgChars.ReplaceAllString(name, "")

	// Ensure it doesn't start with a number
	if len(name) > 0 && name[0] >= '0' && name[0] <= '9' {
		name = "pkg" + name
	}

	// Ensure it's not empty
	if name == "" {
		name = "client"
	}

	if token.IsKeyword(name) {
		name += "pkg"
	}

	return name
}
