// Package typescript renders TypeScript enums, interfaces and service classes
// inside global namespaces mirroring the schema identifiers.
package typescript

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"regexp"
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
	identRe   = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
	templates = template.Must(template.New("typescript").Funcs(funcMap()).ParseFS(templatesFS, "templates/*.gotmpl"))
)

// Target implements the typescript output
type Target struct {
	cfg config.Target
}

// New creates a new TypeScript target
func New(cfg config.Target) *Target {
	return &Target{cfg: cfg}
}

// GetType returns the target type identifier
func (t *Target) GetType() string { return config.TypeTypeScript }

// Dialect returns the TypeScript type dialect
func (t *Target) Dialect() typing.Dialect { return Dialect{} }

// ModelPath maps Bungie.User.Models.Foo to User/Models/Foo.ts
func (t *Target) ModelPath(m ir.Model) string {
	parts := append(append([]string{}, m.Namespace[1:]...), m.Name+".ts")
	return path.Join(parts...)
}

// ServicePath maps the User service to UserService.ts
func (t *Target) ServicePath(s ir.Service) string {
	parts := append(append([]string{}, s.Namespace[1:]...), s.Name+"Service.ts")
	return path.Join(parts...)
}

// Format renders a model or a service
func (t *Target) Format(a ir.Artifact) ([]byte, error) {
	switch {
	case a.Model != nil && a.Model.Kind == ir.KindEnum:
		return render("enum.ts.gotmpl", a.Model)
	case a.Model != nil:
		return render("interface.ts.gotmpl", a.Model)
	case a.Service != nil:
		return render("service.ts.gotmpl", a.Service)
	}
	return nil, fmt.Errorf("typescript: empty artifact")
}

// SupportFiles returns the Service base class and the Requester interface
func (t *Target) SupportFiles(vendor string) ([]ir.File, error) {
	content, err := render("service_base.ts.gotmpl", map[string]any{"Vendor": vendor})
	if err != nil {
		return nil, err
	}
	return []ir.File{{Path: "Service.ts", Content: content}}, nil
}

func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func funcMap() template.FuncMap {
	fm := template.FuncMap{
		"prop":         quoteTSPropertyName,
		"variable":     variable,
		"lcfirst":      lcFirst,
		"jsDoc":        jsDoc,
		"namespace":    func(segs []string) string { return strings.Join(segs, ".") },
		"signature":    signature,
		"pathTemplate": buildPathTemplate,
		"serviceDoc":   serviceDoc,
		"queryArgs":    queryArgs,
		"firstLine":    firstLine,
	}
	// Merge sprig functions
	for k, v := range sprig.FuncMap() {
		if _, ok := fm[k]; !ok {
			fm[k] = v
		}
	}
	return fm
}

// variable turns a parameter name into a TypeScript identifier
func variable(name string) string {
	if identRe.MatchString(name) {
		return name
	}
	return utils.ToCamelCase(name)
}

func lcFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// jsDoc formats text as JSDoc lines at the given indentation, without the
// opening and closing markers.
func jsDoc(indent, s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var b strings.Builder
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		line = strings.TrimRight(line, " \t\r")
		line = strings.ReplaceAll(line, "*/", "*\\/")
		if line == "" {
			b.WriteString(indent + " *")
		} else {
			b.WriteString(indent + " * " + line)
		}
	}
	return b.String()
}

// signature renders the method parameter list; optional parameters trail
// the required ones.
func signature(m ir.Method) string {
	var required, optional []string
	add := func(name, typ string, req bool) {
		if req {
			required = append(required, variable(name)+": "+typ)
			return
		}
		optional = append(optional, variable(name)+"?: "+typ)
	}
	for _, p := range m.PathParams {
		add(p.Name, p.Type, true)
	}
	for _, p := range m.QueryParams {
		add(p.Name, p.Type, p.Required)
	}
	if m.Body != nil {
		add("body", m.Body.Type, m.Body.Required)
	}
	return strings.Join(append(required, optional...), ", ")
}

// buildPathTemplate converts /foo/{id}/bar/ into `/foo/${encodeURIComponent(id)}/bar/`
func buildPathTemplate(m ir.Method) string {
	p := m.Path
	var b strings.Builder
	b.WriteString("`")
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '{':
			j := i + 1
			for j < len(p) && p[j] != '}' {
				j++
			}
			if j < len(p) {
				b.WriteString("${encodeURIComponent(")
				b.WriteString(variable(p[i+1 : j]))
				b.WriteString(")}")
				i = j
				continue
			}
		case '`', '\\':
			b.WriteByte('\\')
		case '$':
			if i+1 < len(p) && p[i+1] == '{' {
				b.WriteByte('\\')
			}
		}
		b.WriteByte(p[i])
	}
	b.WriteString("`")
	return b.String()
}

// serviceDoc collects the JSDoc lines of a service method
func serviceDoc(m ir.Method) []string {
	var lines []string
	if m.Description != "" {
		lines = append(lines, strings.Split(strings.TrimSpace(m.Description), "\n")...)
	}
	var params []string
	for _, p := range m.PathParams {
		params = append(params, paramLine(p.Name, p.Description))
	}
	for _, p := range m.QueryParams {
		params = append(params, paramLine(p.Name, p.Description))
	}
	if m.Body != nil {
		params = append(params, paramLine("body", m.Body.Description))
	}
	if len(lines) > 0 && len(params) > 0 {
		lines = append(lines, "")
	}
	lines = append(lines, params...)
	if m.Deprecated {
		lines = append(lines, "@deprecated")
	}
	for i, line := range lines {
		lines[i] = strings.ReplaceAll(strings.TrimRight(line, " \t\r"), "*/", "*\\/")
	}
	return lines
}

func paramLine(name, description string) string {
	line := "@param " + variable(name)
	if d := firstLine(description); d != "" {
		line += " " + d
	}
	return line
}

func firstLine(s string) string {
	return strings.TrimSpace(strings.SplitN(strings.TrimSpace(s), "\n", 2)[0])
}

// queryArgs renders the query object entries of a method call
func queryArgs(m ir.Method) string {
	pairs := make([]string, 0, len(m.QueryParams))
	for _, p := range m.QueryParams {
		if v := variable(p.Name); v == p.Name {
			pairs = append(pairs, v)
		} else {
			pairs = append(pairs, fmt.Sprintf("%s: %s", quoteTSPropertyName(p.Name), v))
		}
	}
	return strings.Join(pairs, ", ")
}
