// Package php renders PHP 8.1 enums, constructor-promoted classes and
// service classes.
package php

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
	identRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	templates = template.Must(template.New("php").Funcs(funcMap()).ParseFS(templatesFS, "templates/*.gotmpl"))
)

// Target implements the php output
type Target struct {
	cfg config.Target
}

// New creates a new PHP target
func New(cfg config.Target) *Target {
	return &Target{cfg: cfg}
}

// GetType returns the target type identifier
func (t *Target) GetType() string { return config.TypePHP }

// Dialect returns the PHP type dialect
func (t *Target) Dialect() typing.Dialect { return Dialect{} }

// ModelPath maps \Bungie\User\Models\Foo to User/Models/Foo.php
func (t *Target) ModelPath(m ir.Model) string {
	return filePath(m.Namespace, m.Name)
}

// ServicePath maps the User service to User.php
func (t *Target) ServicePath(s ir.Service) string {
	return filePath(s.Namespace, s.Name)
}

func filePath(namespace []string, name string) string {
	parts := append(append([]string{}, namespace[1:]...), name+".php")
	return path.Join(parts...)
}

// Format renders a model or a service
func (t *Target) Format(a ir.Artifact) ([]byte, error) {
	switch {
	case a.Model != nil && a.Model.Kind == ir.KindEnum:
		return render("enum.php.gotmpl", a.Model)
	case a.Model != nil:
		return render("class.php.gotmpl", a.Model)
	case a.Service != nil:
		return render("service.php.gotmpl", a.Service)
	}
	return nil, fmt.Errorf("php: empty artifact")
}

// SupportFiles returns the Service base class and the Requester interface
func (t *Target) SupportFiles(vendor string) ([]ir.File, error) {
	var files []ir.File
	for _, name := range []string{"Service", "Requester"} {
		content, err := render(strings.ToLower(name)+"_base.php.gotmpl", map[string]any{"Vendor": vendor})
		if err != nil {
			return nil, err
		}
		files = append(files, ir.File{Path: name + ".php", Content: content})
	}
	return files, nil
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
		"native":     nativeType,
		"variable":   variable,
		"lcfirst":    lcFirst,
		"docComment": docComment,
		"namespace":  func(segs []string) string { return strings.Join(segs, `\`) },
		"signature":  signature,
		"pathExpr":   pathExpr,
		"serviceDoc": serviceDoc,
		"queryArgs":  queryArgs,
		"firstLine":  firstLine,
	}
	// Merge sprig functions
	for k, v := range sprig.FuncMap() {
		if _, ok := fm[k]; !ok {
			fm[k] = v
		}
	}
	return fm
}

// variable turns a JSON property or parameter name into a PHP variable name
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

// docComment formats text as docblock lines at the given indentation,
// without the opening and closing markers.
func docComment(indent, s string) string {
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

// signature renders a method parameter list. Required parameters precede
// optional ones, which default to null.
func signature(m ir.Method) string {
	var required, optional []string
	add := func(name, typ string, req bool) {
		native := nativeType(typ)
		if req {
			required = append(required, native+" $"+variable(name))
			return
		}
		if native != "mixed" && !strings.HasPrefix(native, "?") && !strings.HasSuffix(native, "|null") {
			native = "?" + native
		}
		optional = append(optional, native+" $"+variable(name)+" = null")
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

// pathExpr renders the route with its placeholders bound to variables.
func pathExpr(m ir.Method) string {
	route := "'" + strings.ReplaceAll(m.Path, "'", `\'`) + "'"
	if len(m.PathParams) == 0 {
		return route
	}
	pairs := make([]string, 0, len(m.PathParams))
	for _, p := range m.PathParams {
		pairs = append(pairs, fmt.Sprintf("'%s' => $%s", p.Name, variable(p.Name)))
	}
	return fmt.Sprintf("$this->path(%s, [%s])", route, strings.Join(pairs, ", "))
}

// serviceDoc collects the docblock lines of a service method
func serviceDoc(m ir.Method) []string {
	var lines []string
	if m.Description != "" {
		lines = append(lines, strings.Split(strings.TrimSpace(m.Description), "\n")...)
		lines = append(lines, "")
	}
	for _, p := range m.PathParams {
		lines = append(lines, paramLine(p.DocType, p.Name, p.Description))
	}
	for _, p := range m.QueryParams {
		doc := p.DocType
		if !p.Required {
			doc = Dialect{}.Nullable(doc)
		}
		lines = append(lines, paramLine(doc, p.Name, p.Description))
	}
	if m.Body != nil {
		lines = append(lines, paramLine(m.Body.DocType, "body", m.Body.Description))
	}
	lines = append(lines, "@return  "+m.ReturnDocType)
	if m.Deprecated {
		lines = append(lines, "@deprecated")
	}
	return lines
}

func paramLine(docType, name, description string) string {
	line := fmt.Sprintf("@param  %s  $%s", docType, variable(name))
	if d := firstLine(description); d != "" {
		line += "  " + d
	}
	return line
}

func firstLine(s string) string {
	return strings.TrimSpace(strings.SplitN(strings.TrimSpace(s), "\n", 2)[0])
}

// queryArgs renders the query array entries of a method call
func queryArgs(m ir.Method) string {
	pairs := make([]string, 0, len(m.QueryParams))
	for _, p := range m.QueryParams {
		pairs = append(pairs, fmt.Sprintf("'%s' => $%s", p.Name, variable(p.Name)))
	}
	return strings.Join(pairs, ", ")
}
