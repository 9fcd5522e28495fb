package generator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/schema"
	"github.com/blimu-dev/typegen/pkg/spec"
	"github.com/blimu-dev/typegen/pkg/typing"
)

var pathParamRe = regexp.MustCompile(`\{([^}]+)\}`)

// ServiceRenderer groups operations into one service per tag.
type ServiceRenderer struct {
	doc       *spec.Document
	projector *typing.Projector
}

// NewServiceRenderer returns a renderer that resolves component references
// against doc.
func NewServiceRenderer(doc *spec.Document, p *typing.Projector) *ServiceRenderer {
	return &ServiceRenderer{doc: doc, projector: p}
}

// GroupingSummary is the string whose first dotted segment names the tag an
// operation belongs to: the operation summary, the path item summary, or
// the operationId, whichever is set first.
func GroupingSummary(item *spec.PathItem, op *spec.Operation) string {
	switch {
	case op.Summary != "":
		return op.Summary
	case item.Summary != "":
		return item.Summary
	default:
		return op.OperationID
	}
}

// Render builds the service for tag out of every operation in paths whose
// grouping summary starts with the tag name. A tag without operations
// yields an empty service.
func (r *ServiceRenderer) Render(tag spec.Tag, paths spec.Paths) (*ir.Service, error) {
	resolver := r.projector.Resolver()
	svc := &ir.Service{
		Tag:         tag.Name,
		Description: tag.Description,
		Namespace:   resolver.Namespace(tag.Name),
		Name:        resolver.TypeName(tag.Name),
	}

	used := make(map[string]int)
	for _, entry := range paths {
		for _, mo := range entry.Item.Operations() {
			summary := GroupingSummary(entry.Item, mo.Operation)
			if strings.SplitN(summary, ".", 2)[0] != tag.Name {
				continue
			}
			method, err := r.method(tag.Name, summary, entry, mo)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(mo.Method), entry.Route, err)
			}
			if n := used[method.Name]; n > 0 {
				used[method.Name] = n + 1
				method.Name += strconv.Itoa(n + 1)
			} else {
				used[method.Name] = 1
			}
			svc.Methods = append(svc.Methods, *method)
		}
	}
	return svc, nil
}

func (r *ServiceRenderer) method(tag, summary string, entry spec.PathEntry, mo spec.MethodOperation) (*ir.Method, error) {
	op := mo.Operation
	m := &ir.Method{
		Name:        ResolveMethodName(tag, summary, op.OperationID, mo.Method, entry.Route),
		HTTPMethod:  strings.ToUpper(mo.Method),
		Path:        entry.Route,
		OperationID: op.OperationID,
		Summary:     summary,
		Description: op.Description,
		Deprecated:  op.Deprecated,
	}
	if m.Description == "" {
		m.Description = entry.Item.Description
	}

	params, err := r.parameters(entry.Item, op)
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		switch p.In {
		case "path":
			m.PathParams = append(m.PathParams, p)
		case "query":
			m.QueryParams = append(m.QueryParams, p)
		}
	}
	m.PathParams = orderPathParams(entry.Route, m.PathParams)

	if m.Body, err = r.body(op); err != nil {
		return nil, err
	}
	if m.ReturnType, m.ReturnDocType, err = r.returnType(op); err != nil {
		return nil, err
	}
	return m, nil
}

// parameters merges path item and operation parameters; the operation
// overrides entries with the same name and location.
func (r *ServiceRenderer) parameters(item *spec.PathItem, op *spec.Operation) ([]ir.Param, error) {
	var out []ir.Param
	index := make(map[string]int)
	for _, raw := range append(append([]*spec.Parameter{}, item.Parameters...), op.Parameters...) {
		p, err := r.doc.Parameter(raw)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		typ, doc, err := r.types(p.Schema)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		param := ir.Param{
			Name:        p.Name,
			In:          p.In,
			Type:        typ,
			DocType:     doc,
			Description: p.Description,
			Required:    p.Required || p.In == "path",
		}
		key := p.In + ":" + p.Name
		if i, ok := index[key]; ok {
			out[i] = param
			continue
		}
		index[key] = len(out)
		out = append(out, param)
	}
	return out, nil
}

func (r *ServiceRenderer) body(op *spec.Operation) (*ir.Body, error) {
	body, err := r.doc.RequestBody(op.RequestBody)
	if err != nil || body == nil {
		return nil, err
	}
	node, ok := body.Content.Schema()
	if !ok {
		return nil, nil
	}
	typ, doc, err := r.types(node)
	if err != nil {
		return nil, fmt.Errorf("request body: %w", err)
	}
	return &ir.Body{Type: typ, DocType: doc, Description: body.Description, Required: body.Required}, nil
}

// returnType picks 200, then 201, then the first other 2xx response.
// Responses without a payload schema return void.
func (r *ServiceRenderer) returnType(op *spec.Operation) (string, string, error) {
	void := r.projector.Dialect().Void()

	resp := pickSuccess(op.Responses)
	if resp == nil {
		return void, void, nil
	}
	resp, err := r.doc.Response(resp)
	if err != nil {
		return "", "", err
	}
	node, ok := resp.Content.Schema()
	if !ok {
		return void, void, nil
	}
	typ, doc, err := r.types(node)
	if err != nil {
		return "", "", fmt.Errorf("response: %w", err)
	}
	return typ, doc, nil
}

func pickSuccess(responses spec.Responses) *spec.Response {
	for _, code := range []string{"200", "201"} {
		if resp, ok := responses.Get(code); ok && resp != nil {
			return resp
		}
	}
	for _, e := range responses {
		if len(e.Code) == 3 && e.Code[0] == '2' && e.Response != nil {
			return e.Response
		}
	}
	return nil
}

func (r *ServiceRenderer) types(node schema.Node) (string, string, error) {
	if node.IsZero() {
		anyType := r.projector.Dialect().Any()
		return anyType, anyType, nil
	}
	typ, err := r.projector.TypeOf(node)
	if err != nil {
		return "", "", err
	}
	doc, err := r.projector.DocTypeOf(node)
	if err != nil {
		return "", "", err
	}
	return typ, doc, nil
}

// orderPathParams returns path parameters in the order they appear in the path
func orderPathParams(route string, params []ir.Param) []ir.Param {
	if len(params) == 0 {
		return nil
	}
	byName := make(map[string]ir.Param, len(params))
	for _, p := range params {
		byName[p.Name] = p
	}

	ordered := make([]ir.Param, 0, len(params))
	seen := make(map[string]bool)
	for _, match := range pathParamRe.FindAllStringSubmatch(route, -1) {
		if p, ok := byName[match[1]]; ok && !seen[p.Name] {
			ordered = append(ordered, p)
			seen[p.Name] = true
		}
	}
	// Parameters missing from the template keep their declared order.
	for _, p := range params {
		if !seen[p.Name] {
			ordered = append(ordered, p)
		}
	}
	return ordered
}
