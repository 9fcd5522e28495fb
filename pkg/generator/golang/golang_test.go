package golang

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/typegen/pkg/config"
	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/naming"
	"github.com/blimu-dev/typegen/pkg/schema"
	"github.com/blimu-dev/typegen/pkg/typing"
)

// squash collapses whitespace so assertions survive gofmt alignment
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func assertParses(t *testing.T, src []byte) {
	t.Helper()
	_, err := parser.ParseFile(token.NewFileSet(), "out.go", src, parser.ParseComments)
	require.NoError(t, err, string(src))
}

func TestDialectProjection(t *testing.T) {
	p := typing.New(Dialect{}, naming.New(""))

	tests := []struct {
		input   string
		typ     string
		docType string
	}{
		{`{"$ref": "#/components/schemas/User.Models.Foo"}`, "UserModelsFoo", "UserModelsFoo"},
		{`{"$ref": "#/components/schemas/Foo"}`, "Foo", "Foo"},
		{`{"type": "boolean"}`, "bool", "bool"},
		{`{"type": "integer", "format": "int32"}`, "int64", "int64"},
		{`{"type": "number"}`, "float64", "float64"},
		{`{"type": "array", "items": {"type": "string"}}`, "[]string", "[]string"},
		{`{"type": "object"}`, "map[string]any", "map[string]any"},
		{`{"type": "object", "properties": {"a": {"type": "integer"}, "b-c": {"type": "string"}}}`, "struct { A int64 `json:\"a\"`; BC string `json:\"b-c\"` }", "struct { A int64 `json:\"a\"`; BC string `json:\"b-c\"` }"},
		{`{"type": "object", "allOf": [{"$ref": "#/components/schemas/A"}, {"$ref": "#/components/schemas/B"}]}`, "struct { A; B }", "struct { A; B }"},
		{`{"type": "object", "additionalProperties": {"$ref": "#/components/schemas/A"}}`, "map[string]any", "[]A"},
	}

	for _, test := range tests {
		typ, err := p.TypeOf(schema.MustParse(test.input))
		require.NoError(t, err, test.input)
		assert.Equal(t, test.typ, typ, test.input)

		doc, err := p.DocTypeOf(schema.MustParse(test.input))
		require.NoError(t, err, test.input)
		assert.Equal(t, test.docType, doc, test.input)
	}
}

func TestArrayObjectInlinesRecordFields(t *testing.T) {
	p := typing.New(Dialect{}, naming.New(""))
	typ, err := p.TypeOf(schema.MustParse(`{"type": "object", "properties": {"id": {"type": "integer"}}, "additionalProperties": {"type": "string"}}`))
	require.NoError(t, err)
	assert.Equal(t, "struct { Id int64 `json:\"id\"`; AdditionalProperties map[string]any `json:\"-\"` }", typ)
}

func TestIntersectionHidesUnnamedParts(t *testing.T) {
	d := Dialect{}
	assert.Equal(t, "struct { A; Part2 []string `json:\"-\"` }", d.Intersection([]string{"A", "[]string"}))
	assert.Equal(t, "struct{}", d.Intersection([]string{"struct{}"}))
}

func TestNullable(t *testing.T) {
	d := Dialect{}
	assert.Equal(t, "*int64", d.Nullable("int64"))
	assert.Equal(t, "*int64", d.Nullable("*int64"))
	assert.Equal(t, "[]string", d.Nullable("[]string"))
	assert.Equal(t, "map[string]any", d.Nullable("map[string]any"))
	assert.Equal(t, "any", d.Nullable("any"))
}

func TestFormatGoComment(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"Simple comment", "// Simple comment"},
		{"Line 1\nLine 2", "// Line 1\n// Line 2"},
		{"Line 1\n\nLine 3", "// Line 1\n//\n// Line 3"},
		{"Especifica quantos dias antes do vencimento a notificação deve se enviada.\n Para o evento  `PAYMENT_DUEDATE_WARNING` os valores aceitos são: `0`, `5`, `10`, `15` e `30`", "// Especifica quantos dias antes do vencimento a notificação deve se enviada.\n// Para o evento  `PAYMENT_DUEDATE_WARNING` os valores aceitos são: `0`, `5`, `10`, `15` e `30`"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, formatGoComment(test.input), test.input)
	}
}

func TestSanitizePackageName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"bungie", "bungie"},
		{"github.com/acme/Bungie-API", "bungieapi"},
		{"2fa", "pkg2fa"},
		{"", "client"},
		{"go", "gopkg"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, sanitizePackageName(test.in), test.in)
	}
}

func TestPackageFallsBackToOutDir(t *testing.T) {
	assert.Equal(t, "bungie", New(config.Target{PackageName: "bungie", OutDir: "/tmp/other"}).Package())
	assert.Equal(t, "bungieapi", New(config.Target{OutDir: "/tmp/out/Bungie-API"}).Package())
	assert.Equal(t, "client", New(config.Target{}).Package())
}

func TestVariable(t *testing.T) {
	assert.Equal(t, "membershipId", variable("membershipId"))
	assert.Equal(t, "groupId", variable("group-id"))
	assert.Equal(t, "typeParam", variable("type"))
	assert.Equal(t, "queryParam", variable("query"))
}

func TestFormatEnum(t *testing.T) {
	model := &ir.Model{
		Kind:        ir.KindEnum,
		Identifier:  "BungieMembershipType",
		Namespace:   []string{"Bungie"},
		Name:        "BungieMembershipType",
		Description: "The types of membership",
		Underlying:  "int64",
		Bitmask:     true,
		Cases: []ir.EnumCase{
			{Identifier: "None", Value: "0"},
			{Identifier: "TigerXbox", Value: "1", Description: "Xbox"},
		},
	}

	out, err := New(config.Target{PackageName: "bungie"}).Format(ir.Artifact{Model: model})
	require.NoError(t, err)
	assertParses(t, out)

	text := squash(string(out))
	assert.True(t, strings.HasPrefix(string(out), "// Code generated by typegen. DO NOT EDIT.\n\npackage bungie\n"))
	assert.Contains(t, text, "// BungieMembershipType is generated from BungieMembershipType. // // The types of membership. // // Values may be combined with bitwise OR. type BungieMembershipType int64")
	assert.Contains(t, text, "const ( BungieMembershipTypeNone BungieMembershipType = 0 // Xbox BungieMembershipTypeTigerXbox BungieMembershipType = 1 )")
}

func TestPunctuate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"The types of membership", "The types of membership."},
		{"Already done.", "Already done."},
		{"Is it?", "Is it?"},
		{"Heading\n\nBody text", "Heading.\n\nBody text."},
		{"Line one\nline two  \n\nNext", "Line one\nline two.\n\nNext."},
		{"  Trimmed  ", "Trimmed."},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, punctuate(test.input), test.input)
	}
}

func TestDescriptionsDoNotBecomeHeadings(t *testing.T) {
	model := &ir.Model{
		Kind:        ir.KindRecord,
		Identifier:  "Destiny.Config.DestinyManifest",
		Namespace:   []string{"Bungie", "Destiny", "Config"},
		Name:        "DestinyManifest",
		Description: "Manifest metadata\n\nDescribes the current version of the content database",
		Members:     []ir.Member{{Name: "version", Type: "string"}},
	}

	out, err := New(config.Target{PackageName: "bungie"}).Format(ir.Artifact{Model: model})
	require.NoError(t, err)
	assertParses(t, out)
	assert.NotContains(t, string(out), "// #")
	assert.Contains(t, string(out), "// Manifest metadata.\n//\n// Describes the current version of the content database.\n")
}

func TestFormatStruct(t *testing.T) {
	model := &ir.Model{
		Kind:       ir.KindRecord,
		Identifier: "User.UserMembership",
		Namespace:  []string{"Bungie", "User"},
		Name:       "UserMembership",
		Extension:  "[]string",
		Members: []ir.Member{
			{Name: "membershipId", Type: "int64", Description: "Membership ID"},
			{Name: "displayName", Type: "*string", Nullable: true},
			{Name: "tags", Type: "[]string"},
		},
	}

	out, err := New(config.Target{PackageName: "bungie"}).Format(ir.Artifact{Model: model})
	require.NoError(t, err)
	assertParses(t, out)

	text := squash(string(out))
	assert.Contains(t, text, "// UserUserMembership is generated from User.UserMembership. // // Additional properties: []string type UserUserMembership struct {")
	assert.Contains(t, text, "// Membership ID MembershipId int64 `json:\"membershipId\"`")
	assert.Contains(t, text, "DisplayName *string `json:\"displayName\"`")
	assert.Contains(t, text, "Tags []string `json:\"tags\"`")
	assert.Contains(t, text, "AdditionalProperties map[string]any `json:\"-\"` }")
}

func TestFormatService(t *testing.T) {
	svc := &ir.Service{
		Tag:       "User",
		Namespace: []string{"Bungie"},
		Name:      "User",
		Methods: []ir.Method{
			{
				Name:          "GetBungieNetUserById",
				HTTPMethod:    "GET",
				Path:          "/User/GetBungieNetUserById/{id}/",
				Description:   "Loads a bungienet user by membership id.",
				PathParams:    []ir.Param{{Name: "id", In: "path", Type: "int64", Required: true}},
				QueryParams:   []ir.Param{{Name: "components", In: "query", Type: "[]int64"}, {Name: "page", In: "query", Type: "int64", Description: "Page to fetch"}},
				ReturnType:    "UserGeneralUser",
				ReturnDocType: "UserGeneralUser",
			},
			{
				Name:       "UpdateState",
				HTTPMethod: "POST",
				Path:       "/User/State/",
				Deprecated: true,
				Body:       &ir.Body{Type: "UserState", Required: true},
			},
		},
	}

	out, err := New(config.Target{PackageName: "bungie"}).Format(ir.Artifact{Service: svc})
	require.NoError(t, err)
	assertParses(t, out)

	text := squash(string(out))
	assert.Contains(t, text, `import "context"`)
	assert.Contains(t, text, "// UserService groups the operations tagged User. type UserService struct { requester Requester }")
	assert.Contains(t, text, "func NewUserService(r Requester) *UserService { return &UserService{requester: r} }")
	assert.Contains(t, text, "type UserGetBungieNetUserByIdQuery struct { Components []int64 // Page to fetch Page *int64 }")
	assert.Contains(t, text, "// GetBungieNetUserById calls GET /User/GetBungieNetUserById/{id}/. // // Loads a bungienet user by membership id.")
	assert.Contains(t, text, "func (s *UserService) GetBungieNetUserById(ctx context.Context, id int64, query UserGetBungieNetUserByIdQuery) (UserGeneralUser, error) {")
	assert.Contains(t, text, `err := s.requester.Do(ctx, "GET", expandPath("/User/GetBungieNetUserById/{id}/", map[string]any{"id": id}), map[string]any{"components": query.Components, "page": query.Page}, nil, &out)`)
	assert.Contains(t, text, "// Deprecated: the API marks this operation as deprecated.")
	assert.Contains(t, text, "func (s *UserService) UpdateState(ctx context.Context, body UserState) error {")
	assert.Contains(t, text, `return s.requester.Do(ctx, "POST", "/User/State/", nil, body, nil)`)
}

func TestFieldNames(t *testing.T) {
	assert.Equal(t, []string{"FooBar", "FooBar2", "FooBar3", "X1st"}, fieldNames([]string{"foo_bar", "fooBar", "FooBar", "1st"}))
	assert.Equal(t, []string{"AdditionalProperties2", "Id"}, fieldNames([]string{"additionalProperties", "id"}, "AdditionalProperties"))
}

func TestCollidingPropertiesTypeCheck(t *testing.T) {
	p := typing.New(Dialect{}, naming.New(""))
	typ, err := p.TypeOf(schema.MustParse(`{"type": "object", "properties": {"foo_bar": {"type": "string"}, "fooBar": {"type": "integer"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "struct { FooBar string `json:\"foo_bar\"`; FooBar2 int64 `json:\"fooBar\"` }", typ)

	model := &ir.Model{
		Kind:       ir.KindRecord,
		Identifier: "Destiny.Stats",
		Namespace:  []string{"Bungie", "Destiny"},
		Name:       "Stats",
		Extension:  "float64",
		Members: []ir.Member{
			{Name: "foo_bar", Type: "string"},
			{Name: "fooBar", Type: "int64"},
			{Name: "additionalProperties", Type: "bool"},
		},
	}
	out, err := New(config.Target{PackageName: "bungie"}).Format(ir.Artifact{Model: model})
	require.NoError(t, err)

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "stats.go", out, parser.ParseComments)
	require.NoError(t, err)
	_, err = (&types.Config{}).Check("bungie", fset, []*ast.File{file}, nil)
	require.NoError(t, err, string(out))

	text := squash(string(out))
	assert.Contains(t, text, "FooBar string `json:\"foo_bar\"` FooBar2 int64 `json:\"fooBar\"` AdditionalProperties2 bool `json:\"additionalProperties\"`")
}

func TestCollidingQueryParams(t *testing.T) {
	svc := &ir.Service{
		Tag:       "Destiny2",
		Namespace: []string{"Bungie"},
		Name:      "Destiny2",
		Methods: []ir.Method{{
			Name:        "Search",
			HTTPMethod:  "GET",
			Path:        "/Destiny2/Search/",
			QueryParams: []ir.Param{{Name: "page_size", In: "query", Type: "int64"}, {Name: "pageSize", In: "query", Type: "int64"}},
		}},
	}

	out, err := New(config.Target{PackageName: "bungie"}).Format(ir.Artifact{Service: svc})
	require.NoError(t, err)
	assertParses(t, out)

	text := squash(string(out))
	assert.Contains(t, text, "type Destiny2SearchQuery struct { PageSize *int64 PageSize2 *int64 }")
	assert.Contains(t, text, `map[string]any{"page_size": query.PageSize, "pageSize": query.PageSize2}`)
}

func TestFormatServiceWithoutMethodsSkipsImport(t *testing.T) {
	out, err := New(config.Target{}).Format(ir.Artifact{Service: &ir.Service{Tag: "Empty", Namespace: []string{"Bungie"}, Name: "Empty"}})
	require.NoError(t, err)
	assertParses(t, out)
	assert.NotContains(t, string(out), "import")
}

func TestPaths(t *testing.T) {
	target := New(config.Target{})
	assert.Equal(t, "user_models_foo.go", target.ModelPath(ir.Model{Namespace: []string{"Bungie", "User", "Models"}, Name: "Foo"}))
	assert.Equal(t, "load_test_.go", target.ModelPath(ir.Model{Namespace: []string{"Bungie"}, Name: "LoadTest"}))
	assert.Equal(t, "user_service.go", target.ServicePath(ir.Service{Namespace: []string{"Bungie"}, Name: "User"}))
}

func TestSupportFiles(t *testing.T) {
	files, err := New(config.Target{PackageName: "bungie"}).SupportFiles("Bungie")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "requester.go", files[0].Path)
	assertParses(t, files[0].Content)
	assert.Contains(t, string(files[0].Content), "type Requester interface {")
	assert.Contains(t, string(files[0].Content), "func expandPath(route string, params map[string]any) string {")
}
