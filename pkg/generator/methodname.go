package generator

import (
	"regexp"
	"strings"

	"github.com/blimu-dev/typegen/pkg/utils"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var toPascalCase = utils.ToPascalCase

// ResolveMethodName chooses the method name for an operation grouped under
// tag: the summary after the tag prefix, then the operationId, then a
// REST-style heuristic over the HTTP method and path.
func ResolveMethodName(tag, summary, operationID, method, path string) string {
	if name := trimTag(summary, tag); name != "" {
		return methodIdentifier(name)
	}

	parsed := trimTag(operationID, tag)
	if parsed == "" {
		parsed = defaultParseOperationID(operationID)
	}
	if parsed != "" {
		return methodIdentifier(parsed)
	}

	return deriveMethodName(method, path)
}

// trimTag returns what follows "tag." in s, or "" when s has no such prefix.
func trimTag(s, tag string) string {
	if tag == "" || !strings.HasPrefix(s, tag+".") {
		return ""
	}
	return s[len(tag)+1:]
}

// methodIdentifier keeps names that are already identifiers, uppercasing the
// first letter, and Pascal-cases anything else.
func methodIdentifier(s string) string {
	if identifierRe.MatchString(s) {
		return strings.ToUpper(s[:1]) + s[1:]
	}
	return toPascalCase(s)
}

// defaultParseOperationID implements built-in parsing:
// - If opID contains "Controller_", return the substring after it
// - If opID is dotted, return the last segment
// - Otherwise return opID as-is
func defaultParseOperationID(opID string) string {
	if opID == "" {
		return ""
	}
	if idx := strings.Index(opID, "Controller_"); idx >= 0 {
		return opID[idx+len("Controller_"):]
	}
	if idx := strings.LastIndexByte(opID, '.'); idx >= 0 {
		return opID[idx+1:]
	}
	return opID
}

// deriveMethodName creates method names using basic REST-style heuristics
//
//	GET /brands -> List
//	POST /brands -> Create
//	GET /brands/{id} -> Get
//	PATCH|PUT /brands/{id} -> Update
//	DELETE /brands/{id} -> Delete
func deriveMethodName(method, path string) string {
	hasID := strings.Contains(path, "{") && strings.Contains(path, "}")
	switch strings.ToUpper(method) {
	case "GET":
		if hasID {
			return "Get"
		}
		return "List"
	case "POST":
		return "Create"
	case "PUT", "PATCH":
		return "Update"
	case "DELETE":
		return "Delete"
	default:
		return toPascalCase(strings.ToLower(method))
	}
}
