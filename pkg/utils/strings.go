// Package utils holds the identifier casing helpers shared by every target.
package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// RemoveAccents removes accents from a string, converting accented characters to their base forms
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SplitCamelCase splits a camelCase or PascalCase string into words. A run of
// capitals stays together, so "XMLHttp" splits into "XML" and "Http".
func SplitCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var parts []string
	var current strings.Builder

	rs := []rune(s)
	for i, r := range rs {
		isNewWord := false
		if i > 0 && isUppercase(r) {
			if !isUppercase(rs[i-1]) {
				isNewWord = true
			} else if i < len(rs)-1 && !isUppercase(rs[i+1]) && !unicode.IsDigit(rs[i+1]) {
				isNewWord = true
			}
		}

		if isNewWord && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isUppercase(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// Words splits s on every non-alphanumeric character and on camel case
// boundaries, after stripping accents.
func Words(s string) []string {
	s = RemoveAccents(strings.TrimSpace(s))
	var words []string
	for _, part := range nonAlnum.Split(s, -1) {
		if part == "" {
			continue
		}
		words = append(words, SplitCamelCase(part)...)
	}
	return words
}

// ToPascalCase converts a string to PascalCase. Every word keeps only its
// first letter upper case: "XMLHttpRequest" becomes "XmlHttpRequest".
func ToPascalCase(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(strings.ToLower(w[1:]))
	}
	return b.String()
}

// ToCamelCase converts a string to camelCase
func ToCamelCase(s string) string {
	p := ToPascalCase(s)
	if p == "" {
		return ""
	}
	return strings.ToLower(p[:1]) + p[1:]
}

// ToSnakeCase converts a string to snake_case
func ToSnakeCase(s string) string {
	words := Words(s)
	for i := range words {
		words[i] = strings.ToLower(words[i])
	}
	return strings.Join(words, "_")
}
