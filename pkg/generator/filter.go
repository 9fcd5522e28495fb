package generator

import (
	"fmt"
	"regexp"
)

// compileTagFilters compiles regex patterns for tag filtering
func compileTagFilters(include, exclude []string) ([]*regexp.Regexp, []*regexp.Regexp, error) {
	inc := make([]*regexp.Regexp, 0, len(include))
	for _, p := range include {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid includeTags pattern %q: %w", p, err)
		}
		inc = append(inc, r)
	}
	exc := make([]*regexp.Regexp, 0, len(exclude))
	for _, p := range exclude {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid excludeTags pattern %q: %w", p, err)
		}
		exc = append(exc, r)
	}
	return inc, exc, nil
}

// shouldIncludeTag reports whether a service tag passes the filters.
// Without include patterns every tag is included; exclude wins over include.
func shouldIncludeTag(tag string, include, exclude []*regexp.Regexp) bool {
	included := len(include) == 0
	for _, r := range include {
		if r.MatchString(tag) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, r := range exclude {
		if r.MatchString(tag) {
			return false
		}
	}
	return true
}

// filterTags keeps the tags that pass the filters, preserving order.
func filterTags(all []string, include, exclude []*regexp.Regexp) []string {
	out := make([]string, 0, len(all))
	for _, t := range all {
		if shouldIncludeTag(t, include, exclude) {
			out = append(out, t)
		}
	}
	return out
}
