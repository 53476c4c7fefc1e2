package core

import (
	"html"
	"regexp"
	"strings"
)

var tagsRegex = regexp.MustCompile(`(?s)<[^>]*>`)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// StripTags removes HTML tags from `s`, unescapes entities and trims the result.
func StripTags(s string) string {
	return CleanString(html.UnescapeString(tagsRegex.ReplaceAllString(s, "")))
}
