// Package importer reads endpoint definitions from files: JSON or YAML
// documents (one object or a list) and curl commands.
package importer

import (
	"bytes"
	"strings"
)

// Format is a recognised input format.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatCurl    Format = "curl"
	FormatUnknown Format = "unknown"
)

// DetectFormat inspects data and returns its format.
func DetectFormat(data []byte) Format {
	s := firstContentLine(data)
	if s == "" {
		return FormatUnknown
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "curl ") || strings.HasPrefix(lower, "curl\t") {
		return FormatCurl
	}
	switch s[0] {
	case '{', '[':
		return FormatJSON
	}
	if looksLikeYAML(data) {
		return FormatYAML
	}
	return FormatUnknown
}

func firstContentLine(data []byte) string {
	for _, line := range bytes.Split(data, []byte("\n")) {
		l := strings.TrimSpace(string(line))
		if l != "" && !strings.HasPrefix(l, "#") {
			return l
		}
	}
	return ""
}

// looksLikeYAML accepts documents whose first content line is a mapping key
// or a list item.
func looksLikeYAML(data []byte) bool {
	for _, line := range bytes.Split(data, []byte("\n")) {
		l := strings.TrimSpace(string(line))
		if l == "" || strings.HasPrefix(l, "#") || l == "---" {
			continue
		}
		if strings.HasPrefix(l, "- ") {
			return true
		}
		key, _, ok := strings.Cut(l, ":")
		return ok && key != "" && !strings.ContainsAny(key, " \t\"'")
	}
	return false
}
