package model

import (
	"fmt"
	"strings"
)

// Format identifies an export output format.
type Format string

const (
	FormatXML      Format = "xml"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatRaw      Format = "raw"
)

var validFormats = []Format{
	FormatXML,
	FormatJSON,
	FormatMarkdown,
	FormatRaw,
}

// Formats returns all supported formats in display order.
func Formats() []Format {
	return append([]Format(nil), validFormats...)
}

// ParseFormat normalizes and validates a format name.
func ParseFormat(input string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(input)))
	for _, v := range validFormats {
		if f == v {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format %q: must be one of %v", input, validFormats)
}

// Extension returns the output file extension for the format, dot included.
func (f Format) Extension() string {
	switch f {
	case FormatXML:
		return ".xml"
	case FormatJSON:
		return ".json"
	case FormatMarkdown:
		return ".md"
	default:
		return ".txt"
	}
}

// ContentType returns the MIME type used when serving the format over HTTP.
func (f Format) ContentType() string {
	switch f {
	case FormatXML:
		return "application/xml"
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown"
	default:
		return "text/plain"
	}
}

// Description returns a short human-readable summary of the format.
func (f Format) Description() string {
	switch f {
	case FormatXML:
		return "XML format with structured data"
	case FormatJSON:
		return "JSON format for programmatic use"
	case FormatMarkdown:
		return "Markdown format for documentation"
	case FormatRaw:
		return "Raw Jira API response"
	default:
		return ""
	}
}
