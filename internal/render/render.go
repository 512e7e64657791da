// Package render turns canonical issue snapshots into output documents.
// Each renderer is a pure function from snapshot to text; none of them
// perform I/O or share state.
package render

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/jexcli/jex/internal/model"
)

// ErrNoIssue reports a snapshot with no root issue. Renderers return it
// instead of producing a partially filled document.
var ErrNoIssue = errors.New("no issue to render")

// Render dispatches to the renderer for the given format. The raw format is
// not a rendered form and is rejected here; the orchestrator resolves raw
// exports against the tracker directly.
func Render(exp *model.IssueExport, format model.Format) (string, error) {
	switch format {
	case model.FormatXML:
		return XML(exp)
	case model.FormatJSON:
		return JSON(exp)
	case model.FormatMarkdown:
		return Markdown(exp)
	default:
		return "", fmt.Errorf("no renderer for format %q", format)
	}
}

// capitalize uppercases the first rune and lowercases the rest, so
// "is blocked by" becomes "Is blocked by".
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return string(unicode.ToUpper(r[0])) + strings.ToLower(string(r[1:]))
}

// emptyIfNil normalizes a nil slice so list fields render as empty
// sequences, never as absent or null values.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
