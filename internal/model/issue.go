package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Default display values substituted for absent optional fields. The
// assembly step applies these before any renderer sees the data, so all
// output formats state identical facts.
const (
	DefaultPriority  = "None"
	DefaultAssignee  = "Unassigned"
	DefaultReporter  = "Unknown"
	DefaultAuthor    = "Unknown"
	DefaultLinkLabel = "Web Link"
)

// Relationship tags for structurally derived related issues. Entries that
// come from typed links carry the link's directional label verbatim instead.
const (
	RelationshipSubtask = "subtask"
	RelationshipEpic    = "epic"
)

// IssueSummary is the canonical shape for any issue, root or related.
// Optional fields arrive already defaulted; Created and Updated are opaque
// ISO-8601 strings from the tracker, passed through verbatim.
type IssueSummary struct {
	Key         string
	Summary     string
	Description string
	Status      string
	Type        string
	Priority    string
	Assignee    string
	Reporter    string
	Created     string
	Updated     string
	Labels      []string
	Components  []string
}

// RelatedIssue is an IssueSummary annotated with how it connects to the
// root issue: "subtask", "epic", or a link type's directional label.
type RelatedIssue struct {
	IssueSummary
	Relationship string
}

// ParseKey validates and canonicalizes an issue key such as "PROJ-123".
// Input is trimmed and uppercased; the project part must start with a
// letter and the issue number must be positive.
func ParseKey(input string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(input))
	if s == "" {
		return "", fmt.Errorf("empty issue key")
	}

	dash := strings.LastIndex(s, "-")
	if dash <= 0 || dash == len(s)-1 {
		return "", fmt.Errorf("invalid issue key %q: want PROJECT-NUMBER", input)
	}

	project := s[:dash]
	for i, r := range project {
		switch {
		case r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '_'):
		default:
			return "", fmt.Errorf("invalid issue key %q: bad project prefix", input)
		}
	}

	n, err := strconv.Atoi(s[dash+1:])
	if err != nil {
		return "", fmt.Errorf("invalid issue key %q: %w", input, err)
	}
	if n <= 0 {
		return "", fmt.Errorf("invalid issue key %q: issue number must be positive", input)
	}

	return s, nil
}
