package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jexcli/jex/internal/model"
)

// Markdown renders the narrative document. It always derives from the JSON
// render: produce the key-value document, parse it back, reshape it. Going
// through the same bytes keeps the two formats stating identical facts.
func Markdown(exp *model.IssueExport) (string, error) {
	doc, err := JSON(exp)
	if err != nil {
		return "", err
	}
	return markdownFromJSON(doc)
}

func markdownFromJSON(jsonDoc string) (string, error) {
	var doc document
	if err := json.Unmarshal([]byte(jsonDoc), &doc); err != nil {
		return "", fmt.Errorf("parsing issue document: %w", err)
	}
	issue := doc.Issue

	var b strings.Builder
	fmt.Fprintf(&b, "# %s - %s\n\n", issue.Key, issue.Summary)

	b.WriteString("## Issue Details\n")
	fmt.Fprintf(&b, "- **Type:** %s\n", issue.Type)
	fmt.Fprintf(&b, "- **Status:** %s\n", issue.Status)
	fmt.Fprintf(&b, "- **Priority:** %s\n\n", issue.Priority)

	b.WriteString("## People\n")
	fmt.Fprintf(&b, "- **Assignee:** %s\n", issue.Assignee)
	fmt.Fprintf(&b, "- **Reporter:** %s\n\n", issue.Reporter)

	b.WriteString("## Dates\n")
	fmt.Fprintf(&b, "- **Created:** %s\n", issue.Created)
	fmt.Fprintf(&b, "- **Updated:** %s\n\n", issue.Updated)

	b.WriteString("## Labels\n")
	b.WriteString(bulletsOrNone(issue.Labels))
	b.WriteString("\n\n")

	b.WriteString("## Components\n")
	b.WriteString(bulletsOrNone(issue.Components))
	b.WriteString("\n\n")

	b.WriteString("## Description\n")
	b.WriteString(issue.Description)
	b.WriteString("\n\n")

	b.WriteString("## Comments\n")
	for _, comment := range issue.Comments {
		fmt.Fprintf(&b, "### %s - %s\n%s\n\n", comment.Author, comment.Created, comment.Body)
	}

	if len(issue.WebLinks) > 0 {
		b.WriteString("\n## Related Links\n")
		for _, link := range issue.WebLinks {
			fmt.Fprintf(&b, "- [%s](%s) (%s)\n", link.Title, link.URL, link.Relationship)
		}
	}

	if len(issue.Subtasks) > 0 {
		b.WriteString("\n## Related Issues\n")
		for _, group := range groupByRelationship(issue.Subtasks) {
			fmt.Fprintf(&b, "\n### %s\n", capitalize(group.relationship))
			for _, item := range group.items {
				writeRelatedItem(&b, item)
			}
		}
	}

	return b.String(), nil
}

// writeRelatedItem renders one related issue. Status, type, and dates are
// always present; the remaining fields are suppressed entirely when empty
// at this nesting level.
func writeRelatedItem(b *strings.Builder, item relatedDoc) {
	fmt.Fprintf(b, "\n#### [%s] %s\n", item.Key, item.Summary)
	fmt.Fprintf(b, "- **Status:** %s\n", item.Status)
	fmt.Fprintf(b, "- **Type:** %s\n", item.Type)
	if item.Assignee != "" {
		fmt.Fprintf(b, "- **Assignee:** %s\n", item.Assignee)
	}
	if item.Priority != "" {
		fmt.Fprintf(b, "- **Priority:** %s\n", item.Priority)
	}
	if len(item.Components) > 0 {
		fmt.Fprintf(b, "- **Components:** %s\n", strings.Join(item.Components, ", "))
	}
	if len(item.Labels) > 0 {
		fmt.Fprintf(b, "- **Labels:** %s\n", strings.Join(item.Labels, ", "))
	}
	fmt.Fprintf(b, "- **Created:** %s\n", item.Created)
	fmt.Fprintf(b, "- **Updated:** %s\n", item.Updated)
	if item.Description != "" {
		fmt.Fprintf(b, "\n%s\n\n", item.Description)
	}
}

func bulletsOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

type relatedGroup struct {
	relationship string
	items        []relatedDoc
}

// groupByRelationship buckets related issues by tag, preserving the order
// in which each tag first appears and the item order within each tag.
func groupByRelationship(items []relatedDoc) []relatedGroup {
	var groups []relatedGroup
	index := make(map[string]int)

	for _, item := range items {
		i, ok := index[item.Relationship]
		if !ok {
			i = len(groups)
			index[item.Relationship] = i
			groups = append(groups, relatedGroup{relationship: item.Relationship})
		}
		groups[i].items = append(groups[i].items, item)
	}

	return groups
}
