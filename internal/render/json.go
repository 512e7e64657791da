package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jexcli/jex/internal/model"
)

// document is the key-value wire shape. Struct field order fixes the key
// order of the rendered output, and the narrative renderer parses this same
// shape back, so the two formats agree by construction.
type document struct {
	Issue issueDoc `json:"issue"`
}

type issueDoc struct {
	Key         string       `json:"key"`
	Summary     string       `json:"summary"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Created     string       `json:"created"`
	Updated     string       `json:"updated"`
	Priority    string       `json:"priority"`
	Assignee    string       `json:"assignee"`
	Reporter    string       `json:"reporter"`
	Labels      []string     `json:"labels"`
	Type        string       `json:"type"`
	Components  []string     `json:"components"`
	Comments    []commentDoc `json:"comments"`
	WebLinks    []linkDoc    `json:"webLinks"`
	Subtasks    []relatedDoc `json:"subtasks"`
}

type commentDoc struct {
	Author  string `json:"author"`
	Body    string `json:"body"`
	Created string `json:"created"`
	Updated string `json:"updated"`
}

type linkDoc struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	Relationship string `json:"relationship"`
}

type relatedDoc struct {
	Key          string   `json:"key"`
	Summary      string   `json:"summary"`
	Status       string   `json:"status"`
	Assignee     string   `json:"assignee"`
	Type         string   `json:"type"`
	Priority     string   `json:"priority"`
	Created      string   `json:"created"`
	Updated      string   `json:"updated"`
	Relationship string   `json:"relationship"`
	Description  string   `json:"description"`
	Components   []string `json:"components"`
	Labels       []string `json:"labels"`
}

func newDocument(exp *model.IssueExport) document {
	issue := exp.Issue

	doc := issueDoc{
		Key:         issue.Key,
		Summary:     issue.Summary,
		Description: issue.Description,
		Status:      issue.Status,
		Created:     issue.Created,
		Updated:     issue.Updated,
		Priority:    issue.Priority,
		Assignee:    issue.Assignee,
		Reporter:    issue.Reporter,
		Labels:      emptyIfNil(issue.Labels),
		Type:        issue.Type,
		Components:  emptyIfNil(issue.Components),
		Comments:    make([]commentDoc, 0, len(exp.Comments)),
		WebLinks:    make([]linkDoc, 0, len(exp.WebLinks)),
		Subtasks:    make([]relatedDoc, 0, len(exp.Related)),
	}

	for _, c := range exp.Comments {
		doc.Comments = append(doc.Comments, commentDoc{
			Author:  c.Author,
			Body:    c.Body,
			Created: c.Created,
			Updated: c.Updated,
		})
	}

	for _, l := range exp.WebLinks {
		doc.WebLinks = append(doc.WebLinks, linkDoc{
			Title:        l.Title,
			URL:          l.URL,
			Relationship: l.Relationship,
		})
	}

	for _, r := range exp.Related {
		doc.Subtasks = append(doc.Subtasks, relatedDoc{
			Key:          r.Key,
			Summary:      r.Summary,
			Status:       r.Status,
			Assignee:     r.Assignee,
			Type:         r.Type,
			Priority:     r.Priority,
			Created:      r.Created,
			Updated:      r.Updated,
			Relationship: r.Relationship,
			Description:  r.Description,
			Components:   emptyIfNil(r.Components),
			Labels:       emptyIfNil(r.Labels),
		})
	}

	return document{Issue: doc}
}

// JSON renders the snapshot as an indented key-value document under a
// top-level "issue" key. Empty lists render as empty sequences, never as
// absent keys.
func JSON(exp *model.IssueExport) (string, error) {
	if exp.Empty() {
		return "", ErrNoIssue
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newDocument(exp)); err != nil {
		return "", fmt.Errorf("encoding issue document: %w", err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}
