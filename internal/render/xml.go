package render

import (
	"encoding/xml"
	"fmt"

	"github.com/jexcli/jex/internal/model"
)

// Wire structs for the structured-markup form. Wrapper containers are
// struct-valued so encoding/xml always emits them, even with zero children.
type xmlDocument struct {
	XMLName     xml.Name      `xml:"issue"`
	Key         string        `xml:"key"`
	Summary     string        `xml:"summary"`
	Description string        `xml:"description"`
	Status      string        `xml:"status"`
	Created     string        `xml:"created"`
	Updated     string        `xml:"updated"`
	Priority    string        `xml:"priority"`
	Assignee    string        `xml:"assignee"`
	Reporter    string        `xml:"reporter"`
	Labels      xmlLabels     `xml:"labels"`
	Type        string        `xml:"type"`
	Components  xmlComponents `xml:"components"`
	Comments    xmlComments   `xml:"comments"`
	WebLinks    xmlWebLinks   `xml:"webLinks"`
	Subtasks    xmlSubtasks   `xml:"subtasks"`
}

type xmlLabels struct {
	Label []string `xml:"label"`
}

type xmlComponents struct {
	Component []string `xml:"component"`
}

type xmlComments struct {
	Comment []xmlComment `xml:"comment"`
}

type xmlComment struct {
	Author  string `xml:"author"`
	Body    string `xml:"body"`
	Created string `xml:"created"`
	Updated string `xml:"updated"`
}

type xmlWebLinks struct {
	Link []xmlLink `xml:"link"`
}

type xmlLink struct {
	Title        string `xml:"title"`
	URL          string `xml:"url"`
	Relationship string `xml:"relationship"`
}

type xmlSubtasks struct {
	Subtask []xmlRelated `xml:"subtask"`
}

type xmlRelated struct {
	Key          string        `xml:"key"`
	Summary      string        `xml:"summary"`
	Status       string        `xml:"status"`
	Assignee     string        `xml:"assignee"`
	Type         string        `xml:"type"`
	Priority     string        `xml:"priority"`
	Created      string        `xml:"created"`
	Updated      string        `xml:"updated"`
	Relationship string        `xml:"relationship"`
	Description  string        `xml:"description"`
	Components   xmlComponents `xml:"components"`
	Labels       xmlLabels     `xml:"labels"`
}

func newXMLDocument(exp *model.IssueExport) xmlDocument {
	issue := exp.Issue

	doc := xmlDocument{
		Key:         issue.Key,
		Summary:     issue.Summary,
		Description: issue.Description,
		Status:      issue.Status,
		Created:     issue.Created,
		Updated:     issue.Updated,
		Priority:    issue.Priority,
		Assignee:    issue.Assignee,
		Reporter:    issue.Reporter,
		Labels:      xmlLabels{Label: emptyIfNil(issue.Labels)},
		Type:        issue.Type,
		Components:  xmlComponents{Component: emptyIfNil(issue.Components)},
	}

	for _, c := range exp.Comments {
		doc.Comments.Comment = append(doc.Comments.Comment, xmlComment{
			Author:  c.Author,
			Body:    c.Body,
			Created: c.Created,
			Updated: c.Updated,
		})
	}

	for _, l := range exp.WebLinks {
		doc.WebLinks.Link = append(doc.WebLinks.Link, xmlLink{
			Title:        l.Title,
			URL:          l.URL,
			Relationship: l.Relationship,
		})
	}

	for _, r := range exp.Related {
		doc.Subtasks.Subtask = append(doc.Subtasks.Subtask, xmlRelated{
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
			Components:   xmlComponents{Component: emptyIfNil(r.Components)},
			Labels:       xmlLabels{Label: emptyIfNil(r.Labels)},
		})
	}

	return doc
}

// XML renders the snapshot as a structured-markup document: one <issue>
// root with scalar child elements and explicit wrapper containers for
// labels, components, comments, web links, and related issues. Wrappers are
// present even when empty, never omitted.
func XML(exp *model.IssueExport) (string, error) {
	if exp.Empty() {
		return "", ErrNoIssue
	}

	out, err := xml.MarshalIndent(newXMLDocument(exp), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding issue markup: %w", err)
	}

	return xml.Header + string(out), nil
}
