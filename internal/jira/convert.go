package jira

import (
	"time"

	gojira "github.com/andygrunwald/go-jira"

	"github.com/jexcli/jex/internal/model"
)

// timeLayout is the timestamp format the Jira REST API emits. Parsed values
// re-serialize with the identical layout, so exported timestamps match the
// wire bytes.
const timeLayout = "2006-01-02T15:04:05.000-0700"

func formatTime(t gojira.Time) string {
	tt := time.Time(t)
	if tt.IsZero() {
		return ""
	}
	return tt.Format(timeLayout)
}

// Summarize projects a fetched issue into the canonical summary, applying
// the documented defaults for absent optional fields. This is the single
// defaulting step; renderers never re-check field presence.
func Summarize(issue *gojira.Issue) model.IssueSummary {
	s := model.IssueSummary{
		Key:        issue.Key,
		Priority:   model.DefaultPriority,
		Assignee:   model.DefaultAssignee,
		Reporter:   model.DefaultReporter,
		Labels:     []string{},
		Components: []string{},
	}

	f := issue.Fields
	if f == nil {
		return s
	}

	s.Summary = f.Summary
	s.Description = f.Description
	s.Type = f.Type.Name
	s.Created = formatTime(f.Created)
	s.Updated = formatTime(f.Updated)

	if f.Status != nil {
		s.Status = f.Status.Name
	}
	if f.Priority != nil && f.Priority.Name != "" {
		s.Priority = f.Priority.Name
	}
	if f.Assignee != nil && f.Assignee.DisplayName != "" {
		s.Assignee = f.Assignee.DisplayName
	}
	if f.Reporter != nil && f.Reporter.DisplayName != "" {
		s.Reporter = f.Reporter.DisplayName
	}

	s.Labels = append(s.Labels, f.Labels...)
	for _, comp := range f.Components {
		if comp != nil {
			s.Components = append(s.Components, comp.Name)
		}
	}

	return s
}

// ConvertComment projects a tracker comment into canonical form. Comment
// timestamps arrive as plain strings and pass through verbatim.
func ConvertComment(c *gojira.Comment) model.Comment {
	out := model.Comment{
		Author:  model.DefaultAuthor,
		Body:    c.Body,
		Created: c.Created,
		Updated: c.Updated,
	}
	if c.Author.DisplayName != "" {
		out.Author = c.Author.DisplayName
	}
	return out
}

// ConvertRemoteLink projects a tracker remote link into canonical form.
func ConvertRemoteLink(rl gojira.RemoteLink) model.WebLink {
	out := model.WebLink{
		Relationship: model.DefaultLinkLabel,
	}
	if rl.Object != nil {
		out.Title = rl.Object.Title
		out.URL = rl.Object.URL
	}
	if rl.Relationship != "" {
		out.Relationship = rl.Relationship
	}
	return out
}
