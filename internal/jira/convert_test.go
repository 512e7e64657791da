package jira

import (
	"testing"
	"time"

	gojira "github.com/andygrunwald/go-jira"
	"github.com/stretchr/testify/assert"

	"github.com/jexcli/jex/internal/model"
)

func TestSummarizeAppliesDefaults(t *testing.T) {
	t.Parallel()

	issue := &gojira.Issue{
		Key: "DEMO-1",
		Fields: &gojira.IssueFields{
			Summary: "Fix login bug",
			Type:    gojira.IssueType{Name: "Bug"},
			Status:  &gojira.Status{Name: "Open"},
		},
	}

	got := Summarize(issue)

	assert.Equal(t, "DEMO-1", got.Key)
	assert.Equal(t, "Fix login bug", got.Summary)
	assert.Equal(t, model.DefaultPriority, got.Priority)
	assert.Equal(t, model.DefaultAssignee, got.Assignee)
	assert.Equal(t, model.DefaultReporter, got.Reporter)
	assert.Equal(t, "", got.Description)
	assert.NotNil(t, got.Labels)
	assert.Empty(t, got.Labels)
	assert.NotNil(t, got.Components)
	assert.Empty(t, got.Components)
}

func TestSummarizeFullIssue(t *testing.T) {
	t.Parallel()

	created := gojira.Time(time.Date(2024, 5, 1, 10, 30, 0, 0, time.FixedZone("", 2*3600)))
	updated := gojira.Time(time.Date(2024, 5, 2, 9, 15, 0, 0, time.FixedZone("", 2*3600)))

	issue := &gojira.Issue{
		Key: "OPS-7",
		Fields: &gojira.IssueFields{
			Summary:     "Rotate credentials",
			Description: "Quarterly rotation",
			Type:        gojira.IssueType{Name: "Task"},
			Status:      &gojira.Status{Name: "In Progress"},
			Priority:    &gojira.Priority{Name: "High"},
			Assignee:    &gojira.User{DisplayName: "Jane Doe"},
			Reporter:    &gojira.User{DisplayName: "John Smith"},
			Created:     created,
			Updated:     updated,
			Labels:      []string{"security", "ops"},
			Components:  []*gojira.Component{{Name: "auth"}, {Name: "infra"}},
		},
	}

	got := Summarize(issue)

	assert.Equal(t, "OPS-7", got.Key)
	assert.Equal(t, "Quarterly rotation", got.Description)
	assert.Equal(t, "In Progress", got.Status)
	assert.Equal(t, "High", got.Priority)
	assert.Equal(t, "Jane Doe", got.Assignee)
	assert.Equal(t, "John Smith", got.Reporter)
	assert.Equal(t, "2024-05-01T10:30:00.000+0200", got.Created)
	assert.Equal(t, "2024-05-02T09:15:00.000+0200", got.Updated)
	assert.Equal(t, []string{"security", "ops"}, got.Labels)
	assert.Equal(t, []string{"auth", "infra"}, got.Components)
}

func TestSummarizeNilFields(t *testing.T) {
	t.Parallel()

	got := Summarize(&gojira.Issue{Key: "DEMO-9"})

	assert.Equal(t, "DEMO-9", got.Key)
	assert.Equal(t, model.DefaultPriority, got.Priority)
	assert.Equal(t, model.DefaultAssignee, got.Assignee)
	assert.Equal(t, model.DefaultReporter, got.Reporter)
	assert.Equal(t, "", got.Created)
	assert.Equal(t, "", got.Status)
}

func TestConvertComment(t *testing.T) {
	t.Parallel()

	c := &gojira.Comment{
		Author:  gojira.User{DisplayName: "Jane Doe"},
		Body:    "Looks good to me",
		Created: "2024-05-01T11:00:00.000+0200",
		Updated: "2024-05-01T11:05:00.000+0200",
	}

	got := ConvertComment(c)
	assert.Equal(t, "Jane Doe", got.Author)
	assert.Equal(t, "Looks good to me", got.Body)
	assert.Equal(t, "2024-05-01T11:00:00.000+0200", got.Created)
	assert.Equal(t, "2024-05-01T11:05:00.000+0200", got.Updated)
}

func TestConvertCommentAnonymous(t *testing.T) {
	t.Parallel()

	got := ConvertComment(&gojira.Comment{Body: "drive-by note"})
	assert.Equal(t, model.DefaultAuthor, got.Author)
	assert.Equal(t, "drive-by note", got.Body)
}

func TestConvertRemoteLink(t *testing.T) {
	t.Parallel()

	rl := gojira.RemoteLink{
		Relationship: "mentioned in",
		Object: &gojira.RemoteLinkObject{
			URL:   "https://wiki.example.com/runbook",
			Title: "Runbook",
		},
	}

	got := ConvertRemoteLink(rl)
	assert.Equal(t, "Runbook", got.Title)
	assert.Equal(t, "https://wiki.example.com/runbook", got.URL)
	assert.Equal(t, "mentioned in", got.Relationship)
}

func TestConvertRemoteLinkDefaults(t *testing.T) {
	t.Parallel()

	got := ConvertRemoteLink(gojira.RemoteLink{
		Object: &gojira.RemoteLinkObject{URL: "https://example.com"},
	})
	assert.Equal(t, "", got.Title)
	assert.Equal(t, model.DefaultLinkLabel, got.Relationship)

	empty := ConvertRemoteLink(gojira.RemoteLink{})
	assert.Equal(t, "", empty.URL)
	assert.Equal(t, model.DefaultLinkLabel, empty.Relationship)
}

func TestFormatTimeRoundTrip(t *testing.T) {
	t.Parallel()

	var parsed gojira.Time
	err := parsed.UnmarshalJSON([]byte(`"2024-05-01T10:30:00.000+0200"`))
	assert.NoError(t, err)
	assert.Equal(t, "2024-05-01T10:30:00.000+0200", formatTime(parsed))

	assert.Equal(t, "", formatTime(gojira.Time{}))
}
