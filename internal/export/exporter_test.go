package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	gojira "github.com/andygrunwald/go-jira"
	"github.com/go-test/deep"

	"github.com/jexcli/jex/internal/jira"
	"github.com/jexcli/jex/internal/model"
)

func TestAssemble(t *testing.T) {
	root := fakeIssue("DEMO-1", "Root issue", "Task")
	root.Fields.Subtasks = []*gojira.Subtask{{Key: "DEMO-2"}}

	client := &fakeClient{
		issues: map[string]*gojira.Issue{
			"DEMO-1": root,
			"DEMO-2": fakeIssue("DEMO-2", "The subtask", "Sub-task"),
		},
		commentsFn: func(*gojira.Issue) ([]*gojira.Comment, error) {
			return []*gojira.Comment{
				{
					Author:  gojira.User{DisplayName: "Jane Doe"},
					Body:    "Looks good.",
					Created: "2024-05-01T11:00:00.000+0200",
					Updated: "2024-05-01T11:00:00.000+0200",
				},
				nil,
			}, nil
		},
		linksFn: func(*gojira.Issue) ([]gojira.RemoteLink, error) {
			return []gojira.RemoteLink{
				{
					Relationship: "mentioned in",
					Object: &gojira.RemoteLinkObject{
						URL:   "https://wiki.example.com/runbook",
						Title: "Runbook",
					},
				},
			}, nil
		},
	}

	got, err := New(client).Assemble(context.Background(), "DEMO-1")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	want := &model.IssueExport{
		Issue: jira.Summarize(root),
		Comments: []model.Comment{
			{
				Author:  "Jane Doe",
				Body:    "Looks good.",
				Created: "2024-05-01T11:00:00.000+0200",
				Updated: "2024-05-01T11:00:00.000+0200",
			},
		},
		WebLinks: []model.WebLink{
			{
				Title:        "Runbook",
				URL:          "https://wiki.example.com/runbook",
				Relationship: "mentioned in",
			},
		},
		Related: []model.RelatedIssue{related(client, "DEMO-2", model.RelationshipSubtask)},
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}
}

func TestAssembleNotFound(t *testing.T) {
	client := &fakeClient{}

	_, err := New(client).Assemble(context.Background(), "DEMO-404")
	if !errors.Is(err, jira.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestAssembleCommentFailure(t *testing.T) {
	client := &fakeClient{
		issues: map[string]*gojira.Issue{"DEMO-1": fakeIssue("DEMO-1", "Root issue", "Task")},
		commentsFn: func(*gojira.Issue) ([]*gojira.Comment, error) {
			return nil, fmt.Errorf("fetching comments: %w", jira.ErrUpstream)
		},
	}

	_, err := New(client).Assemble(context.Background(), "DEMO-1")
	if !errors.Is(err, jira.ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream", err)
	}
	if err == nil || !strings.Contains(err.Error(), "collecting comments") {
		t.Errorf("error %v does not name the failing stage", err)
	}
}

func TestAssembleRemoteLinkFailure(t *testing.T) {
	client := &fakeClient{
		issues: map[string]*gojira.Issue{"DEMO-1": fakeIssue("DEMO-1", "Root issue", "Task")},
		linksFn: func(*gojira.Issue) ([]gojira.RemoteLink, error) {
			return nil, fmt.Errorf("fetching remote links: %w", jira.ErrUpstream)
		},
	}

	_, err := New(client).Assemble(context.Background(), "DEMO-1")
	if !errors.Is(err, jira.ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream", err)
	}
	if err == nil || !strings.Contains(err.Error(), "collecting remote links") {
		t.Errorf("error %v does not name the failing stage", err)
	}
}

func TestExportOneFormats(t *testing.T) {
	client := &fakeClient{issues: map[string]*gojira.Issue{
		"DEMO-1": fakeIssue("DEMO-1", "Fix login bug", "Bug"),
	}}
	exporter := New(client)

	tests := []struct {
		format model.Format
		want   string
	}{
		{model.FormatJSON, `"key": "DEMO-1"`},
		{model.FormatXML, "<key>DEMO-1</key>"},
		{model.FormatMarkdown, "# DEMO-1 - Fix login bug"},
	}
	for _, tt := range tests {
		got, err := exporter.ExportOne(context.Background(), "DEMO-1", tt.format)
		if err != nil {
			t.Fatalf("ExportOne(%s): %v", tt.format, err)
		}
		if !strings.Contains(got, tt.want) {
			t.Errorf("ExportOne(%s) output missing %q:\n%s", tt.format, tt.want, got)
		}
	}
}

func TestExportOneRawBypassesAssembly(t *testing.T) {
	const record = `{
  "key": "DEMO-1"
}`
	client := &fakeClient{
		rawFn: func(key string) (string, error) {
			if key != "DEMO-1" {
				t.Errorf("raw fetch for %s, want DEMO-1", key)
			}
			return record, nil
		},
	}

	got, err := New(client).ExportOne(context.Background(), "DEMO-1", model.FormatRaw)
	if err != nil {
		t.Fatalf("ExportOne(raw): %v", err)
	}
	if got != record {
		t.Errorf("raw content = %q, want %q", got, record)
	}
	if len(client.fetched) != 0 {
		t.Errorf("raw export assembled a snapshot, fetched %v", client.fetched)
	}
}

func TestExportManyIsolation(t *testing.T) {
	client := &fakeClient{issues: map[string]*gojira.Issue{
		"DEMO-1": fakeIssue("DEMO-1", "First issue", "Task"),
		"DEMO-3": fakeIssue("DEMO-3", "Third issue", "Task"),
	}}

	results := New(client).ExportMany(context.Background(), []string{"DEMO-1", "DEMO-2", "DEMO-3"}, model.FormatJSON)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if !results["DEMO-1"].OK() {
		t.Errorf("DEMO-1 failed: %v", results["DEMO-1"].Err)
	}
	if results["DEMO-2"].OK() {
		t.Error("DEMO-2 reported success, want failure")
	}
	if !errors.Is(results["DEMO-2"].Err, jira.ErrNotFound) {
		t.Errorf("DEMO-2 error = %v, want ErrNotFound", results["DEMO-2"].Err)
	}
	if !strings.Contains(results["DEMO-3"].Content, `"key": "DEMO-3"`) {
		t.Errorf("DEMO-3 content missing key:\n%s", results["DEMO-3"].Content)
	}
}
