package export

import (
	"context"
	"fmt"
	"strings"

	gojira "github.com/andygrunwald/go-jira"

	"github.com/jexcli/jex/internal/jira"
	"github.com/jexcli/jex/internal/logx"
	"github.com/jexcli/jex/internal/model"
)

// Walker resolves the one-hop related-issue set for a root issue: direct
// subtasks, then epic children, then typed links. It never recurses into a
// related issue's own relationships.
type Walker struct {
	client Client
	log    *logx.Logger
}

// NewWalker returns a walker backed by the given tracker client.
func NewWalker(client Client) *Walker {
	return &Walker{client: client, log: logx.New("walker")}
}

// Walk gathers related issues sequentially, one fetch at a time, preserving
// the tracker's ordering within each group. A fetch failure for one related
// issue is skipped and logged; an epic-search failure degrades the result to
// zero epic children instead of failing the walk.
func (w *Walker) Walk(ctx context.Context, root *gojira.Issue) []model.RelatedIssue {
	related := make([]model.RelatedIssue, 0)
	index := make(map[string]int)

	// A key reached through two paths keeps its first slot; the later
	// record and relationship win. The root never relates to itself.
	add := func(summary model.IssueSummary, relationship string) {
		if summary.Key == root.Key {
			return
		}
		entry := model.RelatedIssue{IssueSummary: summary, Relationship: relationship}
		if i, ok := index[summary.Key]; ok {
			related[i] = entry
			return
		}
		index[summary.Key] = len(related)
		related = append(related, entry)
	}

	fields := root.Fields
	if fields == nil {
		fields = &gojira.IssueFields{}
	}

	for _, subtask := range fields.Subtasks {
		if subtask == nil {
			continue
		}
		full, err := w.client.IssueByKey(ctx, subtask.Key)
		if err != nil {
			w.log.Warn("skipping subtask %s of %s: %v", subtask.Key, root.Key, err)
			continue
		}
		add(jira.Summarize(full), model.RelationshipSubtask)
	}

	if strings.EqualFold(fields.Type.Name, "epic") {
		jql := fmt.Sprintf(`parent = %s OR "Epic Link" = %s`, root.Key, root.Key)
		children, err := w.client.SearchIssues(ctx, jql)
		if err != nil {
			w.log.Warn("epic search for %s failed: %v", root.Key, err)
		}
		for _, child := range children {
			full, err := w.client.IssueByKey(ctx, child.Key)
			if err != nil {
				w.log.Warn("skipping epic child %s of %s: %v", child.Key, root.Key, err)
				continue
			}
			add(jira.Summarize(full), model.RelationshipEpic)
		}
	}

	for _, link := range fields.IssueLinks {
		if link == nil {
			continue
		}

		// A link carries exactly one directional reference.
		var key, relationship string
		switch {
		case link.OutwardIssue != nil:
			key = link.OutwardIssue.Key
			relationship = link.Type.Outward
		case link.InwardIssue != nil:
			key = link.InwardIssue.Key
			relationship = link.Type.Inward
		default:
			continue
		}

		full, err := w.client.IssueByKey(ctx, key)
		if err != nil {
			w.log.Warn("skipping linked issue %s of %s: %v", key, root.Key, err)
			continue
		}
		add(jira.Summarize(full), relationship)
	}

	return related
}
