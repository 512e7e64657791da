// Package export assembles canonical issue snapshots from a tracker and
// renders them into the requested output format.
package export

import (
	"context"

	gojira "github.com/andygrunwald/go-jira"
)

// Client is the tracker capability the engine consumes. The internal/jira
// package provides the production implementation; tests substitute fakes.
type Client interface {
	IssueByKey(ctx context.Context, key string) (*gojira.Issue, error)
	SearchIssues(ctx context.Context, jql string) ([]gojira.Issue, error)
	Comments(ctx context.Context, issue *gojira.Issue) ([]*gojira.Comment, error)
	RemoteLinks(ctx context.Context, issue *gojira.Issue) ([]gojira.RemoteLink, error)
	RawIssue(ctx context.Context, key string) (string, error)
}
