// Package jira wraps the go-jira client behind the small read-only fetch
// surface the export engine consumes.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	gojira "github.com/andygrunwald/go-jira"

	"github.com/jexcli/jex/internal/logx"
)

// Sentinel errors classifying tracker failures.
var (
	ErrNotFound = errors.New("issue not found")
	ErrUpstream = errors.New("tracker unavailable")
)

// Config holds the connection settings for one tracker instance.
type Config struct {
	Server string
	Email  string
	Token  string
}

// Client is a read-only tracker client. All methods map HTTP 404 to
// ErrNotFound and any other transport failure to ErrUpstream.
type Client struct {
	jr  *gojira.Client
	log *logx.Logger
}

// NewClient connects to the tracker using basic email + API-token auth.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Server == "" {
		return nil, fmt.Errorf("missing server URL")
	}

	tp := gojira.BasicAuthTransport{
		Username: cfg.Email,
		Password: cfg.Token,
	}

	jr, err := gojira.NewClient(tp.Client(), cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("creating tracker client: %w", err)
	}

	return &Client{jr: jr, log: logx.New("jira")}, nil
}

// IssueByKey fetches the full issue record for a key.
func (c *Client) IssueByKey(ctx context.Context, key string) (*gojira.Issue, error) {
	issue, resp, err := c.jr.Issue.GetWithContext(ctx, key, nil)
	if err != nil {
		if notFound(resp) {
			return nil, fmt.Errorf("issue %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching issue %s: %w: %v", key, ErrUpstream, err)
	}
	c.log.Debug("fetched issue %s", key)
	return issue, nil
}

// SearchIssues runs a JQL query and returns the matching issues.
func (c *Client) SearchIssues(ctx context.Context, jql string) ([]gojira.Issue, error) {
	issues, _, err := c.jr.Issue.SearchWithContext(ctx, jql, nil)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w: %v", jql, ErrUpstream, err)
	}
	c.log.Debug("search %q matched %d issues", jql, len(issues))
	return issues, nil
}

// commentList mirrors the comment collection endpoint's response body.
type commentList struct {
	Comments []*gojira.Comment `json:"comments"`
}

// Comments fetches the full comment list for an issue.
func (c *Client) Comments(ctx context.Context, issue *gojira.Issue) ([]*gojira.Comment, error) {
	u := fmt.Sprintf("rest/api/2/issue/%s/comment", issue.Key)
	req, err := c.jr.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building comment request for %s: %w", issue.Key, err)
	}

	list := new(commentList)
	resp, err := c.jr.Do(req, list)
	if err != nil {
		if notFound(resp) {
			return nil, fmt.Errorf("comments for %s: %w", issue.Key, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching comments for %s: %w: %v", issue.Key, ErrUpstream, err)
	}
	return list.Comments, nil
}

// RemoteLinks fetches the external web links attached to an issue.
func (c *Client) RemoteLinks(ctx context.Context, issue *gojira.Issue) ([]gojira.RemoteLink, error) {
	links, resp, err := c.jr.Issue.GetRemoteLinksWithContext(ctx, issue.Key)
	if err != nil {
		if notFound(resp) {
			return nil, fmt.Errorf("remote links for %s: %w", issue.Key, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching remote links for %s: %w: %v", issue.Key, ErrUpstream, err)
	}
	if links == nil {
		return nil, nil
	}
	return *links, nil
}

// RawIssue returns the tracker's own JSON record for a key, re-indented but
// otherwise untouched. It never passes through the canonical model.
func (c *Client) RawIssue(ctx context.Context, key string) (string, error) {
	u := fmt.Sprintf("rest/api/2/issue/%s", key)
	req, err := c.jr.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("building raw request for %s: %w", key, err)
	}

	var raw json.RawMessage
	resp, err := c.jr.Do(req, &raw)
	if err != nil {
		if notFound(resp) {
			return "", fmt.Errorf("issue %s: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("fetching raw issue %s: %w: %v", key, ErrUpstream, err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw), nil
	}
	return buf.String(), nil
}

func notFound(resp *gojira.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}
