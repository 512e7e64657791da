package export

import (
	"context"
	"fmt"

	gojira "github.com/andygrunwald/go-jira"

	"github.com/jexcli/jex/internal/jira"
	"github.com/jexcli/jex/internal/model"
)

// collect fetches and normalizes the comments and external web links for
// one issue. Unlike related-issue fetches, a failure here is an upstream
// failure for the whole issue export.
func (e *Exporter) collect(ctx context.Context, issue *gojira.Issue) ([]model.Comment, []model.WebLink, error) {
	rawComments, err := e.client.Comments(ctx, issue)
	if err != nil {
		return nil, nil, fmt.Errorf("collecting comments: %w", err)
	}

	comments := make([]model.Comment, 0, len(rawComments))
	for _, rc := range rawComments {
		if rc == nil {
			continue
		}
		comments = append(comments, jira.ConvertComment(rc))
	}

	rawLinks, err := e.client.RemoteLinks(ctx, issue)
	if err != nil {
		return nil, nil, fmt.Errorf("collecting remote links: %w", err)
	}

	links := make([]model.WebLink, 0, len(rawLinks))
	for _, rl := range rawLinks {
		links = append(links, jira.ConvertRemoteLink(rl))
	}

	return comments, links, nil
}
