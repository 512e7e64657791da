package export

import (
	"context"

	"github.com/jexcli/jex/internal/jira"
	"github.com/jexcli/jex/internal/logx"
	"github.com/jexcli/jex/internal/model"
	"github.com/jexcli/jex/internal/render"
)

// Exporter sequences a full issue export: fetch the root issue, collect its
// comments and web links, walk its relationships, assemble the canonical
// snapshot, and render it.
type Exporter struct {
	client Client
	walker *Walker
	log    *logx.Logger
}

// New returns an exporter backed by the given tracker client.
func New(client Client) *Exporter {
	return &Exporter{
		client: client,
		walker: NewWalker(client),
		log:    logx.New("exporter"),
	}
}

// Result is the outcome of exporting one issue in a batch.
type Result struct {
	Content string
	Err     error
}

// OK reports whether the export produced content.
func (r Result) OK() bool {
	return r.Err == nil
}

// Assemble fetches everything needed for one issue and builds the canonical
// snapshot. The snapshot is complete before any renderer sees it, so a
// caller requesting several formats assembles once and renders repeatedly.
func (e *Exporter) Assemble(ctx context.Context, key string) (*model.IssueExport, error) {
	root, err := e.client.IssueByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	comments, links, err := e.collect(ctx, root)
	if err != nil {
		return nil, err
	}

	return &model.IssueExport{
		Issue:    jira.Summarize(root),
		Comments: comments,
		WebLinks: links,
		Related:  e.walker.Walk(ctx, root),
	}, nil
}

// ExportOne renders a single issue in the requested format. The raw format
// bypasses assembly entirely and returns the tracker's own record.
func (e *Exporter) ExportOne(ctx context.Context, key string, format model.Format) (string, error) {
	if format == model.FormatRaw {
		return e.client.RawIssue(ctx, key)
	}

	exp, err := e.Assemble(ctx, key)
	if err != nil {
		return "", err
	}
	return render.Render(exp, format)
}

// ExportMany renders a batch sequentially with per-issue isolation: the
// returned map has exactly one entry per requested key, and one key's
// failure never aborts the rest.
func (e *Exporter) ExportMany(ctx context.Context, keys []string, format model.Format) map[string]Result {
	results := make(map[string]Result, len(keys))
	for _, key := range keys {
		content, err := e.ExportOne(ctx, key, format)
		if err != nil {
			e.log.Warn("export of %s failed: %v", key, err)
			results[key] = Result{Err: err}
			continue
		}
		results[key] = Result{Content: content}
	}
	return results
}
