package model

// IssueExport is the fully assembled snapshot of one issue that every
// renderer consumes: the root issue plus its comments, external links, and
// one-hop related issues. It is built fresh per export call, completely
// assembled before any renderer runs, and never cached.
type IssueExport struct {
	Issue    IssueSummary
	Comments []Comment
	WebLinks []WebLink
	Related  []RelatedIssue
}

// Empty reports whether the export has no root issue to render.
func (e *IssueExport) Empty() bool {
	return e == nil || e.Issue.Key == ""
}
