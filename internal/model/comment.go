package model

// Comment is a single issue comment in canonical form. Timestamps are the
// tracker's own strings, passed through untouched.
type Comment struct {
	Author  string
	Body    string
	Created string
	Updated string
}

// WebLink is an external link attached to an issue.
type WebLink struct {
	Title        string
	URL          string
	Relationship string
}
