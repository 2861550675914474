package domain

import "time"

type SnippetID string

// Snippet is a saved piece of code together with the documentation generated
// for it. Snippets belong to exactly one user and are never shared.
type Snippet struct {
	ID            SnippetID
	UserID        string
	Title         string
	Language      string
	Code          string
	Documentation string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
