package search

import (
	"context"
	"time"
)

// Source identifies which backend produced a result.
type Source string

const (
	SourceBird Source = "bird"
	SourceXAI  Source = "xai"
)

// Post is a single X/Twitter post in a search result.
type Post struct {
	ID        string    `json:"id,omitempty"`
	Author    string    `json:"author,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	URL       string    `json:"url,omitempty"`
	Likes     int       `json:"likes,omitempty"`
	Reposts   int       `json:"reposts,omitempty"`
	Replies   int       `json:"replies,omitempty"`
}

// Result is the outcome of a search against one backend.
type Result struct {
	Source   Source `json:"source"`
	Topic    string `json:"topic"`
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
	Posts    []Post `json:"posts"`
	// Summary is backend-provided prose about the results, when available.
	Summary string `json:"summary,omitempty"`
}

// Empty reports whether the result carries no posts and no summary.
func (r *Result) Empty() bool {
	return r == nil || (len(r.Posts) == 0 && r.Summary == "")
}

// AuthStatus describes Bird CLI authentication state.
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	Handle        string `json:"handle,omitempty"`
	Detail        string `json:"detail,omitempty"`
}

// Searcher runs a search against one backend.
type Searcher interface {
	Search(ctx context.Context, q Query) (*Result, error)
}

// StatusReporter reports backend authentication state.
type StatusReporter interface {
	Status(ctx context.Context) (*AuthStatus, error)
}
