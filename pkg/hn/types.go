// Package hn implements a client for the Hacker News Firebase API.
// The API exposes ordered ID lists (topstories, newstories, ...) and a
// single-item lookup endpoint; there is no batch endpoint.
// Docs: https://github.com/HackerNews/API
package hn

import "time"

// Upstream list endpoints.
const (
	ListTop  = "topstories"
	ListNew  = "newstories"
	ListBest = "beststories"
	ListAsk  = "askstories"
	ListShow = "showstories"
	ListJob  = "jobstories"
)

// KnownList reports whether name is one of the upstream list endpoints.
func KnownList(name string) bool {
	switch name {
	case ListTop, ListNew, ListBest, ListAsk, ListShow, ListJob:
		return true
	}
	return false
}

// Item is a single Hacker News item as returned by /v0/item/{id}.json.
// Items are treated as immutable values once fetched.
type Item struct {
	// ID is the item's unique, externally assigned identifier.
	ID int64 `json:"id"`

	// Type is one of "story", "comment", "job", "poll", "pollopt".
	Type string `json:"type,omitempty"`

	// By is the username of the submitter.
	By string `json:"by,omitempty"`

	// Title is the story/poll/job title.
	Title string `json:"title,omitempty"`

	// URL is the external link, empty for self posts.
	URL string `json:"url,omitempty"`

	// Text is the self-post body, sanitized to plain text by the client.
	Text string `json:"text,omitempty"`

	// Time is the submission time as a Unix timestamp.
	Time int64 `json:"time,omitempty"`

	// Score is the item's points (engagement count).
	Score int `json:"score,omitempty"`

	// Descendants is the total comment count.
	Descendants int `json:"descendants,omitempty"`

	// Kids are the IDs of direct replies, in ranked display order.
	Kids []int64 `json:"kids,omitempty"`

	// Deleted and Dead mark items that no longer resolve to content.
	Deleted bool `json:"deleted,omitempty"`
	Dead    bool `json:"dead,omitempty"`
}

// CreatedAt returns the submission time.
func (it *Item) CreatedAt() time.Time {
	return time.Unix(it.Time, 0)
}
