// Package model defines the domain types used across the application.
package model

// StatusCode describes where a single fetch attempt is in its lifecycle.
// An attempt starts at StatusIdle, moves to StatusProcessing once a request
// is issued, and ends at exactly one terminal value.
type StatusCode int

// Supported status codes.
const (
	StatusIdle StatusCode = iota
	StatusProcessing
	StatusNotInitialized
	StatusFailedOrEmpty
	StatusOK
)

func (s StatusCode) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusProcessing:
		return "processing"
	case StatusNotInitialized:
		return "not_initialized"
	case StatusFailedOrEmpty:
		return "failed_or_empty"
	case StatusOK:
		return "ok"
	}
	return "unknown"
}

// IsTerminal reports whether s ends an attempt.
func (s StatusCode) IsTerminal() bool {
	switch s {
	case StatusNotInitialized, StatusFailedOrEmpty, StatusOK:
		return true
	}
	return false
}

// FetchRequest holds the parameters of one feed query. It is built once per
// attempt and never modified.
type FetchRequest struct {
	BaseURL  string
	Tags     string
	Lang     string
	MatchAll bool
}

// PhotoRecord is one parsed feed item.
type PhotoRecord struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	AuthorID string `json:"author_id"`
	// Tags is the raw tag text as delivered by the feed.
	Tags     string `json:"tags"`
	MediaURL string `json:"media_url"`
	LargeURL string `json:"large_url"`
}

// FetchResult pairs the records of an attempt with its terminal status.
// Records is nil unless Status is StatusOK.
type FetchResult struct {
	Records []PhotoRecord
	Status  StatusCode
}

// OK reports whether the attempt succeeded.
func (r FetchResult) OK() bool {
	return r.Status == StatusOK
}
