// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/creativedestruction/searchdash/internal/core/domain"
)

// IndexReady reports the outcome of preparing the index at startup.
type IndexReady struct {
	Status domain.IndexStatus
	Err    error
}

// SearchCompleted carries one page of a session back to the view.
// SessionID and PageNum identify the request so late replies to superseded
// searches or page turns can be dropped.
type SearchCompleted struct {
	SessionID string
	PageNum   int
	Page      *domain.ResultPage
	Err       error
}

// ErrorOccurred reports an error outside a search.
type ErrorOccurred struct {
	Err error
}
