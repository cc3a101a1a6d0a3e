package domain

import "fmt"

// Shape is the structural category of a document, derived from its key prefix.
type Shape int

// Known shapes.
const (
	ShapeUnknown Shape = iota
	ShapeTweet
	ShapeSpace
	ShapeDiscordMessage
)

// String returns the display title of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeTweet:
		return "Tweet"
	case ShapeSpace:
		return "Space"
	case ShapeDiscordMessage:
		return "Discord Message"
	default:
		return unknownDescription
	}
}

// headlineField is the field each shape displays as its main content.
func (s Shape) headlineField() string {
	switch s {
	case ShapeTweet, ShapeDiscordMessage:
		return "content"
	case ShapeSpace:
		return "title"
	default:
		return ""
	}
}

// placeholder is shown when the headline field is missing.
func (s Shape) placeholder() string {
	switch s {
	case ShapeTweet, ShapeDiscordMessage:
		return "No content"
	case ShapeSpace:
		return "No title"
	default:
		return "Unknown content"
	}
}

// ResultItem is a single search hit.
type ResultItem struct {
	// Key is the store key of the matched document.
	Key string

	// Shape is computed once from Key when the hit is classified.
	Shape Shape

	// Score is the relevance score. Zero when scores were not requested.
	Score float64

	// Fields holds the returned field values; may be highlighted excerpts.
	Fields map[string]string
}

// Get returns the value of a field and whether it is present.
func (r ResultItem) Get(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Headline returns the shape's main display text, or a placeholder.
// Unknown shapes always render the placeholder.
func (r ResultItem) Headline() string {
	field := r.Shape.headlineField()
	if field == "" {
		return r.Shape.placeholder()
	}
	if v, ok := r.Get(field); ok && v != "" {
		return v
	}
	return r.Shape.placeholder()
}

// ResultPage is one window of search results.
type ResultPage struct {
	// SessionID is the paging session the page belongs to; empty for
	// un-paged executions.
	SessionID string

	// Query is the user's original text.
	Query string

	// Total is the number of matches the store reported. It is an estimate
	// and on pages after the first may be the session's authoritative total.
	Total int

	// Items are ordered by score descending.
	Items []ResultItem

	// Offset is the index of the first item within the full result set.
	Offset int

	// NextOffset is the offset of the following window, or -1 when exhausted.
	NextOffset int

	// Page is the 1-based page number; zero for un-paged executions.
	Page int

	// PageCount is the number of pages implied by Total.
	PageCount int
}

// HasMore returns true if another window follows this one.
func (p ResultPage) HasMore() bool {
	return p.NextOffset >= 0
}

// NextOffsetFor computes the offset following a window of size limit,
// or -1 if the window reaches total.
func NextOffsetFor(offset, limit, total int) int {
	next := offset + limit
	if next >= total {
		return -1
	}
	return next
}

// PageCountFor returns the number of pages of pageSize needed for total items.
func PageCountFor(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ParseShape converts a configuration name ("tweet", "space",
// "discord_message") to a Shape.
func ParseShape(s string) (Shape, error) {
	switch s {
	case "tweet", "Tweet":
		return ShapeTweet, nil
	case "space", "Space", "spaces":
		return ShapeSpace, nil
	case "discord_message", "discord", "DiscordMessage":
		return ShapeDiscordMessage, nil
	default:
		return ShapeUnknown, fmt.Errorf("%w: unknown shape %q", ErrInvalidInput, s)
	}
}
