package domain

import (
	"fmt"
	"strings"
)

// QueryMode selects how raw user text is compiled into a store expression.
type QueryMode string

// Available query modes.
const (
	// QueryModeWeighted ORs the text across every schema field.
	QueryModeWeighted QueryMode = "weighted"

	// QueryModeRaw passes the text to the store grammar unescaped.
	QueryModeRaw QueryMode = "raw"

	// QueryModeFuzzy escapes grammar characters and wraps the text in wildcards.
	QueryModeFuzzy QueryMode = "fuzzy"
)

// ParseQueryMode converts a string to a QueryMode.
func ParseQueryMode(s string) (QueryMode, error) {
	m := QueryMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: unknown query mode %q", ErrInvalidInput, s)
	}
	return m, nil
}

// IsValid returns true if the query mode is recognised.
func (m QueryMode) IsValid() bool {
	switch m {
	case QueryModeWeighted, QueryModeRaw, QueryModeFuzzy:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m QueryMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m QueryMode) Description() string {
	switch m {
	case QueryModeWeighted:
		return "Weighted (any field, ranked by field weight)"
	case QueryModeRaw:
		return "Raw (native query syntax)"
	case QueryModeFuzzy:
		return "Fuzzy (literal substring match)"
	default:
		return unknownDescription
	}
}

// QueryRequest is a user query before compilation.
type QueryRequest struct {
	RawText    string
	Mode       QueryMode
	Offset     int
	Limit      int
	WantScores bool
}

// Validate checks the request can be compiled.
func (r QueryRequest) Validate() error {
	if strings.TrimSpace(r.RawText) == "" {
		return fmt.Errorf("%w: query text is empty", ErrInvalidInput)
	}
	if !r.Mode.IsValid() {
		return fmt.Errorf("%w: unknown query mode %q", ErrInvalidInput, r.Mode)
	}
	if r.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", ErrInvalidInput)
	}
	if r.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}
	return nil
}

// CompiledQuery is a store expression plus paging and option flags.
// It is a value; use WithWindow to derive follow-up pages.
type CompiledQuery struct {
	// Expression is the store-grammar query string.
	Expression string

	// RawText is the user's original text, kept for diagnostics.
	RawText string

	// Mode is the mode the expression was compiled under.
	Mode QueryMode

	Offset int
	Limit  int

	// WithScores requests relevance scores with each hit.
	WithScores bool

	// NoContent requests keys (and scores) only.
	NoContent bool

	// Highlight requests match highlighting in returned fields.
	Highlight bool

	// Summarize requests excerpts of matched regions instead of whole fields.
	Summarize bool
}

// WithWindow returns a copy of the query for another offset/limit window.
func (q CompiledQuery) WithWindow(offset, limit int) CompiledQuery {
	q.Offset = offset
	q.Limit = limit
	return q
}
