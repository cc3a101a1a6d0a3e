package tui

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("tui: search service is required")

// ErrMissingIndexService is returned when the index service is not provided.
var ErrMissingIndexService = errors.New("tui: index service is required")
