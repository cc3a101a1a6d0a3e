package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexNotReady indicates a query arrived before the index was ensured.
	ErrIndexNotReady = errors.New("index not ready")

	// Store Errors.
	// Driven adapters wrap these so services can classify failures with errors.Is.

	// ErrIndexNotFound indicates the store has no index with the requested name.
	ErrIndexNotFound = errors.New("index not found")

	// ErrIndexExists indicates an index creation raced with another creator.
	ErrIndexExists = errors.New("index already exists")

	// ErrQueryRejected indicates the store could not parse or run a query expression.
	ErrQueryRejected = errors.New("query rejected")

	// ErrStoreTimeout indicates a store call exceeded its deadline.
	ErrStoreTimeout = errors.New("store timeout")

	// ErrConnectionLost indicates the store connection failed or was refused.
	ErrConnectionLost = errors.New("connection lost")

	// ErrUnauthorized indicates the store rejected our credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// IndexErrorKind classifies an index lifecycle failure.
type IndexErrorKind int

// Index error kinds.
const (
	IndexNotFound IndexErrorKind = iota
	IndexAlreadyExists
	IndexSchemaMismatch
	IndexCreateFailed
	IndexProbeFailed
	IndexDropFailed
)

// String returns the kind name.
func (k IndexErrorKind) String() string {
	switch k {
	case IndexNotFound:
		return "not found"
	case IndexAlreadyExists:
		return "already exists"
	case IndexSchemaMismatch:
		return "schema mismatch"
	case IndexCreateFailed:
		return "create failed"
	case IndexProbeFailed:
		return "probe failed"
	case IndexDropFailed:
		return "drop failed"
	default:
		return unknownDescription
	}
}

// IndexError reports a failure while ensuring, dropping or describing an index.
type IndexError struct {
	Kind  IndexErrorKind
	Index string
	Err   error
}

func (e *IndexError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("index %s: %s", e.Index, e.Kind)
	}
	return fmt.Sprintf("index %s: %s: %v", e.Index, e.Kind, e.Err)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

// SearchErrorKind classifies a failed search.
type SearchErrorKind int

// Search error kinds.
const (
	SearchIndexMissing SearchErrorKind = iota
	SearchQueryRejected
	SearchTimeout
	SearchConnectionLost
)

// String returns the kind name.
func (k SearchErrorKind) String() string {
	switch k {
	case SearchIndexMissing:
		return "index missing"
	case SearchQueryRejected:
		return "query rejected"
	case SearchTimeout:
		return "timeout"
	case SearchConnectionLost:
		return "connection lost"
	default:
		return unknownDescription
	}
}

// Retryable reports whether re-issuing the same request may succeed.
func (k SearchErrorKind) Retryable() bool {
	return k == SearchTimeout || k == SearchConnectionLost
}

// SearchError reports a failed search. Query is the user's original text.
type SearchError struct {
	Kind  SearchErrorKind
	Query string
	Err   error
}

func (e *SearchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("search %q: %s", e.Query, e.Kind)
	}
	return fmt.Sprintf("search %q: %s: %v", e.Query, e.Kind, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// ClassifySearchError maps a store error onto a SearchError kind.
// Errors that match no known sentinel are treated as lost connections.
func ClassifySearchError(query string, err error) *SearchError {
	kind := SearchConnectionLost
	switch {
	case errors.Is(err, ErrIndexNotFound):
		kind = SearchIndexMissing
	case errors.Is(err, ErrQueryRejected):
		kind = SearchQueryRejected
	case errors.Is(err, ErrStoreTimeout):
		kind = SearchTimeout
	}
	return &SearchError{Kind: kind, Query: query, Err: err}
}

// IngestError summarises documents that could not be re-written during a reindex.
// It is logged, never returned to block startup.
type IngestError struct {
	Failed  int
	Touched int
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("reindex partial failure: %d failed, %d touched", e.Failed, e.Touched)
}
