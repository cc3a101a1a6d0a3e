package driven

import (
	"context"

	"github.com/creativedestruction/searchdash/internal/core/domain"
)

// SearchStore is the backing key-value/search store.
//
// Implementations report failures by wrapping the domain store sentinels
// (ErrIndexNotFound, ErrIndexExists, ErrQueryRejected, ErrStoreTimeout,
// ErrConnectionLost, ErrUnauthorized, ErrNotFound) so the core can branch
// on them with errors.Is. Every call must be bounded by a timeout.
// Implementations must be safe for concurrent use.
type SearchStore interface {
	// DescribeIndex reports the definition of an existing index.
	// Returns ErrIndexNotFound if no index has that name.
	DescribeIndex(ctx context.Context, name string) (*domain.IndexInfo, error)

	// CreateIndex creates an index bound to the schema's prefixes and fields.
	// Returns ErrIndexExists if the name is already taken.
	CreateIndex(ctx context.Context, def domain.IndexDefinition) error

	// DropIndex removes the index definition, keeping the documents.
	// Returns ErrIndexNotFound if no index has that name.
	DropIndex(ctx context.Context, name string) error

	// ScanKeys enumerates every key starting with prefix, handing them to
	// fn one batch at a time as the store returns them. An error from fn
	// stops the scan and is returned as is.
	ScanKeys(ctx context.Context, prefix string, fn func(keys []string) error) error

	// ReadDocument returns the full field map stored at key.
	// Returns ErrNotFound if the key does not hold a document.
	ReadDocument(ctx context.Context, key string) (*domain.Document, error)

	// WriteDocument stores the document's fields at its key.
	// Writes under an indexed prefix are (re)indexed by the store.
	WriteDocument(ctx context.Context, doc domain.Document) error

	// Search runs a compiled query against the index.
	Search(ctx context.Context, index string, q domain.CompiledQuery) (*SearchReply, error)

	// Stats returns a debug snapshot of the store.
	Stats(ctx context.Context) (*domain.StoreStats, error)

	// Close releases the connection.
	Close() error
}

// SearchReply is the raw answer to a search.
type SearchReply struct {
	// Total is the store's match count for the whole query, not this window.
	Total int

	// Hits are in the store's relevance order.
	Hits []SearchHit
}

// SearchHit is a single document returned by the store.
type SearchHit struct {
	// Key is the matched document key.
	Key string

	// Score is the relevance score; zero unless scores were requested.
	Score float64

	// Fields are the returned field values; nil when content was not requested.
	Fields map[string]string
}
