package driving

import (
	"context"

	"github.com/creativedestruction/searchdash/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search compiles the text under mode and returns the given 1-based page.
	Search(ctx context.Context, rawText string, mode domain.QueryMode, page int) (*domain.ResultPage, error)

	// NewSession compiles the text under mode and starts a paging session.
	// The session's first total stays authoritative for its later pages.
	NewSession(rawText string, mode domain.QueryMode) (*domain.SearchSession, error)

	// Page fetches the given 1-based page of a session.
	Page(ctx context.Context, session *domain.SearchSession, page int) (*domain.ResultPage, error)

	// Compile returns the store expression and options the text compiles to.
	Compile(rawText string, mode domain.QueryMode) (domain.CompiledQuery, error)

	// PageSize returns the fixed number of results per page.
	PageSize() int
}

// IndexService manages the lifecycle of the search index.
type IndexService interface {
	// EnsureIndexReady makes sure the index exists, matches the schema and
	// covers every stored document. It must complete before Search is served.
	EnsureIndexReady(ctx context.Context) (domain.IndexStatus, error)

	// CheckIndexReady marks the index ready if it already matches the
	// schema, without creating it or reindexing.
	CheckIndexReady(ctx context.Context) (domain.IndexStatus, error)

	// Info describes the live index.
	Info(ctx context.Context) (*domain.IndexInfo, error)

	// Reindex re-writes every document under the schema's prefixes.
	Reindex(ctx context.Context) (domain.IndexStatus, error)

	// Drop removes the index definition. Documents are kept.
	Drop(ctx context.Context) error
}

// StatsService exposes a debug view of the backing store.
type StatsService interface {
	Stats(ctx context.Context) (*domain.StoreStats, error)
}
