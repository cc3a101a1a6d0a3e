package services

import (
	"context"
	"errors"

	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/core/ports/driven"
	"github.com/creativedestruction/searchdash/internal/logger"
)

// SearchExecutor runs compiled queries and normalises the hits.
type SearchExecutor struct {
	store  driven.SearchStore
	index  string
	schema domain.Schema
}

// NewSearchExecutor creates an executor for the named index.
// The registry's prefixes decide the shape of every hit.
func NewSearchExecutor(store driven.SearchStore, index string, registry *SchemaRegistry) *SearchExecutor {
	return &SearchExecutor{
		store:  store,
		index:  index,
		schema: registry.Describe(),
	}
}

// Execute runs q and returns one window of results. Queries compiled with
// NoContent are hydrated with a second read per hit. Failures are returned
// as *domain.SearchError carrying the user's text; an empty page always
// means the query matched nothing.
func (e *SearchExecutor) Execute(ctx context.Context, q domain.CompiledQuery) (*domain.ResultPage, error) {
	logger.Debug("Execute: %s [offset=%d limit=%d nocontent=%t]", q.Expression, q.Offset, q.Limit, q.NoContent)

	reply, err := e.store.Search(ctx, e.index, q)
	if err != nil {
		serr := domain.ClassifySearchError(q.RawText, err)
		logger.Warn("%v", serr)
		return nil, serr
	}

	items := make([]domain.ResultItem, 0, len(reply.Hits))
	for _, hit := range reply.Hits {
		item := domain.ResultItem{
			Key:    hit.Key,
			Shape:  e.schema.Classify(hit.Key),
			Score:  hit.Score,
			Fields: hit.Fields,
		}

		if q.NoContent {
			fields, err := e.hydrate(ctx, hit.Key)
			if err != nil {
				return nil, domain.ClassifySearchError(q.RawText, err)
			}
			item.Fields = fields
		}
		if item.Fields == nil {
			item.Fields = map[string]string{}
		}
		items = append(items, item)
	}

	logger.Debug("Execute: %d of %d hits", len(items), reply.Total)

	return &domain.ResultPage{
		Query:      q.RawText,
		Total:      reply.Total,
		Items:      items,
		Offset:     q.Offset,
		NextOffset: domain.NextOffsetFor(q.Offset, q.Limit, reply.Total),
	}, nil
}

// hydrate reads the full stored field map of a hit. A document deleted since
// the search is kept with no fields so the window keeps its size.
func (e *SearchExecutor) hydrate(ctx context.Context, key string) (map[string]string, error) {
	doc, err := e.store.ReadDocument(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("Hit %s no longer stored", key)
			return map[string]string{}, nil
		}
		return nil, err
	}
	return doc.Fields, nil
}
