package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/logger"
)

// Paginator splits a query into fixed-size pages.
type Paginator struct {
	executor     *SearchExecutor
	pageSize     int
	strictTotals bool
}

// NewPaginator creates a paginator. With strictTotals every page refreshes
// the session total instead of reusing the first one.
func NewPaginator(executor *SearchExecutor, pageSize int, strictTotals bool) *Paginator {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &Paginator{
		executor:     executor,
		pageSize:     pageSize,
		strictTotals: strictTotals,
	}
}

// PageSize returns the fixed page size.
func (p *Paginator) PageSize() int {
	return p.pageSize
}

// NewSession starts paging through q.
func (p *Paginator) NewSession(q domain.CompiledQuery) *domain.SearchSession {
	return &domain.SearchSession{
		ID:    uuid.NewString(),
		Query: q.WithWindow(0, p.pageSize),
	}
}

// Page fetches the 1-based page of the session's query.
// Pages past the last known page are answered without querying the store.
func (p *Paginator) Page(ctx context.Context, s *domain.SearchSession, page int) (*domain.ResultPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1, got %d", domain.ErrInvalidInput, page)
	}
	offset := (page - 1) * p.pageSize
	logger.Debug("Session %s page %d (offset %d)", s.ID, page, offset)

	if total, ok := s.Total(); ok && !p.strictTotals && offset >= total {
		return &domain.ResultPage{
			SessionID:  s.ID,
			Query:      s.Query.RawText,
			Total:      total,
			Items:      []domain.ResultItem{},
			Offset:     offset,
			NextOffset: -1,
			Page:       page,
			PageCount:  domain.PageCountFor(total, p.pageSize),
		}, nil
	}

	result, err := p.executor.Execute(ctx, s.Query.WithWindow(offset, p.pageSize))
	if err != nil {
		return nil, err
	}

	total := s.Record(result.Total, p.strictTotals)
	result.SessionID = s.ID
	result.Total = total
	result.Page = page
	result.PageCount = domain.PageCountFor(total, p.pageSize)
	result.NextOffset = domain.NextOffsetFor(offset, p.pageSize, total)
	return result, nil
}
