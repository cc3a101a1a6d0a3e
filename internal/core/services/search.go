package services

import (
	"context"
	"strings"

	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/core/ports/driving"
	"github.com/creativedestruction/searchdash/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// readiness reports whether the index has been ensured.
type readiness interface {
	Ready() bool
}

// SearchService compiles, executes and pages user queries.
type SearchService struct {
	registry    *SchemaRegistry
	compiler    *QueryCompiler
	paginator   *Paginator
	defaultMode domain.QueryMode
	withScores  bool
	ready       readiness
}

// NewSearchService creates a new search service.
func NewSearchService(
	registry *SchemaRegistry,
	compiler *QueryCompiler,
	paginator *Paginator,
	settings domain.SearchSettings,
) *SearchService {
	mode := settings.Mode
	if !mode.IsValid() {
		mode = domain.QueryModeWeighted
	}
	return &SearchService{
		registry:    registry,
		compiler:    compiler,
		paginator:   paginator,
		defaultMode: mode,
		withScores:  settings.WithScores,
	}
}

// SetReadiness makes Search refuse queries until r reports ready.
func (s *SearchService) SetReadiness(r readiness) {
	s.ready = r
}

// PageSize returns the fixed number of results per page.
func (s *SearchService) PageSize() int {
	return s.paginator.PageSize()
}

// Compile compiles the text for the first page without running it.
// An empty mode selects the configured default.
func (s *SearchService) Compile(rawText string, mode domain.QueryMode) (domain.CompiledQuery, error) {
	if mode == "" {
		mode = s.defaultMode
	}
	q, err := s.compiler.Compile(domain.QueryRequest{
		RawText:    strings.TrimSpace(rawText),
		Mode:       mode,
		Limit:      s.paginator.PageSize(),
		WantScores: s.withScores,
	}, s.registry.Describe())
	if err != nil {
		return domain.CompiledQuery{}, err
	}
	logger.Debug("Compiled %s query: %s", mode, q.Expression)
	return q, nil
}

// NewSession compiles the text and starts a paging session.
func (s *SearchService) NewSession(rawText string, mode domain.QueryMode) (*domain.SearchSession, error) {
	q, err := s.Compile(rawText, mode)
	if err != nil {
		return nil, err
	}
	return s.paginator.NewSession(q), nil
}

// Page fetches a page of an existing session.
func (s *SearchService) Page(ctx context.Context, session *domain.SearchSession, page int) (*domain.ResultPage, error) {
	if s.ready != nil && !s.ready.Ready() {
		return nil, domain.ErrIndexNotReady
	}
	return s.paginator.Page(ctx, session, page)
}

// Search compiles rawText under mode and returns the given 1-based page.
// Each call is an independent session.
func (s *SearchService) Search(
	ctx context.Context, rawText string, mode domain.QueryMode, page int,
) (*domain.ResultPage, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q, mode: %s, page: %d", rawText, mode, page)

	session, err := s.NewSession(rawText, mode)
	if err != nil {
		return nil, err
	}
	result, err := s.Page(ctx, session, page)
	if err != nil {
		return nil, err
	}
	logger.Info("Found %d results", result.Total)
	return result, nil
}
