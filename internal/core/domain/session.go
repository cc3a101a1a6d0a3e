package domain

import "sync"

// SearchSession is one user query being paged through.
// The first total it records is authoritative for the rest of the session.
type SearchSession struct {
	// ID identifies the session; replies carry it back as ResultPage.SessionID.
	ID string

	// Query is the compiled first-page query. Later pages only move its window.
	Query CompiledQuery

	mu       sync.Mutex
	total    int
	hasTotal bool
}

// Total returns the authoritative match count, if a page has been fetched.
func (s *SearchSession) Total() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total, s.hasTotal
}

// Record stores total unless one is already known and overwrite is false.
// It returns the total now in effect.
func (s *SearchSession) Record(total int, overwrite bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasTotal || overwrite {
		s.total = total
		s.hasTotal = true
	}
	return s.total
}
