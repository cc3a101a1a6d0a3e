// Package tui provides an interactive terminal search over the index.
// It is a driving adapter like the cli package.
package tui

import (
	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	Search driving.SearchService
	Index  driving.IndexService

	// Mode is the initial query mode.
	Mode domain.QueryMode
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Index == nil {
		return ErrMissingIndexService
	}
	return nil
}
