// Package domain defines the core business entities for searchdash.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Schema: The weighted field list and key-prefix bindings of the index
//   - Document: A stored hash record addressed by its key
//   - QueryRequest / CompiledQuery: A user query before and after compilation
//   - ResultPage / ResultItem: One window of search results
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
