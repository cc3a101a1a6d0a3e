// Package memory provides in-memory implementations of driven ports.
//
// SearchStore emulates the parts of a RediSearch-backed store the core relies
// on: hash documents, indexes bound to key prefixes that only see documents
// written after the index exists, and a query grammar subset covering
// field-scoped groups, "|" disjunction, implicit conjunction, backslash
// escapes and leading/trailing "*" wildcards. It backs the service tests and
// the CLI's --memory mode.
package memory
