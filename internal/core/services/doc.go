// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Startup runs IndexManager.EnsureIndex, which finishes with a Reindexer
// pass. Each query then flows through QueryCompiler, SearchExecutor and
// Paginator. Services hold no per-request state and are safe for
// concurrent use once constructed.
package services
