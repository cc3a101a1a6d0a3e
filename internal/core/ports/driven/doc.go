// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SearchStore: The key-value/search store holding documents and the index.
//     Backed by RediSearch in production and by an in-memory store in tests.
//   - ConfigStore: Application configuration (TOML file).
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
