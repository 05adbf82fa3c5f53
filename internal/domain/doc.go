// Package domain defines the core domain types.
//
// Concept-oriented files: domain.go holds the match/event model, messages.go
// the wire messages pushed to subscribers. No implementation code - just
// shared types. Prevents circular imports between engine, hub and server.
package domain
