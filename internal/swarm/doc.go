// Package swarm decodes and dissects the producer's telemetry trees.
//
// Node is an order-preserving JSON tree with a bounded nesting depth.
// Collect pulls match records out of arbitrarily nested sport/game branches,
// Normalize resolves the loosely-typed per-match fields, Envelope sniffs the
// two accepted ingest frame shapes. No state - pure functions over frames.
package swarm
