// Package engine implements the match state store and event deriver.
//
// The Engine is an actor: one goroutine owning the match map, commands over
// a buffered channel. Apply runs collect -> normalize -> derive -> mutate for
// one ingest frame; Snapshot reads a consistent point-in-time view.
package engine
