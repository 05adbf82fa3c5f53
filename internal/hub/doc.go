// Package hub implements the websocket broadcast fanout using the actor
// pattern.
//
// Single goroutine + command channel (no mutexes). Per-connection write
// goroutines with bounded queues handle slow clients: a full queue during a
// broadcast pass evicts the client instead of blocking the writer.
package hub
