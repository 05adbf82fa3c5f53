// Package server implements the HTTP/websocket surface using Echo.
//
// One listener, two websocket roles split by path: /ingest takes the producer
// stream, /frontend serves subscribers. Plain HTTP on / and /health answers
// liveness probes without upgrading; /metrics and /version round it out.
package server
