package hub

import (
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/Suvariii/masisie/internal/metrics"
)

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	conn    *websocket.Conn
	welcome []byte
	errCh   chan error
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	conn *websocket.Conn
}

func (cmdUnregister) hubCmd() {}

type cmdBroadcast struct {
	data []byte
}

func (cmdBroadcast) hubCmd() {}

type cmdClientCount struct {
	replyCh chan int
}

func (cmdClientCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// --- Hub ---

// Hub is the broadcast fanout: the registry of live subscriber connections
// and the single place that writes to them. One goroutine owns the registry;
// per-connection writers isolate slow clients so one stalled subscriber never
// blocks the rest of a pass or the ingest path.
type Hub struct {
	cmdCh      chan hubCmd
	clock      clockwork.Clock
	clients    map[*websocket.Conn]*clientWriter
	maxClients int
	done       chan struct{}
}

// New constructs and starts a hub. maxClients of zero means unlimited.
func New(clock clockwork.Clock, maxClients int) *Hub {
	h := &Hub{
		cmdCh:      make(chan hubCmd, 256),
		clock:      clock,
		clients:    make(map[*websocket.Conn]*clientWriter),
		maxClients: maxClients,
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.done)
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdRegister:
			h.handleRegister(c)
		case cmdUnregister:
			h.handleUnregister(c.conn)
		case cmdBroadcast:
			h.handleBroadcast(c.data)
		case cmdClientCount:
			c.replyCh <- len(h.clients)
		case cmdStop:
			h.handleStop()
			return
		}
	}
}

func (h *Hub) handleRegister(c cmdRegister) {
	if h.maxClients > 0 && len(h.clients) >= h.maxClients {
		slog.Warn("Rejecting client: max clients reached", "max_clients", h.maxClients)
		metrics.ConnectionsRejected.WithLabelValues("max_clients").Inc()
		c.conn.Close()
		c.errCh <- fmt.Errorf("max clients (%d) reached", h.maxClients)
		return
	}

	cw := newClientWriter(c.conn, h.clock)
	h.clients[c.conn] = cw

	// The welcome snapshot goes through the writer queue before any
	// broadcast can, so a new subscriber always sees the snapshot first.
	if c.welcome != nil {
		cw.sendChannel <- c.welcome
	}

	metrics.ConnectedClients.Set(float64(len(h.clients)))
	slog.Debug("Client registered", "total_clients", len(h.clients))
	c.errCh <- nil
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	cw, exists := h.clients[conn]
	if !exists {
		return
	}

	cw.stop()
	delete(h.clients, conn)

	metrics.ConnectedClients.Set(float64(len(h.clients)))
	slog.Debug("Client unregistered", "remaining_clients", len(h.clients))
}

func (h *Hub) handleBroadcast(data []byte) {
	start := h.clock.Now()

	var slow []*websocket.Conn
	for conn, cw := range h.clients {
		select {
		case cw.sendChannel <- data:
		default:
			slow = append(slow, conn)
		}
	}

	// Evictions happen after the full pass so one bad subscriber never
	// shadows delivery to the others.
	for _, conn := range slow {
		slog.Warn("Disconnecting slow client")
		metrics.SlowClientsEvicted.Inc()
		h.handleUnregister(conn)
	}

	metrics.BroadcastDuration.Observe(h.clock.Since(start).Seconds())
}

func (h *Hub) handleStop() {
	slog.Info("Hub shutting down", "clients", len(h.clients))
	for conn, cw := range h.clients {
		cw.stopGraceful("Server shutting down")
		delete(h.clients, conn)
	}
	metrics.ConnectedClients.Set(0)
}

// --- Public API ---

// Register adds a subscriber and queues the welcome message (the full
// snapshot) for that subscriber only. Returns an error when the hub is at
// capacity; the connection is closed in that case.
func (h *Hub) Register(conn *websocket.Conn, welcome []byte) error {
	errCh := make(chan error, 1)
	h.cmdCh <- cmdRegister{conn: conn, welcome: welcome, errCh: errCh}
	return <-errCh
}

// Unregister removes a subscriber. Safe to call more than once per
// connection - a failed send and a closed read racing both end up here.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.cmdCh <- cmdUnregister{conn: conn}
}

// Broadcast delivers pre-serialized data to every current subscriber,
// best effort.
func (h *Hub) Broadcast(data []byte) {
	h.cmdCh <- cmdBroadcast{data: data}
}

// ClientCount returns the number of registered subscribers.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- cmdClientCount{replyCh: replyCh}
	return <-replyCh
}

// Stop closes all subscriber connections and stops the hub goroutine.
func (h *Hub) Stop() {
	h.cmdCh <- cmdStop{}
	<-h.done
}
