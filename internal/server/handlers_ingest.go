package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Suvariii/masisie/internal/domain"
	"github.com/Suvariii/masisie/internal/logging"
	"github.com/Suvariii/masisie/internal/metrics"
	"github.com/Suvariii/masisie/internal/swarm"
)

const (
	ingestPingInterval = 20 * time.Second
	ingestReadWait     = 60 * time.Second
	ingestWriteWait    = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // producer and frontends connect from anywhere
	},
}

// handleIngest services the single producer stream. Each text frame is
// decoded, run through the engine, and the results broadcast. Malformed or
// mis-shaped frames are dropped without a reply; a producer disconnect just
// ends the handler - match state is retained for the next producer.
func (s *Server) handleIngest(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade ingest socket: %w", err)
	}
	defer conn.Close()

	conn.SetReadLimit(s.config.MaxFrameBytes)
	_ = conn.SetReadDeadline(time.Now().Add(ingestReadWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(ingestReadWait))
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go pingLoop(conn, stopPing)

	slog.Info("Ingest producer connected", "remote", conn.RemoteAddr().String())

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			logging.WithError(err).Info("Ingest producer disconnected")
			return nil
		}
		_ = conn.SetReadDeadline(time.Now().Add(ingestReadWait))
		s.processFrame(raw)
	}
}

// pingLoop keeps half-open producer connections detectable. Exits on write
// failure; the read side then times out and ends the handler.
func pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(ingestPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(ingestWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

func (s *Server) processFrame(raw []byte) {
	metrics.FramesReceived.Inc()
	start := time.Now()
	defer func() { metrics.FrameDuration.Observe(time.Since(start).Seconds()) }()

	frame, err := swarm.Parse(raw)
	if err != nil {
		metrics.FramesDropped.WithLabelValues("decode").Inc()
		logging.WithError(err).Debug("Dropping undecodable frame")
		return
	}

	envelope, ok := swarm.Envelope(frame)
	if !ok {
		metrics.FramesDropped.WithLabelValues("shape").Inc()
		slog.Debug("Dropping frame without envelope shape")
		return
	}

	events := s.engine.Apply(envelope)
	if len(events) > 0 {
		if data, err := json.Marshal(domain.NewEventsMessage(events)); err == nil {
			s.hub.Broadcast(data)
		} else {
			logging.WithError(err).Error("Failed to marshal events message")
		}
	}

	// Snapshot goes out even for an empty envelope - it doubles as the
	// frontend heartbeat.
	s.broadcastSnapshot()
}

func (s *Server) broadcastSnapshot() {
	data, err := json.Marshal(domain.NewMatchesMessage(s.engine.Snapshot()))
	if err != nil {
		logging.WithError(err).Error("Failed to marshal matches message")
		return
	}
	s.hub.Broadcast(data)
}
