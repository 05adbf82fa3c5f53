package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Suvariii/masisie/internal/domain"
	"github.com/Suvariii/masisie/internal/logging"
	"github.com/Suvariii/masisie/internal/metrics"
)

// handleFrontend services one subscriber connection: register with the hub
// (which pushes the current snapshot to this subscriber only), then
// read-and-ignore until the connection dies. Inbound payloads carry no
// meaning - the read loop exists for liveness detection.
func (s *Server) handleFrontend(c echo.Context) error {
	ip := c.RealIP()
	if s.rateLimiter != nil && !s.rateLimiter.Allow(ip) {
		metrics.ConnectionsRejected.WithLabelValues("rate_limit").Inc()
		return c.String(http.StatusTooManyRequests, "connection rate limit exceeded")
	}
	if s.ipLimiter != nil {
		if !s.ipLimiter.Acquire(ip) {
			metrics.ConnectionsRejected.WithLabelValues("per_ip").Inc()
			return c.String(http.StatusTooManyRequests, "too many connections from this address")
		}
		defer s.ipLimiter.Release(ip)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade frontend socket: %w", err)
	}

	// Subscribers get the same frame bound as the producer; the liveness
	// read loop must never buffer an arbitrarily large frame.
	conn.SetReadLimit(s.config.MaxFrameBytes)

	welcome, err := json.Marshal(domain.NewMatchesMessage(s.engine.Snapshot()))
	if err != nil {
		logging.WithError(err).Error("Failed to marshal welcome snapshot")
		conn.Close()
		return nil
	}

	clientID := uuid.New()
	if err := s.hub.Register(conn, welcome); err != nil {
		logging.WithError(err).Warn("Failed to register frontend client", "client_id", clientID.String())
		return nil
	}
	slog.Info("Frontend client connected", "client_id", clientID.String(), "remote", ip)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.Unregister(conn)
	slog.Info("Frontend client disconnected", "client_id", clientID.String())

	return nil
}
