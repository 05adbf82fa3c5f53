package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Suvariii/masisie/internal/version"
)

// handleHealth answers the capture side's plain HTTP liveness probe on the
// same listener the websocket paths live on.
func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK\n")
}

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":          "ok",
		"uptime":          time.Since(s.startTime).Seconds(),
		"tracked_matches": s.engine.MatchCount(),
		"clients":         s.hub.ClientCount(),
	})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, version.Get())
}
