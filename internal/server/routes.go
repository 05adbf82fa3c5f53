package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (plain HTTP, no upgrade)
	s.echo.GET("/", s.handleHealth)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Websocket endpoints: one producer stream in, many subscribers out
	s.echo.GET("/ingest", s.handleIngest)
	s.echo.GET("/ingest/*", s.handleIngest)
	s.echo.GET("/frontend", s.handleFrontend)
	s.echo.GET("/frontend/*", s.handleFrontend)
}
