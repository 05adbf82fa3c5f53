package server

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Suvariii/masisie/internal/config"
	"github.com/Suvariii/masisie/internal/domain"
	"github.com/Suvariii/masisie/internal/hub"
	"github.com/Suvariii/masisie/internal/swarm"
)

// Engine is the subset of engine operations the server drives.
type Engine interface {
	Apply(envelope *swarm.Node) []domain.Event
	Snapshot() []domain.MatchSummary
	MatchCount() int
}

type Server struct {
	echo        *echo.Echo
	config      *config.Config
	engine      Engine
	hub         *hub.Hub
	ipLimiter   *IPConnectionLimiter
	rateLimiter *ConnectionRateLimiter
	startTime   time.Time
}

func NewServer(cfg *config.Config, eng Engine, h *hub.Hub) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())

	srv := &Server{
		echo:      e,
		config:    cfg,
		engine:    eng,
		hub:       h,
		startTime: time.Now(),
	}
	if cfg.MaxConnsPerIP > 0 {
		srv.ipLimiter = NewIPConnectionLimiter(cfg.MaxConnsPerIP)
		srv.rateLimiter = NewConnectionRateLimiter(float64(cfg.MaxConnsPerIP), cfg.MaxConnsPerIP)
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
