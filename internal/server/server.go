// Package server exposes the engine's HTTP API: starting runs,
// observing run status and reading persisted pipeline output.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/agentic-rfp/rfp-engine/internal/pipeline"
	"github.com/agentic-rfp/rfp-engine/internal/repository"
)

// Server wires the echo router over the run manager and record store.
type Server struct {
	echo   *echo.Echo
	runs   *pipeline.RunManager
	store  repository.Store
	logger *slog.Logger
	addr   string
}

func New(addr string, runs *pipeline.RunManager, store repository.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http.request",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", c.Response().Status,
				"elapsed_ms", time.Since(start).Milliseconds(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			return err
		}
	})

	s := &Server{echo: e, runs: runs, store: store, logger: logger, addr: addr}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/runs", s.handleStartRun)
	v1.GET("/runs", s.handleListRuns)
	v1.GET("/runs/:id", s.handleGetRun)
	v1.GET("/workitems", s.handleListWorkItems)
	v1.GET("/workitems/:id", s.handleGetWorkItem)
	v1.DELETE("/workitems", s.handleClearWorkItems)
	v1.GET("/workitems/:id/matches", s.handleListMatches)
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("server.listening", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
