// Package server exposes the diagnostics inputs and the marker feed over
// HTTP and WebSocket.
package server

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/mutker/motortemp/internal/errors"
	"codeberg.org/mutker/motortemp/internal/logger"
	"codeberg.org/mutker/motortemp/internal/motor"
	"codeberg.org/mutker/motortemp/internal/telemetry"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	defaultWriteWait       = 5 * time.Second
	defaultPingInterval    = 10 * time.Second
	maxMessageSize         = 1 << 20
	maxBodySize            = "1M"
)

type Config struct {
	Listen          string
	ShutdownTimeout time.Duration
	WriteWait       time.Duration
	PingInterval    time.Duration
}

func (c Config) withDefaults() Config {
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.WriteWait <= 0 {
		c.WriteWait = defaultWriteWait
	}
	if c.PingInterval <= 0 {
		c.PingInterval = defaultPingInterval
	}
	return c
}

// Ingester consumes diagnostic reports.
type Ingester interface {
	OnReport(ctx context.Context, report telemetry.Report) (telemetry.Result, error)
}

// StateSource exposes the motor table for inspection.
type StateSource interface {
	Snapshot() []motor.Entry
}

type Server struct {
	cfg      Config
	e        *echo.Echo
	hub      *Hub
	ingest   Ingester
	state    StateSource
	upgrader websocket.Upgrader
}

func New(cfg Config, ingest Ingester, state StateSource, hub *Hub) (*Server, error) {
	if cfg.Listen == "" {
		return nil, errors.New().WithMessage(ErrInvalidConfig, "listen address is empty")
	}

	s := &Server{
		cfg:    cfg.withDefaults(),
		e:      echo.New(),
		hub:    hub,
		ingest: ingest,
		state:  state,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}

	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Use(middleware.Recover())

	s.e.GET("/healthz", s.health)
	api := s.e.Group("/api")
	api.POST("/diagnostics", s.postDiagnostics, middleware.BodyLimit(maxBodySize))
	api.GET("/diagnostics/stream", s.diagnosticsStream)
	api.GET("/markers", s.latestMarkers)
	api.GET("/markers/stream", s.markersStream)
	api.GET("/motors", s.motors)

	return s, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Run serves until ctx is cancelled, then shuts the server down. The hub is
// left open: its owner closes it once nothing publishes to it anymore, which
// ends the open marker streams.
func (s *Server) Run(ctx context.Context) error {
	errFactory := errors.New()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("listen", s.cfg.Listen).Msg("Starting HTTP server")
		errCh <- s.e.Start(s.cfg.Listen)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errFactory.Wrap(ErrListen, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return errFactory.Wrap(ErrShutdown, err)
	}
	logger.Info().Msg("HTTP server stopped")

	return nil
}
